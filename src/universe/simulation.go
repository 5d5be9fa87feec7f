package universe

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"lifegame/src/life"
)

var (
	ErrClosed          = errors.New("universe is closed")
	ErrUnknownTemplate = errors.New("unknown template")
)

var _ Universe = (*Simulation)(nil)

//historySize is how many past generations are compared to detect a cycle
const historySize = 3

//Simulation is the universe engine: it owns exactly one grid at a time
//and a canvas the cells are drawn on.
//All state changes happen in the main loop goroutine, commands are serialized
//through controlCh, so two steps never overlap.
//Implements Universe.
type Simulation struct {
	options Options
	state   struct {
		Status
		sync.Mutex
	}
	//grid and canvas are replaced in the main loop only, readers from other goroutines lock
	board struct {
		grid   *life.Grid
		canvas Canvas
		sync.Mutex
	}
	stateCh   chan Status
	views     []Viewer
	templates map[string]Template
	rng       *rand.Rand
	history   []string
	stopRun   chan struct{} //non-nil while the run loop is active
	controlCh chan func()
	closeCh   chan struct{}
	closeOnce sync.Once
	done      chan struct{}
}

//New creates the simulation settled with random data and starts its main loop.
//nil o means DefaultOptions, nil c means the cells are not drawn anywhere.
func New(o *Options, c Canvas, stateCh chan Status) (*Simulation, error) {
	if o == nil {
		def := DefaultOptions()
		o = &def
	}
	if err := o.Validate(); err != nil {
		return nil, errors.Wrap(err, "[New]")
	}
	if c == nil {
		c = blankCanvas{}
	}

	seed := o.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	u := &Simulation{
		options:   *o,
		stateCh:   stateCh,
		templates: map[string]Template{},
		rng:       rand.New(rand.NewSource(seed)),
		controlCh: make(chan func(), 1),
		closeCh:   make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, tmpl := range builtinTemplates {
		u.templates[tmpl.Name] = tmpl
	}
	u.board.canvas = c
	u.board.grid = u.randomGrid()
	u.updateLiveCells()
	u.drawAll()

	go u.mainLoop()
	return u, nil
}

//AddTemplate adds the seeding template to the internal storage
//the universe can be populated with this template by call SettleTemplate
func (u *Simulation) AddTemplate(tmpl Template) {
	u.exec(func() {
		u.templates[tmpl.Name] = tmpl
	})
}

//Templates returns the sorted template names
func (u *Simulation) Templates() (names []string) {
	_ = u.call(func() error {
		names = make([]string, 0, len(u.templates))
		for name := range u.templates {
			names = append(names, name)
		}
		return nil
	})
	sort.Strings(names)
	return
}

//Settle makes the cells at points alive, nothing is changed if any point is outside the grid
func (u *Simulation) Settle(points []life.Point) error {
	return u.call(func() error {
		return u.settle(points)
	})
}

//SettleTemplate populates the universe with the seeding template
func (u *Simulation) SettleTemplate(name string) error {
	return u.call(func() error {
		tmpl, ok := u.templates[name]
		if !ok {
			return errors.Wrapf(ErrUnknownTemplate, "[SettleTemplate] %q", name)
		}
		return errors.Wrapf(u.settle(tmpl.Points), "[SettleTemplate] %q", name)
	})
}

//InverseCell inverses the cell state at point p
func (u *Simulation) InverseCell(p life.Point) error {
	return u.call(func() error {
		g := u.board.grid
		c, err := g.Get(p)
		if err != nil {
			return errors.Wrap(err, "[InverseCell]")
		}
		if err = g.Set(p, !c); err != nil {
			return errors.Wrap(err, "[InverseCell]")
		}
		u.board.canvas.DrawCell(p, !c)
		u.board.canvas.EndFrame()
		u.history = nil
		u.updateLiveCells()
		u.refreshView()
		return nil
	})
}

//RegisterViewer registers the viewer - the universe will call the viewer when the state is changed
func (u *Simulation) RegisterViewer(v Viewer) {
	_ = u.call(func() error {
		u.views = append(u.views, v)
		v.Register(u)
		return nil
	})
}

//UseCanvas switches the rendering surface and resets the universe
func (u *Simulation) UseCanvas(c Canvas) {
	if c == nil {
		c = blankCanvas{}
	}
	u.exec(func() {
		u.board.Lock()
		u.board.canvas = c
		u.options.Canvas = c.Name()
		u.board.Unlock()
		u.reset()
	})
}

//StateCh returns the channel with the universe's status updates
func (u *Simulation) StateCh() chan Status {
	return u.stateCh
}

//Status returns current universe status represented by Status struct
func (u *Simulation) Status() Status {
	u.state.Lock()
	defer u.state.Unlock()
	return u.state.Status
}

//Options returns current universe configuration represented by Options struct
func (u *Simulation) Options() Options {
	u.board.Lock()
	defer u.board.Unlock()
	return u.options
}

//Grid returns a copy of the current generation
func (u *Simulation) Grid() *life.Grid {
	u.board.Lock()
	defer u.board.Unlock()
	return u.board.grid.Clone()
}

//Canvas returns the active rendering surface
func (u *Simulation) Canvas() Canvas {
	u.board.Lock()
	defer u.board.Unlock()
	return u.board.canvas
}

//Run starts the periodic simulation, returns immediately
//does nothing if it is already running
func (u *Simulation) Run() {
	u.exec(u.run)
}

//Stop stops the periodic simulation, returns immediately
//does nothing if it is not running
func (u *Simulation) Stop() {
	u.exec(u.stop)
}

//Step does one simulation step, returns immediately
//the Status struct will be written to the stateCh on start and on finish
func (u *Simulation) Step() {
	u.exec(u.step)
}

//Reset replaces the grid with a new random one and resets all counters, returns immediately
func (u *Simulation) Reset() {
	u.exec(u.reset)
}

//Clear kills all cells and resets all counters, returns immediately
func (u *Simulation) Clear() {
	u.exec(u.clear)
}

//Close stops the main loop and waits for it to exit
func (u *Simulation) Close() {
	u.closeOnce.Do(func() {
		close(u.closeCh)
	})
	<-u.done
}

//mainLoop - the main cycle, should start as a goroutine
//waits for command and executes
func (u *Simulation) mainLoop() {
	defer close(u.done)
	for {
		select {
		case cmd := <-u.controlCh:
			cmd()
		case <-u.closeCh:
			u.halt()
			return
		}
	}
}

//exec queues the command for the main loop
func (u *Simulation) exec(cmd func()) {
	select {
	case u.controlCh <- cmd:
	case <-u.done:
	}
}

//call runs the command in the main loop and waits for its result
func (u *Simulation) call(cmd func() error) error {
	errCh := make(chan error, 1)
	select {
	case u.controlCh <- func() { errCh <- cmd() }:
	case <-u.done:
		return ErrClosed
	}
	select {
	case err := <-errCh:
		return err
	case <-u.done:
		select {
		case err := <-errCh:
			return err
		default:
			return ErrClosed
		}
	}
}

//canvasUpdater observes the steps: changed cells are always drawn,
//unchanged ones only when the canvas asks for them
type canvasUpdater struct {
	canvas  Canvas
	changed int
}

func (cu *canvasUpdater) Update(p life.Point, c life.Cell) {
	cu.changed++
	cu.canvas.DrawCell(p, c)
}

func (cu *canvasUpdater) NoUpdate(p life.Point, c life.Cell) {
	if cu.canvas.DrawOnNoUpdate() {
		cu.canvas.DrawCell(p, c)
	}
}

//switchRunningState switch the state of the universe to RunningState
//also writes the new state to the stateCh to signal upper control software
func (u *Simulation) switchRunningState(to RunningState) {
	u.state.Lock()
	u.state.RunningMode = to
	st := u.state.Status
	u.state.Unlock()
	if u.stateCh != nil {
		select {
		case u.stateCh <- st:
		case <-u.closeCh:
		}
	}
}

//run starts the ticker goroutine
//simulation will stop on Stop() calling or when the boundary conditions are reached
func (u *Simulation) run() {
	if u.stopRun != nil {
		return
	}
	u.stopRun = make(chan struct{})
	u.switchRunningState(RunningStateRun)
	go u.tick(u.stopRun, u.options.Interval)
}

//tick queues one step per interval, the next tick waits until the step is done
func (u *Simulation) tick(stop chan struct{}, interval time.Duration) {
	var tc <-chan time.Time
	if interval > 0 {
		t := time.NewTicker(interval)
		defer t.Stop()
		tc = t.C
	}
	done := make(chan struct{}, 1)
	skipped := 0
	for {
		select {
		case <-stop:
			return
		default:
		}
		if tc != nil {
			select {
			case <-tc:
			case <-stop:
				return
			}
		}
		start := time.Now()
		select {
		case u.controlCh <- func() {
			//the run may have been stopped while the command was queued
			select {
			case <-stop:
			default:
				u.step()
			}
			done <- struct{}{}
		}:
		case <-stop:
			return
		}
		select {
		case <-done:
		case <-stop:
			return
		}

		if interval == 0 || u.options.MaxSkippedTicks == 0 {
			continue
		}
		//the ticker drops the ticks which arrive while the step is running
		if missed := int(time.Since(start) / interval); missed > 0 {
			skipped += missed
		} else {
			skipped = 0
		}
		if skipped > u.options.MaxSkippedTicks {
			u.exec(func() {
				if u.stopRun == stop {
					u.halt()
					u.switchRunningState(RunningStateFinished)
					u.refreshView()
				}
			})
			return
		}
	}
}

//halt stops the ticker goroutine without touching the running state
func (u *Simulation) halt() {
	if u.stopRun != nil {
		close(u.stopRun)
		u.stopRun = nil
	}
}

//stop stops the universe running cycle
func (u *Simulation) stop() {
	if u.stopRun == nil {
		return
	}
	u.halt()
	u.switchRunningState(RunningStateManual)
}

//step calculates the next generation and replaces the grid with it
func (u *Simulation) step() {
	finished := false
	rm := u.state.RunningMode
	if rm == RunningStateFinished {
		rm = RunningStateManual
	}
	defer func() {
		if finished {
			u.halt()
			u.switchRunningState(RunningStateFinished)
		} else {
			u.switchRunningState(rm)
		}
		u.refreshView()
	}()

	maxIter := u.options.MaxSteps
	if maxIter != 0 && u.state.IterationNum >= maxIter {
		finished = true
		return
	}
	u.switchRunningState(RunningStateStep)

	start := time.Now()
	if len(u.history) == 0 {
		u.updateHistory(u.board.grid.Fingerprint())
	}
	cu := &canvasUpdater{canvas: u.board.canvas}
	cu.canvas.BeginFrame()
	next := life.Step(u.board.grid, cu)
	cu.canvas.EndFrame()

	u.board.Lock()
	u.board.grid = next
	u.board.Unlock()

	live := next.LiveCells()
	stagnant := u.updateHistory(next.Fingerprint())

	u.state.Lock()
	u.state.IterationNum++
	u.state.LiveCells = live
	u.state.Changed = cu.changed
	u.state.Draws = cu.canvas.Draws()
	u.state.Stagnant = stagnant
	u.state.IterationTime = time.Since(start)
	iter := u.state.IterationNum
	u.state.Unlock()

	if maxIter != 0 && iter >= maxIter {
		finished = true
	}
	if u.options.StopWhenStable && (live == 0 || cu.changed == 0 || stagnant) {
		finished = true
	}
}

//updateHistory remembers the fingerprint and reports whether it was seen in the recent generations
func (u *Simulation) updateHistory(fp string) (seen bool) {
	for _, h := range u.history {
		if h == fp {
			seen = true
			break
		}
	}
	u.history = append(u.history, fp)
	if len(u.history) > historySize {
		u.history = u.history[1:]
	}
	return
}

//reset replaces the grid with a random one, the previous grid is dropped wholesale
func (u *Simulation) reset() {
	u.replaceGrid(u.randomGrid())
}

//clear clears the universe data, reset all counters
func (u *Simulation) clear() {
	u.replaceGrid(life.NewGrid(u.options.Width, u.options.Height))
}

func (u *Simulation) replaceGrid(g *life.Grid) {
	u.halt()
	u.board.Lock()
	u.board.grid = g
	u.board.Unlock()
	u.history = nil

	u.state.Lock()
	u.state.Status = Status{}
	u.state.Unlock()
	u.updateLiveCells()
	u.drawAll()
	u.switchRunningState(RunningStateManual)
	u.refreshView()
}

//settle makes the cells alive, points are checked before anything is changed
func (u *Simulation) settle(points []life.Point) error {
	g := u.board.grid
	for _, p := range points {
		if !g.Contains(p) {
			_, err := g.Get(p)
			return errors.Wrap(err, "[Settle]")
		}
	}
	for _, p := range points {
		_ = g.Set(p, life.Live)
		u.board.canvas.DrawCell(p, life.Live)
	}
	u.board.canvas.EndFrame()
	u.history = nil
	u.updateLiveCells()
	u.refreshView()
	return nil
}

func (u *Simulation) randomGrid() *life.Grid {
	g := life.NewGrid(u.options.Width, u.options.Height)
	g.Walk(func(p life.Point, _ life.Cell) {
		if u.rng.Float64() < u.options.Density {
			_ = g.Set(p, life.Live)
		}
	})
	return g
}

func (u *Simulation) updateLiveCells() {
	live := u.board.grid.LiveCells()
	u.state.Lock()
	u.state.LiveCells = live
	u.state.Unlock()
}

//drawAll redraws every cell of the current grid on the canvas
func (u *Simulation) drawAll() {
	c := u.board.canvas
	c.Resize(u.board.grid.Dimensions())
	c.BeginFrame()
	u.board.grid.Walk(c.DrawCell)
	c.EndFrame()
}

//refreshView calls Refresh event for all registered views
func (u *Simulation) refreshView() {
	for _, v := range u.views {
		v.Refresh()
	}
}

//blankCanvas is used when no canvas is given, it draws nothing
type blankCanvas struct{}

func (blankCanvas) Name() string { return "none" }

func (blankCanvas) Resize(int, int) {}

func (blankCanvas) BeginFrame() {}

func (blankCanvas) DrawCell(life.Point, life.Cell) {}

func (blankCanvas) EndFrame() {}

func (blankCanvas) DrawOnNoUpdate() bool { return false }

func (blankCanvas) Draws() int { return 0 }
