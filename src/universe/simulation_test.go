package universe

import (
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"

	"lifegame/src/life"
)

//fakeCanvas records the draw calls
type fakeCanvas struct {
	sync.Mutex
	name      string
	redrawAll bool
	width     int
	height    int
	draws     int
	frames    int
	pixels    map[life.Point]life.Cell
}

func newFakeCanvas(redrawAll bool) *fakeCanvas {
	return &fakeCanvas{name: "fake", redrawAll: redrawAll, pixels: map[life.Point]life.Cell{}}
}

func (c *fakeCanvas) Name() string { return c.name }

func (c *fakeCanvas) Resize(width int, height int) {
	c.Lock()
	defer c.Unlock()
	c.width, c.height = width, height
	c.pixels = map[life.Point]life.Cell{}
}

func (c *fakeCanvas) BeginFrame() {
	c.Lock()
	defer c.Unlock()
	c.draws = 0
}

func (c *fakeCanvas) DrawCell(p life.Point, cell life.Cell) {
	c.Lock()
	defer c.Unlock()
	c.draws++
	c.pixels[p] = cell
}

func (c *fakeCanvas) EndFrame() {
	c.Lock()
	defer c.Unlock()
	c.frames++
}

func (c *fakeCanvas) DrawOnNoUpdate() bool { return c.redrawAll }

func (c *fakeCanvas) Draws() int {
	c.Lock()
	defer c.Unlock()
	return c.draws
}

func (c *fakeCanvas) Frames() int {
	c.Lock()
	defer c.Unlock()
	return c.frames
}

func (c *fakeCanvas) live() (n int) {
	c.Lock()
	defer c.Unlock()
	for _, cell := range c.pixels {
		if cell.Alive() {
			n++
		}
	}
	return
}

func testOptions() *Options {
	o := DefaultOptions()
	o.Width = 5
	o.Height = 5
	o.Interval = 0
	o.MaxSteps = 0
	o.Density = 0
	o.Seed = 1
	o.StopWhenStable = false
	return &o
}

func newTestSimulation(t *testing.T, o *Options, c Canvas, stateCh chan Status) *Simulation {
	t.Helper()
	u, err := New(o, c, stateCh)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(u.Close)
	return u
}

//barrier waits until every command queued before it has been executed
func barrier(u *Simulation) {
	_ = u.Templates()
}

func waitMode(t *testing.T, stateCh chan Status, mode RunningState) Status {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case st := <-stateCh:
			if st.RunningMode == mode {
				return st
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %v", mode)
		}
	}
}

var (
	horizontal = []life.Point{{X: 1, Y: 2}, {X: 2, Y: 2}, {X: 3, Y: 2}}
	vertical   = []life.Point{{X: 2, Y: 1}, {X: 2, Y: 2}, {X: 2, Y: 3}}
)

func assertLive(t *testing.T, g *life.Grid, want []life.Point) {
	t.Helper()
	if g.LiveCells() != len(want) {
		t.Fatalf("got %d live cells, want %d", g.LiveCells(), len(want))
	}
	for _, p := range want {
		if c, _ := g.Get(p); !c.Alive() {
			t.Fatalf("%v is dead", p)
		}
	}
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	o := testOptions()
	o.Density = 2
	if _, err := New(o, nil, nil); !errors.Is(err, ErrInvalidOptions) {
		t.Fatalf("got %v, want ErrInvalidOptions", err)
	}
}

func TestNewDrawsEveryCell(t *testing.T) {
	o := testOptions()
	o.Density = 0.5
	c := newFakeCanvas(false)
	u := newTestSimulation(t, o, c, nil)
	if c.Draws() != 25 || c.width != 5 || c.height != 5 {
		t.Fatalf("initial frame: %d draws on %dx%d", c.Draws(), c.width, c.height)
	}
	if c.live() != u.Grid().LiveCells() || u.Status().LiveCells != c.live() {
		t.Fatal("canvas does not match the grid")
	}
}

func TestStepDrawPolicy(t *testing.T) {
	tests := []struct {
		name      string
		redrawAll bool
		draws     int
	}{
		{"changed only", false, 4},
		{"every cell", true, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newFakeCanvas(tt.redrawAll)
			u := newTestSimulation(t, testOptions(), c, nil)
			if err := u.Settle(horizontal); err != nil {
				t.Fatal(err)
			}
			u.Step()
			barrier(u)

			st := u.Status()
			if st.IterationNum != 1 || st.Changed != 4 || st.LiveCells != 3 {
				t.Fatalf("status %+v", st)
			}
			if st.Draws != tt.draws {
				t.Fatalf("got %d draws, want %d", st.Draws, tt.draws)
			}
			assertLive(t, u.Grid(), vertical)
			if c.live() != 3 {
				t.Fatalf("canvas shows %d live cells", c.live())
			}

			u.Step()
			barrier(u)
			assertLive(t, u.Grid(), horizontal)
		})
	}
}

func TestStepStateMessages(t *testing.T) {
	stateCh := make(chan Status, 10)
	u := newTestSimulation(t, testOptions(), nil, stateCh)
	u.Step()
	if st := <-stateCh; st.RunningMode != RunningStateStep {
		t.Fatalf("first message: %v", st.RunningMode)
	}
	if st := <-stateCh; st.RunningMode != RunningStateManual || st.IterationNum != 1 {
		t.Fatalf("second message: %+v", st)
	}
}

func TestMaxStepsFinishes(t *testing.T) {
	o := testOptions()
	o.MaxSteps = 5
	o.Density = 0.5
	stateCh := make(chan Status, 10)
	u := newTestSimulation(t, o, nil, stateCh)
	u.Run()
	st := waitMode(t, stateCh, RunningStateFinished)
	if st.IterationNum != 5 {
		t.Fatalf("finished at %d, want 5", st.IterationNum)
	}

	//a manual step past the limit computes nothing
	u.Step()
	st = waitMode(t, stateCh, RunningStateFinished)
	if st.IterationNum != 5 {
		t.Fatalf("stepped past the limit: %d", st.IterationNum)
	}
}

func TestStopWhenStable(t *testing.T) {
	tests := []struct {
		name     string
		points   []life.Point
		iter     int
		stagnant bool
	}{
		{"empty", nil, 1, true},
		{"block", []life.Point{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 1, Y: 2}, {X: 2, Y: 2}}, 1, true},
		{"blinker", horizontal, 2, true},
		{"single cell", []life.Point{{X: 2, Y: 2}}, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := testOptions()
			o.StopWhenStable = true
			stateCh := make(chan Status, 10)
			u := newTestSimulation(t, o, nil, stateCh)
			if err := u.Settle(tt.points); err != nil {
				t.Fatal(err)
			}
			u.Run()
			st := waitMode(t, stateCh, RunningStateFinished)
			if st.IterationNum != tt.iter || st.Stagnant != tt.stagnant {
				t.Fatalf("finished at %d stagnant %v, want %d %v", st.IterationNum, st.Stagnant, tt.iter, tt.stagnant)
			}
		})
	}
}

func TestRunStopIdempotent(t *testing.T) {
	o := testOptions()
	o.Interval = time.Millisecond
	o.MaxSkippedTicks = 0
	stateCh := make(chan Status, 10)
	u := newTestSimulation(t, o, nil, stateCh)
	if err := u.Settle(horizontal); err != nil {
		t.Fatal(err)
	}

	u.Stop()
	u.Run()
	u.Run()
	waitMode(t, stateCh, RunningStateRun)
	waitMode(t, stateCh, RunningStateStep)
	u.Stop()
	u.Stop()
	waitMode(t, stateCh, RunningStateManual)

	barrier(u)
	iter := u.Status().IterationNum
	time.Sleep(20 * time.Millisecond)
	barrier(u)
	if got := u.Status().IterationNum; got != iter {
		t.Fatalf("stepped after stop: %d -> %d", iter, got)
	}
	select {
	case st := <-stateCh:
		t.Fatalf("unexpected message after stop: %+v", st)
	default:
	}
}

func TestResetReplacesGrid(t *testing.T) {
	o := testOptions()
	o.Width, o.Height = 20, 20
	o.Density = 0.5
	c := newFakeCanvas(false)
	u := newTestSimulation(t, o, c, nil)

	before := u.Grid()
	u.Step()
	u.Reset()
	barrier(u)

	if u.Grid().Equal(before) {
		t.Fatal("reset kept the grid")
	}
	st := u.Status()
	if st.IterationNum != 0 || st.LiveCells != u.Grid().LiveCells() {
		t.Fatalf("status after reset %+v", st)
	}
	if c.Draws() != 400 {
		t.Fatalf("reset redrew %d cells", c.Draws())
	}
}

func TestClear(t *testing.T) {
	o := testOptions()
	o.Density = 1
	u := newTestSimulation(t, o, nil, nil)
	if u.Grid().LiveCells() != 25 {
		t.Fatal("density 1 left dead cells")
	}
	u.Clear()
	barrier(u)
	if u.Grid().LiveCells() != 0 || u.Status().LiveCells != 0 {
		t.Fatal("clear left live cells")
	}
}

func TestUseCanvas(t *testing.T) {
	o := testOptions()
	old := newFakeCanvas(false)
	u := newTestSimulation(t, o, old, nil)
	c := newFakeCanvas(true)
	c.name = "other"
	u.UseCanvas(c)
	barrier(u)
	if u.Canvas().Name() != "other" || u.Options().Canvas != "other" {
		t.Fatalf("canvas is %q, options say %q", u.Canvas().Name(), u.Options().Canvas)
	}
	if c.Draws() != 25 || c.width != 5 {
		t.Fatalf("new canvas: %d draws, width %d", c.Draws(), c.width)
	}
	u.Step()
	barrier(u)
	if old.Draws() != 25 {
		t.Fatal("old canvas was drawn after the switch")
	}
}

func TestSettleErrors(t *testing.T) {
	u := newTestSimulation(t, testOptions(), nil, nil)

	err := u.Settle([]life.Point{{X: 1, Y: 1}, {X: 5, Y: 0}})
	if !errors.Is(err, life.ErrOutOfBounds) {
		t.Fatalf("got %v, want ErrOutOfBounds", err)
	}
	if u.Grid().LiveCells() != 0 {
		t.Fatal("failed settle changed the grid")
	}

	if err = u.SettleTemplate("nope"); !errors.Is(err, ErrUnknownTemplate) {
		t.Fatalf("got %v, want ErrUnknownTemplate", err)
	}
	u.AddTemplate(Template{Name: "far", Points: []life.Point{{X: 9, Y: 9}}})
	if err = u.SettleTemplate("far"); !errors.Is(err, life.ErrOutOfBounds) {
		t.Fatalf("got %v, want ErrOutOfBounds", err)
	}
	if err = u.SettleTemplate("glider"); err != nil {
		t.Fatal(err)
	}
	if u.Status().LiveCells != 5 {
		t.Fatalf("glider settled %d cells", u.Status().LiveCells)
	}
}

func TestInverseCell(t *testing.T) {
	c := newFakeCanvas(false)
	u := newTestSimulation(t, testOptions(), c, nil)
	if err := u.InverseCell(life.Point{X: 3, Y: 4}); err != nil {
		t.Fatal(err)
	}
	if cell, _ := u.Grid().Get(life.Point{X: 3, Y: 4}); !cell.Alive() || c.live() != 1 {
		t.Fatal("cell was not inverted")
	}
	if err := u.InverseCell(life.Point{X: -1}); !errors.Is(err, life.ErrOutOfBounds) {
		t.Fatalf("got %v, want ErrOutOfBounds", err)
	}
}

func TestEveryDrawEndsFrame(t *testing.T) {
	c := newFakeCanvas(false)
	u := newTestSimulation(t, testOptions(), c, nil)
	frames := c.Frames()
	if frames != 1 {
		t.Fatalf("initial draw ended %d frames", frames)
	}
	actions := []struct {
		name string
		do   func()
	}{
		{"settle", func() { _ = u.Settle(horizontal) }},
		{"step", u.Step},
		{"inverse", func() { _ = u.InverseCell(life.Point{X: 0, Y: 0}) }},
		{"reset", u.Reset},
		{"clear", u.Clear},
	}
	for _, a := range actions {
		a.do()
		barrier(u)
		frames++
		if c.Frames() != frames {
			t.Fatalf("%s: got %d frames, want %d", a.name, c.Frames(), frames)
		}
	}
}

func TestTemplates(t *testing.T) {
	u := newTestSimulation(t, testOptions(), nil, nil)
	want := []string{"blinker", "block", "glider", "sample"}
	got := u.Templates()
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestClosed(t *testing.T) {
	u, err := New(testOptions(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	u.Close()
	u.Close()
	u.Step()
	if err = u.Settle(nil); !errors.Is(err, ErrClosed) {
		t.Fatalf("got %v, want ErrClosed", err)
	}
}

type countingViewer struct {
	registered Universe
	refreshes  int
}

func (v *countingViewer) Refresh() { v.refreshes++ }

func (v *countingViewer) Register(u Universe) { v.registered = u }

func (v *countingViewer) Start() {}

func TestViewerRefresh(t *testing.T) {
	u := newTestSimulation(t, testOptions(), nil, nil)
	v := &countingViewer{}
	u.RegisterViewer(v)
	u.Step()
	u.Step()
	barrier(u)
	if v.registered != u {
		t.Fatal("viewer was not registered")
	}
	if v.refreshes != 2 {
		t.Fatalf("got %d refreshes, want 2", v.refreshes)
	}
}

func BenchmarkStep(b *testing.B) {
	o := DefaultOptions()
	o.Width, o.Height = 200, 200
	o.MaxSteps = 0
	o.StopWhenStable = false
	o.Seed = 1
	u, err := New(&o, newFakeCanvas(true), nil)
	if err != nil {
		b.Fatal(err)
	}
	defer u.Close()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		u.Step()
		barrier(u)
	}
}
