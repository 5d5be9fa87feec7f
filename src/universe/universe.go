package universe

import (
	"time"

	"lifegame/src/life"
)

//Universe is the control surface used by the viewers
type Universe interface {
	Status() Status
	Options() Options
	Grid() *life.Grid
	Canvas() Canvas
	StateCh() chan Status
	AddTemplate(tmpl Template)
	Templates() []string
	SettleTemplate(name string) error
	Settle(points []life.Point) error
	InverseCell(p life.Point) error
	RegisterViewer(v Viewer)
	UseCanvas(c Canvas)
	Run()
	Stop()
	Step()
	Reset()
	Clear()
	Close()
}

//Canvas is the rendering surface the cells are drawn on.
//DrawOnNoUpdate is the canvas' own policy: a canvas that loses its pixels
//between frames must redraw unchanged cells, a persisted one can skip them.
//Cells drawn between BeginFrame and EndFrame become visible to the readers at once on EndFrame.
type Canvas interface {
	Name() string
	Resize(width int, height int)
	BeginFrame()
	DrawCell(p life.Point, c life.Cell)
	EndFrame()
	DrawOnNoUpdate() bool
	//Draws returns the number of DrawCell calls since the last BeginFrame
	Draws() int
}

//Viewer is the interface to any Viewer - the object who can display simulation data or control the engine
type Viewer interface {
	Refresh()
	Register(u Universe)
	Start()
}

//Template represent the seeding template which can used to settle the universe with predefined data
type Template struct {
	Name   string       //template name
	Descr  string       //template descr
	Points []life.Point //live cells
}

//Status represents the status of the Universe at concrete moment
type Status struct {
	IterationNum  int
	RunningMode   RunningState
	LiveCells     int
	Changed       int //cells changed by the last step
	Draws         int //canvas draws made by the last step
	Stagnant      bool
	IterationTime time.Duration
}

//The universe running status at the concrete moment
type RunningState int

const (
	RunningStateManual RunningState = iota
	RunningStateStep
	RunningStateRun
	RunningStateFinished
)

func (rs RunningState) String() string {
	switch rs {
	case RunningStateManual:
		return "waiting"
	case RunningStateStep:
		return "step"
	case RunningStateRun:
		return "running"
	case RunningStateFinished:
		return "finished"
	}
	return "unknown"
}
