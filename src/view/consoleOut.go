package view

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"lifegame/src/universe"
)

//ConsoleOut prints the progress of a non-interactive simulation
type ConsoleOut struct {
	u         universe.Universe
	w         io.Writer
	startTime time.Time
	every     int
}

func NewConsoleOut() *ConsoleOut {
	return &ConsoleOut{w: os.Stdout, every: 10}
}

//NewConsoleOutTo is NewConsoleOut writing to w and reporting every n iterations
func NewConsoleOutTo(w io.Writer, n int) *ConsoleOut {
	if n <= 0 {
		n = 1
	}
	return &ConsoleOut{w: w, every: n}
}

func (c *ConsoleOut) Refresh() {
	st := c.u.Status()
	switch st.RunningMode {
	case universe.RunningStateFinished:
		totalTime := time.Since(c.startTime).Round(time.Millisecond)
		resultData := map[string]interface{}{
			"Last iteration": st.IterationNum,
			"Total time":     totalTime,
			"Live cells":     st.LiveCells,
			"Stagnant":       st.Stagnant,
		}
		_, _ = fmt.Fprintln(c.w, "\nFinished:")
		c.printHashData(resultData)
	case universe.RunningStateRun:
		if st.IterationNum%c.every == 0 {
			_, _ = fmt.Fprintf(c.w, "  Iterations done: %v, live cells: %v, changed: %v\n", st.IterationNum, st.LiveCells, st.Changed)
		}
	}
}

func (c *ConsoleOut) Register(u universe.Universe) {
	c.u = u
	o := c.u.Options()
	_, _ = fmt.Fprintln(c.w, "Running configuration:")
	c.printHashData(map[string]interface{}{
		"Dimension":        fmt.Sprintf("%v x %v", o.Width, o.Height),
		"Interval":         o.Interval,
		"Max iterations":   o.MaxSteps,
		"Density":          o.Density,
		"Stop when stable": o.StopWhenStable,
		"Canvas":           c.u.Canvas().Name(),
	})
}

func (c *ConsoleOut) Start() {
	c.startTime = time.Now()
	_, _ = fmt.Fprintln(c.w, "\nSimulation started...")
}

func (c *ConsoleOut) printHashData(d map[string]interface{}) {
	propNames := make([]string, 0, len(d))
	for k := range d {
		propNames = append(propNames, k)
	}
	sort.Strings(propNames)
	for _, propName := range propNames {
		_, _ = fmt.Fprintf(c.w, "  %s: %v\n", propName, d[propName])
	}
}
