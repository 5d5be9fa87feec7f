package life

//Event is one observer notification
type Event struct {
	Point   Point
	Cell    Cell
	Changed bool
}

//Recorder is an Observer keeping the ordered event sequence of the steps it watched
type Recorder struct {
	Events []Event
}

func (r *Recorder) Update(p Point, c Cell) {
	r.Events = append(r.Events, Event{p, c, true})
}

func (r *Recorder) NoUpdate(p Point, c Cell) {
	r.Events = append(r.Events, Event{p, c, false})
}

//Changed returns the number of Update events
func (r *Recorder) Changed() (n int) {
	for _, e := range r.Events {
		if e.Changed {
			n++
		}
	}
	return
}

func (r *Recorder) Reset() {
	r.Events = r.Events[:0]
}
