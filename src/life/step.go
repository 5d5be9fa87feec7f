package life

//Observer receives the outcome of every cell for one generation
type Observer interface {
	//Update is called when the cell state changed, the receiver must store/redraw it
	Update(p Point, c Cell)
	//NoUpdate is called when the state is unchanged, redrawing is up to the receiver
	NoUpdate(p Point, c Cell)
}

//ObserverFuncs adapts two functions to the Observer interface, nil funcs are skipped
type ObserverFuncs struct {
	OnUpdate   func(p Point, c Cell)
	OnNoUpdate func(p Point, c Cell)
}

func (o ObserverFuncs) Update(p Point, c Cell) {
	if o.OnUpdate != nil {
		o.OnUpdate(p, c)
	}
}

func (o ObserverFuncs) NoUpdate(p Point, c Cell) {
	if o.OnNoUpdate != nil {
		o.OnNoUpdate(p, c)
	}
}

//NextState applies the standard rule: birth on 3, survival on 2 or 3
func NextState(alive bool, liveNeighbors int) bool {
	return liveNeighbors == 3 || (liveNeighbors == 2 && alive)
}

//LiveNeighbors counts live cells among the 8 positions around p
//positions outside the grid count as dead, there is no wraparound
func LiveNeighbors(g *Grid, p Point) int {
	minX := max(0, p.X-1)
	maxX := min(g.width-1, p.X+1)
	minY := max(0, p.Y-1)
	maxY := min(g.height-1, p.Y+1)

	count := 0
	for ny := minY; ny <= maxY; ny++ {
		for nx := minX; nx <= maxX; nx++ {
			if nx == p.X && ny == p.Y {
				continue
			}
			if g.cells[ny][nx] {
				count++
			}
		}
	}
	return count
}

//Step computes the next generation of g and returns it as a new grid.
//g is only read. The observer is notified after the whole generation is
//computed, once per point in row-major order, so it may write anywhere
//without affecting neighbor counts. o may be nil.
func Step(g *Grid, o Observer) *Grid {
	next := NewGrid(g.width, g.height)
	for y := range g.cells {
		for x := range g.cells[y] {
			next.cells[y][x] = Cell(NextState(bool(g.cells[y][x]), LiveNeighbors(g, Point{x, y})))
		}
	}

	if o == nil {
		return next
	}
	for y := range next.cells {
		for x, c := range next.cells[y] {
			if c != g.cells[y][x] {
				o.Update(Point{x, y}, c)
			} else {
				o.NoUpdate(Point{x, y}, c)
			}
		}
	}
	return next
}
