package life

import (
	"crypto/md5"
	"fmt"

	"github.com/pkg/errors"
)

//ErrOutOfBounds is returned (wrapped) when a point lies outside the grid
var ErrOutOfBounds = errors.New("point out of bounds")

//Cell is the state of one grid position
type Cell bool

const (
	Dead Cell = false
	Live Cell = true
)

func (c Cell) Alive() bool {
	return bool(c)
}

func (c Cell) String() string {
	if c {
		return "live"
	}
	return "dead"
}

//Point is a cell position, x is the column and y is the row
type Point struct {
	X int
	Y int
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

//Grid is a fixed size two dimensional store of cells
//the dimensions never change after NewGrid
type Grid struct {
	width  int
	height int
	cells  [][]Cell
}

//NewGrid allocates the width x height grid with all cells dead
//rows share one backing buffer
func NewGrid(width int, height int) *Grid {
	if width < 0 || height < 0 {
		panic(fmt.Sprintf("life: negative grid dimensions %dx%d", width, height))
	}
	g := &Grid{width: width, height: height, cells: make([][]Cell, height)}
	b := make([]Cell, width*height)
	for i := range g.cells {
		start := width * i
		g.cells[i] = b[start : start+width : start+width]
	}
	return g
}

func (g *Grid) Width() int {
	return g.width
}

func (g *Grid) Height() int {
	return g.height
}

//Dimensions returns width and height
func (g *Grid) Dimensions() (int, int) {
	return g.width, g.height
}

//Contains reports whether p is inside [0,width) x [0,height)
func (g *Grid) Contains(p Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < g.width && p.Y < g.height
}

//Get returns the cell at p
func (g *Grid) Get(p Point) (Cell, error) {
	if !g.Contains(p) {
		return Dead, errors.Wrapf(ErrOutOfBounds, "[Get] %v in %dx%d grid", p, g.width, g.height)
	}
	return g.cells[p.Y][p.X], nil
}

//Set replaces the cell at p
func (g *Grid) Set(p Point, c Cell) error {
	if !g.Contains(p) {
		return errors.Wrapf(ErrOutOfBounds, "[Set] %v in %dx%d grid", p, g.width, g.height)
	}
	g.cells[p.Y][p.X] = c
	return nil
}

//Walk calls cb for each cell in row-major order (y outer, x inner)
func (g *Grid) Walk(cb func(p Point, c Cell)) {
	for y := range g.cells {
		for x := range g.cells[y] {
			cb(Point{x, y}, g.cells[y][x])
		}
	}
}

//LiveCells counts the live cells
func (g *Grid) LiveCells() (count int) {
	g.Walk(func(_ Point, c Cell) {
		if c {
			count++
		}
	})
	return
}

//Clone returns an independent copy
func (g *Grid) Clone() *Grid {
	c := NewGrid(g.width, g.height)
	for y := range g.cells {
		copy(c.cells[y], g.cells[y])
	}
	return c
}

//Equal reports whether both grids have the same dimensions and cells
func (g *Grid) Equal(other *Grid) bool {
	if other == nil || g.width != other.width || g.height != other.height {
		return false
	}
	for y := range g.cells {
		for x := range g.cells[y] {
			if g.cells[y][x] != other.cells[y][x] {
				return false
			}
		}
	}
	return true
}

//Fingerprint returns the md5 hash of the cell states in row-major order
func (g *Grid) Fingerprint() string {
	h := md5.New()
	row := make([]byte, g.width)
	for y := range g.cells {
		for x, c := range g.cells[y] {
			row[x] = 0
			if c {
				row[x] = 1
			}
		}
		h.Write(row)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
