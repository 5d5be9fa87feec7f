package view

import (
	"sync"

	"github.com/pkg/errors"

	"lifegame/src/life"
	"lifegame/src/universe"
)

const (
	CanvasPixel     = universe.CanvasPixel
	CanvasPersisted = universe.CanvasPersisted
)

//CanvasKinds lists the canvas names accepted by NewCanvas
var CanvasKinds = universe.CanvasKinds

var ErrUnknownCanvas = errors.New("unknown canvas")

//Surface is a canvas the terminal can read the pixels from
type Surface interface {
	universe.Canvas
	Pixels() [][]life.Cell
}

//NewCanvas creates the canvas by its name
func NewCanvas(kind string) (Surface, error) {
	switch kind {
	case CanvasPixel:
		return NewPixelCanvas(), nil
	case CanvasPersisted:
		return NewPersistedCanvas(), nil
	}
	return nil, errors.Wrapf(ErrUnknownCanvas, "[NewCanvas] %q", kind)
}

//NextCanvasKind returns the kind following kind in CanvasKinds
func NextCanvasKind(kind string) string {
	for i, k := range CanvasKinds {
		if k == kind {
			return CanvasKinds[(i+1)%len(CanvasKinds)]
		}
	}
	return CanvasKinds[0]
}

//frameBuffer holds the pixels, the universe draws into back and the terminal reads front.
//EndFrame publishes back as a whole, so a reader never sees a half drawn frame.
type frameBuffer struct {
	sync.Mutex
	front [][]life.Cell
	back  [][]life.Cell
	draws int
}

func newPixels(width int, height int) [][]life.Cell {
	pixels := make([][]life.Cell, height)
	b := make([]life.Cell, width*height)
	for i := range pixels {
		start := width * i
		pixels[i] = b[start : start+width : start+width]
	}
	return pixels
}

func (f *frameBuffer) Resize(width int, height int) {
	f.Lock()
	defer f.Unlock()
	f.front = newPixels(width, height)
	f.back = newPixels(width, height)
}

func (f *frameBuffer) DrawCell(p life.Point, c life.Cell) {
	f.Lock()
	defer f.Unlock()
	f.draws++
	if p.Y < 0 || p.Y >= len(f.back) || p.X < 0 || p.X >= len(f.back[p.Y]) {
		return
	}
	f.back[p.Y][p.X] = c
}

//EndFrame copies the back buffer to the front one,
//back keeps the frame so single cells can be drawn on top of it later
func (f *frameBuffer) EndFrame() {
	f.Lock()
	defer f.Unlock()
	for y := range f.back {
		copy(f.front[y], f.back[y])
	}
}

func (f *frameBuffer) Draws() int {
	f.Lock()
	defer f.Unlock()
	return f.draws
}

//Pixels returns a copy of the last published frame
func (f *frameBuffer) Pixels() [][]life.Cell {
	f.Lock()
	defer f.Unlock()
	out := make([][]life.Cell, len(f.front))
	for y := range f.front {
		out[y] = append([]life.Cell(nil), f.front[y]...)
	}
	return out
}

//PixelCanvas is cleared at the beginning of every frame,
//so each cell has to be drawn again, changed or not
type PixelCanvas struct {
	frameBuffer
}

func NewPixelCanvas() *PixelCanvas {
	return &PixelCanvas{}
}

func (c *PixelCanvas) Name() string {
	return CanvasPixel
}

func (c *PixelCanvas) BeginFrame() {
	c.Lock()
	defer c.Unlock()
	c.draws = 0
	for y := range c.back {
		for x := range c.back[y] {
			c.back[y][x] = life.Dead
		}
	}
}

func (c *PixelCanvas) DrawOnNoUpdate() bool {
	return true
}

//PersistedCanvas keeps its pixels between frames,
//only the changed cells need to be drawn
type PersistedCanvas struct {
	frameBuffer
}

func NewPersistedCanvas() *PersistedCanvas {
	return &PersistedCanvas{}
}

func (c *PersistedCanvas) Name() string {
	return CanvasPersisted
}

func (c *PersistedCanvas) BeginFrame() {
	c.Lock()
	c.draws = 0
	c.Unlock()
}

func (c *PersistedCanvas) DrawOnNoUpdate() bool {
	return false
}
