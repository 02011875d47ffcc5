package viz

import (
	"math"
	"strings"
)

// Braille patterns hold 2x4 dots per cell:
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set sets a dot at sub-pixel coordinates. The canvas is (Width*2) x
// (Height*4) dots; dots outside it are dropped.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawPath draws a polyline through world points scaled to fit the canvas.
func (c *Canvas) DrawPath(xs, ys []float64, f Frame) {
	n := min(len(xs), len(ys))
	px, py := -1, -1
	for i := 0; i < n; i++ {
		x, y, ok := f.Project(xs[i], ys[i], c.Width*2, c.Height*4)
		if !ok {
			px = -1
			continue
		}
		if px < 0 {
			c.Set(x, y)
		} else {
			c.DrawLine(px, py, x, y)
		}
		px, py = x, y
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// Frame is the world rectangle mapped onto a canvas.
type Frame struct {
	MinX, MaxX, MinY, MaxY float64
}

// FitFrame returns the bounding box of the points, padded so a flat or
// single-point path still spans the canvas.
func FitFrame(xs, ys []float64) Frame {
	f := Frame{MinX: math.Inf(1), MaxX: math.Inf(-1), MinY: math.Inf(1), MaxY: math.Inf(-1)}
	n := min(len(xs), len(ys))
	for i := 0; i < n; i++ {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		f.MinX, f.MaxX = math.Min(f.MinX, xs[i]), math.Max(f.MaxX, xs[i])
		f.MinY, f.MaxY = math.Min(f.MinY, ys[i]), math.Max(f.MaxY, ys[i])
	}
	if f.MinX > f.MaxX {
		return Frame{MinX: 0, MaxX: 1, MinY: 0, MaxY: 1}
	}
	if f.MaxX-f.MinX < 1e-9 {
		f.MinX, f.MaxX = f.MinX-0.5, f.MaxX+0.5
	}
	if f.MaxY-f.MinY < 1e-9 {
		f.MinY, f.MaxY = f.MinY-0.5, f.MaxY+0.5
	}
	return f
}

// Project maps a world point to dot coordinates, y up.
func (f Frame) Project(x, y float64, w, h int) (int, int, bool) {
	if math.IsNaN(x) || math.IsNaN(y) {
		return 0, 0, false
	}
	u := (x - f.MinX) / (f.MaxX - f.MinX)
	v := (y - f.MinY) / (f.MaxY - f.MinY)
	if u < 0 || u > 1 || v < 0 || v > 1 {
		return 0, 0, false
	}
	px := int(math.Round(u * float64(w-1)))
	py := int(math.Round((1 - v) * float64(h-1)))
	return px, py, true
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
