package tui

import "strings"

// canvas is a fixed-size rune grid the particle field is drawn onto.
type canvas struct {
	width, height int
	grid          [][]rune
}

func newCanvas(w, h int) *canvas {
	grid := make([][]rune, h)
	for i := range grid {
		grid[i] = make([]rune, w)
	}
	c := &canvas{width: w, height: h, grid: grid}
	c.clear()
	return c
}

func (c *canvas) clear() {
	for y := range c.grid {
		for x := range c.grid[y] {
			c.grid[y][x] = ' '
		}
	}
}

func (c *canvas) set(x, y int, r rune) {
	if x >= 0 && x < c.width && y >= 0 && y < c.height {
		c.grid[y][x] = r
	}
}

func (c *canvas) String() string {
	var b strings.Builder
	for y := range c.grid {
		b.WriteString(string(c.grid[y]))
		b.WriteByte('\n')
	}
	return b.String()
}

// damageRune picks a glyph for a particle by its damage fraction.
func damageRune(d float64) rune {
	switch {
	case d < 0.05:
		return '·'
	case d < 0.3:
		return 'o'
	case d < 0.7:
		return '*'
	default:
		return 'X'
	}
}
