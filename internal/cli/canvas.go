package cli

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/infragraph/pkg/render/nodelink"
	"github.com/matzehuels/infragraph/pkg/render/styles"
)

const (
	glyphNode   = '●'
	glyphPinned = '◆'
	glyphEdge   = '·'
	glyphMarked = '•'

	maxCanvasLabel = 16
)

type cell struct {
	r     rune
	color lipgloss.TerminalColor
}

// canvas is a character-cell rendering of a view. The camera's view
// rectangle is stretched over cols×rows cells, so the canvas shows the
// same region a PNG export would.
type canvas struct {
	cols, rows int
	cells      [][]cell
	hits       map[[2]int]string // (col, row) -> node id
}

func newCanvas(cols, rows int) *canvas {
	cols, rows = max(cols, 1), max(rows, 1)
	c := &canvas{cols: cols, rows: rows, cells: make([][]cell, rows), hits: map[[2]int]string{}}
	for y := range c.cells {
		c.cells[y] = make([]cell, cols)
		for x := range c.cells[y] {
			c.cells[y][x] = cell{r: ' '}
		}
	}
	return c
}

// drawView draws edges first and nodes with their labels on top.
func drawView(v *nodelink.View, cols, rows int) *canvas {
	c := newCanvas(cols, rows)
	highlight, hasHighlight := v.Highlighted()

	for _, e := range v.Graph.Edges() {
		x0, y0, ok0 := c.project(v, e.Source)
		x1, y1, ok1 := c.project(v, e.Target)
		if !ok0 || !ok1 {
			continue
		}
		r, color := glyphEdge, lipgloss.TerminalColor(colorDim)
		if hasHighlight && e.Key() == highlight {
			r, color = glyphMarked, lipgloss.Color(styles.HighlightColor)
		}
		c.line(x0, y0, x1, y1, r, color)
	}

	for _, n := range v.Graph.Nodes() {
		x, y, ok := c.project(v, n.ID)
		if !ok {
			continue
		}
		pos, _ := v.Layout.Position(n.ID)
		r := glyphNode
		if pos.Pinned {
			r = glyphPinned
		}
		c.set(x, y, r, lipgloss.Color(v.Palette.Color(n.Type)), n.ID)
		for i, lr := range []rune(truncate(n.Label(), maxCanvasLabel)) {
			c.set(x+2+i, y, lr, colorWhite, n.ID)
		}
	}
	return c
}

// project maps a node's layout position to a cell.
func (c *canvas) project(v *nodelink.View, id string) (int, int, bool) {
	pos, ok := v.Layout.Position(id)
	if !ok {
		return 0, 0, false
	}
	sx, sy := v.Camera.ToScreen(pos.Point())
	col := int(math.Floor(sx / v.Camera.Width * float64(c.cols)))
	row := int(math.Floor(sy / v.Camera.Height * float64(c.rows)))
	return col, row, true
}

// screenPoint returns the view coordinates of the center of a cell.
func (c *canvas) screenPoint(v *nodelink.View, col, row int) (float64, float64) {
	return (float64(col) + 0.5) * v.Camera.Width / float64(c.cols),
		(float64(row) + 0.5) * v.Camera.Height / float64(c.rows)
}

func (c *canvas) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < c.cols && y < c.rows
}

func (c *canvas) set(x, y int, r rune, color lipgloss.TerminalColor, id string) {
	if !c.inside(x, y) {
		return
	}
	c.cells[y][x] = cell{r: r, color: color}
	if id != "" {
		c.hits[[2]int{x, y}] = id
	}
}

// line draws a Bresenham line, leaving both end cells untouched.
func (c *canvas) line(x0, y0, x1, y1 int, r rune, color lipgloss.TerminalColor) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	err := dx + dy
	x, y := x0, y0
	for steps := 0; x != x1 || y != y1; steps++ {
		if steps > 0 && c.inside(x, y) && c.cells[y][x].r == ' ' {
			c.cells[y][x] = cell{r: r, color: color}
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
		if steps > c.cols*c.rows {
			break
		}
	}
}

// nodeAt returns the node drawn at a cell, glyph or label.
func (c *canvas) nodeAt(col, row int) (string, bool) {
	id, ok := c.hits[[2]int{col, row}]
	return id, ok
}

// String renders the canvas with colors, one line per row.
func (c *canvas) String() string {
	var b strings.Builder
	for y, row := range c.cells {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < len(row); {
			end := x + 1
			for end < len(row) && row[end].color == row[x].color {
				end++
			}
			var run strings.Builder
			for _, cl := range row[x:end] {
				run.WriteRune(cl.r)
			}
			if row[x].color != nil {
				b.WriteString(lipgloss.NewStyle().Foreground(row[x].color).Render(run.String()))
			} else {
				b.WriteString(run.String())
			}
			x = end
		}
	}
	return b.String()
}

// plain renders the canvas without colors.
func (c *canvas) plain() string {
	lines := make([]string, len(c.cells))
	for y, row := range c.cells {
		rs := make([]rune, len(row))
		for x, cl := range row {
			rs[x] = cl.r
		}
		lines[y] = string(rs)
	}
	return strings.Join(lines, "\n")
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
