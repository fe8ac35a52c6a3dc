package surface

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"flowspark/geometry"
	"flowspark/palette"
)

// CellAspect is the height of a terminal cell relative to its width.
const CellAspect = 2.0

type cell struct {
	ch    rune
	color palette.RGB
	set   bool
	// wide marks the cell to the right of a double-width rune.
	wide bool
}

// grid is a character canvas in device (cell) coordinates.
type grid struct {
	cols, rows int
	cells      [][]cell
}

func newGrid(cols, rows int) *grid {
	g := &grid{cols: cols, rows: rows, cells: make([][]cell, rows)}
	for y := range g.cells {
		g.cells[y] = make([]cell, cols)
		for x := range g.cells[y] {
			g.cells[y][x] = cell{ch: ' '}
		}
	}
	return g
}

func (g *grid) put(x, y int, ch rune, col palette.RGB) {
	if y < 0 || y >= g.rows || x < 0 || x >= g.cols {
		return
	}
	g.cells[y][x] = cell{ch: ch, color: col, set: true}
	if runewidth.RuneWidth(ch) == 2 && x+1 < g.cols {
		g.cells[y][x+1] = cell{wide: true}
	}
}

// RenderTerminal draws d into cols x rows character cells through the
// document's current viewport, one styled string per row.
func RenderTerminal(d *Document, cols, rows int, theme Theme) []string {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	g := newGrid(cols, rows)
	view := d.Viewport()
	for _, c := range d.Root.Children {
		drawCells(g, view, c, theme)
	}
	return g.lines()
}

func drawCells(g *grid, view Transform, n *Node, theme Theme) {
	if n.Bool(AttrHidden) {
		return
	}
	switch n.Kind() {
	case KindGroup:
		for _, c := range n.Children {
			drawCells(g, view, c, theme)
		}
	case KindRect:
		drawBoxCells(g, view, n, theme)
	case KindText:
		drawTextCells(g, view, n, theme)
	case KindPath:
		drawPathCells(g, view, n)
	case KindCircle:
		p := view.Apply(geometry.Point{X: n.Num(AttrCX), Y: n.Num(AttrCY)})
		g.put(int(math.Floor(p.X)), int(math.Floor(p.Y)), '●', palette.MustParse(n.Str(AttrFill)))
	}
}

func drawBoxCells(g *grid, view Transform, n *Node, theme Theme) {
	tl := view.Apply(geometry.Point{X: n.Num(AttrX), Y: n.Num(AttrY)})
	br := view.Apply(geometry.Point{X: n.Num(AttrX) + n.Num(AttrWidth), Y: n.Num(AttrY) + n.Num(AttrHeight)})
	x0, y0 := int(math.Round(tl.X)), int(math.Round(tl.Y))
	x1, y1 := int(math.Round(br.X))-1, int(math.Round(br.Y))-1
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}

	border := theme.BlockBorder
	if p := n.Parent(); p != nil && p.HasClass("dragging") {
		border = theme.Text
	}
	horizontal, vertical := '─', '│'
	if p := n.Parent(); p != nil && p.HasClass("note") {
		horizontal, vertical = '┄', '┆'
	}

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			var ch rune
			switch {
			case y == y0 && x == x0:
				ch = '╭'
			case y == y0 && x == x1:
				ch = '╮'
			case y == y1 && x == x0:
				ch = '╰'
			case y == y1 && x == x1:
				ch = '╯'
			case y == y0 || y == y1:
				ch = horizontal
			case x == x0 || x == x1:
				ch = vertical
			default:
				ch = ' '
			}
			g.put(x, y, ch, border)
		}
	}
}

func drawTextCells(g *grid, view Transform, n *Node, theme Theme) {
	fg := theme.Text
	if f := n.Str(AttrFill); f != "" {
		fg = palette.MustParse(f)
	}
	lh := n.Num(AttrLineHeight)
	for i, line := range n.Lines {
		p := view.Apply(geometry.Point{X: n.Num(AttrX), Y: n.Num(AttrY) + float64(i)*lh})
		w := runewidth.StringWidth(line)
		x := int(math.Round(p.X)) - w/2
		if n.Str(AttrAnchor) == "end" {
			x = int(math.Round(p.X)) - w
		}
		y := int(math.Floor(p.Y))
		for _, r := range line {
			g.put(x, y, r, fg)
			x += runewidth.RuneWidth(r)
		}
	}
}

func drawPathCells(g *grid, view Transform, n *Node) {
	c, ok := n.Curve()
	if !ok {
		return
	}
	col := strokeColor(n)
	dev := geometry.Cubic{P0: view.Apply(c.P0), C1: view.Apply(c.C1), C2: view.Apply(c.C2), P3: view.Apply(c.P3)}

	steps := int(dev.P0.Distance(dev.C1)+dev.C1.Distance(dev.C2)+dev.C2.Distance(dev.P3)) * 2
	steps = max(8, min(steps, 2000))
	pts := dev.Flatten(steps)
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		g.put(int(math.Floor(b.X)), int(math.Floor(b.Y)), lineRune(b.Sub(a)), col)
	}
	if n.Str(AttrMarkerEnd) != "" {
		g.put(int(math.Floor(dev.P3.X)), int(math.Floor(dev.P3.Y)), arrowRune(dev.Tangent(1)), col)
	}
}

// lineRune picks a stroke character for a step in cell space. Cells are
// twice as tall as wide, so vertical motion is weighted accordingly.
func lineRune(d geometry.Point) rune {
	dx, dy := math.Abs(d.X), math.Abs(d.Y)*CellAspect
	switch {
	case dx > 2*dy:
		return '─'
	case dy > 2*dx:
		return '│'
	case (d.X > 0) == (d.Y > 0):
		return '╲'
	default:
		return '╱'
	}
}

func arrowRune(d geometry.Point) rune {
	if math.Abs(d.X) >= math.Abs(d.Y)*CellAspect {
		if d.X >= 0 {
			return '▶'
		}
		return '◀'
	}
	if d.Y >= 0 {
		return '▼'
	}
	return '▲'
}

func (g *grid) lines() []string {
	out := make([]string, g.rows)
	for y, row := range g.cells {
		var line, run strings.Builder
		var runColor palette.RGB
		runSet := false
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runSet {
				line.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(runColor.Hex())).Render(run.String()))
			} else {
				line.WriteString(run.String())
			}
			run.Reset()
		}
		for _, c := range row {
			if c.wide {
				continue
			}
			if c.set != runSet || (c.set && c.color != runColor) {
				flush()
				runSet, runColor = c.set, c.color
			}
			run.WriteRune(c.ch)
		}
		flush()
		out[y] = line.String()
	}
	return out
}

// Plain strips styling from rendered terminal lines; tests and the text
// export use it.
func Plain(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = ansi.Strip(l)
	}
	return out
}
