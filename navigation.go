package main

import (
	"github.com/charmbracelet/lipgloss"

	"flowspark/geometry"
	"flowspark/surface"
)

// handlePan moves the view. Panning left shows more of the scene to the
// left, so content shifts right.
func (m *model) handlePan(key string, speed int) {
	step := panStep * float64(speed)
	switch key {
	case "h", "left", "H", "shift+left":
		m.panX += step
	case "l", "right", "L", "shift+right":
		m.panX -= step
	case "k", "up", "K", "shift+up":
		m.panY += step / surface.CellAspect
	case "j", "down", "J", "shift+down":
		m.panY -= step / surface.CellAspect
	}
	m.applyViewport()
}

func (m *model) getMoveSpeed(key string) int {
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		return 2
	default:
		return 1
	}
}

func (m *model) recenter() {
	m.panX, m.panY = 0, 0
	m.applyViewport()
}

func (m *model) canvasRows() int {
	// One row for the status line, the rest for help.
	rows := m.height - 1 - lipgloss.Height(m.help.View(m.keys))
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m *model) canvasCols() int {
	if m.width < 1 {
		return 1
	}
	return m.width
}

// applyViewport fits the scene into the canvas area and applies the pan.
// The diagram re-reads the viewport on every pointer event, so a pan in
// the middle of a drag takes effect on the next move.
func (m *model) applyViewport() {
	fit := surface.FitTransform(m.doc.Width, m.doc.Height,
		float64(m.canvasCols()), float64(m.canvasRows()), surface.CellAspect)
	m.doc.SetViewport(fit.Pan(m.panX, m.panY))
}

// cellCenter maps a terminal cell to the device point at its center.
func cellCenter(x, y int) geometry.Point {
	return geometry.Point{X: float64(x) + 0.5, Y: float64(y) + 0.5}
}
