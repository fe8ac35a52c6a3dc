package surface

import (
	"math"

	"flowspark/geometry"
)

// Transform maps scene coordinates to device coordinates:
// device = scene*Scale + Offset.
type Transform struct {
	ScaleX, ScaleY   float64
	OffsetX, OffsetY float64
}

func Identity() Transform {
	return Transform{ScaleX: 1, ScaleY: 1}
}

// Apply maps a scene point to device space.
func (t Transform) Apply(p geometry.Point) geometry.Point {
	return geometry.Point{X: p.X*t.ScaleX + t.OffsetX, Y: p.Y*t.ScaleY + t.OffsetY}
}

// Invert maps a device point back to scene space. A degenerate scale maps
// everything to the origin.
func (t Transform) Invert(p geometry.Point) geometry.Point {
	if t.ScaleX == 0 || t.ScaleY == 0 {
		return geometry.Point{}
	}
	return geometry.Point{X: (p.X - t.OffsetX) / t.ScaleX, Y: (p.Y - t.OffsetY) / t.ScaleY}
}

// Pan shifts the transform by a device-space delta.
func (t Transform) Pan(dx, dy float64) Transform {
	t.OffsetX += dx
	t.OffsetY += dy
	return t
}

// FitTransform fits a viewW x viewH viewBox inside a devW x devH device,
// centered with uniform physical scale (SVG "xMidYMid meet"). aspect is the
// height of one device unit relative to its width: 1 for pixels, about 2
// for terminal cells.
func FitTransform(viewW, viewH, devW, devH, aspect float64) Transform {
	if viewW <= 0 || viewH <= 0 || devW <= 0 || devH <= 0 {
		return Identity()
	}
	if aspect <= 0 {
		aspect = 1
	}
	s := math.Min(devW/viewW, devH*aspect/viewH)
	t := Transform{ScaleX: s, ScaleY: s / aspect}
	t.OffsetX = (devW - viewW*t.ScaleX) / 2
	t.OffsetY = (devH - viewH*t.ScaleY) / 2
	return t
}
