package surface

import (
	"math"

	"flowspark/geometry"
)

// arrowHead returns the triangle drawn at the end of a curve, pointing along
// the curve's tangent at t=1. ok is false for a degenerate curve.
func arrowHead(c geometry.Cubic, length float64) (tip, left, right geometry.Point, ok bool) {
	d := c.Tangent(1)
	n := math.Hypot(d.X, d.Y)
	if n == 0 {
		d = c.P3.Sub(c.P0)
		n = math.Hypot(d.X, d.Y)
		if n == 0 {
			return tip, left, right, false
		}
	}
	d = d.Scale(1 / n)
	a := arrowHeadAngle * math.Pi / 180
	rot := func(v geometry.Point, a float64) geometry.Point {
		return geometry.Point{
			X: v.X*math.Cos(a) - v.Y*math.Sin(a),
			Y: v.X*math.Sin(a) + v.Y*math.Cos(a),
		}
	}
	tip = c.P3
	left = tip.Sub(rot(d, a).Scale(length))
	right = tip.Sub(rot(d, -a).Scale(length))
	return tip, left, right, true
}
