package geometry

// Cubic is a cubic Bézier curve from P0 to P3 with handles C1 and C2.
type Cubic struct {
	P0, C1, C2, P3 Point
}

// At evaluates the curve at t in [0, 1] using the Bernstein form.
func (c Cubic) At(t float64) Point {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	d := 3 * u * t * t
	e := t * t * t
	return Point{
		X: a*c.P0.X + b*c.C1.X + d*c.C2.X + e*c.P3.X,
		Y: a*c.P0.Y + b*c.C1.Y + d*c.C2.Y + e*c.P3.Y,
	}
}

// Tangent returns the (unnormalized) derivative of the curve at t.
func (c Cubic) Tangent(t float64) Point {
	u := 1 - t
	d01 := c.C1.Sub(c.P0).Scale(u * u)
	d12 := c.C2.Sub(c.C1).Scale(2 * u * t)
	d23 := c.P3.Sub(c.C2).Scale(t * t)
	return d01.Add(d12).Add(d23).Scale(3)
}

// Flatten samples the curve into n+1 points, endpoints included.
func (c Cubic) Flatten(n int) []Point {
	if n < 1 {
		n = 1
	}
	pts := make([]Point, 0, n+1)
	for i := 0; i <= n; i++ {
		pts = append(pts, c.At(float64(i)/float64(n)))
	}
	return pts
}
