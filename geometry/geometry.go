// Package geometry holds the pure math behind block anchors and connection curves.
package geometry

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrUnknownEdge is returned when an edge name is not one of top, right, bottom or left.
var ErrUnknownEdge = errors.New("unknown edge")

// Point is a position or a vector in scene units.
type Point struct {
	X, Y float64
}

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }

func (p Point) Neg() Point { return Point{-p.X, -p.Y} }

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Rect is an axis-aligned box with its origin at the top-left corner.
type Rect struct {
	X, Y, W, H float64
}

// Center returns the middle of the rectangle.
func (r Rect) Center() Point {
	return Point{r.X + r.W/2, r.Y + r.H/2}
}

// Contains reports whether p lies inside r, borders included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Edge names one of the four sides of a block.
type Edge int

const (
	Top Edge = iota
	Right
	Bottom
	Left
)

func (e Edge) String() string {
	switch e {
	case Top:
		return "top"
	case Right:
		return "right"
	case Bottom:
		return "bottom"
	case Left:
		return "left"
	default:
		return "unknown"
	}
}

// ParseEdge converts a side name into an Edge. Matching ignores case and surrounding space.
func ParseEdge(s string) (Edge, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top":
		return Top, nil
	case "right":
		return Right, nil
	case "bottom":
		return Bottom, nil
	case "left":
		return Left, nil
	}
	return Top, fmt.Errorf("%w: %q", ErrUnknownEdge, s)
}

// ClampOffset limits a lateral edge offset to [-0.5, 0.5].
func ClampOffset(t float64) float64 {
	if math.IsNaN(t) {
		return 0
	}
	return math.Max(-0.5, math.Min(0.5, t))
}

// Anchor returns the point on edge e of r located by offset t, where t=0 is
// the middle of the side and ±0.5 are its corners. Out-of-range offsets are
// clamped, not rejected.
func Anchor(r Rect, e Edge, t float64) Point {
	t = ClampOffset(t)
	switch e {
	case Top, Bottom:
		y := r.Y
		if e == Bottom {
			y = r.Y + r.H
		}
		return Point{r.X + r.W/2 + r.W*t, y}
	default:
		x := r.X
		if e == Right {
			x = r.X + r.W
		}
		return Point{x, r.Y + r.H/2 + r.H*t}
	}
}

// Outward is the unit vector leaving a block through edge e.
func Outward(e Edge) Point {
	switch e {
	case Top:
		return Point{0, -1}
	case Right:
		return Point{1, 0}
	case Bottom:
		return Point{0, 1}
	default:
		return Point{-1, 0}
	}
}

// Inward is the unit vector entering a block through edge e.
func Inward(e Edge) Point {
	return Outward(e).Neg()
}

// Push bounds how far Bézier handles reach: Ratio of the endpoint span, capped at Max.
type Push struct {
	Max   float64
	Ratio float64
}

// DefaultPush matches the stock renderer constants.
var DefaultPush = Push{Max: 320, Ratio: 0.42}

// Length returns the handle length for a curve whose endpoints are span apart.
func (p Push) Length(span float64) float64 {
	return math.Min(p.Max, span*p.Ratio)
}

// Controls derives the two inner control points of a connection curve. The
// curve leaves p0 along the outward normal of startEdge and arrives at p3
// along the inward normal of endEdge.
func Controls(p0 Point, startEdge Edge, p3 Point, endEdge Edge, push Push) (c1, c2 Point) {
	l := push.Length(p0.Distance(p3))
	c1 = p0.Add(Outward(startEdge).Scale(l))
	c2 = p3.Sub(Inward(endEdge).Scale(l))
	return c1, c2
}
