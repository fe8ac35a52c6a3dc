// Package surface defines the drawing capabilities the diagram engine needs
// and provides a retained in-memory implementation plus rasterizers for it.
package surface

import (
	"flowspark/geometry"
)

// Kind identifies what an element draws.
type Kind string

const (
	KindGroup  Kind = "g"
	KindRect   Kind = "rect"
	KindText   Kind = "text"
	KindPath   Kind = "path"
	KindCircle Kind = "circle"
	KindMarker Kind = "marker"
	KindGrid   Kind = "grid"
)

// Attrs carries element attributes. Values are float64, string, bool or
// geometry.Cubic (the "d" attribute of a path).
type Attrs map[string]any

// Element is a handle to something created on a Surface.
type Element interface {
	ID() string
	Kind() Kind
}

// Surface is the capability set the engine draws through. A nil parent
// means the surface root.
type Surface interface {
	Group(parent Element, class string) Element
	Shape(parent Element, kind Kind, attrs Attrs) Element
	Text(parent Element, lines []string, attrs Attrs) Element
	SetAttr(el Element, name string, value any)
	SetText(el Element, lines []string)
	// Clear removes every child of el.
	Clear(el Element)

	Capture(el Element, pointerID int)
	Release(el Element, pointerID int)

	// ToLocal maps a device-space point into scene coordinates using the
	// transform in effect right now.
	ToLocal(device geometry.Point) geometry.Point
}

// Common attribute names.
const (
	AttrX           = "x"
	AttrY           = "y"
	AttrWidth       = "width"
	AttrHeight      = "height"
	AttrRadius      = "r"
	AttrCX          = "cx"
	AttrCY          = "cy"
	AttrFill        = "fill"
	AttrStroke      = "stroke"
	AttrStrokeWidth = "stroke-width"
	AttrClass       = "class"
	AttrPath        = "d"
	AttrMarkerEnd   = "marker-end"
	AttrHidden      = "hidden"
	AttrCorner      = "rx"
	AttrLineHeight  = "line-height"
	AttrAnchor      = "text-anchor"
	AttrSpacing     = "spacing"
)
