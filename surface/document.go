package surface

import (
	"strings"

	"github.com/google/uuid"

	"flowspark/geometry"
)

// Node is one element of a Document.
type Node struct {
	id       string
	kind     Kind
	Class    string
	Attrs    Attrs
	Lines    []string
	Children []*Node
	parent   *Node
}

func (n *Node) ID() string { return n.id }

func (n *Node) Kind() Kind { return n.kind }

// Parent returns the enclosing node, nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Num returns a numeric attribute, 0 when missing or not numeric.
func (n *Node) Num(name string) float64 {
	switch v := n.Attrs[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

// Str returns a string attribute, "" when missing.
func (n *Node) Str(name string) string {
	s, _ := n.Attrs[name].(string)
	return s
}

// Bool returns a boolean attribute.
func (n *Node) Bool(name string) bool {
	b, _ := n.Attrs[name].(bool)
	return b
}

// Curve returns the cubic stored in the path attribute, if any.
func (n *Node) Curve() (geometry.Cubic, bool) {
	c, ok := n.Attrs[AttrPath].(geometry.Cubic)
	return c, ok
}

// HasClass reports whether the space-separated class list contains c.
func (n *Node) HasClass(c string) bool {
	for _, f := range strings.Fields(n.Class) {
		if f == c {
			return true
		}
	}
	return false
}

// Document is a retained scene graph implementing Surface. It is not safe
// for concurrent use; the engine drives it from a single goroutine.
type Document struct {
	Width, Height float64
	Root          *Node

	index    map[string]*Node
	view     Transform
	captured map[int]*Node
}

// NewDocument creates an empty document with the given viewBox size.
func NewDocument(width, height float64) *Document {
	root := &Node{id: "diagram-" + uuid.NewString(), kind: KindGroup, Class: "diagram", Attrs: Attrs{}}
	return &Document{
		Width:    width,
		Height:   height,
		Root:     root,
		index:    map[string]*Node{root.id: root},
		view:     Identity(),
		captured: make(map[int]*Node),
	}
}

func (d *Document) node(el Element) *Node {
	if el == nil {
		return d.Root
	}
	if n, ok := el.(*Node); ok {
		return n
	}
	return d.index[el.ID()]
}

func (d *Document) add(parent Element, n *Node) *Node {
	p := d.node(parent)
	if p == nil {
		p = d.Root
	}
	n.parent = p
	if n.Attrs == nil {
		n.Attrs = Attrs{}
	}
	p.Children = append(p.Children, n)
	d.index[n.id] = n
	return n
}

func newID(kind Kind) string {
	return string(kind) + "-" + uuid.NewString()
}

func (d *Document) Group(parent Element, class string) Element {
	return d.add(parent, &Node{id: newID(KindGroup), kind: KindGroup, Class: class})
}

func (d *Document) Shape(parent Element, kind Kind, attrs Attrs) Element {
	n := &Node{id: newID(kind), kind: kind, Attrs: Attrs{}}
	for k, v := range attrs {
		if k == AttrClass {
			n.Class, _ = v.(string)
			continue
		}
		n.Attrs[k] = v
	}
	return d.add(parent, n)
}

func (d *Document) Text(parent Element, lines []string, attrs Attrs) Element {
	n := d.Shape(parent, KindText, attrs).(*Node)
	n.Lines = append([]string(nil), lines...)
	return n
}

func (d *Document) SetAttr(el Element, name string, value any) {
	n := d.node(el)
	if n == nil {
		return
	}
	if name == AttrClass {
		n.Class, _ = value.(string)
		return
	}
	n.Attrs[name] = value
}

func (d *Document) SetText(el Element, lines []string) {
	if n := d.node(el); n != nil {
		n.Lines = append([]string(nil), lines...)
	}
}

func (d *Document) Clear(el Element) {
	n := d.node(el)
	if n == nil {
		return
	}
	var drop func(*Node)
	drop = func(c *Node) {
		delete(d.index, c.id)
		for id, held := range d.captured {
			if held == c {
				delete(d.captured, id)
			}
		}
		for _, gc := range c.Children {
			drop(gc)
		}
	}
	for _, c := range n.Children {
		drop(c)
	}
	n.Children = n.Children[:0]
}

func (d *Document) Capture(el Element, pointerID int) {
	if n := d.node(el); n != nil {
		d.captured[pointerID] = n
	}
}

func (d *Document) Release(el Element, pointerID int) {
	if n, ok := d.captured[pointerID]; ok && (el == nil || n.id == el.ID()) {
		delete(d.captured, pointerID)
	}
}

// Captured returns the element holding pointerID, if any.
func (d *Document) Captured(pointerID int) (*Node, bool) {
	n, ok := d.captured[pointerID]
	return n, ok
}

func (d *Document) ToLocal(device geometry.Point) geometry.Point {
	return d.view.Invert(device)
}

// Viewport returns the current scene-to-device transform.
func (d *Document) Viewport() Transform { return d.view }

// SetViewport replaces the scene-to-device transform, e.g. after a resize.
func (d *Document) SetViewport(t Transform) { d.view = t }

// Lookup finds a node by id.
func (d *Document) Lookup(id string) (*Node, bool) {
	n, ok := d.index[id]
	return n, ok
}

// Walk visits nodes depth-first in paint order. Returning false from fn
// skips the node's children.
func (d *Document) Walk(fn func(n *Node) bool) {
	var visit func(*Node)
	visit = func(n *Node) {
		if !fn(n) {
			return
		}
		for _, c := range n.Children {
			visit(c)
		}
	}
	visit(d.Root)
}

// Len returns the number of live nodes, root included.
func (d *Document) Len() int { return len(d.index) }
