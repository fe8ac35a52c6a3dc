package diagram

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"flowspark/geometry"
	"flowspark/surface"
)

const (
	blockCorner = 14.0
	lineHeight  = 18.0
	// baselineNudge moves the first baseline down so a single line sits in
	// the vertical middle of the block.
	baselineNudge = 12.0
)

var lineBreak = regexp.MustCompile(`<br\s*/?>`)

// Block is a labeled rectangle that connections attach to. Its position
// changes only through SetPos or an active drag.
type Block struct {
	d *Diagram

	id         string
	x, y, w, h float64
	label      string
	note       bool

	group surface.Element
	rect  surface.Element
	text  surface.Element

	drag *dragSession
}

// BlockOption customizes AddBlock.
type BlockOption func(*Block)

// AsNote places the block in the topmost notes layer.
func AsNote() BlockOption {
	return func(b *Block) { b.note = true }
}

func finite(v ...float64) bool {
	for _, f := range v {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// checkBlock reports why a block with this id and geometry cannot be
// created, or nil.
func checkBlock(id string, x, y, w, h float64) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidBlock)
	}
	if !finite(x, y, w, h) {
		return fmt.Errorf("%w: %s: non-finite geometry", ErrInvalidBlock, id)
	}
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: %s: size %gx%g", ErrInvalidBlock, id, w, h)
	}
	return nil
}

func newBlock(d *Diagram, id string, x, y, w, h float64, label string, opts ...BlockOption) (*Block, error) {
	if err := checkBlock(id, x, y, w, h); err != nil {
		return nil, err
	}
	b := &Block{d: d, id: id, x: x, y: y, w: w, h: h, label: label}
	for _, opt := range opts {
		opt(b)
	}

	layer := d.layers.blocks
	if b.note {
		layer = d.layers.notes
	}
	b.group = d.surf.Group(layer, b.className())
	b.rect = d.surf.Shape(b.group, surface.KindRect, surface.Attrs{
		surface.AttrX:      x,
		surface.AttrY:      y,
		surface.AttrWidth:  w,
		surface.AttrHeight: h,
		surface.AttrCorner: blockCorner,
	})
	b.text = d.surf.Text(b.group, b.Lines(), surface.Attrs{
		surface.AttrAnchor:     "middle",
		surface.AttrLineHeight: lineHeight,
	})
	b.placeText()
	return b, nil
}

func (b *Block) ID() string { return b.id }

// Pos returns the top-left corner.
func (b *Block) Pos() (x, y float64) { return b.x, b.y }

func (b *Block) Size() (w, h float64) { return b.w, b.h }

func (b *Block) Label() string { return b.label }

// IsNote reports whether the block lives in the notes layer.
func (b *Block) IsNote() bool { return b.note }

// Rect returns the block's current bounds.
func (b *Block) Rect() geometry.Rect {
	return geometry.Rect{X: b.x, Y: b.y, W: b.w, H: b.h}
}

// Anchor returns the point on edge e at offset t for the current position.
func (b *Block) Anchor(e geometry.Edge, t float64) geometry.Point {
	return geometry.Anchor(b.Rect(), e, t)
}

// Lines splits the label on newlines and <br> tags.
func (b *Block) Lines() []string {
	return strings.Split(lineBreak.ReplaceAllString(b.label, "\n"), "\n")
}

// Dragging reports whether a pointer currently holds the block.
func (b *Block) Dragging() bool { return b.drag != nil }

// SetPos moves the block and synchronously refreshes every connection path.
func (b *Block) SetPos(x, y float64) error {
	if !finite(x, y) {
		return fmt.Errorf("%w: %s: non-finite position", ErrInvalidBlock, b.id)
	}
	b.x, b.y = x, y
	b.d.surf.SetAttr(b.rect, surface.AttrX, x)
	b.d.surf.SetAttr(b.rect, surface.AttrY, y)
	b.placeText()
	b.d.Update()
	return nil
}

// placeText centers the label block inside the rectangle.
func (b *Block) placeText() {
	n := len(b.Lines())
	total := lineHeight * float64(n)
	c := b.Rect().Center()
	b.d.surf.SetAttr(b.text, surface.AttrX, c.X)
	b.d.surf.SetAttr(b.text, surface.AttrY, c.Y-total/2+baselineNudge)
}

func (b *Block) className() string {
	cls := "block"
	if b.note {
		cls += " note"
	}
	if b.drag != nil {
		cls += " dragging"
	}
	return cls
}

func (b *Block) contains(p geometry.Point) bool {
	return b.Rect().Contains(p)
}
