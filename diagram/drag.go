package diagram

import (
	"fmt"
	"math"

	"flowspark/geometry"
	"flowspark/surface"
)

// PointerKind is the phase of a pointer event.
type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
	PointerCancel
)

func (k PointerKind) String() string {
	switch k {
	case PointerDown:
		return "down"
	case PointerMove:
		return "move"
	case PointerUp:
		return "up"
	case PointerCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// PointerEvent is a pointer sample in device coordinates.
type PointerEvent struct {
	Kind      PointerKind
	PointerID int
	X, Y      float64
}

// dragSession is the dragging state of a block. A nil session means idle.
type dragSession struct {
	pointerID int
	start     geometry.Point // pointer position in scene units at press
	origin    geometry.Point // block position at press
}

func (b *Block) beginDrag(pointerID int, at geometry.Point) {
	b.drag = &dragSession{
		pointerID: pointerID,
		start:     at,
		origin:    geometry.Point{X: b.x, Y: b.y},
	}
	b.d.surf.Capture(b.group, pointerID)
	b.d.surf.SetAttr(b.group, surface.AttrClass, b.className())
	b.d.showDebug(b)
}

func (b *Block) dragTo(at geometry.Point) {
	s := b.drag
	p := s.origin.Add(at.Sub(s.start))
	if err := b.SetPos(p.X, p.Y); err != nil {
		b.d.log.Warn("drag ignored", "block", b.id, "error", err)
		return
	}
	b.d.showDebug(b)
}

func (b *Block) endDrag() {
	s := b.drag
	b.drag = nil
	b.d.surf.Release(b.group, s.pointerID)
	b.d.surf.SetAttr(b.group, surface.AttrClass, b.className())
	b.d.hideDebug()
}

// HandlePointer feeds one pointer event through the per-block drag state
// machines. Device coordinates are mapped into the scene with the surface
// transform current at this event. It reports whether the event changed
// any drag state.
func (d *Diagram) HandlePointer(ev PointerEvent) bool {
	switch ev.Kind {
	case PointerDown:
		if _, busy := d.drags[ev.PointerID]; busy {
			return false
		}
		at := d.surf.ToLocal(geometry.Point{X: ev.X, Y: ev.Y})
		b := d.hitTest(at)
		if b == nil {
			return false
		}
		b.beginDrag(ev.PointerID, at)
		d.drags[ev.PointerID] = b
		d.log.Debug("drag started", "block", b.id, "pointer", ev.PointerID, "x", at.X, "y", at.Y)
		return true

	case PointerMove:
		b, ok := d.drags[ev.PointerID]
		if !ok {
			return false
		}
		b.dragTo(d.surf.ToLocal(geometry.Point{X: ev.X, Y: ev.Y}))
		return true

	case PointerUp, PointerCancel:
		b, ok := d.drags[ev.PointerID]
		if !ok {
			return false
		}
		delete(d.drags, ev.PointerID)
		b.endDrag()
		d.metrics.RecordDrag(ev.Kind == PointerCancel)
		d.log.Debug("drag ended", "block", b.id, "pointer", ev.PointerID, "x", b.x, "y", b.y, "reason", ev.Kind.String())
		return true
	}
	return false
}

// hitTest returns the topmost block under p, or nil when there is none or
// it is already held by another pointer. Notes paint above regular blocks,
// and later blocks above earlier ones.
func (d *Diagram) hitTest(p geometry.Point) *Block {
	for _, wantNote := range []bool{true, false} {
		for i := len(d.order) - 1; i >= 0; i-- {
			b := d.order[i]
			if b.note != wantNote || !b.contains(p) {
				continue
			}
			if b.drag != nil {
				return nil
			}
			return b
		}
	}
	return nil
}

func (d *Diagram) showDebug(b *Block) {
	if d.debug == nil {
		return
	}
	d.surf.SetText(d.debug, []string{fmt.Sprintf("%s: (%d, %d)", b.id, int(math.Round(b.x)), int(math.Round(b.y)))})
	d.surf.SetAttr(d.debug, surface.AttrHidden, false)
}

func (d *Diagram) hideDebug() {
	if d.debug == nil {
		return
	}
	d.surf.SetAttr(d.debug, surface.AttrHidden, true)
}
