package diagram

import (
	"fmt"
	"math"

	"flowspark/geometry"
	"flowspark/palette"
	"flowspark/scene"
	"flowspark/surface"
)

// sparkBrighten is added to each channel of the stroke color for sparks.
const sparkBrighten = 30

// Endpoint names a block edge and a lateral offset along it.
type Endpoint struct {
	Block string
	Edge  geometry.Edge
	T     float64
}

// ConnectionSpec describes a connection to create.
type ConnectionSpec struct {
	Start, End Endpoint

	Width float64
	// Color is a literal color or a palette key. Empty leaves the stroke
	// to the renderer default.
	Color string
	Class string

	Sparks     int
	SparkSpeed float64
	Emitter    bool
	// MaxLive caps live emitter sparks; 0 means no cap.
	MaxLive   int
	EmitMult  float64
	OutOffset float64
	Arrow     bool
}

// NewConnectionSpec returns a spec between two endpoints with the default
// stroke and spark parameters.
func NewConnectionSpec(start, end Endpoint) ConnectionSpec {
	return ConnectionSpec{
		Start:      start,
		End:        end,
		Width:      scene.DefaultWidth,
		SparkSpeed: scene.DefaultSparkSpeed,
		EmitMult:   scene.DefaultEmitMult,
		OutOffset:  scene.DefaultOutOffset,
		Arrow:      true,
	}
}

// specFromScene converts a validated scene descriptor.
func specFromScene(c scene.Connection) (ConnectionSpec, error) {
	se, err := geometry.ParseEdge(c.Start.Edge)
	if err != nil {
		return ConnectionSpec{}, fmt.Errorf("start: %w", err)
	}
	ee, err := geometry.ParseEdge(c.End.Edge)
	if err != nil {
		return ConnectionSpec{}, fmt.Errorf("end: %w", err)
	}
	return ConnectionSpec{
		Start:      Endpoint{Block: c.Start.Block, Edge: se, T: c.Start.T},
		End:        Endpoint{Block: c.End.Block, Edge: ee, T: c.End.T},
		Width:      c.Width,
		Color:      c.Color,
		Class:      c.Class,
		Sparks:     c.Sparks,
		SparkSpeed: c.SparkSpeed,
		Emitter:    c.Emitter,
		MaxLive:    c.MaxLive,
		EmitMult:   c.EmitMult,
		OutOffset:  c.OutOffset,
		Arrow:      c.Arrow,
	}, nil
}

func (s ConnectionSpec) toScene() scene.Connection {
	return scene.Connection{
		Start:      scene.Endpoint{Block: s.Start.Block, Edge: s.Start.Edge.String(), T: s.Start.T},
		End:        scene.Endpoint{Block: s.End.Block, Edge: s.End.Edge.String(), T: s.End.T},
		Width:      s.Width,
		Color:      s.Color,
		Class:      s.Class,
		Sparks:     s.Sparks,
		SparkSpeed: s.SparkSpeed,
		Emitter:    s.Emitter,
		MaxLive:    s.MaxLive,
		EmitMult:   s.EmitMult,
		OutOffset:  s.OutOffset,
		Arrow:      s.Arrow,
	}
}

// Connection is a curve from one block edge to another. Its path is derived
// from the two blocks' current positions on every refresh.
type Connection struct {
	d    *Diagram
	spec ConnectionSpec

	from, to *Block
	stroke   string

	path       surface.Element
	sparkGroup surface.Element

	curve geometry.Cubic

	sparkColor    palette.RGB
	hasSparkColor bool

	// phased mode
	phases []float64
	// emitter mode
	live []float64
	acc  float64

	drawn   []float64
	emitted int
	dropped int
}

func newConnection(d *Diagram, spec ConnectionSpec) (*Connection, error) {
	from, ok := d.blocks[spec.Start.Block]
	if !ok {
		return nil, fmt.Errorf("%w: start %q", ErrUnknownBlock, spec.Start.Block)
	}
	to, ok := d.blocks[spec.End.Block]
	if !ok {
		return nil, fmt.Errorf("%w: end %q", ErrUnknownBlock, spec.End.Block)
	}

	spec.Sparks = min(max(0, spec.Sparks), scene.MaxSparks)
	spec.SparkSpeed = math.Max(0, spec.SparkSpeed)
	spec.EmitMult = math.Max(0, spec.EmitMult)
	spec.MaxLive = min(max(0, spec.MaxLive), scene.MaxSparks)

	c := &Connection{d: d, spec: spec, from: from, to: to, stroke: d.ResolveColor(spec.Color)}

	attrs := surface.Attrs{
		surface.AttrFill:        "none",
		surface.AttrStrokeWidth: spec.Width,
	}
	if spec.Arrow {
		attrs[surface.AttrMarkerEnd] = d.arrow.ID()
	}
	if spec.Class != "" {
		attrs[surface.AttrClass] = spec.Class
	}
	if c.stroke != "" {
		attrs[surface.AttrStroke] = c.stroke
	}
	c.path = d.surf.Shape(d.layers.conns, surface.KindPath, attrs)
	c.sparkGroup = d.surf.Group(d.layers.sparks, "")

	if !spec.Emitter {
		c.phases = make([]float64, spec.Sparks)
		for i := range c.phases {
			c.phases[i] = float64(i) / float64(spec.Sparks)
		}
	}

	c.UpdatePath()
	return c, nil
}

// Spec returns the parameters the connection was built with, after
// negative spark parameters were raised to zero.
func (c *Connection) Spec() ConnectionSpec { return c.spec }

// From and To return the connected blocks.
func (c *Connection) From() *Block { return c.from }

func (c *Connection) To() *Block { return c.to }

// Stroke returns the resolved stroke color, "" when none was given.
func (c *Connection) Stroke() string { return c.stroke }

// endpoints returns both anchors pushed OutOffset units clear of their blocks.
func (c *Connection) endpoints() (p0, p3 geometry.Point) {
	s, e := c.spec.Start, c.spec.End
	p0 = c.from.Anchor(s.Edge, s.T).Add(geometry.Outward(s.Edge).Scale(c.spec.OutOffset))
	p3 = c.to.Anchor(e.Edge, e.T).Add(geometry.Outward(e.Edge).Scale(c.spec.OutOffset))
	return p0, p3
}

// UpdatePath recomputes the curve from the blocks' current positions.
func (c *Connection) UpdatePath() {
	p0, p3 := c.endpoints()
	c1, c2 := geometry.Controls(p0, c.spec.Start.Edge, p3, c.spec.End.Edge, c.d.push)
	c.curve = geometry.Cubic{P0: p0, C1: c1, C2: c2, P3: p3}
	c.d.surf.SetAttr(c.path, surface.AttrPath, c.curve)
}

// Curve returns the path computed by the last refresh.
func (c *Connection) Curve() geometry.Cubic { return c.curve }

// Radius is the spark radius for the connection's stroke width.
func (c *Connection) Radius() float64 {
	return math.Max(1, math.Floor((c.spec.Width+5)/2))
}

// SparkColor is the stroke color brightened for sparks. It is resolved
// once and reused.
func (c *Connection) SparkColor() palette.RGB {
	if !c.hasSparkColor {
		c.sparkColor = palette.MustParse(c.stroke).Brighten(sparkBrighten)
		c.hasSparkColor = true
	}
	return c.sparkColor
}

// Sparks returns the curve parameters of the sparks drawn by the last tick.
func (c *Connection) Sparks() []float64 {
	return append([]float64(nil), c.drawn...)
}

// Live returns the number of sparks drawn by the last tick.
func (c *Connection) Live() int { return len(c.drawn) }

// Emitted is the total number of sparks an emitter connection has created.
func (c *Connection) Emitted() int { return c.emitted }

// Dropped is the total number of emissions refused by the live cap.
func (c *Connection) Dropped() int { return c.dropped }
