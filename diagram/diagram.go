// Package diagram is the geometry and animation engine: blocks, the curved
// connections between their edges, the sparks that travel along them, and
// pointer dragging of blocks.
//
// A Diagram is not safe for concurrent use. Ticks and pointer events must be
// delivered from one goroutine, which Run does for channel-based hosts.
package diagram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"flowspark/geometry"
	"flowspark/metrics"
	"flowspark/surface"
)

// Diagram owns every block and connection drawn on one surface.
type Diagram struct {
	cfg  Config
	push geometry.Push
	surf surface.Surface

	log     *slog.Logger
	metrics *metrics.Registry
	clock   Clock
	rng     RandomSource

	layers struct {
		blocks, conns, sparks, notes surface.Element
	}
	arrow surface.Element
	debug surface.Element

	blocks map[string]*Block
	order  []*Block
	conns  []*Connection
	drags  map[int]*Block

	running bool
	last    time.Time
	elapsed float64
}

// New creates an empty diagram drawing onto s. Layers are created bottom to
// top: grid, blocks, connections, sparks, notes, then the debug readout.
func New(s surface.Surface, cfg Config, opts ...Option) (*Diagram, error) {
	if s == nil {
		return nil, ErrNoSurface
	}
	cfg = cfg.withDefaults()
	d := &Diagram{
		cfg:    cfg,
		push:   cfg.push(),
		surf:   s,
		log:    discardLogger(),
		clock:  systemClock{},
		rng:    globalRand{},
		blocks: make(map[string]*Block),
		drags:  make(map[int]*Block),
	}
	for _, opt := range opts {
		opt(d)
	}
	// A registry may outlive an earlier diagram.
	d.metrics.UpdateScene(0, 0)
	d.metrics.SetLiveSparks(0)

	defs := s.Group(nil, "defs")
	d.arrow = s.Shape(defs, surface.KindMarker, nil)
	if cfg.Grid {
		s.Shape(nil, surface.KindGrid, surface.Attrs{surface.AttrSpacing: cfg.GridSpacing})
	}
	d.layers.blocks = s.Group(nil, "blocks")
	d.layers.conns = s.Group(nil, "connections")
	d.layers.sparks = s.Group(nil, "sparks")
	d.layers.notes = s.Group(nil, "notes")
	if cfg.Debug {
		d.debug = s.Text(nil, nil, surface.Attrs{
			surface.AttrX:      cfg.Width - 20,
			surface.AttrY:      20.0,
			surface.AttrAnchor: "end",
			surface.AttrFill:   "#ff6b6b",
			surface.AttrHidden: true,
		})
	}
	return d, nil
}

// Config returns the configuration in effect.
func (d *Diagram) Config() Config { return d.cfg }

// Surface returns the surface the diagram draws on.
func (d *Diagram) Surface() surface.Surface { return d.surf }

// ResolveColor maps a palette key to its literal; other strings pass
// through unchanged.
func (d *Diagram) ResolveColor(v string) string {
	return d.cfg.Palette.Resolve(v)
}

// AddBlock creates a block with its top-left corner at (x, y).
func (d *Diagram) AddBlock(id string, x, y, w, h float64, label string, opts ...BlockOption) (*Block, error) {
	if _, taken := d.blocks[id]; taken {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateBlock, id)
	}
	b, err := newBlock(d, id, x, y, w, h, label, opts...)
	if err != nil {
		return nil, err
	}
	d.blocks[id] = b
	d.order = append(d.order, b)
	d.metrics.UpdateScene(len(d.blocks), len(d.conns))
	d.log.Debug("block added", "id", id, "x", x, "y", y, "w", w, "h", h, "note", b.note)
	return b, nil
}

// Block returns the block with the given id.
func (d *Diagram) Block(id string) (*Block, bool) {
	b, ok := d.blocks[id]
	return b, ok
}

// Blocks returns all blocks in the order they were added.
func (d *Diagram) Blocks() []*Block {
	return append([]*Block(nil), d.order...)
}

// Connect creates a connection and computes its initial path. Both
// endpoint blocks must already exist.
func (d *Diagram) Connect(spec ConnectionSpec) (*Connection, error) {
	c, err := newConnection(d, spec)
	if err != nil {
		return nil, err
	}
	d.conns = append(d.conns, c)
	d.metrics.UpdateScene(len(d.blocks), len(d.conns))
	d.log.Debug("connection added",
		"from", spec.Start.Block, "from_edge", spec.Start.Edge.String(),
		"to", spec.End.Block, "to_edge", spec.End.Edge.String(),
		"sparks", c.spec.Sparks, "emitter", c.spec.Emitter)
	return c, nil
}

// Connections returns all connections in draw order.
func (d *Diagram) Connections() []*Connection {
	return append([]*Connection(nil), d.conns...)
}

// Update refreshes every connection path from current block positions.
func (d *Diagram) Update() {
	for _, c := range d.conns {
		c.UpdatePath()
	}
}

// Start begins animation. The clock is sampled fresh so the first frame
// after a resume sees only the time since Start. Calling Start on a running
// diagram does nothing.
func (d *Diagram) Start() {
	if d.running {
		return
	}
	d.running = true
	d.last = d.clock.Now()
	d.log.Info("animation started", "elapsed", d.elapsed)
}

// Stop pauses animation. Spark state is kept. Calling Stop on a stopped
// diagram does nothing.
func (d *Diagram) Stop() {
	if !d.running {
		return
	}
	d.running = false
	d.log.Info("animation stopped", "elapsed", d.elapsed)
}

func (d *Diagram) Running() bool { return d.running }

// Elapsed returns the animation time accumulated while running, in seconds.
func (d *Diagram) Elapsed() float64 { return d.elapsed }

// Tick advances the scene by dt seconds to animation time elapsed: every
// path is refreshed first, then every connection's sparks are redrawn.
func (d *Diagram) Tick(dt, elapsed float64) {
	began := time.Now()
	d.Update()
	live := 0
	for _, c := range d.conns {
		emitted, dropped := c.drawSparks(dt, elapsed)
		d.metrics.RecordEmission(emitted, dropped)
		live += c.Live()
	}
	d.metrics.RecordFrame(time.Since(began), live)
}

// Frame runs one scheduler-driven tick using the clock. It returns false
// without doing anything when the diagram is stopped.
func (d *Diagram) Frame() bool {
	if !d.running {
		return false
	}
	now := d.clock.Now()
	dt := now.Sub(d.last).Seconds()
	if dt < 0 {
		dt = 0
	}
	d.last = now
	d.elapsed += dt
	d.Tick(dt, d.elapsed)
	return true
}

// Run starts the diagram and serves frames and pointer events from one
// goroutine until ctx is done or frames is closed. A closed events channel
// is ignored. The diagram is stopped when Run returns.
func (d *Diagram) Run(ctx context.Context, frames <-chan time.Time, events <-chan PointerEvent) error {
	d.Start()
	defer d.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-frames:
			if !ok {
				return nil
			}
			d.Frame()
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			d.HandlePointer(ev)
		}
	}
}
