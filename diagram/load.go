package diagram

import (
	"errors"
	"fmt"

	"flowspark/scene"
	"flowspark/surface"
)

// Load merges a scene into the diagram. Every entry is checked first,
// including connection references against existing and incoming blocks;
// if anything is wrong nothing is added.
func (d *Diagram) Load(s *scene.Scene) error {
	if err := scene.Validate(s); err != nil {
		return err
	}

	known := make(map[string]bool, len(d.blocks)+len(s.Blocks))
	for id := range d.blocks {
		known[id] = true
	}
	for i, b := range s.Blocks {
		if known[b.ID] {
			return &LoadError{Kind: "block", Index: i, Err: fmt.Errorf("%w: %q", ErrDuplicateBlock, b.ID)}
		}
		if err := checkBlock(b.ID, b.X, b.Y, b.Width, b.Height); err != nil {
			return &LoadError{Kind: "block", Index: i, Err: err}
		}
		known[b.ID] = true
	}
	specs := make([]ConnectionSpec, len(s.Connections))
	for i, c := range s.Connections {
		spec, err := specFromScene(c)
		if err != nil {
			return &LoadError{Kind: "connection", Index: i, Err: err}
		}
		for _, id := range []string{c.Start.Block, c.End.Block} {
			if !known[id] {
				return &LoadError{Kind: "connection", Index: i, Err: fmt.Errorf("%w: %q", ErrUnknownBlock, id)}
			}
		}
		specs[i] = spec
	}

	for i, b := range s.Blocks {
		if _, err := d.AddBlock(b.ID, b.X, b.Y, b.Width, b.Height, b.Label, noteOption(b.Note)...); err != nil {
			return &LoadError{Kind: "block", Index: i, Err: err}
		}
	}
	for i, spec := range specs {
		if _, err := d.Connect(spec); err != nil {
			return &LoadError{Kind: "connection", Index: i, Err: err}
		}
	}
	d.Update()
	d.log.Info("scene loaded", "blocks", len(s.Blocks), "connections", len(s.Connections), "skipped", 0)
	return nil
}

// LoadLenient merges a scene entry by entry, skipping entries that cannot
// be applied. It returns one *LoadError per skipped entry.
func (d *Diagram) LoadLenient(s *scene.Scene) []error {
	if s == nil {
		return []error{fmt.Errorf("%w: nil scene", scene.ErrMalformed)}
	}
	var errs []error
	skip := func(kind string, i int, err error) {
		errs = append(errs, &LoadError{Kind: kind, Index: i, Err: err})
		d.metrics.RecordLoadError(kind)
		d.log.Warn("scene entry skipped", "kind", kind, "index", i, "error", err)
	}

	for i := range s.Blocks {
		b := s.Blocks[i]
		if err := scene.ValidateBlock(&b); err != nil {
			skip("block", i, err)
			continue
		}
		if _, err := d.AddBlock(b.ID, b.X, b.Y, b.Width, b.Height, b.Label, noteOption(b.Note)...); err != nil {
			skip("block", i, err)
		}
	}
	for i := range s.Connections {
		c := s.Connections[i]
		if err := scene.ValidateConnection(&c); err != nil {
			skip("connection", i, err)
			continue
		}
		spec, err := specFromScene(c)
		if err == nil {
			_, err = d.Connect(spec)
		}
		if err != nil {
			skip("connection", i, err)
		}
	}
	d.Update()
	d.log.Info("scene loaded", "blocks", len(s.Blocks), "connections", len(s.Connections), "skipped", len(errs))
	return errs
}

// LoadJSON parses a JSON scene with the diagram's palette and loads it.
func (d *Diagram) LoadJSON(data []byte) error {
	s, err := scene.ParseJSON(data, d.cfg.Palette)
	if err != nil {
		return err
	}
	return d.Load(s)
}

func noteOption(note bool) []BlockOption {
	if note {
		return []BlockOption{AsNote()}
	}
	return nil
}

// Snapshot describes the diagram as it is now, with blocks at their
// current positions.
func (d *Diagram) Snapshot() *scene.Scene {
	s := &scene.Scene{
		Blocks:      make([]scene.Block, 0, len(d.order)),
		Connections: make([]scene.Connection, 0, len(d.conns)),
	}
	for _, b := range d.order {
		s.Blocks = append(s.Blocks, scene.Block{
			ID: b.id, X: b.x, Y: b.y, Width: b.w, Height: b.h, Label: b.label, Note: b.note,
		})
	}
	for _, c := range d.conns {
		s.Connections = append(s.Connections, c.spec.toScene())
	}
	return s
}

// LaunchOptions control Launch.
type LaunchOptions struct {
	// JSON is an inline scene description.
	JSON []byte
	// Path names a JSON or YAML scene file, loaded after JSON.
	Path string
	// Overrides adjust every loaded connection.
	Overrides scene.Overrides
	// Lenient skips bad scene entries instead of failing.
	Lenient bool
	// Setup runs after loading and before animation starts.
	Setup func(*Diagram) error
}

// Launch creates a diagram on s, loads the optional scene sources, runs
// Setup and starts animation.
func Launch(s surface.Surface, cfg Config, opts LaunchOptions, diagOpts ...Option) (*Diagram, error) {
	d, err := New(s, cfg, diagOpts...)
	if err != nil {
		return nil, err
	}

	var sources []*scene.Scene
	if len(opts.JSON) > 0 {
		sc, err := scene.ParseJSON(opts.JSON, d.cfg.Palette)
		if err != nil {
			return nil, err
		}
		sources = append(sources, sc)
	}
	if opts.Path != "" {
		sc, err := scene.LoadFile(opts.Path, d.cfg.Palette)
		if err != nil {
			return nil, err
		}
		sources = append(sources, sc)
	}
	for _, sc := range sources {
		opts.Overrides.Apply(sc)
		if opts.Lenient {
			if errs := d.LoadLenient(sc); len(errs) > 0 {
				d.log.Warn("scene loaded with errors", "skipped", len(errs), "errors", errors.Join(errs...))
			}
			continue
		}
		if err := d.Load(sc); err != nil {
			return nil, err
		}
	}

	if opts.Setup != nil {
		if err := opts.Setup(d); err != nil {
			return nil, fmt.Errorf("setup: %w", err)
		}
	}
	d.Update()
	d.Start()
	return d, nil
}
