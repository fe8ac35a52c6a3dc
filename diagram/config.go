package diagram

import (
	"io"
	"log/slog"
	"math/rand/v2"
	"time"

	"flowspark/geometry"
	"flowspark/metrics"
	"flowspark/palette"
)

// Config is the immutable engine configuration handed to New.
type Config struct {
	// Width and Height are the scene's viewBox size.
	Width  float64
	Height float64

	// Grid draws a background grid with GridSpacing scene units per cell.
	Grid        bool
	GridSpacing float64

	// Debug shows the "id: (x, y)" readout while a block is dragged.
	Debug bool

	// ControlPushMax and ControlPushRatio bound the Bézier handle length.
	ControlPushMax   float64
	ControlPushRatio float64

	Palette palette.Palette
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		Width:            1000,
		Height:           720,
		Grid:             true,
		GridSpacing:      24,
		ControlPushMax:   geometry.DefaultPush.Max,
		ControlPushRatio: geometry.DefaultPush.Ratio,
		Palette:          palette.Default(),
	}
}

// withDefaults fills zero fields from DefaultConfig and copies the palette
// so later edits by the caller cannot reach the running diagram.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Width <= 0 {
		c.Width = def.Width
	}
	if c.Height <= 0 {
		c.Height = def.Height
	}
	if c.GridSpacing <= 0 {
		c.GridSpacing = def.GridSpacing
	}
	if c.ControlPushMax <= 0 {
		c.ControlPushMax = def.ControlPushMax
	}
	if c.ControlPushRatio <= 0 {
		c.ControlPushRatio = def.ControlPushRatio
	}
	if c.Palette == nil {
		c.Palette = def.Palette
	} else {
		c.Palette = c.Palette.Clone()
	}
	return c
}

func (c Config) push() geometry.Push {
	return geometry.Push{Max: c.ControlPushMax, Ratio: c.ControlPushRatio}
}

// Clock supplies monotonic timestamps for frame deltas.
type Clock interface {
	Now() time.Time
}

// RandomSource supplies uniform samples in [0, 1) for emitter rounding.
type RandomSource interface {
	Float64() float64
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// Option customizes a Diagram at construction.
type Option func(*Diagram)

// WithClock replaces the wall clock used by Start and Frame.
func WithClock(c Clock) Option {
	return func(d *Diagram) {
		if c != nil {
			d.clock = c
		}
	}
}

// WithRand replaces the random source used by emitter connections.
func WithRand(r RandomSource) Option {
	return func(d *Diagram) {
		if r != nil {
			d.rng = r
		}
	}
}

// WithLogger sets the structured logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(d *Diagram) {
		if l != nil {
			d.log = l
		}
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Registry) Option {
	return func(d *Diagram) {
		d.metrics = m
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
