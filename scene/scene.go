// Package scene holds the canonical scene description consumed by the
// diagram engine, together with a schema-tolerant loader that maps the many
// accepted key spellings onto it.
package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrMalformed marks scene data that could not be parsed or failed
// validation. Nothing from a malformed description is ever applied.
var ErrMalformed = errors.New("malformed scene")

var validate = validator.New()

// Scene is a complete diagram description.
type Scene struct {
	Blocks      []Block      `json:"blocks" yaml:"blocks" validate:"dive"`
	Connections []Connection `json:"connections" yaml:"connections" validate:"dive"`
}

// Block describes one block. X and Y locate the top-left corner.
type Block struct {
	ID     string  `json:"id" yaml:"id" validate:"required"`
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width" validate:"gt=0"`
	Height float64 `json:"height" yaml:"height" validate:"gt=0"`
	Label  string  `json:"label,omitempty" yaml:"label,omitempty"`
	Note   bool    `json:"note,omitempty" yaml:"note,omitempty"`
}

// Endpoint locates one end of a connection on a block edge.
type Endpoint struct {
	Block string  `json:"block" yaml:"block" validate:"required"`
	Edge  string  `json:"edge" yaml:"edge" validate:"oneof=top right bottom left"`
	T     float64 `json:"t" yaml:"t"`
}

// Connection describes a directed curve between two block edges.
type Connection struct {
	Start      Endpoint `json:"start" yaml:"start"`
	End        Endpoint `json:"end" yaml:"end"`
	Width      float64  `json:"width" yaml:"width" validate:"gte=0"`
	Color      string   `json:"color,omitempty" yaml:"color,omitempty"`
	Class      string   `json:"class,omitempty" yaml:"class,omitempty"`
	Sparks     int      `json:"sparks" yaml:"sparks" validate:"gte=0,lte=10000"`
	SparkSpeed float64  `json:"spark_speed" yaml:"spark_speed" validate:"gte=0"`
	Emitter    bool     `json:"emitter" yaml:"emitter"`
	MaxLive    int      `json:"max_live" yaml:"max_live" validate:"gte=0,lte=10000"`
	EmitMult   float64  `json:"emit_mult" yaml:"emit_mult" validate:"gte=0"`
	OutOffset  float64  `json:"out_offset" yaml:"out_offset"`
	Arrow      bool     `json:"arrow" yaml:"arrow"`
}

// Default connection parameters applied when a descriptor omits them.
const (
	DefaultWidth      = 3.0
	DefaultSparkSpeed = 0.8
	DefaultEmitMult   = 1.0
	DefaultOutOffset  = 4.0
	DefaultStartEdge  = "right"
	DefaultEndEdge    = "left"

	// MaxSparks bounds Sparks and MaxLive.
	MaxSparks = 10000
)

// NewConnection returns a connection between two endpoints carrying the
// default parameters.
func NewConnection(start, end Endpoint) Connection {
	return Connection{
		Start:      start,
		End:        end,
		Width:      DefaultWidth,
		SparkSpeed: DefaultSparkSpeed,
		EmitMult:   DefaultEmitMult,
		OutOffset:  DefaultOutOffset,
		Arrow:      true,
	}
}

// Validate checks every descriptor against its structural constraints.
// Block references are not checked here; only the engine knows which
// blocks already exist.
func Validate(s *Scene) error {
	if s == nil {
		return fmt.Errorf("%w: nil scene", ErrMalformed)
	}
	for i := range s.Blocks {
		if err := ValidateBlock(&s.Blocks[i]); err != nil {
			return fmt.Errorf("blocks[%d].%w", i, err)
		}
	}
	for i := range s.Connections {
		if err := ValidateConnection(&s.Connections[i]); err != nil {
			return fmt.Errorf("connections[%d].%w", i, err)
		}
	}
	return nil
}

// ValidateBlock checks a single block descriptor.
func ValidateBlock(b *Block) error {
	if err := validate.Struct(b); err != nil {
		return fmt.Errorf("%v: %w", formatValidationError(err), ErrMalformed)
	}
	return nil
}

// ValidateConnection checks a single connection descriptor.
func ValidateConnection(c *Connection) error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%v: %w", formatValidationError(err), ErrMalformed)
	}
	return nil
}

// formatValidationError converts validator errors to a short readable form.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}
	for _, e := range validationErrs {
		field := e.Namespace()
		// Drop the struct name prefix: "Block.Width" -> "Width".
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "gt":
			return fmt.Errorf("%s: must be greater than %s", field, e.Param())
		case "gte":
			return fmt.Errorf("%s: must be at least %s", field, e.Param())
		case "lte":
			return fmt.Errorf("%s: must be at most %s", field, e.Param())
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s], got %q", field, e.Param(), e.Value())
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}
	return err
}

// Encode writes s as indented JSON in canonical key spelling.
func Encode(w io.Writer, s *Scene) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// Overrides are process-wide adjustments applied to every connection after
// loading, mirroring the command-line spark switches.
type Overrides struct {
	// Emitter, when set, forces emitter mode on or off.
	Emitter *bool
	// EmitMult multiplies each connection's emission multiplier.
	EmitMult *float64
	// MaxLive caps live sparks on connections that have no cap of their own.
	MaxLive *int
}

// Apply adjusts every connection of s in place.
func (o Overrides) Apply(s *Scene) {
	if s == nil {
		return
	}
	for i := range s.Connections {
		c := &s.Connections[i]
		if o.Emitter != nil {
			c.Emitter = *o.Emitter
		}
		if o.EmitMult != nil && *o.EmitMult >= 0 {
			c.EmitMult *= *o.EmitMult
		}
		if o.MaxLive != nil && *o.MaxLive > 0 && c.MaxLive == 0 {
			c.MaxLive = *o.MaxLive
		}
	}
}

// Empty reports whether o changes nothing.
func (o Overrides) Empty() bool {
	return o.Emitter == nil && o.EmitMult == nil && o.MaxLive == nil
}
