package diagram

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSurface is returned when a diagram is created without a drawing surface.
	ErrNoSurface = errors.New("drawing surface not available")

	// ErrUnknownBlock is returned when a connection names a block that does not exist.
	ErrUnknownBlock = errors.New("unknown block")

	// ErrInvalidBlock is returned for empty ids, non-positive sizes or non-finite positions.
	ErrInvalidBlock = errors.New("invalid block")

	// ErrDuplicateBlock is returned when a block id is already taken.
	ErrDuplicateBlock = errors.New("duplicate block id")
)

// LoadError reports which scene entry could not be applied.
type LoadError struct {
	Kind  string // "block" or "connection"
	Index int
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s %d: %v", e.Kind, e.Index, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
