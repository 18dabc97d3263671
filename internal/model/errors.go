package model

import (
	"errors"
	"fmt"
)

// Geometry error kinds. They are wrapped with context and tested with errors.Is.
var (
	// ErrDegenerateInput means too few points, or the points are collinear.
	ErrDegenerateInput = errors.New("degenerate input")
	// ErrZeroArea means the projected polygon has no area.
	ErrZeroArea = errors.New("zero area")
	// ErrInvalidHole means a candidate hole escapes the boundary or overlaps another hole.
	ErrInvalidHole = errors.New("invalid hole")
	// ErrUnplaceablePlate means no configured stock size can hold the plate.
	ErrUnplaceablePlate = errors.New("unplaceable plate")
)

// ConfigError reports a caller-contract violation. It aborts the whole request.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
