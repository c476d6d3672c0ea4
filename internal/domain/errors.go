package domain

import (
	"errors"
	"fmt"
)

// ErrEmptySeries is returned when a closest-approach evaluation receives no
// ephemeris points. Callers should report "no data" rather than distance zero.
var ErrEmptySeries = errors.New("ephemeris series is empty")

// ErrMissingMOID is returned when a MOID classification is requested for an
// object whose MOID is absent or unparseable.
var ErrMissingMOID = errors.New("moid value is missing")

// InvalidInputError reports a physical parameter that is non-positive or not
// a real number.
type InvalidInputError struct {
	Field string
	Value float64
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s must be a positive real number, got %v", e.Field, e.Value)
}
