package strategy

import (
	"errors"
	"fmt"
)

// ErrInvalidRate is returned when no usable consumption rate can be derived.
var ErrInvalidRate = errors.New("consumption rate is not computable")

// IncompleteDataError reports a series with fewer set readings than required.
type IncompleteDataError struct {
	Filled   int
	Required int
}

func (e *IncompleteDataError) Error() string {
	return fmt.Sprintf("incomplete data: %d of %d days filled", e.Filled, e.Required)
}

// InvalidDataError reports a reading that failed validation.
type InvalidDataError struct {
	Index int
}

func (e *InvalidDataError) Error() string {
	return fmt.Sprintf("invalid reading for day %d", e.Index)
}
