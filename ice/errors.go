package ice

import (
	"errors"
	"fmt"
)

// Typed errors
var (
	ErrEmptyInput    = errors.New("ice: empty candidate line")
	ErrMalformed     = errors.New("ice: malformed candidate line")
	ErrInvalidNumber = errors.New("ice: invalid number")
)

// Names of the numeric candidate fields, as reported by NumberError.
const (
	FieldComponent = "component-id"
	FieldPriority  = "priority"
	FieldPort      = "port"
	FieldRelPort   = "rport"
)

// A NumberError reports a candidate field that should have been numeric but
// wasn't. It matches ErrInvalidNumber under errors.Is.
type NumberError struct {
	Field string // One of the Field* constants
	Value string // The offending token
	Err   error  // Underlying strconv error
}

func (e *NumberError) Error() string {
	return fmt.Sprintf("ice: invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *NumberError) Unwrap() error {
	return e.Err
}

func (e *NumberError) Is(target error) bool {
	return target == ErrInvalidNumber
}

// Kind classifies an error returned by ParseCandidate as one of "empty",
// "malformed" or "invalid-number". Anything else is "unknown".
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrEmptyInput):
		return "empty"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.Is(err, ErrInvalidNumber):
		return "invalid-number"
	default:
		return "unknown"
	}
}
