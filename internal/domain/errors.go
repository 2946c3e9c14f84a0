package domain

import (
	"errors"
	"fmt"
)

// PreconditionError reports a caller-side precondition that was not met.
// It is never transient and must not be retried.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return "precondition failed: " + e.Reason
}

// ErrUnauthenticated is returned when an operation needs a connected identity and none was given.
var ErrUnauthenticated error = &PreconditionError{Reason: "unauthenticated"}

// UnrecognizedShapeError reports a fragment whose discriminant is outside the known set.
type UnrecognizedShapeError struct {
	Type string
}

func (e *UnrecognizedShapeError) Error() string {
	return fmt.Sprintf("unrecognized fragment shape %q", e.Type)
}

// IsPrecondition reports whether err carries a PreconditionError.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}
