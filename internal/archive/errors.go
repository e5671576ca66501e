package archive

import (
	"fmt"

	"github.com/pkg/errors"
)

// Common errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported archive format")
	ErrUnsupportedDType  = errors.New("unsupported element type")
	ErrUnsupportedShape  = errors.New("unsupported array rank")
	ErrInvalidName       = errors.New("invalid array name")
	ErrNameTooLong       = errors.New("array name too long")
	ErrInvalidShape      = errors.New("invalid array shape")
	ErrSizeMismatch      = errors.New("data length does not match shape")
	ErrTooManyArrays     = errors.New("too many arrays in archive")
	ErrHeaderTooLarge    = errors.New("header exceeds maximum size")
	ErrNegativeOffset    = errors.New("negative offset or size")
	ErrOutOfBounds       = errors.New("array extends beyond data section")
	ErrOffsetOverlap     = errors.New("array offsets overlap")
)

// ValidationError provides detailed information about validation failures.
//
// Err is one of the sentinel errors above, so callers can match either the
// concrete type with errors.As or the failure class with errors.Is.
type ValidationError struct {
	Err     error  // Failure class (e.g. ErrOffsetOverlap)
	Array   string // Primary array name involved
	Array2  string // Secondary array name (for overlap errors)
	Details string // Additional details
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Array2 != "" {
		return fmt.Sprintf("%v: arrays %q and %q: %s", e.Err, e.Array, e.Array2, e.Details)
	}
	if e.Array != "" {
		return fmt.Sprintf("%v: array %q: %s", e.Err, e.Array, e.Details)
	}
	return fmt.Sprintf("%v: %s", e.Err, e.Details)
}

// Unwrap returns the failure class.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
