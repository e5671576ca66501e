package nn

import (
	"fmt"

	"github.com/pkg/errors"
)

// Common errors.
var (
	ErrNoForward  = errors.New("backward called before forward")
	ErrEmptyInput = errors.New("empty input vector")
)

// ShapeMismatchError reports an array whose shape disagrees with what a layer,
// parameter or loss expects.
type ShapeMismatchError struct {
	Op   string // Operation that detected the mismatch (e.g. "Dense.Forward")
	Want []int  // Expected shape
	Got  []int  // Actual shape
}

// Error implements the error interface.
func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("%s: shape mismatch: want %v, got %v", e.Op, e.Want, e.Got)
}

func shapeError(op string, want, got []int) error {
	return errors.WithStack(&ShapeMismatchError{Op: op, Want: want, Got: got})
}
