package nn

import (
	"fmt"
	"slices"
)

// Parameter represents a trainable array of a layer.
//
// Values are stored flat in row-major order. Layers build gonum views over the
// same backing slice, so an optimizer updating Value() in place is immediately
// visible to the layer.
//
// Example:
//
//	weight := nn.NewParameter("weight", []int{4, 2}, data)
//	grad := weight.Grad() // nil until the first Backward
type Parameter struct {
	name  string    // Parameter name (e.g. "weight", "bias")
	shape []int     // Logical shape
	value []float64 // Row-major values
	grad  []float64 // Gradient from the most recent backward pass, nil when consumed
}

// NewParameter creates a parameter over value, which must hold exactly as many
// elements as shape describes.
//
// Panics if the lengths disagree.
func NewParameter(name string, shape []int, value []float64) *Parameter {
	if n := numElements(shape); n != len(value) {
		panic(fmt.Sprintf("NewParameter: %s: shape %v needs %d values, got %d", name, shape, n, len(value)))
	}
	return &Parameter{
		name:  name,
		shape: slices.Clone(shape),
		value: value,
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Shape returns a copy of the parameter shape.
func (p *Parameter) Shape() []int {
	return slices.Clone(p.shape)
}

// Size returns the number of elements.
func (p *Parameter) Size() int {
	return len(p.value)
}

// Value returns the backing slice of the parameter.
func (p *Parameter) Value() []float64 {
	return p.value
}

// Grad returns the gradient, or nil if none is pending.
func (p *Parameter) Grad() []float64 {
	return p.grad
}

// SetGrad replaces the pending gradient.
//
// Panics if grad has the wrong length.
func (p *Parameter) SetGrad(grad []float64) {
	if grad != nil && len(grad) != len(p.value) {
		panic(fmt.Sprintf("SetGrad: %s: want %d values, got %d", p.name, len(p.value), len(grad)))
	}
	p.grad = grad
}

// ZeroGrad marks the pending gradient as consumed.
func (p *Parameter) ZeroGrad() {
	p.grad = nil
}

// CheckShape reports whether an array of the given shape can be assigned to
// this parameter. Dimensions of size one are ignored on both sides, so a bias
// archived as a column vector [n, 1] matches a parameter of shape [n].
//
// This also accepts [n, 1] for a [1, n] weight and the reverse. Such shapes
// hold the same values in the same row-major order, so the copy is exact.
func (p *Parameter) CheckShape(shape []int) error {
	if !slices.Equal(squeeze(p.shape), squeeze(shape)) {
		return shapeError("Parameter."+p.name, p.Shape(), slices.Clone(shape))
	}
	return nil
}

// Assign copies data into the parameter after validating its shape. The
// pending gradient is dropped.
func (p *Parameter) Assign(shape []int, data []float64) error {
	if err := p.CheckShape(shape); err != nil {
		return err
	}
	if len(data) != len(p.value) {
		return shapeError("Parameter."+p.name, []int{len(p.value)}, []int{len(data)})
	}
	copy(p.value, data)
	p.grad = nil
	return nil
}

func numElements(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

func squeeze(shape []int) []int {
	out := make([]int, 0, len(shape))
	for _, d := range shape {
		if d != 1 {
			out = append(out, d)
		}
	}
	return out
}
