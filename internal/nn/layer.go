// Package nn implements the building blocks of a feedforward neural network
// with hand-written backpropagation.
//
// This package provides:
//   - Layer: the forward/backward contract every stage implements
//   - Parameter: a trainable array with its gradient buffer
//   - Dense: fully connected (affine) layer
//   - Activations: ReLU, Sigmoid, Tanh, Softmax
//   - Loss functions: MSE
//
// Every layer caches the input and output of its most recent Forward call and
// uses that cache during Backward. Layers process exactly one sample at a time.
package nn

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Layer is a single differentiable stage of a network.
//
// Forward consumes an input vector and returns the output vector, recording
// whatever Backward needs. Backward consumes the gradient of the loss with
// respect to the layer's output and returns the gradient with respect to its
// input. Parameterized layers also store the gradients of their own parameters
// as a side effect; applying them is left to an optimizer, so the learning rate
// argument is accepted for contract uniformity only.
type Layer interface {
	Forward(input mat.Vector) (*mat.VecDense, error)
	Backward(outputGrad mat.Vector, learningRate float64) (*mat.VecDense, error)

	// Name returns the layer type name (e.g. "Dense", "ReLU").
	Name() string
}

// Parameterized is implemented by layers that own trainable parameters.
//
// Optimizers and persistence discover parameters through this capability
// rather than by inspecting concrete layer types.
type Parameterized interface {
	Layer
	Parameters() []*Parameter
}

// Sized is implemented by layers with a fixed input and output dimensionality.
type Sized interface {
	InputSize() int
	OutputSize() int
}

// Category groups layer types for introspection.
type Category string

// Layer categories.
const (
	CategoryDense      Category = "dense"
	CategoryActivation Category = "activation"
)

// LayerInfo is a read-only description of a layer, used to render network
// structure diagrams.
type LayerInfo struct {
	Type       string   `json:"type"`
	Category   Category `json:"category"`
	InputSize  int      `json:"input_size,omitempty"`
	OutputSize int      `json:"output_size,omitempty"`
}

// Describe reports the category of a layer and, for sized layers, its
// input and output dimensionality.
func Describe(l Layer) LayerInfo {
	info := LayerInfo{
		Type:     l.Name(),
		Category: CategoryActivation,
	}
	if _, ok := l.(Parameterized); ok {
		info.Category = CategoryDense
	}
	if s, ok := l.(Sized); ok {
		info.InputSize = s.InputSize()
		info.OutputSize = s.OutputSize()
	}
	return info
}

// cache holds the most recent forward pass of a layer.
type cache struct {
	input  *mat.VecDense
	output *mat.VecDense
}

// store overwrites the cache with a copy of input and the computed output.
func (c *cache) store(input mat.Vector, output *mat.VecDense) {
	c.input = mat.VecDenseCopyOf(input)
	c.output = output
}

// ready fails with ErrNoForward until Forward has been called once, and with a
// shape error when the incoming gradient does not match the cached output.
func (c *cache) ready(op string, outputGrad mat.Vector) error {
	if c.output == nil {
		return errors.Wrap(ErrNoForward, op)
	}
	if outputGrad.Len() != c.output.Len() {
		return shapeError(op, []int{c.output.Len()}, []int{outputGrad.Len()})
	}
	return nil
}

// forwardElementwise applies f to every element of input and caches the result.
func (c *cache) forwardElementwise(op string, input mat.Vector, f func(x float64) float64) (*mat.VecDense, error) {
	n := input.Len()
	if n == 0 {
		return nil, errors.Wrap(ErrEmptyInput, op)
	}
	out := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		out.SetVec(i, f(input.AtVec(i)))
	}
	c.store(input, out)
	return mat.VecDenseCopyOf(out), nil
}

// backwardElementwise multiplies outputGrad by the local derivative, which
// may depend on the cached input x and output y of the same element.
func (c *cache) backwardElementwise(op string, outputGrad mat.Vector, deriv func(x, y float64) float64) (*mat.VecDense, error) {
	if err := c.ready(op, outputGrad); err != nil {
		return nil, err
	}
	n := c.output.Len()
	inputGrad := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		inputGrad.SetVec(i, outputGrad.AtVec(i)*deriv(c.input.AtVec(i), c.output.AtVec(i)))
	}
	return inputGrad, nil
}
