package nn

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// ReLU is a Rectified Linear Unit activation layer.
//
// Applies the element-wise function: f(x) = max(0, x)
//
// The derivative is 1 where x > 0 and 0 elsewhere, so Backward returns
// dOut ⊙ (x > 0).
//
// Example:
//
//	relu := nn.NewReLU()
//	output, err := relu.Forward(input) // All negative values become 0
type ReLU struct {
	cache
}

// NewReLU creates a new ReLU activation layer.
func NewReLU() *ReLU {
	return &ReLU{}
}

// Forward applies ReLU activation: f(x) = max(0, x).
func (r *ReLU) Forward(input mat.Vector) (*mat.VecDense, error) {
	return r.forwardElementwise("ReLU.Forward", input, func(x float64) float64 {
		return math.Max(0, x)
	})
}

// Backward returns dOut ⊙ (x > 0).
func (r *ReLU) Backward(outputGrad mat.Vector, _ float64) (*mat.VecDense, error) {
	return r.backwardElementwise("ReLU.Backward", outputGrad, func(x, _ float64) float64 {
		if x > 0 {
			return 1
		}
		return 0
	})
}

// Name returns "ReLU".
func (r *ReLU) Name() string {
	return "ReLU"
}

// Sigmoid is a sigmoid activation layer.
//
// Applies the element-wise function: σ(x) = 1 / (1 + exp(-x))
//
// Sigmoid squashes values to the range (0, 1). The derivative is expressed in
// terms of the cached output: σ'(x) = σ(x)(1 - σ(x)).
type Sigmoid struct {
	cache
}

// NewSigmoid creates a new Sigmoid activation layer.
func NewSigmoid() *Sigmoid {
	return &Sigmoid{}
}

// Forward applies σ(x) = 1 / (1 + exp(-x)).
func (s *Sigmoid) Forward(input mat.Vector) (*mat.VecDense, error) {
	return s.forwardElementwise("Sigmoid.Forward", input, func(x float64) float64 {
		return 1 / (1 + math.Exp(-x))
	})
}

// Backward returns dOut ⊙ out ⊙ (1 - out).
func (s *Sigmoid) Backward(outputGrad mat.Vector, _ float64) (*mat.VecDense, error) {
	return s.backwardElementwise("Sigmoid.Backward", outputGrad, func(_, y float64) float64 {
		return y * (1 - y)
	})
}

// Name returns "Sigmoid".
func (s *Sigmoid) Name() string {
	return "Sigmoid"
}

// Tanh is a hyperbolic tangent activation layer.
//
// Tanh squashes values to the range (-1, 1). Its derivative is 1 - tanh²(x).
type Tanh struct {
	cache
}

// NewTanh creates a new Tanh activation layer.
func NewTanh() *Tanh {
	return &Tanh{}
}

// Forward applies tanh element-wise.
func (t *Tanh) Forward(input mat.Vector) (*mat.VecDense, error) {
	return t.forwardElementwise("Tanh.Forward", input, math.Tanh)
}

// Backward returns dOut ⊙ (1 - out²).
func (t *Tanh) Backward(outputGrad mat.Vector, _ float64) (*mat.VecDense, error) {
	return t.backwardElementwise("Tanh.Backward", outputGrad, func(_, y float64) float64 {
		return 1 - y*y
	})
}

// Name returns "Tanh".
func (t *Tanh) Name() string {
	return "Tanh"
}
