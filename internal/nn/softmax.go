package nn

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Softmax is a softmax activation layer over a single vector.
//
// Forward computes exp(x_i - max(x)) / Σ_j exp(x_j - max(x)). Subtracting the
// maximum keeps exp from overflowing and does not change the result.
//
// Unlike the element-wise activations, every output depends on every input,
// so Backward multiplies dOut by the full Jacobian
//
//	J[i,j] = out_i (δ_ij - out_j)
type Softmax struct {
	cache
}

// NewSoftmax creates a new Softmax activation layer.
func NewSoftmax() *Softmax {
	return &Softmax{}
}

// Forward applies the numerically stabilized softmax.
func (s *Softmax) Forward(input mat.Vector) (*mat.VecDense, error) {
	n := input.Len()
	if n == 0 {
		return nil, errors.Wrap(ErrEmptyInput, "Softmax.Forward")
	}

	maxVal := mat.Max(input)
	out := mat.NewVecDense(n, nil)
	var sum float64
	for i := 0; i < n; i++ {
		e := math.Exp(input.AtVec(i) - maxVal)
		out.SetVec(i, e)
		sum += e
	}
	out.ScaleVec(1/sum, out)

	s.store(input, out)
	return mat.VecDenseCopyOf(out), nil
}

// Backward returns J·dOut.
func (s *Softmax) Backward(outputGrad mat.Vector, _ float64) (*mat.VecDense, error) {
	if err := s.ready("Softmax.Backward", outputGrad); err != nil {
		return nil, err
	}

	// J = diag(out) - out ⊗ out
	n := s.output.Len()
	jacobian := mat.NewDense(n, n, nil)
	jacobian.Outer(-1, s.output, s.output)
	for i := 0; i < n; i++ {
		jacobian.Set(i, i, jacobian.At(i, i)+s.output.AtVec(i))
	}

	inputGrad := mat.NewVecDense(n, nil)
	inputGrad.MulVec(jacobian, outputGrad)
	return inputGrad, nil
}

// Name returns "Softmax".
func (s *Softmax) Name() string {
	return "Softmax"
}
