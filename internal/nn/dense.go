package nn

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Dense implements a fully connected (affine) layer.
//
// Performs the transformation: y = W·x + b
// where:
//   - x is the input vector with length input_size
//   - W is the weight matrix with shape [output_size, input_size]
//   - b is the bias vector with length output_size
//   - y is the output vector with length output_size
//
// Backward stores grad_weights = outer(dOut, x) and grad_biases = dOut on the
// layer's parameters and returns Wᵀ·dOut. The update itself is applied by an
// optimizer.
//
// Example:
//
//	rng := rand.New(rand.NewSource(1))
//	layer := nn.NewDense(2, 4, rng)
//	out, err := layer.Forward(mat.NewVecDense(2, []float64{1, -1}))
type Dense struct {
	inputSize  int
	outputSize int
	weight     *Parameter    // [output_size, input_size]
	bias       *Parameter    // [output_size]
	weights    *mat.Dense    // view over weight.value
	biases     *mat.VecDense // view over bias.value
	cache
}

// NewDense creates a new Dense layer.
//
// Weights are initialized using Xavier/Glorot uniform distribution drawn
// from rng. Biases are initialized to zeros.
//
// Panics if either size is not positive.
func NewDense(inputSize, outputSize int, rng *rand.Rand) *Dense {
	if inputSize <= 0 || outputSize <= 0 {
		panic(fmt.Sprintf("NewDense: sizes must be positive, got %d -> %d", inputSize, outputSize))
	}

	weight := NewParameter("weight", []int{outputSize, inputSize},
		Xavier(inputSize, outputSize, outputSize*inputSize, rng))
	bias := NewParameter("bias", []int{outputSize}, make([]float64, outputSize))

	return newDense(inputSize, outputSize, weight, bias)
}

// NewDenseFrom creates a Dense layer holding copies of the given weights and
// biases. The bias length must equal the number of weight rows.
func NewDenseFrom(weights mat.Matrix, biases mat.Vector) (*Dense, error) {
	outputSize, inputSize := weights.Dims()
	if biases.Len() != outputSize {
		return nil, shapeError("NewDenseFrom", []int{outputSize}, []int{biases.Len()})
	}

	w := make([]float64, outputSize*inputSize)
	mat.NewDense(outputSize, inputSize, w).Copy(weights)
	b := make([]float64, outputSize)
	for i := range b {
		b[i] = biases.AtVec(i)
	}

	return newDense(inputSize, outputSize,
		NewParameter("weight", []int{outputSize, inputSize}, w),
		NewParameter("bias", []int{outputSize}, b),
	), nil
}

func newDense(inputSize, outputSize int, weight, bias *Parameter) *Dense {
	return &Dense{
		inputSize:  inputSize,
		outputSize: outputSize,
		weight:     weight,
		bias:       bias,
		weights:    mat.NewDense(outputSize, inputSize, weight.Value()),
		biases:     mat.NewVecDense(outputSize, bias.Value()),
	}
}

// Forward computes W·x + b.
func (d *Dense) Forward(input mat.Vector) (*mat.VecDense, error) {
	if input.Len() != d.inputSize {
		return nil, shapeError("Dense.Forward", []int{d.inputSize}, []int{input.Len()})
	}

	out := mat.NewVecDense(d.outputSize, nil)
	out.MulVec(d.weights, input)
	out.AddVec(out, d.biases)

	d.store(input, out)
	return mat.VecDenseCopyOf(out), nil
}

// Backward stores the weight and bias gradients and returns Wᵀ·dOut.
//
// Gradients from a previous call are overwritten.
func (d *Dense) Backward(outputGrad mat.Vector, _ float64) (*mat.VecDense, error) {
	if err := d.ready("Dense.Backward", outputGrad); err != nil {
		return nil, err
	}

	// grad_weights = dOut ⊗ x
	gradWeights := mat.NewDense(d.outputSize, d.inputSize, nil)
	gradWeights.Outer(1, outputGrad, d.input)
	d.weight.SetGrad(gradWeights.RawMatrix().Data)

	gradBiases := make([]float64, d.outputSize)
	for i := range gradBiases {
		gradBiases[i] = outputGrad.AtVec(i)
	}
	d.bias.SetGrad(gradBiases)

	inputGrad := mat.NewVecDense(d.inputSize, nil)
	inputGrad.MulVec(d.weights.T(), outputGrad)
	return inputGrad, nil
}

// Name returns "Dense".
func (d *Dense) Name() string {
	return "Dense"
}

// Parameters returns [weight, bias].
func (d *Dense) Parameters() []*Parameter {
	return []*Parameter{d.weight, d.bias}
}

// InputSize returns the number of input features.
func (d *Dense) InputSize() int {
	return d.inputSize
}

// OutputSize returns the number of output features.
func (d *Dense) OutputSize() int {
	return d.outputSize
}

// Weights returns a copy of the weight matrix.
func (d *Dense) Weights() *mat.Dense {
	return mat.DenseCopyOf(d.weights)
}

// Biases returns a copy of the bias vector.
func (d *Dense) Biases() *mat.VecDense {
	return mat.VecDenseCopyOf(d.biases)
}

// GradWeights returns a copy of the pending weight gradient, or nil.
func (d *Dense) GradWeights() *mat.Dense {
	g := d.weight.Grad()
	if g == nil {
		return nil
	}
	return mat.NewDense(d.outputSize, d.inputSize, append([]float64(nil), g...))
}

// GradBiases returns a copy of the pending bias gradient, or nil.
func (d *Dense) GradBiases() *mat.VecDense {
	g := d.bias.Grad()
	if g == nil {
		return nil
	}
	return mat.NewVecDense(d.outputSize, append([]float64(nil), g...))
}
