package nn_test

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/tinynet-ml/tinynet/internal/nn"
)

func TestReLU_Forward(t *testing.T) {
	relu := nn.NewReLU()

	out, err := relu.Forward(vec(-2, -1, 0, 1, 2))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0, 1, 2}, out.RawVector().Data)
}

func TestReLU_Backward(t *testing.T) {
	relu := nn.NewReLU()

	_, err := relu.Forward(vec(-1, 3))
	require.NoError(t, err)

	grad, err := relu.Backward(vec(5, 7), 0.1)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 7}, grad.RawVector().Data)
}

func TestSigmoid_Forward(t *testing.T) {
	sigmoid := nn.NewSigmoid()

	out, err := sigmoid.Forward(vec(0, 100, -100))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, out.AtVec(0), 1e-12)
	assert.InDelta(t, 1, out.AtVec(1), 1e-12)
	assert.InDelta(t, 0, out.AtVec(2), 1e-12)
}

func TestTanh_Forward(t *testing.T) {
	tanh := nn.NewTanh()

	out, err := tanh.Forward(vec(-1, 0, 1))
	require.NoError(t, err)
	assert.InDelta(t, math.Tanh(-1), out.AtVec(0), 1e-12)
	assert.InDelta(t, 0, out.AtVec(1), 1e-12)
	assert.InDelta(t, math.Tanh(1), out.AtVec(2), 1e-12)
}

func TestSoftmax_SumsToOne(t *testing.T) {
	softmax := nn.NewSoftmax()

	for _, in := range [][]float64{
		{1, 2, 3},
		{-5, 0, 5, 10},
		{1000, 1000.5, 999}, // would overflow without max subtraction
		{42},
	} {
		out, err := softmax.Forward(vec(in...))
		require.NoError(t, err)
		assert.InDelta(t, 1, floats.Sum(out.RawVector().Data), 1e-9, "input %v", in)
		for i := 0; i < out.Len(); i++ {
			assert.False(t, math.IsNaN(out.AtVec(i)))
		}
	}
}

func TestSoftmax_ShiftInvariant(t *testing.T) {
	softmax := nn.NewSoftmax()

	a, err := softmax.Forward(vec(0.5, -1, 2))
	require.NoError(t, err)
	b, err := softmax.Forward(vec(100.5, 99, 102))
	require.NoError(t, err)

	assert.True(t, mat.EqualApprox(a, b, 1e-12))
}

func TestActivations_BackwardBeforeForward(t *testing.T) {
	for _, layer := range []nn.Layer{nn.NewReLU(), nn.NewSigmoid(), nn.NewTanh(), nn.NewSoftmax()} {
		_, err := layer.Backward(vec(1), 0.1)
		require.Error(t, err, layer.Name())
		assert.True(t, errors.Is(err, nn.ErrNoForward), layer.Name())
	}
}

func TestActivations_GradientLengthMismatch(t *testing.T) {
	for _, layer := range []nn.Layer{nn.NewReLU(), nn.NewSigmoid(), nn.NewTanh(), nn.NewSoftmax()} {
		_, err := layer.Forward(vec(1, 2, 3))
		require.NoError(t, err)

		_, err = layer.Backward(vec(1, 2), 0.1)
		var shapeErr *nn.ShapeMismatchError
		require.True(t, errors.As(err, &shapeErr), layer.Name())
		assert.Equal(t, []int{3}, shapeErr.Want)
		assert.Equal(t, []int{2}, shapeErr.Got)
	}
}

func TestActivations_EmptyInput(t *testing.T) {
	for _, layer := range []nn.Layer{nn.NewReLU(), nn.NewSigmoid(), nn.NewTanh(), nn.NewSoftmax()} {
		_, err := layer.Forward(&mat.VecDense{})
		assert.True(t, errors.Is(err, nn.ErrEmptyInput), layer.Name())
	}
}

// The returned output must not alias the cache used by Backward.
func TestActivations_OutputIsCopy(t *testing.T) {
	sigmoid := nn.NewSigmoid()

	out, err := sigmoid.Forward(vec(0))
	require.NoError(t, err)
	out.SetVec(0, 0.9)

	grad, err := sigmoid.Backward(vec(1), 0.1)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, grad.AtVec(0), 1e-12)
}
