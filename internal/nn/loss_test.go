package nn_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinynet-ml/tinynet/internal/nn"
)

func TestMSE_Compute(t *testing.T) {
	loss := nn.MSE{}

	tests := []struct {
		name      string
		target    []float64
		predicted []float64
		want      float64
	}{
		{"equal", []float64{1, 2, 3}, []float64{1, 2, 3}, 0},
		{"single", []float64{0}, []float64{2}, 4},
		{"mean", []float64{1, -1}, []float64{0, 1}, 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := loss.Compute(vec(tt.target...), vec(tt.predicted...))
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
			assert.GreaterOrEqual(t, got, 0.0)
		})
	}
}

func TestMSE_Gradient(t *testing.T) {
	grad, err := nn.MSE{}.Gradient(vec(1, -1), vec(0, 1))
	require.NoError(t, err)
	// 2(ŷ-y)/n
	assert.Equal(t, []float64{-1, 2}, grad.RawVector().Data)
}

func TestMSE_LengthMismatch(t *testing.T) {
	_, err := nn.MSE{}.Compute(vec(1, 2), vec(1))
	var shapeErr *nn.ShapeMismatchError
	assert.True(t, errors.As(err, &shapeErr))

	_, err = nn.MSE{}.Gradient(vec(1, 2), vec(1))
	assert.True(t, errors.As(err, &shapeErr))
}

func TestLossPair(t *testing.T) {
	var loss nn.Loss = nn.LossPair{Loss: nn.MSELoss, Prime: nn.MSEPrime}

	got, err := loss.Compute(vec(3), vec(1))
	require.NoError(t, err)
	assert.Equal(t, 4.0, got)

	grad, err := loss.Gradient(vec(3), vec(1))
	require.NoError(t, err)
	assert.Equal(t, []float64{-4}, grad.RawVector().Data)

	_, err = loss.Compute(vec(1, 2), vec(1))
	assert.Error(t, err)
}
