package network_test

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/tinynet-ml/tinynet/internal/network"
	"github.com/tinynet-ml/tinynet/internal/nn"
)

func vec(data ...float64) *mat.VecDense {
	return mat.NewVecDense(len(data), data)
}

// xorData returns the XOR truth table with -1/1 encoding, suited to tanh.
func xorData() (x, y []mat.Vector) {
	x = []mat.Vector{vec(-1, -1), vec(-1, 1), vec(1, -1), vec(1, 1)}
	y = []mat.Vector{vec(-1), vec(1), vec(1), vec(-1)}
	return x, y
}

// newXOR builds a 2-hidden-1 tanh network.
func newXOR(t *testing.T, hidden int, seed int64, opts ...network.Option) *network.Network {
	t.Helper()

	rng := rand.New(rand.NewSource(seed))
	net := network.New(opts...)
	require.NoError(t, net.Add(nn.NewDense(2, hidden, rng)))
	require.NoError(t, net.Add(nn.NewTanh()))
	require.NoError(t, net.Add(nn.NewDense(hidden, 1, rng)))
	require.NoError(t, net.Add(nn.NewTanh()))
	net.UseLoss(nn.MSE{})
	return net
}

func TestNetwork_Add(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	net := network.New()

	require.NoError(t, net.Add(nn.NewDense(2, 4, rng)))
	require.NoError(t, net.Add(nn.NewReLU()))

	err := net.Add(nn.NewDense(3, 1, rng))
	var shapeErr *nn.ShapeMismatchError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, []int{4}, shapeErr.Want)
	assert.Equal(t, []int{3}, shapeErr.Got)
	assert.Equal(t, 2, net.Len(), "rejected layer is not appended")

	require.NoError(t, net.Add(nn.NewDense(4, 1, rng)))
	assert.Equal(t, 2, net.InputSize())
	assert.Equal(t, 1, net.OutputSize())

	assert.Error(t, net.Add(nil))
}

func TestNetwork_AddAfterUseIsRejected(t *testing.T) {
	net := newXOR(t, 4, 1)

	_, err := net.PredictOne(vec(1, 1))
	require.NoError(t, err)

	err = net.Add(nn.NewTanh())
	assert.True(t, errors.Is(err, network.ErrFrozen))
	assert.Equal(t, 4, net.Len())
}

func TestNetwork_Describe(t *testing.T) {
	net := newXOR(t, 4, 1)

	assert.Equal(t, []nn.LayerInfo{
		{Type: "Dense", Category: nn.CategoryDense, InputSize: 2, OutputSize: 4},
		{Type: "Tanh", Category: nn.CategoryActivation},
		{Type: "Dense", Category: nn.CategoryDense, InputSize: 4, OutputSize: 1},
		{Type: "Tanh", Category: nn.CategoryActivation},
	}, net.Describe())
}

func TestNetwork_Predict(t *testing.T) {
	net := newXOR(t, 4, 1)
	x, _ := xorData()

	outputs, err := net.Predict(x)
	require.NoError(t, err)
	require.Len(t, outputs, len(x))

	for i, in := range x {
		one, err := net.PredictOne(in)
		require.NoError(t, err)
		assert.True(t, mat.Equal(outputs[i], one))
		assert.Equal(t, 1, one.Len())
	}
}

func TestNetwork_PredictDoesNotMutateParameters(t *testing.T) {
	net := newXOR(t, 4, 1)
	before := snapshot(net)

	x, _ := xorData()
	for i := 0; i < 3; i++ {
		_, err := net.Predict(x)
		require.NoError(t, err)
	}

	assert.Equal(t, before, snapshot(net))
}

func TestNetwork_Trace(t *testing.T) {
	net := newXOR(t, 4, 1)

	trace, err := net.Trace(vec(1, -1))
	require.NoError(t, err)
	require.Len(t, trace, 4)
	assert.Equal(t, 4, trace[0].Len())
	assert.Equal(t, 4, trace[1].Len())
	assert.Equal(t, 1, trace[3].Len())

	out, err := net.PredictOne(vec(1, -1))
	require.NoError(t, err)
	assert.True(t, mat.Equal(out, trace[3]))
}

func TestNetwork_PredictErrors(t *testing.T) {
	_, err := network.New().PredictOne(vec(1))
	assert.True(t, errors.Is(err, network.ErrEmptyNetwork))

	net := newXOR(t, 4, 1)
	_, err = net.Predict([]mat.Vector{vec(1, 1), vec(1, 2, 3)})
	var shapeErr *nn.ShapeMismatchError
	assert.True(t, errors.As(err, &shapeErr))
}

// snapshot copies every parameter value of the network.
func snapshot(net *network.Network) [][]float64 {
	var out [][]float64
	for _, layer := range net.Layers() {
		p, ok := layer.(nn.Parameterized)
		if !ok {
			continue
		}
		for _, param := range p.Parameters() {
			out = append(out, append([]float64(nil), param.Value()...))
		}
	}
	return out
}
