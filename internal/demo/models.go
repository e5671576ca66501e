// Package demo assembles the two networks served by the web demo: an XOR
// classifier and an image autoencoder.
package demo

import (
	"math/rand"
	"sync"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/tinynet-ml/tinynet/internal/network"
	"github.com/tinynet-ml/tinynet/internal/nn"
)

// ImageSize is the number of pixels of a 28x28 autoencoder image.
const ImageSize = 784

// NewXOR builds the 2-4-1 tanh XOR network with MSE loss.
func NewXOR(rng *rand.Rand, opts ...network.Option) (*network.Network, error) {
	return build(nn.MSE{}, opts,
		nn.NewDense(2, 4, rng),
		nn.NewTanh(),
		nn.NewDense(4, 1, rng),
		nn.NewTanh(),
	)
}

// NewAutoencoder builds the 784-128-64-128-784 autoencoder with ReLU hidden
// layers, a sigmoid output and MSE loss.
func NewAutoencoder(rng *rand.Rand, opts ...network.Option) (*network.Network, error) {
	return build(nn.MSE{}, opts,
		nn.NewDense(ImageSize, 128, rng),
		nn.NewReLU(),
		nn.NewDense(128, 64, rng),
		nn.NewReLU(),
		nn.NewDense(64, 128, rng),
		nn.NewReLU(),
		nn.NewDense(128, ImageSize, rng),
		nn.NewSigmoid(),
	)
}

func build(loss nn.Loss, opts []network.Option, layers ...nn.Layer) (*network.Network, error) {
	net := network.New(opts...)
	for _, layer := range layers {
		if err := net.Add(layer); err != nil {
			return nil, err
		}
	}
	net.UseLoss(loss)
	return net, nil
}

// ErrNotInitialized is returned by a Model whose network was never set.
var ErrNotInitialized = errors.New("network not initialized")

// Model guards a network for concurrent use by HTTP handlers.
//
// Layers cache their last forward pass, so even prediction mutates state and
// every call is serialized.
type Model struct {
	mu       sync.Mutex
	name     string
	net      *network.Network
	restored bool
}

// NewModel wraps net. restored records whether its parameters came from an
// archive rather than random initialization.
func NewModel(name string, net *network.Network, restored bool) *Model {
	return &Model{name: name, net: net, restored: restored}
}

// Name returns the model name, e.g. "xor".
func (m *Model) Name() string {
	return m.name
}

// Ready reports whether the model has a network.
func (m *Model) Ready() bool {
	return m != nil && m.net != nil
}

// Restored reports whether the parameters were loaded from an archive.
func (m *Model) Restored() bool {
	if !m.Ready() {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.restored
}

// InputSize returns the expected input length.
func (m *Model) InputSize() int {
	if !m.Ready() {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.net.InputSize()
}

// Describe returns the layer structure.
func (m *Model) Describe() ([]nn.LayerInfo, error) {
	if !m.Ready() {
		return nil, ErrNotInitialized
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.net.Describe(), nil
}

// Predict returns the network output for input.
func (m *Model) Predict(input []float64) ([]float64, error) {
	trace, err := m.Trace(input)
	if err != nil {
		return nil, err
	}
	return trace[len(trace)-1], nil
}

// Trace returns the output of every layer for input.
func (m *Model) Trace(input []float64) ([][]float64, error) {
	if !m.Ready() {
		return nil, ErrNotInitialized
	}
	if len(input) == 0 {
		return nil, errors.Wrap(nn.ErrEmptyInput, m.name)
	}
	x := mat.NewVecDense(len(input), append([]float64(nil), input...))

	m.mu.Lock()
	trace, err := m.net.Trace(x)
	m.mu.Unlock()
	if err != nil {
		return nil, errors.Wrap(err, m.name)
	}

	out := make([][]float64, len(trace))
	for i, v := range trace {
		out[i] = append([]float64(nil), v.RawVector().Data...)
	}
	return out, nil
}
