// Package network chains layers into a trainable feedforward network.
//
// A Network owns an ordered list of nn.Layer values and a loss function. It
// drives samples forward through the layers for prediction, and for training
// additionally propagates the loss gradient backward through the reversed
// layers and lets an SGD optimizer apply the parameter updates after every
// sample.
//
// Example:
//
//	rng := rand.New(rand.NewSource(1))
//	net := network.New()
//	_ = net.Add(nn.NewDense(2, 4, rng))
//	_ = net.Add(nn.NewTanh())
//	_ = net.Add(nn.NewDense(4, 1, rng))
//	_ = net.Add(nn.NewTanh())
//	net.UseLoss(nn.MSE{})
//
//	err := net.Train(x, y, 10000, 0.1)
//
// A Network is not safe for concurrent use.
package network

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/tinynet-ml/tinynet/internal/nn"
)

// DefaultReportEvery is the default number of epochs between progress reports.
const DefaultReportEvery = 1000

// Network is an ordered stack of layers with a loss function.
type Network struct {
	layers []nn.Layer
	loss   nn.Loss

	logger      *zap.Logger
	progress    ProgressFunc
	reportEvery int

	// frozen is set by the first Predict, Trace or Train call.
	frozen bool
}

// Option configures a Network.
type Option func(*Network)

// WithLogger sets the logger used for progress and persistence messages.
func WithLogger(logger *zap.Logger) Option {
	return func(n *Network) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithProgress replaces the default progress reporting, which logs one Info
// line per report.
func WithProgress(fn ProgressFunc) Option {
	return func(n *Network) {
		n.progress = fn
	}
}

// WithReportEvery sets the number of epochs between progress reports.
// Non-positive values are ignored.
func WithReportEvery(epochs int) Option {
	return func(n *Network) {
		if epochs > 0 {
			n.reportEvery = epochs
		}
	}
}

// New creates an empty network.
func New(opts ...Option) *Network {
	n := &Network{
		logger:      zap.NewNop(),
		reportEvery: DefaultReportEvery,
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.progress == nil {
		n.progress = n.logProgress
	}
	return n
}

// Add appends a layer.
//
// When both the new layer and the most recent sized layer report their
// dimensions, the new layer's input size must equal that layer's output size.
// Activations preserve dimensionality, so they do not break the chain.
func (n *Network) Add(layer nn.Layer) error {
	if layer == nil {
		return errors.New("add: nil layer")
	}
	if n.frozen {
		return errors.Wrapf(ErrFrozen, "add %s", layer.Name())
	}

	if next, ok := layer.(nn.Sized); ok {
		if prev := n.lastSized(); prev != nil && prev.OutputSize() != next.InputSize() {
			return errors.Wrapf(&nn.ShapeMismatchError{
				Op:   "Network.Add",
				Want: []int{prev.OutputSize()},
				Got:  []int{next.InputSize()},
			}, "layer %d (%s)", len(n.layers), layer.Name())
		}
	}

	n.layers = append(n.layers, layer)
	return nil
}

// UseLoss sets the loss function used by Train.
func (n *Network) UseLoss(loss nn.Loss) {
	n.loss = loss
}

// Layers returns a copy of the layer list.
func (n *Network) Layers() []nn.Layer {
	return append([]nn.Layer(nil), n.layers...)
}

// Len returns the number of layers.
func (n *Network) Len() int {
	return len(n.layers)
}

// Describe returns the type and dimensions of every layer in order.
func (n *Network) Describe() []nn.LayerInfo {
	infos := make([]nn.LayerInfo, len(n.layers))
	for i, layer := range n.layers {
		infos[i] = nn.Describe(layer)
	}
	return infos
}

// InputSize returns the input size of the first sized layer, or 0 when no
// layer declares one.
func (n *Network) InputSize() int {
	for _, layer := range n.layers {
		if s, ok := layer.(nn.Sized); ok {
			return s.InputSize()
		}
	}
	return 0
}

// OutputSize returns the output size of the last sized layer, or 0.
func (n *Network) OutputSize() int {
	if s := n.lastSized(); s != nil {
		return s.OutputSize()
	}
	return 0
}

// Predict runs every input through the network and returns the outputs in
// the same order. Parameters are never modified.
func (n *Network) Predict(inputs []mat.Vector) ([]*mat.VecDense, error) {
	outputs := make([]*mat.VecDense, len(inputs))
	for i, x := range inputs {
		out, err := n.PredictOne(x)
		if err != nil {
			return nil, errors.Wrapf(err, "sample %d", i)
		}
		outputs[i] = out
	}
	return outputs, nil
}

// PredictOne runs a single input through the network.
func (n *Network) PredictOne(x mat.Vector) (*mat.VecDense, error) {
	trace, err := n.Trace(x)
	if err != nil {
		return nil, err
	}
	return trace[len(trace)-1], nil
}

// Trace runs a single input through the network and returns the output of
// every layer, the last element being the prediction.
func (n *Network) Trace(x mat.Vector) ([]*mat.VecDense, error) {
	if len(n.layers) == 0 {
		return nil, ErrEmptyNetwork
	}
	n.frozen = true

	trace := make([]*mat.VecDense, len(n.layers))
	var out mat.Vector = x
	for i, layer := range n.layers {
		y, err := layer.Forward(out)
		if err != nil {
			return nil, errors.Wrapf(err, "layer %d (%s)", i, layer.Name())
		}
		trace[i] = y
		out = y
	}
	return trace, nil
}

func (n *Network) lastSized() nn.Sized {
	for i := len(n.layers) - 1; i >= 0; i-- {
		if s, ok := n.layers[i].(nn.Sized); ok {
			return s
		}
	}
	return nil
}

// parameterized returns the layers that own parameters, in order. The index
// of a layer in this list is its persistence ordinal.
func (n *Network) parameterized() []nn.Parameterized {
	var out []nn.Parameterized
	for _, layer := range n.layers {
		if p, ok := layer.(nn.Parameterized); ok {
			out = append(out, p)
		}
	}
	return out
}
