// Copyright 2025 The tinynet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/tinynet-ml/tinynet/internal/network"
	"github.com/tinynet-ml/tinynet/internal/nn"
)

// Layer is a single differentiable stage of a network.
type Layer = nn.Layer

// Parameterized is implemented by layers that own trainable parameters.
type Parameterized = nn.Parameterized

// Sized is implemented by layers with fixed input and output sizes.
type Sized = nn.Sized

// Parameter represents a trainable array of a layer.
type Parameter = nn.Parameter

// LayerInfo is a read-only description of a layer.
type LayerInfo = nn.LayerInfo

// Category groups layer types for introspection.
type Category = nn.Category

// Layer categories.
const (
	CategoryDense      = nn.CategoryDense
	CategoryActivation = nn.CategoryActivation
)

// ShapeMismatchError reports an array with an unexpected shape.
type ShapeMismatchError = nn.ShapeMismatchError

// Common errors.
var (
	ErrNoForward    = nn.ErrNoForward
	ErrEmptyInput   = nn.ErrEmptyInput
	ErrNoLoss       = network.ErrNoLoss
	ErrEmptyNetwork = network.ErrEmptyNetwork
	ErrSampleCount  = network.ErrSampleCount
	ErrFrozen       = network.ErrFrozen

	ErrHyperparameter = network.ErrHyperparameter
)

// Layers

// Dense represents a fully connected layer.
type Dense = nn.Dense

// NewDense creates a new Dense layer with Xavier initialization drawn from rng.
//
// Example:
//
//	rng := rand.New(rand.NewSource(1))
//	layer := nn.NewDense(784, 128, rng)
func NewDense(inputSize, outputSize int, rng *rand.Rand) *Dense {
	return nn.NewDense(inputSize, outputSize, rng)
}

// NewDenseFrom creates a Dense layer from explicit weights and biases.
func NewDenseFrom(weights mat.Matrix, biases mat.Vector) (*Dense, error) {
	return nn.NewDenseFrom(weights, biases)
}

// Describe reports the type, category and sizes of a layer.
func Describe(l Layer) LayerInfo {
	return nn.Describe(l)
}

// Activations

// ReLU represents a ReLU activation layer.
type ReLU = nn.ReLU

// NewReLU creates a new ReLU activation layer.
func NewReLU() *ReLU {
	return nn.NewReLU()
}

// Sigmoid represents a sigmoid activation layer.
type Sigmoid = nn.Sigmoid

// NewSigmoid creates a new Sigmoid activation layer.
func NewSigmoid() *Sigmoid {
	return nn.NewSigmoid()
}

// Tanh represents a hyperbolic tangent activation layer.
type Tanh = nn.Tanh

// NewTanh creates a new Tanh activation layer.
func NewTanh() *Tanh {
	return nn.NewTanh()
}

// Softmax represents a softmax activation layer.
type Softmax = nn.Softmax

// NewSoftmax creates a new Softmax activation layer.
func NewSoftmax() *Softmax {
	return nn.NewSoftmax()
}

// Loss Functions

// Loss is a training objective with its gradient.
type Loss = nn.Loss

// MSE computes Mean Squared Error loss.
type MSE = nn.MSE

// LossPair adapts a loss function and its derivative to Loss.
type LossPair = nn.LossPair

// MSELoss is the plain mean squared error.
func MSELoss(target, predicted mat.Vector) float64 {
	return nn.MSELoss(target, predicted)
}

// MSEPrime is the gradient of MSELoss with respect to predicted.
func MSEPrime(target, predicted mat.Vector) *mat.VecDense {
	return nn.MSEPrime(target, predicted)
}

// Initialization

// Xavier returns n values from the Xavier/Glorot uniform distribution.
func Xavier(fanIn, fanOut, n int, rng *rand.Rand) []float64 {
	return nn.Xavier(fanIn, fanOut, n, rng)
}

// Network

// Network is an ordered stack of layers with a loss function.
type Network = network.Network

// Option configures a Network.
type Option = network.Option

// Progress is reported periodically during training.
type Progress = network.Progress

// ProgressFunc receives training progress.
type ProgressFunc = network.ProgressFunc

// LoadReport summarizes which layers Load restored.
type LoadReport = network.LoadReport

// DefaultReportEvery is the number of epochs between progress reports.
const DefaultReportEvery = network.DefaultReportEvery

// NewNetwork creates an empty network.
func NewNetwork(opts ...Option) *Network {
	return network.New(opts...)
}

// WithProgress replaces the default progress logging.
func WithProgress(fn ProgressFunc) Option {
	return network.WithProgress(fn)
}

// WithReportEvery sets the number of epochs between progress reports.
func WithReportEvery(epochs int) Option {
	return network.WithReportEvery(epochs)
}

// WithLogger sets the logger used for training progress and load warnings.
func WithLogger(logger *zap.Logger) Option {
	return network.WithLogger(logger)
}
