// Package optim implements optimization algorithms for training neural networks.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: plain Stochastic Gradient Descent
//
// Layers compute and store parameter gradients during Backward; an optimizer
// reads those gradients, updates the parameter values in place and marks the
// gradients as consumed.
//
// Example usage:
//
//	optimizer := optim.NewSGD(optim.SGDConfig{LR: 0.1})
//
//	for _, layer := range layers {
//	    optimizer.Update(layer)
//	}
package optim

import (
	"github.com/tinynet-ml/tinynet/internal/nn"
)

// Optimizer is the base interface for all optimization algorithms.
//
// All optimizers must implement:
//   - Update: Apply the pending gradients of one layer
//   - GetLR: Get current learning rate (for monitoring/scheduling)
type Optimizer interface {
	// Update applies the pending gradients of layer to its parameters and
	// clears them. Layers without parameters are left alone.
	Update(layer nn.Layer)

	// GetLR returns the current learning rate.
	GetLR() float64
}

// parameters returns the trainable parameters of layer, or nil.
func parameters(layer nn.Layer) []*nn.Parameter {
	p, ok := layer.(nn.Parameterized)
	if !ok {
		return nil
	}
	return p.Parameters()
}
