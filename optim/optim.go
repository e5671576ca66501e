// Copyright 2025 The tinynet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/tinynet-ml/tinynet/internal/optim"
)

// Optimizer interface defines the common interface for all optimizers.
type Optimizer = optim.Optimizer

// SGD (Stochastic Gradient Descent)

// SGD represents the plain SGD optimizer.
type SGD = optim.SGD

// SGDConfig contains configuration for SGD optimizer.
type SGDConfig = optim.SGDConfig

// DefaultLR is the learning rate used when SGDConfig.LR is zero.
const DefaultLR = optim.DefaultLR

// NewSGD creates a new SGD optimizer.
//
// Example:
//
//	optimizer := optim.NewSGD(optim.SGDConfig{LR: 0.1})
//	optimizer.Update(layer)
func NewSGD(config SGDConfig) *SGD {
	return optim.NewSGD(config)
}
