// Copyright 2025 The tinynet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the optimizer that applies layer gradients.
//
// # Overview
//
// Layers compute parameter gradients during Backward and keep them until an
// optimizer consumes them. SGD applies
//
//	param = param - lr * gradient
//
// to every parameter with a pending gradient and then clears the gradient, so
// each gradient is applied exactly once.
//
// # Basic Usage
//
//	optimizer := optim.NewSGD(optim.SGDConfig{LR: 0.1})
//
//	out, _ := layer.Forward(x)
//	_, _ = layer.Backward(lossGrad, optimizer.GetLR())
//	optimizer.Update(layer)
//
// nn.Network.Train creates and drives an SGD optimizer itself; use this
// package directly only when writing a custom training loop.
package optim
