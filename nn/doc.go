// Copyright 2025 The tinynet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides feedforward neural network layers and the network that
// trains them.
//
// # Overview
//
// This package contains:
//   - Layers: Dense
//   - Activations: ReLU, Sigmoid, Tanh, Softmax
//   - Loss functions: MSE, LossPair
//   - Network: Add, UseLoss, Predict, Trace, Train, Save, Load
//   - Initialization: Xavier
//
// # Basic Usage
//
//	import (
//	    "math/rand"
//
//	    "github.com/tinynet-ml/tinynet/nn"
//	)
//
//	func main() {
//	    rng := rand.New(rand.NewSource(1))
//
//	    net := nn.NewNetwork()
//	    _ = net.Add(nn.NewDense(2, 4, rng))
//	    _ = net.Add(nn.NewTanh())
//	    _ = net.Add(nn.NewDense(4, 1, rng))
//	    _ = net.Add(nn.NewTanh())
//	    net.UseLoss(nn.MSE{})
//
//	    err := net.Train(x, y, 10000, 0.1)
//	}
//
// # Layers
//
// Every layer implements Forward and Backward over gonum vectors and caches
// the most recent sample. Dense stores its parameter gradients during Backward;
// an optimizer applies them.
//
//	layer := nn.NewDense(inputSize, outputSize, rng)
//
// # Training
//
// Network.Train runs online stochastic gradient descent: one forward pass,
// one backward pass and one SGD step per sample. Progress is reported every
// 1000 epochs by default:
//
//	net := nn.NewNetwork(
//	    nn.WithReportEvery(100),
//	    nn.WithProgress(func(p nn.Progress) { fmt.Println(p.Epoch, p.Loss) }),
//	)
//
// # Persistence
//
// Save writes the k-th Dense layer as the arrays w<k> and b<k>. The file
// extension selects the format: .npz (compatible with numpy.load) or
// .safetensors.
//
//	if err := net.Save("models/xor_model.npz"); err != nil { ... }
//	report, err := net.Load("models/xor_model.npz")
package nn
