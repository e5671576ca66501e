package optim

import (
	"gonum.org/v1/gonum/floats"

	"github.com/tinynet-ml/tinynet/internal/nn"
)

// DefaultLR is the learning rate used when SGDConfig.LR is zero.
const DefaultLR = 0.01

// SGD implements Stochastic Gradient Descent.
//
// Update rule:
//
//	param = param - lr * gradient
//
// The optimizer holds no state apart from the learning rate. Each gradient is
// applied exactly once: Update clears it afterwards, so calling Update twice
// without an intervening Backward is a no-op the second time.
//
// Example:
//
//	optimizer := optim.NewSGD(optim.SGDConfig{LR: 0.1})
//
//	out, _ := layer.Forward(x)
//	_, _ = layer.Backward(lossGrad, optimizer.GetLR())
//	optimizer.Update(layer)
type SGD struct {
	lr float64
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR float64 // Learning rate (default: 0.01)
}

// NewSGD creates a new SGD optimizer.
func NewSGD(config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = DefaultLR
	}
	return &SGD{lr: config.LR}
}

// Update performs a single optimization step for layer.
//
// Parameters with no pending gradient are skipped.
func (s *SGD) Update(layer nn.Layer) {
	for _, param := range parameters(layer) {
		grad := param.Grad()
		if grad == nil {
			continue
		}
		// param -= lr * grad
		floats.AddScaled(param.Value(), -s.lr, grad)
		param.ZeroGrad()
	}
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}
