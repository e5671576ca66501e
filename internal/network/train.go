package network

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/tinynet-ml/tinynet/internal/optim"
)

// Progress is reported periodically during training.
type Progress struct {
	Epoch  int     // 1-based epoch just completed
	Epochs int     // Total number of epochs
	Loss   float64 // Mean loss over the samples of this epoch
}

// ProgressFunc receives training progress.
type ProgressFunc func(Progress)

// Train fits the network to the samples with online stochastic gradient
// descent: parameters are updated after every single sample.
//
// For every epoch and every sample in order it runs a forward pass, adds the
// sample loss to the epoch total, propagates the loss gradient backward through
// the layers in reverse and applies one SGD step to every layer. The mean epoch
// loss is reported every ReportEvery epochs.
func (n *Network) Train(x, y []mat.Vector, epochs int, learningRate float64) error {
	if n.loss == nil {
		return ErrNoLoss
	}
	if len(n.layers) == 0 {
		return ErrEmptyNetwork
	}
	if len(x) != len(y) {
		return errors.Wrapf(ErrSampleCount, "%d inputs, %d targets", len(x), len(y))
	}
	if len(x) == 0 {
		return errors.Wrap(ErrSampleCount, "no samples")
	}
	if epochs < 0 {
		return errors.Wrapf(ErrHyperparameter, "epochs must not be negative, got %d", epochs)
	}
	if learningRate <= 0 {
		return errors.Wrapf(ErrHyperparameter, "learning rate must be positive, got %g", learningRate)
	}

	n.frozen = true
	optimizer := optim.NewSGD(optim.SGDConfig{LR: learningRate})

	for epoch := 1; epoch <= epochs; epoch++ {
		var total float64
		for j := range x {
			loss, err := n.step(x[j], y[j], optimizer)
			if err != nil {
				return errors.Wrapf(err, "epoch %d, sample %d", epoch, j)
			}
			total += loss
		}

		if epoch%n.reportEvery == 0 {
			n.progress(Progress{
				Epoch:  epoch,
				Epochs: epochs,
				Loss:   total / float64(len(x)),
			})
		}
	}
	return nil
}

// step trains on a single sample and returns its loss.
func (n *Network) step(x, y mat.Vector, optimizer optim.Optimizer) (float64, error) {
	trace, err := n.Trace(x)
	if err != nil {
		return 0, err
	}
	output := trace[len(trace)-1]

	loss, err := n.loss.Compute(y, output)
	if err != nil {
		return 0, errors.Wrap(err, "loss")
	}
	grad, err := n.loss.Gradient(y, output)
	if err != nil {
		return 0, errors.Wrap(err, "loss gradient")
	}

	lr := optimizer.GetLR()
	for i := len(n.layers) - 1; i >= 0; i-- {
		grad, err = n.layers[i].Backward(grad, lr)
		if err != nil {
			return 0, errors.Wrapf(err, "layer %d (%s)", i, n.layers[i].Name())
		}
	}

	for _, layer := range n.layers {
		optimizer.Update(layer)
	}
	return loss, nil
}

func (n *Network) logProgress(p Progress) {
	n.logger.Info("training progress",
		zap.Int("epoch", p.Epoch),
		zap.Int("epochs", p.Epochs),
		zap.Float64("loss", p.Loss),
	)
}
