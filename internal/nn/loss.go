package nn

import (
	"gonum.org/v1/gonum/mat"
)

// Loss is a scalar training objective together with its gradient with respect
// to the predictions.
type Loss interface {
	// Compute returns the loss of predicted against target.
	Compute(target, predicted mat.Vector) (float64, error)
	// Gradient returns dLoss/dPredicted.
	Gradient(target, predicted mat.Vector) (*mat.VecDense, error)
}

// MSE computes Mean Squared Error loss.
//
// Loss = mean((predicted - target)²)
// Gradient = 2(predicted - target)/n, where n is the element count of target.
//
// Example:
//
//	net.UseLoss(nn.MSE{})
type MSE struct{}

// Compute returns mean((predicted - target)²).
func (MSE) Compute(target, predicted mat.Vector) (float64, error) {
	if err := checkPair("MSE.Compute", target, predicted); err != nil {
		return 0, err
	}
	return MSELoss(target, predicted), nil
}

// Gradient returns 2(predicted - target)/n.
func (MSE) Gradient(target, predicted mat.Vector) (*mat.VecDense, error) {
	if err := checkPair("MSE.Gradient", target, predicted); err != nil {
		return nil, err
	}
	return MSEPrime(target, predicted), nil
}

// MSELoss is the plain mean squared error. Lengths are not checked.
func MSELoss(target, predicted mat.Vector) float64 {
	var diff mat.VecDense
	diff.SubVec(predicted, target)
	return mat.Dot(&diff, &diff) / float64(target.Len())
}

// MSEPrime is the plain gradient of MSELoss. Lengths are not checked.
func MSEPrime(target, predicted mat.Vector) *mat.VecDense {
	var grad mat.VecDense
	grad.SubVec(predicted, target)
	grad.ScaleVec(2/float64(target.Len()), &grad)
	return &grad
}

// LossPair adapts a loss function and its derivative, supplied as two plain
// functions, to the Loss interface.
//
// Example:
//
//	net.UseLoss(nn.LossPair{Loss: nn.MSELoss, Prime: nn.MSEPrime})
type LossPair struct {
	Loss  func(target, predicted mat.Vector) float64
	Prime func(target, predicted mat.Vector) *mat.VecDense
}

// Compute calls Loss after validating the vector lengths.
func (p LossPair) Compute(target, predicted mat.Vector) (float64, error) {
	if err := checkPair("LossPair.Compute", target, predicted); err != nil {
		return 0, err
	}
	return p.Loss(target, predicted), nil
}

// Gradient calls Prime after validating the vector lengths.
func (p LossPair) Gradient(target, predicted mat.Vector) (*mat.VecDense, error) {
	if err := checkPair("LossPair.Gradient", target, predicted); err != nil {
		return nil, err
	}
	return p.Prime(target, predicted), nil
}

func checkPair(op string, target, predicted mat.Vector) error {
	if target.Len() != predicted.Len() || target.Len() == 0 {
		return shapeError(op, []int{target.Len()}, []int{predicted.Len()})
	}
	return nil
}
