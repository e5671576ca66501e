package network

import "github.com/pkg/errors"

// Common errors.
var (
	ErrNoLoss         = errors.New("no loss function configured")
	ErrEmptyNetwork   = errors.New("network has no layers")
	ErrSampleCount    = errors.New("invalid sample count")
	ErrFrozen         = errors.New("network structure is frozen after first use")
	ErrHyperparameter = errors.New("invalid training hyperparameter")
)
