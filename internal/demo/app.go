package demo

import (
	"io/fs"
	"math/rand"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/tinynet-ml/tinynet/internal/config"
	"github.com/tinynet-ml/tinynet/internal/network"
)

// Model names.
const (
	XORName         = "xor"
	AutoencoderName = "autoencoder"
)

// App owns the networks served by the demo.
type App struct {
	XOR         *Model
	Autoencoder *Model
}

// NewApp builds both networks and restores them from the configured archives.
//
// A missing archive is not an error: the network keeps its seeded random
// weights and a warning is logged. Any other load failure, including a shape
// mismatch, is returned.
func NewApp(cfg config.ModelsConfig, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // weight initialization is not security-critical

	xor, err := NewXOR(rng, network.WithLogger(logger))
	if err != nil {
		return nil, errors.Wrap(err, "build xor network")
	}
	xorModel, err := restore(XORName, xor, cfg.XOR, logger)
	if err != nil {
		return nil, err
	}

	ae, err := NewAutoencoder(rng, network.WithLogger(logger))
	if err != nil {
		return nil, errors.Wrap(err, "build autoencoder network")
	}
	aeModel, err := restore(AutoencoderName, ae, cfg.Autoencoder, logger)
	if err != nil {
		return nil, err
	}

	return &App{XOR: xorModel, Autoencoder: aeModel}, nil
}

func restore(name string, net *network.Network, path string, logger *zap.Logger) (*Model, error) {
	report, err := net.Load(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Warn("model file not found, using random weights",
			zap.String("model", name),
			zap.String("path", path),
		)
		return NewModel(name, net, false), nil
	case err != nil:
		return nil, errors.Wrapf(err, "restore %s model", name)
	}
	return NewModel(name, net, len(report.Restored) > 0), nil
}
