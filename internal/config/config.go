// Package config holds the runtime configuration of the tinynet server and
// training commands.
//
// Configuration is layered: Default() provides every value, an optional YAML
// file overrides any subset of them, and command-line flags override the
// result. Unknown YAML keys are rejected so typos do not silently fall back to
// defaults.
//
// Example file:
//
//	server:
//	  addr: ":8080"
//	models:
//	  xor: models/xor_model.npz
//	log:
//	  level: debug
package config

import (
	"bytes"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Models   ModelsConfig   `yaml:"models"`
	Training TrainingConfig `yaml:"training"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
}

// ModelsConfig locates the model archives and seeds the initial weights used
// when an archive is absent.
type ModelsConfig struct {
	XOR         string `yaml:"xor"`
	Autoencoder string `yaml:"autoencoder"`
	Seed        int64  `yaml:"seed"`
}

// RunConfig holds the hyperparameters of one training job.
type RunConfig struct {
	Epochs       int     `yaml:"epochs"`
	LearningRate float64 `yaml:"learning_rate"`
	ReportEvery  int     `yaml:"report_every"`
	Samples      int     `yaml:"samples"` // 0 means all available samples
}

// TrainingConfig holds the defaults of the train subcommands.
type TrainingConfig struct {
	XOR         RunConfig `yaml:"xor"`
	Autoencoder RunConfig `yaml:"autoencoder"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `yaml:"level"`       // debug, info, warn, error
	Development bool   `yaml:"development"` // console encoder instead of JSON
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":5000",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Models: ModelsConfig{
			XOR:         "models/xor_model.npz",
			Autoencoder: "models/autoencoder_model.npz",
			Seed:        1,
		},
		Training: TrainingConfig{
			XOR: RunConfig{
				Epochs:       10000,
				LearningRate: 0.1,
				ReportEvery:  1000,
			},
			Autoencoder: RunConfig{
				Epochs:       10,
				LearningRate: 0.01,
				ReportEvery:  1,
				Samples:      1000,
			},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load returns Default() overlaid with the YAML file at path. An empty path
// returns the defaults unchanged. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	//nolint:gosec // G304: config path comes from the command line
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrapf(err, "parse config %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr must not be empty")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.Errorf("server.max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes)
	}
	if c.Models.XOR == "" {
		return errors.New("models.xor must not be empty")
	}
	if c.Models.Autoencoder == "" {
		return errors.New("models.autoencoder must not be empty")
	}
	if err := c.Training.XOR.Validate("training.xor"); err != nil {
		return err
	}
	if err := c.Training.Autoencoder.Validate("training.autoencoder"); err != nil {
		return err
	}
	return nil
}

// Validate reports the first invalid training setting. Messages name each
// field under prefix.
func (r RunConfig) Validate(prefix string) error {
	if r.Epochs <= 0 {
		return errors.Errorf("%s.epochs must be positive, got %d", prefix, r.Epochs)
	}
	if r.LearningRate <= 0 {
		return errors.Errorf("%s.learning_rate must be positive, got %g", prefix, r.LearningRate)
	}
	if r.ReportEvery <= 0 {
		return errors.Errorf("%s.report_every must be positive, got %d", prefix, r.ReportEvery)
	}
	if r.Samples < 0 {
		return errors.Errorf("%s.samples must not be negative, got %d", prefix, r.Samples)
	}
	return nil
}
