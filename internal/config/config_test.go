package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinynet-ml/tinynet/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tinynet.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":5000", cfg.Server.Addr)
	assert.Equal(t, "models/xor_model.npz", cfg.Models.XOR)
	assert.Equal(t, "models/autoencoder_model.npz", cfg.Models.Autoencoder)
	assert.Equal(t, 10000, cfg.Training.XOR.Epochs)
	assert.Equal(t, 0.1, cfg.Training.XOR.LearningRate)
	assert.Equal(t, 0.01, cfg.Training.Autoencoder.LearningRate)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_Overlay(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":8080"
  read_timeout: 2s
models:
  xor: /tmp/xor.safetensors
training:
  xor:
    epochs: 500
log:
  level: debug
  development: true
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 2*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, config.Default().Server.WriteTimeout, cfg.Server.WriteTimeout)
	assert.Equal(t, "/tmp/xor.safetensors", cfg.Models.XOR)
	assert.Equal(t, config.Default().Models.Autoencoder, cfg.Models.Autoencoder)
	assert.Equal(t, 500, cfg.Training.XOR.Epochs)
	assert.Equal(t, 0.1, cfg.Training.XOR.LearningRate, "unset keys keep defaults")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Development)
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown key", "server:\n  adress: ':1'\n", "adress"},
		{"bad yaml", "server: [\n", "parse config"},
		{"zero epochs", "training:\n  xor:\n    epochs: 0\n", "training.xor.epochs"},
		{"negative lr", "training:\n  autoencoder:\n    learning_rate: -1\n", "training.autoencoder.learning_rate"},
		{"empty model path", "models:\n  autoencoder: ''\n", "models.autoencoder"},
		{"empty addr", "server:\n  addr: ''\n", "server.addr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
