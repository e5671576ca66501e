package archive_test

import (
	"encoding/binary"
	"encoding/json"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinynet-ml/tinynet/internal/archive"
)

func sample() archive.Archive {
	return archive.Archive{
		"w0": {Shape: []int{4, 2}, Data: []float64{0.1, -0.2, 0.3, -0.4, 0.5, -0.6, 0.7, -0.8}},
		"b0": {Shape: []int{4}, Data: []float64{1, 2, 3, 4}},
		"w1": {Shape: []int{1, 4}, Data: []float64{math.Pi, -math.E, 1e-300, 1e300}},
		"b1": {Shape: []int{1, 1}, Data: []float64{-0.5}},
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	for _, ext := range []string{".npz", ".safetensors"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "model"+ext)

			require.NoError(t, archive.Save(path, sample()))
			got, err := archive.Load(path)
			require.NoError(t, err)

			assert.Equal(t, sample().Names(), got.Names())
			for name, want := range sample() {
				assert.Equal(t, want.Shape, got[name].Shape, name)
				assert.Equal(t, want.Data, got[name].Data, name)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := archive.Load(filepath.Join(t.TempDir(), "absent.npz"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path string
		want archive.Format
	}{
		{"model.npz", archive.NPZ},
		{"MODEL.NPZ", archive.NPZ},
		{"model", archive.NPZ},
		{"dir/model.safetensors", archive.Safetensors},
	}
	for _, tt := range tests {
		got, err := archive.FormatFor(tt.path)
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want.Name(), got.Name(), tt.path)
	}

	_, err := archive.FormatFor("model.pkl")
	assert.True(t, errors.Is(err, archive.ErrUnsupportedFormat))
}

func TestSave_RejectsInvalidArchive(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		archive archive.Archive
		want    error
	}{
		{"path traversal", archive.Archive{"../w0": {Shape: []int{1}, Data: []float64{1}}}, archive.ErrInvalidName},
		{"separator", archive.Archive{"a/b": {Shape: []int{1}, Data: []float64{1}}}, archive.ErrInvalidName},
		{"size mismatch", archive.Archive{"w0": {Shape: []int{2, 2}, Data: []float64{1}}}, archive.ErrSizeMismatch},
		{"zero dim", archive.Archive{"w0": {Shape: []int{0}, Data: nil}}, archive.ErrInvalidShape},
		{"scalar", archive.Archive{"w0": {Shape: nil, Data: []float64{1}}}, archive.ErrInvalidShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "bad.safetensors")
			err := archive.Save(path, tt.archive)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), err.Error())

			var verr *archive.ValidationError
			assert.True(t, errors.As(err, &verr))

			_, statErr := os.Stat(path)
			assert.True(t, errors.Is(statErr, fs.ErrNotExist), "nothing is written on validation failure")
		})
	}
}

func TestSave_NPZRejectsHighRank(t *testing.T) {
	err := archive.Save(filepath.Join(t.TempDir(), "m.npz"), archive.Archive{
		"w0": {Shape: []int{1, 1, 2}, Data: []float64{1, 2}},
	})
	assert.True(t, errors.Is(err, archive.ErrUnsupportedShape))
}

// writeSafetensors writes a hand-built safetensors file.
func writeSafetensors(t *testing.T, header map[string]any, data []byte) string {
	t.Helper()

	headerJSON, err := json.Marshal(header)
	require.NoError(t, err)

	buf := binary.LittleEndian.AppendUint64(nil, uint64(len(headerJSON)))
	buf = append(buf, headerJSON...)
	buf = append(buf, data...)

	path := filepath.Join(t.TempDir(), "model.safetensors")
	require.NoError(t, os.WriteFile(path, buf, 0o600))
	return path
}

func f32bytes(values ...float32) []byte {
	var out []byte
	for _, v := range values {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
	}
	return out
}

func TestLoadSafetensors_F32IsWidened(t *testing.T) {
	path := writeSafetensors(t, map[string]any{
		"__metadata__": map[string]string{"format": "pt"},
		"b0":           map[string]any{"dtype": "F32", "shape": []int{2}, "data_offsets": []int64{0, 8}},
	}, f32bytes(1.5, -2))

	got, err := archive.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, -2}, got["b0"].Data)
}

func TestLoadSafetensors_Corrupted(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]any
		data   []byte
		want   error
	}{
		{
			name: "overlap",
			header: map[string]any{
				"a": map[string]any{"dtype": "F32", "shape": []int{2}, "data_offsets": []int64{0, 8}},
				"b": map[string]any{"dtype": "F32", "shape": []int{2}, "data_offsets": []int64{4, 12}},
			},
			data: f32bytes(1, 2, 3),
			want: archive.ErrOffsetOverlap,
		},
		{
			name: "out of bounds",
			header: map[string]any{
				"a": map[string]any{"dtype": "F32", "shape": []int{4}, "data_offsets": []int64{0, 16}},
			},
			data: f32bytes(1, 2),
			want: archive.ErrOutOfBounds,
		},
		{
			name: "negative",
			header: map[string]any{
				"a": map[string]any{"dtype": "F32", "shape": []int{1}, "data_offsets": []int64{8, 4}},
			},
			data: f32bytes(1, 2),
			want: archive.ErrNegativeOffset,
		},
		{
			name: "bad name",
			header: map[string]any{
				"../a": map[string]any{"dtype": "F32", "shape": []int{1}, "data_offsets": []int64{0, 4}},
			},
			data: f32bytes(1),
			want: archive.ErrInvalidName,
		},
		{
			name: "shape disagrees with data",
			header: map[string]any{
				"a": map[string]any{"dtype": "F32", "shape": []int{3}, "data_offsets": []int64{0, 8}},
			},
			data: f32bytes(1, 2),
			want: archive.ErrSizeMismatch,
		},
		{
			name: "unsupported dtype",
			header: map[string]any{
				"a": map[string]any{"dtype": "I64", "shape": []int{1}, "data_offsets": []int64{0, 8}},
			},
			data: make([]byte, 8),
			want: archive.ErrUnsupportedDType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := archive.Load(writeSafetensors(t, tt.header, tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), err.Error())
		})
	}
}

func TestLoadSafetensors_HeaderTooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.safetensors")
	buf := binary.LittleEndian.AppendUint64(nil, 1<<40)
	require.NoError(t, os.WriteFile(path, append(buf, '{', '}'), 0o600))

	_, err := archive.Load(path)
	assert.True(t, errors.Is(err, archive.ErrHeaderTooLarge))
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, archive.ValidateName("w0"))
	assert.NoError(t, archive.ValidateName("layer.weight"))

	for _, name := range []string{"", "..", "a/b", `a\b`, "a\x00b"} {
		assert.True(t, errors.Is(archive.ValidateName(name), archive.ErrInvalidName), "%q", name)
	}

	long := make([]byte, archive.MaxArrayNameLen+1)
	for i := range long {
		long[i] = 'a'
	}
	assert.True(t, errors.Is(archive.ValidateName(string(long)), archive.ErrNameTooLong))
}

func TestArchive_Names(t *testing.T) {
	assert.Equal(t, []string{"b0", "b1", "w0", "w1"}, sample().Names())
}
