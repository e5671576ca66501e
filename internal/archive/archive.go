// Package archive stores flat collections of named float64 arrays on disk.
//
// An Archive is the persisted form of a model: a mapping from names such as
// "w0" and "b0" to n-dimensional arrays. Two on-disk formats are supported and
// selected by file extension:
//
//   - .npz: a zip of NumPy .npy files, readable with numpy.load
//   - .safetensors: an 8-byte header length, a JSON header and raw
//     little-endian data
//
// Files read from disk are validated before any array is returned: names are
// checked for path traversal, safetensors offsets for overlap and bounds, and
// every array for a shape that matches its data length.
package archive

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Array is a dense row-major float64 array.
type Array struct {
	Shape []int
	Data  []float64
}

// Archive maps array names to arrays.
type Archive map[string]Array

// Names returns the array names in sorted order.
func (a Archive) Names() []string {
	names := make([]string, 0, len(a))
	for name := range a {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks every name and array of the archive.
func (a Archive) Validate() error {
	if len(a) > MaxArrayCount {
		return &ValidationError{
			Err:     ErrTooManyArrays,
			Details: "archive holds more arrays than any reader accepts",
		}
	}
	for _, name := range a.Names() {
		if err := ValidateName(name); err != nil {
			return err
		}
		if err := ValidateArray(name, a[name]); err != nil {
			return err
		}
	}
	return nil
}

// Format reads and writes archives in one on-disk encoding.
type Format interface {
	// Name returns the canonical file extension, including the dot.
	Name() string
	Write(path string, a Archive) error
	Read(path string) (Archive, error)
}

// Supported formats.
var (
	NPZ         Format = npzFormat{}
	Safetensors Format = safetensorsFormat{}
)

// FormatFor selects a format from the extension of path.
//
// Paths without an extension use NPZ. Unknown extensions fail with
// ErrUnsupportedFormat.
func FormatFor(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case "", NPZ.Name():
		return NPZ, nil
	case Safetensors.Name():
		return Safetensors, nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", ext)
	}
}

// Save validates a and writes it to path in the format implied by the
// extension. Missing parent directories are created.
func Save(path string, a Archive) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	if err := a.Validate(); err != nil {
		return errors.Wrapf(err, "save %s", path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return errors.Wrap(err, "create archive directory")
		}
	}
	if err := format.Write(path, a); err != nil {
		return errors.Wrapf(err, "save %s", path)
	}
	return nil
}

// Load reads and validates the archive at path.
//
// A missing file yields an error satisfying errors.Is(err, fs.ErrNotExist).
func Load(path string) (Archive, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(err, "archive %s", path)
		}
		return nil, errors.Wrap(err, "stat archive")
	}

	a, err := format.Read(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	if err := a.Validate(); err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return a, nil
}
