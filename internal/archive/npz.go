package archive

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/sbinet/npyio/npz"
	"gonum.org/v1/gonum/mat"
)

// npyFloat64 is the NumPy dtype descriptor of little-endian float64.
const npyFloat64 = "<f8"

// npzFormat stores each array as a <name>.npy entry of a zip file, the layout
// numpy.savez produces. Only float64 arrays of rank one or two in C order are
// supported.
type npzFormat struct{}

func (npzFormat) Name() string { return ".npz" }

func (npzFormat) Write(path string, a Archive) (err error) {
	w, err := npz.Create(path)
	if err != nil {
		return errors.Wrap(err, "create npz")
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "close npz")
		}
	}()

	for _, name := range a.Names() {
		arr := a[name]

		var v any
		switch len(arr.Shape) {
		case 1:
			v = arr.Data
		case 2:
			v = mat.NewDense(arr.Shape[0], arr.Shape[1], arr.Data)
		default:
			return errors.Wrapf(ErrUnsupportedShape, "npz: array %q has shape %v", name, arr.Shape)
		}

		if err := w.Write(name+".npy", v); err != nil {
			return errors.Wrapf(err, "npz: write %q", name)
		}
	}
	return nil
}

func (npzFormat) Read(path string) (Archive, error) {
	r, err := npz.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open npz")
	}
	defer func() {
		_ = r.Close() // read-only, nothing to flush
	}()

	keys := r.Keys()
	if len(keys) > MaxArrayCount {
		return nil, &ValidationError{Err: ErrTooManyArrays, Details: "npz entry count"}
	}

	out := make(Archive, len(keys))
	for _, key := range keys {
		name := strings.TrimSuffix(key, ".npy")
		if err := ValidateName(name); err != nil {
			return nil, err
		}

		hdr := r.Header(key)
		if hdr == nil {
			return nil, errors.Errorf("npz: missing header for %q", key)
		}
		if hdr.Descr.Type != npyFloat64 {
			return nil, errors.Wrapf(ErrUnsupportedDType, "npz: array %q has dtype %s", name, hdr.Descr.Type)
		}
		if hdr.Descr.Fortran {
			return nil, errors.Wrapf(ErrUnsupportedShape, "npz: array %q is stored in Fortran order", name)
		}

		shape := append([]int(nil), hdr.Descr.Shape...)
		var data []float64
		switch len(shape) {
		case 1:
			if err := r.Read(key, &data); err != nil {
				return nil, errors.Wrapf(err, "npz: read %q", name)
			}
		case 2:
			var m mat.Dense
			if err := r.Read(key, &m); err != nil {
				return nil, errors.Wrapf(err, "npz: read %q", name)
			}
			rows, cols := m.Dims()
			data = make([]float64, 0, rows*cols)
			for i := 0; i < rows; i++ {
				data = append(data, m.RawRowView(i)...)
			}
		default:
			return nil, errors.Wrapf(ErrUnsupportedShape, "npz: array %q has shape %v", name, shape)
		}

		out[name] = Array{Shape: shape, Data: data}
	}
	return out, nil
}
