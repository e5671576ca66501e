package network

import (
	"slices"
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/tinynet-ml/tinynet/internal/archive"
	"github.com/tinynet-ml/tinynet/internal/nn"
)

// LoadReport summarizes which parameterized layers Load restored.
//
// Layers are identified by their ordinal among parameterized layers, the same
// k used in the archive names w<k> and b<k>.
type LoadReport struct {
	Path     string
	Restored []int
	Missing  []int
}

// Save writes the parameters of every parameterized layer to path.
//
// The k-th parameterized layer is stored as w<k> (weights) and b<k> (biases).
// The archive format follows the file extension: .npz (default) or
// .safetensors.
func (n *Network) Save(path string) error {
	a := make(archive.Archive)
	for k, layer := range n.parameterized() {
		for _, p := range layer.Parameters() {
			a[archiveName(p.Name(), k)] = archive.Array{
				Shape: p.Shape(),
				Data:  slices.Clone(p.Value()),
			}
		}
	}

	if err := archive.Save(path, a); err != nil {
		return err
	}
	n.logger.Info("network saved", zap.String("path", path), zap.Int("arrays", len(a)))
	return nil
}

// Load restores parameters written by Save.
//
// A layer whose entries are absent from the archive keeps its current values;
// it is listed in LoadReport.Missing and a warning is logged. All shapes are
// checked before any value is copied, so a shape mismatch returns a
// *nn.ShapeMismatchError and leaves every layer untouched. A missing file
// returns an error satisfying errors.Is(err, fs.ErrNotExist).
func (n *Network) Load(path string) (*LoadReport, error) {
	a, err := archive.Load(path)
	if err != nil {
		return nil, err
	}

	type assignment struct {
		param *nn.Parameter
		array archive.Array
	}

	report := &LoadReport{Path: path}
	var plan []assignment

	for k, layer := range n.parameterized() {
		var pending []assignment
		complete := true
		for _, p := range layer.Parameters() {
			name := archiveName(p.Name(), k)
			arr, ok := a[name]
			if !ok {
				complete = false
				continue
			}
			if err := p.CheckShape(arr.Shape); err != nil {
				return nil, errors.Wrapf(err, "load %s: %s", path, name)
			}
			pending = append(pending, assignment{param: p, array: arr})
		}

		if !complete {
			report.Missing = append(report.Missing, k)
			n.logger.Warn("no parameters found for layer",
				zap.Int("layer", k),
				zap.String("path", path),
			)
			continue
		}
		plan = append(plan, pending...)
		report.Restored = append(report.Restored, k)
	}

	for _, as := range plan {
		if err := as.param.Assign(as.array.Shape, as.array.Data); err != nil {
			return nil, errors.Wrapf(err, "load %s", path)
		}
	}

	n.logger.Info("network loaded",
		zap.String("path", path),
		zap.Ints("restored", report.Restored),
		zap.Ints("missing", report.Missing),
	)
	return report, nil
}

// archiveName maps a parameter of the k-th parameterized layer to its archive
// entry: weight -> w<k>, bias -> b<k>, anything else -> <name><k>.
func archiveName(param string, k int) string {
	switch param {
	case "weight":
		return "w" + strconv.Itoa(k)
	case "bias":
		return "b" + strconv.Itoa(k)
	default:
		return param + strconv.Itoa(k)
	}
}
