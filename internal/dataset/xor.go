// Package dataset provides the training data for the demo networks.
package dataset

import (
	"gonum.org/v1/gonum/mat"
)

// Encoding selects how the boolean values of a truth table are represented.
type Encoding int

const (
	// Symmetric maps false to -1 and true to 1, the range of tanh.
	Symmetric Encoding = iota
	// Binary maps false to 0 and true to 1, the range of sigmoid.
	Binary
)

// XOR returns the four samples of the exclusive-or truth table in the order
// (F,F), (F,T), (T,F), (T,T). Inputs have length 2 and targets length 1.
func XOR(enc Encoding) (x, y []mat.Vector) {
	f, t := 0.0, 1.0
	if enc == Symmetric {
		f = -1
	}
	pairs := [4][2]float64{{f, f}, {f, t}, {t, f}, {t, t}}
	targets := [4]float64{f, t, t, f}

	x = make([]mat.Vector, len(pairs))
	y = make([]mat.Vector, len(pairs))
	for i, p := range pairs {
		x[i] = mat.NewVecDense(2, []float64{p[0], p[1]})
		y[i] = mat.NewVecDense(1, []float64{targets[i]})
	}
	return x, y
}
