package lut

import (
	"fmt"

	"github.com/san-kum/phasesim/internal/dynamo"
)

// Table2 interpolates z(x, y) bilinearly. Data is row-major with one row per
// x breakpoint: z[i*len(ys)+j] belongs to (xs[i], ys[j]).
type Table2 struct {
	x, y   axis
	z      []float64
	policy Policy
}

// NewTable2 builds a table over the grid xs by ys.
func NewTable2(xs, ys, z []float64, policy Policy) (*Table2, error) {
	if len(xs)*len(ys) != len(z) {
		return nil, fmt.Errorf("grid %dx%d needs %d values, got %d: %w",
			len(xs), len(ys), len(xs)*len(ys), len(z), dynamo.ErrInvalidConfig)
	}
	x, err := newAxis("x", xs)
	if err != nil {
		return nil, err
	}
	y, err := newAxis("y", ys)
	if err != nil {
		return nil, err
	}
	return &Table2{x: x, y: y, z: append([]float64(nil), z...), policy: policy}, nil
}

// Policy returns the out-of-range policy.
func (t *Table2) Policy() Policy { return t.policy }

// Query returns the interpolated value at (x, y).
func (t *Table2) Query(x, y float64) (float64, error) {
	xlo, xhi, ax, err := t.x.locate(x, t.policy)
	if err != nil {
		return 0, err
	}
	ylo, yhi, ay, err := t.y.locate(y, t.policy)
	if err != nil {
		return 0, err
	}

	cols := len(t.y.points)
	at := func(i, j int) float64 { return t.z[i*cols+j] }

	v00, v10 := at(xlo, ylo), at(xhi, ylo)
	v01, v11 := at(xlo, yhi), at(xhi, yhi)

	v0 := v00 + ax*(v10-v00)
	v1 := v01 + ax*(v11-v01)
	return v0 + ay*(v1-v0), nil
}

// At is Query for callers that treat a domain error as a bug.
func (t *Table2) At(x, y float64) float64 {
	v, err := t.Query(x, y)
	if err != nil {
		panic(err)
	}
	return v
}
