package lut

import (
	"fmt"

	"github.com/san-kum/phasesim/internal/dynamo"
)

// Table1 interpolates y(x) linearly between breakpoints.
type Table1 struct {
	x      axis
	y      []float64
	policy Policy
}

// NewTable1 builds a table from strictly increasing xs and matching ys.
func NewTable1(xs, ys []float64, policy Policy) (*Table1, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("table has %d breakpoints and %d values: %w", len(xs), len(ys), dynamo.ErrInvalidConfig)
	}
	x, err := newAxis("x", xs)
	if err != nil {
		return nil, err
	}
	return &Table1{x: x, y: append([]float64(nil), ys...), policy: policy}, nil
}

// Policy returns the out-of-range policy.
func (t *Table1) Policy() Policy { return t.policy }

// Domain returns the first and last breakpoint.
func (t *Table1) Domain() (float64, float64) { return t.x.min(), t.x.max() }

// Query returns the interpolated value at x.
func (t *Table1) Query(x float64) (float64, error) {
	lo, hi, alpha, err := t.x.locate(x, t.policy)
	if err != nil {
		return 0, err
	}
	y0, y1 := t.y[lo], t.y[hi]
	return y0 + alpha*(y1-y0), nil
}

// At is Query for callers that treat a domain error as a bug.
func (t *Table1) At(x float64) float64 {
	v, err := t.Query(x)
	if err != nil {
		panic(err)
	}
	return v
}
