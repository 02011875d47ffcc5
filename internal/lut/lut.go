package lut

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/phasesim/internal/dynamo"
)

// Policy decides what a query outside the table range does.
type Policy int

const (
	// Strict reports out-of-range queries as errors.
	Strict Policy = iota
	// Clamp answers out-of-range queries with the nearest edge value.
	Clamp
)

func (p Policy) String() string {
	switch p {
	case Strict:
		return "strict"
	case Clamp:
		return "clamp"
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

// DomainError describes a query outside a table's breakpoint range.
type DomainError struct {
	Axis  string
	Value float64
	Min   float64
	Max   float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("lookup %s=%g outside [%g, %g]", e.Axis, e.Value, e.Min, e.Max)
}

func (e *DomainError) Unwrap() error { return dynamo.ErrOutOfRange }

// axis is a validated, strictly increasing breakpoint list.
type axis struct {
	name   string
	points []float64
}

func newAxis(name string, points []float64) (axis, error) {
	if len(points) < 2 {
		return axis{}, fmt.Errorf("axis %s needs at least 2 breakpoints, got %d: %w", name, len(points), dynamo.ErrInvalidConfig)
	}
	for i, p := range points {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return axis{}, fmt.Errorf("axis %s breakpoint %d is %g: %w", name, i, p, dynamo.ErrInvalidConfig)
		}
		if i > 0 && p <= points[i-1] {
			return axis{}, fmt.Errorf("axis %s at index %d: %w", name, i, dynamo.ErrUnsorted)
		}
	}
	return axis{name: name, points: append([]float64(nil), points...)}, nil
}

func (a axis) min() float64 { return a.points[0] }
func (a axis) max() float64 { return a.points[len(a.points)-1] }

// locate returns the bracketing indices and interpolation weight for v.
func (a axis) locate(v float64, policy Policy) (lo, hi int, alpha float64, err error) {
	if math.IsNaN(v) || v < a.min() || v > a.max() {
		if policy == Strict || math.IsNaN(v) {
			return 0, 0, 0, &DomainError{Axis: a.name, Value: v, Min: a.min(), Max: a.max()}
		}
		if v < a.min() {
			return 0, 0, 0, nil
		}
		last := len(a.points) - 1
		return last, last, 0, nil
	}

	hi = sort.SearchFloat64s(a.points, v)
	if hi == 0 {
		return 0, 0, 0, nil
	}
	lo = hi - 1
	alpha = (v - a.points[lo]) / (a.points[hi] - a.points[lo])
	return lo, hi, alpha, nil
}
