package dynamo

import "math"

// Vector is the flattened list of degrees of freedom advanced by an
// integrator.
type Vector []float64

func (v Vector) Clone() Vector {
	c := make(Vector, len(v))
	copy(c, v)
	return c
}

func (v Vector) IsValid() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func (v Vector) Norm() float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Add returns v+other. Both vectors must have the same length.
func (v Vector) Add(other Vector) Vector {
	mustMatch(len(v), len(other))
	result := make(Vector, len(v))
	for i := range v {
		result[i] = v[i] + other[i]
	}
	return result
}

func (v Vector) Scale(factor float64) Vector {
	result := make(Vector, len(v))
	for i := range v {
		result[i] = v[i] * factor
	}
	return result
}

// Sub returns v-other. Both vectors must have the same length.
func (v Vector) Sub(other Vector) Vector {
	mustMatch(len(v), len(other))
	result := make(Vector, len(v))
	for i := range v {
		result[i] = v[i] - other[i]
	}
	return result
}

// Axpy returns v + a*x without touching either input.
func (v Vector) Axpy(a float64, x Vector) Vector {
	mustMatch(len(v), len(x))
	result := make(Vector, len(v))
	for i := range v {
		result[i] = v[i] + a*x[i]
	}
	return result
}

func mustMatch(a, b int) {
	if a != b {
		panic(&SimulationError{Op: "vector arithmetic", Wrapped: ErrDimensionMismatch})
	}
}
