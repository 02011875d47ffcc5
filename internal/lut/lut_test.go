package lut

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/phasesim/internal/dynamo"
)

func TestNewTable1Validation(t *testing.T) {
	tests := []struct {
		name string
		xs   []float64
		ys   []float64
		want error
	}{
		{"length mismatch", []float64{0, 1}, []float64{0}, dynamo.ErrInvalidConfig},
		{"single point", []float64{0}, []float64{1}, dynamo.ErrInvalidConfig},
		{"repeated", []float64{0, 1, 1}, []float64{0, 1, 2}, dynamo.ErrUnsorted},
		{"decreasing", []float64{2, 1}, []float64{0, 1}, dynamo.ErrUnsorted},
		{"nan", []float64{0, math.NaN()}, []float64{0, 1}, dynamo.ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable1(tt.xs, tt.ys, Strict)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTable1Interpolates(t *testing.T) {
	tbl, err := NewTable1([]float64{0, 1, 3}, []float64{10, 20, 0}, Strict)
	require.NoError(t, err)

	cases := map[float64]float64{
		0:   10,
		0.5: 15,
		1:   20,
		2:   10,
		3:   0,
	}
	for x, want := range cases {
		got, err := tbl.Query(x)
		require.NoError(t, err)
		assert.InDelta(t, want, got, 1e-12, "x=%g", x)
	}
}

func TestTable1Strict(t *testing.T) {
	tbl, err := NewTable1([]float64{0, 1}, []float64{0, 1}, Strict)
	require.NoError(t, err)

	_, err = tbl.Query(1.5)
	var de *DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 1.5, de.Value)
	assert.ErrorIs(t, err, dynamo.ErrOutOfRange)

	_, err = tbl.Query(math.NaN())
	assert.ErrorIs(t, err, dynamo.ErrOutOfRange)

	assert.Panics(t, func() { tbl.At(-1) })
}

func TestTable1Clamp(t *testing.T) {
	tbl, err := NewTable1([]float64{0, 1}, []float64{5, 7}, Clamp)
	require.NoError(t, err)

	assert.Equal(t, 5.0, tbl.At(-3))
	assert.Equal(t, 7.0, tbl.At(42))
	lo, hi := tbl.Domain()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 1.0, hi)
	assert.Equal(t, "clamp", tbl.Policy().String())
}

func TestTable2Bilinear(t *testing.T) {
	// z = x + 10*y on a 3x2 grid
	xs := []float64{0, 1, 2}
	ys := []float64{0, 1}
	z := []float64{
		0, 10,
		1, 11,
		2, 12,
	}
	tbl, err := NewTable2(xs, ys, z, Strict)
	require.NoError(t, err)

	for _, p := range [][2]float64{{0, 0}, {0.5, 0.5}, {1.25, 0.75}, {2, 1}, {1.9, 0.1}} {
		got, err := tbl.Query(p[0], p[1])
		require.NoError(t, err)
		assert.InDelta(t, p[0]+10*p[1], got, 1e-12)
	}

	_, err = tbl.Query(1, 2)
	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "y", de.Axis)
}

func TestTable2Clamp(t *testing.T) {
	tbl, err := NewTable2([]float64{0, 1}, []float64{0, 1}, []float64{1, 2, 3, 4}, Clamp)
	require.NoError(t, err)
	assert.Equal(t, 4.0, tbl.At(5, 5))
	assert.Equal(t, 1.0, tbl.At(-5, -5))
	assert.Equal(t, 2.0, tbl.At(-5, 9))
}

func TestNewTable2Validation(t *testing.T) {
	_, err := NewTable2([]float64{0, 1}, []float64{0, 1}, []float64{1, 2, 3}, Strict)
	assert.ErrorIs(t, err, dynamo.ErrInvalidConfig)

	_, err = NewTable2([]float64{0, 1}, []float64{1, 0}, []float64{1, 2, 3, 4}, Strict)
	assert.ErrorIs(t, err, dynamo.ErrUnsorted)
}
