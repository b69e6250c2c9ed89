package vsa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodExact(t *testing.T) {
	tests := []struct {
		name   string
		layers []Layer
		period float64
		vsa    float64
	}{
		{"ozkan", ozkan(), 0.376097, 377.562},
		{"three layers", threeLayers(), 0.261781, 458.398},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := PeriodExact(tt.layers, DefaultRho)
			require.NoError(t, err)
			assert.InDelta(t, tt.period, p, 1e-5)

			v, err := VsaExact(tt.layers, DefaultRho)
			require.NoError(t, err)
			assert.InDelta(t, tt.vsa, v, 0.01)
		})
	}
}

func TestPeriodExactQuarterWavelength(t *testing.T) {
	p, err := PeriodExact([]Layer{NewLayer(10, 200)}, DefaultRho)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, p, 1e-6)

	v, err := VsaExact([]Layer{NewLayer(10, 200)}, DefaultRho)
	require.NoError(t, err)
	assert.InDelta(t, 200.0, v, 1e-3)
}

func TestSolverNoRoot(t *testing.T) {
	// the fundamental frequency of the column is about 16.7 rad/s
	sv := Solver{Step: 0.01, Ceiling: 5, Tol: 1e-6}
	_, err := sv.Period(ozkan(), DefaultRho)
	assert.ErrorIs(t, err, ErrNoRoot)
	assert.ErrorIs(t, err, ErrNotComputable)
}

func TestSolverZeroValueUsesDefaults(t *testing.T) {
	a, err := Solver{}.Period(ozkan(), DefaultRho)
	require.NoError(t, err)
	b, err := PeriodExact(ozkan(), DefaultRho)
	require.NoError(t, err)
	assert.Equal(t, b, a)
}

func TestPeriodExactInvalid(t *testing.T) {
	_, err := PeriodExact(nil, DefaultRho)
	assert.ErrorIs(t, err, ErrEmptyProfile)

	_, err = PeriodExact([]Layer{NewLayer(5, 0)}, DefaultRho)
	assert.ErrorIs(t, err, ErrInvalidLayer)
}
