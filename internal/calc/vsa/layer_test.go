package vsa

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ozkan() []Layer {
	return []Layer{
		NewLayer(7, 120),
		NewLayer(1.5, 150),
		NewLayer(4, 250),
		NewLayer(5, 370),
		NewLayer(18, 500),
	}
}

func threeLayers() []Layer {
	return []Layer{NewLayer(5, 180), NewLayer(10, 300), NewLayer(15, 600)}
}

// TestNormalizeRhoLegacyThreshold pins the magnitude heuristic at its edge.
func TestNormalizeRhoLegacyThreshold(t *testing.T) {
	assert.Equal(t, 49000.0, NormalizeRho(49, DensityLegacy))
	assert.Equal(t, 50.0, NormalizeRho(50, DensityLegacy))
	assert.Equal(t, 51.0, NormalizeRho(51, DensityLegacy))
	assert.InDelta(t, 1900.0, NormalizeRho(1.9, DensityLegacy), 1e-9)
	assert.Equal(t, 0.0, NormalizeRho(0, DensityLegacy))
	assert.Equal(t, -3.0, NormalizeRho(-3, DensityLegacy))
}

func TestNormalizeRhoExplicitUnits(t *testing.T) {
	assert.Equal(t, 49.0, NormalizeRho(49, DensityKgM3))
	assert.Equal(t, 51000.0, NormalizeRho(51, DensityTM3))
	assert.InDelta(t, 1800.0, NormalizeRho(1.8, DensityTM3), 1e-9)
}

func TestLayerDensity(t *testing.T) {
	l := NewLayer(1, 100)
	assert.Equal(t, 1900.0, l.Density(1900))
	assert.InDelta(t, 1900.0, l.Density(1.9), 1e-9)

	l.Rho = Num(2.1)
	assert.InDelta(t, 2100.0, l.Density(1900), 1e-9)

	l.Unit = DensityKgM3
	assert.InDelta(t, 2.1, l.Density(1900), 1e-12)
}

func TestComputeG(t *testing.T) {
	assert.Equal(t, 1900.0*200*200, ComputeG(200, 1900))
}

func TestComputeHBlankThickness(t *testing.T) {
	layers := []Layer{
		{D: Num(5), Vs: Num(100)},
		{D: Value{}, Vs: Num(100)},
		{D: Num(15), Vs: Num(100)},
	}
	assert.Equal(t, 20.0, ComputeH(layers))
	assert.Equal(t, 0.0, ComputeH(nil))
}

func TestTrimLayersToDepth(t *testing.T) {
	layers := ozkan()

	t.Run("zero depth is empty", func(t *testing.T) {
		assert.Empty(t, TrimLayersToDepth(layers, 0))
		assert.Empty(t, TrimLayersToDepth(layers, -5))
	})

	t.Run("depth beyond profile keeps every layer", func(t *testing.T) {
		got := TrimLayersToDepth(layers, 100)
		assert.Equal(t, layers, got)
		assert.Equal(t, layers, TrimLayersToDepth(layers, math.Inf(1)))
	})

	t.Run("clips the last layer", func(t *testing.T) {
		got := TrimLayersToDepth(layers, 10)
		require.Len(t, got, 3)
		d, _ := got[2].D.Float()
		assert.InDelta(t, 1.5, d, 1e-12)
		assert.InDelta(t, 10.0, ComputeH(got), 1e-12)
	})

	t.Run("exact boundary", func(t *testing.T) {
		got := TrimLayersToDepth(layers, 8.5)
		require.Len(t, got, 2)
		assert.Equal(t, layers[:2], got)
	})

	t.Run("idempotent", func(t *testing.T) {
		once := TrimLayersToDepth(layers, 30)
		assert.Equal(t, once, TrimLayersToDepth(once, 30))
	})

	t.Run("does not mutate input", func(t *testing.T) {
		before := ozkan()
		TrimLayersToDepth(layers, 3)
		assert.Equal(t, before, layers)
	})

	t.Run("blank velocity ends the walk", func(t *testing.T) {
		in := []Layer{NewLayer(5, 100), {D: Num(5)}, NewLayer(5, 300)}
		got := TrimLayersToDepth(in, 100)
		assert.Equal(t, in[:1], got)
	})

	t.Run("keeps density and id", func(t *testing.T) {
		in := []Layer{{ID: "a", D: Num(10), Vs: Num(200), Rho: Num(2.0), Unit: DensityTM3}}
		got := TrimLayersToDepth(in, 4)
		require.Len(t, got, 1)
		assert.Equal(t, "a", got[0].ID)
		assert.Equal(t, Num(2.0), got[0].Rho)
		assert.Equal(t, DensityTM3, got[0].Unit)
	})
}
