// Package vsa computes the average shear-wave velocity of a layered soil
// column with the averaging methods M1 to M7 and an exact transfer-matrix
// solution for the fundamental period.
//
// Layers are ordered from the ground surface down. Every method either
// returns a finite positive velocity or an error wrapping ErrNotComputable.
package vsa

import (
	"errors"
	"fmt"
	"math"
)

const DefaultRho = 1900.0 // kg/m3

var (
	ErrNotComputable = errors.New("vsa: computation not possible")
	ErrEmptyProfile  = fmt.Errorf("%w: empty profile", ErrNotComputable)
	ErrInvalidLayer  = fmt.Errorf("%w: invalid layer", ErrNotComputable)
	ErrNonPhysical   = fmt.Errorf("%w: non-physical intermediate", ErrNotComputable)
	ErrNoRoot        = fmt.Errorf("%w: no sign change below frequency ceiling", ErrNotComputable)
)

type DensityUnit string

const (
	// DensityLegacy guesses the unit from the magnitude: values under 50
	// are taken as t/m3.
	DensityLegacy DensityUnit = ""
	DensityKgM3   DensityUnit = "kg/m3"
	DensityTM3    DensityUnit = "t/m3"
)

const legacyTonneLimit = 50.0

// NormalizeRho converts a density to kg/m3.
func NormalizeRho(rho float64, unit DensityUnit) float64 {
	switch unit {
	case DensityTM3:
		return rho * 1000
	case DensityKgM3:
		return rho
	}
	if rho > 0 && rho < legacyTonneLimit {
		return rho * 1000
	}
	return rho
}

type Layer struct {
	ID   string      `json:"id,omitempty"`
	D    Value       `json:"d"`
	Vs   Value       `json:"vs"`
	Rho  Value       `json:"rho"`
	Unit DensityUnit `json:"rho_unit,omitempty"`
}

// NewLayer is a shorthand for a layer without its own density.
func NewLayer(d, vs float64) Layer {
	return Layer{D: Num(d), Vs: Num(vs)}
}

// Density returns the layer density in kg/m3, falling back to def.
func (l Layer) Density(def float64) float64 {
	if r, ok := l.Rho.Float(); ok {
		return NormalizeRho(r, l.Unit)
	}
	return NormalizeRho(def, DensityLegacy)
}

// ComputeG returns the shear modulus in Pa.
func ComputeG(vs, rho float64) float64 {
	return rho * vs * vs
}

// ComputeH sums the numeric thicknesses. Blank thicknesses count as zero.
func ComputeH(layers []Layer) float64 {
	h := 0.0
	for _, l := range layers {
		if d, ok := l.D.Float(); ok {
			h += d
		}
	}
	return h
}

// TrimLayersToDepth returns the surface-down prefix of layers whose
// thickness adds up to targetDepth, clipping the last layer. A layer with a
// blank thickness or velocity ends the walk.
func TrimLayersToDepth(layers []Layer, targetDepth float64) []Layer {
	out := make([]Layer, 0, len(layers))
	acc := 0.0
	for _, l := range layers {
		d, okD := l.D.Float()
		if !okD || !l.Vs.IsSet() {
			break
		}
		if acc >= targetDepth {
			break
		}
		use := math.Min(d, math.Max(0, targetDepth-acc))
		if use > 0 {
			clipped := l
			clipped.D = Num(use)
			out = append(out, clipped)
			acc += use
		}
	}
	return out
}

// soil is a validated layer with its density resolved.
type soil struct {
	d, vs, rho float64
}

func (s soil) g() float64 { return ComputeG(s.vs, s.rho) }

func positive(x float64) bool { return x > 0 && !math.IsInf(x, 1) }

// resolve validates layers surface-down and returns them in the same order.
// withRho also requires a positive density.
func resolve(layers []Layer, defaultRho float64, withRho bool) ([]soil, error) {
	if len(layers) == 0 {
		return nil, ErrEmptyProfile
	}
	out := make([]soil, len(layers))
	for i, l := range layers {
		d, okD := l.D.Float()
		vs, okV := l.Vs.Float()
		if !okD || !okV || !positive(d) || !positive(vs) {
			return nil, fmt.Errorf("layer %d: %w", i+1, ErrInvalidLayer)
		}
		s := soil{d: d, vs: vs}
		if withRho {
			s.rho = l.Density(defaultRho)
			if !positive(s.rho) {
				return nil, fmt.Errorf("layer %d density: %w", i+1, ErrInvalidLayer)
			}
		}
		out[i] = s
	}
	return out, nil
}

// baseUp returns the validated column ordered from the bedrock up.
func baseUp(layers []Layer, defaultRho float64) ([]soil, error) {
	col, err := resolve(layers, defaultRho, true)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(col)-1; i < j; i, j = i+1, j-1 {
		col[i], col[j] = col[j], col[i]
	}
	return col, nil
}

func thickness(col []soil) float64 {
	h := 0.0
	for _, s := range col {
		h += s.d
	}
	return h
}
