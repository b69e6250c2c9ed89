package vsa

import (
	"fmt"
	"math"
)

// PeriodFormula selects the period estimator behind M3.
type PeriodFormula string

const (
	FormulaMOC      PeriodFormula = "MOC"
	FormulaRayleigh PeriodFormula = "RAYLEIGH"
	FormulaExact    PeriodFormula = "EXACT"
)

func (f PeriodFormula) Valid() bool {
	switch f {
	case FormulaMOC, FormulaRayleigh, FormulaExact:
		return true
	}
	return false
}

// Period evaluates the estimator selected by formula.
func Period(layers []Layer, defaultRho float64, formula PeriodFormula) (float64, error) {
	switch formula {
	case FormulaMOC:
		return PeriodMOC(layers, defaultRho)
	case FormulaRayleigh:
		return PeriodRayleigh(layers, defaultRho)
	case FormulaExact:
		return PeriodExact(layers, defaultRho)
	}
	return 0, fmt.Errorf("vsa: unknown period formula %q", formula)
}

// PeriodMOC is the Mexican code (MOC-2008) estimate
// T = 4*sqrt(sum(d/G) * sum(rho*d*(wt^2+wt*wb+wb^2))).
func PeriodMOC(layers []Layer, defaultRho float64) (float64, error) {
	col, err := baseUp(layers, defaultRho)
	if err != nil {
		return 0, err
	}
	parts := make([]float64, len(col))
	sumDOverG := 0.0
	for i, s := range col {
		parts[i] = s.d / s.g()
		sumDOverG += parts[i]
	}
	if !(sumDOverG > 0) {
		return 0, ErrNonPhysical
	}

	w := make([]float64, len(col)+1)
	acc := 0.0
	for i, t := range parts {
		acc += t
		w[i+1] = acc / sumDOverG
	}

	mass := 0.0
	for k, s := range col {
		wb, wt := w[k], w[k+1]
		mass += s.rho * s.d * (wt*wt + wt*wb + wb*wb)
	}
	if !(mass > 0) {
		return 0, ErrNonPhysical
	}
	return 4 * math.Sqrt(sumDOverG*mass), nil
}

// PeriodRayleigh lumps half of each layer mass on its bounding nodes and
// applies Rayleigh's quotient with a linear assumed shape.
func PeriodRayleigh(layers []Layer, defaultRho float64) (float64, error) {
	col, err := baseUp(layers, defaultRho)
	if err != nil {
		return 0, err
	}
	n := len(col)

	m := make([]float64, n)
	for i := 0; i < n-1; i++ {
		m[i] = (col[i].rho*col[i].d + col[i+1].rho*col[i+1].d) / 2
	}
	m[n-1] = col[n-1].rho * col[n-1].d / 2

	height := make([]float64, n)
	acc := 0.0
	for i, s := range col {
		acc += s.d
		height[i] = acc
	}

	den := 0.0
	for i := range m {
		den += m[i] * height[i]
	}
	if !(den > 0) {
		return 0, ErrNonPhysical
	}
	f := make([]float64, n)
	for i := range f {
		f[i] = m[i] * height[i] / den
	}

	// storey shear: forces of every node above, surface down
	q := make([]float64, n)
	cum := 0.0
	for i := n - 1; i >= 0; i-- {
		cum += f[i]
		q[i] = cum
	}

	delta := make([]float64, n)
	delta[0] = q[0] * col[0].d / col[0].g()
	for i := 1; i < n; i++ {
		delta[i] = delta[i-1] + q[i]*col[i].d/col[i].g()
	}

	num, fd := 0.0, 0.0
	for i := range delta {
		num += m[i] * delta[i] * delta[i]
		fd += f[i] * delta[i]
	}
	if !(fd > 0) {
		return 0, ErrNonPhysical
	}
	return 2 * math.Pi * math.Sqrt(num/fd), nil
}

// VsaFromPeriod converts a period to a velocity with Vsa = 4H/T.
func VsaFromPeriod(h, t float64) (float64, error) {
	if !positiveFinite(h) || !positiveFinite(t) {
		return 0, ErrNonPhysical
	}
	return 4 * h / t, nil
}

// PeriodFromVsa is the inverse of VsaFromPeriod.
func PeriodFromVsa(h, vsa float64) (float64, error) {
	if !positiveFinite(h) || !positiveFinite(vsa) {
		return 0, ErrNonPhysical
	}
	return 4 * h / vsa, nil
}

func positiveFinite(x float64) bool {
	return x > 0 && !math.IsInf(x, 1)
}

// VsaM3 converts the period of the selected formula to a velocity.
func VsaM3(layers []Layer, defaultRho float64, formula PeriodFormula) (float64, error) {
	t, err := Period(layers, defaultRho, formula)
	if err != nil {
		return 0, err
	}
	return VsaFromPeriod(ComputeH(layers), t)
}

// VsaM6 is the Rayleigh-period velocity.
func VsaM6(layers []Layer, defaultRho float64) (float64, error) {
	return VsaM3(layers, defaultRho, FormulaRayleigh)
}
