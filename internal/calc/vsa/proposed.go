package vsa

import "math"

const (
	m7K            = 5.515
	m7KSingleLayer = 4 * math.Sqrt2
)

// PeriodM7 is the proposed estimator T = k*sqrt(sum(S_i*d_i/G_i)) where S_i
// is the overburden mass above layer i plus half of its own mass.
// singleLayerK switches to k = 4*sqrt(2) for one-layer profiles, which
// reproduces the quarter-wavelength period 4H/vs.
func PeriodM7(layers []Layer, defaultRho float64, singleLayerK bool) (float64, error) {
	col, err := baseUp(layers, defaultRho)
	if err != nil {
		return 0, err
	}
	n := len(col)

	s := make([]float64, n)
	above := 0.0
	for i := n - 1; i >= 0; i-- {
		own := col[i].rho * col[i].d
		s[i] = above + own/2
		above += own
	}

	sum := 0.0
	for i, c := range col {
		sum += s[i] * c.d / c.g()
	}
	if !(sum > 0) {
		return 0, ErrNonPhysical
	}

	k := m7K
	if n == 1 && singleLayerK {
		k = m7KSingleLayer
	}
	return k * math.Sqrt(sum), nil
}

// VsaM7 is the velocity of the proposed estimator with the multi-layer k.
func VsaM7(layers []Layer, defaultRho float64) (float64, error) {
	t, err := PeriodM7(layers, defaultRho, false)
	if err != nil {
		return 0, err
	}
	return VsaFromPeriod(ComputeH(layers), t)
}
