package vsa

import "math"

// VsaM1 is the thickness-weighted RMS velocity sqrt(sum(d*vs^2)/H).
func VsaM1(layers []Layer) (float64, error) {
	col, err := resolve(layers, 0, false)
	if err != nil {
		return 0, err
	}
	sum := 0.0
	for _, s := range col {
		sum += s.d * s.vs * s.vs
	}
	return math.Sqrt(sum / thickness(col)), nil
}

// VsaM2 is the thickness-weighted mean velocity.
func VsaM2(layers []Layer) (float64, error) {
	col, err := resolve(layers, 0, false)
	if err != nil {
		return 0, err
	}
	sum := 0.0
	for _, s := range col {
		sum += s.d * s.vs
	}
	return sum / thickness(col), nil
}

// VsaM4 uses the depth-moment travel time of the Japanese code:
// T = sqrt(32*sum(d_i*(H_{i-1}+H_i)/2/vs_i^2)) and Vsa = 4H/T.
func VsaM4(layers []Layer) (float64, error) {
	col, err := resolve(layers, 0, false)
	if err != nil {
		return 0, err
	}
	if len(col) == 1 {
		return col[0].vs, nil
	}
	sum, acc := 0.0, 0.0
	for _, s := range col {
		top := acc
		acc += s.d
		sum += s.d * (top + acc) / 2 / (s.vs * s.vs)
	}
	if !(sum > 0) {
		return 0, ErrNonPhysical
	}
	t := math.Sqrt(32 * sum)
	if !(t > 0) {
		return 0, ErrNonPhysical
	}
	return 4 * acc / t, nil
}

// VsaM5 is the travel-time (harmonic) average H/sum(d/vs).
func VsaM5(layers []Layer) (float64, error) {
	col, err := resolve(layers, 0, false)
	if err != nil {
		return 0, err
	}
	sum := 0.0
	for _, s := range col {
		sum += s.d / s.vs
	}
	if !(sum > 0) {
		return 0, ErrNonPhysical
	}
	return thickness(col) / sum, nil
}
