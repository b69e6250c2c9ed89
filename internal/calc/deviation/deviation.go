// Package deviation compares computed velocities with published values.
package deviation

import (
	"fmt"
	"math"

	"Vsa/internal/calc/vsa"
)

// HighThreshold is the deviation in percent above which a method is
// flagged. A deviation of exactly 5% is acceptable.
const HighThreshold = 5.0

const (
	RecommendNarrowing = "Would you like to narrow the depth range?"
	RecommendAccept    = "Deviations are within the acceptable level (below 5%)"
)

// Expected holds published velocities per method. Missing or non-positive
// entries are not compared.
type Expected map[vsa.Method]float64

// Calculate returns |(calc-expected)/expected| in percent.
func Calculate(calc, expected float64) float64 {
	return math.Abs((calc-expected)/expected) * 100
}

func IsHigh(calc, expected float64) bool {
	return Calculate(calc, expected) > HighThreshold
}

type Analysis struct {
	Deviations     map[vsa.Method]float64 `json:"deviations"`
	HighDeviations []string               `json:"high_deviations"`
	NeedsNarrowing bool                   `json:"needs_narrowing"`
	Recommendation string                 `json:"recommendation"`
}

// Analyze compares every method of r that has an expected value. High
// deviations are listed in method order as "M1: %7.3".
func Analyze(r vsa.Result, expected Expected) Analysis {
	a := Analysis{
		Deviations:     make(map[vsa.Method]float64),
		HighDeviations: []string{},
	}
	for _, m := range vsa.Methods {
		exp, ok := expected[m]
		if !ok || !(exp > 0) {
			continue
		}
		calc, _ := r.Vsa(m)
		if !(calc > 0) {
			continue
		}
		dev := Calculate(calc, exp)
		a.Deviations[m] = dev
		if dev > HighThreshold {
			a.HighDeviations = append(a.HighDeviations, fmt.Sprintf("%s: %%%.1f", m, dev))
		}
	}
	a.NeedsNarrowing = len(a.HighDeviations) > 0
	a.Recommendation = RecommendAccept
	if a.NeedsNarrowing {
		a.Recommendation = RecommendNarrowing
	}
	return a
}

type Direction string

const (
	Increase Direction = "increase"
	Decrease Direction = "decrease"
)

// SuggestNarrowedDepth moves the depth by 10%, or by 20% when the
// deviation is above 10%.
func SuggestNarrowedDepth(current, deviation float64, dir Direction) float64 {
	factor := 0.9
	if deviation > 10 {
		factor = 0.8
	}
	if dir == Increase {
		return current * (2 - factor)
	}
	return current * factor
}

// FormatDiff renders the signed deviation as "+1.2%", or "-" when there is
// nothing to compare against.
func FormatDiff(calc float64, expected float64, ok bool) string {
	if !ok || expected == 0 {
		return "-"
	}
	d := (calc - expected) / expected * 100
	sign := ""
	if d > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.1f%%", sign, d)
}
