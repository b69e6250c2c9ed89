// Package calibrate finds the profile depth at which the period-based
// velocity matches a target value.
package calibrate

import (
	"errors"
	"fmt"
	"math"

	"Vsa/internal/calc/vsa"
)

var ErrBadTarget = errors.New("calibrate: target velocity must be a positive number")

const (
	gridSteps = 60
	searchTol = 1e-3
	tieEps    = 1e-12
)

type Options struct {
	DefaultRho float64           `json:"default_rho"`
	Target     float64           `json:"target"`
	HMin       float64           `json:"h_min"`
	HMax       float64           `json:"h_max"`
	Tolerance  float64           `json:"tolerance"`
	MaxIter    int               `json:"max_iter"`
	Seed       float64           `json:"seed"`
	Formula    vsa.PeriodFormula `json:"formula"`
}

func (o Options) withDefaults() Options {
	if o.DefaultRho <= 0 {
		o.DefaultRho = vsa.DefaultRho
	}
	if o.HMin <= 0 {
		o.HMin = 5
	}
	if o.HMax <= 0 {
		o.HMax = 120
	}
	if o.Tolerance <= 0 {
		o.Tolerance = 0.5
	}
	if o.MaxIter <= 0 {
		o.MaxIter = 60
	}
	if o.Formula == "" {
		o.Formula = vsa.FormulaExact
	}
	return o
}

// Depth returns the depth in [HMin, HMax], clamped to the profile, where the
// M3 velocity of the trimmed profile is closest to Target. A coarse grid is
// tried first and refined with a golden-section search when no grid depth
// is within Tolerance. The depth is rounded to centimetres.
func Depth(layers []vsa.Layer, opt Options) (float64, error) {
	opt = opt.withDefaults()
	if !(opt.Target > 0) || math.IsInf(opt.Target, 0) {
		return 0, ErrBadTarget
	}
	if !opt.Formula.Valid() {
		return 0, fmt.Errorf("calibrate: unknown period formula %q", opt.Formula)
	}
	hProf := vsa.ComputeH(layers)
	if !(hProf > 0) {
		return 0, fmt.Errorf("calibrate: %w", vsa.ErrEmptyProfile)
	}

	hMax := math.Min(opt.HMax, hProf)
	hMin := math.Max(opt.HMin, 1)
	if hMin >= hMax {
		hMin = math.Max(1, math.Min(hProf, hMax*0.5))
	}

	errAt := func(h float64) float64 {
		v, err := vsa.VsaM3AtDepth(layers, opt.DefaultRho, h, opt.Formula)
		if err != nil {
			return math.Inf(1)
		}
		return math.Abs(v - opt.Target)
	}

	a, b := hMin, hMax
	if opt.Seed > hMin && opt.Seed < hMax {
		a = math.Max(hMin, opt.Seed*0.5)
		b = math.Min(hMax, opt.Seed*1.5)
	}

	bestH, bestE := hMin, errAt(hMin)
	for i := 0; i <= gridSteps; i++ {
		h := a + float64(i)*(b-a)/gridSteps
		if e := errAt(h); e < bestE || (math.Abs(e-bestE) < tieEps && h < bestH) {
			bestH, bestE = h, e
		}
	}
	if bestE <= opt.Tolerance {
		return round2(bestH), nil
	}

	span := math.Max(2, 0.2*(b-a))
	lo := math.Max(hMin, bestH-span)
	hi := math.Min(hMax, bestH+span)
	h := goldenSection(errAt, lo, hi, opt.MaxIter, searchTol)
	if e := errAt(h); e < bestE || (e == bestE && h < bestH) {
		bestH = h
	}
	return round2(bestH), nil
}

var invPhi = (math.Sqrt(5) - 1) / 2

// goldenSection minimizes f on [a, b] and returns the better end of the
// final bracket.
func goldenSection(f func(float64) float64, a, b float64, iters int, tol float64) float64 {
	x1 := b - invPhi*(b-a)
	x2 := a + invPhi*(b-a)
	f1, f2 := f(x1), f(x2)
	for i := 0; i < iters && math.Abs(b-a) > tol; i++ {
		if f1 > f2 {
			a = x1
			x1, f1 = x2, f2
			x2 = a + invPhi*(b-a)
			f2 = f(x2)
		} else {
			b = x2
			x2, f2 = x1, f1
			x1 = b - invPhi*(b-a)
			f1 = f(x1)
		}
	}
	fa, fb := f(a), f(b)
	if math.Abs(fa-fb) < tieEps {
		return math.Min(a, b)
	}
	if fa <= fb {
		return a
	}
	return b
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

type Input struct {
	Layers []vsa.Layer `json:"layers"`
	Options
}

type Result struct {
	DepthM  float64           `json:"depth_m"`
	Vsa     float64           `json:"vsa"`
	Target  float64           `json:"target"`
	Error   float64           `json:"error"`
	Formula vsa.PeriodFormula `json:"formula"`
}

// Calibrate runs Depth and reports the velocity reached at that depth.
func Calibrate(in Input) (Result, error) {
	opt := in.Options.withDefaults()
	h, err := Depth(in.Layers, opt)
	if err != nil {
		return Result{}, err
	}
	v, err := vsa.VsaM3AtDepth(in.Layers, opt.DefaultRho, h, opt.Formula)
	if err != nil {
		return Result{}, err
	}
	return Result{
		DepthM:  h,
		Vsa:     v,
		Target:  opt.Target,
		Error:   math.Abs(v - opt.Target),
		Formula: opt.Formula,
	}, nil
}
