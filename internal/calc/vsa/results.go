package vsa

import (
	"fmt"
	"math"
)

// DepthMode picks the depth basis of the period group (M3, M6, M7, Exact).
type DepthMode string

const (
	ModeTotal  DepthMode = "TOTAL"
	ModeTarget DepthMode = "TARGET"
)

// Method names one velocity estimate of a Result.
type Method string

const (
	M1    Method = "M1"
	M2    Method = "M2"
	M3    Method = "M3"
	M4    Method = "M4"
	M5    Method = "M5"
	M6    Method = "M6"
	M7    Method = "M7"
	Exact Method = "Exact"
)

// Methods lists every method in report order.
var Methods = []Method{M1, M2, M3, M4, M5, M6, M7, Exact}

// Result is one complete comparison across methods. Periods of the
// geometric methods are the equivalent 4H/Vsa values.
type Result struct {
	HUsed float64 `json:"H_used"`
	HM12  float64 `json:"H_M12"`

	VsaM1    float64 `json:"Vsa_M1"`
	VsaM2    float64 `json:"Vsa_M2"`
	VsaM3    float64 `json:"Vsa_M3"`
	VsaM4    float64 `json:"Vsa_M4"`
	VsaM5    float64 `json:"Vsa_M5"`
	VsaM6    float64 `json:"Vsa_M6"`
	VsaM7    float64 `json:"Vsa_M7"`
	VsaExact float64 `json:"Vsa_Exact"`

	TM1    float64 `json:"T_M1"`
	TM2    float64 `json:"T_M2"`
	TM3    float64 `json:"T_M3"`
	TM4    float64 `json:"T_M4"`
	TM5    float64 `json:"T_M5"`
	TM6    float64 `json:"T_M6"`
	TM7    float64 `json:"T_M7"`
	TExact float64 `json:"T_Exact"`

	Formula PeriodFormula `json:"m3_formula"`
	Mode    DepthMode     `json:"m3_mode"`
}

// Vsa returns the velocity of method m.
func (r Result) Vsa(m Method) (float64, bool) {
	switch m {
	case M1:
		return r.VsaM1, true
	case M2:
		return r.VsaM2, true
	case M3:
		return r.VsaM3, true
	case M4:
		return r.VsaM4, true
	case M5:
		return r.VsaM5, true
	case M6:
		return r.VsaM6, true
	case M7:
		return r.VsaM7, true
	case Exact:
		return r.VsaExact, true
	}
	return 0, false
}

// Period returns the period of method m in seconds.
func (r Result) Period(m Method) (float64, bool) {
	switch m {
	case M1:
		return r.TM1, true
	case M2:
		return r.TM2, true
	case M3:
		return r.TM3, true
	case M4:
		return r.TM4, true
	case M5:
		return r.TM5, true
	case M6:
		return r.TM6, true
	case M7:
		return r.TM7, true
	case Exact:
		return r.TExact, true
	}
	return 0, false
}

// collector keeps the first failure of a chain of method evaluations.
type collector struct {
	err error
}

func (c *collector) keep(method Method) func(float64, error) float64 {
	return func(v float64, err error) float64 {
		if c.err == nil && err != nil {
			c.err = fmt.Errorf("%s: %w", method, err)
		}
		return v
	}
}

// ComputeResults evaluates every method. The geometric methods (M1, M2, M4,
// M5) use the profile trimmed to depthM12 when it is finite. The period
// methods use the full profile in ModeTotal and the profile trimmed to
// depthM3 in ModeTarget. The Exact column is always solved, whatever the
// M3 formula. Any failing method fails the whole result.
func ComputeResults(layers []Layer, defaultRho, depthM12, depthM3 float64, mode DepthMode, formula PeriodFormula) (Result, error) {
	if !formula.Valid() {
		return Result{}, fmt.Errorf("vsa: unknown period formula %q", formula)
	}

	ls12 := layers
	if !math.IsInf(depthM12, 0) && !math.IsNaN(depthM12) {
		ls12 = TrimLayersToDepth(layers, depthM12)
	}
	if len(ls12) == 0 {
		return Result{}, ErrEmptyProfile
	}

	var ls3 []Layer
	switch mode {
	case ModeTotal:
		ls3 = layers
	case ModeTarget:
		ls3 = TrimLayersToDepth(layers, depthM3)
	default:
		return Result{}, fmt.Errorf("vsa: unknown depth mode %q", mode)
	}
	h3 := ComputeH(ls3)
	if len(ls3) == 0 || !(h3 > 0) {
		return Result{}, ErrEmptyProfile
	}
	h12 := ComputeH(ls12)

	var c collector
	r := Result{HUsed: h3, HM12: h12, Formula: formula, Mode: mode}

	r.VsaM1 = c.keep(M1)(VsaM1(ls12))
	r.VsaM2 = c.keep(M2)(VsaM2(ls12))
	r.VsaM4 = c.keep(M4)(VsaM4(ls12))
	r.VsaM5 = c.keep(M5)(VsaM5(ls12))

	r.TM6 = c.keep(M6)(PeriodRayleigh(ls3, defaultRho))
	r.TM7 = c.keep(M7)(PeriodM7(ls3, defaultRho, false))
	r.TM3 = c.keep(M3)(Period(ls3, defaultRho, formula))
	if formula == FormulaExact && c.err == nil {
		r.TExact = r.TM3
	} else {
		r.TExact = c.keep(Exact)(PeriodExact(ls3, defaultRho))
	}
	if c.err != nil {
		return Result{}, c.err
	}

	r.VsaM6 = c.keep(M6)(VsaFromPeriod(h3, r.TM6))
	r.VsaM7 = c.keep(M7)(VsaFromPeriod(h3, r.TM7))
	r.VsaM3 = c.keep(M3)(VsaFromPeriod(h3, r.TM3))
	r.VsaExact = c.keep(Exact)(VsaFromPeriod(h3, r.TExact))

	r.TM1 = c.keep(M1)(PeriodFromVsa(h12, r.VsaM1))
	r.TM2 = c.keep(M2)(PeriodFromVsa(h12, r.VsaM2))
	r.TM4 = c.keep(M4)(PeriodFromVsa(h12, r.VsaM4))
	r.TM5 = c.keep(M5)(PeriodFromVsa(h12, r.VsaM5))
	if c.err != nil {
		return Result{}, c.err
	}
	return r, nil
}

// VsaM3AtDepth trims the profile to h and evaluates the selected formula.
func VsaM3AtDepth(layers []Layer, defaultRho, h float64, formula PeriodFormula) (float64, error) {
	ls := TrimLayersToDepth(layers, h)
	used := ComputeH(ls)
	if !(used > 0) {
		return 0, ErrEmptyProfile
	}
	t, err := Period(ls, defaultRho, formula)
	if err != nil {
		return 0, err
	}
	return VsaFromPeriod(used, t)
}
