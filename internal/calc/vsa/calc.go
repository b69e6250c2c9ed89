package vsa

import (
	"fmt"
	"math"
)

// DepthPreset is the depth selector of the calculator form.
type DepthPreset string

const (
	PresetVs30   DepthPreset = "VS30"    // 30 m target
	PresetSiteHs DepthPreset = "SITE_HS" // whole profile
	PresetCustom DepthPreset = "CUSTOM"
)

const vs30Depth = 30.0

// ResolveDepth maps a depth preset to the M3 depth and mode. Custom depths
// below 1 m are raised to 1 m and a missing custom depth means 30 m.
func ResolveDepth(p DepthPreset, custom float64) (float64, DepthMode, error) {
	switch p {
	case PresetVs30:
		return vs30Depth, ModeTarget, nil
	case PresetSiteHs:
		return math.Inf(1), ModeTotal, nil
	case PresetCustom:
		if !(custom > 0) {
			custom = vs30Depth
		}
		return math.Max(1, custom), ModeTarget, nil
	}
	return 0, "", fmt.Errorf("vsa: unknown depth preset %q", p)
}

type Input struct {
	Layers     []Layer       `json:"layers"`
	DefaultRho float64       `json:"default_rho"`
	DepthM12   float64       `json:"depth_m12"`
	DepthM3    float64       `json:"depth_m3"`
	Mode       DepthMode     `json:"m3_mode"`
	Formula    PeriodFormula `json:"m3_formula"`
	Preset     DepthPreset   `json:"depth_preset"`
}

// Calculate fills the form defaults and runs ComputeResults. A zero depth
// means the full profile. A depth preset overrides DepthM3 and Mode.
func Calculate(in Input) (Result, error) {
	if len(in.Layers) == 0 {
		return Result{}, fmt.Errorf("invalid input: %w", ErrEmptyProfile)
	}
	if in.DefaultRho <= 0 {
		in.DefaultRho = DefaultRho
	}
	if in.Formula == "" {
		in.Formula = FormulaMOC
	}
	if in.Mode == "" {
		in.Mode = ModeTotal
	}
	if in.Preset != "" {
		d, mode, err := ResolveDepth(in.Preset, in.DepthM3)
		if err != nil {
			return Result{}, err
		}
		in.DepthM3, in.Mode = d, mode
	}
	depth12 := in.DepthM12
	if depth12 <= 0 {
		depth12 = math.Inf(1)
	}
	depth3 := in.DepthM3
	if depth3 <= 0 {
		depth3 = math.Inf(1)
	}
	return ComputeResults(in.Layers, in.DefaultRho, depth12, depth3, in.Mode, in.Formula)
}
