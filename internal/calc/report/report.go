// Package report assembles geotechnical reports from a soil profile and
// renders them as JSON or PDF.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"Vsa/internal/calc/deviation"
	"Vsa/internal/calc/presets"
	"Vsa/internal/calc/siteclass"
	"Vsa/internal/calc/vsa"
)

var now = time.Now

type Input struct {
	Project string `json:"project"`
	Author  string `json:"author"`

	// Preset fills Name, Layers, DefaultRho, Expected and the depth
	// selection when they are left empty.
	Preset      string             `json:"preset"`
	Name        string             `json:"name"`
	Layers      []vsa.Layer        `json:"layers"`
	DefaultRho  float64            `json:"default_rho"`
	DepthPreset vsa.DepthPreset    `json:"depth_preset"`
	TargetDepth float64            `json:"target_depth"`
	Formula     vsa.PeriodFormula  `json:"m3_formula"`
	Expected    deviation.Expected `json:"expected"`
	HidePeriods bool               `json:"hide_periods"`
	SiteCode    siteclass.Code     `json:"site_code"`
}

type Metadata struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Project      string    `json:"project,omitempty"`
	Author       string    `json:"author,omitempty"`
	Preset       string    `json:"preset"`
	DepthMode    string    `json:"depthMode"`
	TargetDepth  string    `json:"targetDepth"`
	UsedDepthM12 string    `json:"usedDepthM12"`
	UsedDepthM3  string    `json:"usedDepthM3"`
}

type Profile struct {
	Layers     []vsa.Layer `json:"layers"`
	DefaultRho float64     `json:"defaultRho"`
	ShowT      bool        `json:"showT"`
}

type Results struct {
	HM12    float64                `json:"H_M12"`
	HM3     float64                `json:"H_M3"`
	Vsa     map[vsa.Method]float64 `json:"vsa"`
	Periods map[vsa.Method]float64 `json:"periods,omitempty"`
}

type Report struct {
	Metadata  Metadata           `json:"metadata"`
	Input     Profile            `json:"input"`
	Results   Results            `json:"results"`
	Expected  deviation.Expected `json:"expected,omitempty"`
	Analysis  deviation.Analysis `json:"analysis"`
	SiteClass *siteclass.Result  `json:"site_class,omitempty"`

	result vsa.Result
}

func (in *Input) fromPreset() error {
	if in.Preset == "" {
		return nil
	}
	p, err := presets.Find(in.Preset)
	if err != nil {
		return err
	}
	if in.Name == "" {
		in.Name = p.Name
	}
	if len(in.Layers) == 0 {
		in.Layers = p.Layers
	}
	if in.DefaultRho <= 0 {
		in.DefaultRho = p.DefaultRho
	}
	if in.Expected == nil {
		in.Expected = p.Expected
	}
	if in.DepthPreset == "" {
		in.DepthPreset, in.TargetDepth = presets.AutoConfigureDepth(p)
	}
	return nil
}

// Build runs the calculation at the selected depth and compares it with
// the expected values. Both method groups are evaluated at the same depth.
func Build(in Input) (Report, error) {
	if err := in.fromPreset(); err != nil {
		return Report{}, err
	}
	if len(in.Layers) == 0 {
		return Report{}, fmt.Errorf("report: %w", vsa.ErrEmptyProfile)
	}
	if in.DefaultRho <= 0 {
		in.DefaultRho = vsa.DefaultRho
	}
	if in.DepthPreset == "" {
		in.DepthPreset = vsa.PresetVs30
	}
	depth, _, err := vsa.ResolveDepth(in.DepthPreset, in.TargetDepth)
	if err != nil {
		return Report{}, err
	}
	calc := vsa.Input{
		Layers:     in.Layers,
		DefaultRho: in.DefaultRho,
		DepthM3:    in.TargetDepth,
		Formula:    in.Formula,
		Preset:     in.DepthPreset,
	}
	if !math.IsInf(depth, 1) {
		calc.DepthM12 = depth
	}
	res, err := vsa.Calculate(calc)
	if err != nil {
		return Report{}, err
	}

	target := depth
	if math.IsInf(depth, 1) {
		target = vsa.ComputeH(in.Layers)
	}
	rep := Report{
		Metadata: Metadata{
			ID:           uuid.NewString(),
			Timestamp:    now().UTC(),
			Project:      in.Project,
			Author:       in.Author,
			Preset:       in.Name,
			DepthMode:    string(in.DepthPreset),
			TargetDepth:  fmt.Sprintf("%.1f m", target),
			UsedDepthM12: fmt.Sprintf("%.1f m", res.HM12),
			UsedDepthM3:  fmt.Sprintf("%.1f m", res.HUsed),
		},
		Input:    Profile{Layers: in.Layers, DefaultRho: in.DefaultRho, ShowT: !in.HidePeriods},
		Results:  Results{HM12: res.HM12, HM3: res.HUsed, Vsa: make(map[vsa.Method]float64)},
		Expected: in.Expected,
		Analysis: deviation.Analyze(res, in.Expected),
		result:   res,
	}
	if !in.HidePeriods {
		rep.Results.Periods = make(map[vsa.Method]float64)
	}
	for _, m := range vsa.Methods {
		rep.Results.Vsa[m], _ = res.Vsa(m)
		if rep.Results.Periods != nil {
			rep.Results.Periods[m], _ = res.Period(m)
		}
	}

	sc, err := siteclass.Calculate(siteclass.Input{Code: in.SiteCode, Layers: in.Layers})
	if err != nil {
		slog.Debug("site class skipped", "profile", in.Name, "error", err)
	} else {
		rep.SiteClass = &sc
	}
	return rep, nil
}

// WriteJSON writes the report indented by two spaces.
func WriteJSON(w io.Writer, rep Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
