// Package siteclass derives Vs30 and the seismic site class of a profile.
package siteclass

import (
	"fmt"

	"Vsa/internal/calc/vsa"
)

type Code string

const (
	CodeTBDY  Code = "TBDY2018"
	CodeEC8   Code = "EC8"
	CodeNEHRP Code = "NEHRP"
)

const vs30Depth = 30.0

type Input struct {
	Code   Code        `json:"code"`
	Layers []vsa.Layer `json:"layers"`
}

type Result struct {
	Vs30         float64 `json:"vs30"`
	Class        string  `json:"class"`
	Description  string  `json:"description"`
	Code         Code    `json:"code"`
	Extrapolated bool    `json:"extrapolated"`
}

// band is a class whose Vs30 lies above min (or at min when inclusive).
type band struct {
	min       float64
	inclusive bool
	class     string
	desc      string
}

var tables = map[Code][]band{
	CodeTBDY: {
		{1500, false, "ZA", "Sound, hard rock"},
		{760, false, "ZB", "Slightly weathered, medium-hard rock"},
		{360, false, "ZC", "Very dense sand, gravel and hard clay, or weathered rock"},
		{180, false, "ZD", "Medium dense to dense sand, gravel or very stiff clay"},
		{0, false, "ZE", "Loose sand, gravel or soft to stiff clay"},
	},
	CodeEC8: {
		{800, false, "A", "Rock or rock-like formation"},
		{360, true, "B", "Very dense sand, gravel or very stiff clay"},
		{180, true, "C", "Dense or medium-dense sand, gravel or stiff clay"},
		{0, false, "D", "Loose-to-medium cohesionless soil or soft-to-firm cohesive soil"},
	},
	CodeNEHRP: {
		{1500, false, "A", "Hard rock"},
		{760, false, "B", "Rock"},
		{360, false, "C", "Very dense soil and soft rock"},
		{180, true, "D", "Stiff soil"},
		{0, false, "E", "Soft clay soil"},
	},
}

// Vs30 is the travel-time average over the top 30 m. A shallower profile is
// extended with its deepest layer, which is reported by the second value.
func Vs30(layers []vsa.Layer) (float64, bool, error) {
	top := vsa.TrimLayersToDepth(layers, vs30Depth)
	if len(top) == 0 {
		return 0, false, vsa.ErrEmptyProfile
	}
	h := vsa.ComputeH(top)
	extended := h < vs30Depth
	if extended {
		last := top[len(top)-1]
		last.D = vsa.Num(last.D.Or(0) + vs30Depth - h)
		top[len(top)-1] = last
	}
	v, err := vsa.VsaM5(top)
	if err != nil {
		return 0, false, err
	}
	return v, extended, nil
}

// Classify returns the class of vs30 under code.
func Classify(code Code, vs30 float64) (string, string, error) {
	bands, ok := tables[code]
	if !ok {
		return "", "", fmt.Errorf("siteclass: unknown code %q", code)
	}
	if !(vs30 > 0) {
		return "", "", fmt.Errorf("siteclass: invalid vs30 %v", vs30)
	}
	for _, b := range bands {
		if vs30 > b.min || (b.inclusive && vs30 == b.min) {
			return b.class, b.desc, nil
		}
	}
	last := bands[len(bands)-1]
	return last.class, last.desc, nil
}

func Calculate(in Input) (Result, error) {
	if in.Code == "" {
		in.Code = CodeTBDY
	}
	v, extended, err := Vs30(in.Layers)
	if err != nil {
		return Result{}, err
	}
	class, desc, err := Classify(in.Code, v)
	if err != nil {
		return Result{}, err
	}
	return Result{Vs30: v, Class: class, Description: desc, Code: in.Code, Extrapolated: extended}, nil
}
