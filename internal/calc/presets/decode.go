package presets

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/goccy/go-yaml"

	"Vsa/internal/calc/deviation"
	"Vsa/internal/calc/vsa"
)

type fileLayer struct {
	D    float64  `yaml:"d"`
	Vs   float64  `yaml:"vs"`
	Rho  *float64 `yaml:"rho,omitempty"`
	Unit string   `yaml:"rho_unit,omitempty"`
}

type fileDepth struct {
	Preset string  `yaml:"preset"`
	Value  float64 `yaml:"value"`
}

type filePreset struct {
	Name              string             `yaml:"name"`
	DefaultRho        float64            `yaml:"default_rho,omitempty"`
	AutoDepth         *fileDepth         `yaml:"auto_depth,omitempty"`
	ExactTolerancePct float64            `yaml:"exact_tolerance_pct,omitempty"`
	Layers            []fileLayer        `yaml:"layers"`
	Expected          map[string]float64 `yaml:"expected,omitempty"`
}

// Decode parses a list of profiles. JSON input is accepted too.
func Decode(data []byte) ([]Preset, error) {
	var docs []filePreset
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("presets: decode: %w", err)
	}
	out := make([]Preset, 0, len(docs))
	for i, d := range docs {
		p, err := d.preset()
		if err != nil {
			return nil, fmt.Errorf("presets: entry %d: %w", i+1, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// DecodeProfile parses a single profile document.
func DecodeProfile(data []byte) (Preset, error) {
	var doc filePreset
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Preset{}, fmt.Errorf("presets: decode: %w", err)
	}
	p, err := doc.preset()
	if err != nil {
		return Preset{}, fmt.Errorf("presets: %w", err)
	}
	return p, nil
}

// EncodeProfile writes p in the file format read by DecodeProfile.
func EncodeProfile(p Preset) ([]byte, error) {
	doc := filePreset{
		Name:              p.Name,
		DefaultRho:        p.DefaultRho,
		ExactTolerancePct: p.ExactTolerancePct,
	}
	if p.AutoDepth.Preset != "" {
		doc.AutoDepth = &fileDepth{Preset: string(p.AutoDepth.Preset), Value: p.AutoDepth.Value}
	}
	for _, l := range p.Layers {
		fl := fileLayer{D: l.D.Or(0), Vs: l.Vs.Or(0), Unit: string(l.Unit)}
		if r, ok := l.Rho.Float(); ok {
			fl.Rho = &r
		}
		doc.Layers = append(doc.Layers, fl)
	}
	if len(p.Expected) > 0 {
		doc.Expected = make(map[string]float64, len(p.Expected))
		for m, v := range p.Expected {
			doc.Expected[string(m)] = v
		}
	}
	return yaml.MarshalWithOptions(doc, yaml.Indent(2))
}

func (d filePreset) preset() (Preset, error) {
	if len(d.Layers) == 0 {
		return Preset{}, errors.New("profile has no layers")
	}
	p := Preset{
		Name:              d.Name,
		DefaultRho:        d.DefaultRho,
		ExactTolerancePct: d.ExactTolerancePct,
	}
	if p.DefaultRho <= 0 {
		p.DefaultRho = vsa.DefaultRho
	}
	if d.AutoDepth != nil {
		p.AutoDepth = AutoDepth{Preset: vsa.DepthPreset(d.AutoDepth.Preset), Value: d.AutoDepth.Value}
		if _, _, err := vsa.ResolveDepth(p.AutoDepth.Preset, p.AutoDepth.Value); err != nil {
			return Preset{}, err
		}
	}

	p.Layers = make([]vsa.Layer, len(d.Layers))
	for i, fl := range d.Layers {
		l := vsa.Layer{
			ID:   strconv.Itoa(i + 1),
			D:    vsa.Num(fl.D),
			Vs:   vsa.Num(fl.Vs),
			Unit: vsa.DensityUnit(fl.Unit),
		}
		if fl.Rho != nil {
			l.Rho = vsa.Num(*fl.Rho)
		}
		p.Layers[i] = l
	}
	if msgs := vsa.ValidateProfile(p.Layers); len(msgs) > 0 {
		return Preset{}, fmt.Errorf("%s: %w", msgs[0], vsa.ErrInvalidLayer)
	}

	if len(d.Expected) > 0 {
		p.Expected = make(deviation.Expected, len(d.Expected))
		for k, v := range d.Expected {
			m := vsa.Method(k)
			if _, ok := (vsa.Result{}).Vsa(m); !ok {
				return Preset{}, fmt.Errorf("unknown method %q in expected values", k)
			}
			p.Expected[m] = v
		}
	}
	return p, nil
}
