// Package presets holds the literature soil profiles shipped with the
// calculator and reads user profile files in the same format.
package presets

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"Vsa/internal/calc/deviation"
	"Vsa/internal/calc/vsa"
)

var ErrNotFound = errors.New("presets: no such preset")

// DefaultExactTolerancePct bounds the gap between the solved and the
// published Exact velocity unless a preset sets its own.
const DefaultExactTolerancePct = 0.5

//go:embed presets.yaml
var catalogYAML []byte

type AutoDepth struct {
	Preset vsa.DepthPreset `json:"preset"`
	Value  float64         `json:"value"`
}

type Preset struct {
	Name              string             `json:"name"`
	Layers            []vsa.Layer        `json:"layers"`
	DefaultRho        float64            `json:"default_rho"`
	Expected          deviation.Expected `json:"expected,omitempty"`
	AutoDepth         AutoDepth          `json:"auto_depth"`
	ExactTolerancePct float64            `json:"exact_tolerance_pct,omitempty"`
}

// Tolerance is the accepted Exact deviation in percent.
func (p Preset) Tolerance() float64 {
	if p.ExactTolerancePct > 0 {
		return p.ExactTolerancePct
	}
	return DefaultExactTolerancePct
}

// Input is the full-profile calculation of the preset.
func (p Preset) Input() vsa.Input {
	return vsa.Input{Layers: p.Layers, DefaultRho: p.DefaultRho, Mode: vsa.ModeTotal, Formula: vsa.FormulaMOC}
}

// AutoConfigureDepth returns the depth selection the preset is usually
// evaluated with. Presets without one use Vs30.
func AutoConfigureDepth(p Preset) (vsa.DepthPreset, float64) {
	if p.AutoDepth.Preset == "" {
		return vsa.PresetVs30, 30
	}
	return p.AutoDepth.Preset, p.AutoDepth.Value
}

var catalog = sync.OnceValues(func() ([]Preset, error) {
	return Decode(catalogYAML)
})

// All returns the built-in catalog in publication order.
func All() ([]Preset, error) {
	ps, err := catalog()
	if err != nil {
		return nil, err
	}
	return slices.Clone(ps), nil
}

// Find looks a preset up by name. Case, diacritics and punctuation are
// ignored and a unique prefix is enough, so "dulkadiroglu" finds
// "Dulkadiroğlu (4621)".
func Find(name string) (Preset, error) {
	ps, err := catalog()
	if err != nil {
		return Preset{}, err
	}
	return find(ps, name)
}

func find(ps []Preset, name string) (Preset, error) {
	q := key(name)
	if q == "" {
		return Preset{}, ErrNotFound
	}
	var hits []Preset
	for _, p := range ps {
		k := key(p.Name)
		if k == q {
			return p, nil
		}
		if strings.HasPrefix(k, q) {
			hits = append(hits, p)
		}
	}
	if len(hits) == 1 {
		return hits[0], nil
	}
	if len(hits) > 1 {
		return Preset{}, fmt.Errorf("%w: %q is ambiguous", ErrNotFound, name)
	}
	return Preset{}, fmt.Errorf("%w: %q", ErrNotFound, name)
}

var dotless = strings.NewReplacer("ı", "i")

func key(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, dotless.Replace(s))
	if err != nil {
		folded = s
	}
	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
