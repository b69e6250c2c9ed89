package batch

import (
	"encoding/json"
	"fmt"
	"net/http"

	"Vsa/internal/calc/presets"
	"Vsa/internal/calc/vsa"
)

type Handler struct{}

type PresetsInput struct {
	TargetDepth float64  `json:"target_depth"`
	Names       []string `json:"names"`
}

type ProfilesInput struct {
	Items []vsa.Input `json:"items"`
}

type ProfilesResult struct {
	Results []Outcome `json:"results"`
	Summary []Stat    `json:"summary"`
}

func (h *Handler) Presets(w http.ResponseWriter, r *http.Request) {
	var input PresetsInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	ps, err := Pick(input.Names)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rep, err := Presets(r.Context(), ps, input.TargetDepth)
	if err != nil {
		http.Error(w, "Calculation error", http.StatusBadRequest)
		return
	}
	vsa.WriteJSON(w, http.StatusOK, rep)
}

// Pick returns the named presets, or the whole catalog when names is empty.
func Pick(names []string) ([]presets.Preset, error) {
	if len(names) == 0 {
		return presets.All()
	}
	out := make([]presets.Preset, 0, len(names))
	for _, n := range names {
		p, err := presets.Find(n)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (h *Handler) Profiles(w http.ResponseWriter, r *http.Request) {
	var input ProfilesInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	var msgs []string
	for i, in := range input.Items {
		for _, m := range vsa.ValidateProfile(in.Layers) {
			msgs = append(msgs, fmt.Sprintf("item %d %s", i+1, m))
		}
	}
	if len(msgs) > 0 {
		vsa.WriteInvalid(w, msgs)
		return
	}
	out, err := Profiles(r.Context(), input.Items)
	if err != nil {
		http.Error(w, "Calculation error", http.StatusBadRequest)
		return
	}
	var ok []vsa.Result
	for _, o := range out {
		if o.Result != nil {
			ok = append(ok, *o.Result)
		}
	}
	vsa.WriteJSON(w, http.StatusOK, ProfilesResult{Results: out, Summary: Summary(ok)})
}
