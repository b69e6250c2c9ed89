package presets

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"Vsa/internal/calc/deviation"
	"Vsa/internal/calc/vsa"
)

type Handler struct{}

type summary struct {
	Name      string    `json:"name"`
	Layers    int       `json:"layers"`
	DepthM    float64   `json:"depth_m"`
	AutoDepth AutoDepth `json:"auto_depth"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ps, err := All()
	if err != nil {
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	out := make([]summary, 0, len(ps))
	for _, p := range ps {
		out = append(out, summary{Name: p.Name, Layers: len(p.Layers), DepthM: vsa.ComputeH(p.Layers), AutoDepth: p.AutoDepth})
	}
	vsa.WriteJSON(w, http.StatusOK, out)
}

type detail struct {
	Preset   Preset             `json:"preset"`
	Result   vsa.Result         `json:"result"`
	Analysis deviation.Analysis `json:"analysis"`
}

// Get returns the preset with its full-profile result compared against the
// published values. ?depth=auto evaluates the period group at the preset's
// usual depth instead.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := Find(mux.Vars(r)["name"])
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "Preset not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	in := p.Input()
	if r.URL.Query().Get("depth") == "auto" {
		in.Preset, in.DepthM3 = AutoConfigureDepth(p)
	}
	res, err := vsa.Calculate(in)
	if err != nil {
		vsa.WriteError(w, r, err)
		return
	}
	vsa.WriteJSON(w, http.StatusOK, detail{Preset: p, Result: res, Analysis: deviation.Analyze(res, p.Expected)})
}
