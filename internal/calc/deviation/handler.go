package deviation

import (
	"encoding/json"
	"net/http"

	"Vsa/internal/calc/vsa"
)

type Handler struct{}

type analyzeRequest struct {
	vsa.Input
	Expected Expected `json:"expected"`
}

type analyzeResponse struct {
	Result   vsa.Result `json:"result"`
	Analysis Analysis   `json:"analysis"`
}

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := vsa.Calculate(req.Input)
	if err != nil {
		vsa.WriteError(w, r, err)
		return
	}
	vsa.WriteJSON(w, http.StatusOK, analyzeResponse{Result: res, Analysis: Analyze(res, req.Expected)})
}

type suggestRequest struct {
	CurrentDepth float64   `json:"current_depth"`
	Deviation    float64   `json:"deviation"`
	Direction    Direction `json:"direction"`
}

type suggestResponse struct {
	Depth float64 `json:"depth"`
}

func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.CurrentDepth <= 0 || (req.Direction != Increase && req.Direction != Decrease) {
		http.Error(w, "Calculation error", http.StatusBadRequest)
		return
	}
	vsa.WriteJSON(w, http.StatusOK, suggestResponse{Depth: SuggestNarrowedDepth(req.CurrentDepth, req.Deviation, req.Direction)})
}
