package calibrate

import (
	"encoding/json"
	"errors"
	"net/http"

	"Vsa/internal/calc/vsa"
)

type Handler struct{}

func (h *Handler) Depth(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if vsa.Reject(w, input.Layers) {
		return
	}
	res, err := Calibrate(input)
	if errors.Is(err, ErrBadTarget) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		vsa.WriteError(w, r, err)
		return
	}
	vsa.WriteJSON(w, http.StatusOK, res)
}
