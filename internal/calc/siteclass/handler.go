package siteclass

import (
	"encoding/json"
	"net/http"

	"Vsa/internal/calc/vsa"
)

type Handler struct{}

func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if vsa.Reject(w, input.Layers) {
		return
	}
	res, err := Calculate(input)
	if err != nil {
		vsa.WriteError(w, r, err)
		return
	}
	vsa.WriteJSON(w, http.StatusOK, res)
}
