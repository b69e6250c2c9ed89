package vsa

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

type Handler struct{}

type validateRequest struct {
	Layers []Layer `json:"layers"`
}

type validateResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if Reject(w, input.Layers) {
		return
	}
	res, err := Calculate(input)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	msgs := ValidateProfile(req.Layers)
	WriteJSON(w, http.StatusOK, validateResponse{Valid: len(msgs) == 0, Errors: msgs})
}

// Reject answers 422 with the problems of layers and reports whether it did.
func Reject(w http.ResponseWriter, layers []Layer) bool {
	msgs := ValidateProfile(layers)
	if len(msgs) == 0 {
		return false
	}
	WriteInvalid(w, msgs)
	return true
}

func WriteInvalid(w http.ResponseWriter, msgs []string) {
	WriteJSON(w, http.StatusUnprocessableEntity, validateResponse{Errors: msgs})
}

// WriteError answers a calculation failure. Profiles the methods cannot
// evaluate are 422, anything else is a bad request.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadRequest
	if errors.Is(err, ErrNotComputable) {
		status = http.StatusUnprocessableEntity
	}
	slog.DebugContext(r.Context(), "calculation failed", "path", r.URL.Path, "error", err)
	http.Error(w, "Calculation error: "+err.Error(), status)
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
