package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"Vsa/internal/calc/presets"
	"Vsa/internal/calc/vsa"
)

type Handler struct{}

func build(w http.ResponseWriter, r *http.Request) (Report, bool) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return Report{}, false
	}
	if vsa.Reject(w, input.Layers) {
		return Report{}, false
	}
	rep, err := Build(input)
	if errors.Is(err, presets.ErrNotFound) {
		http.Error(w, "Preset not found", http.StatusNotFound)
		return Report{}, false
	}
	if err != nil {
		vsa.WriteError(w, r, err)
		return Report{}, false
	}
	return rep, true
}

func (h *Handler) JSON(w http.ResponseWriter, r *http.Request) {
	rep, ok := build(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := WriteJSON(w, rep); err != nil {
		slog.Error("write report", "error", err)
	}
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	rep, ok := build(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := WritePDF(&buf, rep); err != nil {
		slog.Error("render report", "id", rep.Metadata.ID, "error", err)
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\"report.pdf\"")
	buf.WriteTo(w)
}
