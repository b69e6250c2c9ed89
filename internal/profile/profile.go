// Package profile serves the saved soil profiles of a signed-in user.
package profile

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"Vsa/internal/auth"
	"Vsa/internal/calc/station"
	"Vsa/internal/calc/vsa"
	"Vsa/internal/repo"
)

const MaxUploadSize = 10 << 20 // 10MB

type ProfileHandler struct {
	Repo       repo.Profiles
	DefaultRho float64
}

type CreateRequest struct {
	Name       string      `json:"name"`
	Layers     []vsa.Layer `json:"layers"`
	DefaultRho float64     `json:"default_rho"`
}

type createResponse struct {
	ID int64 `json:"id"`
}

type validationResponse struct {
	Errors []string `json:"errors"`
}

// ComputeRequest selects the depths of a stored profile's calculation.
// Every field is optional.
type ComputeRequest struct {
	DepthM12 float64           `json:"depth_m12"`
	DepthM3  float64           `json:"depth_m3"`
	Mode     vsa.DepthMode     `json:"m3_mode"`
	Formula  vsa.PeriodFormula `json:"m3_formula"`
	Preset   vsa.DepthPreset   `json:"depth_preset"`
}

type computeResponse struct {
	RunID  uuid.UUID  `json:"run_id"`
	Result vsa.Result `json:"result"`
}

type uploadResponse struct {
	Created []int64 `json:"created"`
}

func userID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	}
	return id, ok
}

func profileID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *ProfileHandler) rho(v float64) float64 {
	if v > 0 {
		return v
	}
	if h.DefaultRho > 0 {
		return h.DefaultRho
	}
	return vsa.DefaultRho
}

func (h *ProfileHandler) storeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, "Profile not found", http.StatusNotFound)
		return
	}
	slog.ErrorContext(r.Context(), "profile store", "path", r.URL.Path, "error", err)
	http.Error(w, "DB error", http.StatusInternalServerError)
}

func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	ps, err := h.Repo.ListProfiles(r.Context(), uid)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	vsa.WriteJSON(w, http.StatusOK, ps)
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := profileID(w, r)
	if !ok {
		return
	}
	p, err := h.Repo.GetProfile(r.Context(), uid, id)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	vsa.WriteJSON(w, http.StatusOK, p)
}

func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || len(req.Layers) == 0 {
		http.Error(w, "Name and layers required", http.StatusBadRequest)
		return
	}
	if msgs := vsa.ValidateProfile(req.Layers); len(msgs) > 0 {
		vsa.WriteJSON(w, http.StatusUnprocessableEntity, validationResponse{Errors: msgs})
		return
	}
	id, err := h.Repo.CreateProfile(r.Context(), repo.SoilProfile{
		UserID:     uid,
		Name:       req.Name,
		Layers:     req.Layers,
		DefaultRho: h.rho(req.DefaultRho),
	})
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	vsa.WriteJSON(w, http.StatusCreated, createResponse{ID: id})
}

func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := profileID(w, r)
	if !ok {
		return
	}
	if err := h.Repo.DeleteProfile(r.Context(), uid, id); err != nil {
		h.storeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Compute evaluates a stored profile and records the run. An empty body
// computes the full profile.
func (h *ProfileHandler) Compute(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := profileID(w, r)
	if !ok {
		return
	}
	var req ComputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	p, err := h.Repo.GetProfile(r.Context(), uid, id)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	res, err := vsa.Calculate(vsa.Input{
		Layers:     p.Layers,
		DefaultRho: p.DefaultRho,
		DepthM12:   req.DepthM12,
		DepthM3:    req.DepthM3,
		Mode:       req.Mode,
		Formula:    req.Formula,
		Preset:     req.Preset,
	})
	if err != nil {
		vsa.WriteError(w, r, err)
		return
	}
	run := repo.Run{ID: uuid.New(), ProfileID: p.ID, Result: res}
	if err := h.Repo.SaveRun(r.Context(), run); err != nil {
		h.storeError(w, r, err)
		return
	}
	vsa.WriteJSON(w, http.StatusOK, computeResponse{RunID: run.ID, Result: res})
}

func (h *ProfileHandler) Runs(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := profileID(w, r)
	if !ok {
		return
	}
	runs, err := h.Repo.ListRuns(r.Context(), uid, id)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	vsa.WriteJSON(w, http.StatusOK, runs)
}

// Upload saves every measurement of a station workbook as a profile.
func (h *ProfileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		http.Error(w, "File too big", http.StatusBadRequest)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Invalid file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	wb, err := station.Read(file)
	if errors.Is(err, station.ErrNoMeasurements) {
		http.Error(w, "No measurements found", http.StatusUnprocessableEntity)
		return
	}
	if err != nil {
		http.Error(w, "Invalid file", http.StatusBadRequest)
		return
	}

	created := []int64{}
	for _, m := range wb.Measurements {
		id, err := h.Repo.CreateProfile(r.Context(), repo.SoilProfile{
			UserID:     uid,
			Name:       m.Name,
			Layers:     m.Layers,
			DefaultRho: h.rho(wb.DefaultRho),
		})
		if err != nil {
			h.storeError(w, r, err)
			return
		}
		created = append(created, id)
	}
	slog.InfoContext(r.Context(), "station workbook saved", "user", uid, "profiles", len(created))
	vsa.WriteJSON(w, http.StatusCreated, uploadResponse{Created: created})
}
