package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Vsa/internal/auth"
	"Vsa/internal/calc/station"
	"Vsa/internal/calc/vsa"
	"Vsa/internal/repo"
)

type memStore struct {
	mu       sync.Mutex
	next     int64
	profiles map[int64]repo.SoilProfile
	runs     []repo.Run
	fail     error
}

func newMemStore() *memStore {
	return &memStore{profiles: map[int64]repo.SoilProfile{}}
}

func (m *memStore) ListProfiles(_ context.Context, userID int) ([]repo.SoilProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	out := []repo.SoilProfile{}
	for id := int64(1); id <= m.next; id++ {
		if p, ok := m.profiles[id]; ok && p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) GetProfile(_ context.Context, userID int, id int64) (repo.SoilProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok || p.UserID != userID {
		return repo.SoilProfile{}, repo.ErrNotFound
	}
	return p, nil
}

func (m *memStore) CreateProfile(_ context.Context, p repo.SoilProfile) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	p.ID = m.next
	m.profiles[p.ID] = p
	return p.ID, nil
}

func (m *memStore) DeleteProfile(_ context.Context, userID int, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok || p.UserID != userID {
		return repo.ErrNotFound
	}
	delete(m.profiles, id)
	return nil
}

func (m *memStore) SaveRun(_ context.Context, run repo.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return nil
}

func (m *memStore) ListRuns(_ context.Context, userID int, profileID int64) ([]repo.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []repo.Run{}
	for _, r := range m.runs {
		if r.ProfileID == profileID && m.profiles[profileID].UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func router(h *ProfileHandler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/profiles", h.List).Methods("GET")
	r.HandleFunc("/profiles", h.Create).Methods("POST")
	r.HandleFunc("/profiles/upload", h.Upload).Methods("POST")
	r.HandleFunc("/profiles/{id:[0-9]+}", h.Get).Methods("GET")
	r.HandleFunc("/profiles/{id:[0-9]+}", h.Delete).Methods("DELETE")
	r.HandleFunc("/profiles/{id:[0-9]+}/compute", h.Compute).Methods("POST")
	r.HandleFunc("/profiles/{id:[0-9]+}/runs", h.Runs).Methods("GET")
	return r
}

func do(t *testing.T, h http.Handler, user int, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if user != 0 {
		req = req.WithContext(auth.WithUser(req.Context(), user, "tester"))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestProfileLifecycle(t *testing.T) {
	store := newMemStore()
	h := router(&ProfileHandler{Repo: store})

	rec := do(t, h, 1, "POST", "/profiles", `{"name":" T3 ","layers":[{"d":5,"vs":180},{"d":10,"vs":300},{"d":15,"vs":600}]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct{ ID int64 }
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "T3", store.profiles[1].Name)
	assert.Equal(t, vsa.DefaultRho, store.profiles[1].DefaultRho)

	rec = do(t, h, 1, "GET", "/profiles", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []repo.SoilProfile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Len(t, list[0].Layers, 3)

	rec = do(t, h, 1, "POST", "/profiles/1/compute", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var out computeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.InDelta(t, 430.0, out.Result.VsaM2, 1e-9)
	assert.InDelta(t, 458.398, out.Result.VsaExact, 1e-2)
	require.Len(t, store.runs, 1)
	assert.Equal(t, out.RunID, store.runs[0].ID)

	rec = do(t, h, 1, "POST", "/profiles/1/compute", `{"depth_m12":10,"depth_preset":"CUSTOM","depth_m3":10}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.InDelta(t, 10.0, out.Result.HM12, 1e-9)
	assert.InDelta(t, 10.0, out.Result.HUsed, 1e-9)

	rec = do(t, h, 1, "GET", "/profiles/1/runs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var runs []repo.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	assert.Len(t, runs, 2)

	assert.Equal(t, http.StatusNotFound, do(t, h, 2, "GET", "/profiles/1", "").Code)
	assert.Equal(t, http.StatusOK, do(t, h, 1, "GET", "/profiles/1", "").Code)
	assert.Equal(t, http.StatusNoContent, do(t, h, 1, "DELETE", "/profiles/1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, 1, "DELETE", "/profiles/1", "").Code)
}

func TestCreateRejects(t *testing.T) {
	h := router(&ProfileHandler{Repo: newMemStore()})

	assert.Equal(t, http.StatusUnauthorized, do(t, h, 0, "POST", "/profiles", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, 1, "POST", "/profiles", `{`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, 1, "POST", "/profiles", `{"name":"x"}`).Code)

	rec := do(t, h, 1, "POST", "/profiles", `{"name":"x","layers":[{"d":-1,"vs":200}]}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "layer 1: thickness must be a positive number")
}

func TestComputeNotComputable(t *testing.T) {
	store := newMemStore()
	store.profiles[1] = repo.SoilProfile{ID: 1, UserID: 1, Name: "blank", Layers: []vsa.Layer{{D: vsa.Num(5)}}, DefaultRho: 1900}
	store.next = 1
	h := router(&ProfileHandler{Repo: store})

	rec := do(t, h, 1, "POST", "/profiles/1/compute", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, store.runs)
}

func TestListStoreFailure(t *testing.T) {
	store := newMemStore()
	store.fail = errors.New("connection reset")
	h := router(&ProfileHandler{Repo: store})
	assert.Equal(t, http.StatusInternalServerError, do(t, h, 1, "GET", "/profiles", "").Code)
}

func TestUploadWorkbook(t *testing.T) {
	var sample bytes.Buffer
	require.NoError(t, station.WriteSample(&sample))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "stations.xlsx")
	require.NoError(t, err)
	_, err = fw.Write(sample.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	store := newMemStore()
	h := router(&ProfileHandler{Repo: store, DefaultRho: 1800})
	req := httptest.NewRequest("POST", "/profiles/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = req.WithContext(auth.WithUser(req.Context(), 3, "tester"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out uploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, []int64{1, 2}, out.Created)
	assert.Equal(t, "ÖRNEKİL - MERKEZ - 0101 (MASW)", store.profiles[1].Name)
	assert.Equal(t, 3, store.profiles[2].UserID)
	assert.Equal(t, vsa.DefaultRho, store.profiles[2].DefaultRho)
}
