package batch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Vsa/internal/calc/presets"
	"Vsa/internal/calc/vsa"
)

func catalog(t *testing.T) []presets.Preset {
	t.Helper()
	ps, err := presets.All()
	require.NoError(t, err)
	return ps
}

func TestPresetsFullProfile(t *testing.T) {
	rep, err := Presets(context.Background(), catalog(t), 0)
	require.NoError(t, err)
	require.Len(t, rep.Results, 5)
	assert.Zero(t, rep.TargetDepth)

	oz := rep.Results[0]
	assert.Equal(t, "Özkan", oz.Preset)
	assert.Equal(t, "35.5m", oz.DepthUsed)
	assert.InDelta(t, 392.017, oz.Vsa[vsa.M3], 1e-3)
	assert.Equal(t, 378.0, oz.Expected[vsa.Exact])
	assert.Equal(t, "-0.1%", oz.Diff[vsa.Exact])
	assert.Equal(t, "-0.2%", oz.Diff[vsa.M1])

	assert.Equal(t, "Dulkadiroğlu (4621)", rep.Results[4].Preset)
	require.Len(t, rep.Summary, len(vsa.Methods))
	assert.Equal(t, 5, rep.Summary[0].N)
}

func TestPresetsTargetDepth(t *testing.T) {
	rep, err := Presets(context.Background(), catalog(t), 30)
	require.NoError(t, err)
	require.Len(t, rep.Results, 5)
	assert.Equal(t, 30.0, rep.TargetDepth)

	for _, r := range rep.Results {
		assert.Nil(t, r.Expected, r.Preset)
		assert.Nil(t, r.Diff, r.Preset)
	}
	// Takabatake is only 29 m deep
	assert.Equal(t, "29.0m", rep.Results[1].DepthUsed)
	assert.Equal(t, "30.0m", rep.Results[0].DepthUsed)
	assert.InDelta(t, 244.207, rep.Results[0].Vsa[vsa.M5], 1e-3)
	assert.InDelta(t, 170.732, rep.Results[2].Vsa[vsa.M5], 1e-3)
}

func TestPresetsSkipsFailures(t *testing.T) {
	ps := catalog(t)[:2]
	ps = append(ps, presets.Preset{Name: "broken", Layers: []vsa.Layer{vsa.NewLayer(5, 0)}})
	rep, err := Presets(context.Background(), ps, 0)
	require.NoError(t, err)
	require.Len(t, rep.Results, 2)
	assert.Equal(t, "Takabatake", rep.Results[1].Preset)
}

func TestPresetsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Presets(ctx, catalog(t), 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPresetsEmpty(t *testing.T) {
	_, err := Presets(context.Background(), nil, 0)
	assert.ErrorIs(t, err, ErrNoItems)
}

func TestProfilesKeepsOrder(t *testing.T) {
	inputs := []vsa.Input{
		{Layers: []vsa.Layer{vsa.NewLayer(10, 200)}},
		{Layers: []vsa.Layer{vsa.NewLayer(5, 0)}},
		{Layers: []vsa.Layer{vsa.NewLayer(5, 180), vsa.NewLayer(10, 300), vsa.NewLayer(15, 600)}},
	}
	out, err := Profiles(context.Background(), inputs)
	require.NoError(t, err)
	require.Len(t, out, 3)

	require.NotNil(t, out[0].Result)
	assert.InDelta(t, 200.0, out[0].Result.VsaM1, 1e-9)
	assert.Nil(t, out[1].Result)
	assert.NotEmpty(t, out[1].Error)
	require.NotNil(t, out[2].Result)
	assert.InDelta(t, 464.112, out[2].Result.VsaM1, 1e-3)

	_, err = Profiles(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoItems)
}

func TestSummary(t *testing.T) {
	stats := Summary([]vsa.Result{{VsaM1: 100}, {VsaM1: 300}})
	require.Len(t, stats, len(vsa.Methods))
	m1 := stats[0]
	assert.Equal(t, vsa.M1, m1.Method)
	assert.Equal(t, 200.0, m1.Mean)
	assert.Equal(t, 100.0, m1.Min)
	assert.Equal(t, 300.0, m1.Max)
	assert.InDelta(t, 141.421, m1.StdDev, 1e-3)

	assert.Nil(t, Summary(nil))
}

func TestHandlerPresets(t *testing.T) {
	h := &Handler{}
	rec := httptest.NewRecorder()
	h.Presets(rec, httptest.NewRequest(http.MethodPost, "/api/user/batch/presets", strings.NewReader(`{"names":["ozkan","antakya"]}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	var rep Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	require.Len(t, rep.Results, 2)
	assert.Equal(t, "Antakya (3126)", rep.Results[1].Preset)

	rec = httptest.NewRecorder()
	h.Presets(rec, httptest.NewRequest(http.MethodPost, "/api/user/batch/presets", strings.NewReader(`{"names":["yoshida"]}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerProfiles(t *testing.T) {
	h := &Handler{}
	body := `{"items":[{"layers":[{"d":10,"vs":200}]},{"layers":[{"d":10,"vs":300}],"depth_preset":"VS30"}]}`
	rec := httptest.NewRecorder()
	h.Profiles(rec, httptest.NewRequest(http.MethodPost, "/api/user/batch/profiles", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var res ProfilesResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Results, 2)
	assert.InDelta(t, 250.0, res.Summary[0].Mean, 1e-9)

	body = `{"items":[{"layers":[{"d":10,"vs":200}]},{"layers":[{"d":"Infinity","vs":200}],"depth_preset":"VS30"}]}`
	rec = httptest.NewRecorder()
	h.Profiles(rec, httptest.NewRequest(http.MethodPost, "/api/user/batch/profiles", strings.NewReader(body)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "item 2 layer 1: thickness must be a positive number")

	rec = httptest.NewRecorder()
	h.Profiles(rec, httptest.NewRequest(http.MethodPost, "/api/user/batch/profiles", strings.NewReader(`{"items":[]}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
