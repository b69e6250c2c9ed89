package calibrate

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Vsa/internal/calc/vsa"
)

func ozkan() []vsa.Layer {
	return []vsa.Layer{
		vsa.NewLayer(7, 120),
		vsa.NewLayer(1.5, 150),
		vsa.NewLayer(4, 250),
		vsa.NewLayer(5, 370),
		vsa.NewLayer(18, 500),
	}
}

// Calibrating against the velocity of a known depth recovers that depth.
func TestDepthRoundTrip(t *testing.T) {
	for _, f := range []vsa.PeriodFormula{vsa.FormulaMOC, vsa.FormulaRayleigh, vsa.FormulaExact} {
		for _, want := range []float64{20, 27.3} {
			target, err := vsa.VsaM3AtDepth(ozkan(), vsa.DefaultRho, want, f)
			require.NoError(t, err)

			got, err := Depth(ozkan(), Options{Target: target, Formula: f})
			require.NoError(t, err)
			assert.InDelta(t, want, got, 0.02, "%s at %v m", f, want)
		}
	}
}

func TestDepthSeedInsideBounds(t *testing.T) {
	target, err := vsa.VsaM3AtDepth(ozkan(), vsa.DefaultRho, 20, vsa.FormulaMOC)
	require.NoError(t, err)

	got, err := Depth(ozkan(), Options{Target: target, Formula: vsa.FormulaMOC, Seed: 18})
	require.NoError(t, err)
	assert.InDelta(t, 20.0, got, 0.02)
}

// The top layer alone gives 120 m/s for any depth up to 7 m, which the
// grid hits without refinement.
func TestDepthGridHit(t *testing.T) {
	got, err := Depth(ozkan(), Options{Target: 120, Formula: vsa.FormulaMOC})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got, 5.0)
	assert.LessOrEqual(t, got, 7.0)
}

func TestDepthClampsToProfile(t *testing.T) {
	got, err := Depth(ozkan(), Options{Target: 1000, HMin: 50, Formula: vsa.FormulaMOC})
	require.NoError(t, err)
	assert.InDelta(t, 35.5, got, 0.01)
}

func TestDepthErrors(t *testing.T) {
	_, err := Depth(ozkan(), Options{})
	assert.ErrorIs(t, err, ErrBadTarget)

	_, err = Depth(nil, Options{Target: 200})
	assert.ErrorIs(t, err, vsa.ErrEmptyProfile)

	_, err = Depth(ozkan(), Options{Target: 200, Formula: "X"})
	assert.Error(t, err)
}

func TestGoldenSection(t *testing.T) {
	f := func(x float64) float64 { return (x - 3.2) * (x - 3.2) }
	assert.InDelta(t, 3.2, goldenSection(f, 0, 10, 60, 1e-6), 1e-5)

	flat := func(float64) float64 { return 1 }
	assert.Equal(t, 2.0, goldenSection(flat, 2, 4, 60, 1e-3))
}

func TestCalibrate(t *testing.T) {
	res, err := Calibrate(Input{Layers: ozkan(), Options: Options{Target: 300}})
	require.NoError(t, err)
	assert.Equal(t, vsa.FormulaExact, res.Formula)
	assert.Equal(t, 300.0, res.Target)
	assert.Less(t, res.Error, 1.0)
	assert.Greater(t, res.DepthM, 5.0)
	assert.Less(t, res.DepthM, 35.5)
}

func TestHandlerDepth(t *testing.T) {
	h := &Handler{}
	body := `{"layers":[{"d":7,"vs":120},{"d":1.5,"vs":150},{"d":4,"vs":250},{"d":5,"vs":370},{"d":18,"vs":500}],"target":120,"formula":"MOC"}`
	rec := httptest.NewRecorder()
	h.Depth(rec, httptest.NewRequest(http.MethodPost, "/api/user/calibrate", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	var res Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.InDelta(t, 120.0, res.Vsa, 1e-6)

	rec = httptest.NewRecorder()
	h.Depth(rec, httptest.NewRequest(http.MethodPost, "/api/user/calibrate", strings.NewReader(`{"layers":[{"d":10,"vs":"NaN"}],"target":120}`)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "layer 1: shear-wave velocity must be a positive number")

	rec = httptest.NewRecorder()
	h.Depth(rec, httptest.NewRequest(http.MethodPost, "/api/user/calibrate", strings.NewReader(`{"layers":[]}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
