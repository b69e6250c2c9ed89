package deviation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Vsa/internal/calc/vsa"
)

func TestCalculate(t *testing.T) {
	assert.InDelta(t, 10.0, Calculate(110, 100), 1e-9)
	assert.InDelta(t, 10.0, Calculate(90, 100), 1e-9)
	assert.Equal(t, 0.0, Calculate(100, 100))
}

func TestIsHighBoundary(t *testing.T) {
	assert.False(t, IsHigh(105, 100))
	assert.True(t, IsHigh(105.1, 100))
	assert.True(t, IsHigh(94, 100))
}

func TestAnalyze(t *testing.T) {
	r := vsa.Result{VsaM1: 110, VsaM2: 100, VsaM3: 104, VsaM4: 80, VsaExact: 200}
	a := Analyze(r, Expected{
		vsa.M1:    100,
		vsa.M2:    100,
		vsa.M3:    100,
		vsa.M4:    100,
		vsa.M5:    100, // no computed value
		vsa.Exact: 0,
	})

	assert.Len(t, a.Deviations, 4)
	assert.InDelta(t, 4.0, a.Deviations[vsa.M3], 1e-9)
	assert.Equal(t, []string{"M1: %10.0", "M4: %20.0"}, a.HighDeviations)
	assert.True(t, a.NeedsNarrowing)
	assert.Equal(t, RecommendNarrowing, a.Recommendation)
}

func TestAnalyzeWithinTolerance(t *testing.T) {
	r := vsa.Result{VsaM1: 101, VsaM2: 99}
	a := Analyze(r, Expected{vsa.M1: 100, vsa.M2: 100})
	assert.Empty(t, a.HighDeviations)
	assert.False(t, a.NeedsNarrowing)
	assert.Equal(t, RecommendAccept, a.Recommendation)

	a = Analyze(r, nil)
	assert.Empty(t, a.Deviations)
	assert.NotNil(t, a.HighDeviations)
}

func TestSuggestNarrowedDepth(t *testing.T) {
	assert.InDelta(t, 33.0, SuggestNarrowedDepth(30, 10, Increase), 1e-9)
	assert.InDelta(t, 27.0, SuggestNarrowedDepth(30, 10, Decrease), 1e-9)
	assert.InDelta(t, 24.0, SuggestNarrowedDepth(30, 20, Decrease), 1e-9)
	assert.InDelta(t, 36.0, SuggestNarrowedDepth(30, 20, Increase), 1e-9)
}

func TestFormatDiff(t *testing.T) {
	assert.Equal(t, "+1.2%", FormatDiff(101.2, 100, true))
	assert.Equal(t, "-3.5%", FormatDiff(96.5, 100, true))
	assert.Equal(t, "0.0%", FormatDiff(100, 100, true))
	assert.Equal(t, "-", FormatDiff(100, 0, false))
}

func TestHandlerAnalyze(t *testing.T) {
	h := &Handler{}
	body := `{"layers":[{"d":5,"vs":180},{"d":10,"vs":300},{"d":15,"vs":600}],"expected":{"M1":397.4,"M2":430}}`
	rec := httptest.NewRecorder()
	h.Analyze(rec, httptest.NewRequest(http.MethodPost, "/api/user/deviation/analyze", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"needs_narrowing":true`)
	assert.Contains(t, rec.Body.String(), `M1: %16.8`)
}

func TestHandlerSuggest(t *testing.T) {
	h := &Handler{}
	rec := httptest.NewRecorder()
	h.Suggest(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"current_depth":30,"deviation":12,"direction":"decrease"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"depth":24}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.Suggest(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"current_depth":30,"direction":"sideways"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
