package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/parcelworks/frontage-api/internal/config"
	"github.com/parcelworks/frontage-api/internal/dataset"
)

func square(minX, minY, size float64) *geom.MultiPolygon {
	mp := geom.NewMultiPolygon(geom.XY)
	poly := geom.NewPolygon(geom.XY)
	err := poly.Push(geom.NewLinearRingFlat(geom.XY, []float64{
		minX, minY,
		minX + size, minY,
		minX + size, minY + size,
		minX, minY + size,
		minX, minY,
	}))
	if err != nil {
		panic(err)
	}
	if err := mp.Push(poly); err != nil {
		panic(err)
	}
	return mp
}

func streetLine(cfcc, name, typ string, coords ...float64) dataset.Street {
	mls := geom.NewMultiLineString(geom.XY)
	if err := mls.Push(geom.NewLineStringFlat(geom.XY, coords)); err != nil {
		panic(err)
	}
	return dataset.Street{CFCC: cfcc, Name: name, Type: typ, Geometry: mls}
}

// testHandler builds a router over a two-parcel store: parcel 42 with
// Main St along its bottom edge, parcel 7 far away from any street.
func testHandler() http.Handler {
	parcels := []dataset.Parcel{
		{
			ID:          "42",
			NormID:      dataset.NormalizeParcelID("42"),
			SitusNum:    "123",
			SitusStreet: "Main St",
			SitusCity:   "Springfield",
			SitusZip:    "12345",
			Geometry:    square(0, 0, 100),
		},
		{
			ID:       "7",
			NormID:   dataset.NormalizeParcelID("7"),
			Geometry: square(10000, 10000, 100),
		},
	}
	streets := []dataset.Street{
		streetLine("A51", "Main", "St", 0, 0, 100, 0),
	}

	srv := New(dataset.New(parcels, streets), config.ServerConfig{}, config.FrontageConfig{
		DefaultToleranceFt: 1.0,
		NearbyRadiusFt:     200.0,
		NearbyLimit:        20,
	})
	return srv.Router()
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	h := testHandler()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	var body healthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 2, body.ParcelsLoaded)
	assert.Equal(t, 1, body.StreetsLoaded)
}

func TestCalculateFrontage(t *testing.T) {
	h := testHandler()

	rr := postJSON(t, h, "/calculate-frontage", map[string]any{"parcel_id": "R00042"})
	require.Equal(t, http.StatusOK, rr.Code)

	var body FrontageResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "R00042", body.ParcelID)
	assert.Equal(t, "42", body.NormalizedID)
	assert.Equal(t, "123 Main St, Springfield 12345", body.Address)
	assert.InDelta(t, 100.0, body.TotalFrontageFt, 1e-6)
	assert.Equal(t, 1, body.RoadCount)
	require.Len(t, body.Roads, 1)
	assert.Equal(t, "Main St", body.Roads[0].StreetName)
	assert.Equal(t, "Local Road", body.Roads[0].RoadType)
	assert.Equal(t, "A51", body.Roads[0].CFCC)
	assert.InDelta(t, 1.0, body.ToleranceFt, 1e-9)
	assert.False(t, body.IncludePrivate)
}

func TestCalculateFrontage_ExplicitTolerance(t *testing.T) {
	h := testHandler()

	rr := postJSON(t, h, "/calculate-frontage", map[string]any{
		"parcel_id": "42",
		"tolerance": 0,
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var body FrontageResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	// The street is coincident with the boundary, so the exact
	// intersection still carries the full edge.
	assert.InDelta(t, 100.0, body.TotalFrontageFt, 1e-6)
	assert.Zero(t, body.ToleranceFt)
}

func TestCalculateFrontage_NoFrontage(t *testing.T) {
	h := testHandler()

	rr := postJSON(t, h, "/calculate-frontage", map[string]any{"parcel_id": "7"})
	require.Equal(t, http.StatusOK, rr.Code)

	var body FrontageResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Zero(t, body.TotalFrontageFt)
	assert.Zero(t, body.RoadCount)
	assert.NotNil(t, body.Roads)
	assert.Empty(t, body.Roads)
}

func TestCalculateFrontage_MissingID(t *testing.T) {
	h := testHandler()

	for _, payload := range []map[string]any{{}, {"parcel_id": "  "}} {
		rr := postJSON(t, h, "/calculate-frontage", payload)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "parcel_id required")
	}
}

func TestCalculateFrontage_InvalidBody(t *testing.T) {
	h := testHandler()

	req := httptest.NewRequest(http.MethodPost, "/calculate-frontage", bytes.NewReader([]byte("{not json")))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid request body")
}

func TestCalculateFrontage_NegativeTolerance(t *testing.T) {
	h := testHandler()

	rr := postJSON(t, h, "/calculate-frontage", map[string]any{
		"parcel_id": "42",
		"tolerance": -1,
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "tolerance must be non-negative")
}

func TestCalculateFrontage_NotFound(t *testing.T) {
	h := testHandler()

	rr := postJSON(t, h, "/calculate-frontage", map[string]any{"parcel_id": "R00099"})
	require.Equal(t, http.StatusNotFound, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "Parcel not found", body["error"])
	assert.Equal(t, "R00099", body["parcel_id"])
	assert.Equal(t, "99", body["normalized_id"])
}

func TestAnalyzeParcel(t *testing.T) {
	h := testHandler()

	rr := postJSON(t, h, "/analyze-parcel", map[string]any{"parcel_id": "r42"})
	require.Equal(t, http.StatusOK, rr.Code)

	var body AnalyzeResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "r42", body.ParcelID)
	assert.Equal(t, "42", body.NormalizedID)
	assert.InDelta(t, 10000.0, body.ParcelAreaSqFt, 1e-6)
	assert.Equal(t, [4]float64{0, 0, 100, 100}, body.ParcelBounds)

	assert.Equal(t, "high", body.Strict.Confidence)
	assert.Equal(t, "medium", body.Moderate.Confidence)
	assert.Equal(t, "low", body.PermissivePublic.Confidence)
	assert.Equal(t, "context", body.PermissiveAll.Confidence)
	assert.InDelta(t, 100.0, body.Strict.TotalFrontageFt, 1e-6)

	require.Len(t, body.NearbyRoads, 1)
	assert.Equal(t, "Main St", body.NearbyRoads[0].StreetName)
	assert.Zero(t, body.NearbyRoads[0].DistanceFt)
	assert.True(t, body.NearbyRoads[0].Public)

	assert.True(t, body.LLMContext.HasHighConfidenceFrontage)
	assert.True(t, body.LLMContext.HasAnyFrontage)
	require.NotNil(t, body.LLMContext.NearestPublicRoadFt)
	assert.Zero(t, *body.LLMContext.NearestPublicRoadFt)
}

func TestAnalyzeParcel_EmptySelection(t *testing.T) {
	h := testHandler()

	rr := postJSON(t, h, "/analyze-parcel", map[string]any{"parcel_id": "7"})
	require.Equal(t, http.StatusOK, rr.Code)

	var body AnalyzeResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.False(t, body.LLMContext.HasAnyFrontage)
	assert.Nil(t, body.LLMContext.NearestRoadFt)
	assert.Nil(t, body.LLMContext.NearestPublicRoadFt)
	assert.Empty(t, body.NearbyRoads)
}

func TestAnalyzeParcel_Errors(t *testing.T) {
	h := testHandler()

	rr := postJSON(t, h, "/analyze-parcel", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = postJSON(t, h, "/analyze-parcel", map[string]any{"parcel_id": "nope"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSampleParcels(t *testing.T) {
	h := testHandler()

	req := httptest.NewRequest(http.MethodGet, "/sample-parcels", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var body sampleResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	// Only parcel 42 has public frontage.
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Parcels, 1)
	assert.Equal(t, "42", body.Parcels[0].ParcelID)
	assert.InDelta(t, 100.0, body.Parcels[0].TotalFrontageFt, 1e-6)
}

func TestSampleParcels_LimitValidation(t *testing.T) {
	h := testHandler()

	req := httptest.NewRequest(http.MethodGet, "/sample-parcels?limit=abc", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/sample-parcels?limit=0", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/sample-parcels?limit=1", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRateLimit(t *testing.T) {
	parcels := []dataset.Parcel{{ID: "1", NormID: "1", Geometry: square(0, 0, 10)}}
	srv := New(dataset.New(parcels, nil),
		config.ServerConfig{RateRPS: 0.001, RateBurst: 1},
		config.FrontageConfig{DefaultToleranceFt: 1},
	)
	h := srv.Router()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
}
