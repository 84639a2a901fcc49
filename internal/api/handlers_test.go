package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripnav/internal/config"
	"tripnav/internal/model"
)

func testConfig() config.Config {
	cfg := config.Default()
	// No outbound providers in tests; everything resolves synthetically.
	cfg.OSRM.BaseURL = ""
	return cfg
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(testConfig())
	require.NoError(t, err)
	return s
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	mux := http.NewServeMux()
	s.Routes(mux)
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func dayBody() model.DayRequest {
	f := func(v float64) *float64 { return &v }
	return model.DayRequest{
		Day:          1,
		StrategyName: "distance",
		Candidates: []model.Place{
			{ID: "p1", Name: "Gyeongbokgung Palace", TimeBlock: model.BlockMorningActivity, Lat: f(37.5796), Lng: f(126.9770)},
			{ID: "p2", Name: "Noodle Bar", TimeBlock: model.BlockLunch, Lat: f(37.5637), Lng: f(126.9838)},
			{ID: "p3", Name: "Hongdae", TimeBlock: model.BlockAfternoonActivity, Lat: f(37.5563), Lng: f(126.9220)},
		},
	}
}

func TestOptimizeDayEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/v1/optimize/day", dayBody())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got model.OptimizedRoute
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.NotEmpty(t, got.ID)
	assert.Len(t, got.Places, 3)
	assert.Len(t, got.Segments, 2)
	assert.Equal(t, "distance", got.StrategyName)
	assert.Positive(t, got.TotalDistance)
}

func TestOptimizeDayRejectsBadInput(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/v1/optimize/day", model.DayRequest{Day: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	mux := http.NewServeMux()
	s.Routes(mux)
	req := httptest.NewRequest(http.MethodPost, "/v1/optimize/day", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	rec = doJSON(t, s, http.MethodGet, "/v1/optimize/day", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestOptimizeDayConflictIs409(t *testing.T) {
	s := newTestServer(t)
	body := map[string]any{
		"day": 1,
		"confirmed": []map[string]any{
			{"kind": "FLIGHT", "locationName": "Gimpo International Airport",
				"startTime": "2026-05-01T09:00:00Z", "endTime": "2026-05-01T10:00:00Z"},
			{"kind": "TRAIN", "locationName": "Seoul Station",
				"startTime": "2026-05-01T10:30:00Z", "endTime": "2026-05-01T11:30:00Z"},
		},
	}
	rec := doJSON(t, s, http.MethodPost, "/v1/optimize/day", body)
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	var p Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "Schedule conflict", p.Title)
	assert.Contains(t, p.Detail, "Seoul Station")
}

func TestOptimizeTripEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/v1/optimize", model.TripRequest{
		Days: []model.DayRequest{dayBody()},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got struct {
		Days []model.DailyItinerary `json:"days"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Days, 1)
	require.NotNil(t, got.Days[0].Route)
	assert.Len(t, got.Days[0].Route.Places, 3)
}

func TestOptimizeTripRequiresDays(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/v1/optimize", model.TripRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStrategiesEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/v1/strategies", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Strategies []string `json:"strategies"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []string{"distance", "time", "balanced"}, got.Strategies)
}

func TestRecommendEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/v1/strategies/recommend", model.TripContext{
		TripDays: 2, PlaceCount: 30, TransportMode: model.ModeCar,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "distance", got["strategy"])
}

func TestHealthAndReady(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestValidateDayRequest(t *testing.T) {
	req := dayBody()
	require.NoError(t, validateDayRequest(&req))

	bad := dayBody()
	bad.Candidates[0].Name = ""
	assert.Error(t, validateDayRequest(&bad))

	partial := dayBody()
	partial.Candidates[1].Lng = nil
	assert.Error(t, validateDayRequest(&partial))
}
