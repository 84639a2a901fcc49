package matrix

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tripnav/internal/config"
	"tripnav/internal/model"
	"tripnav/internal/ratelimit"
)

func TestOSRMParsesTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"code": "Ok",
			"distances": [[0, 4600.4], [4900.0, 0]],
			"durations": [[0, 720.0], [780.0, 0]]
		}`))
	}))
	defer srv.Close()

	reg := ratelimit.NewRegistry()
	p := NewOSRMProvider(config.ProviderConfig{BaseURL: srv.URL}, reg, 2*time.Second)
	got, err := p.FetchMatrix(context.Background(), seoulPoints()[:2])
	if err != nil {
		t.Fatalf("FetchMatrix: %v", err)
	}
	ab := got[model.MatrixKey("Gyeongbokgung Palace", "N Seoul Tower")]
	if ab.DistanceKm < 4.6 || ab.DistanceKm > 4.61 {
		t.Fatalf("meters not converted to km: %+v", ab)
	}
	if ab.DurationMinutes != 12 {
		t.Fatalf("seconds not converted to minutes: %+v", ab)
	}
}

func TestOSRMRejectsUnroutablePair(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"Ok","distances":[[0,null],[100,0]],"durations":[[0,60],[60,0]]}`))
	}))
	defer srv.Close()
	p := NewOSRMProvider(config.ProviderConfig{BaseURL: srv.URL}, ratelimit.NewRegistry(), 2*time.Second)
	if _, err := p.FetchMatrix(context.Background(), seoulPoints()[:2]); err == nil {
		t.Fatalf("null matrix cell must fail the provider, not poison the matrix")
	}
}

func TestGoogleParsesMatrix(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"rows": [
				{"elements": [{"status":"OK","distance":{"value":0},"duration":{"value":0}},
				              {"status":"OK","distance":{"value":2500},"duration":{"value":600}}]},
				{"elements": [{"status":"OK","distance":{"value":2600},"duration":{"value":660}},
				              {"status":"OK","distance":{"value":0},"duration":{"value":0}}]}
			]
		}`))
	}))
	defer srv.Close()

	p := NewGoogleProvider(config.ProviderConfig{BaseURL: srv.URL, APIKey: "test-key"}, ratelimit.NewRegistry(), 2*time.Second)
	got, err := p.FetchMatrix(context.Background(), seoulPoints()[:2])
	if err != nil {
		t.Fatalf("FetchMatrix: %v", err)
	}
	ab := got[model.MatrixKey("Gyeongbokgung Palace", "N Seoul Tower")]
	if ab.DistanceKm != 2.5 || ab.DurationMinutes != 10 {
		t.Fatalf("unit conversion wrong: %+v", ab)
	}
}

func TestGoogleMissingKeyFailsFast(t *testing.T) {
	p := NewGoogleProvider(config.ProviderConfig{BaseURL: "http://unused"}, ratelimit.NewRegistry(), time.Second)
	if _, err := p.FetchMatrix(context.Background(), seoulPoints()[:2]); err == nil {
		t.Fatalf("missing api key should fail before any request")
	}
}

func TestTmapParsesRoutes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("appKey") != "tmap-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"features":[{"properties":{"totalDistance":4600,"totalTime":720}}]}`))
	}))
	defer srv.Close()

	p := NewTmapProvider(config.ProviderConfig{BaseURL: srv.URL, APIKey: "tmap-key"}, ratelimit.NewRegistry(), 2*time.Second, 2)
	got, err := p.FetchMatrix(context.Background(), seoulPoints()[:3])
	if err != nil {
		t.Fatalf("FetchMatrix: %v", err)
	}
	if len(got) != 6 {
		t.Fatalf("expected 6 directed pairs, got %d", len(got))
	}
	for k, info := range got {
		if info.DistanceKm != 4.6 || info.DurationMinutes != 12 {
			t.Fatalf("pair %s wrong conversion: %+v", k, info)
		}
	}
}

func TestHTTPDoThrottlesOn429(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("quota exceeded"))
	}))
	defer srv.Close()

	reg := ratelimit.NewRegistry()
	reg.Register("osrm", 4, 4)
	p := NewOSRMProvider(config.ProviderConfig{BaseURL: srv.URL}, reg, 2*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if _, err := p.FetchMatrix(ctx, seoulPoints()[:2]); err == nil {
		t.Fatalf("429 should fail the provider call")
	}
	if got := reg.Rate("osrm"); got >= 4 {
		t.Fatalf("429 should have halved the bucket rate, got %f", got)
	}
}
