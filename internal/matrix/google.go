package matrix

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tripnav/internal/config"
	"tripnav/internal/model"
	"tripnav/internal/ratelimit"
)

// GoogleProvider queries the Google Distance Matrix API, the general maps
// provider tried second. One request covers the full origin x destination
// grid.
type GoogleProvider struct {
	client  *http.Client
	limiter *ratelimit.Registry
	baseURL string
	apiKey  string
}

func NewGoogleProvider(cfg config.ProviderConfig, limiter *ratelimit.Registry, timeout time.Duration) *GoogleProvider {
	return &GoogleProvider{
		client:  &http.Client{Timeout: timeout},
		limiter: limiter,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
	}
}

func (g *GoogleProvider) Name() string { return "google" }

type googleMatrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Value int `json:"value"` // meters
			} `json:"distance"`
			Duration struct {
				Value int `json:"value"` // seconds
			} `json:"duration"`
		} `json:"elements"`
	} `json:"rows"`
}

func (g *GoogleProvider) FetchMatrix(ctx context.Context, points []model.NamedPoint) (map[string]model.DistanceInfo, error) {
	if g.apiKey == "" {
		return nil, errors.New("google: api key not configured")
	}
	pts := withCoords(points)
	if len(pts) < 2 {
		return nil, errors.New("google: need at least two routable locations")
	}

	coords := make([]string, len(pts))
	for i, p := range pts {
		coords[i] = fmt.Sprintf("%f,%f", *p.Lat, *p.Lng)
	}
	q := url.Values{}
	q.Set("origins", strings.Join(coords, "|"))
	q.Set("destinations", strings.Join(coords, "|"))
	q.Set("mode", "driving")
	q.Set("key", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/json?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	data, err := httpDo(ctx, g.client, g.limiter, g.Name(), req)
	if err != nil {
		return nil, err
	}

	var mr googleMatrixResponse
	if err := json.Unmarshal(data, &mr); err != nil {
		return nil, fmt.Errorf("google: decode matrix response: %w", err)
	}
	if mr.Status != "OK" {
		return nil, fmt.Errorf("google: matrix status %q", mr.Status)
	}
	if len(mr.Rows) != len(pts) {
		return nil, fmt.Errorf("google: expected %d rows, got %d", len(pts), len(mr.Rows))
	}

	out := make(map[string]model.DistanceInfo, len(pts)*(len(pts)-1))
	for i, row := range mr.Rows {
		if len(row.Elements) != len(pts) {
			return nil, fmt.Errorf("google: row %d has %d elements, want %d", i, len(row.Elements), len(pts))
		}
		for j, el := range row.Elements {
			if i == j {
				continue
			}
			if el.Status != "OK" {
				return nil, fmt.Errorf("google: element %d,%d status %q", i, j, el.Status)
			}
			out[model.MatrixKey(pts[i].Name, pts[j].Name)] = model.DistanceInfo{
				DistanceKm:      float64(el.Distance.Value) / 1000.0,
				DurationMinutes: int(math.Round(float64(el.Duration.Value) / 60.0)),
			}
		}
	}
	return out, nil
}
