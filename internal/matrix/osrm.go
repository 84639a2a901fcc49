package matrix

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"tripnav/internal/config"
	"tripnav/internal/model"
	"tripnav/internal/ratelimit"
)

// OSRMProvider queries the public OSRM table service, the free routing
// provider tried last before the synthetic fallback.
type OSRMProvider struct {
	client  *http.Client
	limiter *ratelimit.Registry
	baseURL string
}

func NewOSRMProvider(cfg config.ProviderConfig, limiter *ratelimit.Registry, timeout time.Duration) *OSRMProvider {
	return &OSRMProvider{
		client:  &http.Client{Timeout: timeout},
		limiter: limiter,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

func (o *OSRMProvider) Name() string { return "osrm" }

type osrmTableResponse struct {
	Code      string       `json:"code"`
	Distances [][]*float64 `json:"distances"` // meters
	Durations [][]*float64 `json:"durations"` // seconds
}

func (o *OSRMProvider) FetchMatrix(ctx context.Context, points []model.NamedPoint) (map[string]model.DistanceInfo, error) {
	pts := withCoords(points)
	if len(pts) < 2 {
		return nil, errors.New("osrm: need at least two routable locations")
	}

	// OSRM takes lng,lat ordering.
	coords := make([]string, len(pts))
	for i, p := range pts {
		coords[i] = fmt.Sprintf("%f,%f", *p.Lng, *p.Lat)
	}
	u := fmt.Sprintf("%s/table/v1/driving/%s?annotations=distance,duration", o.baseURL, strings.Join(coords, ";"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	data, err := httpDo(ctx, o.client, o.limiter, o.Name(), req)
	if err != nil {
		return nil, err
	}

	var tr osrmTableResponse
	if err := json.Unmarshal(data, &tr); err != nil {
		return nil, fmt.Errorf("osrm: decode table response: %w", err)
	}
	if tr.Code != "Ok" {
		return nil, fmt.Errorf("osrm: table code %q", tr.Code)
	}
	if len(tr.Distances) != len(pts) || len(tr.Durations) != len(pts) {
		return nil, fmt.Errorf("osrm: table size mismatch: distances=%d durations=%d want %d", len(tr.Distances), len(tr.Durations), len(pts))
	}

	out := make(map[string]model.DistanceInfo, len(pts)*(len(pts)-1))
	for i := range pts {
		if len(tr.Distances[i]) != len(pts) || len(tr.Durations[i]) != len(pts) {
			return nil, fmt.Errorf("osrm: row %d size mismatch", i)
		}
		for j := range pts {
			if i == j {
				continue
			}
			dm, ds := tr.Distances[i][j], tr.Durations[i][j]
			if dm == nil || ds == nil {
				return nil, fmt.Errorf("osrm: unroutable pair %q -> %q", pts[i].Name, pts[j].Name)
			}
			out[model.MatrixKey(pts[i].Name, pts[j].Name)] = model.DistanceInfo{
				DistanceKm:      *dm / 1000.0,
				DurationMinutes: int(math.Round(*ds / 60.0)),
			}
		}
	}
	return out, nil
}
