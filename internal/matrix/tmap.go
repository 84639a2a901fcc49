package matrix

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"tripnav/internal/config"
	"tripnav/internal/model"
	"tripnav/internal/ratelimit"
)

// TmapProvider queries the SK Tmap routing API, the regional mobility
// provider tried first. Tmap has no matrix endpoint, so pairs are resolved
// with individual route calls fanned out over a bounded worker pool; each
// call is still individually gated by the rate limiter.
type TmapProvider struct {
	client      *http.Client
	limiter     *ratelimit.Registry
	baseURL     string
	apiKey      string
	concurrency int
}

func NewTmapProvider(cfg config.ProviderConfig, limiter *ratelimit.Registry, timeout time.Duration, concurrency int) *TmapProvider {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &TmapProvider{
		client:      &http.Client{Timeout: timeout},
		limiter:     limiter,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		concurrency: concurrency,
	}
}

func (t *TmapProvider) Name() string { return "tmap" }

type tmapRouteRequest struct {
	StartX string `json:"startX"`
	StartY string `json:"startY"`
	EndX   string `json:"endX"`
	EndY   string `json:"endY"`
}

type tmapRouteResponse struct {
	Features []struct {
		Properties struct {
			TotalDistance int `json:"totalDistance"` // meters
			TotalTime     int `json:"totalTime"`     // seconds
		} `json:"properties"`
	} `json:"features"`
}

func (t *TmapProvider) FetchMatrix(ctx context.Context, points []model.NamedPoint) (map[string]model.DistanceInfo, error) {
	if t.apiKey == "" {
		return nil, errors.New("tmap: api key not configured")
	}
	pts := withCoords(points)
	if len(pts) < 2 {
		return nil, errors.New("tmap: need at least two routable locations")
	}

	type pair struct{ from, to model.NamedPoint }
	pairs := make([]pair, 0, len(pts)*(len(pts)-1))
	for _, a := range pts {
		for _, b := range pts {
			if a.Name == b.Name {
				continue
			}
			pairs = append(pairs, pair{from: a, to: b})
		}
	}

	var (
		mu       sync.Mutex
		out      = make(map[string]model.DistanceInfo, len(pairs))
		firstErr error
	)
	jobs := make(chan pair)
	var wg sync.WaitGroup
	for w := 0; w < t.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				info, err := t.fetchPair(ctx, p.from, p.to)
				mu.Lock()
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
				} else {
					out[model.MatrixKey(p.from.Name, p.to.Name)] = info
				}
				mu.Unlock()
			}
		}()
	}
	for _, p := range pairs {
		select {
		case <-ctx.Done():
			// stop feeding; workers drain and exit
		case jobs <- p:
			continue
		}
		break
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if firstErr != nil {
		// One bad pair means an incomplete matrix; let the next provider try.
		return nil, fmt.Errorf("tmap matrix incomplete: %w", firstErr)
	}
	return out, nil
}

func (t *TmapProvider) fetchPair(ctx context.Context, from, to model.NamedPoint) (model.DistanceInfo, error) {
	body, err := json.Marshal(tmapRouteRequest{
		StartX: fmt.Sprintf("%f", *from.Lng),
		StartY: fmt.Sprintf("%f", *from.Lat),
		EndX:   fmt.Sprintf("%f", *to.Lng),
		EndY:   fmt.Sprintf("%f", *to.Lat),
	})
	if err != nil {
		return model.DistanceInfo{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/routes?version=1", strings.NewReader(string(body)))
	if err != nil {
		return model.DistanceInfo{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("appKey", t.apiKey)

	data, err := httpDo(ctx, t.client, t.limiter, t.Name(), req)
	if err != nil {
		return model.DistanceInfo{}, err
	}
	var rr tmapRouteResponse
	if err := json.Unmarshal(data, &rr); err != nil {
		return model.DistanceInfo{}, fmt.Errorf("tmap: decode route response: %w", err)
	}
	if len(rr.Features) == 0 {
		return model.DistanceInfo{}, errors.New("tmap: empty route response")
	}
	props := rr.Features[0].Properties
	return model.DistanceInfo{
		DistanceKm:      float64(props.TotalDistance) / 1000.0,
		DurationMinutes: int(math.Round(float64(props.TotalTime) / 60.0)),
	}, nil
}
