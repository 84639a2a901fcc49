// Package matrix resolves pairwise distance/duration for a set of named
// locations. It tries external routing providers in a fixed priority order
// and degrades to synthetic estimates, so building a matrix never fails
// outright.
package matrix

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"tripnav/internal/metrics"
	"tripnav/internal/model"
	"tripnav/internal/ratelimit"
)

// Provider resolves a full directed pair map for the given locations.
// Implementations own their bespoke request/response shapes and convert
// units at the boundary (meters to km, seconds to minutes). A provider may
// skip locations without coordinates; the builder fills the gaps.
type Provider interface {
	Name() string
	FetchMatrix(ctx context.Context, points []model.NamedPoint) (map[string]model.DistanceInfo, error)
}

// httpDo performs one rate-limiter-gated provider request and reports the
// outcome back to the limiter so throttled APIs slow down and recovered
// ones speed back up.
func httpDo(ctx context.Context, client *http.Client, limiter *ratelimit.Registry, apiName string, req *http.Request) ([]byte, error) {
	if err := limiter.Acquire(ctx, apiName); err != nil {
		return nil, err
	}
	start := time.Now()
	resp, err := client.Do(req)
	metrics.ProviderLatency.WithLabelValues(apiName).Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(apiName, "error").Inc()
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(apiName, "error").Inc()
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.ProviderRequests.WithLabelValues(apiName, "error").Inc()
		serr := &ratelimit.StatusError{API: apiName, Code: resp.StatusCode, Body: truncate(string(body), 200)}
		if ratelimit.IsRateLimited(serr) {
			metrics.RateLimitThrottles.WithLabelValues(apiName).Inc()
		}
		limiter.OnFailure(ctx, apiName, serr)
		return nil, serr
	}
	metrics.ProviderRequests.WithLabelValues(apiName, "ok").Inc()
	limiter.OnSuccess(apiName)
	return body, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// withCoords filters out locations that cannot be routed externally.
func withCoords(points []model.NamedPoint) []model.NamedPoint {
	out := make([]model.NamedPoint, 0, len(points))
	for _, p := range points {
		if p.Lat != nil && p.Lng != nil {
			out = append(out, p)
		}
	}
	return out
}
