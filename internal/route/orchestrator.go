// Package route assembles per-day optimized itineraries: it merges
// confirmed events with flexible candidates, resolves pairwise distances,
// runs the selected strategy, and builds the final ordered route.
package route

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tripnav/internal/matrix"
	"tripnav/internal/metrics"
	"tripnav/internal/model"
	"tripnav/internal/schedule"
	"tripnav/internal/strategy"
)

// ProgressPublisher receives run state transitions. The API layer bridges
// it to WebSocket subscribers; a nil publisher is valid.
type ProgressPublisher interface {
	Publish(runID string, evt model.ProgressEvent)
}

// Orchestrator is the top-level optimization entry point.
type Orchestrator struct {
	Matrix   *matrix.Builder
	Selector *strategy.Selector
	Progress ProgressPublisher
}

func NewOrchestrator(b *matrix.Builder, sel *strategy.Selector, pub ProgressPublisher) *Orchestrator {
	return &Orchestrator{Matrix: b, Selector: sel, Progress: pub}
}

func (o *Orchestrator) publish(runID string, day int, state, detail string) {
	if o.Progress == nil {
		return
	}
	o.Progress.Publish(runID, model.ProgressEvent{
		RunID:  runID,
		Day:    day,
		State:  state,
		Detail: detail,
		TS:     time.Now().UTC().Format(time.RFC3339),
	})
}

// ProcessDay optimizes a single day. Provider and matrix trouble is
// absorbed by fallback; the only failure surfaced to the caller is an
// unresolvable confirmed-item conflict (or the caller's own cancellation).
func (o *Orchestrator) ProcessDay(ctx context.Context, req model.DayRequest) (model.OptimizedRoute, error) {
	runID := uuid.NewString()
	start := time.Now()
	o.publish(runID, req.Day, model.RunPending, "")

	// Merge: reserve the confirmed slots first.
	o.publish(runID, req.Day, model.RunMerging, "")
	merged, dropped, err := schedule.Merge(req.Confirmed, req.Candidates, req.Day)
	if err != nil {
		o.publish(runID, req.Day, model.RunFailed, err.Error())
		return model.OptimizedRoute{}, fmt.Errorf("day %d: %w", req.Day, err)
	}
	if len(dropped) > 0 {
		o.publish(runID, req.Day, model.RunMerging, fmt.Sprintf("%d candidate(s) dropped: no free time block", len(dropped)))
	}

	// Matrix: resolve pairwise costs for every location in the merged set.
	o.publish(runID, req.Day, model.RunMatrixBuilding, "")
	m, err := o.Matrix.Build(ctx, asPoints(merged))
	if err != nil {
		// Only cancellation reaches here; fallback absorbs everything else.
		return model.OptimizedRoute{}, fmt.Errorf("day %d: build matrix: %w", req.Day, err)
	}

	// Optimize the flexible places, then anchor confirmed items back in.
	o.publish(runID, req.Day, model.RunOptimizing, "")
	strat := o.Selector.ByName(req.StrategyName)
	flexible, confirmed := split(merged)
	ordered := schedule.Interleave(strat.Optimize(flexible), confirmed)

	if err := schedule.Validate(ordered); err != nil {
		o.publish(runID, req.Day, model.RunFailed, err.Error())
		return model.OptimizedRoute{}, fmt.Errorf("day %d: %w", req.Day, err)
	}

	route := assemble(runID, req, strat.Name(), ordered, m)
	metrics.OptimizeDuration.WithLabelValues(strat.Name()).Observe(time.Since(start).Seconds())
	o.publish(runID, req.Day, model.RunAssembled, fmt.Sprintf("%d places, %.1f km", len(route.Places), route.TotalDistance))
	return route, nil
}

// ProcessTrip optimizes each day in turn. Days fail independently: a
// conflict on day 2 does not void day 1's route. Failed days come back
// without a route and the errors are joined for the caller.
func (o *Orchestrator) ProcessTrip(ctx context.Context, req model.TripRequest) ([]model.DailyItinerary, error) {
	out := make([]model.DailyItinerary, 0, len(req.Days))
	var dayErrs []error
	for _, day := range req.Days {
		if day.StrategyName == "" {
			day.StrategyName = o.resolveTripStrategy(req)
		}
		if day.TransportMode == "" {
			day.TransportMode = req.TransportMode
		}
		r, err := o.ProcessDay(ctx, day)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			dayErrs = append(dayErrs, err)
			out = append(out, model.DailyItinerary{DayNumber: day.Day, Places: day.Candidates})
			continue
		}
		out = append(out, model.DailyItinerary{
			DayNumber: day.Day,
			Places:    day.Candidates,
			Route:     &r,
		})
	}
	return out, errors.Join(dayErrs...)
}

// resolveTripStrategy prefers an explicit name and falls back to the
// context-based recommendation.
func (o *Orchestrator) resolveTripStrategy(req model.TripRequest) string {
	if req.StrategyName != "" {
		return req.StrategyName
	}
	if c := req.Context; c != nil {
		return o.Selector.Recommend(c.TripDays, c.PlaceCount, c.TransportMode, c.HasChildren, c.HasElderly).Name()
	}
	return ""
}

// assemble computes segments from the matrix and builds the immutable
// route value. Single-place days produce a trivial route with no segments.
func assemble(runID string, req model.DayRequest, strategyName string, ordered []model.Place, m model.DistanceMatrix) model.OptimizedRoute {
	mode := req.TransportMode
	if mode == "" {
		mode = model.ModeCar
	}
	segments := []model.RouteSegment{}
	totalKm := 0.0
	totalMin := 0
	for i := 0; i+1 < len(ordered); i++ {
		from, to := ordered[i], ordered[i+1]
		info := m.Lookup(from.Name, to.Name)
		segments = append(segments, model.RouteSegment{
			From:        from.Name,
			To:          to.Name,
			DistanceKm:  info.DistanceKm,
			DurationMin: info.DurationMinutes,
			Mode:        mode,
		})
		totalKm += info.DistanceKm
		totalMin += info.DurationMinutes
	}
	return model.OptimizedRoute{
		ID:            runID,
		Day:           req.Day,
		Places:        ordered,
		Segments:      segments,
		TotalDistance: totalKm,
		TotalDuration: totalMin,
		StrategyName:  strategyName,
		MatrixSource:  m.Source,
	}
}

func asPoints(places []model.Place) []model.NamedPoint {
	out := make([]model.NamedPoint, 0, len(places))
	for _, p := range places {
		out = append(out, model.NamedPoint{Name: p.Name, Lat: p.Lat, Lng: p.Lng})
	}
	return out
}

func split(places []model.Place) (flexible, confirmed []model.Place) {
	for _, p := range places {
		if p.Confirmed {
			confirmed = append(confirmed, p)
		} else {
			flexible = append(flexible, p)
		}
	}
	return flexible, confirmed
}
