package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"tripnav/internal/buildinfo"
	"tripnav/internal/model"
	"tripnav/internal/schedule"
)

// OptimizeHandler handles POST /v1/optimize: whole-trip optimization.
func (s *Server) OptimizeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req model.TripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := validateTripRequest(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid optimize request", err.Error(), r.URL.Path)
		return
	}

	days, err := s.Orchestrator.ProcessTrip(r.Context(), req)
	if err != nil && days == nil {
		writeProblem(w, http.StatusInternalServerError, "Optimization failed", err.Error(), r.URL.Path)
		return
	}
	resp := map[string]any{"days": days}
	if err != nil {
		// Partial success: some days conflicted but the rest have routes.
		var ce *schedule.ConflictError
		if errors.As(err, &ce) {
			resp["errors"] = err.Error()
		} else {
			writeProblem(w, http.StatusInternalServerError, "Optimization failed", err.Error(), r.URL.Path)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// OptimizeDayHandler handles POST /v1/optimize/day: single-day optimization.
func (s *Server) OptimizeDayHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req model.DayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := validateDayRequest(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid day request", err.Error(), r.URL.Path)
		return
	}

	rt, err := s.Orchestrator.ProcessDay(r.Context(), req)
	if err != nil {
		var ce *schedule.ConflictError
		if errors.As(err, &ce) {
			writeProblem(w, http.StatusConflict, "Schedule conflict", err.Error(), r.URL.Path)
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Optimization failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

// StrategiesHandler handles GET /v1/strategies.
func (s *Server) StrategiesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"strategies": s.Selector.Names()})
}

// RecommendHandler handles POST /v1/strategies/recommend.
func (s *Server) RecommendHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req model.TripContext
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	st := s.Selector.Recommend(req.TripDays, req.PlaceCount, req.TransportMode, req.HasChildren, req.HasElderly)
	writeJSON(w, http.StatusOK, map[string]string{"strategy": st.Name()})
}

func (s *Server) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.Cache.(pingable); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			writeProblem(w, http.StatusServiceUnavailable, "Not Ready", err.Error(), r.URL.Path)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
