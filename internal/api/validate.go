package api

import (
	"fmt"

	"tripnav/internal/model"
)

const maxPlacesPerDay = 50

func validateDayRequest(req *model.DayRequest) error {
	if req.Day < 1 {
		return fmt.Errorf("day must be >= 1, got %d", req.Day)
	}
	if len(req.Candidates) > maxPlacesPerDay {
		return fmt.Errorf("too many candidates for one day: %d (max %d)", len(req.Candidates), maxPlacesPerDay)
	}
	for i, p := range req.Candidates {
		if p.Name == "" {
			return fmt.Errorf("candidate %d has no name", i)
		}
		if (p.Lat == nil) != (p.Lng == nil) {
			return fmt.Errorf("candidate %q has partial coordinates", p.Name)
		}
	}
	for i, c := range req.Confirmed {
		if c.LocationName == "" {
			return fmt.Errorf("confirmed item %d has no location name", i)
		}
		if c.StartTime.IsZero() {
			return fmt.Errorf("confirmed item %q has no start time", c.LocationName)
		}
		if !c.EndTime.IsZero() && c.EndTime.Before(c.StartTime) {
			return fmt.Errorf("confirmed item %q ends before it starts", c.LocationName)
		}
	}
	return nil
}

func validateTripRequest(req *model.TripRequest) error {
	if len(req.Days) == 0 {
		return fmt.Errorf("at least one day is required")
	}
	for i := range req.Days {
		if err := validateDayRequest(&req.Days[i]); err != nil {
			return fmt.Errorf("days[%d]: %w", i, err)
		}
	}
	if c := req.Context; c != nil {
		if c.TripDays < 0 || c.PlaceCount < 0 {
			return fmt.Errorf("trip context counts must be non-negative")
		}
	}
	return nil
}
