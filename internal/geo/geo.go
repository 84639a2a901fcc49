// Package geo provides pure distance and travel-time estimation used as the
// last-resort fallback when no external routing provider is reachable.
package geo

import (
	"math"

	"tripnav/internal/model"
)

// RoadFactor corrects great-circle distance toward real road distance.
const RoadFactor = 1.3

// Average speeds in km/h per transport mode.
const (
	SpeedCarKph     = 50.0
	SpeedTransitKph = 30.0
	SpeedWalkKph    = 4.0
	SpeedBicycleKph = 15.0
)

// HaversineKm returns the great-circle distance between two coordinates in
// kilometers. Degenerate (NaN) coordinates yield NaN; callers guard by
// checking HasCoords first.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371.0
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}

// RoadKm approximates road distance from a great-circle distance.
func RoadKm(haversineKm float64) float64 { return haversineKm * RoadFactor }

// SpeedKph returns the average speed for a transport mode, defaulting to car.
func SpeedKph(mode string) float64 {
	switch mode {
	case model.ModeTransit:
		return SpeedTransitKph
	case model.ModeWalk:
		return SpeedWalkKph
	case model.ModeBicycle:
		return SpeedBicycleKph
	default:
		return SpeedCarKph
	}
}

// ETAMinutes estimates travel time in whole minutes for a distance at the
// mode's average speed. Always at least 1 minute for a positive distance.
func ETAMinutes(distanceKm float64, mode string) int {
	if distanceKm <= 0 || math.IsNaN(distanceKm) {
		return 0
	}
	minutes := int(math.Round(distanceKm / SpeedKph(mode) * 60))
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
