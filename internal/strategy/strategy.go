// Package strategy implements the route-ordering cost strategies: distance
// only, congestion-aware time, and a balanced multi-criteria blend. All
// strategies operate on copies and return a new ordering; inputs are never
// mutated.
package strategy

import (
	"tripnav/internal/geo"
	"tripnav/internal/model"
)

// DefaultEdgeKm stands in for the distance between places when either side
// lacks coordinates. Missing coordinates degrade cost, never fail it.
const DefaultEdgeKm = 5.0

// Strategy is the common optimize/cost contract.
type Strategy interface {
	Name() string
	// Cost is the strategy-specific edge cost between consecutive places.
	Cost(a, b model.Place) float64
	// Optimize returns a new ordering. Zero or one place is returned as is.
	Optimize(places []model.Place) []model.Place
}

// TotalCost sums consecutive edge costs along a route.
func TotalCost(s Strategy, route []model.Place) float64 {
	total := 0.0
	for i := 0; i+1 < len(route); i++ {
		total += s.Cost(route[i], route[i+1])
	}
	return total
}

// edgeKm is the shared geometric edge estimate used by every strategy.
func edgeKm(a, b model.Place) float64 {
	if !a.HasCoords() || !b.HasCoords() {
		return DefaultEdgeKm
	}
	return geo.RoadKm(geo.HaversineKm(*a.Lat, *a.Lng, *b.Lat, *b.Lng))
}

// nearestNeighbor builds a route by repeatedly appending the cheapest
// unvisited place. Ties resolve to the earliest input position so results
// never depend on map iteration order.
func nearestNeighbor(places []model.Place, cost func(a, b model.Place) float64) []model.Place {
	if len(places) <= 1 {
		return append([]model.Place(nil), places...)
	}
	out := make([]model.Place, 0, len(places))
	used := make([]bool, len(places))
	out = append(out, places[0])
	used[0] = true
	for len(out) < len(places) {
		cur := out[len(out)-1]
		bestIdx := -1
		bestCost := 0.0
		for i, p := range places {
			if used[i] {
				continue
			}
			c := cost(cur, p)
			if bestIdx == -1 || c < bestCost {
				bestIdx = i
				bestCost = c
			}
		}
		out = append(out, places[bestIdx])
		used[bestIdx] = true
	}
	return out
}

// keepBetter returns the candidate ordering unless it costs strictly more
// than the original input order.
func keepBetter(s Strategy, original, candidate []model.Place) []model.Place {
	if TotalCost(s, candidate) > TotalCost(s, original) {
		return append([]model.Place(nil), original...)
	}
	return candidate
}
