package strategy

import "tripnav/internal/model"

const distanceMaxPasses = 100

// DistanceStrategy minimizes road distance only: nearest-neighbor
// construction refined by 2-opt.
type DistanceStrategy struct{}

func NewDistance() *DistanceStrategy { return &DistanceStrategy{} }

func (s *DistanceStrategy) Name() string { return "distance" }

func (s *DistanceStrategy) Cost(a, b model.Place) float64 { return edgeKm(a, b) }

func (s *DistanceStrategy) Optimize(places []model.Place) []model.Place {
	if len(places) <= 1 {
		return append([]model.Place(nil), places...)
	}
	route := nearestNeighbor(places, s.Cost)
	route = twoOpt(route, s.Cost, distanceMaxPasses)
	return keepBetter(s, places, route)
}
