package strategy

import (
	"tripnav/internal/config"
	"tripnav/internal/geo"
	"tripnav/internal/model"
)

const (
	// congestedThreshold marks blocks where clustering kicks in.
	congestedThreshold = 1.3
	// clusterRadiusKm groups nearby places inside congested blocks to avoid
	// back-and-forth travel at the worst times of day.
	clusterRadiusKm = 2.0
)

// TimeStrategy minimizes estimated travel minutes weighted by per-block
// congestion. Places are visited in temporal block order; within congested
// blocks proximity clusters are ordered before individual places.
type TimeStrategy struct {
	cfg config.Config
}

func NewTime(cfg config.Config) *TimeStrategy { return &TimeStrategy{cfg: cfg} }

func (s *TimeStrategy) Name() string { return "time" }

// Cost is estimated minutes at car reference speed scaled by the congestion
// of the destination's block.
func (s *TimeStrategy) Cost(a, b model.Place) float64 {
	minutes := float64(geo.ETAMinutes(edgeKm(a, b), model.ModeCar))
	return minutes * s.cfg.CongestionFactor(b.TimeBlock)
}

func (s *TimeStrategy) Optimize(places []model.Place) []model.Place {
	if len(places) <= 1 {
		return append([]model.Place(nil), places...)
	}

	groups := groupByBlock(places)
	out := make([]model.Place, 0, len(places))
	var cur *model.Place

	for _, block := range append(append([]string(nil), model.BlockOrder...), model.BlockFreeTime) {
		group := groups[block]
		if len(group) == 0 {
			continue
		}
		var ordered []model.Place
		if s.cfg.CongestionFactor(block) > congestedThreshold {
			ordered = s.orderCongested(cur, group)
		} else {
			ordered = s.orderCalm(cur, group)
		}
		out = append(out, ordered...)
		cur = &out[len(out)-1]
	}
	return out
}

// orderCalm is plain nearest-neighbor from the previous block's last stop.
func (s *TimeStrategy) orderCalm(cur *model.Place, group []model.Place) []model.Place {
	if cur == nil {
		return nearestNeighbor(group, s.Cost)
	}
	seeded := append([]model.Place{*cur}, group...)
	return nearestNeighbor(seeded, s.Cost)[1:]
}

// orderCongested clusters places within clusterRadiusKm, walks clusters in
// nearest order, and nearest-neighbor orders inside each cluster.
func (s *TimeStrategy) orderCongested(cur *model.Place, group []model.Place) []model.Place {
	clusters := clusterByRadius(group, clusterRadiusKm)
	out := make([]model.Place, 0, len(group))
	pos := cur
	for len(clusters) > 0 {
		best := 0
		if pos != nil {
			bestCost := s.Cost(*pos, clusters[0][0])
			for i := 1; i < len(clusters); i++ {
				if c := s.Cost(*pos, clusters[i][0]); c < bestCost {
					best = i
					bestCost = c
				}
			}
		}
		cluster := clusters[best]
		clusters = append(clusters[:best], clusters[best+1:]...)
		ordered := s.orderCalm(pos, cluster)
		out = append(out, ordered...)
		pos = &out[len(out)-1]
	}
	return out
}

// clusterByRadius greedily seeds a cluster with the first unassigned place
// and pulls in everything within the radius. Deterministic by input order.
func clusterByRadius(places []model.Place, radiusKm float64) [][]model.Place {
	assigned := make([]bool, len(places))
	clusters := make([][]model.Place, 0)
	for i := range places {
		if assigned[i] {
			continue
		}
		cluster := []model.Place{places[i]}
		assigned[i] = true
		for j := i + 1; j < len(places); j++ {
			if assigned[j] {
				continue
			}
			if edgeKm(places[i], places[j]) <= radiusKm {
				cluster = append(cluster, places[j])
				assigned[j] = true
			}
		}
		clusters = append(clusters, cluster)
	}
	return clusters
}

// groupByBlock buckets places by time block, preserving input order within
// each bucket. Unknown blocks ride along with FREE_TIME at the end of the
// day.
func groupByBlock(places []model.Place) map[string][]model.Place {
	known := make(map[string]bool, len(model.BlockOrder))
	for _, b := range model.BlockOrder {
		known[b] = true
	}
	groups := make(map[string][]model.Place)
	for _, p := range places {
		block := p.TimeBlock
		if !known[block] {
			block = model.BlockFreeTime
		}
		groups[block] = append(groups[block], p)
	}
	return groups
}
