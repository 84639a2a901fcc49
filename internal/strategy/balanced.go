package strategy

import (
	"tripnav/internal/config"
	"tripnav/internal/geo"
	"tripnav/internal/model"
)

const (
	balancedMaxPasses = 50
	// categoryChangePenalty is the fixed friction for switching categories
	// between consecutive stops.
	categoryChangePenalty = 2.0
	trendyBonus           = 3.0
)

// BalancedStrategy blends distance, time, and preference costs. The weights
// and the importance formula are tuned policy, injected via config rather
// than hard-coded, with 0.4/0.3/0.3 defaults.
type BalancedStrategy struct {
	cfg config.Config
}

func NewBalanced(cfg config.Config) *BalancedStrategy { return &BalancedStrategy{cfg: cfg} }

func (s *BalancedStrategy) Name() string { return "balanced" }

func (s *BalancedStrategy) Cost(a, b model.Place) float64 {
	w := s.cfg.Balanced
	km := edgeKm(a, b)
	minutes := float64(geo.ETAMinutes(km, model.ModeCar))
	return w.Distance*km + w.Time*minutes + w.Preference*preferenceCost(a, b)
}

// preferenceCost penalizes descending from a higher-rated place to a lower
// one and switching categories between consecutive stops.
func preferenceCost(a, b model.Place) float64 {
	cost := 0.0
	if drop := rating(a) - rating(b); drop > 0 {
		cost += drop
	}
	if a.Category != b.Category {
		cost += categoryChangePenalty
	}
	return cost
}

func rating(p model.Place) float64 {
	if p.Rating == nil {
		return 0
	}
	return *p.Rating
}

// importance scores how anchor-worthy a place is within its time block.
func importance(p model.Place) float64 {
	score := rating(p) * 2
	if p.IsTrendy {
		score += trendyBonus
	}
	score += categoryWeight(p.Category)
	return score
}

func categoryWeight(category string) float64 {
	switch category {
	case "attraction":
		return 5
	case "food", "restaurant":
		return 4
	case "shopping":
		return 3
	case "cafe":
		return 2
	default:
		return 2.5
	}
}

// Optimize picks one key place per time block by importance, seeds the
// route with them in temporal block order, cheapest-inserts every remaining
// place, and finishes with a bounded 2-opt pass.
func (s *BalancedStrategy) Optimize(places []model.Place) []model.Place {
	if len(places) <= 1 {
		return append([]model.Place(nil), places...)
	}

	groups := groupByBlock(places)
	keys := make(map[string]bool, len(groups))
	route := make([]model.Place, 0, len(places))
	for _, block := range append(append([]string(nil), model.BlockOrder...), model.BlockFreeTime) {
		group := groups[block]
		if len(group) == 0 {
			continue
		}
		key := group[0]
		for _, p := range group[1:] {
			if importance(p) > importance(key) {
				key = p
			}
		}
		route = append(route, key)
		keys[key.ID+"\x00"+key.Name] = true
	}

	for _, p := range places {
		id := p.ID + "\x00" + p.Name
		if keys[id] {
			keys[id] = false // consume: duplicates beyond the key re-insert
			continue
		}
		route = s.cheapestInsert(route, p)
	}

	route = twoOpt(route, s.Cost, balancedMaxPasses)
	return keepBetter(s, places, route)
}

// cheapestInsert places p at whichever position in the route minimizes the
// marginal cost increase. Ties keep the earliest position.
func (s *BalancedStrategy) cheapestInsert(route []model.Place, p model.Place) []model.Place {
	if len(route) == 0 {
		return []model.Place{p}
	}
	bestPos := 0
	bestDelta := 0.0
	for pos := 0; pos <= len(route); pos++ {
		delta := s.insertDelta(route, p, pos)
		if pos == 0 || delta < bestDelta {
			bestPos = pos
			bestDelta = delta
		}
	}
	out := make([]model.Place, 0, len(route)+1)
	out = append(out, route[:bestPos]...)
	out = append(out, p)
	out = append(out, route[bestPos:]...)
	return out
}

func (s *BalancedStrategy) insertDelta(route []model.Place, p model.Place, pos int) float64 {
	switch {
	case pos == 0:
		return s.Cost(p, route[0])
	case pos == len(route):
		return s.Cost(route[len(route)-1], p)
	default:
		prev, next := route[pos-1], route[pos]
		return s.Cost(prev, p) + s.Cost(p, next) - s.Cost(prev, next)
	}
}
