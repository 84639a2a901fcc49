package strategy

import (
	"strings"

	"tripnav/internal/config"
	"tripnav/internal/model"
)

// placesPerDayDense is the candidate density above which raw distance
// minimization beats everything else.
const placesPerDayDense = 8

// Selector resolves strategies by name or recommends one from trip context.
type Selector struct {
	distance *DistanceStrategy
	time     *TimeStrategy
	balanced *BalancedStrategy
}

func NewSelector(cfg config.Config) *Selector {
	return &Selector{
		distance: NewDistance(),
		time:     NewTime(cfg),
		balanced: NewBalanced(cfg),
	}
}

// ByName matches known aliases case-insensitively. Unknown or empty names
// fall back to balanced; selection never errors.
func (s *Selector) ByName(name string) Strategy {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DISTANCE", "SHORTEST_DISTANCE":
		return s.distance
	case "TIME", "SHORTEST_TIME":
		return s.time
	case "BALANCED", "RECOMMEND":
		return s.balanced
	default:
		return s.balanced
	}
}

// Names lists the registered strategy names.
func (s *Selector) Names() []string {
	return []string{s.distance.Name(), s.time.Name(), s.balanced.Name()}
}

// Recommend applies the priority-ordered trip heuristics. Advisory only;
// callers may override with an explicit name.
func (s *Selector) Recommend(tripDays, placeCount int, transportMode string, hasChildren, hasElderly bool) Strategy {
	if hasChildren || hasElderly {
		return s.time
	}
	if transportMode == model.ModeTransit {
		return s.time
	}
	if tripDays > 0 && placeCount > tripDays*placesPerDayDense {
		return s.distance
	}
	return s.balanced
}
