package strategy

import "tripnav/internal/model"

// twoOpt refines a route by reversing sub-ranges [i..j] whenever that
// strictly reduces the two boundary edge costs. The first place stays
// anchored (it is the day's starting point) and maxPasses bounds runtime on
// larger place sets.
func twoOpt(route []model.Place, cost func(a, b model.Place) float64, maxPasses int) []model.Place {
	n := len(route)
	if n < 4 {
		return route
	}
	if maxPasses <= 0 {
		maxPasses = 1
	}
	best := append([]model.Place(nil), route...)
	for pass := 0; pass < maxPasses; pass++ {
		improved := false
		for i := 1; i < n-1; i++ {
			for j := i + 1; j < n-1; j++ {
				before := cost(best[i-1], best[i]) + cost(best[j], best[j+1])
				after := cost(best[i-1], best[j]) + cost(best[i], best[j+1])
				if after+1e-9 < before {
					reverseRange(best, i, j)
					improved = true
				}
			}
		}
		if !improved {
			break
		}
	}
	return best
}

// reverseRange flips route[i..j] in place. It only ever runs on an owned
// working copy, never on a caller's slice.
func reverseRange(route []model.Place, i, j int) {
	for a, b := i, j; a < b; a, b = a+1, b-1 {
		route[a], route[b] = route[b], route[a]
	}
}
