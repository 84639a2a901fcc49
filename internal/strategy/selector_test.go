package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tripnav/internal/config"
	"tripnav/internal/model"
)

func TestByNameAliases(t *testing.T) {
	s := NewSelector(config.Default())
	cases := map[string]string{
		"DISTANCE":          "distance",
		"shortest_distance": "distance",
		"Time":              "time",
		"SHORTEST_TIME":     "time",
		"balanced":          "balanced",
		"RECOMMEND":         "balanced",
		"":                  "balanced",
		"bogus":             "balanced",
		"  distance  ":      "distance",
	}
	for name, want := range cases {
		assert.Equal(t, want, s.ByName(name).Name(), "alias %q", name)
	}
}

func TestRecommendPriorityOrder(t *testing.T) {
	s := NewSelector(config.Default())

	// children/elderly dominate everything else
	assert.Equal(t, "time", s.Recommend(3, 30, model.ModeCar, true, false).Name())
	assert.Equal(t, "time", s.Recommend(3, 30, model.ModeCar, false, true).Name())

	// public transit comes next
	assert.Equal(t, "time", s.Recommend(3, 5, model.ModeTransit, false, false).Name())

	// high density triggers distance: 30 > 3*8
	assert.Equal(t, "distance", s.Recommend(3, 30, model.ModeCar, false, false).Name())

	// boundary is strict: 24 == 3*8 is not dense
	assert.Equal(t, "balanced", s.Recommend(3, 24, model.ModeCar, false, false).Name())

	assert.Equal(t, "balanced", s.Recommend(5, 10, model.ModeCar, false, false).Name())
}

func TestNames(t *testing.T) {
	s := NewSelector(config.Default())
	assert.Equal(t, []string{"distance", "time", "balanced"}, s.Names())
}
