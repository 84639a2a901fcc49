package geo

import (
	"math"
	"testing"

	"tripnav/internal/model"
)

func TestHaversineKnownPair(t *testing.T) {
	// Gyeongbokgung Palace -> N Seoul Tower, roughly 3.5 km apart.
	d := HaversineKm(37.5796, 126.9770, 37.5512, 126.9882)
	if d < 3.0 || d > 4.2 {
		t.Fatalf("expected ~3.5km, got %.3f", d)
	}
}

func TestHaversineZero(t *testing.T) {
	if d := HaversineKm(37.5, 127.0, 37.5, 127.0); d != 0 {
		t.Fatalf("same point: got %f", d)
	}
}

func TestRoadKm(t *testing.T) {
	if got := RoadKm(10); math.Abs(got-13) > 1e-9 {
		t.Fatalf("road factor: got %f", got)
	}
}

func TestETAMinutes(t *testing.T) {
	cases := []struct {
		km   float64
		mode string
		want int
	}{
		{50, model.ModeCar, 60},
		{30, model.ModeTransit, 60},
		{4, model.ModeWalk, 60},
		{15, model.ModeBicycle, 60},
		{0.01, model.ModeCar, 1}, // positive distance never rounds to zero
		{0, model.ModeCar, 0},
	}
	for _, c := range cases {
		if got := ETAMinutes(c.km, c.mode); got != c.want {
			t.Fatalf("ETAMinutes(%f,%s)=%d want %d", c.km, c.mode, got, c.want)
		}
	}
}

func TestSpeedDefaultsToCar(t *testing.T) {
	if SpeedKph("HOVERCRAFT") != SpeedCarKph {
		t.Fatalf("unknown mode should default to car speed")
	}
}
