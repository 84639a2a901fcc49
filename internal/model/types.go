package model

import "time"

// Time blocks partition a travel day into coarse scheduling slots. They act
// both as buckets for the optimizer and as congestion-cost modifiers.
const (
	BlockBreakfast         = "BREAKFAST"
	BlockMorningActivity   = "MORNING_ACTIVITY"
	BlockLunch             = "LUNCH"
	BlockCafe              = "CAFE"
	BlockAfternoonActivity = "AFTERNOON_ACTIVITY"
	BlockDinner            = "DINNER"
	BlockEveningActivity   = "EVENING_ACTIVITY"
	BlockFreeTime          = "FREE_TIME"
)

// BlockOrder is the fixed temporal ordering of time blocks within a day.
// FREE_TIME is intentionally absent: it floats and may co-locate.
var BlockOrder = []string{
	BlockBreakfast,
	BlockMorningActivity,
	BlockLunch,
	BlockCafe,
	BlockAfternoonActivity,
	BlockDinner,
	BlockEveningActivity,
}

// Transport modes accepted by the ETA estimator and the strategy selector.
const (
	ModeCar     = "CAR"
	ModeTransit = "PUBLIC_TRANSIT"
	ModeWalk    = "WALK"
	ModeBicycle = "BICYCLE"
)

// Place is a candidate stop produced by the upstream place-selection
// service. The optimizer reorders and annotates places; identity fields are
// never mutated. Lat/Lng and Rating are pointers because upstream data can
// legitimately lack them.
type Place struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Category  string   `json:"category,omitempty"`
	Lat       *float64 `json:"lat,omitempty"`
	Lng       *float64 `json:"lng,omitempty"`
	Rating    *float64 `json:"rating,omitempty"`
	TimeBlock string   `json:"timeBlock,omitempty"`
	IsTrendy  bool     `json:"isTrendy,omitempty"`
	Day       int      `json:"day,omitempty"`
	// Confirmed marks a synthetic place derived from a locked schedule item.
	Confirmed bool `json:"confirmed,omitempty"`
}

// HasCoords reports whether the place carries usable coordinates.
func (p Place) HasCoords() bool { return p.Lat != nil && p.Lng != nil }

// ConfirmedScheduleItem is a time-anchored event (flight, hotel, train)
// extracted from a user document. It must appear in the day's route at its
// given slot and nothing else may overlap that slot.
type ConfirmedScheduleItem struct {
	Kind         string    `json:"kind"`
	StartTime    time.Time `json:"startTime"`
	EndTime      time.Time `json:"endTime"`
	LocationName string    `json:"locationName"`
	Origin       string    `json:"origin,omitempty"`
	Destination  string    `json:"destination,omitempty"`
}

// DistanceInfo is one directed pairwise measurement.
type DistanceInfo struct {
	DistanceKm      float64 `json:"distanceKm"`
	DurationMinutes int     `json:"durationMinutes"`
}

// Placeholder values used when a matrix lookup misses. Chosen large enough
// to discourage the pair without failing the optimization.
const (
	DefaultMissDistanceKm  = 100.0
	DefaultMissDurationMin = 120
)

// DistanceMatrix maps "origin|destination" location-name pairs to
// measurements. Built once per optimization call and replaced on recompute,
// never edited in place.
type DistanceMatrix struct {
	Entries map[string]DistanceInfo `json:"entries"`
	Source  string                  `json:"source,omitempty"`
}

func MatrixKey(origin, destination string) string { return origin + "|" + destination }

// Lookup returns the entry for origin->destination, falling back to the
// safe placeholder so a sparse matrix never sinks a whole optimization.
func (m DistanceMatrix) Lookup(origin, destination string) DistanceInfo {
	if origin == destination {
		return DistanceInfo{}
	}
	if info, ok := m.Entries[MatrixKey(origin, destination)]; ok {
		return info
	}
	return DistanceInfo{DistanceKm: DefaultMissDistanceKm, DurationMinutes: DefaultMissDurationMin}
}

// RouteSegment is one leg between consecutive places in an optimized route.
type RouteSegment struct {
	From        string  `json:"from"`
	To          string  `json:"to"`
	DistanceKm  float64 `json:"distanceKm"`
	DurationMin int     `json:"durationMin"`
	Mode        string  `json:"mode,omitempty"`
}

// OptimizedRoute is the per-day output: an ordered visit sequence with
// segment-level metrics and totals. Constructed once; any change produces a
// new route.
type OptimizedRoute struct {
	ID            string         `json:"id"`
	Day           int            `json:"day"`
	Places        []Place        `json:"places"`
	Segments      []RouteSegment `json:"segments"`
	TotalDistance float64        `json:"totalDistance"`
	TotalDuration int            `json:"totalDuration"`
	StrategyName  string         `json:"strategyName"`
	MatrixSource  string         `json:"matrixSource,omitempty"`
}

// DailyItinerary pairs a day's candidate set with its derived route.
type DailyItinerary struct {
	DayNumber int             `json:"dayNumber"`
	Date      string          `json:"date,omitempty"`
	Places    []Place         `json:"places"`
	Route     *OptimizedRoute `json:"route,omitempty"`
}

// DayRequest is the single-day optimization input.
type DayRequest struct {
	Day           int                     `json:"day"`
	Candidates    []Place                 `json:"candidates"`
	Confirmed     []ConfirmedScheduleItem `json:"confirmed,omitempty"`
	StrategyName  string                  `json:"strategyName,omitempty"`
	TransportMode string                  `json:"transportMode,omitempty"`
}

// TripRequest is the whole-trip optimization input.
type TripRequest struct {
	Days          []DayRequest `json:"days"`
	StrategyName  string       `json:"strategyName,omitempty"`
	TransportMode string       `json:"transportMode,omitempty"`
	Context       *TripContext `json:"context,omitempty"`
}

// TripContext carries the heuristic inputs for strategy recommendation.
type TripContext struct {
	TripDays      int    `json:"tripDays"`
	PlaceCount    int    `json:"placeCount"`
	TransportMode string `json:"transportMode,omitempty"`
	HasChildren   bool   `json:"hasChildren,omitempty"`
	HasElderly    bool   `json:"hasElderly,omitempty"`
}

// Run states for one orchestrated optimization.
const (
	RunPending        = "PENDING"
	RunMerging        = "MERGING"
	RunMatrixBuilding = "MATRIX_BUILDING"
	RunOptimizing     = "OPTIMIZING"
	RunAssembled      = "ASSEMBLED"
	RunFailed         = "FAILED"
)

// ProgressEvent is published on every run state transition.
type ProgressEvent struct {
	RunID  string `json:"runId"`
	Day    int    `json:"day"`
	State  string `json:"state"`
	Detail string `json:"detail,omitempty"`
	TS     string `json:"ts"`
}

// NamedPoint is the minimal location shape handed to the distance matrix
// builder: a stable name plus optional coordinates.
type NamedPoint struct {
	Name string   `json:"name"`
	Lat  *float64 `json:"lat,omitempty"`
	Lng  *float64 `json:"lng,omitempty"`
}
