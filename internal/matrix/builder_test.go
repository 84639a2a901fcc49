package matrix

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tripnav/internal/cache"
	"tripnav/internal/model"
)

func pt(name string, lat, lng float64) model.NamedPoint {
	return model.NamedPoint{Name: name, Lat: &lat, Lng: &lng}
}

type fakeProvider struct {
	name  string
	err   error
	out   map[string]model.DistanceInfo
	calls int
}

func (f *fakeProvider) Name() string { return f.name }
func (f *fakeProvider) FetchMatrix(ctx context.Context, points []model.NamedPoint) (map[string]model.DistanceInfo, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func seoulPoints() []model.NamedPoint {
	return []model.NamedPoint{
		pt("Gyeongbokgung Palace", 37.5796, 126.9770),
		pt("N Seoul Tower", 37.5512, 126.9882),
		pt("Myeongdong", 37.5637, 126.9838),
		pt("Hongdae", 37.5563, 126.9220),
	}
}

func TestBuildAllProvidersFailStillComplete(t *testing.T) {
	p1 := &fakeProvider{name: "tmap", err: errors.New("dial tcp: timeout")}
	p2 := &fakeProvider{name: "google", err: errors.New("status 500")}
	p3 := &fakeProvider{name: "osrm", err: errors.New("too many requests")}
	b := NewBuilder([]Provider{p1, p2, p3}, cache.NewMemory(), 4)

	points := seoulPoints()
	m, err := b.Build(context.Background(), points)
	if err != nil {
		t.Fatalf("Build must not fail on provider errors: %v", err)
	}
	if p1.calls != 1 || p2.calls != 1 || p3.calls != 1 {
		t.Fatalf("every provider should be tried once: %d %d %d", p1.calls, p2.calls, p3.calls)
	}
	want := len(points) * (len(points) - 1)
	if len(m.Entries) != want {
		t.Fatalf("matrix incomplete: %d entries, want %d", len(m.Entries), want)
	}
	if m.Source != "synthetic" {
		t.Fatalf("source: got %q", m.Source)
	}
	for k, info := range m.Entries {
		if info.DistanceKm <= 0 || info.DistanceKm > 250 {
			t.Fatalf("implausible synthetic distance for %s: %f", k, info.DistanceKm)
		}
		if info.DurationMinutes <= 0 {
			t.Fatalf("missing duration for %s", k)
		}
	}
}

func TestBuildFirstProviderWins(t *testing.T) {
	points := seoulPoints()
	full := make(map[string]model.DistanceInfo)
	for _, a := range points {
		for _, b := range points {
			if a.Name != b.Name {
				full[model.MatrixKey(a.Name, b.Name)] = model.DistanceInfo{DistanceKm: 3, DurationMinutes: 10}
			}
		}
	}
	p1 := &fakeProvider{name: "tmap", out: full}
	p2 := &fakeProvider{name: "google", out: full}
	b := NewBuilder([]Provider{p1, p2}, cache.NewMemory(), 4)

	m, err := b.Build(context.Background(), points)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if p2.calls != 0 {
		t.Fatalf("second provider should not be consulted on success")
	}
	if m.Source != "tmap" {
		t.Fatalf("source: got %q", m.Source)
	}
}

func TestBuildServedFromCacheSkipsProviders(t *testing.T) {
	points := seoulPoints()
	c := cache.NewMemory()
	pre := make(map[string]model.DistanceInfo)
	for _, a := range points {
		for _, b := range points {
			if a.Name != b.Name {
				pre[model.MatrixKey(a.Name, b.Name)] = model.DistanceInfo{DistanceKm: 1, DurationMinutes: 2}
			}
		}
	}
	if err := c.PutMany(context.Background(), pre); err != nil {
		t.Fatal(err)
	}
	p := &fakeProvider{name: "tmap", err: errors.New("should not be called")}
	b := NewBuilder([]Provider{p}, c, 4)
	m, err := b.Build(context.Background(), points)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if p.calls != 0 {
		t.Fatalf("provider consulted despite full cache")
	}
	if m.Source != "cache" {
		t.Fatalf("source: got %q", m.Source)
	}
}

func TestBuildWriteThrough(t *testing.T) {
	points := seoulPoints()[:2]
	full := map[string]model.DistanceInfo{
		model.MatrixKey(points[0].Name, points[1].Name): {DistanceKm: 4.6, DurationMinutes: 12},
		model.MatrixKey(points[1].Name, points[0].Name): {DistanceKm: 4.9, DurationMinutes: 13},
	}
	c := cache.NewMemory()
	p := &fakeProvider{name: "google", out: full}
	b := NewBuilder([]Provider{p}, c, 2)
	if _, err := b.Build(context.Background(), points); err != nil {
		t.Fatalf("Build: %v", err)
	}
	// second build must be served from cache
	if _, err := b.Build(context.Background(), points); err != nil {
		t.Fatalf("Build 2: %v", err)
	}
	if p.calls != 1 {
		t.Fatalf("expected write-through to satisfy the second build, calls=%d", p.calls)
	}
}

func TestBuildCancelledReturnsError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := NewBuilder(nil, cache.NewMemory(), 2)
	_, err := b.Build(ctx, seoulPoints())
	if err == nil {
		t.Fatalf("cancelled build must surface an error, not a partial matrix")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestBuildEmptyAndSingle(t *testing.T) {
	b := NewBuilder(nil, cache.NewMemory(), 2)
	m, err := b.Build(context.Background(), nil)
	if err != nil || len(m.Entries) != 0 {
		t.Fatalf("empty input: %v %v", m, err)
	}
	m, err = b.Build(context.Background(), seoulPoints()[:1])
	if err != nil || len(m.Entries) != 0 {
		t.Fatalf("single location has no pairs: %v %v", m, err)
	}
}

func TestDedupeAndMalformedNames(t *testing.T) {
	pts := []model.NamedPoint{pt("A", 1, 1), pt("A", 1, 1), {Name: ""}, pt("B", 2, 2)}
	out := dedupe(pts)
	if len(out) != 2 {
		t.Fatalf("dedupe: got %d points", len(out))
	}
	if got := strings.Join([]string{out[0].Name, out[1].Name}, ","); got != "A,B" {
		t.Fatalf("dedupe order not stable: %s", got)
	}
}
