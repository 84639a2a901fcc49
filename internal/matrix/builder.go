package matrix

import (
	"context"
	"log"
	"sync"

	"tripnav/internal/cache"
	"tripnav/internal/metrics"
	"tripnav/internal/model"
)

// Builder resolves a complete distance matrix for a location set. Providers
// are tried in priority order; failures are absorbed and the synthetic
// estimator guarantees a full matrix. The only error Build ever returns is
// the caller's own cancellation, in which case no partial matrix is
// published.
type Builder struct {
	Providers   []Provider
	Cache       cache.DistanceCache
	Concurrency int
}

func NewBuilder(providers []Provider, c cache.DistanceCache, concurrency int) *Builder {
	if c == nil {
		c = cache.NewMemory()
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Builder{Providers: providers, Cache: c, Concurrency: concurrency}
}

// Build resolves all directed pairs between the named locations.
func (b *Builder) Build(ctx context.Context, points []model.NamedPoint) (model.DistanceMatrix, error) {
	points = dedupe(points)
	keys := pairKeys(points)
	if len(keys) == 0 {
		return model.DistanceMatrix{Entries: map[string]model.DistanceInfo{}, Source: "empty"}, nil
	}

	entries := make(map[string]model.DistanceInfo, len(keys))
	source := "cache"

	// Cache first. A cache error is just a miss; the providers can still
	// serve the request.
	hits, err := b.Cache.GetMany(ctx, keys)
	if err != nil {
		log.Printf("matrix: distance cache read failed: %v", err)
		hits = map[string]model.DistanceInfo{}
	}
	for k, v := range hits {
		entries[k] = v
	}

	if missing := missingKeys(keys, entries); len(missing) > 0 {
		fetched, name := b.fetchFromProviders(ctx, points)
		if err := ctx.Err(); err != nil {
			return model.DistanceMatrix{}, err
		}
		if fetched != nil {
			source = name
			for k, v := range fetched {
				entries[k] = v
			}
			b.writeThrough(ctx, fetched)
		}
	}

	// Whatever is still unresolved (providers down, coordinates absent)
	// gets a synthetic estimate. This step cannot fail.
	if missing := missingKeys(keys, entries); len(missing) > 0 {
		metrics.MatrixFallbacks.WithLabelValues("synthetic").Add(float64(len(missing)))
		if source == "cache" && len(missing) == len(keys) {
			source = "synthetic"
		} else if source != "synthetic" {
			source = source + "+synthetic"
		}
		synth, err := b.syntheticFill(ctx, points, missing)
		if err != nil {
			return model.DistanceMatrix{}, err
		}
		for k, v := range synth {
			entries[k] = v
		}
	}

	if err := ctx.Err(); err != nil {
		return model.DistanceMatrix{}, err
	}
	return model.DistanceMatrix{Entries: entries, Source: source}, nil
}

// fetchFromProviders walks the priority chain and returns the first
// complete provider result, or nil when every provider failed. Provider
// errors are logged and absorbed here; they never reach the caller.
func (b *Builder) fetchFromProviders(ctx context.Context, points []model.NamedPoint) (map[string]model.DistanceInfo, string) {
	for _, p := range b.Providers {
		if ctx.Err() != nil {
			return nil, ""
		}
		fetched, err := p.FetchMatrix(ctx, points)
		if err != nil {
			log.Printf("matrix: provider %s failed, trying next: %v", p.Name(), err)
			metrics.MatrixFallbacks.WithLabelValues("provider_" + p.Name()).Inc()
			continue
		}
		return fetched, p.Name()
	}
	return nil, ""
}

func (b *Builder) writeThrough(ctx context.Context, fetched map[string]model.DistanceInfo) {
	if err := b.Cache.PutMany(ctx, fetched); err != nil {
		log.Printf("matrix: distance cache write failed: %v", err)
	}
}

// syntheticFill estimates the remaining pairs across a bounded worker pool.
// Pairs are independent, so ordering does not matter; the caller joins on
// the full result before the matrix is published.
func (b *Builder) syntheticFill(ctx context.Context, points []model.NamedPoint, keys []string) (map[string]model.DistanceInfo, error) {
	byName := make(map[string]model.NamedPoint, len(points))
	for _, p := range points {
		byName[p.Name] = p
	}

	var (
		mu  sync.Mutex
		out = make(map[string]model.DistanceInfo, len(keys))
		wg  sync.WaitGroup
	)
	jobs := make(chan string)
	workers := b.Concurrency
	if workers > len(keys) {
		workers = len(keys)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := range jobs {
				o, d, ok := splitPairKey(k)
				if !ok {
					continue
				}
				info := SyntheticPair(byName[o], byName[d])
				mu.Lock()
				out[k] = info
				mu.Unlock()
			}
		}()
	}

	cancelled := false
	for _, k := range keys {
		select {
		case <-ctx.Done():
			cancelled = true
		case jobs <- k:
			continue
		}
		break
	}
	close(jobs)
	wg.Wait()

	if cancelled {
		return nil, ctx.Err()
	}
	return out, nil
}

func dedupe(points []model.NamedPoint) []model.NamedPoint {
	seen := make(map[string]struct{}, len(points))
	out := make([]model.NamedPoint, 0, len(points))
	for _, p := range points {
		if p.Name == "" {
			continue
		}
		if _, ok := seen[p.Name]; ok {
			continue
		}
		seen[p.Name] = struct{}{}
		out = append(out, p)
	}
	return out
}

func pairKeys(points []model.NamedPoint) []string {
	keys := make([]string, 0, len(points)*(len(points)-1))
	for _, a := range points {
		for _, b := range points {
			if a.Name == b.Name {
				continue
			}
			keys = append(keys, model.MatrixKey(a.Name, b.Name))
		}
	}
	return keys
}

func missingKeys(keys []string, entries map[string]model.DistanceInfo) []string {
	missing := make([]string, 0)
	for _, k := range keys {
		if _, ok := entries[k]; !ok {
			missing = append(missing, k)
		}
	}
	return missing
}

func splitPairKey(key string) (origin, destination string, ok bool) {
	for i := 0; i < len(key); i++ {
		if key[i] == '|' {
			if i == 0 || i == len(key)-1 {
				return "", "", false
			}
			return key[:i], key[i+1:], true
		}
	}
	return "", "", false
}
