// Package cache provides pluggable persistence for pairwise distance
// results. The matrix builder consults a cache before calling external
// providers and writes fresh measurements through. Cached distances are
// acquisition state, not itinerary persistence.
package cache

import (
	"context"
	"sync"

	"tripnav/internal/model"
)

// DistanceCache stores directed pair measurements keyed by
// "origin|destination" (see model.MatrixKey).
type DistanceCache interface {
	GetMany(ctx context.Context, keys []string) (map[string]model.DistanceInfo, error)
	PutMany(ctx context.Context, entries map[string]model.DistanceInfo) error
}

// Memory is the zero-configuration in-process cache.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]model.DistanceInfo
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]model.DistanceInfo)}
}

func (m *Memory) GetMany(_ context.Context, keys []string) (map[string]model.DistanceInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]model.DistanceInfo, len(keys))
	for _, k := range keys {
		if info, ok := m.entries[k]; ok {
			out[k] = info
		}
	}
	return out, nil
}

func (m *Memory) PutMany(_ context.Context, entries map[string]model.DistanceInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range entries {
		m.entries[k] = v
	}
	return nil
}
