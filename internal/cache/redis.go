package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"tripnav/internal/model"
)

const redisKeyPrefix = "dist:"

// Redis caches distance pairs in Redis with a TTL so stale road data ages
// out on its own.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedis(url string) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &Redis{rdb: redis.NewClient(opt), ttl: 7 * 24 * time.Hour}, nil
}

// NewRedisFromClient wraps an existing client; used by tests.
func NewRedisFromClient(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb, ttl: 7 * 24 * time.Hour}
}

// Ping probes the Redis connection for readiness checks.
func (r *Redis) Ping(ctx context.Context) error { return r.rdb.Ping(ctx).Err() }

func (r *Redis) GetMany(ctx context.Context, keys []string) (map[string]model.DistanceInfo, error) {
	if len(keys) == 0 {
		return map[string]model.DistanceInfo{}, nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = redisKeyPrefix + k
	}
	vals, err := r.rdb.MGet(ctx, full...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}
	out := make(map[string]model.DistanceInfo, len(keys))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var info model.DistanceInfo
		if err := json.Unmarshal([]byte(s), &info); err != nil {
			continue // treat a corrupt entry as a miss
		}
		out[keys[i]] = info
	}
	return out, nil
}

func (r *Redis) PutMany(ctx context.Context, entries map[string]model.DistanceInfo) error {
	if len(entries) == 0 {
		return nil
	}
	pipe := r.rdb.Pipeline()
	for k, info := range entries {
		data, err := json.Marshal(info)
		if err != nil {
			return fmt.Errorf("marshal distance info: %w", err)
		}
		pipe.Set(ctx, redisKeyPrefix+k, data, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline: %w", err)
	}
	return nil
}
