// Package ratelimit provides per-API token-bucket throttling with adaptive
// backoff. Buckets are shared across requests; everything else in the
// service is built functionally, so this registry is the one piece of
// cross-request mutable state and must stay concurrency-safe.
package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultQPS applies to APIs that were never explicitly registered.
	DefaultQPS   = 5.0
	defaultBurst = 5

	// minRate is the floor below which repeated halving cannot push a bucket.
	minRate = rate.Limit(0.1)

	// quietPeriod without failures resets the consecutive-failure counter.
	quietPeriod = 60 * time.Second

	maxBackoff  = 60 * time.Second
	baseBackoff = 1 * time.Second
)

type bucket struct {
	mu       sync.Mutex
	limiter  *rate.Limiter
	ceiling  rate.Limit
	fails    int
	lastFail time.Time
}

// Registry holds one token bucket per named API, lazily created.
type Registry struct {
	buckets sync.Map // string -> *bucket

	// sleep is swapped out in tests; it must honor ctx cancellation.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewRegistry() *Registry {
	return &Registry{sleep: sleepCtx}
}

// Register pins an API's steady-state rate. Calling it again replaces the
// bucket, so it is meant for startup wiring only.
func (r *Registry) Register(apiName string, qps float64, burst int) {
	if qps <= 0 {
		qps = DefaultQPS
	}
	if burst <= 0 {
		burst = defaultBurst
	}
	lim := rate.Limit(qps)
	r.buckets.Store(apiName, &bucket{limiter: rate.NewLimiter(lim, burst), ceiling: lim})
}

func (r *Registry) get(apiName string) *bucket {
	if v, ok := r.buckets.Load(apiName); ok {
		return v.(*bucket)
	}
	b := &bucket{limiter: rate.NewLimiter(rate.Limit(DefaultQPS), defaultBurst), ceiling: rate.Limit(DefaultQPS)}
	actual, _ := r.buckets.LoadOrStore(apiName, b)
	return actual.(*bucket)
}

// TryAcquire takes a token without blocking.
func (r *Registry) TryAcquire(apiName string) bool {
	return r.get(apiName).limiter.Allow()
}

// Acquire blocks until a token is available or the context is done.
func (r *Registry) Acquire(ctx context.Context, apiName string) error {
	return r.get(apiName).limiter.Wait(ctx)
}

// Rate reports the bucket's current steady-state limit in QPS.
func (r *Registry) Rate(apiName string) float64 {
	return float64(r.get(apiName).limiter.Limit())
}

// OnSuccess nudges a previously throttled bucket back toward its original
// ceiling (x1.1 per success) and clears the failure streak.
func (r *Registry) OnSuccess(apiName string) {
	b := r.get(apiName)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fails = 0
	cur := b.limiter.Limit()
	if cur >= b.ceiling {
		return
	}
	next := cur * 1.1
	if next > b.ceiling {
		next = b.ceiling
	}
	b.limiter.SetLimit(next)
}

// OnFailure classifies the error and, when it is rate-limit shaped, halves
// the bucket's rate and sleeps an exponentially growing, jittered delay.
// The sleep honors ctx so a request timeout can abort the wait. Failures
// that are not rate-limit shaped are left to the provider fallback chain.
func (r *Registry) OnFailure(ctx context.Context, apiName string, err error) {
	if !IsRateLimited(err) {
		return
	}
	b := r.get(apiName)

	b.mu.Lock()
	now := time.Now()
	if b.fails > 0 && now.Sub(b.lastFail) > quietPeriod {
		b.fails = 0
	}
	b.fails++
	b.lastFail = now
	fails := b.fails
	half := b.limiter.Limit() / 2
	if half < minRate {
		half = minRate
	}
	b.limiter.SetLimit(half)
	b.mu.Unlock()

	_ = r.sleep(ctx, backoffDelay(fails))
}

// backoffDelay grows exponentially with the failure streak, capped at
// maxBackoff, with up to 25% jitter.
func backoffDelay(fails int) time.Duration {
	if fails < 1 {
		fails = 1
	}
	if fails > 10 {
		fails = 10
	}
	d := baseBackoff * time.Duration(1<<(fails-1))
	if d > maxBackoff {
		d = maxBackoff
	}
	jitter := time.Duration(rand.Int63n(int64(d)/4 + 1))
	return d + jitter
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
