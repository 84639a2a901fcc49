package api

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"

	"tripnav/internal/model"
)

// RedisBroker implements EventBroker over Redis Pub/Sub so progress events
// reach subscribers on every instance behind a load balancer.
type RedisBroker struct {
	rdb *redis.Client

	mu   sync.Mutex
	subs map[chan model.ProgressEvent]*redis.PubSub
}

func NewRedisBroker(url string) (*RedisBroker, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return NewRedisBrokerFromClient(redis.NewClient(opt)), nil
}

func NewRedisBrokerFromClient(rdb *redis.Client) *RedisBroker {
	return &RedisBroker{rdb: rdb, subs: map[chan model.ProgressEvent]*redis.PubSub{}}
}

func (b *RedisBroker) Subscribe(runID string) chan model.ProgressEvent {
	ch := make(chan model.ProgressEvent, 16)
	ctx := context.Background()
	var ps *redis.PubSub
	if runID == TopicAll {
		ps = b.rdb.PSubscribe(ctx, b.chanName("*"))
	} else {
		ps = b.rdb.Subscribe(ctx, b.chanName(runID))
	}
	// initial receive confirms the subscription is live
	_, _ = ps.Receive(ctx)

	b.mu.Lock()
	b.subs[ch] = ps
	b.mu.Unlock()

	go func() {
		defer close(ch)
		for msg := range ps.Channel() {
			var evt model.ProgressEvent
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err == nil {
				select {
				case ch <- evt:
				default:
				}
			}
		}
	}()
	return ch
}

// Unsubscribe closes the underlying Pub/Sub; the fanout goroutine then
// drains out and closes the channel itself.
func (b *RedisBroker) Unsubscribe(_ string, ch chan model.ProgressEvent) {
	b.mu.Lock()
	ps := b.subs[ch]
	delete(b.subs, ch)
	b.mu.Unlock()
	if ps != nil {
		_ = ps.Close()
	}
}

func (b *RedisBroker) Publish(runID string, evt model.ProgressEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	data, _ := json.Marshal(evt)
	_ = b.rdb.Publish(ctx, b.chanName(runID), data).Err()
}

func (b *RedisBroker) chanName(runID string) string { return "run:" + runID }
