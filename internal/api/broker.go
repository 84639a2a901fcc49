package api

import (
	"sync"

	"tripnav/internal/model"
)

// TopicAll subscribes to every run's progress events.
const TopicAll = "*"

// EventBroker fans optimization progress events out to stream subscribers.
type EventBroker interface {
	Subscribe(runID string) chan model.ProgressEvent
	Unsubscribe(runID string, ch chan model.ProgressEvent)
	Publish(runID string, evt model.ProgressEvent)
}

// Broker is the in-process EventBroker. Slow subscribers drop events
// rather than stall the publisher.
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan model.ProgressEvent]struct{} // runID -> set of channels
}

func NewBroker() *Broker {
	return &Broker{subs: map[string]map[chan model.ProgressEvent]struct{}{}}
}

func (b *Broker) Subscribe(runID string) chan model.ProgressEvent {
	ch := make(chan model.ProgressEvent, 8)
	b.mu.Lock()
	if b.subs[runID] == nil {
		b.subs[runID] = map[chan model.ProgressEvent]struct{}{}
	}
	b.subs[runID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(runID string, ch chan model.ProgressEvent) {
	b.mu.Lock()
	if m := b.subs[runID]; m != nil {
		delete(m, ch)
		if len(m) == 0 {
			delete(b.subs, runID)
		}
	}
	b.mu.Unlock()
	close(ch)
}

func (b *Broker) Publish(runID string, evt model.ProgressEvent) {
	b.mu.Lock()
	for ch := range b.subs[runID] {
		select {
		case ch <- evt:
		default:
		}
	}
	if runID != TopicAll {
		for ch := range b.subs[TopicAll] {
			select {
			case ch <- evt:
			default:
			}
		}
	}
	b.mu.Unlock()
}
