// Package bus carries change events between the feed's state containers.
//
// Stores never reach into each other. A store that changes publishes an Event;
// dependent stores and views subscribe and recompute. Two kinds of subscriber
// exist: synchronous handlers, which run on the publisher's goroutine and are
// used for cross-store cache updates, and buffered channels, which are used by
// views and never block the publisher.
package bus

import (
	"sync"
	"sync/atomic"

	"github.com/abelbrown/moments/internal/model"
)

// Kind identifies an event. Dot-delimited: "<subject>.<action>".
type Kind string

const (
	SlidesChanged    Kind = "slides.changed"
	SubSlidesChanged Kind = "subslides.changed"
	IndexChanged     Kind = "index.changed"
	MomentUpdated    Kind = "moment.updated"
	MomentDeleted    Kind = "moment.deleted"
	PlaybackStop     Kind = "playback.stop"
	PlaybackResume   Kind = "playback.resume"
)

// Event is a single change notification.
type Event struct {
	Kind Kind

	// Scope names the collection the event belongs to: the feed target for
	// slide events, the story id for sub-slide events, the axis for
	// playback and index events.
	Scope string

	Index  int           // IndexChanged: new index
	Count  int           // *Changed: number of items after the change
	Moment *model.Moment // MomentUpdated: new value
	ID     string        // MomentDeleted: deleted moment id
}

// Bus fans events out to subscribers.
type Bus struct {
	mu       sync.RWMutex
	handlers []func(Event)
	subs     []chan Event
	closed   bool
	dropped  atomic.Uint64
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{}
}

// Handle registers a synchronous handler. Handlers run in registration order
// on the publishing goroutine and may publish further events.
func (b *Bus) Handle(fn func(Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, fn)
}

// Subscribe returns a channel receiving every event published after the call.
// Events are dropped for this subscriber when its buffer is full.
func (b *Bus) Subscribe(buffer int) <-chan Event {
	ch := make(chan Event, buffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs = append(b.subs, ch)
	return ch
}

// Publish delivers e to all handlers, then to all channel subscribers.
// A nil Bus discards events.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	handlers := make([]func(Event), len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn(e)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			// Drop - the view re-reads state on its next event
			b.dropped.Add(1)
		}
	}
}

// Dropped returns the number of channel deliveries dropped so far.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

// Close closes all subscriber channels. Safe to call multiple times.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
