// Package playback coordinates media playback with programmatic scrolls.
//
// The scroll engines do not know about media. They publish PlaybackStop and
// PlaybackResume through a Notifier; the Coordinator listens and tracks
// whether the active media may play.
package playback

import (
	"sync"

	"github.com/abelbrown/moments/internal/bus"
	"github.com/abelbrown/moments/internal/logging"
	"github.com/abelbrown/moments/internal/scroll"
)

// Coordinator tracks which axes have stopped playback.
type Coordinator struct {
	mu      sync.Mutex
	stopped map[string]bool
	stops   int
}

// New creates a coordinator listening on b.
func New(b *bus.Bus) *Coordinator {
	c := &Coordinator{stopped: make(map[string]bool)}
	b.Handle(c.handle)
	return c
}

func (c *Coordinator) handle(e bus.Event) {
	switch e.Kind {
	case bus.PlaybackStop:
		c.mu.Lock()
		if !c.stopped[e.Scope] {
			c.stops++
		}
		c.stopped[e.Scope] = true
		c.mu.Unlock()
	case bus.PlaybackResume:
		c.mu.Lock()
		delete(c.stopped, e.Scope)
		c.mu.Unlock()
	}
}

// Playing reports whether no axis is holding playback stopped.
func (c *Coordinator) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.stopped) == 0
}

// Stops returns how many times playback was stopped.
func (c *Coordinator) Stops() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stops
}

// busNotifier publishes the scroll bracket of one axis.
type busNotifier struct {
	bus  *bus.Bus
	axis string
}

// Notifier returns a scroll.Notifier publishing on b for axis.
func Notifier(b *bus.Bus, axis scroll.Axis) scroll.Notifier {
	return busNotifier{bus: b, axis: axis.String()}
}

func (n busNotifier) TriggerStop() {
	logging.Debug("playback: stop", "axis", n.axis)
	n.bus.Publish(bus.Event{Kind: bus.PlaybackStop, Scope: n.axis})
}

func (n busNotifier) ResetStop() {
	logging.Debug("playback: resume", "axis", n.axis)
	n.bus.Publish(bus.Event{Kind: bus.PlaybackResume, Scope: n.axis})
}
