package scroll

import (
	"sync"
	"time"
)

// State is the scroll state of one navigation axis.
type State int

const (
	Idle State = iota
	Scrolling
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scrolling:
		return "scrolling"
	default:
		return "unknown"
	}
}

// Machine is the Idle/Scrolling state machine of one axis.
//
// Begin moves Idle to Scrolling for a guard window. The only way back to Idle
// is the window elapsing: Settle with the matching generation after the
// deadline, or a later Begin that finds the deadline already passed.
// Intents that arrive while Scrolling are dropped, never queued.
type Machine struct {
	mu    sync.Mutex
	state State
	gen   uint64
	until time.Time
}

// Begin starts a programmatic scroll at now guarded for window. It returns the
// scroll's generation, or false if a scroll is still in progress.
func (m *Machine) Begin(now time.Time, window time.Duration) (uint64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Scrolling && now.Before(m.until) {
		return 0, false
	}
	m.gen++
	m.state = Scrolling
	m.until = now.Add(window)
	return m.gen, true
}

// Settle returns the machine to Idle if gen is the current scroll and its
// window has elapsed by now. Stale or early settles are ignored.
func (m *Machine) Settle(now time.Time, gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Scrolling || gen != m.gen || now.Before(m.until) {
		return false
	}
	m.state = Idle
	return true
}

// Busy reports whether a scroll guard is active at now.
func (m *Machine) Busy(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == Scrolling && now.Before(m.until)
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}
