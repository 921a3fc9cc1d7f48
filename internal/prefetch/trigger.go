// Package prefetch decides when to load the next page before the user
// reaches the end of the loaded window.
package prefetch

// DefaultThreshold is how many items from the end of the loaded window the
// next page is requested.
const DefaultThreshold = 4

// Window describes a loaded collection and the viewer's position in it.
type Window struct {
	Index       int
	Loaded      int
	HasNext     bool
	FetchedOnce bool
	Fetching    bool
}

// Trigger is an edge-triggered look-ahead policy. It fires once when the
// window becomes due and stays quiet until the index or the loaded size
// changes. Not safe for concurrent use; each collection owns its own.
type Trigger struct {
	threshold int

	fired      bool
	lastIndex  int
	lastLoaded int
}

// New creates a trigger. A non-positive threshold uses DefaultThreshold.
func New(threshold int) *Trigger {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Trigger{threshold: threshold}
}

// Threshold returns the configured distance from the end.
func (t *Trigger) Threshold() int {
	return t.threshold
}

// Due reports whether w is inside the look-ahead zone and a fetch could run.
// A first page no larger than the threshold never counts as due.
func (t *Trigger) Due(w Window) bool {
	return w.HasNext &&
		w.FetchedOnce &&
		!w.Fetching &&
		w.Loaded > t.threshold &&
		w.Loaded-w.Index <= t.threshold
}

// Evaluate reports whether a fetch continuation should be issued now.
func (t *Trigger) Evaluate(w Window) bool {
	if !t.Due(w) {
		return false
	}
	if t.fired && t.lastIndex == w.Index && t.lastLoaded == w.Loaded {
		return false
	}
	t.fired = true
	t.lastIndex = w.Index
	t.lastLoaded = w.Loaded
	return true
}

// Reset forgets the last firing position.
func (t *Trigger) Reset() {
	t.fired = false
	t.lastIndex = 0
	t.lastLoaded = 0
}
