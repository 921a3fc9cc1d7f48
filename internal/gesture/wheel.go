package gesture

// DefaultWheelThreshold is the accumulated delta that makes one step.
const DefaultWheelThreshold = 400

// Wheel accumulates wheel deltas into discrete steps.
type Wheel struct {
	threshold float64
	acc       float64
}

// NewWheel creates an accumulator. A non-positive threshold uses the default.
func NewWheel(threshold float64) *Wheel {
	if threshold <= 0 {
		threshold = DefaultWheelThreshold
	}
	return &Wheel{threshold: threshold}
}

// Feed adds delta at position index of length slides. Once the total reaches
// the threshold in either sign it returns one step and starts over. Pushing
// past the first or last slide discards the total.
func (w *Wheel) Feed(delta float64, index, length int) (Dir, bool) {
	if (delta < 0 && index <= 0) || (delta > 0 && index >= length-1) {
		w.acc = 0
		return 0, false
	}
	w.acc += delta
	switch {
	case w.acc >= w.threshold:
		w.acc = 0
		return Advance, true
	case w.acc <= -w.threshold:
		w.acc = 0
		return Retreat, true
	}
	return 0, false
}

// Total is the accumulated delta.
func (w *Wheel) Total() float64 { return w.acc }

// Reset discards the accumulated delta.
func (w *Wheel) Reset() { w.acc = 0 }
