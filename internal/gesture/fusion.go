package gesture

import (
	"time"

	"github.com/abelbrown/moments/internal/scroll"
)

// Guard reports whether an axis is in a programmatic scroll.
type Guard interface {
	Busy(axis scroll.Axis) bool
}

// Fusion normalises every input source into Intents. It is not safe for
// concurrent use; the UI event loop owns it.
type Fusion struct {
	guard Guard
	wheel *Wheel
	swipe *SwipeRecognizer
	held  bool
}

// Option configures a Fusion.
type Option func(*Fusion)

// WithWheelThreshold sets the wheel step threshold.
func WithWheelThreshold(t float64) Option {
	return func(f *Fusion) { f.wheel = NewWheel(t) }
}

// WithSwipe sets the swipe thresholds.
func WithSwipe(cfg SwipeConfig) Option {
	return func(f *Fusion) { f.swipe = NewSwipeRecognizer(cfg) }
}

// New creates a Fusion gated by guard.
func New(guard Guard, opts ...Option) *Fusion {
	f := &Fusion{
		guard: guard,
		wheel: NewWheel(DefaultWheelThreshold),
		swipe: NewSwipeRecognizer(DefaultSwipeConfig()),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Key maps a key name (as bubbletea spells it) to an intent. Down and right
// advance, up and left retreat. Right and left move through sub-slides when
// the active slide has them, and through slides otherwise. While a key is
// held or the axis is scrolling, keys are dropped.
func (f *Fusion) Key(key string, ctx Context) (Intent, bool) {
	var in Intent
	switch key {
	case "down", "j":
		in = Intent{scroll.Vertical, Advance}
	case "up", "k":
		in = Intent{scroll.Vertical, Retreat}
	case "right", "l":
		in = Intent{f.sideAxis(ctx), Advance}
	case "left", "h":
		in = Intent{f.sideAxis(ctx), Retreat}
	default:
		return Intent{}, false
	}
	if f.held || f.busy(in.Axis) || !ctx.inBounds(in) {
		return Intent{}, false
	}
	f.held = true
	return in, true
}

// KeyUp clears the held-key guard.
func (f *Fusion) KeyUp() { f.held = false }

// Held reports whether the held-key guard is set.
func (f *Fusion) Held() bool { return f.held }

// Wheel feeds a vertical wheel delta.
func (f *Fusion) Wheel(deltaY float64, ctx Context) (Intent, bool) {
	if f.busy(scroll.Vertical) {
		return Intent{}, false
	}
	dir, ok := f.wheel.Feed(deltaY, ctx.Index, ctx.Length)
	if !ok {
		return Intent{}, false
	}
	in := Intent{scroll.Vertical, dir}
	return in, ctx.inBounds(in)
}

// Press starts a drag.
func (f *Fusion) Press(x, y int, at time.Time) {
	f.swipe.Press(x, y, at)
}

// Motion continues a drag.
func (f *Fusion) Motion(x, y int, at time.Time, ctx Context) (Intent, bool) {
	return f.fromSwipe(f.swipe.Move(x, y, at), ctx)
}

// Release ends a drag.
func (f *Fusion) Release(x, y int, at time.Time, ctx Context) (Intent, bool) {
	return f.fromSwipe(f.swipe.Release(x, y, at), ctx)
}

// Dragging reports whether a drag is in progress.
func (f *Fusion) Dragging() bool { return f.swipe.Active() }

// fromSwipe maps a drag to an intent. Dragging up pulls the next slide into
// view; dragging left pulls the next sub-slide.
func (f *Fusion) fromSwipe(s Swipe, ctx Context) (Intent, bool) {
	var in Intent
	switch s {
	case SwipeUp:
		in = Intent{scroll.Vertical, Advance}
	case SwipeDown:
		in = Intent{scroll.Vertical, Retreat}
	case SwipeLeft:
		in = Intent{scroll.Horizontal, Advance}
	case SwipeRight:
		in = Intent{scroll.Horizontal, Retreat}
	default:
		return Intent{}, false
	}
	if in.Axis == scroll.Horizontal && !ctx.horizontal() {
		return Intent{}, false
	}
	if f.busy(in.Axis) || !ctx.inBounds(in) {
		return Intent{}, false
	}
	return in, true
}

func (f *Fusion) sideAxis(ctx Context) scroll.Axis {
	if ctx.horizontal() {
		return scroll.Horizontal
	}
	return scroll.Vertical
}

func (f *Fusion) busy(a scroll.Axis) bool {
	return f.guard != nil && f.guard.Busy(a)
}
