package gesture

import (
	"math"
	"time"
)

// Swipe is a recognised drag direction.
type Swipe int

const (
	SwipeNone Swipe = iota
	SwipeUp
	SwipeDown
	SwipeLeft
	SwipeRight
)

func (s Swipe) String() string {
	switch s {
	case SwipeUp:
		return "up"
	case SwipeDown:
		return "down"
	case SwipeLeft:
		return "left"
	case SwipeRight:
		return "right"
	default:
		return "none"
	}
}

// SwipeConfig holds recognition thresholds in terminal cells.
type SwipeConfig struct {
	// MinDistance is the drag length that is always a swipe.
	MinDistance float64
	// MinVelocity (cells per second) lets a shorter, fast flick count.
	MinVelocity float64
	// CellAspect scales columns to rows; terminal cells are about twice as
	// tall as they are wide.
	CellAspect float64
}

// DefaultSwipeConfig suits a mouse drag in a typical terminal.
func DefaultSwipeConfig() SwipeConfig {
	return SwipeConfig{MinDistance: 4, MinVelocity: 20, CellAspect: 0.5}
}

// SwipeRecognizer reports at most one swipe per press.
type SwipeRecognizer struct {
	cfg SwipeConfig

	pressed bool
	fired   bool
	x0, y0  int
	t0      time.Time
}

// NewSwipeRecognizer creates a recognizer with cfg.
func NewSwipeRecognizer(cfg SwipeConfig) *SwipeRecognizer {
	if cfg.CellAspect <= 0 {
		cfg.CellAspect = 1
	}
	return &SwipeRecognizer{cfg: cfg}
}

// Press starts a drag.
func (r *SwipeRecognizer) Press(x, y int, at time.Time) {
	r.pressed = true
	r.fired = false
	r.x0, r.y0, r.t0 = x, y, at
}

// Move reports a swipe as soon as the drag crosses a threshold.
func (r *SwipeRecognizer) Move(x, y int, at time.Time) Swipe {
	if !r.pressed || r.fired {
		return SwipeNone
	}
	s := r.classify(x, y, at)
	if s != SwipeNone {
		r.fired = true
	}
	return s
}

// Release ends the drag, reporting a swipe if one was not reported yet.
func (r *SwipeRecognizer) Release(x, y int, at time.Time) Swipe {
	if !r.pressed {
		return SwipeNone
	}
	s := SwipeNone
	if !r.fired {
		s = r.classify(x, y, at)
	}
	r.pressed = false
	r.fired = false
	return s
}

// Active reports whether a drag is in progress.
func (r *SwipeRecognizer) Active() bool { return r.pressed }

func (r *SwipeRecognizer) classify(x, y int, at time.Time) Swipe {
	dx := float64(x-r.x0) * r.cfg.CellAspect
	dy := float64(y - r.y0)
	dist := math.Max(math.Abs(dx), math.Abs(dy))
	if dist == 0 {
		return SwipeNone
	}

	fast := false
	if secs := at.Sub(r.t0).Seconds(); secs > 0 {
		fast = dist/secs >= r.cfg.MinVelocity && dist >= r.cfg.MinDistance/2
	}
	if dist < r.cfg.MinDistance && !fast {
		return SwipeNone
	}

	if math.Abs(dx) > math.Abs(dy) {
		if dx < 0 {
			return SwipeLeft
		}
		return SwipeRight
	}
	if dy < 0 {
		return SwipeUp
	}
	return SwipeDown
}
