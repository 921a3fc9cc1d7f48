package scroll

import (
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
)

const (
	defaultFPS       = 60
	defaultFrequency = 7.0
	defaultDamping   = 1.0
)

// Animator moves an offset toward a target with a critically damped spring,
// one frame per Step.
type Animator struct {
	fps    int
	spring harmonica.Spring

	pos, vel float64
	target   float64
	active   bool
}

// NewAnimator creates an animator with the default spring.
func NewAnimator() *Animator {
	return NewAnimatorWith(defaultFPS, defaultFrequency, defaultDamping)
}

// NewAnimatorWith creates an animator with an explicit spring.
func NewAnimatorWith(fps int, frequency, damping float64) *Animator {
	if fps <= 0 {
		fps = defaultFPS
	}
	return &Animator{
		fps:    fps,
		spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, damping),
	}
}

// Frame is the delay between two Steps.
func (a *Animator) Frame() time.Duration {
	return time.Second / time.Duration(a.fps)
}

// Jump moves straight to offset and stops any animation.
func (a *Animator) Jump(offset int) {
	a.pos = float64(offset)
	a.target = a.pos
	a.vel = 0
	a.active = false
}

// Animate retargets the animation. The current velocity is kept so a
// retarget mid-flight stays smooth.
func (a *Animator) Animate(target int) {
	a.target = float64(target)
	a.active = math.Round(a.pos) != a.target || math.Abs(a.vel) >= 0.5
}

// Step advances one frame and returns the rounded offset and whether the
// animation is still running.
func (a *Animator) Step() (int, bool) {
	if !a.active {
		return a.Offset(), false
	}
	a.pos, a.vel = a.spring.Update(a.pos, a.vel, a.target)
	if math.Abs(a.pos-a.target) < 0.5 && math.Abs(a.vel) < 0.5 {
		a.pos = a.target
		a.vel = 0
		a.active = false
	}
	return a.Offset(), a.active
}

// Offset is the current rounded offset.
func (a *Animator) Offset() int {
	return int(math.Round(a.pos))
}

// Target is the offset being animated toward.
func (a *Animator) Target() int {
	return int(a.target)
}

// Active reports whether an animation is running.
func (a *Animator) Active() bool {
	return a.active
}
