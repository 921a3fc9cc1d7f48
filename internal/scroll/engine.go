// Package scroll keeps a scroll container's offset aligned with the logical
// slide index of one navigation axis.
//
// The Engine never touches the container itself. It computes where the
// container should go and returns a Command; the view applies it, either by
// jumping or by animating with an Animator, and reports back with Settle once
// the guard window has elapsed.
package scroll

import (
	"sync"
	"time"

	"github.com/abelbrown/moments/internal/logging"
)

// DefaultSmoothWindow is the guard window of a smooth scroll.
const DefaultSmoothWindow = 400 * time.Millisecond

// Axis identifies a navigation axis.
type Axis int

const (
	Vertical Axis = iota
	Horizontal
)

func (a Axis) String() string {
	if a == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// Rect is a rendered region in terminal cells.
type Rect struct {
	Top, Left     int
	Width, Height int
}

func (r Rect) start(a Axis) int {
	if a == Horizontal {
		return r.Left
	}
	return r.Top
}

// Layout reports where the container and its slides currently are.
type Layout interface {
	Container() Rect
	// Element returns the rect of the index-th slide, or false if it is not
	// rendered.
	Element(index int) (Rect, bool)
	ScrollOffset() int
}

// Notifier brackets every programmatic scroll. Calls are fire-and-forget.
type Notifier interface {
	TriggerStop()
	ResetStop()
}

type nopNotifier struct{}

func (nopNotifier) TriggerStop() {}
func (nopNotifier) ResetStop()   {}

// Command is a scroll the view must perform.
type Command struct {
	Axis   Axis
	Index  int
	Offset int
	Smooth bool
	// Gen identifies the guarded scroll for Settle. Zero for snaps, which are
	// not guarded.
	Gen uint64
	// Settle is how long the view waits before calling Engine.Settle.
	Settle time.Duration
}

// Engine drives one axis.
type Engine struct {
	axis     Axis
	machine  Machine
	notifier Notifier
	window   time.Duration
	now      func() time.Time

	mu      sync.Mutex
	layout  Layout
	index   int
	mounted bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithNotifier sets the playback notifier.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) {
		if n != nil {
			e.notifier = n
		}
	}
}

// WithSmoothWindow overrides the guard window of smooth scrolls.
func WithSmoothWindow(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.window = d
		}
	}
}

// WithClock replaces time.Now. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an engine for axis. layout may be nil until the first
// render.
func NewEngine(axis Axis, layout Layout, opts ...Option) *Engine {
	e := &Engine{
		axis:     axis,
		notifier: nopNotifier{},
		window:   DefaultSmoothWindow,
		now:      time.Now,
		layout:   layout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Axis returns the engine's axis.
func (e *Engine) Axis() Axis { return e.axis }

// SetLayout replaces the layout after a render.
func (e *Engine) SetLayout(l Layout) {
	e.mu.Lock()
	e.layout = l
	e.mu.Unlock()
}

// Index returns the logical index the container is aligned to.
func (e *Engine) Index() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index
}

// SetIndex moves the logical index without scrolling, e.g. when the
// collection shrinks under it.
func (e *Engine) SetIndex(i int) {
	e.mu.Lock()
	e.index = i
	e.mu.Unlock()
}

// Busy reports whether a programmatic scroll is in its guard window.
func (e *Engine) Busy() bool {
	return e.machine.Busy(e.now())
}

// State returns the axis state.
func (e *Engine) State() State {
	return e.machine.State()
}

// ScrollTo starts a guarded scroll to index. It returns false without side
// effects if the slide is not rendered or a scroll is already in progress.
func (e *Engine) ScrollTo(index int, smooth bool) (Command, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	offset, ok := e.offsetLocked(index)
	if !ok {
		logging.Debug("scroll: slide not rendered", "axis", e.axis, "index", index)
		return Command{}, false
	}
	window := time.Duration(0)
	if smooth {
		window = e.window
	}
	gen, ok := e.machine.Begin(e.now(), window)
	if !ok {
		return Command{}, false
	}

	e.notifier.TriggerStop()
	e.index = index
	return Command{
		Axis:   e.axis,
		Index:  index,
		Offset: offset,
		Smooth: smooth,
		Gen:    gen,
		Settle: window,
	}, true
}

// Resize re-snaps to the current index without animation.
func (e *Engine) Resize() (Command, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapLocked(e.index)
}

// Mount snaps to the initial index once. Later calls return false.
func (e *Engine) Mount(initial int) (Command, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mounted {
		return Command{}, false
	}
	cmd, ok := e.snapLocked(initial)
	if ok {
		e.mounted = true
		e.index = initial
	}
	return cmd, ok
}

// Mounted reports whether the initial snap has happened.
func (e *Engine) Mounted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mounted
}

// Settle ends the scroll identified by gen. Playback resumes once the axis is
// idle. Reports whether the axis is idle afterwards.
func (e *Engine) Settle(gen uint64) bool {
	now := e.now()
	if gen != 0 && !e.machine.Settle(now, gen) {
		return false
	}
	if e.machine.Busy(now) {
		return false
	}
	e.notifier.ResetStop()
	return true
}

func (e *Engine) snapLocked(index int) (Command, bool) {
	offset, ok := e.offsetLocked(index)
	if !ok {
		return Command{}, false
	}
	e.notifier.TriggerStop()
	return Command{Axis: e.axis, Index: index, Offset: offset}, true
}

// offsetLocked is the container offset that brings slide index to the
// container's leading edge.
func (e *Engine) offsetLocked(index int) (int, bool) {
	if e.layout == nil {
		return 0, false
	}
	el, ok := e.layout.Element(index)
	if !ok {
		return 0, false
	}
	return el.start(e.axis) - e.layout.Container().start(e.axis) + e.layout.ScrollOffset(), true
}
