// Package feed composes the feed's state containers into one controller.
//
// The controller owns the slide pager, the story carousel, one scroll engine
// per axis, the input fusion layer and the look-ahead triggers. Input flows
// in one direction: input -> intent -> scroll command -> index change ->
// prefetch evaluation. The controller performs no I/O on its own event path;
// it returns Effects and the caller runs the fetches and scrolls they name.
//
// Methods other than Load, Refresh, FetchMore, FetchSubSlides, React and
// Delete must be called from a single goroutine (the UI event loop). Those six
// may run concurrently with it.
package feed

import (
	"context"
	"sync"
	"time"

	"github.com/abelbrown/moments/internal/bus"
	"github.com/abelbrown/moments/internal/carousel"
	"github.com/abelbrown/moments/internal/gesture"
	"github.com/abelbrown/moments/internal/logging"
	"github.com/abelbrown/moments/internal/model"
	"github.com/abelbrown/moments/internal/pager"
	"github.com/abelbrown/moments/internal/playback"
	"github.com/abelbrown/moments/internal/prefetch"
	"github.com/abelbrown/moments/internal/scroll"
)

// Config holds the controller's tunables.
type Config struct {
	PageSize       int
	SubPageSize    int
	Threshold      int
	WheelThreshold float64
	SmoothWindow   time.Duration
	Swipe          gesture.SwipeConfig
}

// DefaultConfig returns the stock tunables.
func DefaultConfig() Config {
	return Config{
		PageSize:       pager.DefaultPageSize,
		SubPageSize:    8,
		Threshold:      prefetch.DefaultThreshold,
		WheelThreshold: gesture.DefaultWheelThreshold,
		SmoothWindow:   scroll.DefaultSmoothWindow,
		Swipe:          gesture.DefaultSwipeConfig(),
	}
}

// Effects are the side effects an input produced.
type Effects struct {
	// Scroll commands to apply to the view, in order.
	Scroll []scroll.Command
	// FetchMore asks for the next page of slides.
	FetchMore bool
	// FetchSub names the story slide whose next sub-slide page is due.
	FetchSub string
	// Changed is set when the active slide or sub-slide changed.
	Changed bool
}

func (e *Effects) merge(o Effects) {
	e.Scroll = append(e.Scroll, o.Scroll...)
	e.FetchMore = e.FetchMore || o.FetchMore
	if o.FetchSub != "" {
		e.FetchSub = o.FetchSub
	}
	e.Changed = e.Changed || o.Changed
}

// Controller is the feed's composition root.
type Controller struct {
	svc Service
	bus *bus.Bus
	cfg Config

	slides     *pager.Pager[model.Slide]
	carousel   *carousel.Carousel
	vertical   *scroll.Engine
	horizontal *scroll.Engine
	fusion     *gesture.Fusion
	trigger    *prefetch.Trigger
	playback   *playback.Coordinator

	mu     sync.Mutex
	target string
	// gen is the slide pager generation positional state belongs to.
	gen uint64
}

// Option configures a Controller.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now in the scroll engines. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New creates a controller for svc. Events are published on b, which must not
// be nil.
func New(svc Service, b *bus.Bus, cfg Config, opts ...Option) *Controller {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = pager.DefaultPageSize
	}
	if cfg.SubPageSize <= 0 {
		cfg.SubPageSize = cfg.PageSize
	}

	c := &Controller{
		svc:      svc,
		bus:      b,
		cfg:      cfg,
		trigger:  prefetch.New(cfg.Threshold),
		playback: playback.New(b),
	}
	c.slides = pager.New[model.Slide]("slides", svc.FetchSlides,
		pager.WithBus(b, bus.SlidesChanged),
		pager.WithPageSize(cfg.PageSize))
	c.carousel = carousel.New(svc.FetchStoryMoments, b, cfg.SubPageSize, cfg.Threshold)
	c.vertical = scroll.NewEngine(scroll.Vertical, nil,
		scroll.WithNotifier(playback.Notifier(b, scroll.Vertical)),
		scroll.WithSmoothWindow(cfg.SmoothWindow),
		scroll.WithClock(o.now))
	c.horizontal = scroll.NewEngine(scroll.Horizontal, nil,
		scroll.WithNotifier(playback.Notifier(b, scroll.Horizontal)),
		scroll.WithSmoothWindow(cfg.SmoothWindow),
		scroll.WithClock(o.now))
	c.fusion = gesture.New(c,
		gesture.WithWheelThreshold(cfg.WheelThreshold),
		gesture.WithSwipe(cfg.Swipe))

	b.Handle(c.sync)
	return c
}

// Busy reports whether axis is in a programmatic scroll. It makes the
// controller the fusion layer's guard.
func (c *Controller) Busy(axis scroll.Axis) bool {
	return c.engine(axis).Busy()
}

func (c *Controller) engine(axis scroll.Axis) *scroll.Engine {
	if axis == scroll.Horizontal {
		return c.horizontal
	}
	return c.vertical
}

// SetLayout installs the rendered layout of axis.
func (c *Controller) SetLayout(axis scroll.Axis, l scroll.Layout) {
	c.engine(axis).SetLayout(l)
}

// Target returns the feed being shown.
func (c *Controller) Target() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

// SetTarget switches to another feed. Everything positional is discarded;
// the caller follows up with Load. Reports whether the target changed.
func (c *Controller) SetTarget(target string) bool {
	c.mu.Lock()
	if target == c.target {
		c.mu.Unlock()
		return false
	}
	c.target = target
	c.mu.Unlock()

	logging.Info("feed: target changed", "target", target)
	c.slides.Reset(target)
	c.resetPosition()
	c.mu.Lock()
	c.gen = c.slides.State().Generation
	c.mu.Unlock()
	return true
}

func (c *Controller) resetPosition() {
	c.carousel.Reset()
	c.trigger.Reset()
	c.vertical.SetIndex(0)
	c.horizontal.SetIndex(0)
	c.fusion.KeyUp()
}

// Load performs the first fetch of the current target. Remounting with an
// unchanged target does not refetch.
func (c *Controller) Load(ctx context.Context) (bool, error) {
	return c.slides.Load(ctx, c.Target(), c.cfg.PageSize)
}

// Refresh discards the feed and loads it again from the start. The next
// Synced rewinds the index, the story rows and the look-ahead state.
func (c *Controller) Refresh(ctx context.Context) (bool, error) {
	return c.slides.FetchPage(ctx, c.Target(), pager.FetchOptions{Size: c.cfg.PageSize, Reset: true})
}

// FetchMore loads the next page of slides.
func (c *Controller) FetchMore(ctx context.Context) (bool, error) {
	return c.slides.FetchPage(ctx, c.Target(), pager.FetchOptions{Size: c.cfg.PageSize})
}

// FetchSubSlides loads the next sub-slide page of the story slide slideKey.
func (c *Controller) FetchSubSlides(ctx context.Context, slideKey string) (bool, error) {
	return c.carousel.FetchMore(ctx, slideKey)
}

// Synced brings positional state in line with the collections after a fetch
// or mutation committed, and evaluates both look-ahead triggers. A feed that
// was discarded since the last call starts over from the first slide.
func (c *Controller) Synced() Effects {
	gen := c.slides.State().Generation
	c.mu.Lock()
	rewound := gen != c.gen
	c.gen = gen
	c.mu.Unlock()
	if rewound {
		c.resetPosition()
	}

	n := c.slides.Len()
	switch idx := c.vertical.Index(); {
	case n == 0:
		c.vertical.SetIndex(0)
	case idx >= n:
		c.vertical.SetIndex(n - 1)
	}

	for _, s := range c.slides.Items() {
		if story, ok := s.(model.StorySlide); ok {
			c.carousel.Attach(story)
		}
	}
	if key, ok := c.activeStoryKey(); ok {
		sub := c.carousel.Index(key)
		if l := c.carousel.Len(key); sub >= l && l > 0 {
			c.carousel.SetIndex(key, l-1)
		}
		c.horizontal.SetIndex(c.carousel.Index(key))
	}
	return c.evaluate()
}

// Mount performs the one-shot initial snap of the vertical axis.
func (c *Controller) Mount() Effects {
	var fx Effects
	if cmd, ok := c.vertical.Mount(c.vertical.Index()); ok {
		fx.Scroll = append(fx.Scroll, cmd)
	}
	return fx
}

// Mounted reports whether the initial snap happened.
func (c *Controller) Mounted() bool {
	return c.vertical.Mounted()
}

// Resize re-snaps both axes to their current index.
func (c *Controller) Resize() Effects {
	var fx Effects
	if cmd, ok := c.vertical.Resize(); ok {
		fx.Scroll = append(fx.Scroll, cmd)
	}
	if _, ok := c.activeStoryKey(); ok {
		if cmd, ok := c.horizontal.Resize(); ok {
			fx.Scroll = append(fx.Scroll, cmd)
		}
	}
	return fx
}

// Settle reports the end of a scroll's guard window. Terminals send no key-up
// events, so an idle axis also releases the held-key guard.
func (c *Controller) Settle(cmd scroll.Command) bool {
	idle := c.engine(cmd.Axis).Settle(cmd.Gen)
	if idle {
		c.fusion.KeyUp()
	}
	return idle
}

// Key feeds a key press.
func (c *Controller) Key(key string) Effects {
	in, ok := c.fusion.Key(key, c.Context())
	if !ok {
		return Effects{}
	}
	fx := c.Apply(in)
	if len(fx.Scroll) == 0 {
		c.fusion.KeyUp()
	}
	return fx
}

// KeyUp clears the held-key guard.
func (c *Controller) KeyUp() { c.fusion.KeyUp() }

// Wheel feeds a vertical wheel delta.
func (c *Controller) Wheel(deltaY float64) Effects {
	in, ok := c.fusion.Wheel(deltaY, c.Context())
	if !ok {
		return Effects{}
	}
	return c.Apply(in)
}

// Press starts a drag.
func (c *Controller) Press(x, y int, at time.Time) {
	c.fusion.Press(x, y, at)
}

// Motion continues a drag.
func (c *Controller) Motion(x, y int, at time.Time) Effects {
	in, ok := c.fusion.Motion(x, y, at, c.Context())
	if !ok {
		return Effects{}
	}
	return c.Apply(in)
}

// Release ends a drag.
func (c *Controller) Release(x, y int, at time.Time) Effects {
	in, ok := c.fusion.Release(x, y, at, c.Context())
	if !ok {
		return Effects{}
	}
	return c.Apply(in)
}

// Dragging reports whether a drag is in progress.
func (c *Controller) Dragging() bool { return c.fusion.Dragging() }

// Apply executes one intent. Out-of-range intents and intents dropped by the
// scroll guard produce no effects.
func (c *Controller) Apply(in gesture.Intent) Effects {
	if in.Axis == scroll.Horizontal {
		return c.applySub(in.Dir)
	}

	next := c.vertical.Index() + int(in.Dir)
	if next < 0 || next >= c.slides.Len() {
		return Effects{}
	}
	cmd, ok := c.vertical.ScrollTo(next, true)
	if !ok {
		return Effects{}
	}
	c.bus.Publish(bus.Event{Kind: bus.IndexChanged, Scope: scroll.Vertical.String(), Index: next})
	if key, ok := c.activeStoryKey(); ok {
		c.horizontal.SetIndex(c.carousel.Index(key))
	}

	fx := Effects{Scroll: []scroll.Command{cmd}, Changed: true}
	fx.merge(c.evaluate())
	return fx
}

func (c *Controller) applySub(dir gesture.Dir) Effects {
	key, ok := c.activeStoryKey()
	if !ok {
		return Effects{}
	}
	next, ok := c.carousel.Target(key, int(dir))
	if !ok {
		return Effects{}
	}
	cmd, ok := c.horizontal.ScrollTo(next, true)
	if !ok {
		return Effects{}
	}
	c.carousel.SetIndex(key, next)
	c.bus.Publish(bus.Event{Kind: bus.IndexChanged, Scope: scroll.Horizontal.String(), Index: next})

	fx := Effects{Scroll: []scroll.Command{cmd}, Changed: true}
	fx.merge(c.evaluate())
	return fx
}

// evaluate runs the look-ahead triggers of the feed and of the active story.
func (c *Controller) evaluate() Effects {
	var fx Effects
	st := c.slides.State()
	fx.FetchMore = c.trigger.Evaluate(prefetch.Window{
		Index:       c.vertical.Index(),
		Loaded:      c.slides.Len(),
		HasNext:     st.HasNext,
		FetchedOnce: st.HasFetchedOnce,
		Fetching:    st.IsFetching,
	})
	if key, ok := c.activeStoryKey(); ok && c.carousel.NeedsMore(key) {
		fx.FetchSub = key
	}
	return fx
}

// Context describes the current position for the fusion layer.
func (c *Controller) Context() gesture.Context {
	ctx := gesture.Context{
		Index:  c.vertical.Index(),
		Length: c.slides.Len(),
	}
	s, ok := c.Active()
	if !ok {
		return ctx
	}
	switch s := s.(type) {
	case model.StorySlide:
		key := s.Key()
		ctx.Nested = true
		ctx.Comparison = s.Story.Comparison
		ctx.SubIndex = c.carousel.Index(key)
		ctx.SubLength = c.carousel.Len(key)
	case model.MomentSlide:
	}
	return ctx
}

// Index is the active slide position.
func (c *Controller) Index() int { return c.vertical.Index() }

// Len is the number of loaded slides.
func (c *Controller) Len() int { return c.slides.Len() }

// Slides returns the loaded slides in order.
func (c *Controller) Slides() []model.Slide { return c.slides.Items() }

// State returns the slide pager's state.
func (c *Controller) State() pager.State { return c.slides.State() }

// Active returns the active slide.
func (c *Controller) Active() (model.Slide, bool) {
	return c.slides.At(c.vertical.Index())
}

// SubSlides returns the loaded sub-slides of a story slide.
func (c *Controller) SubSlides(slideKey string) []model.Moment {
	if p, ok := c.carousel.Pager(slideKey); ok {
		return p.Items()
	}
	return nil
}

// SubIndex returns the active sub-slide position of a story slide.
func (c *Controller) SubIndex(slideKey string) int { return c.carousel.Index(slideKey) }

// SubState returns the pager state of a story slide's sub-slides.
func (c *Controller) SubState(slideKey string) (pager.State, bool) {
	p, ok := c.carousel.Pager(slideKey)
	if !ok {
		return pager.State{}, false
	}
	return p.State(), true
}

// ActiveMoment returns the moment on screen: the moment slide itself, or the
// active sub-slide of a story.
func (c *Controller) ActiveMoment() (model.Moment, bool) {
	s, ok := c.Active()
	if !ok {
		return model.Moment{}, false
	}
	switch s := s.(type) {
	case model.MomentSlide:
		return s.Moment, true
	case model.StorySlide:
		if m, ok := c.carousel.Current(s.Key()); ok {
			return m, true
		}
		if len(s.Moments) > 0 {
			return s.Moments[0], true
		}
	}
	return model.Moment{}, false
}

// Playing reports whether media may play (no programmatic scroll running).
func (c *Controller) Playing() bool { return c.playback.Playing() }

func (c *Controller) activeStoryKey() (string, bool) {
	s, ok := c.Active()
	if !ok {
		return "", false
	}
	switch s := s.(type) {
	case model.StorySlide:
		return s.Key(), true
	case model.MomentSlide:
	}
	return "", false
}
