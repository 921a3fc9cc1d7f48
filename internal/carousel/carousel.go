// Package carousel holds the nested sub-slide state of story slides: the
// active position within each story and one keyset pager per story.
package carousel

import (
	"context"
	"sync"

	"github.com/abelbrown/moments/internal/bus"
	"github.com/abelbrown/moments/internal/model"
	"github.com/abelbrown/moments/internal/pager"
	"github.com/abelbrown/moments/internal/prefetch"
)

// Carousel owns the sub-slide sequences of every story slide it has seen.
// Safe for concurrent use.
type Carousel struct {
	indexes   *IndexMap
	fetch     pager.FetchFunc[model.Moment]
	bus       *bus.Bus
	pageSize  int
	threshold int

	mu       sync.Mutex
	pagers   map[string]*pager.Pager[model.Moment] // slide key -> sub-slide pager
	triggers map[string]*prefetch.Trigger
}

// New creates a carousel that loads further sub-slides with fetch.
func New(fetch pager.FetchFunc[model.Moment], b *bus.Bus, pageSize, threshold int) *Carousel {
	return &Carousel{
		indexes:   NewIndexMap(),
		fetch:     fetch,
		bus:       b,
		pageSize:  pageSize,
		threshold: threshold,
		pagers:    make(map[string]*pager.Pager[model.Moment]),
		triggers:  make(map[string]*prefetch.Trigger),
	}
}

// Attach returns the sub-slide pager for s, creating it and seeding it with
// the story's embedded first batch on first use.
func (c *Carousel) Attach(s model.StorySlide) *pager.Pager[model.Moment] {
	key := s.Key()
	c.mu.Lock()
	p, ok := c.pagers[key]
	if !ok {
		p = pager.New("story", c.fetch,
			pager.WithBus(c.bus, bus.SubSlidesChanged),
			pager.WithPageSize(c.pageSize))
		c.pagers[key] = p
		c.triggers[key] = prefetch.New(c.threshold)
	}
	c.mu.Unlock()

	if !ok {
		p.Seed(s.Story.ID, s.FirstPage())
	}
	return p
}

// Pager returns the sub-slide pager for slideKey, if attached.
func (c *Carousel) Pager(slideKey string) (*pager.Pager[model.Moment], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pagers[slideKey]
	return p, ok
}

// Index returns the active sub-slide position of slideKey (0 if untouched).
func (c *Carousel) Index(slideKey string) int {
	return c.indexes.Get(slideKey)
}

// Len returns the number of loaded sub-slides of slideKey.
func (c *Carousel) Len(slideKey string) int {
	if p, ok := c.Pager(slideKey); ok {
		return p.Len()
	}
	return 0
}

// Target returns the sub-slide index Next or Prev would move to, and whether
// the move stays within bounds.
func (c *Carousel) Target(slideKey string, delta int) (int, bool) {
	next := c.indexes.Get(slideKey) + delta
	if next < 0 || next >= c.Len(slideKey) {
		return 0, false
	}
	return next, true
}

// SetIndex records the active position. Callers bounds-check via Target.
func (c *Carousel) SetIndex(slideKey string, index int) {
	c.indexes.Set(slideKey, index)
}

// Next moves one sub-slide forward. No-op at the end.
func (c *Carousel) Next(slideKey string) bool {
	return c.step(slideKey, 1)
}

// Prev moves one sub-slide back. No-op at the start.
func (c *Carousel) Prev(slideKey string) bool {
	return c.step(slideKey, -1)
}

func (c *Carousel) step(slideKey string, delta int) bool {
	next, ok := c.Target(slideKey, delta)
	if !ok {
		return false
	}
	c.indexes.Set(slideKey, next)
	return true
}

// Current returns the active sub-slide of slideKey.
func (c *Carousel) Current(slideKey string) (model.Moment, bool) {
	p, ok := c.Pager(slideKey)
	if !ok {
		return model.Moment{}, false
	}
	return p.At(c.indexes.Get(slideKey))
}

// NeedsMore evaluates the look-ahead trigger of slideKey's sub-slide sequence.
func (c *Carousel) NeedsMore(slideKey string) bool {
	c.mu.Lock()
	p, ok := c.pagers[slideKey]
	tr := c.triggers[slideKey]
	c.mu.Unlock()
	if !ok {
		return false
	}
	st := p.State()
	c.mu.Lock()
	defer c.mu.Unlock()
	return tr.Evaluate(prefetch.Window{
		Index:       c.indexes.Get(slideKey),
		Loaded:      p.Len(),
		HasNext:     st.HasNext,
		FetchedOnce: st.HasFetchedOnce,
		Fetching:    st.IsFetching,
	})
}

// FetchMore loads the next sub-slide page of slideKey.
func (c *Carousel) FetchMore(ctx context.Context, slideKey string) (bool, error) {
	p, ok := c.Pager(slideKey)
	if !ok {
		return false, nil
	}
	return p.FetchPage(ctx, p.State().Target, pager.FetchOptions{Size: c.pageSize})
}

// UpdateMoment applies fn to the moment with id in every sequence holding it.
func (c *Carousel) UpdateMoment(id string, fn func(model.Moment) model.Moment) int {
	n := 0
	for _, p := range c.all() {
		if p.Update(id, fn) {
			n++
		}
	}
	return n
}

// RemoveMoment deletes the moment with id from every sequence, keeping each
// story's active position on a valid sub-slide.
func (c *Carousel) RemoveMoment(id string) int {
	n := 0
	c.mu.Lock()
	keys := make([]string, 0, len(c.pagers))
	for k := range c.pagers {
		keys = append(keys, k)
	}
	c.mu.Unlock()

	for _, k := range keys {
		p, ok := c.Pager(k)
		if !ok {
			continue
		}
		pos := p.IndexOf(id)
		if pos < 0 || !p.Remove(id) {
			continue
		}
		n++
		cur := c.indexes.Get(k)
		if pos < cur || cur >= p.Len() {
			cur--
		}
		if cur < 0 {
			cur = 0
		}
		c.indexes.Set(k, cur)
	}
	return n
}

// Reset drops all sub-slide state. Called when the outer feed resets.
func (c *Carousel) Reset() {
	c.mu.Lock()
	c.pagers = make(map[string]*pager.Pager[model.Moment])
	c.triggers = make(map[string]*prefetch.Trigger)
	c.mu.Unlock()
	c.indexes.Clear()
}

func (c *Carousel) all() []*pager.Pager[model.Moment] {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*pager.Pager[model.Moment], 0, len(c.pagers))
	for _, p := range c.pagers {
		out = append(out, p)
	}
	return out
}
