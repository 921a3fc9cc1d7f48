// Package pager implements a keyset-paginated, append-only collection.
//
// A Pager owns one collection (the slide feed, or the moments of one story),
// its forward-only cursor and its in-flight flag. It is the sole owner of the
// truth for "is a fetch in flight": the flag is checked and set under the
// pager's mutex with no suspension point between check and set.
//
// # Stale responses
//
// Every fetch records the pager's generation when it starts. Reset and target
// changes bump the generation, so a response that arrives after the
// collection was discarded is dropped instead of being committed.
package pager

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/abelbrown/moments/internal/bus"
	"github.com/abelbrown/moments/internal/logging"
	"github.com/abelbrown/moments/internal/model"
)

// DefaultPageSize is used when FetchOptions.Size is not set.
const DefaultPageSize = 16

// ErrStale is returned when a response arrives for a collection that has been
// reset since the request was issued. The response is discarded.
var ErrStale = errors.New("stale page discarded")

// Identified is implemented by collection items.
type Identified interface {
	Key() string
}

// FetchFunc loads the page after cursor for target.
type FetchFunc[T any] func(ctx context.Context, target string, cursor model.Cursor, size int) (model.Page[T], error)

// FetchOptions controls a single FetchPage call.
type FetchOptions struct {
	Size  int
	Reset bool
}

// State is a snapshot of the pagination bookkeeping.
type State struct {
	Target         string
	Cursor         model.Cursor
	HasNext        bool
	HasFetchedOnce bool
	IsFetching     bool
	Generation     uint64
}

// Pager is a keyset-paginated collection. Safe for concurrent use.
type Pager[T Identified] struct {
	name        string
	fetch       FetchFunc[T]
	bus         *bus.Bus
	kind        bus.Kind
	defaultSize int

	mu    sync.Mutex
	items []T
	pos   map[string]int // key -> index into items
	state State
}

// Option configures a Pager.
type Option func(*options)

type options struct {
	bus         *bus.Bus
	kind        bus.Kind
	defaultSize int
}

// WithBus publishes an event of the given kind after every committed change.
func WithBus(b *bus.Bus, kind bus.Kind) Option {
	return func(o *options) {
		o.bus = b
		o.kind = kind
	}
}

// WithPageSize sets the size used when FetchOptions.Size is zero.
func WithPageSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.defaultSize = n
		}
	}
}

// New creates an empty pager. name is used in logs and errors.
func New[T Identified](name string, fetch FetchFunc[T], opts ...Option) *Pager[T] {
	o := options{kind: bus.SlidesChanged, defaultSize: DefaultPageSize}
	for _, opt := range opts {
		opt(&o)
	}
	return &Pager[T]{
		name:        name,
		fetch:       fetch,
		bus:         o.bus,
		kind:        o.kind,
		defaultSize: o.defaultSize,
		pos:         make(map[string]int),
	}
}

// FetchPage loads the next page for target and appends it.
//
// A target different from the current one, or opts.Reset, discards the
// collection first. The call is a no-op returning false while another fetch
// is in flight, and a no-op returning true once the collection is exhausted.
// On failure the in-flight flag is cleared and (false, err) is returned; there
// is no retry.
func (p *Pager[T]) FetchPage(ctx context.Context, target string, opts FetchOptions) (bool, error) {
	size := opts.Size
	if size <= 0 {
		size = p.defaultSize
	}

	p.mu.Lock()
	cleared := false
	if opts.Reset || target != p.state.Target {
		cleared = p.resetLocked(target)
	}
	if p.state.IsFetching {
		p.mu.Unlock()
		return false, nil
	}
	if p.state.HasFetchedOnce && !p.state.HasNext {
		p.mu.Unlock()
		return true, nil
	}
	p.state.IsFetching = true
	gen := p.state.Generation
	cursor := p.state.Cursor
	p.mu.Unlock()

	if cleared {
		p.publish(target, 0)
	}

	page, err := p.fetch(ctx, target, cursor, size)
	return p.commit(target, gen, page, err)
}

// Load performs the first fetch for target. It is a no-op when target is
// unchanged and a fetch has already completed, so remounting a view does not
// refetch.
func (p *Pager[T]) Load(ctx context.Context, target string, size int) (bool, error) {
	p.mu.Lock()
	loaded := p.state.Target == target && p.state.HasFetchedOnce
	p.mu.Unlock()
	if loaded {
		return true, nil
	}
	return p.FetchPage(ctx, target, FetchOptions{Size: size})
}

// Seed commits an already-fetched first page for target, as if FetchPage had
// returned it. It does nothing if target already has data.
func (p *Pager[T]) Seed(target string, page model.Page[T]) {
	p.mu.Lock()
	if p.state.Target == target && (p.state.HasFetchedOnce || p.state.IsFetching) {
		p.mu.Unlock()
		return
	}
	p.resetLocked(target)
	p.state.IsFetching = true
	gen := p.state.Generation
	p.mu.Unlock()

	_, _ = p.commit(target, gen, page, nil)
}

func (p *Pager[T]) commit(target string, gen uint64, page model.Page[T], err error) (bool, error) {
	p.mu.Lock()
	if gen != p.state.Generation {
		p.mu.Unlock()
		logging.Debug("pager: dropping stale page", "pager", p.name, "target", target)
		return false, ErrStale
	}
	p.state.IsFetching = false
	if err != nil {
		p.mu.Unlock()
		logging.Warn("pager: fetch failed", "pager", p.name, "target", target, "error", err)
		return false, fmt.Errorf("fetch %s page: %w", p.name, err)
	}

	appended := 0
	for _, item := range page.Items {
		k := item.Key()
		if _, dup := p.pos[k]; dup {
			continue
		}
		p.pos[k] = len(p.items)
		p.items = append(p.items, item)
		appended++
	}
	if page.Next.After(p.state.Cursor) {
		p.state.Cursor = page.Next
	}
	p.state.HasNext = page.HasNext
	p.state.HasFetchedOnce = true
	count := len(p.items)
	p.mu.Unlock()

	logging.Debug("pager: page committed", "pager", p.name, "target", target,
		"received", len(page.Items), "appended", appended, "total", count, "has_next", page.HasNext)
	p.publish(target, count)
	return true, nil
}

// Reset discards the collection and binds the pager to target.
func (p *Pager[T]) Reset(target string) {
	p.mu.Lock()
	cleared := p.resetLocked(target)
	p.mu.Unlock()
	if cleared {
		p.publish(target, 0)
	}
}

// resetLocked clears the collection and reports whether it held any items.
func (p *Pager[T]) resetLocked(target string) bool {
	had := len(p.items) > 0
	p.items = nil
	p.pos = make(map[string]int)
	p.state = State{Target: target, Generation: p.state.Generation + 1}
	return had
}

// Update replaces the item with the given key by fn(item). Reports whether
// the key was present.
func (p *Pager[T]) Update(key string, fn func(T) T) bool {
	p.mu.Lock()
	i, ok := p.pos[key]
	if !ok {
		p.mu.Unlock()
		return false
	}
	p.items[i] = fn(p.items[i])
	target, count := p.state.Target, len(p.items)
	p.mu.Unlock()

	p.publish(target, count)
	return true
}

// UpdateAll applies fn to every item and reports how many changed.
func (p *Pager[T]) UpdateAll(fn func(T) (T, bool)) int {
	p.mu.Lock()
	changed := 0
	for i := range p.items {
		if next, ok := fn(p.items[i]); ok {
			p.items[i] = next
			changed++
		}
	}
	target, count := p.state.Target, len(p.items)
	p.mu.Unlock()

	if changed > 0 {
		p.publish(target, count)
	}
	return changed
}

// Remove deletes the item with the given key. The cursor is left alone.
func (p *Pager[T]) Remove(key string) bool {
	p.mu.Lock()
	i, ok := p.pos[key]
	if !ok {
		p.mu.Unlock()
		return false
	}
	p.items = append(p.items[:i], p.items[i+1:]...)
	delete(p.pos, key)
	for j := i; j < len(p.items); j++ {
		p.pos[p.items[j].Key()] = j
	}
	target, count := p.state.Target, len(p.items)
	p.mu.Unlock()

	p.publish(target, count)
	return true
}

// Items returns a copy of the collection in order.
func (p *Pager[T]) Items() []T {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]T, len(p.items))
	copy(out, p.items)
	return out
}

// At returns the item at index i.
func (p *Pager[T]) At(i int) (T, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i < 0 || i >= len(p.items) {
		var zero T
		return zero, false
	}
	return p.items[i], true
}

// IndexOf returns the position of key, or -1.
func (p *Pager[T]) IndexOf(key string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i, ok := p.pos[key]; ok {
		return i
	}
	return -1
}

// Len returns the number of items.
func (p *Pager[T]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}

// State returns a snapshot of the pagination state.
func (p *Pager[T]) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pager[T]) publish(target string, count int) {
	p.bus.Publish(bus.Event{Kind: p.kind, Scope: target, Count: count})
}
