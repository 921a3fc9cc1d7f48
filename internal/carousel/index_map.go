package carousel

import "sync"

// IndexMap tracks the active sub-slide position per slide key.
// Absent keys read as 0. Set does not clamp; callers bounds-check first.
type IndexMap struct {
	mu sync.RWMutex
	m  map[string]int
}

// NewIndexMap creates an empty map.
func NewIndexMap() *IndexMap {
	return &IndexMap{m: make(map[string]int)}
}

// Get returns the position for slideKey, or 0 if it was never set.
func (x *IndexMap) Get(slideKey string) int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.m[slideKey]
}

// Set records the position for slideKey.
func (x *IndexMap) Set(slideKey string, index int) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.m[slideKey] = index
}

// Len returns the number of touched slides.
func (x *IndexMap) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.m)
}

// Clear drops every entry.
func (x *IndexMap) Clear() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.m = make(map[string]int)
}
