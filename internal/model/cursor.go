package model

import "time"

// Cursor is a keyset pagination position: the (created_at, id) pair of the
// last item already delivered. Feeds are traversed newest first, ties broken
// by descending id. The zero Cursor means "from the start".
type Cursor struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
}

// IsZero reports whether c is the start cursor.
func (c Cursor) IsZero() bool {
	return c.CreatedAt.IsZero() && c.ID == ""
}

// After reports whether c lies strictly further along the traversal than o.
// Every non-zero cursor is after the zero cursor.
func (c Cursor) After(o Cursor) bool {
	if c.IsZero() {
		return false
	}
	if o.IsZero() {
		return true
	}
	if c.CreatedAt.Before(o.CreatedAt) {
		return true
	}
	return c.CreatedAt.Equal(o.CreatedAt) && c.ID < o.ID
}

// Page is one response batch of a keyset-paginated collection.
type Page[T any] struct {
	Items   []T
	HasNext bool
	Next    Cursor
}
