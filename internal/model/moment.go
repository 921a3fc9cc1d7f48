// Package model holds the domain types shared by the feed client, the store and
// the fixture server: moments, stories, the slide variant and keyset cursors.
package model

import "time"

// Media kinds a moment can carry.
const (
	MediaImage = "image"
	MediaVideo = "video"
	MediaAudio = "audio"
)

// Moment is a single posted media item with caption and reactions.
type Moment struct {
	ID         string         `json:"id"`
	AuthorID   string         `json:"author_id"`
	AuthorName string         `json:"author_name"`
	StoryID    string         `json:"story_id,omitempty"` // empty for standalone moments
	Caption    string         `json:"caption"`
	MediaKind  string         `json:"media_kind"`
	MediaURL   string         `json:"media_url"`
	Reactions  map[string]int `json:"reactions,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Key returns the moment id.
func (m Moment) Key() string {
	return m.ID
}

// Cursor returns the keyset position of this moment.
func (m Moment) Cursor() Cursor {
	return Cursor{CreatedAt: m.CreatedAt, ID: m.ID}
}

// Plays reports whether the moment has playable media (video or audio).
func (m Moment) Plays() bool {
	return m.MediaKind == MediaVideo || m.MediaKind == MediaAudio
}

// TotalReactions sums all reaction counts.
func (m Moment) TotalReactions() int {
	total := 0
	for _, n := range m.Reactions {
		total += n
	}
	return total
}

// WithReaction returns a copy of m with delta applied to the emoji count.
// Counts never go below zero; a zero count removes the emoji.
func (m Moment) WithReaction(emoji string, delta int) Moment {
	out := m
	out.Reactions = make(map[string]int, len(m.Reactions)+1)
	for k, v := range m.Reactions {
		out.Reactions[k] = v
	}
	n := out.Reactions[emoji] + delta
	if n <= 0 {
		delete(out.Reactions, emoji)
	} else {
		out.Reactions[emoji] = n
	}
	return out
}

// Visibility values for stories.
const (
	VisibilityPublic      = "public"
	VisibilityConnections = "connections"
	VisibilityPrivate     = "private"
)

// Story is a named, ordered collection of moments.
type Story struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	OwnerName   string    `json:"owner_name"`
	Title       string    `json:"title"`
	Visibility  string    `json:"visibility"`
	Comparison  bool      `json:"comparison"` // paired before/after display
	MomentCount int       `json:"moment_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// Cursor returns the keyset position of this story in a feed.
func (s Story) Cursor() Cursor {
	return Cursor{CreatedAt: s.CreatedAt, ID: s.ID}
}
