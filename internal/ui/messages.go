// Package ui provides the Bubble Tea TUI for moments.
package ui

import (
	"github.com/abelbrown/moments/internal/bus"
	"github.com/abelbrown/moments/internal/feed"
	"github.com/abelbrown/moments/internal/model"
	"github.com/abelbrown/moments/internal/scroll"
)

// SlidesLoaded is sent when a slide page fetch finishes.
type SlidesLoaded struct {
	Err error
}

// SubSlidesLoaded is sent when a story's sub-slide page fetch finishes.
type SubSlidesLoaded struct {
	Key string // slide key of the story
	Err error
}

// Reacted is sent when a reaction round trip finishes.
type Reacted struct {
	Reaction feed.Reaction
	Moment   model.Moment // the service's copy
	Err      error
}

// Deleted is sent when a delete round trip finishes.
type Deleted struct {
	ID  string
	Err error
}

// ScrollSettled is sent once a scroll's guard window has elapsed.
type ScrollSettled struct {
	Cmd scroll.Command
}

// AnimFrame advances the smooth scroll animation of one axis.
type AnimFrame struct {
	Axis scroll.Axis
}

// BusEvent wraps a change event from the feed's bus.
type BusEvent struct {
	Event bus.Event
}
