// Package gesture turns keyboard, wheel and drag input into navigation
// intents: one advance or retreat step on one axis.
package gesture

import "github.com/abelbrown/moments/internal/scroll"

// Dir is the direction of a navigation step.
type Dir int

const (
	Advance Dir = 1
	Retreat Dir = -1
)

func (d Dir) String() string {
	if d == Retreat {
		return "retreat"
	}
	return "advance"
}

// Intent is one navigation step.
type Intent struct {
	Axis scroll.Axis
	Dir  Dir
}

// Context describes the position the intent applies to.
type Context struct {
	Index, Length       int
	SubIndex, SubLength int
	// Nested is set when the active slide has a sub-slide carousel.
	Nested bool
	// Comparison reserves horizontal drags for the comparison divider.
	Comparison bool
}

// horizontal reports whether the sub-slide axis accepts input.
func (c Context) horizontal() bool {
	return c.Nested && !c.Comparison
}

// inBounds reports whether the intent moves to an existing slide.
func (c Context) inBounds(in Intent) bool {
	index, length := c.Index, c.Length
	if in.Axis == scroll.Horizontal {
		index, length = c.SubIndex, c.SubLength
	}
	next := index + int(in.Dir)
	return next >= 0 && next < length
}
