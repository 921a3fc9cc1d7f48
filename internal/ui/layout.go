package ui

import (
	"github.com/abelbrown/moments/internal/feed"
	"github.com/abelbrown/moments/internal/scroll"
)

// stage is the scroll container: every slide is one full cell of the
// viewport, stacked vertically, and a story's sub-slides are cells laid out
// horizontally. It is shared by pointer between App copies.
type stage struct {
	width, height int // one slide cell

	vertical   *scroll.Animator
	horizontal *scroll.Animator
	running    map[scroll.Axis]bool

	// subKey is the story whose row the horizontal animator belongs to.
	subKey string

	pending  int // fetches in flight
	spinning bool
}

func newStage() *stage {
	return &stage{
		vertical:   scroll.NewAnimator(),
		horizontal: scroll.NewAnimator(),
		running:    make(map[scroll.Axis]bool),
	}
}

func (s *stage) animator(axis scroll.Axis) *scroll.Animator {
	if axis == scroll.Horizontal {
		return s.horizontal
	}
	return s.vertical
}

func (s *stage) done() {
	s.pending = max(s.pending-1, 0)
}

// subPosition is the sub-slide cell currently under the horizontal offset.
func (s *stage) subPosition() int {
	if s.width <= 0 {
		return 0
	}
	return (s.horizontal.Offset() + s.width/2) / s.width
}

// columnLayout reports slide cells stacked top to bottom.
type columnLayout struct {
	st   *stage
	ctrl *feed.Controller
}

func (l columnLayout) Container() scroll.Rect {
	return scroll.Rect{Width: l.st.width, Height: l.st.height}
}

func (l columnLayout) Element(i int) (scroll.Rect, bool) {
	if i < 0 || i >= l.ctrl.Len() {
		return scroll.Rect{}, false
	}
	return scroll.Rect{
		Top:    i*l.st.height - l.ScrollOffset(),
		Width:  l.st.width,
		Height: l.st.height,
	}, true
}

func (l columnLayout) ScrollOffset() int { return l.st.vertical.Offset() }

// rowLayout reports the active story's sub-slide cells left to right.
type rowLayout struct {
	st   *stage
	ctrl *feed.Controller
}

func (l rowLayout) Container() scroll.Rect {
	return scroll.Rect{Width: l.st.width, Height: l.st.height}
}

func (l rowLayout) Element(i int) (scroll.Rect, bool) {
	s, ok := l.ctrl.Active()
	if !ok || i < 0 || i >= len(l.ctrl.SubSlides(s.Key())) {
		return scroll.Rect{}, false
	}
	return scroll.Rect{
		Left:   i*l.st.width - l.ScrollOffset(),
		Width:  l.st.width,
		Height: l.st.height,
	}, true
}

func (l rowLayout) ScrollOffset() int { return l.st.horizontal.Offset() }
