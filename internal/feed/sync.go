package feed

import (
	"context"
	"fmt"

	"github.com/abelbrown/moments/internal/bus"
	"github.com/abelbrown/moments/internal/logging"
	"github.com/abelbrown/moments/internal/model"
)

// Emoji reactions offered by the view, in key order 1..5.
var Reactions = []string{"❤️", "😂", "😮", "😢", "🔥"}

// sync applies moment changes to every collection holding a copy of the
// moment: the feed's moment slides, the first batch embedded in story
// slides, and every story's sub-slide pager.
func (c *Controller) sync(e bus.Event) {
	switch e.Kind {
	case bus.MomentUpdated:
		if e.Moment == nil {
			return
		}
		m := *e.Moment
		c.slides.UpdateAll(func(s model.Slide) (model.Slide, bool) {
			return replaceMoment(s, m)
		})
		c.carousel.UpdateMoment(m.ID, func(model.Moment) model.Moment { return m })

	case bus.MomentDeleted:
		key := model.MomentSlideKey(e.ID)
		if pos := c.slides.IndexOf(key); pos >= 0 {
			if idx := c.vertical.Index(); pos < idx {
				c.vertical.SetIndex(idx - 1)
			}
			c.slides.Remove(key)
		}
		c.slides.UpdateAll(func(s model.Slide) (model.Slide, bool) {
			return dropMoment(s, e.ID)
		})
		c.carousel.RemoveMoment(e.ID)
	}
}

func replaceMoment(s model.Slide, m model.Moment) (model.Slide, bool) {
	switch s := s.(type) {
	case model.MomentSlide:
		if s.Moment.ID != m.ID {
			return s, false
		}
		return model.MomentSlide{Moment: m}, true
	case model.StorySlide:
		for i := range s.Moments {
			if s.Moments[i].ID == m.ID {
				moments := append([]model.Moment(nil), s.Moments...)
				moments[i] = m
				s.Moments = moments
				return s, true
			}
		}
	}
	return s, false
}

func dropMoment(s model.Slide, id string) (model.Slide, bool) {
	story, ok := s.(model.StorySlide)
	if !ok {
		return s, false
	}
	for i := range story.Moments {
		if story.Moments[i].ID == id {
			moments := make([]model.Moment, 0, len(story.Moments)-1)
			moments = append(moments, story.Moments[:i]...)
			story.Moments = append(moments, story.Moments[i+1:]...)
			if story.Story.MomentCount > 0 {
				story.Story.MomentCount--
			}
			return story, true
		}
	}
	return s, false
}

// findMoment looks a moment up in the loaded collections.
func (c *Controller) findMoment(id string) (model.Moment, bool) {
	for _, s := range c.slides.Items() {
		switch s := s.(type) {
		case model.MomentSlide:
			if s.Moment.ID == id {
				return s.Moment, true
			}
		case model.StorySlide:
			for _, m := range c.SubSlides(s.Key()) {
				if m.ID == id {
					return m, true
				}
			}
			for _, m := range s.Moments {
				if m.ID == id {
					return m, true
				}
			}
		}
	}
	return model.Moment{}, false
}

// Reaction is a reaction applied locally and awaiting the service.
type Reaction struct {
	MomentID string
	Emoji    string

	before model.Moment
}

// React applies a reaction to every loaded copy of the moment. The service
// is told with SendReaction and the outcome committed with ReactionDone.
// React and ReactionDone change the collections and must run on the loop
// that drives the controller.
func (c *Controller) React(momentID, emoji string) (Reaction, error) {
	before, ok := c.findMoment(momentID)
	if !ok {
		return Reaction{}, fmt.Errorf("react to %s: moment not loaded", momentID)
	}
	optimistic := before.WithReaction(emoji, 1)
	c.bus.Publish(bus.Event{Kind: bus.MomentUpdated, Scope: momentID, Moment: &optimistic})
	return Reaction{MomentID: momentID, Emoji: emoji, before: before}, nil
}

// SendReaction reports r to the service. It touches no controller state.
func (c *Controller) SendReaction(ctx context.Context, r Reaction) (model.Moment, error) {
	updated, err := c.svc.React(ctx, r.MomentID, r.Emoji)
	if err != nil {
		return model.Moment{}, fmt.Errorf("react to %s: %w", r.MomentID, err)
	}
	return updated, nil
}

// ReactionDone commits the service's copy of the moment, or reverts r when
// the service failed.
func (c *Controller) ReactionDone(r Reaction, updated model.Moment, err error) {
	if err != nil {
		logging.Warn("feed: reaction failed, reverting", "moment", r.MomentID, "error", err)
		before := r.before
		c.bus.Publish(bus.Event{Kind: bus.MomentUpdated, Scope: r.MomentID, Moment: &before})
		return
	}
	c.bus.Publish(bus.Event{Kind: bus.MomentUpdated, Scope: r.MomentID, Moment: &updated})
}

// Delete asks the service to delete a moment. It touches no controller
// state; Deleted removes the moment once the call succeeded.
func (c *Controller) Delete(ctx context.Context, momentID string) error {
	if err := c.svc.DeleteMoment(ctx, momentID); err != nil {
		return fmt.Errorf("delete %s: %w", momentID, err)
	}
	logging.Info("feed: moment deleted", "moment", momentID)
	return nil
}

// Deleted removes a deleted moment from every collection, keeping the
// active slide in place. It must run on the loop that drives the controller.
func (c *Controller) Deleted(momentID string) {
	c.bus.Publish(bus.Event{Kind: bus.MomentDeleted, Scope: momentID, ID: momentID})
}
