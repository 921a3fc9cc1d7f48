package model

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrUnknownSlideKind is returned when decoding an envelope with an unrecognized kind.
var ErrUnknownSlideKind = errors.New("unknown slide kind")

// SlideKind discriminates the Slide variants on the wire.
type SlideKind string

const (
	KindMoment SlideKind = "moment"
	KindStory  SlideKind = "story"
)

// Slide is one unit of the feed's primary (vertical) navigation axis.
//
// It is a closed variant: the only implementations are MomentSlide and
// StorySlide. Consumers switch on the concrete type.
type Slide interface {
	// Key is the stable unique identifier of the slide. It is used as the
	// render key and as the key into the sub-slide index map.
	Key() string
	Kind() SlideKind
	Cursor() Cursor
	isSlide()
}

// MomentSlide wraps a single moment.
type MomentSlide struct {
	Moment Moment
}

func (s MomentSlide) Key() string     { return MomentSlideKey(s.Moment.ID) }
func (s MomentSlide) Kind() SlideKind { return KindMoment }
func (s MomentSlide) Cursor() Cursor  { return s.Moment.Cursor() }
func (MomentSlide) isSlide()          {}

// StorySlide wraps a story and the first batch of its moments (sub-slides).
// HasMore and Next describe the pagination state of the sub-slide sequence.
type StorySlide struct {
	Story   Story
	Moments []Moment
	HasMore bool
	Next    Cursor
}

func (s StorySlide) Key() string     { return StorySlideKey(s.Story.ID) }
func (s StorySlide) Kind() SlideKind { return KindStory }
func (s StorySlide) Cursor() Cursor  { return s.Story.Cursor() }
func (StorySlide) isSlide()          {}

// FirstPage returns the embedded sub-slide batch as a Page.
func (s StorySlide) FirstPage() Page[Moment] {
	return Page[Moment]{Items: s.Moments, HasNext: s.HasMore, Next: s.Next}
}

// MomentSlideKey returns the slide key of a standalone moment.
func MomentSlideKey(momentID string) string { return "moment:" + momentID }

// StorySlideKey returns the slide key of a story.
func StorySlideKey(storyID string) string { return "story:" + storyID }

type slideEnvelope struct {
	Kind    SlideKind `json:"kind"`
	Moment  *Moment   `json:"moment,omitempty"`
	Story   *Story    `json:"story,omitempty"`
	Moments []Moment  `json:"moments,omitempty"`
	HasMore bool      `json:"has_more,omitempty"`
	Next    *Cursor   `json:"next_cursor,omitempty"`
}

// MarshalSlide encodes a slide as a kind-tagged envelope.
func MarshalSlide(s Slide) ([]byte, error) {
	env, err := envelopeOf(s)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

// UnmarshalSlide decodes a kind-tagged envelope.
func UnmarshalSlide(data []byte) (Slide, error) {
	var env slideEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode slide: %w", err)
	}
	return env.slide()
}

func envelopeOf(s Slide) (slideEnvelope, error) {
	switch v := s.(type) {
	case MomentSlide:
		m := v.Moment
		return slideEnvelope{Kind: KindMoment, Moment: &m}, nil
	case StorySlide:
		st := v.Story
		env := slideEnvelope{Kind: KindStory, Story: &st, Moments: v.Moments, HasMore: v.HasMore}
		if !v.Next.IsZero() {
			next := v.Next
			env.Next = &next
		}
		return env, nil
	default:
		return slideEnvelope{}, fmt.Errorf("%w: %T", ErrUnknownSlideKind, s)
	}
}

func (env slideEnvelope) slide() (Slide, error) {
	switch env.Kind {
	case KindMoment:
		if env.Moment == nil {
			return nil, errors.New("moment slide without moment")
		}
		return MomentSlide{Moment: *env.Moment}, nil
	case KindStory:
		if env.Story == nil {
			return nil, errors.New("story slide without story")
		}
		s := StorySlide{Story: *env.Story, Moments: env.Moments, HasMore: env.HasMore}
		if env.Next != nil {
			s.Next = *env.Next
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSlideKind, env.Kind)
	}
}

// SlideList is a JSON-codable list of slides.
type SlideList []Slide

// MarshalJSON implements json.Marshaler.
func (l SlideList) MarshalJSON() ([]byte, error) {
	envs := make([]slideEnvelope, 0, len(l))
	for _, s := range l {
		env, err := envelopeOf(s)
		if err != nil {
			return nil, err
		}
		envs = append(envs, env)
	}
	return json.Marshal(envs)
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *SlideList) UnmarshalJSON(data []byte) error {
	var envs []slideEnvelope
	if err := json.Unmarshal(data, &envs); err != nil {
		return fmt.Errorf("decode slides: %w", err)
	}
	out := make(SlideList, 0, len(envs))
	for _, env := range envs {
		s, err := env.slide()
		if err != nil {
			return err
		}
		out = append(out, s)
	}
	*l = out
	return nil
}
