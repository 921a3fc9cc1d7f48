package store

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/abelbrown/moments/internal/model"
)

// SeedOptions controls generated fixture data.
type SeedOptions struct {
	Seed            uint64
	Users           int
	Moments         int // standalone moments
	Stories         int
	MomentsPerStory int
	ComparisonEvery int // every Nth story is a comparison story, 0 = none
	Now             time.Time
	Span            time.Duration // created_at values fall in [Now-Span, Now]
}

// DefaultSeedOptions returns a feed big enough to page through.
func DefaultSeedOptions() SeedOptions {
	return SeedOptions{
		Seed:            7,
		Users:           5,
		Moments:         60,
		Stories:         12,
		MomentsPerStory: 12,
		ComparisonEvery: 4,
		Now:             time.Now().UTC(),
		Span:            30 * 24 * time.Hour,
	}
}

// SeedStats reports what Seed wrote.
type SeedStats struct {
	Users, Moments, Stories int
}

// Seed fills the store with deterministic fake users, moments and stories.
// The same options always generate the same captions and timestamps.
func Seed(ctx context.Context, s *Store, opts SeedOptions) (SeedStats, error) {
	if opts.Users <= 0 {
		opts.Users = 1
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}
	if opts.Span <= 0 {
		opts.Span = 30 * 24 * time.Hour
	}
	f := gofakeit.New(opts.Seed)
	from := opts.Now.Add(-opts.Span)
	var stats SeedStats

	users := make([]User, 0, opts.Users)
	seen := make(map[string]bool)
	for len(users) < opts.Users {
		name := f.Username()
		if seen[name] {
			continue
		}
		seen[name] = true
		u, err := s.SaveUser(ctx, User{ID: f.UUID(), Name: name})
		if err != nil {
			return stats, err
		}
		users = append(users, u)
		stats.Users++
	}

	moment := func(author User, storyID string, at time.Time) model.Moment {
		kind := model.MediaImage
		switch f.IntRange(0, 5) {
		case 0:
			kind = model.MediaVideo
		case 1:
			kind = model.MediaAudio
		}
		m := model.Moment{
			ID:        f.UUID(),
			AuthorID:  author.ID,
			StoryID:   storyID,
			Caption:   f.HipsterSentence(),
			MediaKind: kind,
			MediaURL:  fmt.Sprintf("https://media.example/%s/%s", kind, f.Word()),
			CreatedAt: at,
		}
		if f.Bool() {
			m.Reactions = map[string]int{"❤️": f.IntRange(1, 40)}
		}
		return m
	}

	for i := 0; i < opts.Moments; i++ {
		author := users[f.IntRange(0, len(users)-1)]
		if _, err := s.SaveMoment(ctx, moment(author, "", f.DateRange(from, opts.Now).UTC())); err != nil {
			return stats, err
		}
		stats.Moments++
	}

	visibilities := []string{model.VisibilityPublic, model.VisibilityPublic, model.VisibilityConnections, model.VisibilityPrivate}
	for i := 0; i < opts.Stories; i++ {
		owner := users[f.IntRange(0, len(users)-1)]
		created := f.DateRange(from, opts.Now).UTC()
		st, err := s.SaveStory(ctx, model.Story{
			ID:         f.UUID(),
			OwnerID:    owner.ID,
			Title:      fmt.Sprintf("%s %s", f.Adjective(), f.Noun()),
			Visibility: visibilities[f.IntRange(0, len(visibilities)-1)],
			Comparison: opts.ComparisonEvery > 0 && (i+1)%opts.ComparisonEvery == 0,
			CreatedAt:  created,
		})
		if err != nil {
			return stats, err
		}
		stats.Stories++
		for j := 0; j < opts.MomentsPerStory; j++ {
			at := created.Add(-time.Duration(j) * time.Minute)
			if _, err := s.SaveMoment(ctx, moment(owner, st.ID, at)); err != nil {
				return stats, err
			}
			stats.Moments++
		}
	}
	return stats, nil
}
