package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/abelbrown/moments/internal/model"
)

// HomeTarget is the feed of every public slide.
const HomeTarget = "home"

// keyset restricts rows to those after cursor in (created_at DESC, id DESC)
// order. The zero cursor means "from the start".
func keyset(cursor model.Cursor, args []any) (string, []any) {
	if cursor.IsZero() {
		return "1 = 1", args
	}
	ns := toNanos(cursor.CreatedAt)
	return "(created_at < ? OR (created_at = ? AND id < ?))", append(args, ns, ns, cursor.ID)
}

// FetchSlides returns the page of target's feed after cursor. Target is
// "home" for all public slides or "@name" for one user's slides.
// Thread-safe: acquires read lock.
func (s *Store) FetchSlides(ctx context.Context, target string, cursor model.Cursor, size int) (model.Page[model.Slide], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owner, err := s.resolveTarget(ctx, target)
	if err != nil {
		return model.Page[model.Slide]{}, err
	}

	args := []any{}
	ownerClause := "1 = 1"
	visibility := "visibility = 'public'"
	if owner != "" {
		ownerClause = "owner = ?"
		args = append(args, owner)
		visibility = "visibility != 'private'"
	}
	where, args := keyset(cursor, args)
	args = append(args, size+1)

	query := fmt.Sprintf(`
		SELECT kind, id FROM (
			SELECT 'moment' AS kind, id, created_at, author_id AS owner
			FROM moments WHERE story_id = ''
			UNION ALL
			SELECT 'story' AS kind, id, created_at, owner_id AS owner
			FROM stories WHERE %s
		)
		WHERE %s AND %s
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, visibility, ownerClause, where)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return model.Page[model.Slide]{}, fmt.Errorf("query feed %s: %w", target, err)
	}
	type ref struct{ kind, id string }
	var refs []ref
	for rows.Next() {
		var r ref
		if err := rows.Scan(&r.kind, &r.id); err != nil {
			rows.Close()
			return model.Page[model.Slide]{}, err
		}
		refs = append(refs, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return model.Page[model.Slide]{}, err
	}

	page := model.Page[model.Slide]{}
	if len(refs) > size {
		refs = refs[:size]
		page.HasNext = true
	}
	for _, r := range refs {
		var slide model.Slide
		switch model.SlideKind(r.kind) {
		case model.KindMoment:
			m, err := s.getMoment(ctx, r.id)
			if err != nil {
				return model.Page[model.Slide]{}, err
			}
			slide = model.MomentSlide{Moment: m}
		case model.KindStory:
			st, err := s.storySlide(ctx, r.id)
			if err != nil {
				return model.Page[model.Slide]{}, err
			}
			slide = st
		}
		page.Items = append(page.Items, slide)
	}
	if n := len(page.Items); n > 0 {
		page.Next = page.Items[n-1].Cursor()
	}
	return page, nil
}

// FetchStoryMoments returns the page of a story's moments after cursor.
// Thread-safe: acquires read lock.
func (s *Store) FetchStoryMoments(ctx context.Context, storyID string, cursor model.Cursor, size int) (model.Page[model.Moment], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.getStory(ctx, storyID); err != nil {
		return model.Page[model.Moment]{}, err
	}
	return s.storyMoments(ctx, storyID, cursor, size)
}

// Caller must hold s.mu.
func (s *Store) storyMoments(ctx context.Context, storyID string, cursor model.Cursor, size int) (model.Page[model.Moment], error) {
	where, args := keyset(cursor, []any{storyID})
	args = append(args, size+1)
	ms, err := s.queryMoments(ctx, `
		SELECT id, author_id, story_id, caption, media_kind, media_url, created_at
		FROM moments
		WHERE story_id = ? AND `+where+`
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, args...)
	if err != nil {
		return model.Page[model.Moment]{}, fmt.Errorf("query story %s moments: %w", storyID, err)
	}

	page := model.Page[model.Moment]{}
	if len(ms) > size {
		ms = ms[:size]
		page.HasNext = true
	}
	page.Items = ms
	if n := len(ms); n > 0 {
		page.Next = ms[n-1].Cursor()
	}
	return page, nil
}

// Caller must hold s.mu.
func (s *Store) storySlide(ctx context.Context, storyID string) (model.StorySlide, error) {
	st, err := s.getStory(ctx, storyID)
	if err != nil {
		return model.StorySlide{}, err
	}
	first, err := s.storyMoments(ctx, storyID, model.Cursor{}, s.embedSize)
	if err != nil {
		return model.StorySlide{}, err
	}
	return model.StorySlide{
		Story:   st,
		Moments: first.Items,
		HasMore: first.HasNext,
		Next:    first.Next,
	}, nil
}

// resolveTarget maps a feed target to an owner id, "" for the home feed.
// Caller must hold s.mu.
func (s *Store) resolveTarget(ctx context.Context, target string) (string, error) {
	if target == "" || target == HomeTarget {
		return "", nil
	}
	name := strings.TrimPrefix(target, "@")
	var id string
	err := s.db.QueryRowContext(ctx, "SELECT id FROM users WHERE name = ? OR id = ?", name, name).Scan(&id)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("feed %s: %w", target, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("resolve feed %s: %w", target, err)
	}
	return id, nil
}
