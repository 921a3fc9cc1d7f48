package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/abelbrown/moments/internal/model"
)

// User is a feed owner.
type User struct {
	ID   string
	Name string
}

// SaveUser inserts or renames a user. An empty ID is assigned.
// Thread-safe: acquires write lock.
func (s *Store) SaveUser(ctx context.Context, u User) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name
	`, u.ID, u.Name)
	if err != nil {
		return User{}, fmt.Errorf("save user %s: %w", u.Name, err)
	}
	return u, nil
}

// Users returns all users ordered by name.
// Thread-safe: acquires read lock.
func (s *Store) Users(ctx context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM users ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// SaveStory inserts or updates a story. An empty ID is assigned.
// Thread-safe: acquires write lock.
func (s *Store) SaveStory(ctx context.Context, st model.Story) (model.Story, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	if st.Visibility == "" {
		st.Visibility = model.VisibilityPublic
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stories (id, owner_id, title, visibility, comparison, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			visibility = excluded.visibility,
			comparison = excluded.comparison
	`, st.ID, st.OwnerID, st.Title, st.Visibility, boolToInt(st.Comparison), toNanos(st.CreatedAt))
	if err != nil {
		return model.Story{}, fmt.Errorf("save story %s: %w", st.ID, err)
	}
	return st, nil
}

// SaveMoment inserts or updates a moment and its reaction counts. An empty
// ID is assigned.
// Thread-safe: acquires write lock.
func (s *Store) SaveMoment(ctx context.Context, m model.Moment) (model.Moment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.MediaKind == "" {
		m.MediaKind = model.MediaImage
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Moment{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO moments (id, author_id, story_id, caption, media_kind, media_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			caption = excluded.caption,
			media_kind = excluded.media_kind,
			media_url = excluded.media_url
	`, m.ID, m.AuthorID, m.StoryID, m.Caption, m.MediaKind, m.MediaURL, toNanos(m.CreatedAt))
	if err != nil {
		return model.Moment{}, fmt.Errorf("save moment %s: %w", m.ID, err)
	}
	for emoji, n := range m.Reactions {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO reactions (moment_id, emoji, count) VALUES (?, ?, ?)
			ON CONFLICT(moment_id, emoji) DO UPDATE SET count = excluded.count
		`, m.ID, emoji, n)
		if err != nil {
			return model.Moment{}, fmt.Errorf("save reactions %s: %w", m.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return model.Moment{}, err
	}
	return m, nil
}

// GetMoment returns one moment.
// Thread-safe: acquires read lock.
func (s *Store) GetMoment(ctx context.Context, id string) (model.Moment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getMoment(ctx, id)
}

// React adds one reaction and returns the updated moment.
// Thread-safe: acquires write lock.
func (s *Store) React(ctx context.Context, momentID, emoji string) (model.Moment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.getMoment(ctx, momentID); err != nil {
		return model.Moment{}, err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reactions (moment_id, emoji, count) VALUES (?, ?, 1)
		ON CONFLICT(moment_id, emoji) DO UPDATE SET count = count + 1
	`, momentID, emoji)
	if err != nil {
		return model.Moment{}, fmt.Errorf("react %s: %w", momentID, err)
	}
	return s.getMoment(ctx, momentID)
}

// DeleteMoment removes a moment and its reactions.
// Thread-safe: acquires write lock.
func (s *Store) DeleteMoment(ctx context.Context, momentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM moments WHERE id = ?", momentID)
	if err != nil {
		return fmt.Errorf("delete moment %s: %w", momentID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("moment %s: %w", momentID, ErrNotFound)
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM reactions WHERE moment_id = ?", momentID); err != nil {
		return fmt.Errorf("delete reactions %s: %w", momentID, err)
	}
	return nil
}

// Caller must hold s.mu.
func (s *Store) getMoment(ctx context.Context, id string) (model.Moment, error) {
	ms, err := s.queryMoments(ctx, `
		SELECT id, author_id, story_id, caption, media_kind, media_url, created_at
		FROM moments WHERE id = ?
	`, id)
	if err != nil {
		return model.Moment{}, err
	}
	if len(ms) == 0 {
		return model.Moment{}, fmt.Errorf("moment %s: %w", id, ErrNotFound)
	}
	return ms[0], nil
}

// Caller must hold s.mu.
func (s *Store) getStory(ctx context.Context, id string) (model.Story, error) {
	var st model.Story
	var comparison int
	var created int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, title, visibility, comparison, created_at
		FROM stories WHERE id = ?
	`, id).Scan(&st.ID, &st.OwnerID, &st.Title, &st.Visibility, &comparison, &created)
	if err == sql.ErrNoRows {
		return model.Story{}, fmt.Errorf("story %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Story{}, err
	}
	st.Comparison = comparison != 0
	st.CreatedAt = fromNanos(created)
	st.OwnerName = s.userName(ctx, st.OwnerID)
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM moments WHERE story_id = ?", id).Scan(&st.MomentCount); err != nil {
		return model.Story{}, err
	}
	return st, nil
}

// queryMoments scans moment rows, then fills author names and reactions.
// Rows are closed before the follow-up queries; in-memory databases run on a
// single connection.
// Caller must hold s.mu.
func (s *Store) queryMoments(ctx context.Context, query string, args ...any) ([]model.Moment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	var ms []model.Moment
	for rows.Next() {
		var m model.Moment
		var created int64
		if err := rows.Scan(&m.ID, &m.AuthorID, &m.StoryID, &m.Caption, &m.MediaKind, &m.MediaURL, &created); err != nil {
			rows.Close()
			return nil, err
		}
		m.CreatedAt = fromNanos(created)
		ms = append(ms, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range ms {
		ms[i].AuthorName = s.userName(ctx, ms[i].AuthorID)
		r, err := s.reactions(ctx, ms[i].ID)
		if err != nil {
			return nil, err
		}
		ms[i].Reactions = r
	}
	return ms, nil
}

// Caller must hold s.mu.
func (s *Store) reactions(ctx context.Context, momentID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT emoji, count FROM reactions WHERE moment_id = ? AND count > 0", momentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out map[string]int
	for rows.Next() {
		var emoji string
		var n int
		if err := rows.Scan(&emoji, &n); err != nil {
			return nil, err
		}
		if out == nil {
			out = make(map[string]int)
		}
		out[emoji] = n
	}
	return out, rows.Err()
}

// Caller must hold s.mu.
func (s *Store) userName(ctx context.Context, id string) string {
	var name string
	_ = s.db.QueryRowContext(ctx, "SELECT name FROM users WHERE id = ?", id).Scan(&name)
	return name
}
