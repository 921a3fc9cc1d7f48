package api_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelbrown/moments/internal/api"
	"github.com/abelbrown/moments/internal/model"
	"github.com/abelbrown/moments/internal/server"
	"github.com/abelbrown/moments/internal/store"
)

var now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func newBackend(t *testing.T) (*api.Client, *store.Store) {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	st.SetEmbedSize(2)

	ctx := context.Background()
	u, _ := st.SaveUser(ctx, store.User{ID: "u1", Name: "alice"})
	for i := 0; i < 4; i++ {
		st.SaveMoment(ctx, model.Moment{
			ID: fmt.Sprintf("m%d", i), AuthorID: u.ID,
			CreatedAt: now.Add(-time.Duration(i) * time.Minute),
		})
	}
	story, _ := st.SaveStory(ctx, model.Story{ID: "s1", OwnerID: u.ID, Title: "trip", CreatedAt: now.Add(-90 * time.Second)})
	for j := 0; j < 5; j++ {
		st.SaveMoment(ctx, model.Moment{
			ID: fmt.Sprintf("s1-%d", j), AuthorID: u.ID, StoryID: story.ID,
			CreatedAt: story.CreatedAt.Add(-time.Duration(j) * time.Second),
		})
	}

	ts := httptest.NewServer(server.New(st, server.Options{}).Handler())
	t.Cleanup(ts.Close)
	return api.NewClient(api.Options{BaseURL: ts.URL, Timeout: 5 * time.Second}), st
}

func TestClientPagesThroughFeed(t *testing.T) {
	c, _ := newBackend(t)
	ctx := context.Background()

	var got []string
	cursor := model.Cursor{}
	for {
		page, err := c.FetchSlides(ctx, "home", cursor, 2)
		require.NoError(t, err)
		for _, s := range page.Items {
			got = append(got, s.Key())
		}
		if !page.HasNext {
			break
		}
		assert.True(t, page.Next.After(cursor), "cursor must advance")
		cursor = page.Next
	}
	assert.Equal(t, []string{"moment:m0", "moment:m1", "story:s1", "moment:m2", "moment:m3"}, got)
}

func TestClientStorySlideRoundTrip(t *testing.T) {
	c, _ := newBackend(t)
	ctx := context.Background()

	page, err := c.FetchSlides(ctx, "@alice", model.Cursor{}, 3)
	require.NoError(t, err)
	story, ok := page.Items[2].(model.StorySlide)
	require.True(t, ok, "third slide should decode as a story")
	assert.Len(t, story.Moments, 2)
	assert.True(t, story.HasMore)

	rest, err := c.FetchStoryMoments(ctx, "s1", story.Next, 10)
	require.NoError(t, err)
	assert.Len(t, rest.Items, 3)
	assert.False(t, rest.HasNext)
	assert.Equal(t, "s1-2", rest.Items[0].ID)
}

func TestClientReactAndDelete(t *testing.T) {
	c, _ := newBackend(t)
	ctx := context.Background()

	m, err := c.React(ctx, "m1", "😂")
	require.NoError(t, err)
	assert.Equal(t, 1, m.Reactions["😂"])

	require.NoError(t, c.DeleteMoment(ctx, "m1"))
	err = c.DeleteMoment(ctx, "m1")
	assert.True(t, errors.Is(err, api.ErrNotFound), "second delete: %v", err)

	var se *api.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "not_found", se.Code)
}

func TestClientServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	}))
	defer ts.Close()

	c := api.NewClient(api.Options{BaseURL: ts.URL})
	_, err := c.FetchSlides(context.Background(), "home", model.Cursor{}, 4)
	require.Error(t, err)
	assert.True(t, api.IsServerError(err))
	assert.False(t, errors.Is(err, api.ErrNotFound))
	assert.Contains(t, err.Error(), "upstream down")
}

func TestClientRateLimitHonorsContext(t *testing.T) {
	limited := api.NewClient(api.Options{BaseURL: "http://127.0.0.1:1", RateLimit: 0.001, Burst: 1})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	// First request consumes the burst (and fails to connect); the second
	// must wait far longer than the deadline.
	limited.Health(ctx)
	err := limited.Health(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
}

func TestHealth(t *testing.T) {
	c, _ := newBackend(t)
	assert.NoError(t, c.Health(context.Background()))
}
