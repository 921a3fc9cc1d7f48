package carousel

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/abelbrown/moments/internal/model"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func moments(story string, from, to int) []model.Moment {
	var out []model.Moment
	for i := from; i < to; i++ {
		out = append(out, model.Moment{
			ID:        fmt.Sprintf("%s-m%02d", story, i),
			StoryID:   story,
			CreatedAt: epoch.Add(-time.Duration(i) * time.Minute),
		})
	}
	return out
}

func storySlide(id string, n int, hasMore bool) model.StorySlide {
	ms := moments(id, 0, n)
	return model.StorySlide{
		Story:   model.Story{ID: id, Title: "story " + id},
		Moments: ms,
		HasMore: hasMore,
		Next:    ms[len(ms)-1].Cursor(),
	}
}

type fakeSubService struct {
	mu     sync.Mutex
	calls  []string
	result []model.Moment
}

func (f *fakeSubService) fetch(ctx context.Context, storyID string, cursor model.Cursor, size int) (model.Page[model.Moment], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, storyID)
	return model.Page[model.Moment]{Items: f.result, HasNext: false}, nil
}

func TestIndexMapDefaultsToZero(t *testing.T) {
	x := NewIndexMap()
	if got := x.Get("story:never"); got != 0 {
		t.Errorf("Get on untouched key = %d, want 0", got)
	}
	x.Set("story:a", 3)
	if x.Get("story:a") != 3 || x.Len() != 1 {
		t.Error("Set not recorded")
	}
	x.Clear()
	if x.Get("story:a") != 0 {
		t.Error("Clear should drop entries")
	}
}

func TestAttachSeedsWithoutFetching(t *testing.T) {
	svc := &fakeSubService{}
	c := New(svc.fetch, nil, 8, 4)
	s := storySlide("s1", 3, true)

	p := c.Attach(s)
	if p.Len() != 3 {
		t.Fatalf("seeded len = %d, want 3", p.Len())
	}
	if again := c.Attach(s); again != p {
		t.Error("Attach should return the same pager for the same slide")
	}
	if len(svc.calls) != 0 {
		t.Errorf("seeding must not call the service, calls=%v", svc.calls)
	}
}

func TestNextPrevStayInBounds(t *testing.T) {
	c := New((&fakeSubService{}).fetch, nil, 8, 4)
	s := storySlide("s1", 2, false)
	c.Attach(s)
	key := s.Key()

	if c.Prev(key) {
		t.Error("Prev at 0 should be a no-op")
	}
	if !c.Next(key) || c.Index(key) != 1 {
		t.Fatalf("Next should move to 1, index=%d", c.Index(key))
	}
	if c.Next(key) {
		t.Error("Next at the last sub-slide should be a no-op")
	}
	if c.Index(key) != 1 {
		t.Errorf("index = %d, want 1", c.Index(key))
	}
	cur, ok := c.Current(key)
	if !ok || cur.ID != "s1-m01" {
		t.Errorf("Current = %v %v", cur.ID, ok)
	}
}

func TestAppendPreservesPosition(t *testing.T) {
	svc := &fakeSubService{result: moments("s1", 6, 10)}
	c := New(svc.fetch, nil, 4, 4)
	s := storySlide("s1", 6, true)
	c.Attach(s)
	key := s.Key()
	c.SetIndex(key, 2)

	if !c.NeedsMore(key) {
		t.Fatal("6 loaded, index 2, threshold 4 should be due")
	}
	if ok, err := c.FetchMore(context.Background(), key); !ok || err != nil {
		t.Fatalf("FetchMore: ok=%v err=%v", ok, err)
	}
	if c.Len(key) != 10 {
		t.Errorf("len after append = %d", c.Len(key))
	}
	if c.Index(key) != 2 {
		t.Errorf("append must not reset the position, index=%d", c.Index(key))
	}
	if len(svc.calls) != 1 || svc.calls[0] != "s1" {
		t.Errorf("sub-slide fetch should target the story id, calls=%v", svc.calls)
	}
}

func TestNeedsMoreIsEdgeTriggered(t *testing.T) {
	c := New((&fakeSubService{}).fetch, nil, 4, 4)
	s := storySlide("s1", 6, true)
	c.Attach(s)
	key := s.Key()
	c.SetIndex(key, 3)

	if !c.NeedsMore(key) {
		t.Fatal("expected first evaluation to fire")
	}
	if c.NeedsMore(key) {
		t.Error("should not fire again without a position change")
	}
	if c.NeedsMore("story:unknown") {
		t.Error("unattached slides never need more")
	}
}

func TestRemoveMomentClampsPosition(t *testing.T) {
	c := New((&fakeSubService{}).fetch, nil, 8, 4)
	s := storySlide("s1", 3, false)
	c.Attach(s)
	key := s.Key()
	c.SetIndex(key, 2)

	if n := c.RemoveMoment("s1-m02"); n != 1 {
		t.Fatalf("RemoveMoment removed from %d sequences", n)
	}
	if c.Index(key) != 1 {
		t.Errorf("position should clamp to last sub-slide, got %d", c.Index(key))
	}

	c.SetIndex(key, 1)
	c.RemoveMoment("s1-m00")
	cur, _ := c.Current(key)
	if cur.ID != "s1-m01" {
		t.Errorf("removing an earlier sub-slide should keep the active one, got %s", cur.ID)
	}
}

func TestUpdateMomentAndReset(t *testing.T) {
	c := New((&fakeSubService{}).fetch, nil, 8, 4)
	s := storySlide("s1", 2, false)
	c.Attach(s)

	n := c.UpdateMoment("s1-m00", func(m model.Moment) model.Moment { return m.WithReaction("👍", 1) })
	if n != 1 {
		t.Fatalf("UpdateMoment touched %d sequences", n)
	}
	cur, _ := c.Current(s.Key())
	if cur.Reactions["👍"] != 1 {
		t.Error("update not applied")
	}

	c.Reset()
	if _, ok := c.Pager(s.Key()); ok {
		t.Error("Reset should drop pagers")
	}
	if c.Index(s.Key()) != 0 {
		t.Error("Reset should drop positions")
	}
}
