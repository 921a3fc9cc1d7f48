package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/abelbrown/moments/internal/bus"
	"github.com/abelbrown/moments/internal/model"
	"github.com/abelbrown/moments/internal/scroll"
)

var epoch = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

type fakeService struct {
	mu        sync.Mutex
	feeds     map[string][]model.Slide
	stories   map[string][]model.Moment
	pageCalls int
	subCalls  int
	reactErr  error
	deleteErr error
}

func newFakeService() *fakeService {
	return &fakeService{
		feeds:   make(map[string][]model.Slide),
		stories: make(map[string][]model.Moment),
	}
}

// after returns the index of the first item strictly after cursor.
func after[T interface{ Cursor() model.Cursor }](items []T, cursor model.Cursor) int {
	for i, it := range items {
		if it.Cursor().After(cursor) {
			return i
		}
	}
	return len(items)
}

func page[T interface{ Cursor() model.Cursor }](items []T, cursor model.Cursor, size int) model.Page[T] {
	start := after(items, cursor)
	end := min(start+size, len(items))
	p := model.Page[T]{Items: append([]T(nil), items[start:end]...), HasNext: end < len(items)}
	if end > start {
		p.Next = items[end-1].Cursor()
	}
	return p
}

func (f *fakeService) FetchSlides(ctx context.Context, target string, cursor model.Cursor, size int) (model.Page[model.Slide], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pageCalls++
	return page(f.feeds[target], cursor, size), nil
}

func (f *fakeService) FetchStoryMoments(ctx context.Context, storyID string, cursor model.Cursor, size int) (model.Page[model.Moment], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subCalls++
	return page(f.stories[storyID], cursor, size), nil
}

func (f *fakeService) React(ctx context.Context, momentID, emoji string) (model.Moment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reactErr != nil {
		return model.Moment{}, f.reactErr
	}
	return model.Moment{ID: momentID, Reactions: map[string]int{emoji: 42}}, nil
}

func (f *fakeService) DeleteMoment(ctx context.Context, momentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deleteErr
}

func (f *fakeService) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pageCalls, f.subCalls
}

func momentAt(id string, i int) model.Moment {
	return model.Moment{ID: id, CreatedAt: epoch.Add(-time.Duration(i) * time.Minute)}
}

func momentSlides(n int) []model.Slide {
	out := make([]model.Slide, n)
	for i := range out {
		out[i] = model.MomentSlide{Moment: momentAt(fmt.Sprintf("m%02d", i), i)}
	}
	return out
}

// storyAt builds a story slide embedding the first `embedded` moments of the
// story and registers all `total` moments with the service.
func (f *fakeService) storyAt(id string, i, embedded, total int, comparison bool) model.StorySlide {
	var ms []model.Moment
	for j := 0; j < total; j++ {
		m := momentAt(fmt.Sprintf("%s-%02d", id, j), j)
		m.StoryID = id
		ms = append(ms, m)
	}
	f.stories[id] = ms
	first := page(ms, model.Cursor{}, embedded)
	return model.StorySlide{
		Story:   model.Story{ID: id, Comparison: comparison, CreatedAt: epoch.Add(-time.Duration(i) * time.Minute), MomentCount: total},
		Moments: first.Items,
		HasMore: first.HasNext,
		Next:    first.Next,
	}
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

// lineLayout stacks every loaded slide at a fixed height.
type lineLayout struct {
	n      func() int
	height int
}

func (l lineLayout) Container() scroll.Rect { return scroll.Rect{Height: l.height} }
func (l lineLayout) ScrollOffset() int      { return 0 }
func (l lineLayout) Element(i int) (scroll.Rect, bool) {
	if i < 0 || i >= l.n() {
		return scroll.Rect{}, false
	}
	return scroll.Rect{Top: i * l.height, Height: l.height}, true
}

type harness struct {
	t   *testing.T
	svc *fakeService
	c   *Controller
	clk *clock
	bus *bus.Bus
}

func newHarness(t *testing.T, cfg Config, slides []model.Slide, svc *fakeService) *harness {
	t.Helper()
	if svc == nil {
		svc = newFakeService()
	}
	svc.feeds["home"] = slides
	clk := &clock{t: epoch}
	b := bus.New()
	c := New(svc, b, cfg, WithClock(clk.now))
	c.SetLayout(scroll.Vertical, lineLayout{n: c.Len, height: 10})
	c.SetLayout(scroll.Horizontal, lineLayout{n: func() int {
		key, _ := c.activeStoryKey()
		return len(c.SubSlides(key))
	}, height: 40})
	c.SetTarget("home")
	if ok, err := c.Load(context.Background()); !ok || err != nil {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	c.Synced()
	return &harness{t: t, svc: svc, c: c, clk: clk, bus: b}
}

// settle lets every scroll in fx finish.
func (h *harness) settle(fx Effects) {
	h.clk.advance(400 * time.Millisecond)
	for _, cmd := range fx.Scroll {
		h.c.Settle(cmd)
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.PageSize = 16
	cfg.SubPageSize = 4
	return cfg
}

func TestPrefetchFiresOnceAtThreshold(t *testing.T) {
	h := newHarness(t, testConfig(), momentSlides(40), nil)
	ctx := context.Background()

	firedAt := []int{}
	for i := 0; i < 12; i++ {
		fx := h.c.Key("down")
		if len(fx.Scroll) != 1 {
			t.Fatalf("step %d: expected a scroll, got %+v", i, fx)
		}
		if fx.FetchMore {
			firedAt = append(firedAt, h.c.Index())
			if _, err := h.c.FetchMore(ctx); err != nil {
				t.Fatal(err)
			}
			h.c.Synced()
		}
		h.settle(fx)
	}

	if h.c.Index() != 12 {
		t.Errorf("index = %d, want 12", h.c.Index())
	}
	if len(firedAt) != 1 || firedAt[0] != 12 {
		t.Errorf("prefetch fired at %v, want [12]", firedAt)
	}
	if pages, _ := h.svc.calls(); pages != 2 {
		t.Errorf("page calls = %d, want 2", pages)
	}
	if h.c.Len() != 32 {
		t.Errorf("loaded = %d, want 32", h.c.Len())
	}
}

func TestRapidIntentsDropSecond(t *testing.T) {
	h := newHarness(t, testConfig(), momentSlides(10), nil)

	first := h.c.Key("down")
	if len(first.Scroll) != 1 {
		t.Fatal("first intent should scroll")
	}
	h.clk.advance(100 * time.Millisecond)
	h.c.KeyUp()
	if fx := h.c.Key("down"); len(fx.Scroll) != 0 {
		t.Error("second intent inside the guard window should be dropped")
	}
	if fx := h.c.Wheel(500); len(fx.Scroll) != 0 {
		t.Error("wheel inside the guard window should be dropped")
	}
	if h.c.Index() != 1 {
		t.Errorf("index = %d, want 1", h.c.Index())
	}

	h.settle(first)
	if fx := h.c.Key("down"); len(fx.Scroll) != 1 || h.c.Index() != 2 {
		t.Error("intent after the window should be honored")
	}
}

func TestBoundaryIntentsAreNoops(t *testing.T) {
	h := newHarness(t, testConfig(), momentSlides(3), nil)

	if fx := h.c.Key("up"); len(fx.Scroll) != 0 || h.c.Index() != 0 {
		t.Error("retreat at 0 should be a no-op")
	}
	for i := 0; i < 2; i++ {
		h.settle(h.c.Key("down"))
	}
	if h.c.Index() != 2 {
		t.Fatalf("index = %d, want 2", h.c.Index())
	}
	if fx := h.c.Key("down"); len(fx.Scroll) != 0 || h.c.Index() != 2 {
		t.Error("advance at the last slide should be a no-op")
	}
	if h.c.fusion.Held() {
		t.Error("a no-op key must not leave the held guard set")
	}
}

func TestStorySubSlides(t *testing.T) {
	svc := newFakeService()
	slides := momentSlides(5)
	slides[1] = svc.storyAt("s1", 1, 6, 10, false)
	h := newHarness(t, testConfig(), slides, svc)
	ctx := context.Background()

	h.settle(h.c.Key("down"))
	key := model.StorySlideKey("s1")
	if got := len(h.c.SubSlides(key)); got != 6 {
		t.Fatalf("embedded sub-slides = %d, want 6", got)
	}
	if _, subs := svc.calls(); subs != 0 {
		t.Errorf("embedded batch should not be refetched, calls=%d", subs)
	}

	var due string
	for i := 0; i < 2; i++ {
		fx := h.c.Key("right")
		if len(fx.Scroll) != 1 || fx.Scroll[0].Axis != scroll.Horizontal {
			t.Fatalf("right on a story should scroll horizontally: %+v", fx)
		}
		if fx.FetchSub != "" {
			due = fx.FetchSub
		}
		h.settle(fx)
	}
	if h.c.SubIndex(key) != 2 || h.c.Index() != 1 {
		t.Fatalf("sub index = %d, index = %d", h.c.SubIndex(key), h.c.Index())
	}
	if due != key {
		t.Fatalf("sub-slide prefetch should be due at position 2, got %q", due)
	}
	if _, err := h.c.FetchSubSlides(ctx, due); err != nil {
		t.Fatal(err)
	}
	h.c.Synced()
	if got := len(h.c.SubSlides(key)); got != 10 {
		t.Errorf("sub-slides after fetch = %d, want 10", got)
	}
	if h.c.SubIndex(key) != 2 {
		t.Errorf("append must keep the position, got %d", h.c.SubIndex(key))
	}
	if m, _ := h.c.ActiveMoment(); m.ID != "s1-02" {
		t.Errorf("active moment = %s", m.ID)
	}

	h.settle(h.c.Key("down"))
	h.settle(h.c.Key("up"))
	if h.c.SubIndex(key) != 2 {
		t.Error("leaving and returning to a story keeps its position")
	}
}

func TestComparisonStoryKeepsKeysVertical(t *testing.T) {
	svc := newFakeService()
	slides := momentSlides(4)
	slides[0] = svc.storyAt("cmp", 0, 2, 2, true)
	h := newHarness(t, testConfig(), slides, svc)

	fx := h.c.Key("right")
	if len(fx.Scroll) != 1 || fx.Scroll[0].Axis != scroll.Vertical {
		t.Errorf("right on a comparison story should move vertically: %+v", fx)
	}
}

func TestSetTargetResets(t *testing.T) {
	svc := newFakeService()
	svc.feeds["alice"] = momentSlides(2)
	h := newHarness(t, testConfig(), momentSlides(10), svc)
	h.settle(h.c.Key("down"))
	h.settle(h.c.Key("down"))

	if h.c.SetTarget("home") {
		t.Error("same target should not reset")
	}
	if !h.c.SetTarget("alice") {
		t.Fatal("new target should reset")
	}
	if h.c.Index() != 0 || h.c.Len() != 0 {
		t.Errorf("after reset index=%d len=%d", h.c.Index(), h.c.Len())
	}
	if _, err := h.c.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	h.c.Synced()
	if h.c.Len() != 2 {
		t.Errorf("loaded %d slides for alice, want 2", h.c.Len())
	}
}

func TestMountSnapsOnce(t *testing.T) {
	h := newHarness(t, testConfig(), momentSlides(5), nil)
	fx := h.c.Mount()
	if len(fx.Scroll) != 1 || fx.Scroll[0].Smooth {
		t.Fatalf("mount should be one instant snap: %+v", fx)
	}
	if len(h.c.Mount().Scroll) != 0 {
		t.Error("mount must not fire twice")
	}
	if !h.c.Mounted() {
		t.Error("Mounted should report true")
	}
}

// react runs a reaction the way the view does: locally, then the service
// round trip, then the commit.
func (h *harness) react(momentID, emoji string) error {
	r, err := h.c.React(momentID, emoji)
	if err != nil {
		return err
	}
	updated, err := h.c.SendReaction(context.Background(), r)
	h.c.ReactionDone(r, updated, err)
	return err
}

func TestReactOptimisticAndRevert(t *testing.T) {
	svc := newFakeService()
	slides := momentSlides(3)
	slides[2] = svc.storyAt("s1", 2, 3, 3, false)
	h := newHarness(t, testConfig(), slides, svc)

	r, err := h.c.React("m00", "🔥")
	if err != nil {
		t.Fatal(err)
	}
	if m, _ := h.c.findMoment("m00"); m.Reactions["🔥"] != 1 {
		t.Errorf("reaction should apply before the service answers, got %v", m.Reactions)
	}
	updated, err := h.c.SendReaction(context.Background(), r)
	if err != nil {
		t.Fatal(err)
	}
	if m, _ := h.c.findMoment("m00"); m.Reactions["🔥"] != 1 {
		t.Errorf("sending must not touch the collections, got %v", m.Reactions)
	}
	h.c.ReactionDone(r, updated, nil)
	if m, _ := h.c.findMoment("m00"); m.Reactions["🔥"] != 42 {
		t.Errorf("server value should win, got %v", m.Reactions)
	}

	svc.reactErr = errors.New("boom")
	seen := []int{}
	h.bus.Handle(func(e bus.Event) {
		if e.Kind == bus.MomentUpdated && e.ID == "" && e.Scope == "s1-01" {
			seen = append(seen, e.Moment.Reactions["❤️"])
		}
	})
	if err := h.react("s1-01", "❤️"); err == nil {
		t.Fatal("expected error")
	}
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 0 {
		t.Errorf("expected optimistic then revert, saw %v", seen)
	}
	m, _ := h.c.findMoment("s1-01")
	if m.Reactions["❤️"] != 0 {
		t.Errorf("reaction should be reverted, got %v", m.Reactions)
	}
	story, _ := h.c.slides.At(2)
	if got := story.(model.StorySlide).Moments[1].Reactions["❤️"]; got != 0 {
		t.Errorf("embedded copy not reverted: %d", got)
	}

	if _, err := h.c.React("nope", "🔥"); err == nil {
		t.Error("reacting to an unloaded moment should fail")
	}
}

func TestDeleteKeepsActiveSlide(t *testing.T) {
	svc := newFakeService()
	slides := momentSlides(5)
	slides[4] = svc.storyAt("s1", 4, 3, 3, false)
	h := newHarness(t, testConfig(), slides, svc)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		h.settle(h.c.Key("down"))
	}

	if err := h.c.Delete(ctx, "m00"); err != nil {
		t.Fatal(err)
	}
	if h.c.Len() != 5 || h.c.Index() != 2 {
		t.Fatalf("the service call alone must not change state: len=%d index=%d", h.c.Len(), h.c.Index())
	}
	h.c.Deleted("m00")
	h.c.Synced()
	if h.c.Len() != 4 || h.c.Index() != 1 {
		t.Fatalf("len=%d index=%d", h.c.Len(), h.c.Index())
	}
	if m, _ := h.c.ActiveMoment(); m.ID != "m02" {
		t.Errorf("active moment = %s, want m02", m.ID)
	}

	h.c.Deleted("s1-00")
	if got := len(h.c.SubSlides(model.StorySlideKey("s1"))); got != 2 {
		t.Errorf("story sub-slides = %d, want 2", got)
	}

	svc.deleteErr = errors.New("forbidden")
	if err := h.c.Delete(ctx, "m01"); err == nil {
		t.Error("expected error")
	}
	if h.c.Len() != 4 {
		t.Error("failed delete must not remove anything")
	}
}

func TestRefreshRewinds(t *testing.T) {
	svc := newFakeService()
	slides := momentSlides(40)
	slides[1] = svc.storyAt("s1", 1, 2, 6, false)
	h := newHarness(t, testConfig(), slides, svc)
	ctx := context.Background()
	storyKey := model.StorySlideKey("s1")

	if _, err := h.c.FetchSubSlides(ctx, storyKey); err != nil {
		t.Fatal(err)
	}
	if got := len(h.c.SubSlides(storyKey)); got != 6 {
		t.Fatalf("story sub-slides = %d, want 6", got)
	}

	walk := func() []int {
		var fired []int
		for i := 0; i < 12; i++ {
			fx := h.c.Key("down")
			if fx.FetchMore {
				fired = append(fired, h.c.Index())
			}
			h.settle(fx)
		}
		return fired
	}

	if fired := walk(); len(fired) != 1 || fired[0] != 12 {
		t.Fatalf("first walk fired at %v, want [12]", fired)
	}

	if ok, err := h.c.Refresh(ctx); !ok || err != nil {
		t.Fatalf("Refresh: ok=%v err=%v", ok, err)
	}
	h.c.Synced()
	if h.c.Index() != 0 || h.c.Len() != 16 {
		t.Fatalf("after refresh index=%d len=%d, want 0 and 16", h.c.Index(), h.c.Len())
	}
	if got := len(h.c.SubSlides(storyKey)); got != 2 {
		t.Errorf("story should be re-seeded from the new first page, have %d sub-slides", got)
	}

	if fired := walk(); len(fired) != 1 || fired[0] != 12 {
		t.Errorf("prefetch after refresh fired at %v, want [12]", fired)
	}
}

func TestResizeResnaps(t *testing.T) {
	h := newHarness(t, testConfig(), momentSlides(5), nil)
	h.settle(h.c.Key("down"))
	fx := h.c.Resize()
	if len(fx.Scroll) != 1 || fx.Scroll[0].Offset != 10 || fx.Scroll[0].Smooth {
		t.Errorf("resize: %+v", fx)
	}
}
