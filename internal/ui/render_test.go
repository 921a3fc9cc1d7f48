package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/abelbrown/moments/internal/model"
	"github.com/mattn/go-runewidth"
)

func TestCaptionLines(t *testing.T) {
	caption := "the quick brown fox jumps over the lazy dog again and again"

	got := captionLines(caption, 20, 2)
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("want 2 lines, got %d: %q", len(lines), got)
	}
	for _, l := range lines {
		if w := runewidth.StringWidth(l); w > 20 {
			t.Errorf("line %q is %d cells wide", l, w)
		}
	}
	if !strings.HasSuffix(lines[1], "…") {
		t.Errorf("truncated caption should end with an ellipsis: %q", lines[1])
	}
}

func TestCaptionLinesLongWord(t *testing.T) {
	got := captionLines(strings.Repeat("x", 40), 10, 3)
	if w := runewidth.StringWidth(got); w > 10 {
		t.Errorf("long word should be cut to 10 cells, got %d", w)
	}
}

func TestCaptionLinesEmpty(t *testing.T) {
	if got := captionLines("", 20, 3); got != "" {
		t.Errorf("empty caption rendered %q", got)
	}
	if got := captionLines("hello", 20, 0); got != "" {
		t.Errorf("zero lines rendered %q", got)
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		at   time.Time
		want string
	}{
		{now.Add(-10 * time.Second), "just now"},
		{now.Add(-5 * time.Minute), "5m"},
		{now.Add(-3 * time.Hour), "3h"},
		{now.Add(-50 * time.Hour), "2d"},
		{now.Add(-30 * 24 * time.Hour), "Apr 1"},
	}
	for _, tt := range tests {
		if got := relativeTime(tt.at, now); got != tt.want {
			t.Errorf("relativeTime(%v) = %q, want %q", now.Sub(tt.at), got, tt.want)
		}
	}
}

func TestReactionLineOrder(t *testing.T) {
	m := model.Moment{Reactions: map[string]int{"🔥": 2, "❤️": 1, "👍": 4}}
	got := reactionLine(m)
	if got != "❤️ 1  🔥 2  👍 4" {
		t.Errorf("reactionLine = %q", got)
	}
	if reactionLine(model.Moment{}) != "" {
		t.Error("no reactions should render nothing")
	}
}

func TestRenderSlideSize(t *testing.T) {
	m := testMoment("m1", 0)
	m.Caption = strings.Repeat("word ", 200)
	out := renderSlide(model.MomentSlide{Moment: m}, nil, 0, 40, 12, true, epoch)

	lines := strings.Split(out, "\n")
	if len(lines) != 12 {
		t.Errorf("slide should be exactly 12 lines, got %d", len(lines))
	}
}

func TestRenderStoryComparison(t *testing.T) {
	a, b := testMoment("before", 0), testMoment("after", 1)
	s := model.StorySlide{
		Story:   model.Story{ID: "s1", Title: "Garden", Comparison: true, MomentCount: 2},
		Moments: []model.Moment{a, b},
	}
	out := renderSlide(s, nil, 0, 80, 20, true, epoch)
	if !strings.Contains(out, "compare") {
		t.Error("comparison story should carry its badge")
	}
	if !strings.Contains(out, "caption of before") || !strings.Contains(out, "caption of after") {
		t.Error("comparison story should show both moments")
	}
}

func TestDots(t *testing.T) {
	got := dots(3, 1, true)
	if got != "○●○…" {
		t.Errorf("dots = %q", got)
	}
}
