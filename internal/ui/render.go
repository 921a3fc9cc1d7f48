package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/abelbrown/moments/internal/feed"
	"github.com/abelbrown/moments/internal/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
)

// Border plus padding of Card, in cells.
const (
	cardChromeX = 4
	cardChromeY = 2
)

// renderSlide renders one slide as a w x h cell. subs and sub describe the
// story's loaded sub-slides and the one on screen; they are ignored for
// moment slides.
func renderSlide(s model.Slide, subs []model.Moment, sub int, w, h int, active bool, now time.Time) string {
	style := Card
	if active {
		style = ActiveCard
	}
	innerW := max(w-cardChromeX, 1)
	innerH := max(h-cardChromeY, 1)

	var body string
	switch s := s.(type) {
	case model.MomentSlide:
		body = renderMoment(s.Moment, innerW, innerH, now)
	case model.StorySlide:
		body = renderStory(s, subs, sub, innerW, innerH, now)
	}
	return style.
		Width(w - 2).
		Height(h - 2).
		MaxWidth(w).
		MaxHeight(h).
		Render(body)
}

func renderStory(s model.StorySlide, subs []model.Moment, sub int, w, h int, now time.Time) string {
	if len(subs) == 0 {
		subs = s.Moments
	}

	header := StoryTitle.Render(runewidth.Truncate(s.Story.Title, w/2, "…")) +
		Meta.Render(fmt.Sprintf("  @%s", s.Story.OwnerName))
	if s.Story.Comparison {
		header += "  " + ComparisonBadge.Render("compare")
	}

	if len(subs) == 0 {
		return header + "\n\n" + Meta.Render("no moments yet")
	}
	sub = min(max(sub, 0), len(subs)-1)
	bodyH := max(h-3, 1)

	var body string
	if s.Story.Comparison && len(subs) > 1 {
		half := max((w-1)/2, 1)
		left := lipgloss.NewStyle().Width(half).Render(renderMoment(subs[0], half, bodyH, now))
		right := lipgloss.NewStyle().Width(half).Render(renderMoment(subs[1], half, bodyH, now))
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
	} else {
		body = renderMoment(subs[sub], w, bodyH, now)
	}

	total := max(s.Story.MomentCount, len(subs))
	indicator := dots(len(subs), sub, len(subs) < total) +
		Meta.Render(fmt.Sprintf("  %d/%d", sub+1, total))

	return header + "\n" + indicator + "\n\n" + body
}

func renderMoment(m model.Moment, w, h int, now time.Time) string {
	var b strings.Builder
	b.WriteString(Author.Render("@" + runewidth.Truncate(m.AuthorName, max(w-12, 4), "…")))
	b.WriteString(Meta.Render(" · " + relativeTime(m.CreatedAt, now)))
	b.WriteString("\n\n")
	b.WriteString(mediaBlock(m, w))
	b.WriteString("\n\n")

	// header, media and reaction lines
	used := 2 + 5 + 2
	if lines := h - used; lines > 0 {
		b.WriteString(Caption.Render(captionLines(m.Caption, w, lines)))
		b.WriteString("\n")
	}
	if r := reactionLine(m); r != "" {
		b.WriteString("\n" + r)
	}
	return b.String()
}

func mediaBlock(m model.Moment, w int) string {
	glyph := "▣"
	switch m.MediaKind {
	case model.MediaVideo:
		glyph = "▶"
	case model.MediaAudio:
		glyph = "♪"
	}
	label := fmt.Sprintf("%s %s  %s", glyph, m.MediaKind, m.MediaURL)
	inner := max(w-4, 1)
	return Media.Width(w).Render(runewidth.Truncate(label, inner, "…"))
}

// captionLines word-wraps caption to width and keeps at most maxLines lines.
func captionLines(caption string, width, maxLines int) string {
	if caption == "" || maxLines <= 0 {
		return ""
	}
	width = max(width, 1)
	lines := strings.Split(wordwrap.String(caption, width), "\n")
	for i, l := range lines {
		// wordwrap leaves words longer than width intact
		lines[i] = runewidth.Truncate(l, width, "…")
	}
	if len(lines) > maxLines {
		lines = lines[:maxLines]
		last := lines[maxLines-1]
		lines[maxLines-1] = runewidth.Truncate(last+" …", width, "…")
	}
	return strings.Join(lines, "\n")
}

// reactionLine lists reactions in the order they are offered, then any
// other emoji alphabetically.
func reactionLine(m model.Moment) string {
	if len(m.Reactions) == 0 {
		return ""
	}
	seen := make(map[string]bool, len(feed.Reactions))
	var parts []string
	for _, e := range feed.Reactions {
		seen[e] = true
		if n := m.Reactions[e]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", e, n))
		}
	}
	var rest []string
	for e := range m.Reactions {
		if !seen[e] {
			rest = append(rest, e)
		}
	}
	sort.Strings(rest)
	for _, e := range rest {
		parts = append(parts, fmt.Sprintf("%s %d", e, m.Reactions[e]))
	}
	return strings.Join(parts, "  ")
}

// dots renders one dot per loaded sub-slide, plus an ellipsis when more
// remain on the server.
func dots(n, active int, more bool) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i == active {
			b.WriteString(DotActive.Render("●"))
		} else {
			b.WriteString(DotInactive.Render("○"))
		}
	}
	if more {
		b.WriteString(DotInactive.Render("…"))
	}
	return b.String()
}

func relativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

// renderDetail renders the click-through view of one moment.
func renderDetail(m model.Moment, story *model.Story, w, h int) string {
	innerW := max(w-8, 10)
	var b strings.Builder
	b.WriteString(Author.Render("@" + m.AuthorName))
	b.WriteString(Meta.Render("  " + m.CreatedAt.Format("Mon Jan 2 2006 15:04")))
	b.WriteString("\n")
	if story != nil {
		b.WriteString(StoryTitle.Render(story.Title))
		b.WriteString(Meta.Render(fmt.Sprintf("  %s · %d moments", story.Visibility, story.MomentCount)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(mediaBlock(m, innerW))
	b.WriteString("\n\n")
	b.WriteString(Caption.Render(wordwrap.String(m.Caption, innerW)))
	b.WriteString("\n\n")
	if r := reactionLine(m); r != "" {
		b.WriteString(r + "\n")
	}
	b.WriteString(Meta.Render("id " + m.ID))

	return DetailPanel.
		Width(max(w-2, 10)).
		MaxHeight(max(h, 3)).
		Render(b.String())
}
