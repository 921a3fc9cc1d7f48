package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/moments/internal/bus"
	"github.com/mattn/go-runewidth"
)

// debugPanelChrome is the number of terminal lines consumed by DebugPanel's
// border (top + bottom = 2) and vertical padding (top + bottom = 2).
const debugPanelChrome = 4

const eventLogSize = 64

type loggedEvent struct {
	at time.Time
	e  bus.Event
}

// eventLog keeps the most recent bus events for the debug overlay.
type eventLog struct {
	buf   []loggedEvent
	next  int
	full  bool
	count map[bus.Kind]int
}

func newEventLog() *eventLog {
	return &eventLog{
		buf:   make([]loggedEvent, eventLogSize),
		count: make(map[bus.Kind]int),
	}
}

func (l *eventLog) push(at time.Time, e bus.Event) {
	l.buf[l.next] = loggedEvent{at: at, e: e}
	l.next = (l.next + 1) % len(l.buf)
	if l.next == 0 {
		l.full = true
	}
	l.count[e.Kind]++
}

// last returns up to n events, newest first.
func (l *eventLog) last(n int) []loggedEvent {
	size := l.next
	if l.full {
		size = len(l.buf)
	}
	n = min(max(n, 0), size)
	out := make([]loggedEvent, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, l.buf[(l.next-i+len(l.buf))%len(l.buf)])
	}
	return out
}

// debugOverlay renders event counters and the most recent bus events.
func debugOverlay(log *eventLog, dropped uint64, now time.Time, width, height int) string {
	if log == nil {
		return ""
	}

	var lines []string
	lines = append(lines, DebugHeaderStyle.Render("Event Counts"))
	lines = append(lines, fmt.Sprintf("  Slides:    %d changed, %d index moves",
		log.count[bus.SlidesChanged], log.count[bus.IndexChanged]))
	lines = append(lines, fmt.Sprintf("  Stories:   %d sub-slide changes",
		log.count[bus.SubSlidesChanged]))
	lines = append(lines, fmt.Sprintf("  Moments:   %d updated, %d deleted",
		log.count[bus.MomentUpdated], log.count[bus.MomentDeleted]))
	lines = append(lines, fmt.Sprintf("  Playback:  %d stops, %d resumes",
		log.count[bus.PlaybackStop], log.count[bus.PlaybackResume]))
	lines = append(lines, fmt.Sprintf("  Dropped:   %d", dropped))
	lines = append(lines, "")

	lines = append(lines, DebugHeaderStyle.Render("Recent Events"))
	for _, le := range log.last(20) {
		line := fmt.Sprintf("  %6s  %-18s  %s", formatAge(now.Sub(le.at)), string(le.e.Kind),
			runewidth.Truncate(le.e.Scope, 24, "…"))
		switch le.e.Kind {
		case bus.IndexChanged:
			line += fmt.Sprintf("  → %d", le.e.Index)
		case bus.SlidesChanged, bus.SubSlidesChanged:
			line += fmt.Sprintf("  n=%d", le.e.Count)
		}
		lines = append(lines, line)
	}

	maxHeight := max(height-debugPanelChrome, 1)
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}
	panelWidth := min(76, width-4)
	panelWidth = max(panelWidth, 20)

	return DebugPanel.Width(panelWidth).Render(strings.Join(lines, "\n"))
}

func formatAge(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
}
