package gesture

import (
	"testing"
	"time"
)

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestSwipeDirections(t *testing.T) {
	tests := []struct {
		name   string
		dx, dy int
		want   Swipe
	}{
		{"up", 0, -6, SwipeUp},
		{"down", 1, 6, SwipeDown},
		{"left", -12, 1, SwipeLeft},
		{"right", 12, 0, SwipeRight},
		{"too short", 1, 1, SwipeNone},
		// 6 columns scale to 3 rows, under the distance threshold
		{"short horizontal", 6, 0, SwipeNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewSwipeRecognizer(DefaultSwipeConfig())
			r.Press(20, 10, t0)
			got := r.Release(20+tt.dx, 10+tt.dy, t0.Add(time.Second))
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSwipeFastFlick(t *testing.T) {
	r := NewSwipeRecognizer(DefaultSwipeConfig())
	r.Press(0, 10, t0)
	if got := r.Release(0, 7, t0.Add(50*time.Millisecond)); got != SwipeUp {
		t.Errorf("fast short flick: got %v, want up", got)
	}

	r.Press(0, 10, t0)
	if got := r.Release(0, 7, t0.Add(2*time.Second)); got != SwipeNone {
		t.Errorf("slow short drag: got %v, want none", got)
	}
}

func TestSwipeReportsOncePerPress(t *testing.T) {
	r := NewSwipeRecognizer(DefaultSwipeConfig())
	r.Press(0, 20, t0)
	if r.Move(0, 18, t0.Add(time.Second)) != SwipeNone {
		t.Fatal("fired before threshold")
	}
	if r.Move(0, 15, t0.Add(time.Second)) != SwipeUp {
		t.Fatal("should fire once threshold is crossed")
	}
	if r.Move(0, 5, t0.Add(time.Second)) != SwipeNone {
		t.Error("should not fire twice in one drag")
	}
	if r.Release(0, 0, t0.Add(time.Second)) != SwipeNone {
		t.Error("release after a reported swipe should be silent")
	}
	if r.Active() {
		t.Error("release should end the drag")
	}
}

func TestMoveWithoutPressIgnored(t *testing.T) {
	r := NewSwipeRecognizer(DefaultSwipeConfig())
	if r.Move(0, 50, t0) != SwipeNone || r.Release(0, 50, t0) != SwipeNone {
		t.Error("no press, no swipe")
	}
}
