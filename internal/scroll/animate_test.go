package scroll

import "testing"

func TestAnimatorConverges(t *testing.T) {
	a := NewAnimator()
	a.Jump(0)
	a.Animate(30)

	running := true
	frames := 0
	for running && frames < 600 {
		_, running = a.Step()
		frames++
	}
	if running {
		t.Fatalf("animation did not settle after %d frames", frames)
	}
	if a.Offset() != 30 {
		t.Errorf("offset = %d, want 30", a.Offset())
	}
	if frames < 2 {
		t.Errorf("smooth scroll should take several frames, took %d", frames)
	}
}

func TestAnimatorJumpStops(t *testing.T) {
	a := NewAnimator()
	a.Animate(50)
	a.Step()
	a.Jump(10)
	if a.Active() || a.Offset() != 10 {
		t.Errorf("jump should stop at 10, active=%v offset=%d", a.Active(), a.Offset())
	}
	if _, running := a.Step(); running {
		t.Error("step after jump should be idle")
	}
}

func TestAnimateToCurrentIsIdle(t *testing.T) {
	a := NewAnimator()
	a.Jump(5)
	a.Animate(5)
	if a.Active() {
		t.Error("animating to the current offset should not start")
	}
}
