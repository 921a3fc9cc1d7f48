package gesture

import "testing"

func TestWheelBelowThresholdNeverFires(t *testing.T) {
	w := NewWheel(400)
	for _, d := range []float64{100, 100, 100, 99} {
		if _, ok := w.Feed(d, 3, 10); ok {
			t.Fatalf("fired below threshold at total %.0f", w.Total())
		}
	}
	if w.Total() != 399 {
		t.Errorf("total = %.0f, want 399", w.Total())
	}
}

func TestWheelCrossingFiresOnceAndResets(t *testing.T) {
	w := NewWheel(400)
	fired := 0
	for _, d := range []float64{150, 150, 150} {
		if dir, ok := w.Feed(d, 3, 10); ok {
			fired++
			if dir != Advance {
				t.Errorf("dir = %v, want advance", dir)
			}
		}
	}
	if fired != 1 {
		t.Errorf("fired %d times, want 1", fired)
	}
	if w.Total() != 0 {
		t.Errorf("accumulator not reset: %.0f", w.Total())
	}

	if dir, ok := w.Feed(-400, 3, 10); !ok || dir != Retreat {
		t.Errorf("negative crossing: dir=%v ok=%v", dir, ok)
	}
}

func TestWheelPinnedAtBoundaryDiscards(t *testing.T) {
	tests := []struct {
		name   string
		delta  float64
		index  int
		length int
	}{
		{"retreat at first", -300, 0, 5},
		{"advance at last", 300, 4, 5},
		{"empty", 300, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWheel(400)
			w.acc = 250
			if _, ok := w.Feed(tt.delta, tt.index, tt.length); ok {
				t.Error("should not fire at a boundary")
			}
			if w.Total() != 0 {
				t.Errorf("accumulator = %.0f, want 0", w.Total())
			}
		})
	}
}

func TestWheelDefaultThreshold(t *testing.T) {
	if NewWheel(0).threshold != DefaultWheelThreshold {
		t.Error("zero threshold should use the default")
	}
}
