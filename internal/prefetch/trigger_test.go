package prefetch

import "testing"

func TestAdvancingThroughSixteenFiresOnceAtTwelve(t *testing.T) {
	tr := New(4)
	fired := []int{}
	for idx := 0; idx <= 12; idx++ {
		w := Window{Index: idx, Loaded: 16, HasNext: true, FetchedOnce: true}
		if tr.Evaluate(w) {
			fired = append(fired, idx)
		}
	}
	if len(fired) != 1 || fired[0] != 12 {
		t.Errorf("fired at %v, want [12]", fired)
	}
}

func TestNoRefireWithoutIndexChange(t *testing.T) {
	tr := New(4)
	w := Window{Index: 12, Loaded: 16, HasNext: true, FetchedOnce: true}
	if !tr.Evaluate(w) {
		t.Fatal("first evaluation should fire")
	}
	for i := 0; i < 5; i++ {
		if tr.Evaluate(w) {
			t.Fatal("should not re-fire for the same window")
		}
	}

	w.Index = 13
	if !tr.Evaluate(w) {
		t.Error("index change inside the zone should fire again (retry after failure)")
	}
}

func TestGuards(t *testing.T) {
	tests := []struct {
		name string
		w    Window
	}{
		{"no more pages", Window{Index: 12, Loaded: 16, HasNext: false, FetchedOnce: true}},
		{"initial fetch pending", Window{Index: 12, Loaded: 16, HasNext: true, FetchedOnce: false}},
		{"fetch in flight", Window{Index: 12, Loaded: 16, HasNext: true, FetchedOnce: true, Fetching: true}},
		{"first page too small", Window{Index: 0, Loaded: 4, HasNext: true, FetchedOnce: true}},
		{"far from end", Window{Index: 11, Loaded: 16, HasNext: true, FetchedOnce: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if New(4).Evaluate(tt.w) {
				t.Error("should not fire")
			}
		})
	}
}

func TestResetRearms(t *testing.T) {
	tr := New(0)
	if tr.Threshold() != DefaultThreshold {
		t.Fatalf("threshold = %d", tr.Threshold())
	}
	w := Window{Index: 2, Loaded: 6, HasNext: true, FetchedOnce: true}
	tr.Evaluate(w)
	tr.Reset()
	if !tr.Evaluate(w) {
		t.Error("Reset should allow the same window to fire again")
	}
}
