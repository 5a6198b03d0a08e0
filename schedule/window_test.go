package schedule

import (
	"testing"
	"time"
)

func TestCompute(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(4 * 24 * time.Hour)

	tests := []struct {
		name         string
		now          time.Time
		wantProgress float64
		wantRemain   Remaining
		wantWithin   bool
	}{
		{
			name:         "before start shows full duration remaining",
			now:          start.Add(-time.Hour),
			wantProgress: 0,
			wantRemain:   Remaining{Days: 4},
			wantWithin:   false,
		},
		{
			name:         "quarter elapsed",
			now:          start.Add(24 * time.Hour),
			wantProgress: 25,
			wantRemain:   Remaining{Days: 3},
			wantWithin:   true,
		},
		{
			name:         "mid window with mixed units",
			now:          end.Add(-(26*time.Hour + 30*time.Minute + 15*time.Second)),
			wantProgress: 100 * float64(4*24*time.Hour-(26*time.Hour+30*time.Minute+15*time.Second)) / float64(4*24*time.Hour),
			wantRemain:   Remaining{Days: 1, Hours: 2, Minutes: 30, Seconds: 15},
			wantWithin:   true,
		},
		{
			name:         "after end",
			now:          end.Add(time.Minute),
			wantProgress: 100,
			wantRemain:   Remaining{},
			wantWithin:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(start, end, tt.now)
			if got.ProgressPercent != tt.wantProgress {
				t.Errorf("ProgressPercent = %v, want %v", got.ProgressPercent, tt.wantProgress)
			}
			if got.Remaining != tt.wantRemain {
				t.Errorf("Remaining = %+v, want %+v", got.Remaining, tt.wantRemain)
			}
			if got.WithinWindow != tt.wantWithin {
				t.Errorf("WithinWindow = %v, want %v", got.WithinWindow, tt.wantWithin)
			}
		})
	}
}

func TestComputeDegenerateWindow(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	got := Compute(at, at, at)
	if got.ProgressPercent != 100 {
		t.Errorf("ProgressPercent = %v, want 100", got.ProgressPercent)
	}
	if got.WithinWindow {
		t.Error("WithinWindow = true, want false")
	}

	// Инвертированное окно ведёт себя как вырожденное.
	got = Compute(at, at.Add(-time.Hour), at)
	if got.ProgressPercent != 100 {
		t.Errorf("inverted window: ProgressPercent = %v, want 100", got.ProgressPercent)
	}
}

func TestComputeDeterministic(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)
	now := start.Add(17 * time.Minute)

	first := Compute(start, end, now)
	for i := 0; i < 5; i++ {
		if got := Compute(start, end, now); got != first {
			t.Fatalf("Compute is not deterministic: %+v != %+v", got, first)
		}
	}
}
