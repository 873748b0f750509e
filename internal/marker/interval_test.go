package marker

import "testing"

func TestNextOccurrence(t *testing.T) {
	tests := []struct {
		name     string
		start    int
		interval int
		current  int
		want     int
	}{
		{"before first occurrence", 5, 10, 3, 5},
		{"at start", 5, 10, 5, 15},
		{"between occurrences", 5, 10, 17, 25},
		{"exactly on occurrence", 5, 10, 25, 35},
		{"start zero", 0, 4, 0, 4},
		{"start zero mid", 0, 4, 9, 12},
		{"interval one", 0, 1, 7, 8},
		{"negative current", 5, 10, -3, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextOccurrence(tt.start, tt.interval, tt.current)
			if got != tt.want {
				t.Errorf("NextOccurrence(%d, %d, %d) = %d, want %d",
					tt.start, tt.interval, tt.current, got, tt.want)
			}
		})
	}
}

// The next occurrence must always lie strictly ahead of the current value,
// for any start/interval/current combination.
func TestNextOccurrence_ForwardProgress(t *testing.T) {
	for start := -5; start <= 25; start += 3 {
		for interval := 1; interval <= 13; interval += 2 {
			for current := -10; current <= 60; current++ {
				got := NextOccurrence(start, interval, current)
				if got <= current {
					t.Fatalf("NextOccurrence(%d, %d, %d) = %d, not > current",
						start, interval, current, got)
				}
			}
		}
	}
}

func TestOccurrencesThrough(t *testing.T) {
	got := OccurrencesThrough(5, 10, 40, 500)
	want := []int{5, 15, 25, 35}
	if len(got) != len(want) {
		t.Fatalf("OccurrencesThrough = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("occurrence[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestOccurrencesThrough_Cap(t *testing.T) {
	got := OccurrencesThrough(1, 1, 10000, 500)
	if len(got) != 500 {
		t.Errorf("len = %d, want cap 500", len(got))
	}
}

func TestOccurrencesThrough_Empty(t *testing.T) {
	if got := OccurrencesThrough(50, 10, 40, 500); got != nil {
		t.Errorf("limit before start: got %v, want nil", got)
	}
	if got := OccurrencesThrough(5, 10, 40, 0); got != nil {
		t.Errorf("zero cap: got %v, want nil", got)
	}
}
