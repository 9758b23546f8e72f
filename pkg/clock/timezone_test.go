package clock

import (
	"testing"
	"time"
)

func TestDayBounds_RegularDay(t *testing.T) {
	loc, err := LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("failed to load zone: %v", err)
	}

	start, end, err := DayBounds("2025-06-02", loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := end.Sub(start); got != 24*time.Hour {
		t.Errorf("expected a 24h day, got %s", got)
	}
	if start.Hour() != 0 || start.Minute() != 0 {
		t.Errorf("expected local midnight, got %s", start)
	}
}

func TestDayBounds_DSTTransitions(t *testing.T) {
	loc, err := LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("failed to load zone: %v", err)
	}

	// Spring forward 2025-03-09: the local day is 23 hours.
	start, end, err := DayBounds("2025-03-09", loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := end.Sub(start); got != 23*time.Hour {
		t.Errorf("expected a 23h spring-forward day, got %s", got)
	}

	// Fall back 2025-11-02: the local day is 25 hours.
	start, end, err = DayBounds("2025-11-02", loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := end.Sub(start); got != 25*time.Hour {
		t.Errorf("expected a 25h fall-back day, got %s", got)
	}
}

func TestDayBounds_RejectsMalformedDate(t *testing.T) {
	for _, date := range []string{"2025-6-2", "02-06-2025", "2025-13-01", "not-a-date", ""} {
		if _, _, err := DayBounds(date, time.UTC); err == nil {
			t.Errorf("expected error for date %q", date)
		}
	}
}

func TestAt(t *testing.T) {
	loc, err := LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("failed to load zone: %v", err)
	}
	dayStart, _, err := DayBounds("2025-06-02", loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	instant, err := At(dayStart, "09:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if instant.Hour() != 9 || instant.Minute() != 30 {
		t.Errorf("expected 09:30 local, got %s", instant)
	}
	if instant.Location() != loc {
		t.Errorf("expected instant in %s, got %s", loc, instant.Location())
	}

	if _, err := At(dayStart, "24:00"); err == nil {
		t.Error("expected error for out-of-range clock value")
	}
}

func TestOverlaps(t *testing.T) {
	base := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	at := func(min int) time.Time { return base.Add(time.Duration(min) * time.Minute) }

	tests := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     time.Time
		want                           bool
	}{
		{"identical", at(0), at(30), at(0), at(30), true},
		{"partial overlap", at(0), at(30), at(15), at(45), true},
		{"containment", at(0), at(60), at(15), at(30), true},
		{"touching end to start", at(0), at(30), at(30), at(60), false},
		{"touching start to end", at(30), at(60), at(0), at(30), false},
		{"disjoint", at(0), at(30), at(45), at(60), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
			// Overlap is symmetric.
			if got := Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd); got != tt.want {
				t.Errorf("Overlaps (swapped) = %v, want %v", got, tt.want)
			}
		})
	}
}
