package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/ErlanBelekov/workout-tracker/internal/domain"
)

func TestDayWindow_CoversWholeLocalDay(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	// 21:30 UTC on the 2nd is 02:30 on the 3rd in UTC+5.
	date := time.Date(2025, time.March, 2, 21, 30, 0, 0, time.UTC)

	w := domain.DayWindow(date, loc)

	wantFrom := time.Date(2025, time.March, 3, 0, 0, 0, 0, loc)
	wantTo := time.Date(2025, time.March, 3, 23, 59, 59, 999_000_000, loc)
	if !w.From.Equal(wantFrom) {
		t.Errorf("From = %v, want %v", w.From, wantFrom)
	}
	if !w.To.Equal(wantTo) {
		t.Errorf("To = %v, want %v", w.To, wantTo)
	}
}

func TestTimeRange_Contains_BoundsInclusive(t *testing.T) {
	day := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	w := domain.DayWindow(day, time.UTC)

	cases := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"start of day", day, true},
		{"noon", day.Add(12 * time.Hour), true},
		{"last millisecond", day.Add(24*time.Hour - time.Millisecond), true},
		{"next midnight", day.Add(24 * time.Hour), false},
		{"before midnight", day.Add(-time.Nanosecond), false},
	}
	for _, tc := range cases {
		if got := w.Contains(tc.at); got != tc.want {
			t.Errorf("%s: Contains(%v) = %v, want %v", tc.name, tc.at, got, tc.want)
		}
	}
}

func TestParseDay(t *testing.T) {
	loc := time.FixedZone("UTC-7", -7*60*60)

	got, err := domain.ParseDay("2025-01-31", loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := time.Date(2025, time.January, 31, 0, 0, 0, 0, loc); !got.Equal(want) {
		t.Errorf("ParseDay = %v, want %v", got, want)
	}

	for _, bad := range []string{"", "2025-13-01", "31/01/2025", "2025-01-31T00:00:00Z"} {
		if _, err := domain.ParseDay(bad, loc); !errors.Is(err, domain.ErrInvalidDay) {
			t.Errorf("ParseDay(%q) err = %v, want ErrInvalidDay", bad, err)
		}
	}
}
