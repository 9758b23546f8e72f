package clock

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar days.
const DateLayout = "2006-01-02"

// clockLayout is the wire format for local wall-clock times ("09:30").
const clockLayout = "15:04"

// LoadLocation resolves an IANA zone name.
func LoadLocation(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", name, err)
	}
	return loc, nil
}

// DayBounds resolves a calendar date to its start and end instants in the
// given location. The end bound is the start of the next calendar day, so
// on DST transition days the window is 23 or 25 hours rather than 24.
func DayBounds(date string, loc *time.Location) (time.Time, time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return start, end, nil
}

// At resolves a local wall-clock time ("HH:MM") on the calendar day of dayStart
// to an absolute instant in dayStart's location.
func At(dayStart time.Time, localClock string) (time.Time, error) {
	parsed, err := time.Parse(clockLayout, localClock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid local time %q: %w", localClock, err)
	}
	return time.Date(
		dayStart.Year(), dayStart.Month(), dayStart.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0,
		dayStart.Location(),
	), nil
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Intervals that merely touch do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
