package timezone

import (
	"fmt"
	"strings"
	"time"
)

// The business calendar is fixed to UTC. Persisted timestamps use a fixed-width
// layout so that lexical order equals chronological order.
const (
	ISOLayout   = "2006-01-02T15:04:05Z"
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

func Now() time.Time {
	return Normalize(time.Now())
}

// Normalize converts t to UTC with whole-second precision.
func Normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// ParseISO accepts ISO-8601 timestamps with a trailing Z, an explicit offset or
// no offset at all (read as UTC).
func ParseISO(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("timezone: empty timestamp")
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Normalize(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("timezone: invalid timestamp %q", s)
}

func FormatISO(t time.Time) string {
	return Normalize(t).Format(ISOLayout)
}

// ParseDate parses YYYY-MM-DD as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("timezone: invalid date %q", s)
	}
	return d, nil
}

// DayBounds returns [00:00, next 00:00) of t's UTC calendar day.
func DayBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// DaysTouched lists the UTC days (as midnights, ascending) that [start, end)
// intersects.
func DaysTouched(start, end time.Time) []time.Time {
	day, _ := DayBounds(start)
	if !end.After(start) {
		return []time.Time{day}
	}

	var days []time.Time
	for ; day.Before(end); day = day.AddDate(0, 0, 1) {
		days = append(days, day)
	}
	return days
}
