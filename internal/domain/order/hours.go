package order

import (
	"time"

	"github.com/BruksfildServices01/detailing-scheduler/internal/timezone"
)

// BusinessHours is the daily bookable window [OpenHour:00, CloseHour:00) UTC.
type BusinessHours struct {
	OpenHour    int
	CloseHour   int
	StepMinutes int
}

var DefaultBusinessHours = BusinessHours{
	OpenHour:    9,
	CloseHour:   20,
	StepMinutes: 30,
}

func (h BusinessHours) Window(date time.Time) (time.Time, time.Time) {
	day, _ := timezone.DayBounds(date)
	return day.Add(time.Duration(h.OpenHour) * time.Hour),
		day.Add(time.Duration(h.CloseHour) * time.Hour)
}

// GenerateSlots returns the HH:MM start times on date for which a job of
// durationMin fits inside the window and overlaps none of busy. Candidates
// advance by StepMinutes from the opening time; the scan stops at the first
// candidate that would run past closing.
func GenerateSlots(h BusinessHours, date time.Time, durationMin int, busy []BusyInterval) []string {
	slots := []string{}
	if durationMin <= 0 || durationMin > MaxDurationMin || h.StepMinutes <= 0 {
		return slots
	}

	open, closing := h.Window(date)
	length := time.Duration(durationMin) * time.Minute
	step := time.Duration(h.StepMinutes) * time.Minute

	for cur := open; cur.Before(closing); cur = cur.Add(step) {
		end := cur.Add(length)
		if end.After(closing) {
			break
		}

		free := true
		for _, b := range busy {
			if b.Overlaps(cur, end) {
				free = false
				break
			}
		}

		if free {
			slots = append(slots, cur.Format(timezone.ClockLayout))
		}
	}

	return slots
}
