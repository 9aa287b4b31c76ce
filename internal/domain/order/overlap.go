package order

import (
	"fmt"
	"time"

	"github.com/BruksfildServices01/detailing-scheduler/internal/models"
	"github.com/BruksfildServices01/detailing-scheduler/internal/timezone"
)

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Touching intervals do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// BusyInterval is the part of an order that matters for overlap tests.
type BusyInterval struct {
	Start time.Time
	End   time.Time
}

func (b BusyInterval) Overlaps(start, end time.Time) bool {
	return Overlaps(start, end, b.Start, b.End)
}

func IntervalOf(o *models.Order) (BusyInterval, error) {
	start, err := timezone.ParseISO(o.StartTime)
	if err != nil {
		return BusyInterval{}, fmt.Errorf("order %s start: %w", o.ID, err)
	}
	end, err := timezone.ParseISO(o.EndTime)
	if err != nil {
		return BusyInterval{}, fmt.Errorf("order %s end: %w", o.ID, err)
	}
	return BusyInterval{Start: start, End: end}, nil
}

func BusyIntervals(orders []models.Order) ([]BusyInterval, error) {
	out := make([]BusyInterval, 0, len(orders))
	for i := range orders {
		b, err := IntervalOf(&orders[i])
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}
