package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/detailing-scheduler/internal/models"
)

func at(hhmm string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", "2025-10-20 "+hhmm)
	if err != nil {
		panic(err)
	}
	return t
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name         string
		aStart, aEnd string
		bStart, bEnd string
		want         bool
	}{
		{"disjoint", "09:00", "10:00", "11:00", "12:00", false},
		{"touching end", "10:00", "10:30", "10:30", "11:00", false},
		{"touching start", "10:30", "11:00", "10:00", "10:30", false},
		{"partial", "10:00", "11:00", "10:30", "11:15", true},
		{"contained", "10:00", "12:00", "10:30", "11:00", true},
		{"identical", "10:00", "11:00", "10:00", "11:00", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a1, a2, b1, b2 := at(tc.aStart), at(tc.aEnd), at(tc.bStart), at(tc.bEnd)

			assert.Equal(t, tc.want, Overlaps(a1, a2, b1, b2))
			assert.Equal(t, Overlaps(a1, a2, b1, b2), Overlaps(b1, b2, a1, a2), "symmetry")
		})
	}
}

func TestIntervalOf(t *testing.T) {
	o := &models.Order{ID: "o1", StartTime: "2025-10-20T10:00:00Z", EndTime: "2025-10-20T11:15:00Z"}

	b, err := IntervalOf(o)
	require.NoError(t, err)
	assert.Equal(t, 75*time.Minute, b.End.Sub(b.Start))

	_, err = IntervalOf(&models.Order{ID: "bad", StartTime: "nope"})
	assert.Error(t, err)
}
