package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/detailing-scheduler/internal/httperr"
	"github.com/BruksfildServices01/detailing-scheduler/internal/models"
)

// MaxDurationMin is the longest order, in minutes, the shop accepts.
const MaxDurationMin = 24 * 60

type Totals struct {
	DurationMin int
	Price       decimal.Decimal
}

func (t Totals) Duration() time.Duration {
	return time.Duration(t.DurationMin) * time.Minute
}

// Aggregate sums the duration and price of the selected services.
func Aggregate(services []models.Service) (Totals, error) {
	t := Totals{Price: decimal.Zero}
	for _, s := range services {
		if s.DurationMin > MaxDurationMin || t.DurationMin+s.DurationMin > MaxDurationMin {
			return t, httperr.ErrValidation(CodeInvalidDuration, "Order duration must not exceed 24 hours.")
		}
		t.DurationMin += s.DurationMin
		t.Price = t.Price.Add(s.Price)
	}

	if t.DurationMin <= 0 {
		return t, httperr.ErrValidation(CodeInvalidDuration, "Order duration must be greater than zero.")
	}
	return t, nil
}

// OrderServices returns services in the order of ids. It fails when an id is
// repeated or did not resolve.
func OrderServices(ids []string, found []models.Service) ([]models.Service, bool) {
	if len(found) != len(ids) {
		return nil, false
	}

	byID := make(map[string]models.Service, len(found))
	for _, s := range found {
		byID[s.ID] = s
	}

	out := make([]models.Service, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			return nil, false
		}
		if _, dup := seen[id]; dup {
			return nil, false
		}
		seen[id] = struct{}{}
		out = append(out, s)
	}
	return out, true
}
