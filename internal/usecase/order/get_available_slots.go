package order

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	domain "github.com/BruksfildServices01/detailing-scheduler/internal/domain/order"
	"github.com/BruksfildServices01/detailing-scheduler/internal/httperr"
	"github.com/BruksfildServices01/detailing-scheduler/internal/timezone"
)

type AvailableSlotsInput struct {
	Date     string
	Duration string
}

type GetAvailableSlots struct {
	orders domain.OrderRepository
	hours  domain.BusinessHours
}

func NewGetAvailableSlots(orders domain.OrderRepository, hours domain.BusinessHours) *GetAvailableSlots {
	return &GetAvailableSlots{orders: orders, hours: hours}
}

func (uc *GetAvailableSlots) Execute(ctx context.Context, in AvailableSlotsInput) ([]string, error) {
	if strings.TrimSpace(in.Date) == "" || strings.TrimSpace(in.Duration) == "" {
		return nil, httperr.ErrValidation(domain.CodeMissingFields, "date and duration are required.")
	}

	date, err := timezone.ParseDate(in.Date)
	if err != nil {
		return nil, httperr.ErrValidation(domain.CodeInvalidDate, "date must be YYYY-MM-DD.")
	}

	duration, err := strconv.Atoi(strings.TrimSpace(in.Duration))
	if err != nil || duration <= 0 {
		return nil, httperr.ErrValidation(domain.CodeInvalidDuration, "duration must be a positive number of minutes.")
	}
	if duration > domain.MaxDurationMin {
		return nil, httperr.ErrValidation(domain.CodeInvalidDuration, "duration must not exceed 24 hours.")
	}

	from, to := timezone.DayBounds(date)
	orders, err := uc.orders.ListActiveStartingBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list orders for %s: %w", in.Date, err)
	}

	busy, err := domain.BusyIntervals(orders)
	if err != nil {
		return nil, err
	}

	return domain.GenerateSlots(uc.hours, date, duration, busy), nil
}
