package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/BruksfildServices01/detailing-scheduler/internal/domain/order"
	"github.com/BruksfildServices01/detailing-scheduler/internal/httperr"
	"github.com/BruksfildServices01/detailing-scheduler/internal/models"
)

// CheckConflict finds the order that blocks a proposed interval.
type CheckConflict struct {
	orders  domain.OrderRepository
	clients domain.ClientRepository
}

func NewCheckConflict(orders domain.OrderRepository, clients domain.ClientRepository) *CheckConflict {
	return &CheckConflict{orders: orders, clients: clients}
}

// FindConflict returns any non-cancelled order overlapping [start, end), or
// nil. excludeID skips the order being rescheduled.
func (uc *CheckConflict) FindConflict(
	ctx context.Context,
	start time.Time,
	end time.Time,
	excludeID string,
) (*models.Order, error) {

	o, err := uc.orders.FindOverlapping(ctx, start, end, excludeID)
	if err != nil {
		return nil, fmt.Errorf("find overlapping order: %w", err)
	}
	return o, nil
}

// BlockingClientName resolves the display name of the client holding o.
func (uc *CheckConflict) BlockingClientName(ctx context.Context, o *models.Order) string {
	if o.Client != nil && o.Client.FullName != "" {
		return o.Client.FullName
	}

	c, err := uc.clients.GetByID(ctx, o.ClientID)
	if err != nil || c.FullName == "" {
		return domain.ConflictFallbackName
	}
	return c.FullName
}

// Assert fails with a conflict error when [start, end) is taken.
func (uc *CheckConflict) Assert(
	ctx context.Context,
	origin domain.Origin,
	start time.Time,
	end time.Time,
	excludeID string,
) (*models.Order, error) {

	blocking, err := uc.FindConflict(ctx, start, end, excludeID)
	if err != nil {
		return nil, err
	}
	if blocking == nil {
		return nil, nil
	}
	return blocking, conflictError(origin, uc.BlockingClientName(ctx, blocking))
}

// Public callers never see who holds the slot.
func conflictError(origin domain.Origin, clientName string) error {
	if origin == domain.OriginPublic {
		return httperr.ErrConflict(domain.CodeTimeConflict,
			"Sorry, this time has just been taken. Please choose another one.")
	}
	return httperr.ErrConflict(domain.CodeTimeConflict,
		"This time overlaps an order of client: "+clientName)
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrRecordNotFound)
}
