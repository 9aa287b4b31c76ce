package order

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/detailing-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/detailing-scheduler/internal/domain/order"
	"github.com/BruksfildServices01/detailing-scheduler/internal/httperr"
	"github.com/BruksfildServices01/detailing-scheduler/internal/models"
	"github.com/BruksfildServices01/detailing-scheduler/internal/timezone"
)

// OrderUpdate lists the fields an order may change after creation. Nil means
// "leave as is". An empty EmployeeID unassigns the order.
type OrderUpdate struct {
	Status     *string   `json:"status"`
	EmployeeID *string   `json:"employee_id"`
	ServiceIDs *[]string `json:"service_ids"`
	StartTime  *string   `json:"start_time"`
}

func (u OrderUpdate) empty() bool {
	return u.Status == nil && u.EmployeeID == nil && u.ServiceIDs == nil && u.StartTime == nil
}

type UpdateOrder struct {
	repos    domain.Repositories
	tx       domain.TxManager
	conflict *CheckConflict
	audit    Auditor
	metrics  Metrics
	log      *zap.SugaredLogger
}

func NewUpdateOrder(
	repos domain.Repositories,
	tx domain.TxManager,
	auditor Auditor,
	metrics Metrics,
	log *zap.SugaredLogger,
) *UpdateOrder {
	if auditor == nil {
		auditor = nopAuditor{}
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &UpdateOrder{
		repos:    repos,
		tx:       tx,
		conflict: NewCheckConflict(repos.Orders, repos.Clients),
		audit:    auditor,
		metrics:  metrics,
		log:      log,
	}
}

// Execute applies upd. Changing the services or the start time recomputes
// the totals and the end time; rescheduling and reactivating a cancelled
// order both re-run the conflict check against the other orders.
func (uc *UpdateOrder) Execute(
	ctx context.Context,
	id string,
	upd OrderUpdate,
	actorID *string,
) (*models.Order, error) {

	if upd.empty() {
		return nil, httperr.ErrValidation(domain.CodeMissingFields, "Nothing to update.")
	}

	var status *domain.Status
	if upd.Status != nil {
		st, err := domain.ParseStatus(*upd.Status)
		if err != nil {
			return nil, err
		}
		status = &st
	}

	var services []models.Service
	if upd.ServiceIDs != nil {
		var err error
		if services, err = uc.resolveServices(ctx, *upd.ServiceIDs); err != nil {
			return nil, err
		}
	}

	var o *models.Order
	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		o, err = uc.repos.Orders.GetByID(ctx, id)
		if err != nil {
			if isNotFound(err) {
				return httperr.ErrNotFound(domain.CodeOrderNotFound, "Order not found.")
			}
			return fmt.Errorf("load order: %w", err)
		}

		wasActive := domain.IsActive(domain.Status(o.Status))
		if status != nil {
			o.Status = string(*status)
		}

		if upd.EmployeeID != nil {
			o.EmployeeID = employeeRef(upd.EmployeeID)
		}

		rescheduled, err := reschedule(o, services, upd.StartTime)
		if err != nil {
			return err
		}

		reactivated := !wasActive && domain.IsActive(domain.Status(o.Status))
		if (rescheduled || reactivated) && domain.IsActive(domain.Status(o.Status)) {
			if err := uc.assertFree(ctx, o); err != nil {
				return err
			}
		}

		if err := uc.repos.Orders.Update(ctx, o); err != nil {
			if httperr.IsConstraintConflict(err) {
				return conflictError(domain.OriginAdmin, domain.ConflictFallbackName)
			}
			return fmt.Errorf("update order: %w", err)
		}
		return nil
	})

	if err != nil {
		if httperr.KindOf(err) == httperr.KindConflict {
			uc.metrics.OrderConflict(string(domain.OriginAdmin))
			uc.log.Warnw("order update rejected: time conflict", "order_id", id)
		}
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:  actorID,
		Action:   audit.ActionOrderUpdated,
		Entity:   audit.EntityOrder,
		EntityID: o.ID,
		Metadata: upd,
	})
	uc.log.Infow("order updated", "order_id", o.ID, "status", o.Status)

	return o, nil
}

func (uc *UpdateOrder) resolveServices(ctx context.Context, ids []string) ([]models.Service, error) {
	if len(ids) == 0 {
		return nil, httperr.ErrValidation(domain.CodeMissingFields, "service_ids must not be empty.")
	}

	found, err := uc.repos.Services.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load services: %w", err)
	}

	services, ok := domain.OrderServices(ids, found)
	if !ok {
		return nil, httperr.ErrValidation(domain.CodeServicesNotFound, "One or more services were not found.")
	}
	return services, nil
}

func (uc *UpdateOrder) assertFree(ctx context.Context, o *models.Order) error {
	b, err := domain.IntervalOf(o)
	if err != nil {
		return err
	}

	if err := uc.repos.Orders.LockWindow(ctx, b.Start, b.End); err != nil {
		return fmt.Errorf("lock order window: %w", err)
	}

	_, err = uc.conflict.Assert(ctx, domain.OriginAdmin, b.Start, b.End, o.ID)
	return err
}

// reschedule recomputes the interval and totals of o when services or the
// start time change. It reports whether anything moved.
func reschedule(o *models.Order, services []models.Service, startTime *string) (bool, error) {
	if services == nil && startTime == nil {
		return false, nil
	}

	start, err := timezone.ParseISO(o.StartTime)
	if startTime != nil {
		start, err = timezone.ParseISO(*startTime)
		if err != nil {
			return false, httperr.ErrValidation(domain.CodeInvalidStartTime, "start_time must be an ISO-8601 timestamp.")
		}
	}
	if err != nil {
		return false, fmt.Errorf("stored start time: %w", err)
	}

	if services != nil {
		totals, err := domain.Aggregate(services)
		if err != nil {
			return false, err
		}
		o.ServiceIDs = serviceIDs(services)
		o.TotalDuration = totals.DurationMin
		o.TotalPrice = totals.Price
	}

	newStart := timezone.FormatISO(start)
	newEnd := timezone.FormatISO(start.Add(orderLength(o)))
	moved := newStart != o.StartTime || newEnd != o.EndTime

	o.StartTime, o.EndTime = newStart, newEnd
	return moved, nil
}

func orderLength(o *models.Order) time.Duration {
	return time.Duration(o.TotalDuration) * time.Minute
}
