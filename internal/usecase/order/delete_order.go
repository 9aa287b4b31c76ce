package order

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/detailing-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/detailing-scheduler/internal/domain/order"
	"github.com/BruksfildServices01/detailing-scheduler/internal/httperr"
)

type DeleteOrder struct {
	orders domain.OrderRepository
	audit  Auditor
	log    *zap.SugaredLogger
}

func NewDeleteOrder(orders domain.OrderRepository, auditor Auditor, log *zap.SugaredLogger) *DeleteOrder {
	if auditor == nil {
		auditor = nopAuditor{}
	}
	return &DeleteOrder{orders: orders, audit: auditor, log: log}
}

func (uc *DeleteOrder) Execute(ctx context.Context, id string, actorID *string) error {
	if err := uc.orders.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return httperr.ErrNotFound(domain.CodeOrderNotFound, "Order not found.")
		}
		return fmt.Errorf("delete order: %w", err)
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:  actorID,
		Action:   audit.ActionOrderDeleted,
		Entity:   audit.EntityOrder,
		EntityID: id,
	})
	uc.log.Infow("order deleted", "order_id", id)

	return nil
}
