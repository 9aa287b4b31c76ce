package order

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/detailing-scheduler/internal/domain/order"
	"github.com/BruksfildServices01/detailing-scheduler/internal/httperr"
)

type PublicBookingInput struct {
	IdempotencyKey string

	ClientName  string
	ClientPhone string

	CarMake  string
	CarModel string
	CarPlate string

	ServiceID string
	StartTime string
}

type PublicBookingResult struct {
	OrderID  string
	Replayed bool
}

// CreatePublicBooking books a single service for an anonymous customer.
type CreatePublicBooking struct {
	create *CreateOrder
	idem   IdempotencyStore
	ttl    time.Duration
	log    *zap.SugaredLogger
}

func NewCreatePublicBooking(
	create *CreateOrder,
	idem IdempotencyStore,
	ttl time.Duration,
	log *zap.SugaredLogger,
) *CreatePublicBooking {
	return &CreatePublicBooking{
		create: create,
		idem:   idem,
		ttl:    ttl,
		log:    log,
	}
}

func (uc *CreatePublicBooking) Execute(ctx context.Context, in PublicBookingInput) (*PublicBookingResult, error) {
	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" || uc.idem == nil {
		return uc.book(ctx, in)
	}

	existing, reserved, err := uc.idem.Reserve(ctx, key, uc.ttl)
	if err != nil {
		// the booking itself must not depend on the key store
		uc.log.Warnw("idempotency store unavailable", "error", err)
		return uc.book(ctx, in)
	}
	if !reserved {
		if existing == "" {
			return nil, httperr.ErrConflict(domain.CodeBookingInProgress,
				"A booking with this Idempotency-Key is still being processed.")
		}
		return &PublicBookingResult{OrderID: existing, Replayed: true}, nil
	}

	res, err := uc.book(ctx, in)
	if err != nil {
		if relErr := uc.idem.Release(ctx, key); relErr != nil {
			uc.log.Warnw("release idempotency key failed", "error", relErr)
		}
		return nil, err
	}

	if err := uc.idem.Complete(ctx, key, res.OrderID, uc.ttl); err != nil {
		uc.log.Warnw("store idempotency key failed", "order_id", res.OrderID, "error", err)
	}
	return res, nil
}

func (uc *CreatePublicBooking) book(ctx context.Context, in PublicBookingInput) (*PublicBookingResult, error) {
	var serviceIDs []string
	if id := strings.TrimSpace(in.ServiceID); id != "" {
		serviceIDs = []string{id}
	}

	o, err := uc.create.Execute(ctx, CreateOrderInput{
		Origin:     domain.OriginPublic,
		NewClient:  &NewClient{Name: in.ClientName, Phone: in.ClientPhone},
		NewCar:     &NewCar{Make: in.CarMake, Model: in.CarModel, Plate: in.CarPlate},
		ServiceIDs: serviceIDs,
		StartTime:  in.StartTime,
	})
	if err != nil {
		return nil, err
	}
	return &PublicBookingResult{OrderID: o.ID}, nil
}
