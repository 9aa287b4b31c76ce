package order

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/detailing-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/detailing-scheduler/internal/domain/order"
	"github.com/BruksfildServices01/detailing-scheduler/internal/httperr"
	"github.com/BruksfildServices01/detailing-scheduler/internal/models"
	"github.com/BruksfildServices01/detailing-scheduler/internal/timezone"
	"github.com/BruksfildServices01/detailing-scheduler/internal/validators"
)

// ======================================================
// INPUT
// ======================================================

type NewClient struct {
	Name  string
	Phone string
}

type NewCar struct {
	Make  string
	Model string
	Plate string
}

// CreateOrderInput serves both origins. Admin orders reference an existing
// client and car; public orders carry NewClient and NewCar instead.
type CreateOrderInput struct {
	Origin domain.Origin

	ClientID  string
	NewClient *NewClient

	CarID  string
	NewCar *NewCar

	ServiceIDs []string
	StartTime  string

	EmployeeID *string
	ActorID    *string
}

// ======================================================
// USE CASE
// ======================================================

type CreateOrder struct {
	repos    domain.Repositories
	tx       domain.TxManager
	conflict *CheckConflict
	audit    Auditor
	metrics  Metrics
	log      *zap.SugaredLogger
}

func NewCreateOrder(
	repos domain.Repositories,
	tx domain.TxManager,
	auditor Auditor,
	metrics Metrics,
	log *zap.SugaredLogger,
) *CreateOrder {
	if auditor == nil {
		auditor = nopAuditor{}
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &CreateOrder{
		repos:    repos,
		tx:       tx,
		conflict: NewCheckConflict(repos.Orders, repos.Clients),
		audit:    auditor,
		metrics:  metrics,
		log:      log,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateOrder) Execute(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	// --------------------------------------------------
	// 1) Input
	// --------------------------------------------------
	if err := validateCreate(&in); err != nil {
		return nil, err
	}

	start, err := timezone.ParseISO(in.StartTime)
	if err != nil {
		return nil, httperr.ErrValidation(domain.CodeInvalidStartTime, "start_time must be an ISO-8601 timestamp.")
	}

	// --------------------------------------------------
	// 2) Services and totals
	// --------------------------------------------------
	services, err := uc.resolveServices(ctx, in.Origin, in.ServiceIDs)
	if err != nil {
		return nil, err
	}

	totals, err := domain.Aggregate(services)
	if err != nil {
		return nil, err
	}
	end := start.Add(totals.Duration())

	// --------------------------------------------------
	// 3) Existing client and car (admin)
	// --------------------------------------------------
	if in.Origin == domain.OriginAdmin {
		if err := uc.assertReferences(ctx, in.ClientID, in.CarID); err != nil {
			return nil, err
		}
	}

	o := &models.Order{
		ClientID:      in.ClientID,
		CarID:         in.CarID,
		ServiceIDs:    serviceIDs(services),
		StartTime:     timezone.FormatISO(start),
		EndTime:       timezone.FormatISO(end),
		TotalPrice:    totals.Price,
		TotalDuration: totals.DurationMin,
		Status:        string(domain.InitialStatus(in.Origin)),
	}
	if in.Origin == domain.OriginAdmin {
		o.EmployeeID = employeeRef(in.EmployeeID)
	}

	// --------------------------------------------------
	// 4) Conflict check and writes, atomically
	// --------------------------------------------------
	var blocking *models.Order
	err = uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := uc.repos.Orders.LockWindow(ctx, start, end); err != nil {
			return fmt.Errorf("lock order window: %w", err)
		}

		b, err := uc.conflict.Assert(ctx, in.Origin, start, end, "")
		if err != nil {
			blocking = b
			return err
		}

		if in.Origin == domain.OriginPublic {
			if err := uc.createClientAndCar(ctx, in, o); err != nil {
				return err
			}
		}

		if err := uc.repos.Orders.Create(ctx, o); err != nil {
			if httperr.IsConstraintConflict(err) {
				return conflictError(in.Origin, domain.ConflictFallbackName)
			}
			return fmt.Errorf("create order: %w", err)
		}
		return nil
	})

	if err != nil {
		if httperr.KindOf(err) == httperr.KindConflict {
			uc.reportConflict(in, o, blocking)
		}
		return nil, err
	}

	// --------------------------------------------------
	// 5) Audit
	// --------------------------------------------------
	uc.metrics.OrderCreated(string(in.Origin))
	uc.audit.Dispatch(audit.Event{
		ActorID:  in.ActorID,
		Action:   audit.ActionOrderCreated,
		Entity:   audit.EntityOrder,
		EntityID: o.ID,
		Metadata: map[string]any{
			"origin":     in.Origin,
			"start_time": o.StartTime,
			"end_time":   o.EndTime,
		},
	})
	uc.log.Infow("order created",
		"order_id", o.ID,
		"origin", in.Origin,
		"start_time", o.StartTime,
		"duration_min", o.TotalDuration,
	)

	return o, nil
}

func validateCreate(in *CreateOrderInput) error {
	missing := len(in.ServiceIDs) == 0 || validators.IsBlank(in.StartTime)

	switch in.Origin {
	case domain.OriginAdmin:
		missing = missing || validators.IsBlank(in.ClientID) || validators.IsBlank(in.CarID)
	case domain.OriginPublic:
		missing = missing || in.NewClient == nil || in.NewCar == nil
		if !missing {
			missing = validators.IsBlank(in.NewClient.Name) ||
				validators.IsBlank(in.NewClient.Phone) ||
				validators.IsBlank(in.NewCar.Make) ||
				validators.IsBlank(in.NewCar.Model)
		}
	default:
		return fmt.Errorf("unknown order origin %q", in.Origin)
	}

	for _, id := range in.ServiceIDs {
		missing = missing || validators.IsBlank(id)
	}
	if missing {
		return httperr.ErrValidation(domain.CodeMissingFields, "Missing required fields.")
	}

	if in.Origin == domain.OriginPublic {
		phone, ok := validators.NormalizePhone(in.NewClient.Phone)
		if !ok {
			return httperr.ErrValidation(domain.CodeInvalidPhone, "Phone number is not valid.")
		}
		in.NewClient.Phone = phone
		in.NewClient.Name = strings.TrimSpace(in.NewClient.Name)
	}
	return nil
}

func (uc *CreateOrder) resolveServices(
	ctx context.Context,
	origin domain.Origin,
	ids []string,
) ([]models.Service, error) {

	found, err := uc.repos.Services.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load services: %w", err)
	}

	services, ok := domain.OrderServices(ids, found)
	if ok {
		return services, nil
	}

	if origin == domain.OriginPublic {
		return nil, httperr.ErrNotFound(domain.CodeServiceNotFound, "Service not found.")
	}
	return nil, httperr.ErrValidation(domain.CodeServicesNotFound, "One or more services were not found.")
}

func (uc *CreateOrder) assertReferences(ctx context.Context, clientID, carID string) error {
	if _, err := uc.repos.Clients.GetByID(ctx, clientID); err != nil {
		if isNotFound(err) {
			return httperr.ErrValidation(domain.CodeClientNotFound, "Client not found.")
		}
		return fmt.Errorf("load client: %w", err)
	}

	if _, err := uc.repos.Cars.GetByID(ctx, carID); err != nil {
		if isNotFound(err) {
			return httperr.ErrValidation(domain.CodeCarNotFound, "Car not found.")
		}
		return fmt.Errorf("load car: %w", err)
	}
	return nil
}

func (uc *CreateOrder) createClientAndCar(ctx context.Context, in CreateOrderInput, o *models.Order) error {
	client, err := uc.repos.Clients.GetOrCreateByPhone(ctx, in.NewClient.Name, in.NewClient.Phone)
	if err != nil {
		return fmt.Errorf("get or create client: %w", err)
	}

	plate := strings.TrimSpace(in.NewCar.Plate)
	if plate == "" {
		plate = models.PlateNotSpecified
	}

	car := &models.Car{
		ClientID:     client.ID,
		Make:         strings.TrimSpace(in.NewCar.Make),
		Model:        strings.TrimSpace(in.NewCar.Model),
		LicensePlate: plate,
	}
	if err := uc.repos.Cars.Create(ctx, car); err != nil {
		return fmt.Errorf("create car: %w", err)
	}

	o.ClientID = client.ID
	o.CarID = car.ID
	return nil
}

func (uc *CreateOrder) reportConflict(in CreateOrderInput, o *models.Order, blocking *models.Order) {
	uc.metrics.OrderConflict(string(in.Origin))

	blockingID := ""
	if blocking != nil {
		blockingID = blocking.ID
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:  in.ActorID,
		Action:   audit.ActionOrderConflict,
		Entity:   audit.EntityOrder,
		EntityID: blockingID,
		Metadata: map[string]any{
			"origin":     in.Origin,
			"start_time": o.StartTime,
			"end_time":   o.EndTime,
		},
	})
	uc.log.Warnw("order rejected: time conflict",
		"origin", in.Origin,
		"start_time", o.StartTime,
		"end_time", o.EndTime,
		"blocking_order_id", blockingID,
	)
}

// employeeRef trims id; blank means unassigned.
func employeeRef(id *string) *string {
	if id == nil {
		return nil
	}
	if emp := strings.TrimSpace(*id); emp != "" {
		return &emp
	}
	return nil
}

func serviceIDs(services []models.Service) []string {
	ids := make([]string, 0, len(services))
	for _, s := range services {
		ids = append(ids, s.ID)
	}
	return ids
}
