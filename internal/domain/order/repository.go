package order

import (
	"context"
	"time"

	"github.com/BruksfildServices01/detailing-scheduler/internal/models"
)

type OrderRepository interface {
	Create(ctx context.Context, o *models.Order) error
	Update(ctx context.Context, o *models.Order) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Order, error)

	// FindOverlapping returns one non-cancelled order intersecting
	// [start, end), or nil. excludeID may be empty.
	FindOverlapping(ctx context.Context, start, end time.Time, excludeID string) (*models.Order, error)

	// ListActiveStartingBetween returns non-cancelled orders with start in [from, to).
	ListActiveStartingBetween(ctx context.Context, from, to time.Time) ([]models.Order, error)

	// ListForPeriod returns every order with start in [from, to), client and
	// car attached. Nil bounds are open.
	ListForPeriod(ctx context.Context, from, to *time.Time) ([]models.Order, error)

	// LockWindow serializes writers whose intervals share a calendar day with
	// [start, end) until the surrounding transaction ends.
	LockWindow(ctx context.Context, start, end time.Time) error
}

type ServiceRepository interface {
	GetByIDs(ctx context.Context, ids []string) ([]models.Service, error)
}

type ClientRepository interface {
	GetByID(ctx context.Context, id string) (*models.Client, error)
	GetOrCreateByPhone(ctx context.Context, name, phone string) (*models.Client, error)
}

type CarRepository interface {
	GetByID(ctx context.Context, id string) (*models.Car, error)
	Create(ctx context.Context, car *models.Car) error
}

type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Repositories struct {
	Orders   OrderRepository
	Services ServiceRepository
	Clients  ClientRepository
	Cars     CarRepository
}
