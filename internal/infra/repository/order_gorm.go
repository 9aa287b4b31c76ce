package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/detailing-scheduler/internal/domain/order"
	"github.com/BruksfildServices01/detailing-scheduler/internal/models"
	"github.com/BruksfildServices01/detailing-scheduler/internal/timezone"
)

// advisoryNamespace is the first key of every order-day advisory lock.
const advisoryNamespace = 0x0DE7A1

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

// --------------------------------------------------
// Writes
// --------------------------------------------------

func (r *OrderGormRepository) Create(ctx context.Context, o *models.Order) error {
	return conn(ctx, r.db).Create(o).Error
}

func (r *OrderGormRepository) Update(ctx context.Context, o *models.Order) error {
	return conn(ctx, r.db).
		Omit("Client", "Car").
		Save(o).Error
}

func (r *OrderGormRepository) Delete(ctx context.Context, id string) error {
	res := conn(ctx, r.db).Delete(&models.Order{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

// --------------------------------------------------
// Reads
// --------------------------------------------------

func (r *OrderGormRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	if err := conn(ctx, r.db).
		Where("id = ?", id).
		First(&o).Error; err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (r *OrderGormRepository) FindOverlapping(
	ctx context.Context,
	start time.Time,
	end time.Time,
	excludeID string,
) (*models.Order, error) {

	q := conn(ctx, r.db).
		Preload("Client").
		Where(
			"status <> ? AND start_time < ? AND end_time > ?",
			string(domain.StatusCancelled),
			timezone.FormatISO(end),
			timezone.FormatISO(start),
		)

	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var o models.Order
	err := q.Order("start_time ASC").Take(&o).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderGormRepository) ListActiveStartingBetween(
	ctx context.Context,
	from time.Time,
	to time.Time,
) ([]models.Order, error) {

	var orders []models.Order
	if err := conn(ctx, r.db).
		Select("id", "start_time", "end_time", "status").
		Where(
			"status <> ? AND start_time >= ? AND start_time < ?",
			string(domain.StatusCancelled),
			timezone.FormatISO(from),
			timezone.FormatISO(to),
		).
		Order("start_time ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderGormRepository) ListForPeriod(
	ctx context.Context,
	from *time.Time,
	to *time.Time,
) ([]models.Order, error) {

	q := conn(ctx, r.db).
		Preload("Client").
		Preload("Car")

	if from != nil {
		q = q.Where("start_time >= ?", timezone.FormatISO(*from))
	}
	if to != nil {
		q = q.Where("start_time < ?", timezone.FormatISO(*to))
	}

	var orders []models.Order
	if err := q.Order("start_time ASC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// --------------------------------------------------
// Locking
// --------------------------------------------------

// LockWindow takes one transaction-scoped advisory lock per UTC day touched
// by [start, end), in ascending order. It must run inside a transaction.
func (r *OrderGormRepository) LockWindow(
	ctx context.Context,
	start time.Time,
	end time.Time,
) error {

	db := conn(ctx, r.db)
	for _, day := range timezone.DaysTouched(start, end) {
		dayKey := day.Unix() / int64(24*time.Hour/time.Second)
		if err := db.Exec(
			"SELECT pg_advisory_xact_lock(?, ?)",
			advisoryNamespace, int32(dayKey),
		).Error; err != nil {
			return err
		}
	}
	return nil
}

// Compile-time check
var _ domain.OrderRepository = (*OrderGormRepository)(nil)
