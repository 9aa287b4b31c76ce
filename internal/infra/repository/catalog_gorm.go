package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/detailing-scheduler/internal/domain/order"
	"github.com/BruksfildServices01/detailing-scheduler/internal/models"
)

// --------------------------------------------------
// Services
// --------------------------------------------------

type ServiceGormRepository struct {
	db *gorm.DB
}

func NewServiceGormRepository(db *gorm.DB) *ServiceGormRepository {
	return &ServiceGormRepository{db: db}
}

// GetByIDs returns the services that exist among ids, in no particular order.
func (r *ServiceGormRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Service, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var services []models.Service
	if err := conn(ctx, r.db).
		Where("id IN ?", ids).
		Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

// --------------------------------------------------
// Clients
// --------------------------------------------------

type ClientGormRepository struct {
	db *gorm.DB
}

func NewClientGormRepository(db *gorm.DB) *ClientGormRepository {
	return &ClientGormRepository{db: db}
}

func (r *ClientGormRepository) GetByID(ctx context.Context, id string) (*models.Client, error) {
	var client models.Client
	if err := conn(ctx, r.db).
		Where("id = ?", id).
		First(&client).Error; err != nil {
		return nil, notFound(err)
	}
	return &client, nil
}

// GetOrCreateByPhone inserts the client unless the phone is already taken and
// returns the stored row either way. The existing name is kept.
func (r *ClientGormRepository) GetOrCreateByPhone(
	ctx context.Context,
	name string,
	phone string,
) (*models.Client, error) {

	db := conn(ctx, r.db)

	client := models.Client{FullName: name, Phone: phone}
	if err := db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "phone"}},
			DoNothing: true,
		}).
		Create(&client).Error; err != nil {
		return nil, err
	}

	var stored models.Client
	if err := db.
		Where("phone = ?", phone).
		First(&stored).Error; err != nil {
		return nil, notFound(err)
	}
	return &stored, nil
}

// --------------------------------------------------
// Cars
// --------------------------------------------------

type CarGormRepository struct {
	db *gorm.DB
}

func NewCarGormRepository(db *gorm.DB) *CarGormRepository {
	return &CarGormRepository{db: db}
}

func (r *CarGormRepository) GetByID(ctx context.Context, id string) (*models.Car, error) {
	var car models.Car
	if err := conn(ctx, r.db).
		Where("id = ?", id).
		First(&car).Error; err != nil {
		return nil, notFound(err)
	}
	return &car, nil
}

func (r *CarGormRepository) Create(ctx context.Context, car *models.Car) error {
	return conn(ctx, r.db).Create(car).Error
}

// NewRepositories wires the gorm implementations used by the order use cases.
func NewRepositories(db *gorm.DB) domain.Repositories {
	return domain.Repositories{
		Orders:   NewOrderGormRepository(db),
		Services: NewServiceGormRepository(db),
		Clients:  NewClientGormRepository(db),
		Cars:     NewCarGormRepository(db),
	}
}

// Compile-time checks
var (
	_ domain.ServiceRepository = (*ServiceGormRepository)(nil)
	_ domain.ClientRepository  = (*ClientGormRepository)(nil)
	_ domain.CarRepository     = (*CarGormRepository)(nil)
)
