package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/BruksfildServices01/detailing-scheduler/internal/config"
	"github.com/BruksfildServices01/detailing-scheduler/internal/models"
)

func NewDB(cfg *config.Config) (*gorm.DB, error) {
	logLevel := logger.Warn
	if cfg.IsProduction() {
		logLevel = logger.Error
	}

	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
		Logger:      logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.AutoMigrate(
		&models.Employee{},
		&models.Service{},
		&models.Client{},
		&models.CarMake{},
		&models.Car{},
		&models.Order{},
		&models.AuditLog{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	// Serves the conflict query: start_time < ? AND end_time > ? on live orders.
	if err := db.Exec(`
        CREATE INDEX IF NOT EXISTS idx_orders_active_interval
        ON orders (start_time, end_time)
        WHERE status <> 'cancelled'
    `).Error; err != nil {
		return nil, fmt.Errorf("create interval index: %w", err)
	}

	return db, nil
}

// EnsureAdmin creates the bootstrap administrator when no employee has that
// username yet. Empty credentials skip it.
func EnsureAdmin(ctx context.Context, db *gorm.DB, username, password string, log *zap.SugaredLogger) error {
	if username == "" || password == "" {
		return nil
	}

	var existing models.Employee
	err := db.WithContext(ctx).Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("look up admin: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := models.Employee{
		Username:     username,
		PasswordHash: string(hashed),
		FullName:     "Administrator",
		Role:         models.RoleAdmin,
	}
	if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	log.Infow("bootstrap admin created", "username", username)
	return nil
}
