package repository

import (
	"context"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/detailing-scheduler/internal/domain/order"
)

type txKey struct{}

// GormTxManager runs a function inside a gorm transaction and exposes the
// transaction to repositories through the context.
type GormTxManager struct {
	db *gorm.DB
}

func NewGormTxManager(db *gorm.DB) *GormTxManager {
	return &GormTxManager{db: db}
}

func (m *GormTxManager) WithinTransaction(
	ctx context.Context,
	fn func(ctx context.Context) error,
) error {

	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn returns the active transaction, or db when ctx carries none.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

func notFound(err error) error {
	if err == gorm.ErrRecordNotFound {
		return domain.ErrRecordNotFound
	}
	return err
}

var _ domain.TxManager = (*GormTxManager)(nil)
