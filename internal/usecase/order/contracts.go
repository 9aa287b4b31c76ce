package order

import (
	"context"
	"time"

	"github.com/BruksfildServices01/detailing-scheduler/internal/audit"
)

type Auditor interface {
	Dispatch(ev audit.Event)
}

type Metrics interface {
	OrderCreated(origin string)
	OrderConflict(origin string)
}

// IdempotencyStore remembers which order a public booking key produced.
type IdempotencyStore interface {
	// Reserve claims key. When the key is already known it returns the stored
	// order id, or "" while the first request is still running.
	Reserve(ctx context.Context, key string, ttl time.Duration) (orderID string, reserved bool, err error)
	Complete(ctx context.Context, key, orderID string, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

type nopAuditor struct{}

func (nopAuditor) Dispatch(audit.Event) {}

type nopMetrics struct{}

func (nopMetrics) OrderCreated(string)  {}
func (nopMetrics) OrderConflict(string) {}
