package order

import (
	"github.com/BruksfildServices01/detailing-scheduler/internal/httperr"
)

type Status string

const (
	StatusScheduled           Status = "scheduled"
	StatusPendingConfirmation Status = "pending_confirmation"
	StatusInProgress          Status = "in_progress"
	StatusCompleted           Status = "completed"
	StatusCancelled           Status = "cancelled"
)

// Origin tells who created the order; it decides the initial status.
type Origin string

const (
	OriginAdmin  Origin = "admin"
	OriginPublic Origin = "public"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusScheduled, StatusPendingConfirmation, StatusInProgress, StatusCompleted, StatusCancelled:
		return st, nil
	}
	return "", httperr.ErrValidation(CodeInvalidStatus, "Unknown order status.")
}

// IsActive is false only for cancelled orders; every other status occupies its slot.
func IsActive(s Status) bool {
	return s != StatusCancelled
}

func InitialStatus(origin Origin) Status {
	if origin == OriginPublic {
		return StatusPendingConfirmation
	}
	return StatusScheduled
}
