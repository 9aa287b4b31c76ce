package order

import "errors"

// ErrRecordNotFound is returned by repositories when a lookup matches nothing.
var ErrRecordNotFound = errors.New("record not found")

const (
	CodeMissingFields     = "missing_fields"
	CodeInvalidStartTime  = "invalid_start_time"
	CodeInvalidDate       = "invalid_date"
	CodeInvalidDuration   = "invalid_duration"
	CodeServicesNotFound  = "services_not_found"
	CodeServiceNotFound   = "service_not_found"
	CodeClientNotFound    = "client_not_found"
	CodeCarNotFound       = "car_not_found"
	CodeOrderNotFound     = "order_not_found"
	CodeInvalidStatus     = "invalid_status"
	CodeInvalidPhone      = "invalid_phone"
	CodeTimeConflict      = "time_conflict"
	CodeBookingInProgress = "booking_in_progress"
)

// ConflictFallbackName is shown when the blocking order's client is gone.
const ConflictFallbackName = "another client"
