package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Order is an appointment occupying [StartTime, EndTime). Both bounds are
// stored as fixed-width UTC ISO strings.
type Order struct {
	ID string `gorm:"primaryKey;type:varchar(36)" json:"_id"`

	ClientID string  `gorm:"type:varchar(36);index;not null" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"client,omitempty"`

	CarID string `gorm:"type:varchar(36);index;not null" json:"car_id"`
	Car   *Car   `gorm:"foreignKey:CarID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"car,omitempty"`

	ServiceIDs datatypes.JSONSlice[string] `gorm:"type:jsonb;not null" json:"service_ids"`

	StartTime string `gorm:"size:20;index;not null" json:"start_time"`
	EndTime   string `gorm:"size:20;index;not null" json:"end_time"`

	TotalPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`
	TotalDuration int             `gorm:"not null" json:"total_duration"`

	Status     string  `gorm:"size:32;index;not null" json:"status"`
	EmployeeID *string `gorm:"type:varchar(36)" json:"employee_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
