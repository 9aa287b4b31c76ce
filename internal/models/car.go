package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const PlateNotSpecified = "not specified"

type Car struct {
	ID           string `gorm:"primaryKey;type:varchar(36)" json:"_id"`
	ClientID     string `gorm:"type:varchar(36);index;not null" json:"client_id"`
	Make         string `gorm:"size:60;not null" json:"make"`
	Model        string `gorm:"size:60;not null" json:"model"`
	LicensePlate string `gorm:"size:20" json:"license_plate"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Car) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type CarMake struct {
	ID   string `gorm:"primaryKey;type:varchar(36)" json:"_id"`
	Name string `gorm:"size:60;uniqueIndex;not null" json:"name"`
}

func (m *CarMake) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
