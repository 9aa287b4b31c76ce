package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client has no login; the normalized phone number identifies it.
type Client struct {
	ID       string `gorm:"primaryKey;type:varchar(36)" json:"_id"`
	FullName string `gorm:"size:150;not null" json:"full_name"`
	Phone    string `gorm:"size:32;uniqueIndex;not null" json:"phone_number"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Client) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
