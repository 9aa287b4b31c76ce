package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin   = "Admin"
	RoleManager = "Manager"
	RoleMaster  = "Master"
)

type Employee struct {
	ID           string `gorm:"primaryKey;type:varchar(36)" json:"_id"`
	Username     string `gorm:"size:60;uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	FullName     string `gorm:"size:150;not null" json:"full_name"`
	Role         string `gorm:"size:20;not null" json:"role"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *Employee) BeforeCreate(*gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleMaster:
		return true
	}
	return false
}
