package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents the central user entity for logic and database structure.
// A user holds exactly one role; the access-control engine layers per-user
// overrides on top of it.
type User struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Username  string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Email     string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FullName  string         `gorm:"type:varchar(255)" json:"full_name"`
	Password  string         `gorm:"type:varchar(255);not null" json:"-"` // Omit password from JSON requests/responses
	RoleID    *uuid.UUID     `gorm:"type:uuid;index" json:"role_id"`
	Role      *Role          `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	Active    bool           `gorm:"default:true" json:"active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"` // GORM soft delete
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
