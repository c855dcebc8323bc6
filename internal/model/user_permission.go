package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OverrideStatus is the state of a per-user permission override. The set is
// closed: an override row is either a grant or a revocation, never both.
// Absence of a row means the role-derived outcome applies unchanged.
type OverrideStatus string

const (
	OverrideGranted OverrideStatus = "granted" // extra permission on top of the role
	OverrideRevoked OverrideStatus = "revoked" // permission removed from the role
)

// UserPermission is a per-user override for one permission. The (user,
// permission) pair is unique; re-granting flips a revoked row in place and
// vice versa. Hard-deleting the row restores the pure role-derived outcome.
type UserPermission struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:uq_user_permission" json:"user_id"`
	PermissionID uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:uq_user_permission" json:"permission_id"`
	User         *User          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Permission   *Permission    `gorm:"foreignKey:PermissionID;constraint:OnDelete:CASCADE" json:"permission,omitempty"`
	Status       OverrideStatus `gorm:"type:varchar(10);not null" json:"status"`
	UpdatedBy    uuid.UUID      `gorm:"type:uuid;not null" json:"updated_by"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (up *UserPermission) BeforeCreate(_ *gorm.DB) error {
	if up.ID == uuid.Nil {
		up.ID = uuid.New()
	}
	return nil
}

// IsGranted reports whether the override adds the permission.
func (up *UserPermission) IsGranted() bool {
	return up.Status == OverrideGranted
}

// IsRevoked reports whether the override removes the permission.
func (up *UserPermission) IsRevoked() bool {
	return up.Status == OverrideRevoked
}
