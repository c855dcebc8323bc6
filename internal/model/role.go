package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role groups permissions. Each user holds exactly one role; per-user
// overrides are layered on top of it in user_permissions.
type Role struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code        string    `gorm:"type:varchar(10);uniqueIndex;not null" json:"code"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	IsSystem    bool      `gorm:"default:false" json:"is_system"` // Prevent deletion of built-in roles
	UpdatedBy   uuid.UUID `gorm:"type:uuid;not null" json:"updated_by"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *Role) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RolePermission assigns one permission to one role. The (role, permission)
// pair is unique; re-assigning an existing pair only refreshes audit fields.
type RolePermission struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	RoleID       uuid.UUID   `gorm:"type:uuid;not null;index;uniqueIndex:uq_role_permission" json:"role_id"`
	PermissionID uuid.UUID   `gorm:"type:uuid;not null;index;uniqueIndex:uq_role_permission" json:"permission_id"`
	Role         *Role       `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE" json:"role,omitempty"`
	Permission   *Permission `gorm:"foreignKey:PermissionID;constraint:OnDelete:CASCADE" json:"permission,omitempty"`
	UpdatedBy    uuid.UUID   `gorm:"type:uuid;not null" json:"updated_by"`
	UpdatedAt    time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (rp *RolePermission) BeforeCreate(_ *gorm.DB) error {
	if rp.ID == uuid.Nil {
		rp.ID = uuid.New()
	}
	return nil
}
