package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PermissionStatus is the lifecycle state of a permission row. The set is
// closed: a permission is either active or soft-deleted, never removed.
type PermissionStatus string

const (
	PermissionActive  PermissionStatus = "active"
	PermissionDeleted PermissionStatus = "deleted"
)

// Permission mirrors one code-declared permission key, e.g. "leave.approve".
// Rows are created, reactivated and soft-deleted exclusively by the catalog
// synchronizer; everything else reads them.
type Permission struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Key         string           `gorm:"type:varchar(100);uniqueIndex;not null" json:"key"`
	Description string           `gorm:"type:text" json:"description"`
	Status      PermissionStatus `gorm:"type:varchar(10);not null;default:'active';index" json:"status"`
	UpdatedBy   uuid.UUID        `gorm:"type:uuid;not null" json:"updated_by"`
	UpdatedAt   time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Permission) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// IsActive reports whether the permission participates in authorization
// decisions. Soft-deleted permissions are excluded everywhere.
func (p *Permission) IsActive() bool {
	return p.Status == PermissionActive
}
