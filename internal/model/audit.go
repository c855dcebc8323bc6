package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionSyncPermissions       = "SYNC_PERMISSIONS"
	ActionAssignRolePermission  = "ASSIGN_ROLE_PERMISSION"
	ActionRemoveRolePermission  = "REMOVE_ROLE_PERMISSION"
	ActionBulkAssignPermissions = "BULK_ASSIGN_ROLE_PERMISSIONS"
	ActionGrantUserPermission   = "GRANT_USER_PERMISSION"
	ActionRevokeUserPermission  = "REVOKE_USER_PERMISSION"
	ActionRemoveUserPermission  = "REMOVE_USER_PERMISSION"
	ActionBulkGrantPermissions  = "BULK_GRANT_USER_PERMISSIONS"
	ActionCreateRole            = "CREATE_ROLE"
	ActionUpdateRole            = "UPDATE_ROLE"
	ActionDeleteRole            = "DELETE_ROLE"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if system actor
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/key)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
