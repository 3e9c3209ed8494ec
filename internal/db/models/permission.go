package models

import "time"

// Permission represents a capability in the authorization system.
// Capability names follow the action-resource format (e.g., "view-users",
// "suspend-users") and are an interface contract: external tooling
// references them verbatim.
type Permission struct {
	// ID is the unique identifier for the permission.
	ID uint `gorm:"primaryKey"`
	// Name is the unique capability name (e.g., "edit-settings").
	Name string `gorm:"unique;size:100;not null"`
	// Description provides a human-readable explanation of what this permission grants.
	Description string `gorm:"size:255"`
	// CreatedAt is the timestamp when the permission was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the permission was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Permission model.
func (Permission) TableName() string {
	return "permissions"
}
