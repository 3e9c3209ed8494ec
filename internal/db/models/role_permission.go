package models

// RolePermission links a role to a permission it grants.
type RolePermission struct {
	RoleID       uint `gorm:"primaryKey"`
	PermissionID uint `gorm:"primaryKey"`
}

// TableName specifies the database table name for the RolePermission model.
func (RolePermission) TableName() string {
	return "role_permissions"
}
