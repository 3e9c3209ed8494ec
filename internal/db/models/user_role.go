package models

// UserRole links a user to a role. Users may hold several roles at once.
type UserRole struct {
	UserID uint64 `gorm:"primaryKey"`
	RoleID uint   `gorm:"primaryKey"`
}

// TableName specifies the database table name for the UserRole model.
func (UserRole) TableName() string {
	return "user_roles"
}
