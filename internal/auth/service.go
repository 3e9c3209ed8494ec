package auth

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/GoBackOffice/GoBackOffice/internal/db/models"
)

// Service provides authentication and authorization functionality.
type Service struct {
	db *gorm.DB
}

// NewService creates a new auth service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// HasPermission checks if a user has a specific capability.
// This works by checking if any of the user's roles has the permission
// assigned.
func (s *Service) HasPermission(userID uint64, permission string) (bool, error) {
	var count int64

	err := s.db.Table("permissions").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN user_roles ON user_roles.role_id = role_permissions.role_id").
		Where("user_roles.user_id = ? AND permissions.name = ?", userID, permission).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check role permission: %w", err)
	}

	return count > 0, nil
}

// HasAnyPermission checks if a user has at least one of the given capabilities.
func (s *Service) HasAnyPermission(userID uint64, permissions []string) (bool, error) {
	if len(permissions) == 0 {
		return false, nil
	}

	for _, perm := range permissions {
		has, err := s.HasPermission(userID, perm)
		if err != nil {
			return false, err
		}

		if has {
			return true, nil
		}
	}

	return false, nil
}

// GetUserPermissions retrieves all capabilities granted to a user through
// their roles.
func (s *Service) GetUserPermissions(userID uint64) ([]string, error) {
	var permissions []string

	err := s.db.Table("permissions").
		Select("DISTINCT permissions.name").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN user_roles ON user_roles.role_id = role_permissions.role_id").
		Where("user_roles.user_id = ?", userID).
		Pluck("permissions.name", &permissions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user permissions: %w", err)
	}

	return permissions, nil
}

// GetUserRoles retrieves all roles assigned to a user.
func (s *Service) GetUserRoles(userID uint64) ([]models.Role, error) {
	var roles []models.Role

	err := s.db.Table("roles").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Find(&roles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user roles: %w", err)
	}

	return roles, nil
}

// GetRolePermissions retrieves all permissions assigned to a role.
func (s *Service) GetRolePermissions(roleID uint) ([]models.Permission, error) {
	var permissions []models.Permission

	err := s.db.Table("permissions").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Find(&permissions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get role permissions: %w", err)
	}

	return permissions, nil
}

// SyncUserRoles replaces a user's role assignments with the given set.
func (s *Service) SyncUserRoles(userID uint64, roleIDs []uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).
			Delete(&models.UserRole{}).Error; err != nil {
			return fmt.Errorf("failed to remove old role assignments: %w", err)
		}

		for _, roleID := range roleIDs {
			if err := tx.Create(&models.UserRole{
				UserID: userID,
				RoleID: roleID,
			}).Error; err != nil {
				return fmt.Errorf("failed to assign role: %w", err)
			}
		}

		return nil
	})
}

// SyncRolePermissions replaces a role's permissions with the given set.
func (s *Service) SyncRolePermissions(roleID uint, permissionIDs []uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).
			Delete(&models.RolePermission{}).Error; err != nil {
			return fmt.Errorf("failed to remove old permissions: %w", err)
		}

		for _, permissionID := range permissionIDs {
			if err := tx.Create(&models.RolePermission{
				RoleID:       roleID,
				PermissionID: permissionID,
			}).Error; err != nil {
				return fmt.Errorf("failed to assign permission: %w", err)
			}
		}

		return nil
	})
}

// CountRoleUsers counts how many users currently hold the given role.
func (s *Service) CountRoleUsers(roleID uint) (int64, error) {
	var count int64

	err := s.db.Model(&models.UserRole{}).
		Where("role_id = ?", roleID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count role users: %w", err)
	}

	return count, nil
}

// CountPermissionRoles counts how many roles currently grant the given permission.
func (s *Service) CountPermissionRoles(permissionID uint) (int64, error) {
	var count int64

	err := s.db.Model(&models.RolePermission{}).
		Where("permission_id = ?", permissionID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count permission roles: %w", err)
	}

	return count, nil
}
