package daemon

import (
	"gorm.io/gorm"

	"github.com/GoBackOffice/GoBackOffice/internal/auth"
	"github.com/GoBackOffice/GoBackOffice/internal/config"
	"github.com/GoBackOffice/GoBackOffice/internal/db/controller/setting"
	"github.com/GoBackOffice/GoBackOffice/internal/db/models"
	"github.com/GoBackOffice/GoBackOffice/internal/web/middleware/locale"
)

// seed creates the baseline permissions, roles, the initial admin account
// and the default language setting. It only fills gaps and never touches
// rows an operator has already changed.
func seed(cfg *config.Config, db *gorm.DB) {
	seedPermissions(db)
	seedRoles(db)
	seedAdminUser(db)
	seedDefaultLanguage(cfg, db)
}

func seedPermissions(db *gorm.DB) {
	for _, name := range auth.AllCapabilities() {
		var count int64

		db.Model(&models.Permission{}).Where("name = ?", name).Count(&count)
		if count > 0 {
			continue
		}

		db.Create(&models.Permission{Name: name})
	}
}

// moderatorCapabilities is the read-only subset granted to the moderator role.
var moderatorCapabilities = []string{
	auth.PermViewUsers,
	auth.PermViewRoles,
	auth.PermViewPermissions,
}

func seedRoles(db *gorm.DB) {
	ensureRole(db, "admin", "Full access to all administrative functions", auth.AllCapabilities())
	ensureRole(db, "moderator", "Read-only access to users, roles and permissions", moderatorCapabilities)
}

func ensureRole(db *gorm.DB, name, description string, capabilities []string) {
	var role models.Role

	err := db.Where("name = ?", name).First(&role).Error
	if err != nil {
		role = models.Role{
			Name:        name,
			Description: description,
			IsSystem:    true,
		}

		if err := db.Create(&role).Error; err != nil {
			return
		}
	}

	var permissions []models.Permission
	if err := db.Where("name IN ?", capabilities).Find(&permissions).Error; err != nil {
		return
	}

	for _, permission := range permissions {
		var count int64

		db.Model(&models.RolePermission{}).
			Where("role_id = ? AND permission_id = ?", role.ID, permission.ID).
			Count(&count)
		if count > 0 {
			continue
		}

		db.Create(&models.RolePermission{RoleID: role.ID, PermissionID: permission.ID})
	}
}

func seedAdminUser(db *gorm.DB) {
	var count int64

	db.Model(&models.User{}).Count(&count)
	if count > 0 {
		return
	}

	// change the password after first login
	admin := models.User{
		Name:     "Administrator",
		Email:    "admin@example.com",
		Password: models.HashPassword("changeme"),
	}

	if err := db.Create(&admin).Error; err != nil {
		return
	}

	var adminRole models.Role
	if err := db.Where("name = ?", "admin").First(&adminRole).Error; err != nil {
		return
	}

	db.Create(&models.UserRole{UserID: admin.ID, RoleID: adminRole.ID})
}

// seedDefaultLanguage writes the application language setting once. An
// existing value always wins, even if it is no longer in the configured
// allow-list; the resolver falls back to the default at read time.
func seedDefaultLanguage(cfg *config.Config, db *gorm.DB) {
	var count int64

	db.Model(&models.Setting{}).Where("key = ?", locale.SettingKey).Count(&count)
	if count > 0 {
		return
	}

	store := setting.NewStore(db)
	_, _ = store.Set(locale.SettingKey, cfg.Locale.Default, "general", models.SettingTypeString)
}
