// Package permission provides handlers for managing permissions in the
// admin area.
package permission

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoBackOffice/GoBackOffice/internal/auth"
	"github.com/GoBackOffice/GoBackOffice/internal/config"
	"github.com/GoBackOffice/GoBackOffice/internal/db/models"
	"github.com/GoBackOffice/GoBackOffice/internal/web/flash"
	"github.com/GoBackOffice/GoBackOffice/internal/web/handler"
	"github.com/GoBackOffice/GoBackOffice/internal/web/handler/dashboard"
	"github.com/GoBackOffice/GoBackOffice/internal/web/navigation"
)

const (
	// Path is the base path for permission management.
	Path = handler.RootPath + "admin/permission"

	// TemplateList is the template for listing permissions.
	TemplateList = "admin/permission/list"
	// TemplateForm is the template for creating/updating a permission.
	TemplateForm = "admin/permission/form"
)

// Service provides CRUD operations for permissions.
type Service struct {
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
	validator   *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.authService = authService
	s.validator = validator.New()

	app.Get(Path,
		auth.RequirePermission(authService, auth.PermViewPermissions),
		s.List,
	)
	app.Get(Path+"/new",
		auth.RequirePermission(authService, auth.PermCreatePermissions),
		s.New,
	)
	app.Post(Path,
		auth.RequirePermission(authService, auth.PermCreatePermissions),
		s.Create,
	)
	app.Get(Path+"/:id/edit",
		auth.RequirePermission(authService, auth.PermEditPermissions),
		s.Edit,
	)
	app.Post(Path+"/:id",
		auth.RequirePermission(authService, auth.PermEditPermissions),
		s.Update,
	)
	app.Post(Path+"/:id/delete",
		auth.RequirePermission(authService, auth.PermDeletePermissions),
		s.Delete,
	)
}

// formData is the create/update form payload.
type formData struct {
	Name        string `form:"name"        validate:"required,max=255"`
	Description string `form:"description" validate:"omitempty,max=500"`
}

// List shows all permissions with their role counts.
func (s *Service) List(c *fiber.Ctx) error {
	nav := navigation.NewContext("Permissions", "admin", "permission").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Admin", "#", false).
		AddBreadcrumb("Permissions", Path, true)

	var permissions []models.Permission
	if err := s.db.Order("name").Find(&permissions).Error; err != nil {
		log.Error().Err(err).Msg("query permissions failed")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, fiber.Map{
			"Navigation": nav,
			"Error":      "Failed to load permissions",
		}, handler.BaseLayout)
	}

	roleCounts := make(map[uint]int64, len(permissions))
	for _, p := range permissions {
		count, err := s.authService.CountPermissionRoles(p.ID)
		if err != nil {
			log.Error().Err(err).Uint("permission_id", p.ID).Msg("count permission roles failed")
			continue
		}

		roleCounts[p.ID] = count
	}

	messages := flash.Get(c)

	return c.Render(TemplateList, fiber.Map{
		"Navigation":  nav,
		"Permissions": permissions,
		"RoleCounts":  roleCounts,
		"Success":     messages[flash.KeySuccess],
		"Error":       messages[flash.KeyError],
	}, handler.BaseLayout)
}

// New renders the empty permission form.
func (s *Service) New(c *fiber.Ctx) error {
	nav := navigation.NewContext("New Permission", "admin", "permission").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Permissions", Path, false).
		AddBreadcrumb("New", Path+"/new", true)

	return c.Render(TemplateForm, fiber.Map{
		"Navigation": nav,
		"Action":     Path,
	}, handler.BaseLayout)
}

// Create stores a new permission.
func (s *Service) Create(c *fiber.Ctx) error {
	form := new(formData)
	if err := c.BodyParser(form); err != nil {
		return err
	}

	if err := s.validator.Struct(form); err != nil {
		flash.Set(c, flash.KeyError, "Invalid permission data: "+err.Error())
		return c.Redirect(Path + "/new")
	}

	newPermission := models.Permission{
		Name:        form.Name,
		Description: form.Description,
	}

	if err := s.db.Create(&newPermission).Error; err != nil {
		log.Error().Err(err).Msg("create permission failed")
		flash.Set(c, flash.KeyError, "Failed to create permission")

		return c.Redirect(Path + "/new")
	}

	flash.Set(c, flash.KeySuccess, "Permission created successfully.")

	return c.Redirect(Path)
}

// Edit renders the permission form with existing data.
func (s *Service) Edit(c *fiber.Ctx) error {
	editPermission, err := s.findPermission(c)
	if err != nil || editPermission == nil {
		return err
	}

	nav := navigation.NewContext("Edit Permission", "admin", "permission").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Permissions", Path, false).
		AddBreadcrumb(editPermission.Name, "#", true)

	return c.Render(TemplateForm, fiber.Map{
		"Navigation": nav,
		"Permission": editPermission,
		"Action":     Path + "/" + c.Params("id"),
	}, handler.BaseLayout)
}

// Update persists permission changes.
func (s *Service) Update(c *fiber.Ctx) error {
	editPermission, err := s.findPermission(c)
	if err != nil || editPermission == nil {
		return err
	}

	form := new(formData)
	if err := c.BodyParser(form); err != nil {
		return err
	}

	if err := s.validator.Struct(form); err != nil {
		flash.Set(c, flash.KeyError, "Invalid permission data: "+err.Error())
		return c.Redirect(Path + "/" + c.Params("id") + "/edit")
	}

	editPermission.Name = form.Name
	editPermission.Description = form.Description

	if err := s.db.Save(editPermission).Error; err != nil {
		log.Error().Err(err).Uint("permission_id", editPermission.ID).Msg("update permission failed")
		flash.Set(c, flash.KeyError, "Failed to update permission")

		return c.Redirect(Path + "/" + c.Params("id") + "/edit")
	}

	flash.Set(c, flash.KeySuccess, "Permission updated successfully.")

	return c.Redirect(Path)
}

// Delete removes a permission unless a role still references it.
func (s *Service) Delete(c *fiber.Ctx) error {
	delPermission, err := s.findPermission(c)
	if err != nil || delPermission == nil {
		return err
	}

	roleCount, err := s.authService.CountPermissionRoles(delPermission.ID)
	if err != nil {
		return err
	}

	if roleCount > 0 {
		flash.Set(c, flash.KeyError, "Permission is still assigned to roles and cannot be deleted.")
		return c.Redirect(Path)
	}

	if err := s.db.Delete(&models.Permission{}, delPermission.ID).Error; err != nil {
		log.Error().Err(err).Uint("permission_id", delPermission.ID).Msg("delete permission failed")
		flash.Set(c, flash.KeyError, "Failed to delete permission")

		return c.Redirect(Path)
	}

	flash.Set(c, flash.KeySuccess, "Permission deleted successfully.")

	return c.Redirect(Path)
}

// findPermission resolves the :id route parameter. A nil permission with
// a nil error means the response has already been written.
func (s *Service) findPermission(c *fiber.Ctx) (*models.Permission, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).SendString("Invalid permission ID")
	}

	var found models.Permission
	if err := s.db.First(&found, uint(id)).Error; err != nil {
		return nil, c.Status(fiber.StatusNotFound).SendString("Permission not found")
	}

	return &found, nil
}
