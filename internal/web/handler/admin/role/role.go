// Package role provides handlers for managing roles and their
// permission assignments in the admin area.
package role

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
	// Path is the base path for role management.
	Path = handler.RootPath + "admin/role"

	// TemplateList is the template for listing roles.
	TemplateList = "admin/role/list"
	// TemplateForm is the template for creating/updating a role.
	TemplateForm = "admin/role/form"
)

// Service provides CRUD operations for roles.
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
		auth.RequirePermission(authService, auth.PermViewRoles),
		s.List,
	)
	app.Get(Path+"/new",
		auth.RequirePermission(authService, auth.PermCreateRoles),
		s.New,
	)
	app.Post(Path,
		auth.RequirePermission(authService, auth.PermCreateRoles),
		s.Create,
	)
	app.Get(Path+"/:id/edit",
		auth.RequirePermission(authService, auth.PermEditRoles),
		s.Edit,
	)
	app.Post(Path+"/:id",
		auth.RequirePermission(authService, auth.PermEditRoles),
		s.Update,
	)
	app.Post(Path+"/:id/delete",
		auth.RequirePermission(authService, auth.PermDeleteRoles),
		s.Delete,
	)
}

// formData is the create/update form payload.
type formData struct {
	Name        string `form:"name"        validate:"required,max=255"`
	Description string `form:"description" validate:"omitempty,max=500"`
	Permissions []uint `form:"permissions"`
}

// List shows all roles with their user counts.
func (s *Service) List(c *fiber.Ctx) error {
	nav := navigation.NewContext("Roles", "admin", "role").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Admin", "#", false).
		AddBreadcrumb("Roles", Path, true)

	var roles []models.Role
	if err := s.db.Order("name").Find(&roles).Error; err != nil {
		log.Error().Err(err).Msg("query roles failed")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, fiber.Map{
			"Navigation": nav,
			"Error":      "Failed to load roles",
		}, handler.BaseLayout)
	}

	userCounts := make(map[uint]int64, len(roles))
	for _, r := range roles {
		count, err := s.authService.CountRoleUsers(r.ID)
		if err != nil {
			log.Error().Err(err).Uint("role_id", r.ID).Msg("count role users failed")
			continue
		}

		userCounts[r.ID] = count
	}

	messages := flash.Get(c)

	return c.Render(TemplateList, fiber.Map{
		"Navigation": nav,
		"Roles":      roles,
		"UserCounts": userCounts,
		"Success":    messages[flash.KeySuccess],
		"Error":      messages[flash.KeyError],
	}, handler.BaseLayout)
}

// New renders the empty role form.
func (s *Service) New(c *fiber.Ctx) error {
	nav := navigation.NewContext("New Role", "admin", "role").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Roles", Path, false).
		AddBreadcrumb("New", Path+"/new", true)

	permissions, err := s.allPermissions()
	if err != nil {
		return err
	}

	return c.Render(TemplateForm, fiber.Map{
		"Navigation":  nav,
		"Permissions": permissions,
		"Action":      Path,
	}, handler.BaseLayout)
}

// Create stores a new role and syncs its permissions.
func (s *Service) Create(c *fiber.Ctx) error {
	form := new(formData)
	if err := c.BodyParser(form); err != nil {
		return err
	}

	if err := s.validator.Struct(form); err != nil {
		flash.Set(c, flash.KeyError, "Invalid role data: "+err.Error())
		return c.Redirect(Path + "/new")
	}

	newRole := models.Role{
		Name:        form.Name,
		Description: form.Description,
	}

	if err := s.db.Create(&newRole).Error; err != nil {
		log.Error().Err(err).Msg("create role failed")
		flash.Set(c, flash.KeyError, "Failed to create role")

		return c.Redirect(Path + "/new")
	}

	if err := s.authService.SyncRolePermissions(newRole.ID, form.Permissions); err != nil {
		log.Error().Err(err).Uint("role_id", newRole.ID).Msg("sync permissions failed")
	}

	flash.Set(c, flash.KeySuccess, "Role created successfully.")

	return c.Redirect(Path)
}

// Edit renders the role form with existing data.
func (s *Service) Edit(c *fiber.Ctx) error {
	editRole, err := s.findRole(c)
	if err != nil {
		return err
	}

	if editRole == nil {
		return nil
	}

	nav := navigation.NewContext("Edit Role", "admin", "role").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Roles", Path, false).
		AddBreadcrumb(editRole.Name, "#", true)

	permissions, err := s.allPermissions()
	if err != nil {
		return err
	}

	rolePermissions, err := s.authService.GetRolePermissions(editRole.ID)
	if err != nil {
		return err
	}

	assigned := make(map[uint]bool, len(rolePermissions))
	for _, p := range rolePermissions {
		assigned[p.ID] = true
	}

	return c.Render(TemplateForm, fiber.Map{
		"Navigation":          nav,
		"Role":                editRole,
		"Permissions":         permissions,
		"AssignedPermissions": assigned,
		"Action":              Path + "/" + c.Params("id"),
	}, handler.BaseLayout)
}

// Update persists role changes and syncs permissions.
func (s *Service) Update(c *fiber.Ctx) error {
	editRole, err := s.findRole(c)
	if err != nil {
		return err
	}

	if editRole == nil {
		return nil
	}

	form := new(formData)
	if err := c.BodyParser(form); err != nil {
		return err
	}

	if err := s.validator.Struct(form); err != nil {
		flash.Set(c, flash.KeyError, "Invalid role data: "+err.Error())
		return c.Redirect(Path + "/" + c.Params("id") + "/edit")
	}

	// system roles keep their name so seeded assignments stay resolvable
	if !editRole.IsSystem {
		editRole.Name = form.Name
	}

	editRole.Description = form.Description

	if err := s.db.Save(editRole).Error; err != nil {
		log.Error().Err(err).Uint("role_id", editRole.ID).Msg("update role failed")
		flash.Set(c, flash.KeyError, "Failed to update role")

		return c.Redirect(Path + "/" + c.Params("id") + "/edit")
	}

	if err := s.authService.SyncRolePermissions(editRole.ID, form.Permissions); err != nil {
		log.Error().Err(err).Uint("role_id", editRole.ID).Msg("sync permissions failed")
	}

	flash.Set(c, flash.KeySuccess, "Role updated successfully.")

	return c.Redirect(Path)
}

// Delete removes a role unless it is a system role or still assigned.
func (s *Service) Delete(c *fiber.Ctx) error {
	delRole, err := s.findRole(c)
	if err != nil {
		return err
	}

	if delRole == nil {
		return nil
	}

	if delRole.IsSystem {
		flash.Set(c, flash.KeyError, "System roles cannot be deleted.")
		return c.Redirect(Path)
	}

	userCount, err := s.authService.CountRoleUsers(delRole.ID)
	if err != nil {
		return err
	}

	if userCount > 0 {
		flash.Set(c, flash.KeyError, "Role is still assigned to users and cannot be deleted.")
		return c.Redirect(Path)
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", delRole.ID).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Role{}, delRole.ID).Error
	}); err != nil {
		log.Error().Err(err).Uint("role_id", delRole.ID).Msg("delete role failed")
		flash.Set(c, flash.KeyError, "Failed to delete role")

		return c.Redirect(Path)
	}

	flash.Set(c, flash.KeySuccess, "Role deleted successfully.")

	return c.Redirect(Path)
}

// findRole resolves the :id route parameter. A nil role with a nil error
// means the response has already been written.
func (s *Service) findRole(c *fiber.Ctx) (*models.Role, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).SendString("Invalid role ID")
	}

	var found models.Role
	if err := s.db.First(&found, uint(id)).Error; err != nil {
		return nil, c.Status(fiber.StatusNotFound).SendString("Role not found")
	}

	return &found, nil
}

func (s *Service) allPermissions() ([]models.Permission, error) {
	var permissions []models.Permission
	if err := s.db.Order("name").Find(&permissions).Error; err != nil {
		return nil, err
	}

	return permissions, nil
}
