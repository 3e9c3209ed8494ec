// Package user provides handlers for managing users (CRUD and the
// suspension actions) in the admin area.
package user

import (
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoBackOffice/GoBackOffice/internal/auth"
	"github.com/GoBackOffice/GoBackOffice/internal/config"
	usercontroller "github.com/GoBackOffice/GoBackOffice/internal/db/controller/user"
	"github.com/GoBackOffice/GoBackOffice/internal/db/models"
	"github.com/GoBackOffice/GoBackOffice/internal/web/flash"
	"github.com/GoBackOffice/GoBackOffice/internal/web/handler"
	"github.com/GoBackOffice/GoBackOffice/internal/web/handler/dashboard"
	"github.com/GoBackOffice/GoBackOffice/internal/web/navigation"
)

const (
	// Path is the base path for user management.
	Path = handler.RootPath + "admin/user"

	// TemplateList is the template for listing users.
	TemplateList = "admin/user/list"
	// TemplateForm is the template for creating/updating a user.
	TemplateForm = "admin/user/form"

	// DefaultPageSize for pagination.
	DefaultPageSize = 25
)

// Service provides CRUD operations for users.
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

	// Routes
	app.Get(Path,
		auth.RequirePermission(authService, auth.PermViewUsers),
		s.List,
	)
	app.Get(Path+"/new",
		auth.RequirePermission(authService, auth.PermCreateUsers),
		s.New,
	)
	app.Post(Path,
		auth.RequirePermission(authService, auth.PermCreateUsers),
		s.Create,
	)
	app.Get(Path+"/:id/edit",
		auth.RequirePermission(authService, auth.PermEditUsers),
		s.Edit,
	)
	app.Post(Path+"/:id",
		auth.RequirePermission(authService, auth.PermEditUsers),
		s.Update,
	)
	app.Post(Path+"/:id/delete",
		auth.RequirePermission(authService, auth.PermDeleteUsers),
		s.Delete,
	)
	app.Post(Path+"/:id/suspend",
		auth.RequirePermission(authService, auth.PermSuspendUsers),
		s.Suspend,
	)
	app.Post(Path+"/:id/unsuspend",
		auth.RequirePermission(authService, auth.PermSuspendUsers),
		s.Unsuspend,
	)
}

// List shows users with simple pagination, search and a suspended filter.
func (s *Service) List(c *fiber.Ctx) error {
	nav := navigation.NewContext("Users", "admin", "user").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Admin", "#", false).
		AddBreadcrumb("Users", Path, true)

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	pageSize := c.QueryInt("pageSize", DefaultPageSize)
	if pageSize < 1 || pageSize > 100 {
		pageSize = DefaultPageSize
	}

	search := c.Query("search", "")
	suspendedFilter := c.Query("suspended", "")

	var (
		users      []models.User
		totalCount int64
		tx         = s.db.Model(&models.User{})
	)

	if search != "" {
		like := "%" + search + "%"
		tx = tx.Where("name LIKE ? OR email LIKE ?", like, like)
	}

	// the suspended filter mirrors the computed predicate: a lapsed
	// suspension counts as not suspended even though the fields are set
	switch suspendedFilter {
	case "1":
		tx = tx.Where("suspended_until IS NOT NULL AND suspended_until > ?", time.Now())
	case "0":
		tx = tx.Where("suspended_until IS NULL OR suspended_until <= ?", time.Now())
	}

	if err := tx.Count(&totalCount).Error; err != nil {
		log.Error().Err(err).Msg("count users failed")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, fiber.Map{
			"Navigation": nav,
			"Error":      "Failed to load users",
			"Search":     search,
		}, handler.BaseLayout)
	}

	totalPages := int((totalCount + int64(pageSize) - 1) / int64(pageSize))
	if totalPages == 0 {
		totalPages = 1
	}

	if page > totalPages {
		page = totalPages
	}

	offset := (page - 1) * pageSize
	if err := tx.Order("id DESC").Limit(pageSize).Offset(offset).Find(&users).Error; err != nil {
		log.Error().Err(err).Msg("query users failed")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, fiber.Map{
			"Navigation": nav,
			"Error":      "Failed to load users",
			"Search":     search,
		}, handler.BaseLayout)
	}

	messages := flash.Get(c)

	return c.Render(TemplateList, fiber.Map{
		"Navigation":      nav,
		"Users":           users,
		"Search":          search,
		"SuspendedFilter": suspendedFilter,
		"Page":            page,
		"PageSize":        pageSize,
		"TotalPages":      totalPages,
		"TotalCount":      totalCount,
		"Success":         messages[flash.KeySuccess],
		"Error":           messages[flash.KeyError],
	}, handler.BaseLayout)
}

// formData is the create/update form payload.
type formData struct {
	Name     string `form:"name"     validate:"required,max=255"`
	Email    string `form:"email"    validate:"required,email,max=255"`
	Password string `form:"password" validate:"omitempty,min=8"`
	Roles    []uint `form:"roles"`
}

// suspendData is the suspend form payload. The timestamp only has to be
// present and parseable; future-ness is a form concern, not enforced here.
type suspendData struct {
	SuspendedUntil   string `form:"suspended_until"   validate:"required"`
	SuspensionReason string `form:"suspension_reason" validate:"omitempty,max=500"`
}

// New renders the empty user form.
func (s *Service) New(c *fiber.Ctx) error {
	nav := navigation.NewContext("New User", "admin", "user").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Users", Path, false).
		AddBreadcrumb("New", Path+"/new", true)

	roles, err := s.allRoles()
	if err != nil {
		return err
	}

	return c.Render(TemplateForm, fiber.Map{
		"Navigation": nav,
		"Roles":      roles,
		"Action":     Path,
	}, handler.BaseLayout)
}

// Create stores a new user and syncs its roles.
func (s *Service) Create(c *fiber.Ctx) error {
	form := new(formData)
	if err := c.BodyParser(form); err != nil {
		return err
	}

	if err := s.validator.Struct(form); err != nil {
		flash.Set(c, flash.KeyError, "Invalid user data: "+err.Error())
		return c.Redirect(Path + "/new")
	}

	if form.Password == "" {
		flash.Set(c, flash.KeyError, "Password is required")
		return c.Redirect(Path + "/new")
	}

	newUser := models.User{
		Name:     form.Name,
		Email:    form.Email,
		Password: models.HashPassword(form.Password),
	}

	if err := s.db.Create(&newUser).Error; err != nil {
		log.Error().Err(err).Msg("create user failed")
		flash.Set(c, flash.KeyError, "Failed to create user")

		return c.Redirect(Path + "/new")
	}

	if err := s.authService.SyncUserRoles(newUser.ID, form.Roles); err != nil {
		log.Error().Err(err).Uint64("user_id", newUser.ID).Msg("sync roles failed")
	}

	flash.Set(c, flash.KeySuccess, "User created successfully.")

	return c.Redirect(Path)
}

// Edit renders the user form with existing data.
func (s *Service) Edit(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid user ID")
	}

	editUser, err := usercontroller.GetByID(s.db, id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("User not found")
	}

	nav := navigation.NewContext("Edit User", "admin", "user").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Users", Path, false).
		AddBreadcrumb(editUser.Name, "#", true)

	roles, err := s.allRoles()
	if err != nil {
		return err
	}

	userRoles, err := s.authService.GetUserRoles(editUser.ID)
	if err != nil {
		return err
	}

	assigned := make(map[uint]bool, len(userRoles))
	for _, role := range userRoles {
		assigned[role.ID] = true
	}

	return c.Render(TemplateForm, fiber.Map{
		"Navigation":    nav,
		"User":          editUser,
		"Roles":         roles,
		"AssignedRoles": assigned,
		"Action":        Path + "/" + c.Params("id"),
	}, handler.BaseLayout)
}

// Update persists user changes and syncs roles.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid user ID")
	}

	editUser, err := usercontroller.GetByID(s.db, id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("User not found")
	}

	form := new(formData)
	if err := c.BodyParser(form); err != nil {
		return err
	}

	if err := s.validator.Struct(form); err != nil {
		flash.Set(c, flash.KeyError, "Invalid user data: "+err.Error())
		return c.Redirect(Path + "/" + c.Params("id") + "/edit")
	}

	editUser.Name = form.Name
	editUser.Email = form.Email

	if form.Password != "" {
		editUser.Password = models.HashPassword(form.Password)
	}

	if err := s.db.Save(editUser).Error; err != nil {
		log.Error().Err(err).Uint64("user_id", id).Msg("update user failed")
		flash.Set(c, flash.KeyError, "Failed to update user")

		return c.Redirect(Path + "/" + c.Params("id") + "/edit")
	}

	if err := s.authService.SyncUserRoles(editUser.ID, form.Roles); err != nil {
		log.Error().Err(err).Uint64("user_id", editUser.ID).Msg("sync roles failed")
	}

	flash.Set(c, flash.KeySuccess, "User updated successfully.")

	return c.Redirect(Path)
}

// Delete removes a user.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid user ID")
	}

	if err := s.db.Delete(&models.User{}, id).Error; err != nil {
		log.Error().Err(err).Uint64("user_id", id).Msg("delete user failed")
		flash.Set(c, flash.KeyError, "Failed to delete user")

		return c.Redirect(Path)
	}

	flash.Set(c, flash.KeySuccess, "User deleted successfully.")

	return c.Redirect(Path)
}

// Suspend applies a suspension window to a user.
func (s *Service) Suspend(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid user ID")
	}

	form := new(suspendData)
	if err := c.BodyParser(form); err != nil {
		return err
	}

	if err := s.validator.Struct(form); err != nil {
		flash.Set(c, flash.KeyError, "A suspension end time is required.")
		return c.Redirect(Path)
	}

	until, err := parseTimestamp(form.SuspendedUntil)
	if err != nil {
		flash.Set(c, flash.KeyError, "Invalid suspension end time.")
		return c.Redirect(Path)
	}

	var reason *string
	if form.SuspensionReason != "" {
		reason = &form.SuspensionReason
	}

	if err := usercontroller.Suspend(s.db, id, until, reason); err != nil {
		log.Error().Err(err).Uint64("user_id", id).Msg("suspend user failed")
		flash.Set(c, flash.KeyError, "Failed to suspend user")

		return c.Redirect(Path)
	}

	flash.Set(c, flash.KeySuccess, "User suspended successfully.")

	return c.Redirect(Path)
}

// Unsuspend lifts a user's suspension.
func (s *Service) Unsuspend(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid user ID")
	}

	if err := usercontroller.Unsuspend(s.db, id); err != nil {
		log.Error().Err(err).Uint64("user_id", id).Msg("unsuspend user failed")
		flash.Set(c, flash.KeyError, "Failed to unsuspend user")

		return c.Redirect(Path)
	}

	flash.Set(c, flash.KeySuccess, "User unsuspended successfully.")

	return c.Redirect(Path)
}

func (s *Service) allRoles() ([]models.Role, error) {
	var roles []models.Role
	if err := s.db.Order("name").Find(&roles).Error; err != nil {
		return nil, err
	}

	return roles, nil
}

// parseTimestamp accepts RFC 3339 or the datetime-local form format.
func parseTimestamp(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}

	return time.ParseInLocation("2006-01-02T15:04", value, time.Local)
}
