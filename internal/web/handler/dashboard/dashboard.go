// Package dashboard implements the landing page after login.
package dashboard

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoBackOffice/GoBackOffice/internal/auth"
	"github.com/GoBackOffice/GoBackOffice/internal/config"
	"github.com/GoBackOffice/GoBackOffice/internal/db/models"
	"github.com/GoBackOffice/GoBackOffice/internal/web/flash"
	"github.com/GoBackOffice/GoBackOffice/internal/web/handler"
	"github.com/GoBackOffice/GoBackOffice/internal/web/navigation"
)

const (
	// Path is the path to the dashboard page.
	Path = "/dashboard"

	// Template is the dashboard template.
	Template = "dashboard"
)

// Service is the dashboard handler service.
type Service struct {
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
}

// Handler is the dashboard handler.
var Handler = Service{}

// Init initializes the dashboard handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.authService = authService

	app.Get(Path, s.Get)
}

// Get renders the dashboard with entity counts.
func (s *Service) Get(c *fiber.Ctx) error {
	nav := navigation.NewContext("Dashboard", "dashboard", "dashboard").
		AddBreadcrumb("Home", Path, true)

	var userCount, roleCount, permissionCount int64

	s.db.Model(&models.User{}).Count(&userCount)
	s.db.Model(&models.Role{}).Count(&roleCount)
	s.db.Model(&models.Permission{}).Count(&permissionCount)

	messages := flash.Get(c)

	return c.Render(Template, fiber.Map{
		"Navigation":      nav,
		"Title":           s.cfg.Title,
		"UserCount":       userCount,
		"RoleCount":       roleCount,
		"PermissionCount": permissionCount,
		"Success":         messages[flash.KeySuccess],
		"Error":           messages[flash.KeyError],
	}, handler.BaseLayout)
}
