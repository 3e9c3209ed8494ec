// Package login implements the login page and the local credential check.
package login

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoBackOffice/GoBackOffice/internal/config"
	"github.com/GoBackOffice/GoBackOffice/internal/db/models"
	"github.com/GoBackOffice/GoBackOffice/internal/web/flash"
	"github.com/GoBackOffice/GoBackOffice/internal/web/handler"
	"github.com/GoBackOffice/GoBackOffice/internal/web/session"
)

const (
	// Path is the path to the login page.
	Path = "/login"

	// Template is the login page template.
	Template = "login"
)

// Service is the login handler service.
type Service struct {
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the login handler.
var Handler = Service{}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New("app, cfg or db is nil")
	}

	s.db = db
	s.cfg = cfg

	// register routes
	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.Get)
		router.Post(handler.RouterRootPath, s.Post)
	})

	return nil
}

// Get handles the login page rendering. One-time messages left by the
// suspension gate or a previous action are popped here.
func (s *Service) Get(c *fiber.Ctx) error {
	messages := flash.Get(c)

	return c.Render(Template, fiber.Map{
		"error":             messages[flash.KeyError],
		"success":           messages[flash.KeySuccess],
		"suspension_reason": messages[flash.KeySuspensionReason],
	})
}

// credentials is the login form payload.
type credentials struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

// Post handles the login form submission.
func (s *Service) Post(c *fiber.Ctx) error {
	creds := new(credentials)

	if err := c.BodyParser(creds); err != nil {
		return err
	}

	// find user in db
	var dbUser models.User
	result := s.db.Where("email = ?", creds.Email).First(&dbUser)
	if result.Error != nil {
		return c.Render(Template, fiber.Map{
			"error": "Invalid email or password",
		})
	}

	// check if password matches
	if !dbUser.VerifyPassword(creds.Password) {
		return c.Render(Template, fiber.Map{
			"error": "Invalid email or password",
		})
	}

	// a currently suspended user cannot open a new session
	if dbUser.IsSuspended() {
		reason := ""
		if dbUser.SuspensionReason != nil {
			reason = *dbUser.SuspensionReason
		}

		return c.Render(Template, fiber.Map{
			"error":             "Your account has been suspended.",
			"suspension_reason": reason,
		})
	}

	sessionID := session.GenerateSessionID()

	userSession := &session.Data{
		User: dbUser,
	}

	if err := userSession.Write(sessionID, s.cfg.Webserver.Session.ExpiryTime); err != nil {
		log.Error().Err(err).Msg("failed to write session")
		return c.Render(Template, fiber.Map{
			"error": "Internal server error",
		})
	}

	// set login cookie
	cookieSettings := &fiber.Cookie{
		Name:     session.CookieName,
		Value:    sessionID,
		MaxAge:   int(s.cfg.Webserver.Session.ExpiryTime.Seconds()),
		Secure:   true,
		HTTPOnly: true,
		SameSite: "Lax",
	}

	if s.cfg.DevMode {
		cookieSettings.Secure = false
	}

	c.Cookie(cookieSettings)

	return c.Redirect("/dashboard")
}
