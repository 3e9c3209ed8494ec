// Package locale resolves the active display language for each request.
package locale

import (
	"github.com/gofiber/fiber/v2"

	"github.com/GoBackOffice/GoBackOffice/internal/config"
	"github.com/GoBackOffice/GoBackOffice/internal/db/controller/setting"
	"github.com/GoBackOffice/GoBackOffice/internal/web/session"
)

// LocalsKey is the fiber.Locals key the resolved locale is stored under for
// the duration of the request.
const LocalsKey = "locale"

// SettingKey is the settings store key holding the application language.
// It is a single global value, not a per-user preference: the authenticated
// branch still reads one application-wide setting.
const SettingKey = "language"

// New creates the locale resolution middleware.
//
// Authenticated requests read the global language setting, restricted to the
// configured allow-list; unsupported or unset values fall through to the
// default. Anonymous requests negotiate against the client's declared
// language preferences instead. The middleware has no side effects beyond
// setting the request's locale context.
func New(store *setting.Store, cfg config.Locale) fiber.Handler {
	supported := make(map[string]bool, len(cfg.Supported))
	for _, code := range cfg.Supported {
		supported[code] = true
	}

	return func(c *fiber.Ctx) error {
		locale := cfg.Default

		if isAuthenticated(c) {
			if stored := store.GetString(SettingKey, cfg.Default); supported[stored] {
				locale = stored
			}
		} else if negotiated := c.AcceptsLanguages(cfg.Supported...); negotiated != "" {
			locale = negotiated
		}

		c.Locals(LocalsKey, locale)

		return c.Next()
	}
}

func isAuthenticated(c *fiber.Ctx) bool {
	sessionID := c.Cookies(session.CookieName)
	if sessionID == "" {
		return false
	}

	sessData := new(session.Data)
	if err := sessData.Read(sessionID); err != nil {
		return false
	}

	return sessData.User.ID > 0
}
