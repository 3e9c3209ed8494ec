// Package suspension enforces the user suspension lifecycle at the edge of
// the request pipeline, before any handler runs. Evaluating it here, not per
// handler, guarantees no authenticated endpoint is reachable by a suspended
// user regardless of which route they attempt.
package suspension

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	usercontroller "github.com/GoBackOffice/GoBackOffice/internal/db/controller/user"
	"github.com/GoBackOffice/GoBackOffice/internal/web/flash"
	"github.com/GoBackOffice/GoBackOffice/internal/web/handler/login"
	"github.com/GoBackOffice/GoBackOffice/internal/web/session"
)

// New creates the suspension gate middleware.
//
// Anonymous requests pass through unchanged; there is nothing to enforce.
// For authenticated requests the user row is re-read so a suspension applied
// after login takes effect immediately. A currently suspended user has their
// session terminated, the suspension reason attached as a one-time message,
// and is redirected to the login page. This is a side-effecting check: the
// session is destroyed, not merely the current action denied.
func New(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies(session.CookieName)
		if sessionID == "" {
			return c.Next()
		}

		sessData := new(session.Data)
		if err := sessData.Read(sessionID); err != nil || sessData.User.ID == 0 {
			return c.Next()
		}

		user, err := usercontroller.GetByID(db, sessData.User.ID)
		if err != nil {
			if !errors.Is(err, usercontroller.ErrUserNotFound) {
				log.Error().Err(err).Uint64("user_id", sessData.User.ID).
					Msg("failed to load user for suspension check")
			}

			return c.Next()
		}

		if !user.IsSuspended() {
			return c.Next()
		}

		// terminate the session
		if err := session.Destroy(sessionID); err != nil {
			log.Error().Err(err).Msg("failed to destroy session of suspended user")
		}

		c.Cookie(&fiber.Cookie{
			Name:     session.CookieName,
			Value:    "",
			MaxAge:   -1,
			HTTPOnly: true,
			SameSite: "Lax",
		})

		flash.Set(c, flash.KeyError, "Your account has been suspended.")
		if user.SuspensionReason != nil {
			flash.Set(c, flash.KeySuspensionReason, *user.SuspensionReason)
		}

		log.Warn().Uint64("user_id", user.ID).Time("suspended_until", *user.SuspendedUntil).
			Msg("suspended user logged out")

		return c.Redirect(login.Path)
	}
}
