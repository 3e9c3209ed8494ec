package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoBackOffice/GoBackOffice/internal/db/models"
	"github.com/GoBackOffice/GoBackOffice/internal/web/session"
)

// RequirePermission creates Fiber middleware that requires a specific capability.
func RequirePermission(authService *Service, permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get session cookie
		sessionID := c.Cookies(session.CookieName)
		if sessionID == "" {
			return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
		}

		// Read session data
		sessionData := new(session.Data)
		if err := sessionData.Read(sessionID); err != nil {
			return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
		}

		// Check if the session is valid
		if sessionData.User.ID == 0 {
			return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
		}

		// Check if the user has the capability
		hasPermission, err := authService.HasPermission(sessionData.User.ID, permission)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", sessionData.User.ID).Str("permission", permission).
				Msg("Failed to check permission")

			return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
		}

		if !hasPermission {
			log.Warn().Uint64("user_id", sessionData.User.ID).Str("permission", permission).
				Msg("User lacks required permission")

			return c.Status(fiber.StatusForbidden).SendString("Forbidden: You don't have permission to access this resource")
		}

		// User has permission, proceed
		return c.Next()
	}
}

// RequireAnyPermission creates Fiber middleware that requires at least one of the given capabilities.
func RequireAnyPermission(authService *Service, permissions ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies(session.CookieName)
		if sessionID == "" {
			return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
		}

		sessionData := new(session.Data)
		if err := sessionData.Read(sessionID); err != nil {
			return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
		}

		if sessionData.User.ID == 0 {
			return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
		}

		hasPermission, err := authService.HasAnyPermission(sessionData.User.ID, permissions)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", sessionData.User.ID).Strs("permissions", permissions).
				Msg("Failed to check permissions")

			return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
		}

		if !hasPermission {
			log.Warn().Uint64("user_id", sessionData.User.ID).Strs("permissions", permissions).
				Msg("User lacks required permissions")

			return c.Status(fiber.StatusForbidden).SendString("Forbidden: You don't have permission to access this resource")
		}

		return c.Next()
	}
}

// CurrentUser returns the user stored in the request's session, or nil for
// anonymous requests.
func CurrentUser(c *fiber.Ctx) *models.User {
	sessionID := c.Cookies(session.CookieName)
	if sessionID == "" {
		return nil
	}

	sessionData := new(session.Data)
	if err := sessionData.Read(sessionID); err != nil {
		return nil
	}

	if sessionData.User.ID == 0 {
		return nil
	}

	return &sessionData.User
}

// HasPermissionInContext checks if the current user in the Fiber context has a capability.
// Useful for conditional rendering in handlers.
func HasPermissionInContext(c *fiber.Ctx, authService *Service, permission string) bool {
	user := CurrentUser(c)
	if user == nil {
		return false
	}

	hasPermission, err := authService.HasPermission(user.ID, permission)
	if err != nil {
		return false
	}

	return hasPermission
}

// AddPermissionsToLocals is a Fiber middleware that adds user permissions to fiber.Locals.
// This allows templates to access permissions for conditional rendering.
func AddPermissionsToLocals(authService *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			// Not authenticated, continue without permissions
			return c.Next()
		}

		permissions, err := authService.GetUserPermissions(user.ID)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", user.ID).Msg("Failed to load user permissions")

			return c.Next()
		}

		permMap := make(map[string]bool, len(permissions))
		for _, perm := range permissions {
			permMap[perm] = true
		}

		c.Locals("Permissions", permMap)

		return c.Next()
	}
}
