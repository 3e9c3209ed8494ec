// Package flash implements one-time messages attached to the next rendered
// response only.
//
// Messages are carried in a short-lived cookie instead of the session store:
// the suspension gate destroys the session before redirecting, and the
// suspension reason still has to reach the login page that follows.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	// CookieName is the name of the flash cookie.
	CookieName = "flash"

	// KeySuccess carries a success banner for the next page.
	KeySuccess = "success"
	// KeyError carries an error banner for the next page.
	KeyError = "error"
	// KeySuspensionReason carries the suspension reason shown on the login
	// screen after a suspended user's session was terminated.
	KeySuspensionReason = "suspension_reason"

	// pendingLocalsKey accumulates messages set during the current request.
	pendingLocalsKey = "flashPending"

	// maxAge limits how long an unread flash cookie survives.
	maxAge = 5 * time.Minute
)

// Set attaches a message to the next rendered response. Several messages can
// be set during one request; they are delivered together and exactly once.
func Set(c *fiber.Ctx, key, message string) {
	messages, _ := c.Locals(pendingLocalsKey).(map[string]string)
	if messages == nil {
		messages = make(map[string]string)
	}

	messages[key] = message
	c.Locals(pendingLocalsKey, messages)

	raw, err := json.Marshal(messages)
	if err != nil {
		return
	}

	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		MaxAge:   int(maxAge.Seconds()),
		HTTPOnly: true,
		SameSite: "Lax",
	})
}

// Get pops all pending messages carried by the request: the cookie is
// cleared so the messages render on this response and never again.
// An absent or unreadable cookie yields an empty map.
func Get(c *fiber.Ctx) map[string]string {
	messages := make(map[string]string)

	value := c.Cookies(CookieName)
	if value == "" {
		return messages
	}

	// expire the cookie regardless of whether it decodes
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		MaxAge:   -1,
		HTTPOnly: true,
		SameSite: "Lax",
	})

	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return messages
	}

	if err := json.Unmarshal(raw, &messages); err != nil {
		return map[string]string{}
	}

	return messages
}
