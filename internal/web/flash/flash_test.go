package flash

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func performGet(t *testing.T, app *fiber.App, target string, cookies ...*http.Cookie) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err, "app.Test failed")

	return resp
}

func flashCookie(resp *http.Response) *http.Cookie {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == CookieName {
			return cookie
		}
	}

	return nil
}

func TestSet_WritesCookie(t *testing.T) {
	app := fiber.New()

	app.Get("/set", func(c *fiber.Ctx) error {
		Set(c, KeyError, "Your account has been suspended.")
		Set(c, KeySuspensionReason, "spam")

		return c.SendStatus(fiber.StatusOK)
	})

	resp := performGet(t, app, "/set")
	cookie := flashCookie(resp)
	require.NotNil(t, cookie, "flash cookie must be set")
	assert.Positive(t, cookie.MaxAge)

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"Your account has been suspended.","suspension_reason":"spam"}`, string(raw))
}

func TestGet_PopsMessagesOnce(t *testing.T) {
	app := fiber.New()

	app.Get("/set", func(c *fiber.Ctx) error {
		Set(c, KeySuccess, "Saved.")
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/get", func(c *fiber.Ctx) error {
		messages := Get(c)
		return c.JSON(messages)
	})

	setResp := performGet(t, app, "/set")
	cookie := flashCookie(setResp)
	require.NotNil(t, cookie)

	getResp := performGet(t, app, "/get", cookie)

	// reading expires the cookie
	cleared := flashCookie(getResp)
	require.NotNil(t, cleared)
	assert.Negative(t, cleared.MaxAge)
	assert.Empty(t, cleared.Value)
}

func TestGet_NoCookie(t *testing.T) {
	app := fiber.New()

	app.Get("/get", func(c *fiber.Ctx) error {
		messages := Get(c)
		assert.Empty(t, messages)

		return c.SendStatus(fiber.StatusOK)
	})

	resp := performGet(t, app, "/get")
	assert.Nil(t, flashCookie(resp), "no cookie must be written when nothing was read")
}

func TestGet_MalformedCookie(t *testing.T) {
	app := fiber.New()

	app.Get("/get", func(c *fiber.Ctx) error {
		messages := Get(c)
		assert.Empty(t, messages)

		return c.SendStatus(fiber.StatusOK)
	})

	resp := performGet(t, app, "/get", &http.Cookie{Name: CookieName, Value: "%%%not-base64"})

	// the broken cookie still gets expired
	cleared := flashCookie(resp)
	require.NotNil(t, cleared)
	assert.Negative(t, cleared.MaxAge)
}
