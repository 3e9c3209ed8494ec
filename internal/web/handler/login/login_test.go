package login

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GoBackOffice/GoBackOffice/internal/config"
	"github.com/GoBackOffice/GoBackOffice/internal/db/models"
	websess "github.com/GoBackOffice/GoBackOffice/internal/web/session"
)

// noOpViews is a minimal Fiber Views engine used for tests.
// It writes the "error" and "suspension_reason" fields from the provided
// fiber.Map (if any) so tests can assert messages rendered by handlers.
type noOpViews struct{}

func (noOpViews) Load() error { return nil }

func (noOpViews) Render(w io.Writer, name string, data interface{}, _ ...string) error {
	if m, ok := data.(fiber.Map); ok {
		for _, key := range []string{"error", "suspension_reason"} {
			if v, exists := m[key]; exists && v != nil {
				if s, isStr := v.(string); isStr && s != "" {
					_, _ = io.WriteString(w, s+"\n")
				}
			}
		}

		return nil
	}

	// write template name to have some content
	_, _ = io.WriteString(w, name)

	return nil
}

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{Views: noOpViews{}})
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite in-memory db: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("failed to migrate user model: %v", err)
	}

	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		DevMode: false,
		Webserver: config.Webserver{
			URL:     "http://localhost",
			Port:    3000,
			Session: config.Session{ExpiryTime: time.Minute},
		},
	}
}

// testStorage is a minimal in-memory implementation of storage.Storage for tests.
type testStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ storage.Storage = (*testStorage)(nil)

func (s *testStorage) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := s.data[key]
	out := make([]byte, len(v))
	copy(out, v)

	return out, nil
}

func (s *testStorage) Set(key string, val []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string][]byte)
	}

	buf := make([]byte, len(val))
	copy(buf, val)
	s.data[key] = buf

	return nil
}

func (s *testStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)

	return nil
}

func (s *testStorage) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string][]byte)

	return nil
}

func (s *testStorage) Close() error { return nil }

func initSessionStore() {
	// Initialize a fresh in-memory session store for each test.
	websess.Init(&testStorage{data: make(map[string][]byte)})
}

func createUser(t *testing.T, db *gorm.DB, email, password string) *models.User {
	t.Helper()

	u := models.User{Name: "Test User", Email: email, Password: models.HashPassword(password)}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return &u
}

func performPost(t *testing.T, app *fiber.App, target string, form url.Values) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}

	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}

	return string(body)
}

func TestPost_Success_SetsCookieAndRedirects(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	app := newTestApp()

	initSessionStore()

	var s Service
	require.NoError(t, s.Init(app, cfg, db))

	createUser(t, db, "bob@example.com", "s3cr3t")

	form := url.Values{
		"email":    {"bob@example.com"},
		"password": {"s3cr3t"},
	}
	resp := performPost(t, app, Path, form)

	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	var sessionCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == websess.CookieName {
			sessionCookie = c
		}
	}

	require.NotNil(t, sessionCookie, "session cookie must be set")
	assert.NotEmpty(t, sessionCookie.Value)
	assert.True(t, sessionCookie.Secure, "cookie must be Secure outside dev mode")
	assert.True(t, sessionCookie.HttpOnly)
}

func TestPost_DevModeCookieNotSecure(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	cfg.DevMode = true
	app := newTestApp()

	initSessionStore()

	var s Service
	require.NoError(t, s.Init(app, cfg, db))

	createUser(t, db, "bob@example.com", "s3cr3t")

	resp := performPost(t, app, Path, url.Values{
		"email":    {"bob@example.com"},
		"password": {"s3cr3t"},
	})

	for _, c := range resp.Cookies() {
		if c.Name == websess.CookieName {
			assert.False(t, c.Secure, "dev mode must not require Secure")
		}
	}
}

func TestPost_WrongPassword(t *testing.T) {
	db := newTestDB(t)
	app := newTestApp()

	initSessionStore()

	var s Service
	require.NoError(t, s.Init(app, newTestConfig(), db))

	createUser(t, db, "bob@example.com", "s3cr3t")

	resp := performPost(t, app, Path, url.Values{
		"email":    {"bob@example.com"},
		"password": {"wrong"},
	})

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Invalid email or password")
}

func TestPost_UnknownUser(t *testing.T) {
	db := newTestDB(t)
	app := newTestApp()

	initSessionStore()

	var s Service
	require.NoError(t, s.Init(app, newTestConfig(), db))

	resp := performPost(t, app, Path, url.Values{
		"email":    {"nobody@example.com"},
		"password": {"whatever"},
	})

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Invalid email or password")
}

func TestPost_SuspendedUserIsRejectedWithReason(t *testing.T) {
	db := newTestDB(t)
	app := newTestApp()

	initSessionStore()

	var s Service
	require.NoError(t, s.Init(app, newTestConfig(), db))

	user := createUser(t, db, "alice@example.com", "s3cr3t")

	until := time.Now().Add(time.Hour)
	reason := "repeated abuse"
	require.NoError(t, db.Model(user).Updates(map[string]any{
		"suspended_until":   until,
		"suspension_reason": reason,
	}).Error)

	resp := performPost(t, app, Path, url.Values{
		"email":    {"alice@example.com"},
		"password": {"s3cr3t"},
	})

	// correct credentials, but no session
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := readBody(t, resp)
	assert.Contains(t, body, "Your account has been suspended.")
	assert.Contains(t, body, "repeated abuse")

	for _, c := range resp.Cookies() {
		assert.NotEqual(t, websess.CookieName, c.Name, "no session cookie for a suspended user")
	}
}

func TestPost_LapsedSuspensionLogsIn(t *testing.T) {
	db := newTestDB(t)
	app := newTestApp()

	initSessionStore()

	var s Service
	require.NoError(t, s.Init(app, newTestConfig(), db))

	user := createUser(t, db, "carol@example.com", "s3cr3t")

	until := time.Now().Add(-time.Hour)
	require.NoError(t, db.Model(user).Update("suspended_until", until).Error)

	resp := performPost(t, app, Path, url.Values{
		"email":    {"carol@example.com"},
		"password": {"s3cr3t"},
	})

	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))
}
