// Package session holds the server side session state for logged in users.
package session

import (
	"encoding/json"
	"time"

	"github.com/dchest/uniuri"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage"

	"github.com/GoBackOffice/GoBackOffice/internal/db/models"
)

// CookieName is the name of the session cookie.
const CookieName = "session"

// sessionIDLen is the length of generated session identifiers (~286 bits of
// entropy with the standard character set).
const sessionIDLen = 48

// Store is the global session store instance.
var Store *session.Store

// Data represents the session data structure.
type Data struct {
	User models.User
}

// Write writes the session data for the given session ID with an expiration duration.
func (s *Data) Write(sessionID string, exp time.Duration) error {
	out, err := json.Marshal(s)
	if err != nil {
		return err
	}

	return Store.Storage.Set(sessionID, out, exp)
}

// Read reads the session data for the given session ID.
func (s *Data) Read(sessionID string) error {
	byteData, err := Store.Storage.Get(sessionID)
	if err != nil {
		return err
	}

	return json.Unmarshal(byteData, s)
}

// Destroy removes the session from the store, terminating it server side.
func Destroy(sessionID string) error {
	return Store.Storage.Delete(sessionID)
}

// Init initializes the session store with the provided storage backend.
func Init(storage storage.Storage) {
	if storage == nil {
		panic("storage is nil")
	}

	Store = session.New(session.Config{
		Storage: storage,
	})
}

// GenerateSessionID generates a new secure random session ID.
func GenerateSessionID() string {
	return uniuri.NewLen(sessionIDLen)
}
