package models

import (
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

// User represents a user account in the system.
// Users authenticate with a local email/password pair and are assigned one
// or more roles for permission management.
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey"`
	// Name is the user's display name.
	Name string `gorm:"size:255;not null"`
	// Email is the unique email address used for login.
	Email string `gorm:"unique;size:255;not null"`
	// Password is the Argon2id hashed password.
	Password string `gorm:"size:255"`

	// SuspendedAt records when the last suspension action occurred.
	// Informational only; it does not gate anything.
	SuspendedAt *time.Time
	// SuspendedUntil is the end of the suspension window. The user is
	// currently suspended iff this is non-nil and in the future. A lapsed
	// timestamp stays in place until an explicit unsuspend overwrites it.
	SuspendedUntil *time.Time
	// SuspensionReason is free text shown to the user on the login screen
	// while they are blocked.
	SuspensionReason *string `gorm:"size:500"`

	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time
	// DeletedAt is the soft delete timestamp (nil if not deleted, managed by GORM).
	DeletedAt *time.Time
}

// IsSuspended reports whether the user is currently suspended.
// The state is computed from SuspendedUntil against the wall clock, never
// stored: a past SuspendedUntil means the suspension has lapsed and the user
// is implicitly active again, even though the fields are not cleared.
func (u *User) IsSuspended() bool {
	if u.SuspendedUntil == nil {
		return false
	}

	return time.Now().Before(*u.SuspendedUntil)
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
// This function should be used when creating or updating user passwords.
// It uses the default Argon2id parameters for secure password hashing.
func HashPassword(password string) string {
	hashedPassword, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash password: %v", err)
	}

	return hashedPassword
}

// VerifyPassword verifies a plaintext password against the user's stored hashed password.
// It uses constant-time comparison to prevent timing attacks.
// Returns true if the password matches, false otherwise.
func (u *User) VerifyPassword(password string) bool {
	match, err := argon2id.ComparePasswordAndHash(password, u.Password)
	if err != nil {
		log.Error().Msgf("failed to verify password: %v", err)
		return false
	}

	return match
}
