// Package user provides persistence operations for user accounts, including
// the suspension lifecycle.
package user

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/GoBackOffice/GoBackOffice/internal/db/models"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// GetByID retrieves a user by ID.
func GetByID(db *gorm.DB, id uint64) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var user models.User
	result := db.First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}

	return &user, nil
}

// GetByEmail retrieves a user by email address.
func GetByEmail(db *gorm.DB, email string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var user models.User
	result := db.Where("email = ?", email).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}

	return &user, nil
}

// Suspend blocks a user until the given time. All three suspension fields
// are written in a single UPDATE so no partial state is ever observable.
//
// The timestamp is not validated here: a past value produces a suspension
// that has already lapsed, matching the form layer being the only place
// future-ness is checked. Suspending an already suspended user simply
// overwrites the previous window.
func Suspend(db *gorm.DB, id uint64, until time.Time, reason *string) error {
	if db == nil {
		return ErrDBNil
	}

	user, err := GetByID(db, id)
	if err != nil {
		return err
	}

	return db.Model(user).
		Updates(map[string]any{
			"suspended_at":      time.Now(),
			"suspended_until":   until,
			"suspension_reason": reason,
		}).Error
}

// Unsuspend clears all three suspension fields in a single UPDATE, making
// the user explicitly active again.
func Unsuspend(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	user, err := GetByID(db, id)
	if err != nil {
		return err
	}

	return db.Model(user).
		Updates(map[string]any{
			"suspended_at":      nil,
			"suspended_until":   nil,
			"suspension_reason": nil,
		}).Error
}
