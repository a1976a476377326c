// Package entity defines the domain entities for the users feature.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Gender is a small enumerated value describing a user's gender.
// Unknown is the zero value and means "no value supplied".
type Gender int

const (
	GenderUnknown Gender = iota
	GenderFemale
	GenderMale
)

// User represents a managed account record.
// It contains credentials, profile data and the audit stamps used by
// the account lifecycle operations.
type User struct {
	// Guid is the unique identifier for the user.
	// It is assigned by the system at creation time and never changes.
	Guid uuid.UUID `gorm:"type:char(36);primaryKey"`

	// Login is the user's login name.
	// It must be unique across all records, revoked ones included.
	Login string `gorm:"uniqueIndex;size:255;not null"`

	// PasswordHash is the one-way digest of the user's password.
	// This should never store plaintext passwords.
	PasswordHash string `gorm:"size:255;not null"`

	// Name is the user's display name.
	Name string `gorm:"size:255;not null"`

	// Gender is the user's gender (GenderUnknown when not supplied).
	Gender Gender `gorm:"not null;default:0"`

	// Birthday is the user's date of birth. nil means "not set".
	Birthday *time.Time

	// Admin grants unrestricted permission. It is set only at creation.
	Admin bool `gorm:"not null;default:false"`

	// CreatedOn is the UTC timestamp when the record was created.
	CreatedOn time.Time `gorm:"not null"`

	// CreatedBy is the login of the user that created the record.
	CreatedBy string `gorm:"size:255"`

	// ModifiedOn is the UTC timestamp of the last mutation.
	ModifiedOn *time.Time

	// ModifiedBy is the login of the user that performed the last mutation.
	ModifiedBy *string `gorm:"size:255"`

	// RevokedOn is the UTC timestamp of the soft delete.
	// RevokedOn and RevokedBy are always set and cleared together.
	RevokedOn *time.Time

	// RevokedBy is the login of the user that performed the soft delete.
	RevokedBy *string `gorm:"size:255"`
}

// IsActive returns true if the record has not been revoked.
func (u *User) IsActive() bool {
	return u.RevokedOn == nil && u.RevokedBy == nil
}
