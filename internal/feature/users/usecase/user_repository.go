package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"users_backend/internal/feature/users/domain/entity"
)

// UserPatch describes a partial mutation of a user record.
// Only non-nil fields are applied; the Modified stamps are always applied.
// An explicit pointer means "set this field", nil means "leave untouched",
// so a legitimate GenderUnknown value can still be stored.
type UserPatch struct {
	Login        *string
	PasswordHash *string
	Name         *string
	Gender       *entity.Gender
	Birthday     *time.Time
	ModifiedOn   time.Time
	ModifiedBy   string
}

// UserRepository abstracts the persistence layer for user records.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type UserRepository interface {
	// Create persists a new user to the storage.
	// Returns domain.ErrNotUniqueLogin if the login is already taken,
	// revoked records included. Uniqueness is enforced race-free by the store.
	Create(ctx context.Context, user *entity.User) error

	// FindByGuid retrieves a user by its identifier.
	// Returns domain.ErrUserNotFound if no such record exists.
	FindByGuid(ctx context.Context, guid uuid.UUID) (*entity.User, error)

	// FindByLogin retrieves a user by its login, exact case-sensitive match.
	// Returns domain.ErrUserNotFound if no such record exists.
	FindByLogin(ctx context.Context, login string) (*entity.User, error)

	// IsAdmin reports whether the user holds the admin flag.
	// Returns domain.ErrUserNotFound if the record does not exist, so a
	// missing requester is never mistaken for a permission denial.
	IsAdmin(ctx context.Context, guid uuid.UUID) (bool, error)

	// UpdateFields applies the patch to the record in a single atomic update.
	// Returns domain.ErrUserNotFound if the record does not exist and
	// domain.ErrNotUniqueLogin if a different record holds the patched login.
	UpdateFields(ctx context.Context, guid uuid.UUID, patch UserPatch) error

	// DeleteSoft marks the record as revoked. The record stays queryable by
	// guid but disappears from active views and credential login.
	// Returns domain.ErrUserNotFound if the record does not exist; the record
	// is not required to be currently active.
	DeleteSoft(ctx context.Context, guid uuid.UUID, revokedBy string, at time.Time) error

	// DeleteHard permanently removes the record. The login becomes available
	// for reuse immediately. Returns domain.ErrUserNotFound if absent.
	DeleteHard(ctx context.Context, guid uuid.UUID) error

	// Reactivate clears RevokedOn/RevokedBy together and stamps the Modified
	// pair. Reactivating an already-active record is a no-op that still
	// stamps. Returns domain.ErrUserNotFound if the record does not exist.
	Reactivate(ctx context.Context, guid uuid.UUID, modifiedBy string, at time.Time) error

	// ListActive retrieves all non-revoked users ordered by CreatedOn descending.
	ListActive(ctx context.Context) ([]*entity.User, error)

	// ListBornBefore retrieves users whose birthday is set and on or before the cutoff.
	ListBornBefore(ctx context.Context, cutoff time.Time) ([]*entity.User, error)
}

// PasswordHasher produces the one-way digest stored instead of plaintext
// passwords. The digest must be deterministic: credential login looks up
// login and digest in a single store query.
type PasswordHasher interface {
	Hash(plaintext string) string
}
