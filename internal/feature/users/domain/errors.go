// Package domain defines domain-level errors for the users feature.
package domain

import "errors"

// Domain errors for account lifecycle operations.
// These errors represent business logic failures and should be handled appropriately by upper layers.
var (
	// ErrUserNotFound indicates that the referenced user (requester or target)
	// does not exist in the store.
	ErrUserNotFound = errors.New("user not found")

	// ErrNotUniqueLogin indicates that the requested login is already in use
	// by a different record, revoked ones included.
	ErrNotUniqueLogin = errors.New("login is already in use")

	// ErrOnlyAdmins indicates that the requester was resolved but lacks the
	// admin privilege required for the operation.
	ErrOnlyAdmins = errors.New("operation is allowed to admins only")
)
