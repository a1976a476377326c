// Package domain defines domain-level errors for the auth feature.
package domain

import "errors"

// Domain errors for authentication operations.
// These errors represent business logic failures and should be handled appropriately by upper layers.
var (
	// ErrUnauthorized indicates that the supplied credentials or token do not
	// resolve to an active user. It deliberately does not say which part was
	// wrong, to prevent user enumeration.
	ErrUnauthorized = errors.New("invalid login or password")

	// ErrInvalidToken indicates that a token failed structural validation
	// (signature, lifetime or signing algorithm).
	ErrInvalidToken = errors.New("invalid token")
)
