// Package common defines shared constants and sentinel errors. Callers should
// use errors.Is to match these values; transports translate them to status
// codes in one place each.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal       = errors.New("internal error")
	ErrNotAuthenticated = errors.New("not logged in")
	ErrForbidden        = errors.New("forbidden")
	ErrValidation       = errors.New("validation error")
	ErrAlreadyExists    = errors.New("already exists")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
