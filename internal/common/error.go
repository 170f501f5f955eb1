// Package common defines shared constants and sentinel errors used across
// the service layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")
	ErrValidation = errors.New("validation error")

	// Credential errors.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token carrier missing from the request.
	ErrUnauthenticated = errors.New("unauthenticated")

	// Auth errors (invalid, malformed or expired token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Subject of a valid token no longer resolves.
	ErrPrincipalNotFound = errors.New("principal not found")

	// Presented refresh token differs from the bound one.
	ErrTokenReuseDetected = errors.New("refresh token reuse detected")

	// Storage read/write failed or timed out.
	ErrStorageFailure = errors.New("storage failure")
)
