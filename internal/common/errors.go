// Package common defines shared constants and sentinel errors used across
// client and server layers of gophauth. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")
	ErrValidation = errors.New("validation error")

	// Signup errors.
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateNickname = errors.New("nickname already exists")

	// Login and lookup errors.
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token errors. Expired and invalid are never conflated.
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenInvalid        = errors.New("invalid token")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrWeakSecret          = errors.New("secret key too short")

	// Authorization header errors.
	ErrNoToken             = errors.New("no token supplied")
	ErrMalformedAuthHeader = errors.New("malformed authorization header")

	// Collaborator failures (user store or key-value store).
	ErrStoreUnavailable = errors.New("store unavailable")
)
