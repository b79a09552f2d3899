package application

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")

	// ErrInvalidName rejects role and permission names outside the 3 to 30
	// character range, measured in runes to match the request binding.
	ErrInvalidName = errors.New("name must be between 3 and 30 characters")

	// Token lifecycle failures. All three surface as HTTP 401; the split keeps
	// expiry, revocation and malformed tokens distinguishable in logs and tests.
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrTokenExpired    = errors.New("token expired")
	ErrTokenRevoked    = errors.New("token revoked")
)
