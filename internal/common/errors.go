package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrUnavailable    = errors.New("backend unavailable")

	// Auth errors.
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrUserAlreadyExists  = errors.New("user already registered")
	ErrWeakPassword       = errors.New("password is too weak")
	ErrNoIdentity         = errors.New("no user logged in")
	ErrInvalidToken       = errors.New("invalid token")

	// Post validation errors.
	ErrEmptyPost   = errors.New("post content is empty")
	ErrPostTooLong = errors.New("post content is too long")
)
