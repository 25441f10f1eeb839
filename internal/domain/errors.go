package domain

import "errors"

// Auth errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNoSecret           = errors.New("auth secret is not configured")
	ErrAdminRequired      = errors.New("admin access required")
	ErrUserNotFound       = errors.New("user not found")
)

// Chat errors
var (
	ErrInvalidMessage = errors.New("message text must be between 1 and 1000 characters")
	ErrArchiveFailed  = errors.New("failed to archive session")
	ErrSelfDelete     = errors.New("cannot delete your own account")
)
