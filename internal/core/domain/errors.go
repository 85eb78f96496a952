package domain

import "errors"

// Sentinel errors mapped to HTTP status codes by the API error handler.
// Wrap with fmt.Errorf("...: %w", Err...) to attach detail; the handler
// matches with errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrUnauthorized       = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("access forbidden")

	ErrLeadNotFound         = errors.New("lead not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrActivityNotFound     = errors.New("activity not found")
	ErrNotificationNotFound = errors.New("notification not found")

	ErrUserExists = errors.New("user with this email already exists")
	ErrEmailTaken = errors.New("email already taken by another user")
)
