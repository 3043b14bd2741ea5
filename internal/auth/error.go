package auth

import "errors"

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrInvalidToken    = errors.New("invalid or expired token")
	ErrInvalidRole     = errors.New("invalid role")
	ErrMissingSecret   = errors.New("token secret is not configured")
)
