package service

import "errors"

// Failures surfaced by the auth service.  Handlers map them to HTTP
// status codes with errors.Is; nothing here carries request details.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrStaleToken         = errors.New("stale refresh token")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidRole        = errors.New("invalid role")
)
