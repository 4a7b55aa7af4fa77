package services

import "errors"

// Shared service-level errors, matched by handlers to pick status codes.
var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrPropertyNotFound = errors.New("property not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnauthorized     = errors.New("unauthorized")
)
