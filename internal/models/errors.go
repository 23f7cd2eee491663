package models

import "errors"

var (
	// repository errors
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")

	// service errors
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")

	// token errors
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
