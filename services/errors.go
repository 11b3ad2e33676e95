package services

import "errors"

// Typed failures returned by the view and mutation engines. Controllers map
// these onto HTTP statuses with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidParent = errors.New("invalid parent folder")
	ErrValidation    = errors.New("validation failed")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	ErrConflict      = errors.New("conflict")
)
