// internal/service/reservation/domain/errors.go
package domain

import "errors"

var (
	ErrNotFound          = errors.New("reservation: not found")
	ErrForbidden         = errors.New("reservation: forbidden")
	ErrValidation        = errors.New("reservation: validation failed")
	ErrNoAvailability    = errors.New("reservation: no table available for the requested window")
	ErrInvalidTransition = errors.New("reservation: invalid status transition")
)
