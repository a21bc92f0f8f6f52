// internal/service/order/domain/errors.go
package domain

import "github.com/pkg/errors"

var (
	ErrNotFound          = errors.New("order: not found")
	ErrForbidden         = errors.New("order: forbidden")
	ErrValidation        = errors.New("order: validation failed")
	ErrInvalidTransition = errors.New("order: invalid transition")
	ErrItemUnavailable   = errors.New("order: menu item unavailable")
)
