// internal/service/delivery/domain/errors.go
package domain

import "github.com/pkg/errors"

var (
	ErrNotFound        = errors.New("delivery: order not found")
	ErrInvalidState    = errors.New("delivery: order not ready for assignment")
	ErrAlreadyAssigned = errors.New("delivery: order already assigned")
	ErrCourierBusy     = errors.New("delivery: courier already holds an active delivery")
)
