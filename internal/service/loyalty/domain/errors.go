// internal/service/loyalty/domain/errors.go
package domain

import "errors"

var (
	ErrNotFound               = errors.New("loyalty: not found")
	ErrValidation             = errors.New("loyalty: validation failed")
	ErrInactive               = errors.New("loyalty: not active")
	ErrExpired                = errors.New("loyalty: expired")
	ErrRedemptionLimitReached = errors.New("loyalty: redemption limit reached")
	ErrInsufficientPoints     = errors.New("loyalty: insufficient points")
	ErrAlreadyUsed            = errors.New("loyalty: coupon already used")
	ErrNotEligible            = errors.New("loyalty: not eligible for reward")

	// ErrCodeCollision 表示生成的券码撞了唯一索引，调用方应换码重试。
	ErrCodeCollision = errors.New("loyalty: coupon code collision")
)
