package service

import "errors"

var (
	// ErrEmptyMessage rejects chat requests without message text.
	ErrEmptyMessage = errors.New("message is required")

	// ErrInvalidChannel rejects unsupported channel names.
	ErrInvalidChannel = errors.New("invalid channel")

	// ErrUserRequired rejects order creation without a user.
	ErrUserRequired = errors.New("user_id is required")

	// ErrEmptyOrder rejects order creation without items.
	ErrEmptyOrder = errors.New("order must contain at least one item")

	// ErrUnknownSKU rejects order lines naming no catalog product.
	ErrUnknownSKU = errors.New("unknown sku")
)
