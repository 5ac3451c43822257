package domain

import "errors"

var (
	// ErrInvalidArgument marks malformed or out-of-range input. No mutation is
	// applied when it is returned.
	ErrInvalidArgument = errors.New("invalid argument")

	ErrNotFound = errors.New("item not found")

	// ErrInsufficientQuantity is returned when a reservation could not be
	// applied: the stock is below the requested amount or the item is unknown.
	// The atomic guard cannot tell the two apart.
	ErrInsufficientQuantity = errors.New("insufficient quantity or unknown item")

	ErrStorageUnavailable = errors.New("storage unavailable")
)
