package model

import "errors"

// Domain errors. Services return these (possibly wrapped); handlers map them
// to HTTP statuses with errors.Is.
var (
	// ErrNotFound is returned when a code resolves to no registered item.
	ErrNotFound = errors.New("item not found")

	// ErrDuplicateCode is returned when a create or rename would reuse a code
	// that already identifies another item.
	ErrDuplicateCode = errors.New("item code already in use")

	// ErrInvalidQuantity is returned for zero, negative, or malformed
	// quantities and for negative MANUAL targets.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrInsufficientStock rejects an OUT that would drive quantity negative.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrPersistence wraps any storage failure; when a transaction returns it
	// nothing was committed, in memory or on disk.
	ErrPersistence = errors.New("persistence failure")
)
