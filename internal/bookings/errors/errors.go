package errors

import "errors"

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrReviewNotFound  = errors.New("review not found")
	ErrInvalidID       = errors.New("invalid ID format")
	ErrSlotLocked      = errors.New("slot is locked by another request")
	ErrReviewExists    = errors.New("booking already has a review")
	ErrStatusChanged   = errors.New("booking status changed since it was read")
)
