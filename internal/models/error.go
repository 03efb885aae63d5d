package models

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrVendorNotFound    = errors.New("vendor not found")
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrInvalidOrderItems = errors.New("invalid order items")
	ErrEmptyAddress      = errors.New("delivery address is required")
	ErrAccessDenied      = errors.New("access denied")
	ErrInvalidTransition = errors.New("invalid order transition")
	ErrOrderConflict     = errors.New("order changed since it was read")
	ErrPaymentFinalized  = errors.New("payment already finalized")
	ErrChargeNotFound    = errors.New("charge is not registered in payment system")
	ErrInternalError     = errors.New("internal error")
)

// TooManyRequestsError is returned when the payment system throttles us.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func NewTooManyRequestsError(retryAfter time.Duration) TooManyRequestsError {
	return TooManyRequestsError{RetryAfter: retryAfter}
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}
