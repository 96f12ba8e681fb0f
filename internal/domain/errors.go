package domain

import (
	"errors"
	"fmt"
)

// ValidationError reports a malformed order at construction time. The order
// must not be submitted.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid order: " + e.Reason
}

// TransitionError reports an illegal order-status transition. No mutation
// happens when it is returned.
type TransitionError struct {
	OrderID string
	From    OrderStatus
	To      OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("order %s: illegal transition %s -> %s", e.OrderID, e.From, e.To)
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

var (
	// ErrOrderNotFound is returned when an order id is not in the book.
	ErrOrderNotFound = errors.New("order not found")

	// ErrOrderExists is returned when an order id is inserted twice, or an
	// already-submitted order is submitted again.
	ErrOrderExists = errors.New("order already exists")

	// ErrNotCancelable is returned when canceling an order that is not in
	// ACCEPTED status.
	ErrNotCancelable = errors.New("order status must be ACCEPTED before it can be canceled")
)
