package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError(t *testing.T) {
	err := &ValidationError{Reason: "you must and only can specify limit price for a limit order"}
	want := "invalid order: you must and only can specify limit price for a limit order"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	var verr *ValidationError
	wrapped := fmt.Errorf("submit: %w", err)
	if !errors.As(wrapped, &verr) {
		t.Error("expected errors.As to find ValidationError through wrapping")
	}
}

func TestTransitionError(t *testing.T) {
	err := &TransitionError{OrderID: "X100001", From: OrderStatusFilled, To: OrderStatusCanceled}
	want := "order X100001: illegal transition FILLED -> CANCELED"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestConfigError(t *testing.T) {
	base := errors.New("must be positive")
	err := &ConfigError{Field: "backtest.initial_balance", Err: base}

	if err.Error() != "config error [backtest.initial_balance]: must be positive" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, base) {
		t.Error("expected ConfigError to wrap its cause")
	}
}
