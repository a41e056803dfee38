package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_UnwrapsToSentinel(t *testing.T) {
	err := &ValidationError{
		Reason:  ErrInsufficientFunds,
		Message: "order total 1500 exceeds balance 1000",
	}
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Error("expected errors.Is to match ErrInsufficientFunds")
	}
	if errors.Is(err, ErrInsufficientShares) {
		t.Error("did not expect errors.Is to match ErrInsufficientShares")
	}
	if err.Error() != "order total 1500 exceeds balance 1000" {
		t.Errorf("got message %q", err.Error())
	}
}

func TestLedgerConflictError_UnwrapsToSentinel(t *testing.T) {
	err := &LedgerConflictError{
		Reason:  ErrInsufficientShares,
		Message: "only 5 shares of AAPL held",
	}
	if !errors.Is(err, ErrInsufficientShares) {
		t.Error("expected errors.Is to match ErrInsufficientShares")
	}
	var lce *LedgerConflictError
	if !errors.As(fmt.Errorf("submit: %w", err), &lce) {
		t.Error("expected errors.As to find LedgerConflictError through wrapping")
	}
}

func TestUnreachableError_PreservesCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := &UnreachableError{Op: "connect", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to match the transport cause")
	}
}
