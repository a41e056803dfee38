package domain

import "errors"

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes.
var (
	ErrNotConnected       = errors.New("not_connected")
	ErrInvalidSymbol      = errors.New("invalid_symbol")
	ErrInvalidAction      = errors.New("invalid_action")
	ErrInvalidOrderType   = errors.New("invalid_order_type")
	ErrInvalidQuantity    = errors.New("invalid_quantity")
	ErrInvalidPrice       = errors.New("invalid_price")
	ErrInsufficientFunds  = errors.New("insufficient_funds")
	ErrInsufficientShares = errors.New("insufficient_shares")
	ErrNoQuote            = errors.New("no_quote")
	ErrSymbolNotWatched   = errors.New("symbol_not_watched")
)

// ValidationError represents a pre-submission order validation failure.
// Reason is the sentinel the failure classifies under.
type ValidationError struct {
	Reason  error
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap allows errors.Is checks against the validation sentinels.
func (e *ValidationError) Unwrap() error {
	return e.Reason
}

// ConnectionError means the brokerage gateway was reachable but rejected
// the operation.
type ConnectionError struct {
	Op      string // "connect", "disconnect", "trade", "status"
	Message string
}

func (e *ConnectionError) Error() string {
	return "broker " + e.Op + ": " + e.Message
}

// UnreachableError means the brokerage gateway could not be reached at
// all. Distinct from ConnectionError so callers can tell a rejection
// from a network failure.
type UnreachableError struct {
	Op  string
	Err error
}

func (e *UnreachableError) Error() string {
	return "broker " + e.Op + ": gateway unreachable: " + e.Err.Error()
}

func (e *UnreachableError) Unwrap() error {
	return e.Err
}

// LedgerConflictError means the apply-time re-validation inside the
// ledger failed: state drifted between order validation and application.
// When this follows a broker ack the order is live at the broker while
// the local ledger is unchanged, so it must never be silently dropped.
type LedgerConflictError struct {
	Reason  error
	Message string
}

func (e *LedgerConflictError) Error() string {
	return "ledger conflict: " + e.Message
}

func (e *LedgerConflictError) Unwrap() error {
	return e.Reason
}
