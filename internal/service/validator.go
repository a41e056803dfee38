// Package service wires order validation, trade execution, quotes, and
// the watchlist on top of the broker link and the ledger.
package service

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"

	"tradegate/internal/domain"
	"tradegate/internal/ledger"
)

var orderSymbolRegex = regexp.MustCompile(`^[A-Z][A-Z0-9.]{0,9}$`)

// EffectivePrice resolves the price an order would execute around: the
// limit price for limit orders, the last-known market price otherwise.
// A market order in a symbol with no known quote cannot be priced.
func EffectivePrice(order domain.Order, prices ledger.PriceSource) (decimal.Decimal, error) {
	if order.Type == domain.OrderTypeLimit {
		return order.LimitPrice, nil
	}
	p, ok := prices.Price(order.Symbol)
	if !ok {
		return decimal.Zero, &domain.ValidationError{
			Reason:  domain.ErrNoQuote,
			Message: fmt.Sprintf("no known market price for %s", order.Symbol),
		}
	}
	return p, nil
}

// Validate checks an order against the ledger snapshot and connection
// state before any network or ledger mutation. Pure: repeated calls
// with unchanged inputs give the same result. Checks run in a fixed
// order and the first failure wins.
func Validate(order domain.Order, snap ledger.Snapshot, status domain.ConnectionStatus, prices ledger.PriceSource) error {
	if !status.Connected {
		return &domain.ValidationError{
			Reason:  domain.ErrNotConnected,
			Message: "not connected to brokerage gateway",
		}
	}

	if !orderSymbolRegex.MatchString(order.Symbol) {
		return &domain.ValidationError{
			Reason:  domain.ErrInvalidSymbol,
			Message: fmt.Sprintf("symbol %q must match %s", order.Symbol, orderSymbolRegex),
		}
	}
	if !domain.ValidAction(order.Action) {
		return &domain.ValidationError{
			Reason:  domain.ErrInvalidAction,
			Message: fmt.Sprintf("action must be BUY or SELL, got %q", order.Action),
		}
	}
	if !domain.ValidOrderType(order.Type) {
		return &domain.ValidationError{
			Reason:  domain.ErrInvalidOrderType,
			Message: fmt.Sprintf("order type must be MKT or LMT, got %q", order.Type),
		}
	}

	if !order.Quantity.IsPositive() {
		return &domain.ValidationError{
			Reason:  domain.ErrInvalidQuantity,
			Message: fmt.Sprintf("quantity must be greater than 0, got %s", order.Quantity),
		}
	}
	if order.Type == domain.OrderTypeLimit && !order.LimitPrice.IsPositive() {
		return &domain.ValidationError{
			Reason:  domain.ErrInvalidPrice,
			Message: fmt.Sprintf("limit price must be greater than 0, got %s", order.LimitPrice),
		}
	}

	price, err := EffectivePrice(order, prices)
	if err != nil {
		return err
	}

	switch order.Action {
	case domain.ActionBuy:
		total := order.Quantity.Mul(price)
		if total.GreaterThan(snap.Balance) {
			return &domain.ValidationError{
				Reason:  domain.ErrInsufficientFunds,
				Message: fmt.Sprintf("order total %s exceeds balance %s", total, snap.Balance),
			}
		}
	case domain.ActionSell:
		h, ok := snap.Holding(order.Symbol)
		if !ok {
			return &domain.ValidationError{
				Reason:  domain.ErrInsufficientShares,
				Message: fmt.Sprintf("no shares of %s held", order.Symbol),
			}
		}
		if h.Quantity.LessThan(order.Quantity) {
			return &domain.ValidationError{
				Reason:  domain.ErrInsufficientShares,
				Message: fmt.Sprintf("only %s shares of %s held, cannot sell %s", h.Quantity, order.Symbol, order.Quantity),
			}
		}
	}

	return nil
}
