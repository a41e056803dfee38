package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one executed trade as recorded in the ledger. Immutable
// once created; the ledger keeps them in an append-only, newest-first log.
type Transaction struct {
	ID        string          `json:"id"`
	Symbol    string          `json:"symbol"`
	Action    OrderAction     `json:"action"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Total     decimal.Decimal `json:"total"`
	OrderID   string          `json:"order_id,omitempty"` // broker-assigned, may be empty
	Timestamp time.Time       `json:"timestamp"`
}

// NewTransaction builds a transaction for an executed order. Total is
// quantity × price.
func NewTransaction(id string, order Order, price decimal.Decimal, orderID string, at time.Time) Transaction {
	return Transaction{
		ID:        id,
		Symbol:    order.Symbol,
		Action:    order.Action,
		Quantity:  order.Quantity,
		Price:     price,
		Total:     order.Quantity.Mul(price),
		OrderID:   orderID,
		Timestamp: at,
	}
}
