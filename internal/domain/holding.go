package domain

import "github.com/shopspring/decimal"

// Holding represents a position in a single stock symbol. AverageCost is
// the quantity-weighted mean purchase price of the held shares; it is
// recomputed on buys and left untouched on partial sells. A holding
// whose quantity reaches zero is removed from the ledger, never kept as
// a zero-row.
type Holding struct {
	Symbol      string          `json:"symbol"`
	Quantity    decimal.Decimal `json:"quantity"`
	AverageCost decimal.Decimal `json:"average_cost"`
}

// CostBasis returns quantity × average cost.
func (h Holding) CostBasis() decimal.Decimal {
	return h.Quantity.Mul(h.AverageCost)
}

// ValueAt returns quantity × price. The ledger derives current value
// lazily from the latest known market price rather than storing it.
func (h Holding) ValueAt(price decimal.Decimal) decimal.Decimal {
	return h.Quantity.Mul(price)
}
