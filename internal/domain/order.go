package domain

import "github.com/shopspring/decimal"

// OrderAction indicates whether an order buys or sells shares.
type OrderAction string

const (
	ActionBuy  OrderAction = "BUY"
	ActionSell OrderAction = "SELL"
)

// OrderType distinguishes market orders from limit orders. The wire
// values match the brokerage gateway ("MKT"/"LMT").
type OrderType string

const (
	OrderTypeMarket OrderType = "MKT"
	OrderTypeLimit  OrderType = "LMT"
)

// Order is a transient trade instruction. It is constructed per request
// and never stored; a successful submission produces a Transaction.
// LimitPrice is meaningful only when Type is OrderTypeLimit; the
// constructors keep the pairing honest.
type Order struct {
	Symbol     string
	Action     OrderAction
	Quantity   decimal.Decimal
	Type       OrderType
	LimitPrice decimal.Decimal // zero for market orders
	Exchange   string
	Currency   string
}

// NewMarketOrder builds a market order routed to the default exchange.
func NewMarketOrder(symbol string, action OrderAction, quantity decimal.Decimal) Order {
	return Order{
		Symbol:   symbol,
		Action:   action,
		Quantity: quantity,
		Type:     OrderTypeMarket,
		Exchange: DefaultExchange,
		Currency: DefaultCurrency,
	}
}

// NewLimitOrder builds a limit order at the given price.
func NewLimitOrder(symbol string, action OrderAction, quantity, limitPrice decimal.Decimal) Order {
	o := NewMarketOrder(symbol, action, quantity)
	o.Type = OrderTypeLimit
	o.LimitPrice = limitPrice
	return o
}

// Routing defaults, matching what the gateway expects when the caller
// does not specify them.
const (
	DefaultExchange = "SMART"
	DefaultCurrency = "USD"
)

// ValidAction reports whether a is a known order action.
func ValidAction(a OrderAction) bool {
	return a == ActionBuy || a == ActionSell
}

// ValidOrderType reports whether t is a known order type.
func ValidOrderType(t OrderType) bool {
	return t == OrderTypeMarket || t == OrderTypeLimit
}
