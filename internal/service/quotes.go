package service

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the latest known market price for a symbol.
type Quote struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
	AsOf   time.Time       `json:"as_of"`
}

// QuoteBoard is a thread-safe map of last-known market prices, fed by
// the market-data collaborator. Market orders are priced from it and
// holdings are valued against it; it holds whatever was pushed last,
// with no staleness policy of its own.
type QuoteBoard struct {
	mu     sync.RWMutex
	quotes map[string]Quote
}

// NewQuoteBoard creates an empty QuoteBoard.
func NewQuoteBoard() *QuoteBoard {
	return &QuoteBoard{
		quotes: make(map[string]Quote),
	}
}

// Put records the latest price for a symbol.
func (b *QuoteBoard) Put(symbol string, price decimal.Decimal, asOf time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.quotes[symbol] = Quote{Symbol: symbol, Price: price, AsOf: asOf}
}

// Price returns the last-known price for a symbol. Implements
// ledger.PriceSource.
func (b *QuoteBoard) Price(symbol string) (decimal.Decimal, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	q, ok := b.quotes[symbol]
	if !ok {
		return decimal.Zero, false
	}
	return q.Price, true
}

// Get returns the full quote for a symbol.
func (b *QuoteBoard) Get(symbol string) (Quote, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	q, ok := b.quotes[symbol]
	return q, ok
}
