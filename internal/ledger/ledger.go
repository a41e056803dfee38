// Package ledger holds the authoritative in-memory record of cash
// balance, share holdings, and transaction history. All mutation goes
// through ApplyTrade, which runs under a single lock per Ledger so a
// trade is either fully reflected or not at all.
package ledger

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"tradegate/internal/domain"
)

// PriceSource supplies the latest known market price for a symbol.
type PriceSource interface {
	Price(symbol string) (decimal.Decimal, bool)
}

// HoldingView is a holding plus its value at the latest known price.
// CurrentValue is derived on read, never stored.
type HoldingView struct {
	domain.Holding
	CurrentValue decimal.Decimal `json:"current_value"`
}

// Snapshot is a point-in-time copy of the ledger. Transactions are
// newest-first.
type Snapshot struct {
	Balance      decimal.Decimal      `json:"balance"`
	Holdings     []HoldingView        `json:"holdings"`
	Transactions []domain.Transaction `json:"transactions"`
}

// Holding returns the holding for symbol, if present in the snapshot.
func (s Snapshot) Holding(symbol string) (domain.Holding, bool) {
	for _, h := range s.Holdings {
		if h.Symbol == symbol {
			return h.Holding, true
		}
	}
	return domain.Holding{}, false
}

// Metrics summarizes portfolio performance. PercentReturn is zero when
// nothing has been invested.
type Metrics struct {
	TotalValue    decimal.Decimal `json:"total_value"`
	TotalReturn   decimal.Decimal `json:"total_return"`
	PercentReturn decimal.Decimal `json:"percent_return"`
}

// Ledger is the single-owner portfolio record for one session. Safe for
// concurrent use; at most one trade mutates it at a time.
type Ledger struct {
	mu           sync.Mutex
	balance      decimal.Decimal
	holdings     map[string]domain.Holding
	transactions []domain.Transaction // newest-first
}

// New creates a ledger with the given starting cash balance and no
// holdings.
func New(initialBalance decimal.Decimal) *Ledger {
	return &Ledger{
		balance:  initialBalance,
		holdings: make(map[string]domain.Holding),
	}
}

// Load restores a ledger from a previously taken snapshot.
func Load(s Snapshot) *Ledger {
	l := New(s.Balance)
	for _, h := range s.Holdings {
		l.holdings[h.Symbol] = h.Holding
	}
	l.transactions = append(l.transactions, s.Transactions...)
	return l
}

// ApplyTrade applies one executed trade atomically. Preconditions are
// re-checked under the lock, not just trusted from earlier validation:
// state may have drifted between validate and apply, and the ledger is
// the final arbiter. On any failure the ledger is left untouched and a
// LedgerConflictError is returned.
func (l *Ledger) ApplyTrade(tx domain.Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !tx.Quantity.IsPositive() {
		return &domain.LedgerConflictError{
			Reason:  domain.ErrInvalidQuantity,
			Message: fmt.Sprintf("quantity %s is not positive", tx.Quantity),
		}
	}
	if !tx.Price.IsPositive() {
		return &domain.LedgerConflictError{
			Reason:  domain.ErrInvalidPrice,
			Message: fmt.Sprintf("price %s is not positive", tx.Price),
		}
	}

	switch tx.Action {
	case domain.ActionBuy:
		if err := l.applyBuy(tx); err != nil {
			return err
		}
	case domain.ActionSell:
		if err := l.applySell(tx); err != nil {
			return err
		}
	default:
		return &domain.LedgerConflictError{
			Reason:  domain.ErrInvalidAction,
			Message: fmt.Sprintf("unknown action %q", tx.Action),
		}
	}

	// Newest-first, append-only.
	l.transactions = append([]domain.Transaction{tx}, l.transactions...)
	return nil
}

func (l *Ledger) applyBuy(tx domain.Transaction) error {
	if l.balance.LessThan(tx.Total) {
		return &domain.LedgerConflictError{
			Reason:  domain.ErrInsufficientFunds,
			Message: fmt.Sprintf("trade total %s exceeds balance %s", tx.Total, l.balance),
		}
	}

	l.balance = l.balance.Sub(tx.Total)

	h, ok := l.holdings[tx.Symbol]
	if !ok {
		l.holdings[tx.Symbol] = domain.Holding{
			Symbol:      tx.Symbol,
			Quantity:    tx.Quantity,
			AverageCost: tx.Price,
		}
		return nil
	}

	// Weighted-mean cost recomputation across the old position and the
	// new purchase.
	newQuantity := h.Quantity.Add(tx.Quantity)
	h.AverageCost = h.AverageCost.Mul(h.Quantity).Add(tx.Total).Div(newQuantity)
	h.Quantity = newQuantity
	l.holdings[tx.Symbol] = h
	return nil
}

func (l *Ledger) applySell(tx domain.Transaction) error {
	h, ok := l.holdings[tx.Symbol]
	if !ok {
		return &domain.LedgerConflictError{
			Reason:  domain.ErrInsufficientShares,
			Message: fmt.Sprintf("no holding for %s", tx.Symbol),
		}
	}
	if h.Quantity.LessThan(tx.Quantity) {
		return &domain.LedgerConflictError{
			Reason:  domain.ErrInsufficientShares,
			Message: fmt.Sprintf("only %s shares of %s held, cannot sell %s", h.Quantity, tx.Symbol, tx.Quantity),
		}
	}

	l.balance = l.balance.Add(tx.Total)

	h.Quantity = h.Quantity.Sub(tx.Quantity)
	if h.Quantity.IsZero() {
		// A fully disposed position is removed outright; its average
		// cost is discarded, not kept as a zero-row.
		delete(l.holdings, tx.Symbol)
		return nil
	}
	// Average cost of the remaining shares does not change on a
	// partial disposal.
	l.holdings[tx.Symbol] = h
	return nil
}

// Snapshot returns a deep copy of the ledger with each holding valued
// at the latest known price. A symbol with no quote yet is valued at
// its average cost. Holdings are sorted by symbol.
func (l *Ledger) Snapshot(prices PriceSource) Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	holdings := make([]HoldingView, 0, len(l.holdings))
	for _, h := range l.holdings {
		holdings = append(holdings, HoldingView{
			Holding:      h,
			CurrentValue: h.ValueAt(l.priceOrCost(prices, h)),
		})
	}
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Symbol < holdings[j].Symbol })

	transactions := make([]domain.Transaction, len(l.transactions))
	copy(transactions, l.transactions)

	return Snapshot{
		Balance:      l.balance,
		Holdings:     holdings,
		Transactions: transactions,
	}
}

// Metrics computes portfolio performance from current holdings and the
// transaction log. Pure read, no side effects.
func (l *Ledger) Metrics(prices PriceSource) Metrics {
	l.mu.Lock()
	defer l.mu.Unlock()

	totalValue := decimal.Zero
	for _, h := range l.holdings {
		totalValue = totalValue.Add(h.ValueAt(l.priceOrCost(prices, h)))
	}

	// Net cash invested: buys add, sells recoup.
	netInvested := decimal.Zero
	for _, tx := range l.transactions {
		if tx.Action == domain.ActionBuy {
			netInvested = netInvested.Add(tx.Total)
		} else {
			netInvested = netInvested.Sub(tx.Total)
		}
	}

	totalReturn := totalValue.Sub(netInvested)
	percentReturn := decimal.Zero
	if netInvested.IsPositive() {
		percentReturn = totalReturn.Div(netInvested).Mul(decimal.NewFromInt(100))
	}

	return Metrics{
		TotalValue:    totalValue,
		TotalReturn:   totalReturn,
		PercentReturn: percentReturn,
	}
}

func (l *Ledger) priceOrCost(prices PriceSource, h domain.Holding) decimal.Decimal {
	if prices != nil {
		if p, ok := prices.Price(h.Symbol); ok {
			return p
		}
	}
	return h.AverageCost
}
