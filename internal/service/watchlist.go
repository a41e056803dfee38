package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/btree"

	"tradegate/internal/domain"
	"tradegate/internal/store"
)

// Watchlist is an ordered set of watched symbols, kept in a B-tree for
// ordered iteration and written through to the store on every change.
type Watchlist struct {
	listKey string
	store   *store.WatchlistStore

	mu  sync.RWMutex
	set *btree.BTreeG[string]
}

// NewWatchlist creates a watchlist for the given list key, preloaded
// from the store.
func NewWatchlist(ctx context.Context, st *store.WatchlistStore, listKey string) (*Watchlist, error) {
	const degree = 8
	w := &Watchlist{
		listKey: listKey,
		store:   st,
		set:     btree.NewG[string](degree, func(a, b string) bool { return a < b }),
	}

	symbols, err := st.Load(ctx, listKey)
	if err != nil {
		return nil, fmt.Errorf("load watchlist %q: %w", listKey, err)
	}
	for _, sym := range symbols {
		w.set.ReplaceOrInsert(sym)
	}
	return w, nil
}

// Symbols returns the watched symbols in ascending order.
func (w *Watchlist) Symbols() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	symbols := make([]string, 0, w.set.Len())
	w.set.Ascend(func(sym string) bool {
		symbols = append(symbols, sym)
		return true
	})
	return symbols
}

// Contains reports whether the symbol is watched.
func (w *Watchlist) Contains(symbol string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.set.Has(symbol)
}

// Add watches a symbol. Idempotent: re-adding a watched symbol is a
// no-op. The symbol must be well-formed.
func (w *Watchlist) Add(ctx context.Context, symbol string) error {
	if !orderSymbolRegex.MatchString(symbol) {
		return &domain.ValidationError{
			Reason:  domain.ErrInvalidSymbol,
			Message: fmt.Sprintf("symbol %q must match %s", symbol, orderSymbolRegex),
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.store.Add(ctx, w.listKey, symbol); err != nil {
		return fmt.Errorf("persist watchlist add: %w", err)
	}
	w.set.ReplaceOrInsert(symbol)
	return nil
}

// Remove stops watching a symbol. Returns ErrSymbolNotWatched when the
// symbol is not on the list.
func (w *Watchlist) Remove(ctx context.Context, symbol string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.set.Has(symbol) {
		return domain.ErrSymbolNotWatched
	}
	if err := w.store.Remove(ctx, w.listKey, symbol); err != nil {
		return fmt.Errorf("persist watchlist remove: %w", err)
	}
	w.set.Delete(symbol)
	return nil
}
