// Package store provides SQLite-backed persistence for state that
// should survive a restart. The ledger itself is deliberately not in
// here; it lives for one process only.
package store

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

const watchlistSchema = `
CREATE TABLE IF NOT EXISTS watchlist (
	list_key TEXT NOT NULL,
	symbol   TEXT NOT NULL,
	added_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (list_key, symbol)
);`

// WatchlistStore persists watchlist symbols keyed by a list key, the
// moral equivalent of a browser local-storage entry.
type WatchlistStore struct {
	db *sql.DB
}

// NewWatchlistStore opens (or creates) the SQLite database at dbPath
// and ensures the watchlist table exists.
func NewWatchlistStore(dbPath string) (*WatchlistStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(watchlistSchema); err != nil {
		db.Close()
		return nil, err
	}
	return &WatchlistStore{db: db}, nil
}

// Load returns all symbols stored under the given list key, in
// ascending symbol order.
func (s *WatchlistStore) Load(ctx context.Context, listKey string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT symbol FROM watchlist WHERE list_key = ? ORDER BY symbol`, listKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, err
		}
		symbols = append(symbols, sym)
	}
	return symbols, rows.Err()
}

// Add stores a symbol under the list key. Adding an already stored
// symbol is a no-op.
func (s *WatchlistStore) Add(ctx context.Context, listKey, symbol string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO watchlist (list_key, symbol) VALUES (?, ?)`, listKey, symbol)
	return err
}

// Remove deletes a symbol from the list key.
func (s *WatchlistStore) Remove(ctx context.Context, listKey, symbol string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM watchlist WHERE list_key = ? AND symbol = ?`, listKey, symbol)
	return err
}

// Close closes the underlying database.
func (s *WatchlistStore) Close() error {
	return s.db.Close()
}
