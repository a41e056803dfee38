package service

import (
	"testing"
	"time"
)

func TestQuoteBoard_PutAndGet(t *testing.T) {
	b := NewQuoteBoard()

	if _, ok := b.Price("AAPL"); ok {
		t.Error("empty board should have no price")
	}

	asOf := time.Date(2025, 6, 1, 15, 30, 0, 0, time.UTC)
	b.Put("AAPL", d("187.32"), asOf)

	p, ok := b.Price("AAPL")
	if !ok || !p.Equal(d("187.32")) {
		t.Errorf("got %s, %v; want 187.32", p, ok)
	}

	q, ok := b.Get("AAPL")
	if !ok || !q.AsOf.Equal(asOf) {
		t.Errorf("got quote %+v, want as_of %s", q, asOf)
	}

	// Later put replaces the quote.
	b.Put("AAPL", d("190"), asOf.Add(time.Minute))
	p, _ = b.Price("AAPL")
	if !p.Equal(d("190")) {
		t.Errorf("got %s after update, want 190", p)
	}
}
