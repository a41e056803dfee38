package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"tradegate/internal/broker"
	"tradegate/internal/domain"
	"tradegate/internal/ledger"
	"tradegate/internal/notify"
)

// TradeResult is the outcome of one order submission. Either the trade
// is fully reflected in the ledger and Success is true, or nothing
// changed locally and Err classifies the failure.
type TradeResult struct {
	Success     bool
	Message     string
	Transaction *domain.Transaction
	Err         error
}

// Executor drives a validated order through the broker link and, on
// ack, through the ledger. It performs no retries; resubmission is the
// caller's decision.
type Executor struct {
	link   *broker.Link
	ledger *ledger.Ledger
	prices ledger.PriceSource
	sink   notify.Sink
	logger *slog.Logger
}

// NewExecutor creates an Executor wired with the given dependencies.
func NewExecutor(
	link *broker.Link,
	ldg *ledger.Ledger,
	prices ledger.PriceSource,
	sink notify.Sink,
	logger *slog.Logger,
) *Executor {
	return &Executor{
		link:   link,
		ledger: ldg,
		prices: prices,
		sink:   sink,
		logger: logger,
	}
}

// Submit validates the order, places it with the broker, and applies
// the resulting transaction to the ledger. Validation failures reject
// before any network or ledger mutation. The one asymmetric outcome is
// a ledger conflict after a broker ack: the order is live at the broker
// while the ledger is unchanged, and the result says so explicitly.
func (e *Executor) Submit(ctx context.Context, order domain.Order) TradeResult {
	status := e.link.Status()

	// Connection is checked before touching the ledger at all, so a
	// disconnected submission costs zero ledger and network calls.
	var snap ledger.Snapshot
	if status.Connected {
		snap = e.ledger.Snapshot(e.prices)
	}
	if err := Validate(order, snap, status, e.prices); err != nil {
		return e.reject(order, err)
	}

	price, err := EffectivePrice(order, e.prices)
	if err != nil {
		return e.reject(order, err)
	}

	// Network round trip. The ledger lock is not held here.
	fill, err := e.link.PlaceTrade(ctx, order)
	if err != nil {
		e.logger.Warn("broker rejected order",
			slog.String("symbol", order.Symbol),
			slog.String("error", err.Error()),
		)
		return e.reject(order, err)
	}

	tx := domain.NewTransaction(ulid.Make().String(), order, price, fill.OrderID, time.Now().UTC())
	if err := e.ledger.ApplyTrade(tx); err != nil {
		var conflict *domain.LedgerConflictError
		if errors.As(err, &conflict) {
			// Broker-side success, local refusal. Money may be in
			// flight at the broker; surface it, never absorb it.
			e.logger.Error("ledger refused acknowledged trade",
				slog.String("transaction_id", tx.ID),
				slog.String("order_id", fill.OrderID),
				slog.String("error", err.Error()),
			)
			e.sink.TradeFailed(order, err)
			return TradeResult{
				Success: false,
				Message: fmt.Sprintf("order executed at broker (order %s) but was not applied locally: %s", fill.OrderID, conflict.Message),
				Err:     err,
			}
		}
		e.sink.TradeFailed(order, err)
		return TradeResult{Success: false, Message: err.Error(), Err: err}
	}

	e.sink.TradeSucceeded(tx)
	return TradeResult{
		Success:     true,
		Message:     fmt.Sprintf("Order to %s %s shares of %s placed successfully", order.Action, order.Quantity, order.Symbol),
		Transaction: &tx,
	}
}

func (e *Executor) reject(order domain.Order, err error) TradeResult {
	e.sink.TradeFailed(order, err)
	return TradeResult{Success: false, Message: err.Error(), Err: err}
}
