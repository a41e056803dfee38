// Package notify is the boundary to the user-facing notification
// collaborator. The executor reports every trade outcome here; delivery
// must never block or fail a trade.
package notify

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"tradegate/internal/domain"
)

// Sink receives trade outcome events.
type Sink interface {
	TradeSucceeded(tx domain.Transaction)
	TradeFailed(order domain.Order, reason error)
}

// LogSink writes trade outcomes as structured log events.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink backed by the given logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) TradeSucceeded(tx domain.Transaction) {
	s.logger.Info("trade executed",
		slog.String("transaction_id", tx.ID),
		slog.String("symbol", tx.Symbol),
		slog.String("action", string(tx.Action)),
		slog.String("quantity", tx.Quantity.String()),
		slog.String("price", tx.Price.String()),
		slog.String("total", tx.Total.String()),
	)
}

func (s *LogSink) TradeFailed(order domain.Order, reason error) {
	s.logger.Warn("trade failed",
		slog.String("symbol", order.Symbol),
		slog.String("action", string(order.Action)),
		slog.String("quantity", order.Quantity.String()),
		slog.String("error", reason.Error()),
	)
}

// WebhookSink POSTs trade outcome events to a subscriber URL.
// Dispatch is fire-and-forget on a goroutine; a failed delivery is
// logged and dropped.
type WebhookSink struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// NewWebhookSink creates a webhook sink for the given URL.
func NewWebhookSink(url string, timeout time.Duration, logger *slog.Logger) *WebhookSink {
	return &WebhookSink{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// webhookEvent is the JSON body delivered to the subscriber.
type webhookEvent struct {
	Event       string              `json:"event"`
	Transaction *domain.Transaction `json:"transaction,omitempty"`
	Symbol      string              `json:"symbol,omitempty"`
	Action      string              `json:"action,omitempty"`
	Error       string              `json:"error,omitempty"`
	At          time.Time           `json:"at"`
}

func (s *WebhookSink) TradeSucceeded(tx domain.Transaction) {
	s.dispatch(webhookEvent{
		Event:       "trade.executed",
		Transaction: &tx,
		At:          time.Now().UTC(),
	})
}

func (s *WebhookSink) TradeFailed(order domain.Order, reason error) {
	s.dispatch(webhookEvent{
		Event:  "trade.failed",
		Symbol: order.Symbol,
		Action: string(order.Action),
		Error:  reason.Error(),
		At:     time.Now().UTC(),
	})
}

func (s *WebhookSink) dispatch(event webhookEvent) {
	go func() {
		body, err := json.Marshal(event)
		if err != nil {
			s.logger.Error("webhook encode failed", slog.String("error", err.Error()))
			return
		}
		resp, err := s.client.Post(s.url, "application/json", bytes.NewReader(body))
		if err != nil {
			s.logger.Warn("webhook delivery failed",
				slog.String("event", event.Event),
				slog.String("error", err.Error()),
			)
			return
		}
		resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			s.logger.Warn("webhook delivery rejected",
				slog.String("event", event.Event),
				slog.Int("status", resp.StatusCode),
			)
		}
	}()
}

// Fanout delivers each event to every sink in order.
type Fanout []Sink

func (f Fanout) TradeSucceeded(tx domain.Transaction) {
	for _, s := range f {
		s.TradeSucceeded(tx)
	}
}

func (f Fanout) TradeFailed(order domain.Order, reason error) {
	for _, s := range f {
		s.TradeFailed(order, reason)
	}
}
