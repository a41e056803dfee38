package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"tradegate/internal/domain"
	"tradegate/internal/service"
)

// TradingHandler exposes order submission to the UI.
type TradingHandler struct {
	executor *service.Executor
}

// NewTradingHandler creates a new TradingHandler.
func NewTradingHandler(executor *service.Executor) *TradingHandler {
	return &TradingHandler{executor: executor}
}

// placeTradeRequest is the JSON request body for POST /trading/trade.
// The shape mirrors the gateway's own trade payload so the UI speaks
// one dialect end to end.
type placeTradeRequest struct {
	Symbol     string   `json:"symbol"`
	Action     string   `json:"action"`
	Quantity   float64  `json:"quantity"`
	OrderType  string   `json:"order_type"`
	LimitPrice *float64 `json:"limit_price"`
}

// transactionView is a transaction in API responses.
type transactionView struct {
	ID        string  `json:"id"`
	Symbol    string  `json:"symbol"`
	Action    string  `json:"action"`
	Quantity  float64 `json:"quantity"`
	Price     float64 `json:"price"`
	Total     float64 `json:"total"`
	OrderID   string  `json:"order_id,omitempty"`
	Timestamp string  `json:"timestamp"`
}

func newTransactionView(tx domain.Transaction) transactionView {
	return transactionView{
		ID:        tx.ID,
		Symbol:    tx.Symbol,
		Action:    string(tx.Action),
		Quantity:  tx.Quantity.InexactFloat64(),
		Price:     tx.Price.InexactFloat64(),
		Total:     tx.Total.InexactFloat64(),
		OrderID:   tx.OrderID,
		Timestamp: tx.Timestamp.Format(time.RFC3339Nano),
	}
}

// placeTradeResponse is the JSON response for POST /trading/trade.
// Failures keep the same shape with success=false; no trade failure is
// reported as a transport-level error.
type placeTradeResponse struct {
	Success     bool             `json:"success"`
	Message     string           `json:"message"`
	Error       string           `json:"error,omitempty"`
	Transaction *transactionView `json:"transaction,omitempty"`
}

// PlaceTrade handles POST /trading/trade.
func (h *TradingHandler) PlaceTrade(w http.ResponseWriter, r *http.Request) {
	var req placeTradeRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	order := buildOrder(req)
	res := h.executor.Submit(r.Context(), order)
	if !res.Success {
		WriteJSON(w, http.StatusOK, placeTradeResponse{
			Success: false,
			Message: res.Message,
			Error:   errorCode(res.Err),
		})
		return
	}

	tv := newTransactionView(*res.Transaction)
	WriteJSON(w, http.StatusOK, placeTradeResponse{
		Success:     true,
		Message:     res.Message,
		Transaction: &tv,
	})
}

// buildOrder maps the wire request onto an order. Unknown action or
// order type strings pass through and fail validation with a typed
// error rather than being rejected at parse time.
func buildOrder(req placeTradeRequest) domain.Order {
	quantity := decimal.NewFromFloat(req.Quantity)
	action := domain.OrderAction(req.Action)

	if domain.OrderType(req.OrderType) == domain.OrderTypeLimit {
		limit := decimal.Zero
		if req.LimitPrice != nil {
			limit = decimal.NewFromFloat(*req.LimitPrice)
		}
		return domain.NewLimitOrder(req.Symbol, action, quantity, limit)
	}

	order := domain.NewMarketOrder(req.Symbol, action, quantity)
	order.Type = domain.OrderType(req.OrderType)
	return order
}
