package handler

import (
	"net/http"

	"tradegate/internal/ledger"
)

// PortfolioHandler exposes read-only views of the ledger.
type PortfolioHandler struct {
	ledger *ledger.Ledger
	prices ledger.PriceSource
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(ldg *ledger.Ledger, prices ledger.PriceSource) *PortfolioHandler {
	return &PortfolioHandler{ledger: ldg, prices: prices}
}

// holdingView is a holding in API responses.
type holdingView struct {
	Symbol       string  `json:"symbol"`
	Quantity     float64 `json:"quantity"`
	AverageCost  float64 `json:"average_cost"`
	CurrentValue float64 `json:"current_value"`
}

// snapshotResponse is the JSON response for GET /portfolio.
type snapshotResponse struct {
	Balance      float64           `json:"balance"`
	Holdings     []holdingView     `json:"holdings"`
	Transactions []transactionView `json:"transactions"`
}

// metricsResponse is the JSON response for GET /portfolio/metrics.
type metricsResponse struct {
	TotalValue    float64 `json:"total_value"`
	TotalReturn   float64 `json:"total_return"`
	PercentReturn float64 `json:"percent_return"`
}

// GetPortfolio handles GET /portfolio.
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	s := h.ledger.Snapshot(h.prices)

	holdings := make([]holdingView, 0, len(s.Holdings))
	for _, hv := range s.Holdings {
		holdings = append(holdings, holdingView{
			Symbol:       hv.Symbol,
			Quantity:     hv.Quantity.InexactFloat64(),
			AverageCost:  hv.AverageCost.InexactFloat64(),
			CurrentValue: hv.CurrentValue.InexactFloat64(),
		})
	}

	transactions := make([]transactionView, 0, len(s.Transactions))
	for _, tx := range s.Transactions {
		transactions = append(transactions, newTransactionView(tx))
	}

	WriteJSON(w, http.StatusOK, snapshotResponse{
		Balance:      s.Balance.InexactFloat64(),
		Holdings:     holdings,
		Transactions: transactions,
	})
}

// GetMetrics handles GET /portfolio/metrics.
func (h *PortfolioHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	m := h.ledger.Metrics(h.prices)
	WriteJSON(w, http.StatusOK, metricsResponse{
		TotalValue:    m.TotalValue.InexactFloat64(),
		TotalReturn:   m.TotalReturn.InexactFloat64(),
		PercentReturn: m.PercentReturn.InexactFloat64(),
	})
}
