package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"tradegate/internal/service"
)

// QuotesHandler ingests last-known market prices from the market-data
// collaborator and serves them back.
type QuotesHandler struct {
	board *service.QuoteBoard
}

// NewQuotesHandler creates a new QuotesHandler.
func NewQuotesHandler(board *service.QuoteBoard) *QuotesHandler {
	return &QuotesHandler{board: board}
}

// putQuoteRequest is the JSON request body for PUT /quotes/{symbol}.
type putQuoteRequest struct {
	Price float64 `json:"price"`
	AsOf  *string `json:"as_of"`
}

// quoteResponse is the JSON response for quote reads and writes.
type quoteResponse struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	AsOf   string  `json:"as_of"`
}

// Put handles PUT /quotes/{symbol}.
func (h *QuotesHandler) Put(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	var req putQuoteRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if req.Price <= 0 {
		WriteError(w, http.StatusBadRequest, "invalid_price", "price must be greater than 0")
		return
	}

	asOf := time.Now().UTC()
	if req.AsOf != nil {
		t, err := time.Parse(time.RFC3339, *req.AsOf)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "invalid_request", "as_of must be a valid RFC 3339 timestamp")
			return
		}
		asOf = t
	}

	h.board.Put(symbol, decimal.NewFromFloat(req.Price), asOf)
	WriteJSON(w, http.StatusOK, quoteResponse{
		Symbol: symbol,
		Price:  req.Price,
		AsOf:   asOf.Format(time.RFC3339Nano),
	})
}

// Get handles GET /quotes/{symbol}.
func (h *QuotesHandler) Get(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	q, ok := h.board.Get(symbol)
	if !ok {
		WriteError(w, http.StatusNotFound, "no_quote", "no known market price for "+symbol)
		return
	}
	WriteJSON(w, http.StatusOK, quoteResponse{
		Symbol: q.Symbol,
		Price:  q.Price.InexactFloat64(),
		AsOf:   q.AsOf.Format(time.RFC3339Nano),
	})
}
