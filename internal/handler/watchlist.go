package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tradegate/internal/domain"
	"tradegate/internal/service"
)

// WatchlistHandler exposes the persisted symbol watchlist.
type WatchlistHandler struct {
	watchlist *service.Watchlist
}

// NewWatchlistHandler creates a new WatchlistHandler.
func NewWatchlistHandler(watchlist *service.Watchlist) *WatchlistHandler {
	return &WatchlistHandler{watchlist: watchlist}
}

// watchlistResponse is the JSON response for all watchlist endpoints.
type watchlistResponse struct {
	Symbols []string `json:"symbols"`
}

// addSymbolRequest is the JSON request body for POST /watchlist.
type addSymbolRequest struct {
	Symbol string `json:"symbol"`
}

// List handles GET /watchlist.
func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, watchlistResponse{Symbols: h.watchlist.Symbols()})
}

// Add handles POST /watchlist.
func (h *WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addSymbolRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if err := h.watchlist.Add(r.Context(), req.Symbol); err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			WriteError(w, http.StatusBadRequest, errorCode(err), err.Error())
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	WriteJSON(w, http.StatusCreated, watchlistResponse{Symbols: h.watchlist.Symbols()})
}

// Remove handles DELETE /watchlist/{symbol}.
func (h *WatchlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	if err := h.watchlist.Remove(r.Context(), symbol); err != nil {
		if errors.Is(err, domain.ErrSymbolNotWatched) {
			WriteError(w, http.StatusNotFound, errorCode(err), "symbol is not on the watchlist: "+symbol)
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, watchlistResponse{Symbols: h.watchlist.Symbols()})
}
