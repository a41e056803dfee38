// Package handler is the HTTP surface exposed to the UI collaborator.
package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"tradegate/internal/broker"
	"tradegate/internal/ledger"
	"tradegate/internal/service"
)

// NewRouter creates a chi router with all routes registered, request
// logging, and Content-Type validation middleware.
func NewRouter(
	link *broker.Link,
	executor *service.Executor,
	ldg *ledger.Ledger,
	board *service.QuoteBoard,
	watchlist *service.Watchlist,
	logger *slog.Logger,
) chi.Router {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(requestLogging(logger))
	r.Use(contentTypeJSON)

	// Create handlers.
	connectionH := NewConnectionHandler(link)
	tradingH := NewTradingHandler(executor)
	portfolioH := NewPortfolioHandler(ldg, board)
	watchlistH := NewWatchlistHandler(watchlist)
	quotesH := NewQuotesHandler(board)

	// Health check.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Broker connection lifecycle.
	r.Post("/connect", connectionH.Connect)
	r.Post("/disconnect", connectionH.Disconnect)
	r.Get("/connection", connectionH.GetConnection)

	// Trading.
	r.Post("/trading/trade", tradingH.PlaceTrade)

	// Portfolio.
	r.Get("/portfolio", portfolioH.GetPortfolio)
	r.Get("/portfolio/metrics", portfolioH.GetMetrics)

	// Watchlist.
	r.Get("/watchlist", watchlistH.List)
	r.Post("/watchlist", watchlistH.Add)
	r.Delete("/watchlist/{symbol}", watchlistH.Remove)

	// Market quotes (fed by the market-data collaborator).
	r.Put("/quotes/{symbol}", quotesH.Put)
	r.Get("/quotes/{symbol}", quotesH.Get)

	return r
}

// requestLogging returns middleware that tags each request with an id
// and logs method, path, status code, and duration using slog.
func requestLogging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := uuid.New().String()
			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request",
				slog.String("request_id", requestID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

// contentTypeJSON is middleware that validates Content-Type for POST,
// PUT, and PATCH requests. If the Content-Type header doesn't start
// with "application/json", it returns 400 Bad Request before the
// handler runs. POST endpoints without a body (the connection
// lifecycle) are exempt.
func contentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requiresJSONBody(r) {
			ct := r.Header.Get("Content-Type")
			if ct == "" || !strings.HasPrefix(ct, "application/json") {
				WriteError(w, http.StatusBadRequest, "invalid_request",
					"Content-Type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func requiresJSONBody(r *http.Request) bool {
	if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
		return false
	}
	// The connection lifecycle posts carry no body.
	return r.URL.Path != "/connect" && r.URL.Path != "/disconnect"
}
