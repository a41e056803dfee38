package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"

	"tradegate/internal/broker"
	"tradegate/internal/config"
	"tradegate/internal/handler"
	"tradegate/internal/ledger"
	"tradegate/internal/notify"
	"tradegate/internal/service"
	"tradegate/internal/store"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up slog logger with configured level.
	var logLevel slog.Level
	switch cfg.Logging.Level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Persistence.
	watchlistStore, err := store.NewWatchlistStore(cfg.Storage.SQLitePath)
	if err != nil {
		logger.Error("failed to open watchlist store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer watchlistStore.Close()

	// Broker connection.
	client := broker.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.Timeout.Std())
	link := broker.NewLink(client, logger)

	// Ledger and quotes.
	ldg := ledger.New(decimal.NewFromFloat(cfg.Ledger.InitialBalance))
	board := service.NewQuoteBoard()

	// Notification sinks.
	var sink notify.Sink = notify.NewLogSink(logger)
	if cfg.Notify.WebhookURL != "" {
		sink = notify.Fanout{
			notify.NewLogSink(logger),
			notify.NewWebhookSink(cfg.Notify.WebhookURL, cfg.Notify.Timeout.Std(), logger),
		}
	}

	// Services.
	executor := service.NewExecutor(link, ldg, board, sink, logger)
	watchlist, err := service.NewWatchlist(context.Background(), watchlistStore, cfg.Storage.WatchlistKey)
	if err != nil {
		logger.Error("failed to load watchlist", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Router.
	router := handler.NewRouter(link, executor, ldg, board, watchlist, logger)

	// Configure HTTP server.
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
		IdleTimeout:  cfg.Server.IdleTimeout.Std(),
	}

	// Start HTTP server in a goroutine.
	go func() {
		logger.Info("server starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	// Graceful shutdown: stop HTTP server, then release the broker session.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Std())
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	if link.Status().Connected {
		if _, err := link.Disconnect(shutdownCtx); err != nil {
			logger.Error("broker disconnect error", slog.String("error", err.Error()))
		}
	}

	logger.Info("server stopped")
}
