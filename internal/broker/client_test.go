package broker

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradegate/internal/domain"
)

func newTestClient(url string) *Client {
	return NewClient(url, 5*time.Second)
}

func TestConnect_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/connect", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"connected": true, "client_id": "7"})
	}))
	defer server.Close()

	info, err := newTestClient(server.URL).Connect(context.Background())
	require.NoError(t, err)
	assert.True(t, info.Connected)
	assert.Equal(t, "7", info.ClientID)
}

func TestConnect_GatewayRefuses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"connected": false, "message": "TWS not running"})
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Connect(context.Background())
	var connErr *domain.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "connect", connErr.Op)
	assert.Contains(t, connErr.Message, "TWS not running")
}

func TestConnect_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening anymore

	_, err := newTestClient(server.URL).Connect(context.Background())
	var unreachable *domain.UnreachableError
	require.ErrorAs(t, err, &unreachable)
	assert.Equal(t, "connect", unreachable.Op)
}

func TestConnect_ErrorStatusCarriesDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{"detail": "Error connecting to Interactive Brokers"})
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Connect(context.Background())
	var connErr *domain.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Contains(t, connErr.Message, "Error connecting to Interactive Brokers")
}

func TestDisconnect_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/disconnect", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"connected": false})
	}))
	defer server.Close()

	require.NoError(t, newTestClient(server.URL).Disconnect(context.Background()))
}

func TestStatus_ReportsRemoteState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/connection", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"connected": true, "client_id": "3"})
	}))
	defer server.Close()

	info, err := newTestClient(server.URL).Status(context.Background())
	require.NoError(t, err)
	assert.True(t, info.Connected)
	assert.Equal(t, "3", info.ClientID)
}

func TestPlaceTrade_MarketOrder(t *testing.T) {
	var got tradeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/trading/trade", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "filled", "order_id": "42"})
	}))
	defer server.Close()

	order := domain.NewMarketOrder("AAPL", domain.ActionBuy, decimal.NewFromInt(10))
	fill, err := newTestClient(server.URL).PlaceTrade(context.Background(), order)
	require.NoError(t, err)
	assert.Equal(t, "42", fill.OrderID)

	assert.Equal(t, "AAPL", got.Symbol)
	assert.Equal(t, "BUY", got.Action)
	assert.Equal(t, 10.0, got.Quantity)
	assert.Equal(t, "MKT", got.OrderType)
	assert.Nil(t, got.LimitPrice)
	assert.Equal(t, "SMART", got.Exchange)
	assert.Equal(t, "USD", got.Currency)
}

func TestPlaceTrade_LimitOrderCarriesPrice(t *testing.T) {
	var got tradeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]any{"success": true, "order_id": "43"})
	}))
	defer server.Close()

	order := domain.NewLimitOrder("MSFT", domain.ActionSell, decimal.NewFromInt(5), decimal.RequireFromString("101.25"))
	_, err := newTestClient(server.URL).PlaceTrade(context.Background(), order)
	require.NoError(t, err)

	assert.Equal(t, "LMT", got.OrderType)
	require.NotNil(t, got.LimitPrice)
	assert.Equal(t, 101.25, *got.LimitPrice)
}

func TestPlaceTrade_Rejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "margin requirement not met"})
	}))
	defer server.Close()

	order := domain.NewMarketOrder("AAPL", domain.ActionBuy, decimal.NewFromInt(10))
	_, err := newTestClient(server.URL).PlaceTrade(context.Background(), order)
	var connErr *domain.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "trade", connErr.Op)
	assert.Contains(t, connErr.Message, "margin requirement")
}

func TestPlaceTrade_ContextTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	order := domain.NewMarketOrder("AAPL", domain.ActionBuy, decimal.NewFromInt(1))
	_, err := newTestClient(server.URL).PlaceTrade(ctx, order)
	var unreachable *domain.UnreachableError
	require.ErrorAs(t, err, &unreachable)
	assert.True(t, errors.Is(err, context.DeadlineExceeded) || unreachable.Err != nil)
}
