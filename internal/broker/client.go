// Package broker owns the brokerage gateway boundary: a wire client for
// the gateway's JSON API and the Link connection-state machine built on
// top of it.
package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"tradegate/internal/domain"
)

// Client is an HTTP client for the brokerage gateway API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a gateway client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// connectionResponse is the gateway's answer to the connection
// lifecycle endpoints.
type connectionResponse struct {
	Connected bool   `json:"connected"`
	ClientID  string `json:"client_id"`
	Message   string `json:"message"`
}

// ConnectionInfo reports the gateway-side connection state.
type ConnectionInfo struct {
	Connected bool
	ClientID  string
}

// tradeRequest is the wire body for POST /trading/trade.
type tradeRequest struct {
	Symbol     string   `json:"symbol"`
	Action     string   `json:"action"`
	Quantity   float64  `json:"quantity"`
	OrderType  string   `json:"order_type"`
	LimitPrice *float64 `json:"limit_price"`
	Exchange   string   `json:"exchange"`
	Currency   string   `json:"currency"`
}

// tradeResponse is the wire response for POST /trading/trade.
type tradeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	OrderID string `json:"order_id"`
}

// Fill is the gateway's acknowledgment that an order executed.
type Fill struct {
	OrderID string
	Message string
}

// Connect asks the gateway to establish its brokerage session.
// A gateway that is already connected answers idempotently.
func (c *Client) Connect(ctx context.Context) (ConnectionInfo, error) {
	var resp connectionResponse
	if err := c.do(ctx, http.MethodPost, "/connect", nil, &resp, "connect"); err != nil {
		return ConnectionInfo{}, err
	}
	if !resp.Connected {
		return ConnectionInfo{}, &domain.ConnectionError{Op: "connect", Message: orMsg(resp.Message, "gateway refused connection")}
	}
	return ConnectionInfo{Connected: true, ClientID: resp.ClientID}, nil
}

// Disconnect asks the gateway to drop its brokerage session.
func (c *Client) Disconnect(ctx context.Context) error {
	var resp connectionResponse
	if err := c.do(ctx, http.MethodPost, "/disconnect", nil, &resp, "disconnect"); err != nil {
		return err
	}
	if resp.Connected {
		return &domain.ConnectionError{Op: "disconnect", Message: orMsg(resp.Message, "gateway still reports connected")}
	}
	return nil
}

// Status reads the gateway-side connection state without changing it.
func (c *Client) Status(ctx context.Context) (ConnectionInfo, error) {
	var resp connectionResponse
	if err := c.do(ctx, http.MethodGet, "/connection", nil, &resp, "status"); err != nil {
		return ConnectionInfo{}, err
	}
	return ConnectionInfo{Connected: resp.Connected, ClientID: resp.ClientID}, nil
}

// PlaceTrade submits an order and waits for the gateway's ack. A
// rejection comes back as a ConnectionError carrying the gateway's
// message; a transport failure as an UnreachableError.
func (c *Client) PlaceTrade(ctx context.Context, order domain.Order) (Fill, error) {
	req := tradeRequest{
		Symbol:    order.Symbol,
		Action:    string(order.Action),
		Quantity:  order.Quantity.InexactFloat64(),
		OrderType: string(order.Type),
		Exchange:  order.Exchange,
		Currency:  order.Currency,
	}
	if order.Type == domain.OrderTypeLimit {
		p := order.LimitPrice.InexactFloat64()
		req.LimitPrice = &p
	}

	var resp tradeResponse
	if err := c.do(ctx, http.MethodPost, "/trading/trade", req, &resp, "trade"); err != nil {
		return Fill{}, err
	}
	if !resp.Success {
		return Fill{}, &domain.ConnectionError{Op: "trade", Message: orMsg(resp.Message, "order rejected")}
	}
	return Fill{OrderID: resp.OrderID, Message: resp.Message}, nil
}

// do performs one round trip against the gateway. Transport-level
// failures map to UnreachableError, non-2xx answers to ConnectionError.
func (c *Client) do(ctx context.Context, method, path string, body, out any, op string) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.UnreachableError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.UnreachableError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := gatewayErrorMessage(data)
		if msg == "" {
			msg = fmt.Sprintf("gateway returned status %d", resp.StatusCode)
		}
		return &domain.ConnectionError{Op: op, Message: msg}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &domain.ConnectionError{Op: op, Message: "malformed gateway response: " + err.Error()}
	}
	return nil
}

// gatewayErrorMessage pulls a human-readable message out of a gateway
// error body, which uses either {"detail": ...} or {"message": ...}.
func gatewayErrorMessage(data []byte) string {
	var body struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Detail != "" {
		return body.Detail
	}
	return body.Message
}

func orMsg(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}
