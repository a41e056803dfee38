package broker

import (
	"context"
	"log/slog"
	"sync"

	"tradegate/internal/domain"
)

// Link owns the connection lifecycle to the brokerage gateway. All
// lifecycle calls are serialized: a Connect issued while another is in
// flight waits for it and then observes the established state instead
// of issuing a duplicate remote call. Local state is observable at any
// time through Status without blocking on an in-flight call.
type Link struct {
	client *Client
	logger *slog.Logger

	opMu sync.Mutex // serializes Connect/Disconnect/CheckStatus round trips

	mu        sync.RWMutex // guards the observable fields below
	state     domain.ConnectionState
	clientID  string
	lastError string
}

// NewLink creates a Link in the Disconnected state.
func NewLink(client *Client, logger *slog.Logger) *Link {
	return &Link{
		client: client,
		logger: logger,
		state:  domain.StateDisconnected,
	}
}

// Status returns the current local connection status without any remote
// round trip. Safe to call while a lifecycle operation is in flight.
func (l *Link) Status() domain.ConnectionStatus {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return domain.ConnectionStatus{
		State:     l.state,
		Connected: l.state == domain.StateConnected,
		ClientID:  l.clientID,
		LastError: l.lastError,
	}
}

// Connect establishes the gateway session. Calling while already
// Connected returns the current status without a remote round trip.
func (l *Link) Connect(ctx context.Context) (domain.ConnectionStatus, error) {
	l.opMu.Lock()
	defer l.opMu.Unlock()

	if st := l.Status(); st.Connected {
		return st, nil
	}

	l.setState(domain.StateConnecting)
	info, err := l.client.Connect(ctx)
	if err != nil {
		l.fail(domain.StateDisconnected, err)
		l.logger.Error("broker connect failed", slog.String("error", err.Error()))
		return l.Status(), err
	}

	l.established(info.ClientID)
	l.logger.Info("broker connected", slog.String("client_id", info.ClientID))
	return l.Status(), nil
}

// Disconnect drops the gateway session. The local state always
// converges to Disconnected, even when the remote answer is a rejection
// or the gateway is unreachable; safe-state convergence wins over
// optimism.
func (l *Link) Disconnect(ctx context.Context) (domain.ConnectionStatus, error) {
	l.opMu.Lock()
	defer l.opMu.Unlock()

	if st := l.Status(); st.State == domain.StateDisconnected {
		return st, nil
	}

	l.setState(domain.StateDisconnecting)
	err := l.client.Disconnect(ctx)
	if err != nil {
		l.fail(domain.StateDisconnected, err)
		l.clearClientID()
		l.logger.Warn("broker disconnect did not complete cleanly", slog.String("error", err.Error()))
		return l.Status(), err
	}

	l.mu.Lock()
	l.state = domain.StateDisconnected
	l.clientID = ""
	l.lastError = ""
	l.mu.Unlock()
	l.logger.Info("broker disconnected")
	return l.Status(), nil
}

// CheckStatus re-reads the remote connection state. It never transitions
// local state except for one reconciliation: a remote that reports
// already-connected while the local state is Disconnected flips the
// local state to Connected. An unreachable gateway leaves local state
// untouched (stale but safe) and surfaces the error.
func (l *Link) CheckStatus(ctx context.Context) (domain.ConnectionStatus, error) {
	l.opMu.Lock()
	defer l.opMu.Unlock()

	info, err := l.client.Status(ctx)
	if err != nil {
		l.recordError(err)
		return l.Status(), err
	}

	l.mu.Lock()
	if info.Connected && l.state == domain.StateDisconnected {
		l.state = domain.StateConnected
		l.clientID = info.ClientID
	}
	l.lastError = ""
	l.mu.Unlock()
	return l.Status(), nil
}

// PlaceTrade submits an order through the gateway. The connection state
// is re-checked immediately before submission. The round trip does not
// take the lifecycle lock, so trades never serialize behind a connect
// or disconnect in flight.
func (l *Link) PlaceTrade(ctx context.Context, order domain.Order) (Fill, error) {
	if st := l.Status(); !st.Connected {
		return Fill{}, &domain.ValidationError{
			Reason:  domain.ErrNotConnected,
			Message: "not connected to brokerage gateway",
		}
	}
	fill, err := l.client.PlaceTrade(ctx, order)
	if err != nil {
		l.recordError(err)
		return Fill{}, err
	}
	return fill, nil
}

func (l *Link) setState(s domain.ConnectionState) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

func (l *Link) established(clientID string) {
	l.mu.Lock()
	l.state = domain.StateConnected
	l.clientID = clientID
	l.lastError = ""
	l.mu.Unlock()
}

func (l *Link) fail(s domain.ConnectionState, err error) {
	l.mu.Lock()
	l.state = s
	l.lastError = err.Error()
	l.mu.Unlock()
}

func (l *Link) recordError(err error) {
	l.mu.Lock()
	l.lastError = err.Error()
	l.mu.Unlock()
}

func (l *Link) clearClientID() {
	l.mu.Lock()
	l.clientID = ""
	l.mu.Unlock()
}
