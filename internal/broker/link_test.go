package broker

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradegate/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestLink(url string) *Link {
	return NewLink(NewClient(url, 5*time.Second), discardLogger())
}

func TestLink_ConnectTransitionsToConnected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"connected": true, "client_id": "1"})
	}))
	defer server.Close()

	link := newTestLink(server.URL)
	st, err := link.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StateConnected, st.State)
	assert.True(t, st.Connected)
	assert.Equal(t, "1", st.ClientID)
	assert.Empty(t, st.LastError)
}

func TestLink_ConnectIsIdempotent(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		json.NewEncoder(w).Encode(map[string]any{"connected": true, "client_id": "1"})
	}))
	defer server.Close()

	link := newTestLink(server.URL)
	_, err := link.Connect(context.Background())
	require.NoError(t, err)
	_, err = link.Connect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(1), hits.Load(), "second Connect must not issue a remote call")
}

func TestLink_ConcurrentConnectIssuesOneRemoteCall(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		json.NewEncoder(w).Encode(map[string]any{"connected": true, "client_id": "1"})
	}))
	defer server.Close()

	link := newTestLink(server.URL)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st, err := link.Connect(context.Background())
			assert.NoError(t, err)
			assert.True(t, st.Connected)
		}()
	}

	// Let the first call reach the gateway, observe the transitional
	// state, then release it. The second call must wait on the first
	// and return the established state without its own round trip.
	require.Eventually(t, func() bool {
		return link.Status().State == domain.StateConnecting
	}, time.Second, 5*time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, domain.StateConnected, link.Status().State)
}

func TestLink_ConnectFailureRecordsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"connected": false, "message": "TWS not running"})
	}))
	defer server.Close()

	link := newTestLink(server.URL)
	st, err := link.Connect(context.Background())
	require.Error(t, err)
	assert.Equal(t, domain.StateDisconnected, st.State)
	assert.Contains(t, st.LastError, "TWS not running")
}

func TestLink_DisconnectConvergesEvenOnRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/connect":
			json.NewEncoder(w).Encode(map[string]any{"connected": true, "client_id": "1"})
		case "/disconnect":
			// Ambiguous answer: gateway claims it is still connected.
			json.NewEncoder(w).Encode(map[string]any{"connected": true})
		}
	}))
	defer server.Close()

	link := newTestLink(server.URL)
	_, err := link.Connect(context.Background())
	require.NoError(t, err)

	st, err := link.Disconnect(context.Background())
	require.Error(t, err)
	assert.Equal(t, domain.StateDisconnected, st.State, "local state must converge to Disconnected")
	assert.Empty(t, st.ClientID)
	assert.NotEmpty(t, st.LastError)
}

func TestLink_DisconnectWhenAlreadyDisconnected(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	link := newTestLink(server.URL)
	st, err := link.Disconnect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StateDisconnected, st.State)
	assert.Equal(t, int32(0), hits.Load())
}

func TestLink_CheckStatusReconcilesToConnected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"connected": true, "client_id": "9"})
	}))
	defer server.Close()

	link := newTestLink(server.URL)
	st, err := link.CheckStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StateConnected, st.State)
	assert.Equal(t, "9", st.ClientID)
}

func TestLink_CheckStatusUnreachableKeepsLocalState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/connect":
			json.NewEncoder(w).Encode(map[string]any{"connected": true, "client_id": "1"})
		default:
			panic("unexpected call")
		}
	}))

	link := newTestLink(server.URL)
	_, err := link.Connect(context.Background())
	require.NoError(t, err)
	server.Close() // gateway goes away

	st, err := link.CheckStatus(context.Background())
	var unreachable *domain.UnreachableError
	require.ErrorAs(t, err, &unreachable)
	assert.Equal(t, domain.StateConnected, st.State, "stale state survives an unreachable gateway")
	assert.NotEmpty(t, st.LastError)
}
