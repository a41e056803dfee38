package handler

import (
	"errors"
	"net/http"

	"tradegate/internal/broker"
	"tradegate/internal/domain"
)

// ConnectionHandler exposes the broker link lifecycle to the UI.
type ConnectionHandler struct {
	link *broker.Link
}

// NewConnectionHandler creates a new ConnectionHandler.
func NewConnectionHandler(link *broker.Link) *ConnectionHandler {
	return &ConnectionHandler{link: link}
}

// connectionResponse is the JSON shape for all connection endpoints.
type connectionResponse struct {
	Connected bool   `json:"connected"`
	State     string `json:"state"`
	ClientID  string `json:"client_id,omitempty"`
	LastError string `json:"last_error,omitempty"`
	Message   string `json:"message,omitempty"`
}

func statusResponse(st domain.ConnectionStatus, message string) connectionResponse {
	return connectionResponse{
		Connected: st.Connected,
		State:     string(st.State),
		ClientID:  st.ClientID,
		LastError: st.LastError,
		Message:   message,
	}
}

// Connect handles POST /connect.
func (h *ConnectionHandler) Connect(w http.ResponseWriter, r *http.Request) {
	st, err := h.link.Connect(r.Context())
	if err != nil {
		status := http.StatusBadGateway
		var unreachable *domain.UnreachableError
		if !errors.As(err, &unreachable) {
			status = http.StatusServiceUnavailable
		}
		WriteError(w, status, errorCode(err), err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, statusResponse(st, "Connected to brokerage gateway"))
}

// Disconnect handles POST /disconnect. The local state converges to
// disconnected even when the remote leg fails, so the error response
// still reflects a disconnected link.
func (h *ConnectionHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	st, err := h.link.Disconnect(r.Context())
	if err != nil {
		WriteError(w, http.StatusBadGateway, errorCode(err), err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, statusResponse(st, "Disconnected from brokerage gateway"))
}

// GetConnection handles GET /connection. It asks the gateway for its
// view first; if the gateway cannot be reached the local state is
// served stale, with last_error saying why.
func (h *ConnectionHandler) GetConnection(w http.ResponseWriter, r *http.Request) {
	st, err := h.link.CheckStatus(r.Context())
	if err != nil {
		WriteJSON(w, http.StatusOK, statusResponse(st, "gateway status check failed, reporting last known state"))
		return
	}
	WriteJSON(w, http.StatusOK, statusResponse(st, ""))
}
