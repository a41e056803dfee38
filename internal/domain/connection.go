package domain

// ConnectionState is the lifecycle state of the brokerage link.
type ConnectionState string

const (
	StateDisconnected  ConnectionState = "disconnected"
	StateConnecting    ConnectionState = "connecting"
	StateConnected     ConnectionState = "connected"
	StateDisconnecting ConnectionState = "disconnecting"
)

// ConnectionStatus is the observable status of the brokerage link.
// LastError holds the message of the most recent failed lifecycle call,
// or "" when the last call succeeded.
type ConnectionStatus struct {
	State     ConnectionState `json:"state"`
	Connected bool            `json:"connected"`
	ClientID  string          `json:"client_id,omitempty"`
	LastError string          `json:"last_error,omitempty"`
}
