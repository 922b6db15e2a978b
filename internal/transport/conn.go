// internal/transport/conn.go

package transport

import (
	"context"
	"encoding/json"
)

// Handler receives the payload of one named event.
type Handler func(data json.RawMessage)

// State describes the lifecycle of a connection.
type State int

const (
	StateConnecting State = iota
	StateConnected
	StateReconnecting
	// StateClosed is terminal: either Close was called or the
	// reconnection schedule was exhausted.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Conn is a named-event channel over a persistent bidirectional socket.
// One Conn is shared per session; callers inject it rather than reaching
// for a package-level singleton so tests can substitute a fake.
type Conn interface {
	// Emit sends one named event. While the connection is down the
	// event is dropped, not buffered.
	Emit(event string, payload interface{}) error

	// EmitWithAck sends one named event and waits for the peer's
	// acknowledgment payload.
	EmitWithAck(ctx context.Context, event string, payload interface{}) (json.RawMessage, error)

	// On subscribes a handler to an event and returns a subscription id.
	On(event string, h Handler) int

	// Off removes the subscription with the given id.
	Off(event string, id int)

	// NotifyState registers a callback invoked on every state change.
	NotifyState(fn func(State))

	// State reports the current connection state.
	State() State

	// Close tears the connection down for good.
	Close() error
}

// envelope is the wire framing: one JSON object per socket frame carrying
// the event name, its payload, and an optional ack correlation id.
type envelope struct {
	Event string          `json:"event,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
	Ack   int64           `json:"ack,omitempty"`
}
