package ws

import (
	"context"
	"errors"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/rickgao/paradex-data/paradex"
)

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (no ping)")
	ErrTimeout         = errors.New("operation timeout")
	ErrAlreadyClosed   = errors.New("already closed")

	// ErrManagerStopped is returned by operations on a stopped manager.
	ErrManagerStopped = errors.New("subscription manager stopped")

	// ErrSubscriptionRejected marks a subscribe the venue refused.
	ErrSubscriptionRejected = errors.New("subscription rejected")

	// ErrProtocol marks frames that violate the wire protocol.
	ErrProtocol = errors.New("protocol violation")

	// ErrAuthRequired marks private-channel subscribes on a manager
	// with no token source.
	ErrAuthRequired = errors.New("authentication required for private channel")
)

// TimestampedMessage wraps raw frame bytes with a receive timestamp.
type TimestampedMessage struct {
	Data       []byte
	ReceivedAt time.Time
}

// request is a JSON-RPC 2.0 request frame.
type request struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  requestParams `json:"params,omitempty"`
	ID      uint64        `json:"id"`
}

type requestParams struct {
	Channel string `json:"channel,omitempty"`
	Bearer  string `json:"bearer,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type notificationParams struct {
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
}

// frame is the union read shape used to classify incoming messages:
// a non-nil ID or Result/Error means response, a method means
// notification.
type frame struct {
	JSONRPC string             `json:"jsonrpc"`
	Method  string             `json:"method"`
	Params  notificationParams `json:"params"`
	Result  json.RawMessage    `json:"result"`
	Error   *rpcError          `json:"error"`
	ID      *uint64            `json:"id"`
}

// EventType classifies events delivered to subscription handlers.
type EventType int

const (
	// EventData carries a decoded channel payload.
	EventData EventType = iota

	// EventSubscribed reports venue confirmation of the subscription.
	EventSubscribed

	// EventUnsubscribed reports that the subscription ended, either by
	// request or because the manager stopped.
	EventUnsubscribed

	// EventDisconnected reports that the connection dropped; the
	// subscription stays registered and is replayed on reconnect.
	EventDisconnected

	// EventResubscribed reports replay of the subscription after a
	// reconnect.
	EventResubscribed

	// EventError reports a terminal failure of the subscription, for
	// example a venue rejection. Err is set.
	EventError
)

func (t EventType) String() string {
	switch t {
	case EventData:
		return "data"
	case EventSubscribed:
		return "subscribed"
	case EventUnsubscribed:
		return "unsubscribed"
	case EventDisconnected:
		return "disconnected"
	case EventResubscribed:
		return "resubscribed"
	case EventError:
		return "error"
	}
	return "unknown"
}

// Event is delivered to a subscription's handler. For EventData,
// Payload holds the decoded payload type for the channel (for example
// *paradex.BBO) and Raw the undecoded bytes.
type Event struct {
	Type       EventType
	Channel    paradex.Channel
	Payload    any
	Raw        []byte
	Err        error
	ReceivedAt time.Time
}

// Handler consumes events for one subscription. Handlers run on a
// per-subscription dispatch goroutine: a slow handler delays only its
// own channel and, past the queue bound, loses its own oldest events.
type Handler interface {
	HandleEvent(Event)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(Event)

func (f HandlerFunc) HandleEvent(ev Event) { f(ev) }

// Handle identifies one subscription for later unsubscribe or wait.
type Handle struct {
	id uuid.UUID
}

func (h Handle) String() string { return h.id.String() }

func newHandle() Handle { return Handle{id: uuid.New()} }

// TokenSource supplies bearer tokens for private-channel auth. The
// manager calls it after each (re)connect, so implementations should
// refresh expired tokens themselves.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// ConnectionState is the supervisor's view of the connection.
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateStopped
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// ClientConfig configures a WebSocket client.
type ClientConfig struct {
	URL          string
	PingTimeout  time.Duration // max time without ping/pong before stale
	WriteTimeout time.Duration
	BufferSize   int // raw message channel buffer
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		PingTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Second,
		BufferSize:   4096,
	}
}

// ManagerConfig configures the subscription manager.
type ManagerConfig struct {
	URL string

	// Tokens supplies bearer tokens for the post-connect auth request.
	// Nil disables auth; private-channel subscribes then fail.
	Tokens TokenSource

	// ReconnectBaseWait and ReconnectMaxWait bound the exponential
	// backoff between reconnect attempts.
	ReconnectBaseWait time.Duration
	ReconnectMaxWait  time.Duration

	// MaxReconnectAttempts limits consecutive failed reconnects before
	// the manager gives up and stops. Zero means retry forever.
	MaxReconnectAttempts int

	// DispatchBuffer bounds each subscription's event queue. When a
	// handler falls behind by more than this, its oldest queued events
	// are dropped.
	DispatchBuffer int

	// Client overrides parts of the underlying client config.
	PingTimeout  time.Duration
	WriteTimeout time.Duration
	BufferSize   int
}

// DefaultManagerConfig returns sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		ReconnectBaseWait: 500 * time.Millisecond,
		ReconnectMaxWait:  30 * time.Second,
		DispatchBuffer:    1024,
		PingTimeout:       60 * time.Second,
		WriteTimeout:      5 * time.Second,
		BufferSize:        4096,
	}
}
