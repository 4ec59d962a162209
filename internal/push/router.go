// Package push receives the per-user change notification stream and
// turns it into silent refetches of the affected date buckets. It never
// mutates state itself: the engine's mutation tracker and equality-gated
// store replace decide whether a notified read has any visible effect,
// so an echo of the client's own action is suppressed without any
// message deduplication here.
package push

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/tidwall/gjson"
)

const (
	// refetchDelay is how long to wait after a notification before
	// re-reading. The server notifies as part of the write transaction;
	// the fixed delay tolerates write-then-notify ordering so the read
	// observes the committed state.
	refetchDelay = 500 * time.Millisecond

	// reconnectDelay is the fixed pause between reconnect attempts.
	reconnectDelay = 3 * time.Second

	// maxReconnectAttempts bounds consecutive reconnects. Beyond it the
	// router gives up and the engine keeps working without live updates.
	maxReconnectAttempts = 5

	// readLimit caps inbound frames. Envelopes are small JSON objects.
	readLimit = 1024 * 1024
)

// Message type strings on the wire.
const (
	TypeTodosChanged     = "TODOS_CHANGED"
	TypeRecurringChanged = "RECURRING_CHANGED"
)

// Envelope is the notification wire format.
type Envelope struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp string          `json:"timestamp"`
}

type todosChangedData struct {
	Date string `json:"date"`
}

// ConnState is the router's connection lifecycle state.
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Refresher is the router's view of the engine: silent refetches plus
// the visibility filter.
type Refresher interface {
	RefetchDate(ctx context.Context, dateKey string)
	RefetchVisible(ctx context.Context)
	IsVisible(dateKey string) bool
}

// wsConn abstracts the WebSocket connection so the Router can be tested
// without a real server. *websocket.Conn satisfies this interface.
type wsConn interface {
	Read(ctx context.Context) (websocket.MessageType, []byte, error)
	Close(code websocket.StatusCode, reason string) error
}

// dialFunc opens the notification stream. Swapped out in tests.
type dialFunc func(ctx context.Context) (wsConn, error)

// Config holds the parameters for a new Router.
type Config struct {
	// URL is the websocket endpoint, e.g. "ws://localhost:8080/ws".
	URL string

	// Token authenticates the handshake; it is passed as a query
	// parameter, which the server validates before upgrading.
	Token string

	Refresher Refresher
	Logger    *slog.Logger

	// Dial overrides the websocket dialer. Tests inject one.
	Dial func(ctx context.Context) (wsConn, error)
}

// Router owns one subscription to the push channel.
type Router struct {
	refresher Refresher
	logger    *slog.Logger
	dial      dialFunc

	mu    sync.Mutex
	state ConnState

	// connListeners fire once on the next transition to Connected,
	// then are discarded. Callers registering while already connected
	// are invoked immediately instead of queued.
	connListeners []func()
}

// NewRouter creates a Router from cfg.
func NewRouter(cfg Config) (*Router, error) {
	if cfg.Refresher == nil {
		return nil, fmt.Errorf("push: refresher is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	dial := cfg.Dial
	if dial == nil {
		endpoint, err := handshakeURL(cfg.URL, cfg.Token)
		if err != nil {
			return nil, err
		}

		dial = func(ctx context.Context) (wsConn, error) {
			conn, _, err := websocket.Dial(ctx, endpoint, nil) //nolint:bodyclose // websocket.Dial closes the response body internally
			if err != nil {
				return nil, err
			}

			conn.SetReadLimit(readLimit)

			return conn, nil
		}
	}

	return &Router{
		refresher: cfg.Refresher,
		logger:    logger,
		dial:      dial,
		state:     StateDisconnected,
	}, nil
}

func handshakeURL(raw, token string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parsing websocket url: %w", err)
	}

	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// State returns the current connection state.
func (r *Router) State() ConnState {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state
}

// OnConnectionEstablished registers f to run when the subscription next
// becomes active. If the router is already connected, f runs
// immediately. Each listener fires at most once.
func (r *Router) OnConnectionEstablished(f func()) {
	r.mu.Lock()

	if r.state == StateConnected {
		r.mu.Unlock()
		f()

		return
	}

	r.connListeners = append(r.connListeners, f)
	r.mu.Unlock()
}

func (r *Router) setState(s ConnState) {
	r.mu.Lock()

	r.state = s

	var fire []func()
	if s == StateConnected {
		fire = r.connListeners
		r.connListeners = nil
	}

	r.mu.Unlock()

	for _, f := range fire {
		f()
	}
}

// Listen connects and consumes notifications until ctx is cancelled or
// the reconnect budget is exhausted. Running out of reconnects is not
// an error: the engine continues to work from manual loads and
// optimistic writes, just without live invalidation.
func (r *Router) Listen(ctx context.Context) error {
	attempts := 0

	for {
		if ctx.Err() != nil {
			r.setState(StateDisconnected)
			return ctx.Err()
		}

		r.setState(StateConnecting)

		conn, err := r.dial(ctx)
		if err != nil {
			r.setState(StateDisconnected)

			attempts++
			if attempts >= maxReconnectAttempts {
				r.logger.Error("push channel unavailable, live updates disabled",
					slog.Int("attempts", attempts),
					slog.String("error", err.Error()),
				)

				return nil
			}

			r.logger.Warn("push channel connect failed, retrying",
				slog.Int("attempt", attempts),
				slog.String("error", err.Error()),
			)

			if !sleep(ctx, reconnectDelay) {
				r.setState(StateDisconnected)
				return ctx.Err()
			}

			continue
		}

		attempts = 0

		r.setState(StateConnected)
		r.logger.Info("push channel connected")

		err = r.readLoop(ctx, conn)
		r.setState(StateDisconnected)

		if ctx.Err() != nil {
			conn.Close(websocket.StatusNormalClosure, "shutting down")
			return ctx.Err()
		}

		// Release the broken connection before dialing a new one.
		conn.Close(websocket.StatusInternalError, "read failed")

		r.logger.Warn("push channel closed, reconnecting", slog.String("error", err.Error()))

		attempts++
		if attempts >= maxReconnectAttempts {
			r.logger.Error("push channel reconnect budget exhausted, live updates disabled",
				slog.Int("attempts", attempts),
			)

			return nil
		}

		if !sleep(ctx, reconnectDelay) {
			return ctx.Err()
		}
	}
}

// readLoop consumes frames until a read error. Malformed or unknown
// envelopes are logged and dropped; they never terminate the loop.
func (r *Router) readLoop(ctx context.Context, conn wsConn) error {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return fmt.Errorf("reading notification: %w", err)
		}

		if typ != websocket.MessageText {
			r.logger.Debug("ignoring non-text frame", slog.Int("bytes", len(data)))
			continue
		}

		r.handleMessage(ctx, data)
	}
}

// handleMessage dispatches one envelope. The refetch is delayed by a
// fixed interval so the server's write has committed by the time the
// read observes it, then runs in its own goroutine so a slow read never
// blocks the stream.
func (r *Router) handleMessage(ctx context.Context, data []byte) {
	msgType := gjson.GetBytes(data, "type").Str
	if msgType == "" {
		r.logger.Warn("dropping malformed push envelope", slog.Int("bytes", len(data)))
		return
	}

	switch msgType {
	case TypeTodosChanged:
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			r.logger.Warn("dropping undecodable envelope", slog.String("error", err.Error()))
			return
		}

		var payload todosChangedData
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &payload); err != nil {
				r.logger.Warn("dropping envelope with bad data payload", slog.String("error", err.Error()))
				return
			}
		}

		if payload.Date == "" {
			r.logger.Warn("dropping date-change notification without date")
			return
		}

		go r.refetchDateLater(ctx, payload.Date)

	case TypeRecurringChanged:
		go r.refetchVisibleLater(ctx)

	default:
		// Other notification kinds (later lists, routines) exist on
		// this stream but are not consumed by the todo engine.
		r.logger.Debug("ignoring push message", slog.String("type", msgType))
	}
}

// refetchDateLater waits the debounce delay, then re-reads the date if
// it is still visible. The result remains subject to the engine's
// staleness check and equality gate, so our own echoes are inert.
func (r *Router) refetchDateLater(ctx context.Context, dateKey string) {
	if !sleep(ctx, refetchDelay) {
		return
	}

	if !r.refresher.IsVisible(dateKey) {
		r.logger.Debug("skipping refetch for invisible date", slog.String("date", dateKey))
		return
	}

	r.logger.Debug("push-triggered refetch", slog.String("date", dateKey))
	r.refresher.RefetchDate(ctx, dateKey)
}

func (r *Router) refetchVisibleLater(ctx context.Context) {
	if !sleep(ctx, refetchDelay) {
		return
	}

	r.logger.Debug("push-triggered window refetch")
	r.refresher.RefetchVisible(ctx)
}

// sleep waits for d, returning false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
