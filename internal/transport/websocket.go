// internal/transport/websocket.go

package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512 * 1024 // 512KB

	// Maximum number of queued outbound events
	maxQueuedEvents = 256
)

var (
	ErrClosed     = errors.New("connection closed")
	ErrAckTimeout = errors.New("acknowledgment timed out")
)

// Options configures a websocket connection.
type Options struct {
	URL    string
	Header http.Header

	// Bounded reconnection policy. After ReconnectAttempts consecutive
	// failures the connection closes permanently.
	ReconnectAttempts int
	ReconnectDelay    time.Duration

	Dialer *websocket.Dialer
}

// WSConn is the websocket implementation of Conn. A single WSConn is
// shared by every conversation screen of a session.
type WSConn struct {
	opts Options

	mu       sync.Mutex
	ws       *websocket.Conn
	state    State
	stateFns []func(State)

	handlers   map[string]map[int]Handler
	handlerSeq int

	acks   map[int64]chan json.RawMessage
	ackSeq int64

	send chan []byte

	closed    chan struct{}
	closeOnce sync.Once
}

// Dial establishes the connection and starts the read/write pumps.
func Dial(opts Options) (*WSConn, error) {
	if opts.ReconnectAttempts <= 0 {
		opts.ReconnectAttempts = 3
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = 3 * time.Second
	}
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}

	c := &WSConn{
		opts:     opts,
		state:    StateConnecting,
		handlers: make(map[string]map[int]Handler),
		acks:     make(map[int64]chan json.RawMessage),
		send:     make(chan []byte, maxQueuedEvents),
		closed:   make(chan struct{}),
	}

	ws, _, err := opts.Dialer.Dial(opts.URL, opts.Header)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", opts.URL, err)
	}

	c.ws = ws
	c.setState(StateConnected)

	go c.run()

	return c, nil
}

// run supervises one socket at a time: it drives the pumps until the
// socket drops, then walks the bounded reconnection schedule.
func (c *WSConn) run() {
	for {
		c.mu.Lock()
		ws := c.ws
		c.mu.Unlock()

		stop := make(chan struct{})
		go c.writePump(ws, stop)
		c.readPump(ws)
		close(stop)
		ws.Close()

		select {
		case <-c.closed:
			return
		default:
		}

		if !c.redial() {
			log.Printf("transport: reconnection attempts exhausted, closing")
			c.setState(StateClosed)
			c.Close()
			return
		}
	}
}

func (c *WSConn) readPump(ws *websocket.Conn) {
	ws.SetReadLimit(maxMessageSize)
	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("transport: read error: %v", err)
			}
			return
		}

		// Dispatch synchronously so events are delivered in
		// socket-delivery order.
		c.dispatch(message)
	}
}

func (c *WSConn) writePump(ws *websocket.Conn, stop chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message := <-c.send:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-stop:
			return
		case <-c.closed:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			ws.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// redial walks the reconnection schedule. It reports whether a new
// socket was established.
func (c *WSConn) redial() bool {
	c.setState(StateReconnecting)

	for attempt := 1; attempt <= c.opts.ReconnectAttempts; attempt++ {
		select {
		case <-c.closed:
			return false
		case <-time.After(c.opts.ReconnectDelay):
		}

		ws, _, err := c.opts.Dialer.Dial(c.opts.URL, c.opts.Header)
		if err != nil {
			log.Printf("transport: reconnect attempt %d/%d failed: %v",
				attempt, c.opts.ReconnectAttempts, err)
			continue
		}

		c.mu.Lock()
		c.ws = ws
		c.mu.Unlock()
		c.setState(StateConnected)
		log.Printf("transport: reconnected after %d attempt(s)", attempt)
		return true
	}

	return false
}

func (c *WSConn) dispatch(message []byte) {
	var env envelope
	if err := json.Unmarshal(message, &env); err != nil {
		log.Printf("transport: error unmarshaling frame: %v", err)
		return
	}

	// Ack replies carry the correlation id and no event name.
	if env.Ack != 0 && env.Event == "" {
		c.mu.Lock()
		ch, ok := c.acks[env.Ack]
		delete(c.acks, env.Ack)
		c.mu.Unlock()
		if ok {
			ch <- env.Data
		}
		return
	}

	c.mu.Lock()
	subs := make([]Handler, 0, len(c.handlers[env.Event]))
	for _, h := range c.handlers[env.Event] {
		subs = append(subs, h)
	}
	c.mu.Unlock()

	for _, h := range subs {
		h(env.Data)
	}
}

// Emit sends one named event. While disconnected the event is dropped.
func (c *WSConn) Emit(event string, payload interface{}) error {
	return c.emit(envelope{Event: event}, payload)
}

func (c *WSConn) emit(env envelope, payload interface{}) error {
	if c.State() != StateConnected {
		// No queuing guarantee while disconnected.
		return nil
	}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", env.Event, err)
		}
		env.Data = data
	}

	frame, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal frame: %w", err)
	}

	select {
	case c.send <- frame:
		return nil
	case <-c.closed:
		return ErrClosed
	default:
		return fmt.Errorf("send queue full, dropping %s", env.Event)
	}
}

// EmitWithAck sends one named event and waits for the peer's reply.
func (c *WSConn) EmitWithAck(ctx context.Context, event string, payload interface{}) (json.RawMessage, error) {
	if c.State() != StateConnected {
		return nil, ErrClosed
	}

	ch := make(chan json.RawMessage, 1)

	c.mu.Lock()
	c.ackSeq++
	id := c.ackSeq
	c.acks[id] = ch
	c.mu.Unlock()

	if err := c.emit(envelope{Event: event, Ack: id}, payload); err != nil {
		c.mu.Lock()
		delete(c.acks, id)
		c.mu.Unlock()
		return nil, err
	}

	select {
	case data := <-ch:
		return data, nil
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.acks, id)
		c.mu.Unlock()
		return nil, ErrAckTimeout
	case <-c.closed:
		return nil, ErrClosed
	}
}

// On subscribes a handler to an event.
func (c *WSConn) On(event string, h Handler) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.handlerSeq++
	if c.handlers[event] == nil {
		c.handlers[event] = make(map[int]Handler)
	}
	c.handlers[event][c.handlerSeq] = h
	return c.handlerSeq
}

// Off removes a subscription.
func (c *WSConn) Off(event string, id int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.handlers[event], id)
}

// NotifyState registers a state-change callback.
func (c *WSConn) NotifyState(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stateFns = append(c.stateFns, fn)
}

// State reports the current connection state.
func (c *WSConn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

func (c *WSConn) setState(s State) {
	c.mu.Lock()
	if c.state == s || c.state == StateClosed && s != StateClosed {
		c.mu.Unlock()
		return
	}
	c.state = s
	fns := make([]func(State), len(c.stateFns))
	copy(fns, c.stateFns)
	c.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

// Close tears the connection down for good.
func (c *WSConn) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
	})

	c.setState(StateClosed)

	c.mu.Lock()
	ws := c.ws
	c.mu.Unlock()
	if ws != nil {
		return ws.Close()
	}
	return nil
}
