package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"go-booking-realtime/internal/infrastructure/logger"
)

// Connection represents one accepted, live client transport plus its
// addressing metadata. The registry is the sole owner of a connection;
// removing it from the registry closes the transport.
type Connection interface {
	ID() string
	Identity() string
	Role() Role
	Transport() string

	Send(ctx context.Context, frame *Frame) error
	Close() error
	IsClosed() bool
	Context() context.Context

	Subscribe(topics ...string)
	Unsubscribe(topics ...string)
	Subscribed(topic string) bool
	Topics() []string

	Touch()
	LastSeen() time.Time
}

// clientState carries the addressing metadata shared by every transport:
// identity, role, the topic set, and the liveness timestamp.
type clientState struct {
	id       string
	identity string
	role     Role

	mu       sync.RWMutex
	topics   map[string]struct{}
	lastSeen time.Time
}

func newClientState(id, identity string, role Role) *clientState {
	s := &clientState{
		id:       id,
		identity: identity,
		role:     role,
		topics:   make(map[string]struct{}),
		lastSeen: time.Now(),
	}
	for _, t := range DefaultTopics(role, identity) {
		s.topics[t] = struct{}{}
	}
	return s
}

func (s *clientState) ID() string       { return s.id }
func (s *clientState) Identity() string { return s.identity }
func (s *clientState) Role() Role       { return s.role }

func (s *clientState) Subscribe(topics ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range topics {
		s.topics[t] = struct{}{}
	}
}

func (s *clientState) Unsubscribe(topics ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range topics {
		delete(s.topics, t)
	}
}

func (s *clientState) Subscribed(topic string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.topics[topic]
	return ok
}

func (s *clientState) Topics() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.topics))
	for t := range s.topics {
		out = append(out, t)
	}
	return out
}

func (s *clientState) Touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *clientState) LastSeen() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

// WebSocketConnection implements Connection over a gorilla websocket. A
// write pump serializes all writes to the socket; Send never touches the
// transport directly and never blocks on I/O.
type WebSocketConnection struct {
	*clientState

	conn *websocket.Conn

	ctx    context.Context
	cancel context.CancelFunc

	closed   bool
	closedMu sync.Mutex

	send chan *Frame

	pingInterval time.Duration
	writeTimeout time.Duration

	logger logger.Logger
}

func NewWebSocketConnection(
	id string,
	identity string,
	role Role,
	conn *websocket.Conn,
	pingInterval time.Duration,
	log logger.Logger,
) *WebSocketConnection {
	ctx, cancel := context.WithCancel(context.Background())

	c := &WebSocketConnection{
		clientState:  newClientState(id, identity, role),
		conn:         conn,
		ctx:          ctx,
		cancel:       cancel,
		send:         make(chan *Frame, 256),
		pingInterval: pingInterval,
		writeTimeout: 10 * time.Second,
		logger:       log.WithField("connection_id", id),
	}

	go c.writePump()
	go c.readPump()

	return c
}

func (c *WebSocketConnection) Transport() string { return "websocket" }

// Send queues a frame for the write pump. A full buffer counts as a send
// failure so a stalled client cannot block dispatch.
func (c *WebSocketConnection) Send(ctx context.Context, frame *Frame) error {
	if c.IsClosed() {
		return fmt.Errorf("connection %s is closed", c.id)
	}

	select {
	case c.send <- frame:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.ctx.Done():
		return fmt.Errorf("connection %s is closing", c.id)
	default:
		return fmt.Errorf("connection %s send buffer full", c.id)
	}
}

func (c *WebSocketConnection) Close() error {
	c.closedMu.Lock()
	defer c.closedMu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.cancel()

	c.logger.Debug("websocket connection closed")
	return nil
}

func (c *WebSocketConnection) IsClosed() bool {
	c.closedMu.Lock()
	defer c.closedMu.Unlock()
	return c.closed
}

func (c *WebSocketConnection) Context() context.Context { return c.ctx }

// writePump owns all writes to the socket, including the server-initiated
// ping frame pushed every pingInterval. The ticker stops with the
// connection context, so teardown cancels the timer as a side effect.
func (c *WebSocketConnection) writePump() {
	ticker := time.NewTicker(c.pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		c.conn.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.conn.WriteJSON(frame); err != nil {
				c.logger.Errorf("failed to write frame: %v", err)
				c.Close()
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.conn.WriteJSON(NewFrame(FramePing, nil)); err != nil {
				c.logger.Errorf("failed to send ping: %v", err)
				c.Close()
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// readPump consumes inbound frames: ping refreshes liveness and answers with
// pong, subscribe/unsubscribe mutate the topic set. Malformed or unknown
// frames are logged and ignored; the connection stays open.
func (c *WebSocketConnection) readPump() {
	defer c.Close()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
				websocket.CloseAbnormalClosure,
			) {
				c.logger.Errorf("websocket read error: %v", err)
			}
			return
		}

		c.Touch()

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warnf("ignoring malformed client frame: %v", err)
			continue
		}

		switch msg.Type {
		case clientPing:
			if err := c.Send(c.ctx, NewFrame(FramePong, nil)); err != nil {
				c.logger.Warnf("failed to send pong: %v", err)
			}

		case clientSubscribe:
			c.Subscribe(msg.Channels...)
			c.logger.Debugf("subscribed to %d channels", len(msg.Channels))

		case clientUnsubscribe:
			c.Unsubscribe(msg.Channels...)
			c.logger.Debugf("unsubscribed from %d channels", len(msg.Channels))

		default:
			c.logger.Warnf("ignoring client frame of unknown type %q", msg.Type)
		}
	}
}
