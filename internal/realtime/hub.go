package realtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go-booking-realtime/internal/infrastructure/logger"
)

// Config carries the hub tunables. Zero values fall back to the production
// defaults.
type Config struct {
	// QueueCapacity bounds the dispatch queue. Events enqueued beyond it
	// are dropped with an error log; delivery is best-effort by contract.
	QueueCapacity int
	// PingInterval is the cadence of server-initiated ping frames.
	PingInterval time.Duration
	// SweepInterval is the cadence of the staleness sweep.
	SweepInterval time.Duration
	// StaleThreshold is how long a connection may go without a liveness
	// signal before the sweep evicts it.
	StaleThreshold time.Duration
}

func (c Config) withDefaults() Config {
	if c.QueueCapacity <= 0 {
		c.QueueCapacity = 1024
	}
	if c.PingInterval <= 0 {
		c.PingInterval = 45 * time.Second
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = 60 * time.Second
	}
	if c.StaleThreshold <= 0 {
		c.StaleThreshold = 5 * time.Minute
	}
	return c
}

// ChatOwnerResolver resolves the identity owning a chat. Implemented by the
// store package; chat and unread-count fan-out need it because the owning
// identity is not recorded on the connection.
type ChatOwnerResolver interface {
	OwnerIdentity(ctx context.Context, chatID string) (string, error)
}

// Stats is the operational snapshot exposed over the status endpoint.
type Stats struct {
	TotalConnections     int `json:"total_connections"`
	AdminConnections     int `json:"admin_connections"`
	UserConnections      int `json:"user_connections"`
	AnonymousConnections int `json:"anonymous_connections"`
	LiveConnections      int `json:"live_connections"`
	QueueDepth           int `json:"queue_depth"`
}

// Hub is the real-time broadcast manager: it owns the connection registry,
// the dispatch queue, and the liveness monitor, and exposes the notification
// API collaborators use to originate events. One hub instance is constructed
// at startup and passed to every collaborator.
type Hub struct {
	cfg    Config
	owners ChatOwnerResolver

	registry *Registry

	register   chan Connection
	unregister chan string
	events     chan *Event

	running   bool
	runningMu sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc

	logger logger.Logger
}

func New(cfg Config, owners ChatOwnerResolver, log logger.Logger) *Hub {
	cfg = cfg.withDefaults()

	return &Hub{
		cfg:        cfg,
		owners:     owners,
		registry:   NewRegistry(log),
		register:   make(chan Connection, 100),
		unregister: make(chan string, 100),
		events:     make(chan *Event, cfg.QueueCapacity),
		logger:     log.WithField("component", "hub"),
	}
}

// Start launches the run loop. The hub must be started before connections
// are registered or events originated.
func (h *Hub) Start(ctx context.Context) error {
	h.runningMu.Lock()
	defer h.runningMu.Unlock()

	if h.running {
		return fmt.Errorf("hub is already running")
	}

	h.ctx, h.cancel = context.WithCancel(ctx)
	h.running = true

	go h.run()

	h.logger.Info("hub started")
	return nil
}

// Stop closes every connection and clears all state. Intended for process
// shutdown only.
func (h *Hub) Stop(ctx context.Context) error {
	h.runningMu.Lock()
	defer h.runningMu.Unlock()

	if !h.running {
		return nil
	}

	h.cancel()
	h.registry.Clear()
	h.running = false

	h.logger.Info("hub stopped")
	return nil
}

func (h *Hub) IsRunning() bool {
	h.runningMu.RLock()
	defer h.runningMu.RUnlock()
	return h.running
}

// PingInterval is the cadence transports should push server-initiated pings.
func (h *Hub) PingInterval() time.Duration {
	return h.cfg.PingInterval
}

// Register hands a connection to the hub. The hub takes ownership: it sends
// the connection_established frame and evicts the connection when its
// context ends.
func (h *Hub) Register(conn Connection) error {
	if !h.IsRunning() {
		return fmt.Errorf("hub is not running")
	}

	select {
	case h.register <- conn:
		return nil
	case <-h.ctx.Done():
		return fmt.Errorf("hub is shutting down")
	case <-time.After(5 * time.Second):
		return fmt.Errorf("timeout registering connection %s", conn.ID())
	}
}

// Unregister removes a connection by id. Safe to call for ids that are
// already gone.
func (h *Hub) Unregister(connID string) error {
	if !h.IsRunning() {
		return fmt.Errorf("hub is not running")
	}

	select {
	case h.unregister <- connID:
		return nil
	case <-h.ctx.Done():
		return fmt.Errorf("hub is shutting down")
	case <-time.After(5 * time.Second):
		return fmt.Errorf("timeout unregistering connection %s", connID)
	}
}

func (h *Hub) Registry() *Registry {
	return h.registry
}

func (h *Hub) Stats() Stats {
	stats := Stats{QueueDepth: len(h.events)}

	h.registry.ForEach(func(c Connection) {
		stats.TotalConnections++
		if !c.IsClosed() {
			stats.LiveConnections++
		}
		switch {
		case c.Role() == RoleAdmin:
			stats.AdminConnections++
		case c.Identity() != "":
			stats.UserConnections++
		default:
			stats.AnonymousConnections++
		}
	})

	return stats
}

// enqueue places an event on the dispatch queue. Never blocks: a full queue
// drops the event with an error log, matching the fire-and-forget contract
// of the notification API.
func (h *Hub) enqueue(e *Event) {
	if !h.IsRunning() {
		h.logger.Warnf("dropping %s event: hub is not running", e.Kind)
		return
	}

	select {
	case h.events <- e:
	default:
		h.logger.Errorf("dispatch queue full, dropping %s event %s", e.Kind, e.ID)
	}
}

// run is the single consumer of the dispatch queue. Register, unregister,
// dispatch, and the staleness sweep all execute here, so queued events are
// delivered in FIFO order and no second drain loop can exist.
func (h *Hub) run() {
	sweep := time.NewTicker(h.cfg.SweepInterval)
	defer sweep.Stop()

	for {
		select {
		case conn := <-h.register:
			h.handleRegister(conn)

		case connID := <-h.unregister:
			if h.registry.Remove(connID) {
				h.logger.Infof("connection %s unregistered", connID)
			}

		case e := <-h.events:
			h.dispatch(e)

		case <-sweep.C:
			h.sweepStale()

		case <-h.ctx.Done():
			h.logger.Info("hub run loop stopped")
			return
		}
	}
}

func (h *Hub) handleRegister(conn Connection) {
	h.registry.Add(conn)

	h.logger.Infof(
		"connection %s registered (transport: %s, role: %s)",
		conn.ID(), conn.Transport(), conn.Role(),
	)

	err := conn.Send(h.ctx, NewFrame(FrameConnectionEstablished, map[string]any{
		"clientId": conn.ID(),
		"userId":   conn.Identity(),
		"userRole": string(conn.Role()),
	}))
	if err != nil {
		h.logger.Errorf("failed to send connection_established to %s: %v", conn.ID(), err)
		h.registry.Remove(conn.ID())
		return
	}

	// Evict when the transport ends on its own.
	go func() {
		<-conn.Context().Done()
		h.Unregister(conn.ID())
	}()
}

// dispatch resolves an event's recipients and delivers to each in turn. A
// failed send evicts that connection and delivery continues with the rest.
func (h *Hub) dispatch(e *Event) {
	delivered := 0
	for _, conn := range h.recipients(e) {
		if h.deliver(conn, e.Frame()) {
			delivered++
		}
	}

	h.logger.Debugf("dispatched %s event %s to %d connections", e.Kind, e.ID, delivered)
}

// deliver sends one frame to one connection, evicting the connection on
// failure. Returns true when the frame was accepted by the transport.
func (h *Hub) deliver(conn Connection, frame *Frame) bool {
	if err := conn.Send(h.ctx, frame); err != nil {
		h.logger.Errorf("failed to send to connection %s, evicting: %v", conn.ID(), err)
		h.registry.Remove(conn.ID())
		return false
	}
	return true
}

// sweepStale evicts connections with no liveness signal inside the
// threshold. Catches clients that stopped responding while the transport
// still looks open.
func (h *Hub) sweepStale() {
	h.sweepStaleAt(time.Now())
}

func (h *Hub) sweepStaleAt(now time.Time) {
	cutoff := now.Add(-h.cfg.StaleThreshold)

	var stale []string
	h.registry.ForEach(func(c Connection) {
		// The threshold is inclusive: a signal exactly StaleThreshold
		// ago no longer counts as live.
		if !c.LastSeen().After(cutoff) {
			stale = append(stale, c.ID())
		}
	})

	for _, id := range stale {
		if h.registry.Remove(id) {
			h.logger.Infof("evicted stale connection %s", id)
		}
	}
}
