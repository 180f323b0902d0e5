package realtime

import (
	"sync"

	"go-booking-realtime/internal/infrastructure/logger"
)

// Registry owns all live connections. Remove closes the underlying transport
// before discarding the entry and is idempotent.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]Connection

	logger logger.Logger
}

func NewRegistry(log logger.Logger) *Registry {
	return &Registry{
		conns:  make(map[string]Connection),
		logger: log.WithField("component", "registry"),
	}
}

func (r *Registry) Add(conn Connection) {
	r.mu.Lock()
	r.conns[conn.ID()] = conn
	r.mu.Unlock()
}

// Remove closes the connection's transport, then discards the entry.
// Returns false if the connection was not registered.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[id]
	if !ok {
		return false
	}

	if err := conn.Close(); err != nil {
		r.logger.Errorf("failed to close connection %s: %v", id, err)
	}
	delete(r.conns, id)
	return true
}

func (r *Registry) Get(id string) (Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[id]
	return conn, ok
}

// ForEach visits a snapshot of the registry. Visitors may send to or remove
// connections without holding the registry lock.
func (r *Registry) ForEach(visit func(Connection)) {
	r.mu.RLock()
	snapshot := make([]Connection, 0, len(r.conns))
	for _, conn := range r.conns {
		snapshot = append(snapshot, conn)
	}
	r.mu.RUnlock()

	for _, conn := range snapshot {
		visit(conn)
	}
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Clear closes every connection and empties the registry. Intended for
// process shutdown only.
func (r *Registry) Clear() {
	r.mu.Lock()
	conns := r.conns
	r.conns = make(map[string]Connection)
	r.mu.Unlock()

	for id, conn := range conns {
		if err := conn.Close(); err != nil {
			r.logger.Errorf("failed to close connection %s: %v", id, err)
		}
	}
}
