// README: Live connection registry, keyed by connection id.
package realtime

import "sync"

// Registry holds the live connections. It is injected into the
// gateway rather than held as package state so tests can run several
// gateways side by side.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]Conn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]Conn)}
}

func (r *Registry) Add(connectionID string, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[connectionID] = c
}

// Remove drops the connection and reports whether it was present.
func (r *Registry) Remove(connectionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.conns[connectionID]
	delete(r.conns, connectionID)
	return ok
}

func (r *Registry) Get(connectionID string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[connectionID]
	return c, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
