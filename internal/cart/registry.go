package cart

import (
	"sync"
	"time"
)

const sweepInterval = 5 * time.Minute

// Registry maps session IDs to their carts. A cart is created empty on first
// use and evicted after sitting idle past the TTL, mirroring session expiry.
// Carts live in the memory of one process; a multi-instance deployment needs
// sticky sessions for cart affinity.
type Registry struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*registryEntry
	stop    chan struct{}
	once    sync.Once
}

type registryEntry struct {
	store    *Store
	lastSeen time.Time
}

// NewRegistry creates a registry whose carts expire after ttl of inactivity
// and starts the background sweep.
func NewRegistry(ttl time.Duration) *Registry {
	r := &Registry{
		ttl:     ttl,
		entries: make(map[string]*registryEntry),
		stop:    make(chan struct{}),
	}
	go r.sweep()
	return r
}

// Get returns the cart for a session, creating it if absent, and refreshes
// its idle deadline.
func (r *Registry) Get(sessionID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[sessionID]
	if !ok {
		entry = &registryEntry{store: NewStore()}
		r.entries[sessionID] = entry
	}
	entry.lastSeen = time.Now()
	return entry.store
}

// Drop discards the cart for a session, if any. Used when a session ends
// before its TTL, such as on logout.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, sessionID)
}

// Len returns the number of live carts.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Close stops the background sweep.
func (r *Registry) Close() {
	r.once.Do(func() { close(r.stop) })
}

func (r *Registry) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case now := <-ticker.C:
			r.evictIdle(now)
		}
	}
}

func (r *Registry) evictIdle(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, entry := range r.entries {
		if now.Sub(entry.lastSeen) > r.ttl {
			delete(r.entries, id)
		}
	}
}
