package session

import (
	"sync"
	"time"

	"github.com/civicfix/mobile-gateway/internal/core/ports"
)

// Handle bundles the session state and the credential store for one device.
// Flows receive a Handle so the "write store, then update state" ordering is
// always applied to the same device's pair.
type Handle struct {
	Session *Session
	Store   *CredentialStore
}

// sweepInterval bounds how often Handle scans the map for idle entries.
const sweepInterval = time.Minute

// Registry owns every live session, one Handle per device ID. It is an
// injected single instance, not a package-level global, so tests run against
// their own registry with fake storage. Device IDs are client-supplied, so
// entries idle longer than idleAfter are evicted; an evicted device gets a
// fresh Handle on its next request and restores from its persisted
// credential record.
type Registry struct {
	mu        sync.Mutex
	storage   ports.StorageFactory
	idleAfter time.Duration
	lastSweep time.Time
	sessions  map[string]*registryEntry
}

type registryEntry struct {
	handle   *Handle
	lastSeen time.Time
}

func NewRegistry(storage ports.StorageFactory, idleAfter time.Duration) *Registry {
	return &Registry{
		storage:   storage,
		idleAfter: idleAfter,
		sessions:  make(map[string]*registryEntry),
	}
}

// Handle returns the Handle for deviceID, creating it on first use.
func (r *Registry) Handle(deviceID string) *Handle {
	return r.handleAt(deviceID, time.Now())
}

func (r *Registry) handleAt(deviceID string, now time.Time) *Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweep(now)

	if e, ok := r.sessions[deviceID]; ok {
		e.lastSeen = now
		return e.handle
	}
	h := &Handle{
		Session: New(deviceID),
		Store:   NewCredentialStore(r.storage(deviceID)),
	}
	r.sessions[deviceID] = &registryEntry{handle: h, lastSeen: now}
	return h
}

// sweep drops idle entries. Caller holds mu.
func (r *Registry) sweep(now time.Time) {
	if r.idleAfter <= 0 || now.Sub(r.lastSweep) < sweepInterval {
		return
	}
	r.lastSweep = now
	for id, e := range r.sessions {
		if now.Sub(e.lastSeen) > r.idleAfter {
			delete(r.sessions, id)
		}
	}
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
