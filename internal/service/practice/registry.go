package practice

import (
	"sync"

	"github.com/google/uuid"

	"github.com/lingora/practice-api/internal/domain"
	"github.com/lingora/practice-api/internal/domain/session"
)

// sessionHandle is the runtime state of one resident session: its state
// machine plus a cache of the composed items. The handle mutex
// serializes all commands and persistence for the session.
type sessionHandle struct {
	mu      sync.Mutex
	machine *session.Machine
	items   map[uuid.UUID]*domain.ContentItem
}

// registry tracks resident session handles by session ID.
type registry struct {
	mu      sync.Mutex
	handles map[uuid.UUID]*sessionHandle
}

func newRegistry() *registry {
	return &registry{
		handles: make(map[uuid.UUID]*sessionHandle),
	}
}

func (r *registry) get(sessionID uuid.UUID) (*sessionHandle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	handle, ok := r.handles[sessionID]
	return handle, ok
}

func (r *registry) put(sessionID uuid.UUID, handle *sessionHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles[sessionID] = handle
}

func (r *registry) remove(sessionID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handles, sessionID)
}
