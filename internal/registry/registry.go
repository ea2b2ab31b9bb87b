// Package registry tracks live interview sessions by ID so transport
// handlers can route commands to the right orchestrator.
package registry

import (
	"errors"
	"sync"

	"github.com/jonathan/interview-simulator/internal/session"
)

// ErrNotFound is returned when no session exists under the requested ID.
var ErrNotFound = errors.New("session not found")

// Registry is a concurrency-safe map of active orchestrators. Lookups for
// different sessions never contend on session state; the registry lock
// covers only the map itself.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*session.Orchestrator
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{sessions: make(map[string]*session.Orchestrator)}
}

// Add registers an orchestrator under its session ID.
func (r *Registry) Add(o *session.Orchestrator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[o.ID()] = o
}

// Get returns the orchestrator for id.
func (r *Registry) Get(id string) (*session.Orchestrator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o, nil
}

// Remove drops the session from the registry. Removing an unknown ID is a
// no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len reports the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// IDs returns the registered session IDs in no particular order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	return ids
}
