package runtime

import (
	"chat-core/contract"
	"chat-core/domain"
	"sync"
)

// Registry tracks the event sink of every connected identity. A second
// connect for the same identity replaces the previous sink.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.Identity]contract.EventSink
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[domain.Identity]contract.EventSink)}
}

// Subscribe registers an identity's active connection.
func (r *Registry) Subscribe(identity domain.Identity, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[identity] = sink
}

// Unsubscribe drops an identity's connection from the registry.
func (r *Registry) Unsubscribe(identity domain.Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, identity)
}

// Sinks returns the sinks of every connected identity. The slice is a
// snapshot; the registry can change as soon as the lock is released.
func (r *Registry) Sinks() []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sinks := make([]contract.EventSink, 0, len(r.sessions))
	for _, sink := range r.sessions {
		sinks = append(sinks, sink)
	}
	return sinks
}
