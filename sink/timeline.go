package sink

import (
	"chat-core/domain"
	"chat-core/domain/event"
	"context"
	"sync"
)

// Timeline is an in-process projection of what a connected client sees:
// the ledger in arrival order plus the latest presence and name of every
// identity it has heard about.
type Timeline struct {
	mu       sync.Mutex
	messages []domain.Message
	names    map[domain.Identity]string
	presence map[domain.Identity]bool
}

func NewTimeline() *Timeline {
	return &Timeline{
		names:    make(map[domain.Identity]string),
		presence: make(map[domain.Identity]bool),
	}
}

func (t *Timeline) Consume(_ context.Context, e event.DomainEvent) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch evt := e.(type) {
	case event.MessageAppended:
		t.messages = append(t.messages, evt.Message)
	case event.NameSet:
		t.names[evt.Identity] = evt.DisplayName
	case event.PresenceChanged:
		t.presence[evt.Identity] = evt.Online
	}
	return nil
}

// Messages returns the messages seen so far, in arrival order.
func (t *Timeline) Messages() []domain.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// NameOf returns the last name event seen for identity, or empty.
func (t *Timeline) NameOf(identity domain.Identity) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.names[identity]
}

// Online reports the last presence event seen for identity.
func (t *Timeline) Online(identity domain.Identity) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.presence[identity]
}
