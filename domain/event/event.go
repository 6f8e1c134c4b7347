package event

import (
	"chat-core/domain"
)

// DomainEvent is a committed state change, fanned out to connected
// client sinks after the owning transaction has applied.
type DomainEvent interface {
	Name() string
}

// PresenceChanged is published after a connect or disconnect flipped a
// directory row's online flag.
type PresenceChanged struct {
	Identity domain.Identity
	Online   bool
}

func (PresenceChanged) Name() string { return "presence_changed" }

// NameSet is published after a caller successfully named itself.
type NameSet struct {
	Identity    domain.Identity
	DisplayName string
}

func (NameSet) Name() string { return "name_set" }

// MessageAppended is published after a message row joined the ledger.
type MessageAppended struct {
	Message domain.Message
}

func (MessageAppended) Name() string { return "message_appended" }
