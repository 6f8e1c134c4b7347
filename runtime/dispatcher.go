// Package runtime hosts the state-mutation core: it dispatches incoming
// calls to entry points, drives the connection lifecycle, and propagates
// committed changes to connected clients. It orchestrates without
// containing business logic or domain rules.
package runtime

import (
	"chat-core/contract"
	"chat-core/domain"
	"chat-core/domain/event"
	"chat-core/errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Operations a client can invoke by name. Connect and disconnect are not
// operations; they are lifecycle events delivered by the connection
// source.
const (
	OpSetName     = "set_name"
	OpSendMessage = "send_message"
)

// Dispatcher is the caller-invocation layer in front of the core. It
// hands each call, together with the caller identity and timestamp, to
// exactly one entry point, and publishes an event once the entry point's
// transaction has committed.
type Dispatcher struct {
	log       *slog.Logger
	directory contract.IDirectory
	ledger    contract.ILedger
	registry  contract.IRegistry
	events    chan event.DomainEvent
}

func NewDispatcher(log *slog.Logger, directory contract.IDirectory, ledger contract.ILedger,
	registry contract.IRegistry, bufferSize int) *Dispatcher {
	return &Dispatcher{
		log:       log,
		directory: directory,
		ledger:    ledger,
		registry:  registry,
		events:    make(chan event.DomainEvent, bufferSize),
	}
}

// Events is the stream of committed changes, consumed by the fanout
// worker.
func (d *Dispatcher) Events() chan event.DomainEvent {
	return d.events
}

// Dispatch routes one named operation. Both operations carry a single
// string argument. Errors are the entry point's own rejections, passed
// through untouched.
func (d *Dispatcher) Dispatch(call contract.CallContext, op string, arg string) error {
	callID := uuid.New()
	d.log.Debug("Dispatching call", "id", callID, "op", op, "sender", call.Sender)

	switch op {
	case OpSetName:
		if err := d.directory.SetName(call, domain.SetNameCommand{Name: arg}); err != nil {
			return err
		}
		d.publish(event.NameSet{Identity: call.Sender, DisplayName: arg})
	case OpSendMessage:
		if err := d.ledger.SendMessage(call, domain.SendMessageCommand{Text: arg}); err != nil {
			return err
		}
		d.publish(event.MessageAppended{Message: domain.Message{
			Sender: call.Sender,
			Sent:   call.Timestamp,
			Text:   arg,
		}})
	default:
		return fmt.Errorf("%w: unknown operation %q", errors.ErrInvalidArgument, op)
	}
	return nil
}

// Connect is invoked by the connection source exactly once per
// established connection. The sink, when non-nil, starts receiving
// committed changes once the directory row is in place.
func (d *Dispatcher) Connect(identity domain.Identity, sink contract.EventSink) error {
	call := contract.CallContext{Sender: identity, Timestamp: time.Now().UTC()}
	if err := d.directory.HandleConnect(call); err != nil {
		// A collision here is a broken lifecycle guarantee, not a bad
		// request. Log loudly and refuse the session.
		d.log.Error("Connect lifecycle failed", "identity", identity, "err", err)
		return err
	}
	if sink != nil {
		d.registry.Subscribe(identity, sink)
	}
	d.publish(event.PresenceChanged{Identity: identity, Online: true})
	return nil
}

// Disconnect is invoked by the connection source exactly once per
// teardown. It has no caller-visible result.
func (d *Dispatcher) Disconnect(identity domain.Identity) {
	d.registry.Unsubscribe(identity)
	call := contract.CallContext{Sender: identity, Timestamp: time.Now().UTC()}
	if err := d.directory.HandleDisconnect(call); err != nil {
		d.log.Error("Disconnect lifecycle failed", "identity", identity, "err", err)
		return
	}
	d.publish(event.PresenceChanged{Identity: identity, Online: false})
}

func (d *Dispatcher) publish(evt event.DomainEvent) {
	select {
	case d.events <- evt:
	default:
		d.log.Warn("Event channel full, dropping event", "event", evt.Name())
	}
}
