//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-core/domain"
	"chat-core/domain/event"
	"context"
	"reflect"
	"time"
)

// CallContext carries the pre-authenticated caller identity and the
// timestamp the invocation layer assigned to the call. The core trusts
// both; it never re-authenticates or re-stamps.
type CallContext struct {
	Sender    domain.Identity
	Timestamp time.Time
}

// UserTable is the directory half of the store, keyed by identity.
type UserTable interface {
	// Get returns the row for identity, with ok=false when no row exists.
	Get(identity domain.Identity) (domain.User, bool, error)
	// Insert creates the row and fails with errors.ErrRowExists when the
	// key is already taken.
	Insert(user domain.User) error
	// Replace overwrites the whole row. The caller reads the old row
	// first and builds the new one in memory; there is no merge.
	Replace(identity domain.Identity, user domain.User) error
}

// MessageTable is the append-only ledger half of the store. Append order
// is the ledger's total order.
type MessageTable interface {
	Append(message domain.Message) error
}

// Tx groups the tables visible to one entry point. Everything done
// through it applies atomically or not at all.
type Tx interface {
	Users() UserTable
	Messages() MessageTable
}

// Store runs one entry point's reads and writes as a single transaction.
// Returning an error from fn discards every staged write.
type Store interface {
	Update(fn func(tx Tx) error) error
}

// IDirectory resolves and mutates presence and naming state.
type IDirectory interface {
	SetName(call CallContext, cmd domain.SetNameCommand) error
	HandleConnect(call CallContext) error
	HandleDisconnect(call CallContext) error
}

// ILedger validates and appends chat messages.
type ILedger interface {
	SendMessage(call CallContext, cmd domain.SendMessageCommand) error
}

// EventSink consumes committed-change events fanned out to clients.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry tracks the sink of every connected identity.
type IRegistry interface {
	Subscribe(identity domain.Identity, sink EventSink)
	Unsubscribe(identity domain.Identity)
	Sinks() []EventSink
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// lifecycle events, avoiding manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
