package repositories

import (
	"chat-core/contract"
	"chat-core/domain"
	"chat-core/errors"
	"sync"
)

// MemoryStore is an in-memory contract.Store. It backs the ephemeral
// runtime mode and lets entry points be tested without BadgerDB.
// A single mutex serializes transactions, which also gives per-key
// serializability on identities for free.
type MemoryStore struct {
	mu       sync.Mutex
	users    map[domain.Identity]domain.User
	messages []domain.Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[domain.Identity]domain.User)}
}

// Update stages every write and applies the lot only when fn succeeds,
// so a failing entry point never partially applies.
func (s *MemoryStore) Update(fn func(tx contract.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{store: s, upserts: make(map[domain.Identity]domain.User)}
	if err := fn(tx); err != nil {
		return err
	}
	for identity, user := range tx.upserts {
		s.users[identity] = user
	}
	s.messages = append(s.messages, tx.appends...)
	return nil
}

// User returns a snapshot of one directory row.
func (s *MemoryStore) User(identity domain.Identity) (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[identity]
	return user, ok
}

// UserCount returns the number of directory rows.
func (s *MemoryStore) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// Messages returns a copy of the ledger in insertion order.
func (s *MemoryStore) Messages() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

type memTx struct {
	store   *MemoryStore
	upserts map[domain.Identity]domain.User
	appends []domain.Message
}

func (t *memTx) Users() contract.UserTable       { return memUserTable{t} }
func (t *memTx) Messages() contract.MessageTable { return memMessageTable{t} }

type memUserTable struct{ tx *memTx }

// Get reads through staged writes first so a transaction sees its own
// mutations.
func (u memUserTable) Get(identity domain.Identity) (domain.User, bool, error) {
	if user, ok := u.tx.upserts[identity]; ok {
		return user, true, nil
	}
	user, ok := u.tx.store.users[identity]
	return user, ok, nil
}

func (u memUserTable) Insert(user domain.User) error {
	if _, ok, _ := u.Get(user.Identity); ok {
		return errors.ErrRowExists
	}
	u.tx.upserts[user.Identity] = user
	return nil
}

func (u memUserTable) Replace(identity domain.Identity, user domain.User) error {
	u.tx.upserts[identity] = user
	return nil
}

type memMessageTable struct{ tx *memTx }

func (m memMessageTable) Append(message domain.Message) error {
	m.tx.appends = append(m.tx.appends, message)
	return nil
}
