package repositories

import (
	"chat-core/contract"
	"chat-core/domain"
	apperrors "chat-core/errors"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const (
	userPrefix    = "user:"
	messagePrefix = "msg:"
	messageSeqKey = "seq:message"
)

// BadgerStore is the durable contract.Store. One call to Update is one
// badger transaction, so an entry point's reads and writes commit
// atomically or not at all.
//
// Keys: "user:{identity}" for directory rows, "msg:{seq}" for ledger
// rows. The sequence number is zero padded to 20 digits so a plain
// prefix scan returns the ledger in insertion order, regardless of the
// caller-supplied timestamps inside the rows.
type BadgerStore struct {
	db  *badger.DB
	seq *badger.Sequence
	log *slog.Logger
}

func NewBadgerStore(db *badger.DB, log *slog.Logger) (*BadgerStore, error) {
	seq, err := db.GetSequence([]byte(messageSeqKey), 128)
	if err != nil {
		return nil, fmt.Errorf("message sequence: %w", err)
	}
	return &BadgerStore{db: db, seq: seq, log: log}, nil
}

// Close releases the unclaimed part of the message sequence. Gaps in the
// sequence are harmless, only the relative order matters.
func (s *BadgerStore) Close() error {
	return s.seq.Release()
}

func (s *BadgerStore) Update(fn func(tx contract.Tx) error) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return fn(&badgerTx{store: s, txn: txn})
	})
}

// Users returns every directory row, for tests and the inspect tool.
func (s *BadgerStore) Users() ([]domain.User, error) {
	return ReadUsers(s.db)
}

// Messages returns the full ledger in insertion order.
func (s *BadgerStore) Messages() ([]domain.Message, error) {
	return ReadMessages(s.db)
}

type badgerTx struct {
	store *BadgerStore
	txn   *badger.Txn
}

func (t *badgerTx) Users() contract.UserTable       { return badgerUserTable{t} }
func (t *badgerTx) Messages() contract.MessageTable { return badgerMessageTable{t} }

// userRow is the on-disk shape of a directory row.
type userRow struct {
	Identity string  `json:"identity"`
	Name     *string `json:"name,omitempty"`
	Online   bool    `json:"online"`
}

// messageRow is the on-disk shape of a ledger row. Sent is kept as
// nanoseconds so the caller timestamp round-trips exactly.
type messageRow struct {
	Sender string `json:"sender"`
	Sent   int64  `json:"sent"`
	Text   string `json:"text"`
}

func userKey(identity domain.Identity) []byte {
	return []byte(userPrefix + string(identity))
}

type badgerUserTable struct{ tx *badgerTx }

func (u badgerUserTable) Get(identity domain.Identity) (domain.User, bool, error) {
	item, err := u.tx.txn.Get(userKey(identity))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, err
	}
	var row userRow
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &row)
	})
	if err != nil {
		return domain.User{}, false, err
	}
	return toUser(row), true, nil
}

func (u badgerUserTable) Insert(user domain.User) error {
	key := userKey(user.Identity)
	if _, err := u.tx.txn.Get(key); err == nil {
		return apperrors.ErrRowExists
	} else if !errors.Is(err, badger.ErrKeyNotFound) {
		return err
	}
	return u.set(key, user)
}

func (u badgerUserTable) Replace(identity domain.Identity, user domain.User) error {
	return u.set(userKey(identity), user)
}

func (u badgerUserTable) set(key []byte, user domain.User) error {
	data, err := json.Marshal(fromUser(user))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return u.tx.txn.Set(key, data)
}

type badgerMessageTable struct{ tx *badgerTx }

func (m badgerMessageTable) Append(message domain.Message) error {
	n, err := m.tx.store.seq.Next()
	if err != nil {
		return fmt.Errorf("message sequence: %w", err)
	}
	data, err := json.Marshal(fromMessage(message))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	key := fmt.Sprintf("%s%020d", messagePrefix, n)
	return m.tx.txn.Set([]byte(key), data)
}

// ReadUsers scans every directory row. Shared with the inspect tool,
// which opens the database read-only.
func ReadUsers(db *badger.DB) ([]domain.User, error) {
	var users []domain.User
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(userPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var row userRow
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &row)
			})
			if err != nil {
				return err
			}
			users = append(users, toUser(row))
		}
		return nil
	})
	return users, err
}

// ReadMessages scans the ledger. Key padding makes the scan order the
// insertion order.
func ReadMessages(db *badger.DB) ([]domain.Message, error) {
	var messages []domain.Message
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(messagePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var row messageRow
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &row)
			})
			if err != nil {
				return err
			}
			messages = append(messages, toMessage(row))
		}
		return nil
	})
	return messages, err
}

func fromUser(user domain.User) userRow {
	return userRow{
		Identity: string(user.Identity),
		Name:     user.Name,
		Online:   user.Online,
	}
}

func toUser(row userRow) domain.User {
	return domain.User{
		Identity: domain.Identity(row.Identity),
		Name:     row.Name,
		Online:   row.Online,
	}
}

func fromMessage(message domain.Message) messageRow {
	return messageRow{
		Sender: string(message.Sender),
		Sent:   message.Sent.UnixNano(),
		Text:   message.Text,
	}
}

func toMessage(row messageRow) domain.Message {
	return domain.Message{
		Sender: domain.Identity(row.Sender),
		Sent:   time.Unix(0, row.Sent).UTC(),
		Text:   row.Text,
	}
}
