package repositories

import (
	"chat-core/contract"
	"chat-core/domain"
	apperrors "chat-core/errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func newBadgerStore(t *testing.T) *BadgerStore {
	t.Helper()
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := NewBadgerStore(db, slog.Default())
	req.NoError(err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func Test_User_Insert_Get_Replace(t *testing.T) {
	req := require.New(t)
	store := newBadgerStore(t)

	err := store.Update(func(tx contract.Tx) error {
		return tx.Users().Insert(domain.User{Identity: "alice", Online: true})
	})
	req.NoError(err)

	var fetched domain.User
	err = store.Update(func(tx contract.Tx) error {
		user, ok, err := tx.Users().Get("alice")
		req.True(ok)
		fetched = user
		return err
	})
	req.NoError(err)
	req.Equal(domain.User{Identity: "alice", Online: true}, fetched)
	req.Nil(fetched.Name)

	// Whole-row replace, read-then-build like the services do
	fetched.Name = lo.ToPtr("Alice")
	fetched.Online = false
	err = store.Update(func(tx contract.Tx) error {
		return tx.Users().Replace("alice", fetched)
	})
	req.NoError(err)

	users, err := store.Users()
	req.NoError(err)
	req.Len(users, 1)
	req.Equal("Alice", users[0].DisplayName())
	req.False(users[0].Online)
}

func Test_User_Get_Missing(t *testing.T) {
	req := require.New(t)
	store := newBadgerStore(t)

	err := store.Update(func(tx contract.Tx) error {
		_, ok, err := tx.Users().Get("nobody")
		req.False(ok)
		return err
	})
	req.NoError(err)
}

func Test_User_Insert_Collision(t *testing.T) {
	req := require.New(t)
	store := newBadgerStore(t)

	err := store.Update(func(tx contract.Tx) error {
		return tx.Users().Insert(domain.User{Identity: "alice", Online: true})
	})
	req.NoError(err)

	err = store.Update(func(tx contract.Tx) error {
		return tx.Users().Insert(domain.User{Identity: "alice", Online: false})
	})
	req.ErrorIs(err, apperrors.ErrRowExists)

	// The colliding transaction must not have replaced the row
	users, err := store.Users()
	req.NoError(err)
	req.Len(users, 1)
	req.True(users[0].Online)
}

func Test_Message_Order_Is_Insertion_Order(t *testing.T) {
	req := require.New(t)
	store := newBadgerStore(t)
	at := time.Now().UTC()

	// Equal and regressing timestamps must not reorder the ledger
	inserted := []domain.Message{
		{Sender: "alice", Sent: at, Text: "first"},
		{Sender: "bob", Sent: at, Text: "second"},
		{Sender: "alice", Sent: at.Add(-time.Hour), Text: "third"},
	}
	for _, message := range inserted {
		err := store.Update(func(tx contract.Tx) error {
			return tx.Messages().Append(message)
		})
		req.NoError(err)
	}

	messages, err := store.Messages()
	req.NoError(err)
	req.Len(messages, len(inserted))
	for i, message := range messages {
		req.Equal(inserted[i].Sender, message.Sender)
		req.Equal(inserted[i].Text, message.Text)
		req.True(inserted[i].Sent.Equal(message.Sent), "timestamp mismatch at %d", i)
	}
}

func Test_Message_Text_Roundtrip(t *testing.T) {
	req := require.New(t)
	store := newBadgerStore(t)
	text := "héllo \x01\t\r\n wörld"

	err := store.Update(func(tx contract.Tx) error {
		return tx.Messages().Append(domain.Message{Sender: "alice", Sent: time.Now().UTC(), Text: text})
	})
	req.NoError(err)

	messages, err := store.Messages()
	req.NoError(err)
	req.Equal(text, messages[0].Text)
}

func Test_Update_Is_Atomic(t *testing.T) {
	req := require.New(t)
	store := newBadgerStore(t)

	err := store.Update(func(tx contract.Tx) error {
		if err := tx.Users().Insert(domain.User{Identity: "alice", Online: true}); err != nil {
			return err
		}
		if err := tx.Messages().Append(domain.Message{Sender: "alice", Sent: time.Now().UTC(), Text: "hi"}); err != nil {
			return err
		}
		return fmt.Errorf("abort")
	})
	req.Error(err)

	users, err := store.Users()
	req.NoError(err)
	req.Empty(users)
	messages, err := store.Messages()
	req.NoError(err)
	req.Empty(messages)
}
