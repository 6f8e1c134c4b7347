package repositories

import (
	"chat-core/contract"
	"chat-core/domain"
	apperrors "chat-core/errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_Memory_Update_Is_Atomic(t *testing.T) {
	req := require.New(t)
	store := NewMemoryStore()

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
	req.Equal(0, store.UserCount())
	req.Empty(store.Messages())
}

func Test_Memory_Tx_Reads_Its_Own_Writes(t *testing.T) {
	req := require.New(t)
	store := NewMemoryStore()

	err := store.Update(func(tx contract.Tx) error {
		if err := tx.Users().Insert(domain.User{Identity: "alice", Online: true}); err != nil {
			return err
		}
		user, ok, err := tx.Users().Get("alice")
		req.True(ok)
		req.True(user.Online)
		return err
	})
	req.NoError(err)
}

func Test_Memory_Insert_Collision(t *testing.T) {
	req := require.New(t)
	store := NewMemoryStore()

	err := store.Update(func(tx contract.Tx) error {
		return tx.Users().Insert(domain.User{Identity: "alice", Online: true})
	})
	req.NoError(err)

	err = store.Update(func(tx contract.Tx) error {
		return tx.Users().Insert(domain.User{Identity: "alice", Online: false})
	})
	req.ErrorIs(err, apperrors.ErrRowExists)

	user, ok := store.User("alice")
	req.True(ok)
	req.True(user.Online)
}

func Test_Memory_Collision_Within_One_Tx(t *testing.T) {
	req := require.New(t)
	store := NewMemoryStore()

	err := store.Update(func(tx contract.Tx) error {
		if err := tx.Users().Insert(domain.User{Identity: "alice", Online: true}); err != nil {
			return err
		}
		return tx.Users().Insert(domain.User{Identity: "alice", Online: true})
	})
	req.ErrorIs(err, apperrors.ErrRowExists)
	req.Equal(0, store.UserCount())
}
