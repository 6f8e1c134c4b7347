package services

import (
	"chat-core/contract"
	"chat-core/domain"
	"chat-core/errors"
	"chat-core/mocks"
	"chat-core/observability"
	"chat-core/repositories"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newDirectory(store contract.Store) *DirectoryService {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	return NewDirectoryService(store, log, observability.NewRecorder(log))
}

func call(identity string) contract.CallContext {
	return callAt(identity, time.Now().UTC())
}

func callAt(identity string, timestamp time.Time) contract.CallContext {
	return contract.CallContext{Sender: domain.Identity(identity), Timestamp: timestamp}
}

func TestDirectoryService_SetName(t *testing.T) {
	t.Run("should reject an empty name without touching the store", func(t *testing.T) {
		req := require.New(t)
		store := repositories.NewMemoryStore()
		svc := newDirectory(store)

		err := svc.SetName(call("alice"), domain.SetNameCommand{Name: ""})

		req.ErrorIs(err, errors.ErrEmptyName)
		req.ErrorIs(err, errors.ErrInvalidArgument)
		req.Equal(0, store.UserCount())
	})

	t.Run("should fail with not found for an identity with no row", func(t *testing.T) {
		req := require.New(t)
		svc := newDirectory(repositories.NewMemoryStore())

		err := svc.SetName(call("ghost"), domain.SetNameCommand{Name: "Casper"})

		req.ErrorIs(err, errors.ErrUnknownUser)
		req.ErrorIs(err, errors.ErrNotFound)
	})

	t.Run("should store the name verbatim and preserve the other fields", func(t *testing.T) {
		req := require.New(t)
		store := repositories.NewMemoryStore()
		svc := newDirectory(store)
		req.NoError(svc.HandleConnect(call("alice")))

		// Whitespace and duplicates pass through untouched
		name := "  Alice \t"
		req.NoError(svc.SetName(call("alice"), domain.SetNameCommand{Name: name}))

		user, ok := store.User("alice")
		req.True(ok)
		req.Equal(domain.Identity("alice"), user.Identity)
		req.True(user.Online)
		req.NotNil(user.Name)
		req.Equal(name, *user.Name)
	})

	t.Run("should replace a previous name, never clear it", func(t *testing.T) {
		req := require.New(t)
		store := repositories.NewMemoryStore()
		svc := newDirectory(store)
		req.NoError(svc.HandleConnect(call("alice")))
		req.NoError(svc.SetName(call("alice"), domain.SetNameCommand{Name: "Alice"}))

		req.NoError(svc.SetName(call("alice"), domain.SetNameCommand{Name: "Alicia"}))

		user, _ := store.User("alice")
		req.Equal("Alicia", user.DisplayName())
	})

	t.Run("should never open a transaction for invalid input", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		mockStore := mocks.NewMockStore(ctrl)
		svc := newDirectory(mockStore)

		mockStore.EXPECT().Update(gomock.Any()).Times(0)

		err := svc.SetName(call("alice"), domain.SetNameCommand{Name: ""})
		require.ErrorIs(t, err, errors.ErrInvalidArgument)
	})
}

func TestDirectoryService_Lifecycle(t *testing.T) {
	t.Run("first connect creates an online row with no name", func(t *testing.T) {
		req := require.New(t)
		store := repositories.NewMemoryStore()
		svc := newDirectory(store)

		req.NoError(svc.HandleConnect(call("alice")))

		user, ok := store.User("alice")
		req.True(ok)
		req.Equal(domain.Identity("alice"), user.Identity)
		req.Nil(user.Name)
		req.True(user.Online)
		req.Equal(1, store.UserCount())
	})

	t.Run("reconnect preserves the name and flips online", func(t *testing.T) {
		req := require.New(t)
		store := repositories.NewMemoryStore()
		svc := newDirectory(store)
		req.NoError(svc.HandleConnect(call("alice")))
		req.NoError(svc.SetName(call("alice"), domain.SetNameCommand{Name: "Alice"}))
		req.NoError(svc.HandleDisconnect(call("alice")))

		req.NoError(svc.HandleConnect(call("alice")))

		user, _ := store.User("alice")
		req.Equal("Alice", user.DisplayName())
		req.True(user.Online)
		req.Equal(1, store.UserCount())
	})

	t.Run("connect is idempotent on row content", func(t *testing.T) {
		req := require.New(t)
		store := repositories.NewMemoryStore()
		svc := newDirectory(store)

		req.NoError(svc.HandleConnect(call("alice")))
		first, _ := store.User("alice")

		req.NoError(svc.HandleConnect(call("alice")))
		second, _ := store.User("alice")

		req.Equal(first, second)
		req.Equal(1, store.UserCount())
	})

	t.Run("disconnect flips offline and preserves identity and name", func(t *testing.T) {
		req := require.New(t)
		store := repositories.NewMemoryStore()
		svc := newDirectory(store)
		req.NoError(svc.HandleConnect(call("alice")))
		req.NoError(svc.SetName(call("alice"), domain.SetNameCommand{Name: "Alice"}))

		req.NoError(svc.HandleDisconnect(call("alice")))

		user, ok := store.User("alice")
		req.True(ok)
		req.Equal(domain.Identity("alice"), user.Identity)
		req.Equal("Alice", user.DisplayName())
		req.False(user.Online)
	})

	t.Run("disconnect for an unknown identity mutates nothing", func(t *testing.T) {
		req := require.New(t)
		store := repositories.NewMemoryStore()
		log := logs.GetLoggerFromLevel(slog.LevelDebug)
		recorder := observability.NewRecorder(log)
		svc := NewDirectoryService(store, log, recorder)

		req.NoError(svc.HandleDisconnect(call("ghost")))

		req.Equal(0, store.UserCount())
		req.Equal(uint64(1), recorder.Snapshot().UnknownDisconnects)
		req.Equal(uint64(0), recorder.Snapshot().Disconnects)
	})
}
