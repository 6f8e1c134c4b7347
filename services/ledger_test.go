package services

import (
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

func newLedger(store *repositories.MemoryStore) (*LedgerService, *observability.Recorder) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	recorder := observability.NewRecorder(log)
	return NewLedgerService(store, log, recorder), recorder
}

func TestLedgerService_SendMessage(t *testing.T) {
	t.Run("should reject an empty message and leave the ledger unchanged", func(t *testing.T) {
		req := require.New(t)
		store := repositories.NewMemoryStore()
		svc, _ := newLedger(store)

		err := svc.SendMessage(call("bob"), domain.SendMessageCommand{Text: ""})

		req.ErrorIs(err, errors.ErrEmptyMessage)
		req.ErrorIs(err, errors.ErrInvalidArgument)
		req.Empty(store.Messages())
	})

	t.Run("should append exactly one row with the caller identity and timestamp", func(t *testing.T) {
		req := require.New(t)
		store := repositories.NewMemoryStore()
		svc, recorder := newLedger(store)
		sent := time.Date(2026, 3, 14, 9, 26, 53, 589793238, time.UTC)

		err := svc.SendMessage(callAt("bob", sent), domain.SendMessageCommand{Text: "hi"})

		req.NoError(err)
		messages := store.Messages()
		req.Len(messages, 1)
		req.Equal(domain.Message{Sender: "bob", Sent: sent, Text: "hi"}, messages[0])
		req.Equal(uint64(1), recorder.Snapshot().MessagesAccepted)
	})

	t.Run("should accept a sender with no directory row", func(t *testing.T) {
		req := require.New(t)
		store := repositories.NewMemoryStore()
		svc, _ := newLedger(store)

		err := svc.SendMessage(call("stranger"), domain.SendMessageCommand{Text: "anyone here?"})

		req.NoError(err)
		req.Len(store.Messages(), 1)
	})

	t.Run("should accept control characters verbatim", func(t *testing.T) {
		req := require.New(t)
		store := repositories.NewMemoryStore()
		svc, _ := newLedger(store)
		text := "a\x00b\r\n\tc"

		req.NoError(svc.SendMessage(call("bob"), domain.SendMessageCommand{Text: text}))

		req.Equal(text, store.Messages()[0].Text)
	})

	t.Run("should keep prior rows untouched and append last", func(t *testing.T) {
		req := require.New(t)
		store := repositories.NewMemoryStore()
		svc, _ := newLedger(store)

		for _, text := range []string{"one", "two", "three"} {
			req.NoError(svc.SendMessage(call("bob"), domain.SendMessageCommand{Text: text}))
		}

		messages := store.Messages()
		req.Len(messages, 3)
		req.Equal("one", messages[0].Text)
		req.Equal("two", messages[1].Text)
		req.Equal("three", messages[2].Text)
	})

	t.Run("should never open a transaction for invalid input", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		mockStore := mocks.NewMockStore(ctrl)
		log := logs.GetLoggerFromLevel(slog.LevelDebug)
		svc := NewLedgerService(mockStore, log, observability.NewRecorder(log))

		mockStore.EXPECT().Update(gomock.Any()).Times(0)

		err := svc.SendMessage(call("bob"), domain.SendMessageCommand{Text: ""})
		require.ErrorIs(t, err, errors.ErrInvalidArgument)
	})
}
