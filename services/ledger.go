package services

import (
	"chat-core/contract"
	"chat-core/domain"
	"chat-core/errors"
	"chat-core/observability"
	"log/slog"
)

// LedgerService owns the append-only Message table. Insertion order is
// the ledger's total order; there is no reordering, deduplication, or
// merge logic.
type LedgerService struct {
	store    contract.Store
	log      *slog.Logger
	recorder *observability.Recorder
}

func NewLedgerService(store contract.Store, log *slog.Logger, recorder *observability.Recorder) *LedgerService {
	return &LedgerService{store: store, log: log, recorder: recorder}
}

// SendMessage appends one row attributed to the caller, stamped with the
// call timestamp. Any non-empty text is accepted, control characters
// included; there is no length cap, content filter, or rate limit.
// The sender is not required to have a directory row.
func (s *LedgerService) SendMessage(call contract.CallContext, cmd domain.SendMessageCommand) error {
	if err := validate.Struct(cmd); err != nil {
		return errors.ErrEmptyMessage
	}
	err := s.store.Update(func(tx contract.Tx) error {
		return tx.Messages().Append(domain.Message{
			Sender: call.Sender,
			Sent:   call.Timestamp,
			Text:   cmd.Text,
		})
	})
	if err != nil {
		return err
	}
	// Best-effort diagnostic record, after the commit so it can never
	// influence the transaction.
	s.recorder.MessageAccepted(cmd.Text)
	return nil
}
