package services

import (
	"chat-core/contract"
	"chat-core/domain"
	"chat-core/errors"
	"chat-core/observability"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var validate = validator.New()

// DirectoryService owns the User table semantics: at most one row per
// identity, identity immutable, name set-only, online flag driven by the
// connection lifecycle. Every method is one store transaction.
type DirectoryService struct {
	store    contract.Store
	log      *slog.Logger
	recorder *observability.Recorder
}

func NewDirectoryService(store contract.Store, log *slog.Logger, recorder *observability.Recorder) *DirectoryService {
	return &DirectoryService{store: store, log: log, recorder: recorder}
}

// SetName records the caller's display name, stored verbatim. Duplicates
// of other users' names and surrounding whitespace pass through; display
// concerns belong to the reading side.
func (s *DirectoryService) SetName(call contract.CallContext, cmd domain.SetNameCommand) error {
	if err := validate.Struct(cmd); err != nil {
		return errors.ErrEmptyName
	}
	return s.store.Update(func(tx contract.Tx) error {
		user, ok, err := tx.Users().Get(call.Sender)
		if err != nil {
			return err
		}
		if !ok {
			return errors.ErrUnknownUser
		}
		user.Name = lo.ToPtr(cmd.Name)
		return tx.Users().Replace(call.Sender, user)
	})
}

// HandleConnect flips the caller online, creating the directory row the
// first time an identity is seen. Reconnecting while already online is a
// value-level no-op that still writes the row.
//
// An insert collision here means the lifecycle source broke its
// "one connect sequence observes no row" guarantee; it surfaces as
// errors.ErrRowExists rather than a user-facing rejection.
func (s *DirectoryService) HandleConnect(call contract.CallContext) error {
	err := s.store.Update(func(tx contract.Tx) error {
		user, ok, err := tx.Users().Get(call.Sender)
		if err != nil {
			return err
		}
		if ok {
			user.Online = true
			return tx.Users().Replace(call.Sender, user)
		}
		return tx.Users().Insert(domain.User{Identity: call.Sender, Online: true})
	})
	if err != nil {
		return err
	}
	s.recorder.Connected()
	return nil
}

// HandleDisconnect flips the caller offline, preserving identity and
// name. A disconnect for an identity with no row should be unreachable,
// but is tolerated: a warning record, no mutation, no error.
func (s *DirectoryService) HandleDisconnect(call contract.CallContext) error {
	unknown := false
	err := s.store.Update(func(tx contract.Tx) error {
		user, ok, err := tx.Users().Get(call.Sender)
		if err != nil {
			return err
		}
		if !ok {
			unknown = true
			return nil
		}
		user.Online = false
		return tx.Users().Replace(call.Sender, user)
	})
	if err != nil {
		return err
	}
	if unknown {
		s.recorder.UnknownDisconnect(string(call.Sender))
		return nil
	}
	s.recorder.Disconnected()
	return nil
}
