package observability

import (
	"log/slog"
	"sync/atomic"
)

// Stats is a snapshot of the recorder's counters.
type Stats struct {
	MessagesAccepted   uint64 `json:"messages_accepted"`
	Connects           uint64 `json:"connects"`
	Disconnects        uint64 `json:"disconnects"`
	UnknownDisconnects uint64 `json:"unknown_disconnects"`
}

// Recorder is the observability sink the state-mutation core reports to.
// Everything here is fire-and-forget: a record never influences whether
// the originating transaction commits.
//
// Recorder is safe for concurrent use by multiple goroutines.
type Recorder struct {
	log                *slog.Logger
	messagesAccepted   atomic.Uint64
	connects           atomic.Uint64
	disconnects        atomic.Uint64
	unknownDisconnects atomic.Uint64
}

func NewRecorder(log *slog.Logger) *Recorder {
	return &Recorder{log: log}
}

// MessageAccepted logs the text of a message that passed validation.
func (r *Recorder) MessageAccepted(text string) {
	r.messagesAccepted.Add(1)
	r.log.Info(text)
}

func (r *Recorder) Connected() {
	r.connects.Add(1)
}

func (r *Recorder) Disconnected() {
	r.disconnects.Add(1)
}

// UnknownDisconnect records a disconnect for an identity with no
// directory row. Unexpected under correct dispatch, but tolerated.
func (r *Recorder) UnknownDisconnect(identity string) {
	r.unknownDisconnects.Add(1)
	r.log.Warn("Disconnect event for unknown user", "identity", identity)
}

func (r *Recorder) Snapshot() Stats {
	return Stats{
		MessagesAccepted:   r.messagesAccepted.Load(),
		Connects:           r.connects.Load(),
		Disconnects:        r.disconnects.Load(),
		UnknownDisconnects: r.unknownDisconnects.Load(),
	}
}
