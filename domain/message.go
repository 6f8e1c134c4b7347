// Package domain contains core concepts of the presence system.
// This file defines Message ledger entries.
// Messages are immutable and validated before insertion.
package domain

import (
	"time"
)

// Message is an immutable ledger entry.
// Sender is not required to have a directory row. Sent is the timestamp
// the invocation layer assigned to the call, recorded verbatim.
type Message struct {
	Sender Identity
	Sent   time.Time
	Text   string
}
