// Package domain contains core concepts of the presence system.
// This file defines the User directory row and its invariants.
// No runtime, storage, or UI logic should be added here.
package domain

// Identity is the opaque principal identifier attached to every call.
// It is authenticated upstream; this core only keys state by it.
type Identity string

// User is a directory row keyed by Identity.
// Identity never changes once the row exists. Name stays nil until the
// user names itself and is only ever replaced afterwards, never cleared.
type User struct {
	Identity Identity
	Name     *string
	Online   bool
}

// DisplayName returns the name the user chose, or empty if unset.
func (u User) DisplayName() string {
	if u.Name == nil {
		return ""
	}
	return *u.Name
}
