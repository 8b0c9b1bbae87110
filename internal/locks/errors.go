// Package locks implements the lock-back engine: it evaluates privileged
// lock requests against the role hierarchy, applies normal or retaliatory
// locks, and decides who may unlock an existing entry.
//
// Failure cases surface as the sentinel errors below so callers can map them
// to typed results; nothing in this package ever panics across the boundary.
package locks

import "errors"

var (
	// ErrNoActiveLock is returned when an unlock targets a (chat, user) pair
	// without an active lock entry.
	ErrNoActiveLock = errors.New("no active lock")

	// ErrUnlockForbidden is returned when the requester's role does not
	// satisfy the entry's unlock authorization tier. The check never mutates
	// state.
	ErrUnlockForbidden = errors.New("unlock not permitted for requester role")
)
