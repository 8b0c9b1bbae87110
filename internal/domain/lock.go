package domain

import "time"

// LockEntry is a restriction placed on a (chat, user) pair. While active, the
// user's messages in that chat are suppressed by the moderation layer.
// Entries are deactivated on unlock, never deleted, so the row history doubles
// as an audit trail.
//
// Invariants:
//   - At most one active entry exists per (ChatID, UserID); re-locking the
//     same pair replaces (deactivates) the previous entry.
//   - No entry is ever created against a user resolving to RoleDeveloper;
//     such attempts are redirected against the issuer instead.
type LockEntry struct {
	ID     string `json:"id"      gorm:"type:char(36);primaryKey"`
	ChatID int64  `json:"chat_id" gorm:"not null;index:idx_chat_locks,priority:1"`
	UserID int64  `json:"user_id" gorm:"not null;index:idx_chat_locks,priority:2"`
	Active bool   `json:"active"  gorm:"not null;index:idx_chat_locks,priority:3"`
	Reason string `json:"reason"  gorm:"type:varchar(255);not null"`

	// RequiresDeveloperUnlock marks retaliatory locks issued for an attempt
	// on a Developer; only a Developer may deactivate them.
	RequiresDeveloperUnlock bool `json:"requires_developer_unlock" gorm:"not null"`

	// ProtectedRole is the role of the user the issuer tried to lock when
	// this entry is a lock-back, nil for ordinary locks.
	ProtectedRole *Role `json:"protected_role,omitempty" gorm:"type:varchar(16)"`

	// ProtectedUserID is the intended target the lock-back shielded,
	// nil for ordinary locks.
	ProtectedUserID *int64 `json:"protected_user_id,omitempty"`

	CreatedAt     time.Time  `json:"created_at" gorm:"index"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeactivatedAt *time.Time `json:"deactivated_at,omitempty"`
}

// TableName returns the database table name for LockEntry.
func (LockEntry) TableName() string { return "lock_entries" }

// LockOutcome names the decision the lock-back engine reached for a request.
type LockOutcome string

const (
	// OutcomeLocked means the intended target was locked.
	OutcomeLocked LockOutcome = "locked"
	// OutcomeLockedBack means the issuer was locked in place of a protected
	// target.
	OutcomeLockedBack LockOutcome = "locked_back"
	// OutcomeNoop means the request was rejected without any mutation.
	OutcomeNoop LockOutcome = "noop"
)

// LockResult is the typed decision returned by the lock-back engine. The
// messaging layer renders it; the engine never formats user-facing text.
type LockResult struct {
	Outcome LockOutcome `json:"outcome"`

	// LockedUserID is the user an entry was created against: the target for
	// OutcomeLocked, the issuer for OutcomeLockedBack, zero for OutcomeNoop.
	LockedUserID int64 `json:"locked_user_id,omitempty"`

	// ProtectedRole is set for OutcomeLockedBack to the role that triggered
	// the redirect (RoleDeveloper or RoleOwner).
	ProtectedRole *Role `json:"protected_role,omitempty"`

	// Entry is the lock entry written by the decision, nil for OutcomeNoop.
	Entry *LockEntry `json:"entry,omitempty"`
}

// LockStats summarizes the active lock population across all chats.
type LockStats struct {
	ActiveLocks    int64 `json:"active_locks"`
	ChatsWithLocks int64 `json:"chats_with_locks"`
}
