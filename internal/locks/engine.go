package locks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/vanzoel/chatguard/internal/domain"
	"github.com/vanzoel/chatguard/internal/repo"
)

// DefaultReason is applied to ordinary locks issued without a reason.
const DefaultReason = "Locked by admin"

// Reasons recorded on retaliatory lock entries.
const (
	reasonLockedFounder    = "attempted to lock Founder"
	reasonLockedOrangDalam = "attempted to lock Orang Dalam"
)

// DefaultMaxLockAge is the cleanup horizon for ordinary locks.
const DefaultMaxLockAge = 30 * 24 * time.Hour

// RoleResolver classifies a (user, chat) pair; satisfied by *auth.Service.
type RoleResolver interface {
	Resolve(ctx context.Context, userID, chatID int64) domain.Role
}

// Store is the lock store contract the engine mutates. The package-level
// functions of internal/repo implement it over GORM via storeShim in the
// router, keeping the engine decoupled from the concrete persistence.
type Store interface {
	// Replace writes entry as the single active lock for its (chat, user)
	// pair, deactivating any previous active entry atomically.
	Replace(ctx context.Context, entry *domain.LockEntry) error
	// GetActive fetches the active lock for the pair, or repo.ErrNotFound.
	GetActive(ctx context.Context, chatID, userID int64) (*domain.LockEntry, error)
	// Deactivate marks the pair's active lock inactive, keeping the row.
	Deactivate(ctx context.Context, chatID, userID int64, at time.Time) error
	// CountActive returns the number of active locks in a chat.
	CountActive(ctx context.Context, chatID int64) (int64, error)
	// ListActivePage returns a page of active locks in a chat, newest first.
	ListActivePage(ctx context.Context, chatID int64, offset, limit int) ([]domain.LockEntry, error)
	// DeactivateChat deactivates every active lock in a chat.
	DeactivateChat(ctx context.Context, chatID int64, at time.Time) (int64, error)
	// DeactivateStale deactivates ordinary active locks created before cutoff.
	DeactivateStale(ctx context.Context, cutoff, at time.Time) (int64, error)
	// Stats aggregates the active lock population.
	Stats(ctx context.Context) (domain.LockStats, error)
}

// Engine evaluates lock requests against the hierarchy. Rule evaluation and
// the resulting store mutation run under a single mutex so concurrent
// requests against the same target cannot interleave into inconsistent
// entries. Role resolution happens before the critical section: it only
// reads the caches (or the provider) and never the lock store.
type Engine struct {
	mu     sync.Mutex
	store  Store
	roles  RoleResolver
	now    func() time.Time
	maxAge time.Duration
}

// NewEngine constructs an Engine. A nil now falls back to time.Now; a
// non-positive maxAge falls back to DefaultMaxLockAge.
func NewEngine(store Store, roles RoleResolver, now func() time.Time, maxAge time.Duration) *Engine {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxLockAge
	}
	return &Engine{store: store, roles: roles, now: now, maxAge: maxAge}
}

// RequestLock evaluates the precedence table, top-down, first match wins:
//
//  1. Developer issuer: lock the target, unless the target is also a
//     Developer, which is rejected outright (Developer immunity is absolute).
//  2. Developer target: lock back the issuer; only a Developer may unlock.
//  3. Owner issuer: lock the target.
//  4. Owner target: lock back the issuer; Owner or Developer may unlock.
//  5. Otherwise: ordinary lock on the target.
func (e *Engine) RequestLock(ctx context.Context, chatID, issuerID, targetID int64, reason string) (domain.LockResult, error) {
	tr := otel.Tracer("locks/Engine")
	ctx, span := tr.Start(ctx, "RequestLock",
		trace.WithAttributes(
			attribute.Int64("chat.id", chatID),
			attribute.Int64("issuer.id", issuerID),
			attribute.Int64("target.id", targetID),
		),
	)
	defer span.End()

	issuerRole := e.roles.Resolve(ctx, issuerID, chatID)
	targetRole := e.roles.Resolve(ctx, targetID, chatID)

	e.mu.Lock()
	defer e.mu.Unlock()

	var result domain.LockResult
	var err error

	switch {
	case issuerRole == domain.RoleDeveloper:
		if targetRole == domain.RoleDeveloper {
			result = domain.LockResult{Outcome: domain.OutcomeNoop}
			break
		}
		result, err = e.applyLock(ctx, chatID, targetID, reason)

	case targetRole == domain.RoleDeveloper:
		result, err = e.applyLockBack(ctx, chatID, issuerID, targetID, domain.RoleDeveloper)

	case issuerRole == domain.RoleOwner:
		result, err = e.applyLock(ctx, chatID, targetID, reason)

	case targetRole == domain.RoleOwner:
		result, err = e.applyLockBack(ctx, chatID, issuerID, targetID, domain.RoleOwner)

	default:
		result, err = e.applyLock(ctx, chatID, targetID, reason)
	}

	if err != nil {
		return domain.LockResult{}, err
	}

	lockDecisions.WithLabelValues(string(result.Outcome)).Inc()
	log.Info().
		Int64("chat_id", chatID).
		Int64("issuer_id", issuerID).
		Int64("target_id", targetID).
		Str("issuer_role", issuerRole.String()).
		Str("target_role", targetRole.String()).
		Str("outcome", string(result.Outcome)).
		Msg("lock request decided")
	return result, nil
}

// applyLock writes an ordinary lock against userID.
func (e *Engine) applyLock(ctx context.Context, chatID, userID int64, reason string) (domain.LockResult, error) {
	if reason == "" {
		reason = DefaultReason
	}
	entry := &domain.LockEntry{
		ChatID:    chatID,
		UserID:    userID,
		Reason:    reason,
		CreatedAt: e.now(),
	}
	if err := e.store.Replace(ctx, entry); err != nil {
		return domain.LockResult{}, err
	}
	return domain.LockResult{
		Outcome:      domain.OutcomeLocked,
		LockedUserID: userID,
		Entry:        entry,
	}, nil
}

// applyLockBack redirects the request into a retaliatory lock on the issuer,
// shielding the protected target.
func (e *Engine) applyLockBack(ctx context.Context, chatID, issuerID, targetID int64, protected domain.Role) (domain.LockResult, error) {
	reason := reasonLockedOrangDalam
	if protected == domain.RoleDeveloper {
		reason = reasonLockedFounder
	}
	protectedRole := protected
	protectedUser := targetID
	entry := &domain.LockEntry{
		ChatID:                  chatID,
		UserID:                  issuerID,
		Reason:                  reason,
		RequiresDeveloperUnlock: protected == domain.RoleDeveloper,
		ProtectedRole:           &protectedRole,
		ProtectedUserID:         &protectedUser,
		CreatedAt:               e.now(),
	}
	if err := e.store.Replace(ctx, entry); err != nil {
		return domain.LockResult{}, err
	}
	return domain.LockResult{
		Outcome:       domain.OutcomeLockedBack,
		LockedUserID:  issuerID,
		ProtectedRole: &protectedRole,
		Entry:         entry,
	}, nil
}

// CanUnlock reports whether a requester holding role may deactivate entry:
// developer-only for RequiresDeveloperUnlock entries, Owner or Developer for
// Owner-protected entries, and any Admin or above for ordinary locks.
func CanUnlock(role domain.Role, entry *domain.LockEntry) bool {
	switch {
	case entry.RequiresDeveloperUnlock:
		return role == domain.RoleDeveloper
	case entry.ProtectedRole != nil && *entry.ProtectedRole == domain.RoleOwner:
		return role.AtLeast(domain.RoleOwner)
	default:
		return role.AtLeast(domain.RoleAdmin)
	}
}

// RequestUnlock deactivates the active lock on (chatID, targetID) when the
// requester is authorized. It returns ErrNoActiveLock when nothing is locked
// and ErrUnlockForbidden when authorization fails; neither mutates state.
func (e *Engine) RequestUnlock(ctx context.Context, chatID, requesterID, targetID int64) error {
	requesterRole := e.roles.Resolve(ctx, requesterID, chatID)

	e.mu.Lock()
	defer e.mu.Unlock()

	entry, err := e.store.GetActive(ctx, chatID, targetID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoActiveLock
		}
		return err
	}

	if !CanUnlock(requesterRole, entry) {
		unlockDenials.Inc()
		return ErrUnlockForbidden
	}

	if err := e.store.Deactivate(ctx, chatID, targetID, e.now()); err != nil {
		return err
	}
	log.Info().
		Int64("chat_id", chatID).
		Int64("requester_id", requesterID).
		Int64("target_id", targetID).
		Msg("lock deactivated")
	return nil
}

// Status returns the active lock on (chatID, userID), or ErrNoActiveLock.
func (e *Engine) Status(ctx context.Context, chatID, userID int64) (*domain.LockEntry, error) {
	entry, err := e.store.GetActive(ctx, chatID, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveLock
		}
		return nil, err
	}
	return entry, nil
}

// ListActivePage returns a page of active locks in chatID together with the
// total count, newest first. Invalid paging values fall back to defaults.
func (e *Engine) ListActivePage(ctx context.Context, chatID int64, page, pageSize int) ([]domain.LockEntry, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	total, err := e.store.CountActive(ctx, chatID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.LockEntry{}, 0, nil
	}
	items, err := e.store.ListActivePage(ctx, chatID, (page-1)*pageSize, pageSize)
	return items, total, err
}

// ClearChat deactivates every active lock in chatID, returning the count.
func (e *Engine) ClearChat(ctx context.Context, chatID int64) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.DeactivateChat(ctx, chatID, e.now())
}

// Cleanup deactivates ordinary locks older than maxAge. Lock-backs are
// exempt; they are cleared only through an authorized unlock. A non-positive
// maxAge falls back to the engine's configured horizon.
func (e *Engine) Cleanup(ctx context.Context, maxAge time.Duration) (int64, error) {
	if maxAge <= 0 {
		maxAge = e.maxAge
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.now()
	n, err := e.store.DeactivateStale(ctx, now.Add(-maxAge), now)
	if err == nil && n > 0 {
		log.Info().Int64("cleaned", n).Dur("max_age", maxAge).Msg("stale locks deactivated")
	}
	return n, err
}

// Stats aggregates the active lock population across all chats.
func (e *Engine) Stats(ctx context.Context) (domain.LockStats, error) {
	return e.store.Stats(ctx)
}
