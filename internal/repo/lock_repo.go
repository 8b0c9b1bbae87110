// Package repo implements the persistence layer for lock entries, backed by
// GORM. This file provides the lock repository: every mutation is written
// through to the database, and deactivated rows are retained for audit.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. They follow the "thin repository"
// approach: no hierarchy logic, only persistence and query composition.
//
// Error semantics:
//   - When no active lock exists for a key, functions return ErrNotFound
//     (an alias of gorm.ErrRecordNotFound).
//   - On DB errors the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vanzoel/chatguard/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist. It aliases
// gorm.ErrRecordNotFound for consistency across the service layer.
var ErrNotFound = gorm.ErrRecordNotFound

// ReplaceLock inserts entry as the single active lock for its (chat, user)
// pair, deactivating any previous active entry in the same transaction. The
// entry ID and CreatedAt are assigned here when unset.
func ReplaceLock(ctx context.Context, db *gorm.DB, entry *domain.LockEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	entry.Active = true

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := entry.CreatedAt
		if err := tx.Model(&domain.LockEntry{}).
			Where("chat_id = ? AND user_id = ? AND active = ?", entry.ChatID, entry.UserID, true).
			Updates(map[string]any{"active": false, "deactivated_at": now}).Error; err != nil {
			return err
		}
		return tx.Create(entry).Error
	})
}

// GetActiveLock fetches the active lock for (chatID, userID), or ErrNotFound.
func GetActiveLock(ctx context.Context, db *gorm.DB, chatID, userID int64) (*domain.LockEntry, error) {
	var e domain.LockEntry
	err := db.WithContext(ctx).
		Where("chat_id = ? AND user_id = ? AND active = ?", chatID, userID, true).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// DeactivateLock marks the active lock for (chatID, userID) inactive at the
// given instant, retaining the row for audit. Returns ErrNotFound when no
// active lock exists.
func DeactivateLock(ctx context.Context, db *gorm.DB, chatID, userID int64, at time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.LockEntry{}).
		Where("chat_id = ? AND user_id = ? AND active = ?", chatID, userID, true).
		Updates(map[string]any{"active": false, "deactivated_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountActiveLocks returns the number of active locks in chatID.
func CountActiveLocks(ctx context.Context, db *gorm.DB, chatID int64) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.LockEntry{}).
		Where("chat_id = ? AND active = ?", chatID, true).
		Count(&total).Error
	return total, err
}

// ListActiveLocksPage returns a page of active locks in chatID, newest first.
func ListActiveLocksPage(ctx context.Context, db *gorm.DB, chatID int64, offset, limit int) ([]domain.LockEntry, error) {
	var out []domain.LockEntry
	err := db.WithContext(ctx).
		Where("chat_id = ? AND active = ?", chatID, true).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// DeactivateChatLocks deactivates every active lock in chatID and returns
// how many were affected.
func DeactivateChatLocks(ctx context.Context, db *gorm.DB, chatID int64, at time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.LockEntry{}).
		Where("chat_id = ? AND active = ?", chatID, true).
		Updates(map[string]any{"active": false, "deactivated_at": at})
	return res.RowsAffected, res.Error
}

// DeactivateStaleLocks deactivates ordinary active locks created before
// cutoff. Protected locks (lock-backs) are exempt: they stay until an
// authorized requester unlocks them.
func DeactivateStaleLocks(ctx context.Context, db *gorm.DB, cutoff, at time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.LockEntry{}).
		Where("active = ? AND requires_developer_unlock = ? AND protected_role IS NULL AND created_at < ?",
			true, false, cutoff).
		Updates(map[string]any{"active": false, "deactivated_at": at})
	return res.RowsAffected, res.Error
}

// LockStats aggregates the active lock population across all chats.
func LockStats(ctx context.Context, db *gorm.DB) (domain.LockStats, error) {
	var stats domain.LockStats
	err := db.WithContext(ctx).
		Model(&domain.LockEntry{}).
		Where("active = ?", true).
		Count(&stats.ActiveLocks).Error
	if err != nil {
		return stats, err
	}
	err = db.WithContext(ctx).
		Model(&domain.LockEntry{}).
		Where("active = ?", true).
		Distinct("chat_id").
		Count(&stats.ChatsWithLocks).Error
	return stats, err
}
