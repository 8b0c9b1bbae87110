package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/vanzoel/chatguard/internal/domain"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestReplaceLock_SingleActivePerPair(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	first := &domain.LockEntry{ChatID: -1, UserID: 7, Reason: "spam"}
	if err := ReplaceLock(ctx, db, first); err != nil {
		t.Fatalf("first lock: %v", err)
	}

	second := &domain.LockEntry{ChatID: -1, UserID: 7, Reason: "spam again"}
	if err := ReplaceLock(ctx, db, second); err != nil {
		t.Fatalf("second lock: %v", err)
	}

	got, err := GetActiveLock(ctx, db, -1, 7)
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	if got.ID != second.ID || got.Reason != "spam again" {
		t.Fatalf("active lock = %+v, want the replacement", got)
	}

	var total int64
	if err := db.Model(&domain.LockEntry{}).Count(&total).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if total != 2 {
		t.Fatalf("replaced entry must be retained for audit, rows=%d", total)
	}

	var active int64
	db.Model(&domain.LockEntry{}).Where("active = ?", true).Count(&active)
	if active != 1 {
		t.Fatalf("at most one active lock per pair, active=%d", active)
	}
}

func TestGetActiveLock_NotFound(t *testing.T) {
	db := openTestDB(t)

	_, err := GetActiveLock(context.Background(), db, -1, 404)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeactivateLock_RetainsRow(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	e := &domain.LockEntry{ChatID: -2, UserID: 8, Reason: "flood"}
	if err := ReplaceLock(ctx, db, e); err != nil {
		t.Fatalf("lock: %v", err)
	}

	at := time.Now().UTC()
	if err := DeactivateLock(ctx, db, -2, 8, at); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := GetActiveLock(ctx, db, -2, 8); !errors.Is(err, ErrNotFound) {
		t.Fatalf("lock should no longer be active, err=%v", err)
	}

	var row domain.LockEntry
	if err := db.First(&row, "id = ?", e.ID).Error; err != nil {
		t.Fatalf("audit row must survive: %v", err)
	}
	if row.Active || row.DeactivatedAt == nil {
		t.Fatalf("audit row = %+v, want inactive with deactivation time", row)
	}

	if err := DeactivateLock(ctx, db, -2, 8, at); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second deactivate should report ErrNotFound, got %v", err)
	}
}

func TestListActiveLocksPage_NewestFirst(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		e := &domain.LockEntry{
			ChatID:    -3,
			UserID:    int64(10 + i),
			Reason:    "batch",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := ReplaceLock(ctx, db, e); err != nil {
			t.Fatalf("lock %d: %v", i, err)
		}
	}

	page, err := ListActiveLocksPage(ctx, db, -3, 0, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 3 {
		t.Fatalf("page size = %d, want 3", len(page))
	}
	if page[0].UserID != 14 || page[2].UserID != 12 {
		t.Fatalf("expected newest first, got %d..%d", page[0].UserID, page[2].UserID)
	}

	total, err := CountActiveLocks(ctx, db, -3)
	if err != nil || total != 5 {
		t.Fatalf("count = %d (err=%v), want 5", total, err)
	}
}

func TestDeactivateChatLocks(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := ReplaceLock(ctx, db, &domain.LockEntry{ChatID: -4, UserID: int64(20 + i), Reason: "raid"}); err != nil {
			t.Fatalf("lock: %v", err)
		}
	}
	if err := ReplaceLock(ctx, db, &domain.LockEntry{ChatID: -5, UserID: 99, Reason: "other chat"}); err != nil {
		t.Fatalf("lock: %v", err)
	}

	n, err := DeactivateChatLocks(ctx, db, -4, time.Now().UTC())
	if err != nil || n != 3 {
		t.Fatalf("cleared = %d (err=%v), want 3", n, err)
	}
	if _, err := GetActiveLock(ctx, db, -5, 99); err != nil {
		t.Fatalf("locks in other chats must survive: %v", err)
	}
}

func TestDeactivateStaleLocks_SkipsProtected(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	old := time.Now().UTC().Add(-40 * 24 * time.Hour)

	ordinary := &domain.LockEntry{ChatID: -6, UserID: 30, Reason: "old", CreatedAt: old}
	if err := ReplaceLock(ctx, db, ordinary); err != nil {
		t.Fatalf("lock: %v", err)
	}

	owner := domain.RoleOwner
	protectedTarget := int64(41)
	lockBack := &domain.LockEntry{
		ChatID:          -6,
		UserID:          31,
		Reason:          "attempted to lock Orang Dalam",
		ProtectedRole:   &owner,
		ProtectedUserID: &protectedTarget,
		CreatedAt:       old,
	}
	if err := ReplaceLock(ctx, db, lockBack); err != nil {
		t.Fatalf("lock-back: %v", err)
	}

	cutoff := time.Now().UTC().Add(-30 * 24 * time.Hour)
	n, err := DeactivateStaleLocks(ctx, db, cutoff, time.Now().UTC())
	if err != nil || n != 1 {
		t.Fatalf("cleaned = %d (err=%v), want 1", n, err)
	}
	if _, err := GetActiveLock(ctx, db, -6, 31); err != nil {
		t.Fatalf("protected lock must be exempt from cleanup: %v", err)
	}
}

func TestLockStats(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	ReplaceLock(ctx, db, &domain.LockEntry{ChatID: -7, UserID: 1, Reason: "a"})
	ReplaceLock(ctx, db, &domain.LockEntry{ChatID: -7, UserID: 2, Reason: "b"})
	ReplaceLock(ctx, db, &domain.LockEntry{ChatID: -8, UserID: 3, Reason: "c"})
	DeactivateLock(ctx, db, -8, 3, time.Now().UTC())

	stats, err := LockStats(ctx, db)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.ActiveLocks != 2 || stats.ChatsWithLocks != 1 {
		t.Fatalf("stats = %+v, want 2 active in 1 chat", stats)
	}
}
