// Lock HTTP handlers.
//
// This file exposes REST endpoints for chat lock resources:
//   - POST   /chats/{chat_id}/locks            (request a lock, lock-back aware)
//   - DELETE /chats/{chat_id}/locks/{user_id}  (request an unlock)
//   - GET    /chats/{chat_id}/locks            (list active locks, paginated)
//   - GET    /chats/{chat_id}/locks/{user_id}  (lock status for one user)
//   - DELETE /chats/{chat_id}/locks            (clear every lock in a chat)
//   - GET    /locks/stats                      (global counters)
//   - POST   /locks/cleanup                    (deactivate stale ordinary locks)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses. The lock-back decision itself
// lives in the engine; a request that backfires on its issuer is still a 201
// here, with the outcome field telling the story.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vanzoel/chatguard/internal/domain"
	"github.com/vanzoel/chatguard/internal/locks"
	"github.com/vanzoel/chatguard/internal/utils"
)

// LockService defines lock lifecycle operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type LockService interface {
	// RequestLock runs the lock-back precedence rules for issuerID locking
	// targetID inside chatID and applies the resulting mutation.
	RequestLock(ctx context.Context, chatID, issuerID, targetID int64, reason string) (domain.LockResult, error)
	// RequestUnlock removes targetID's active lock when requesterID is
	// authorized to do so.
	RequestUnlock(ctx context.Context, chatID, requesterID, targetID int64) error
	// Status returns the active lock for (chatID, userID), or locks.ErrNoActiveLock.
	Status(ctx context.Context, chatID, userID int64) (*domain.LockEntry, error)
	// ListActivePage returns a page of active locks in chatID and the total count.
	ListActivePage(ctx context.Context, chatID int64, page, pageSize int) ([]domain.LockEntry, int64, error)
	// ClearChat deactivates every active lock in chatID.
	ClearChat(ctx context.Context, chatID int64) (int64, error)
	// Cleanup deactivates ordinary active locks older than maxAge.
	Cleanup(ctx context.Context, maxAge time.Duration) (int64, error)
	// Stats returns global active-lock counters.
	Stats(ctx context.Context) (domain.LockStats, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for roles, locks and cache control.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	roleSvc RoleService
	lockSvc LockService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(roleSvc RoleService, lockSvc LockService) *Handlers {
	return &Handlers{roleSvc: roleSvc, lockSvc: lockSvc}
}

//
// DTOs
//

// CreateLockRequest is the JSON payload for requesting a lock.
type CreateLockRequest struct {
	// TargetID is the user the issuer wants locked.
	TargetID int64 `json:"target_id" binding:"required" example:"123456789"`
	// Reason optionally records why; a default is used when empty.
	Reason string `json:"reason" example:"spamming invite links"`
}

// LockStatusResponse reports whether a user is currently locked in a chat.
type LockStatusResponse struct {
	Locked bool              `json:"locked"`
	Entry  *domain.LockEntry `json:"entry,omitempty"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListLocksResponse wraps a page of active locks and pagination information.
type ListLocksResponse struct {
	Locks      []domain.LockEntry `json:"locks"`
	Pagination Pagination         `json:"pagination"`
}

// ClearedResponse reports how many locks a bulk operation deactivated.
type ClearedResponse struct {
	Cleared int64 `json:"cleared"`
}

// CleanupRequest is the JSON payload for the stale-lock sweep.
type CleanupRequest struct {
	// MaxAgeDays bounds what counts as stale; the service default applies
	// when omitted or non-positive.
	MaxAgeDays int `json:"max_age_days,omitempty" example:"30"`
}

// CleanupResponse reports how many stale locks were deactivated.
type CleanupResponse struct {
	Cleaned int64 `json:"cleaned"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

//
// Handlers
//

// CreateLock godoc
// @ID          createLock
// @Summary     Request a lock on a user
// @Description Runs the lock-back precedence rules and applies the result. A request against a protected user locks the issuer instead; the outcome field distinguishes the cases.
// @Tags        Locks
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "Issuer ID"  example(123456789)
// @Param       chat_id    path    string  true  "Chat ID"    example(-1001234567890)
// @Param       body       body    handlers.CreateLockRequest  true  "Lock request payload"
//
// @Success     201  {object}  domain.LockResult
// @Success     200  {object}  domain.LockResult  "Noop decision, nothing mutated"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing issuer id"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /chats/{chat_id}/locks [post]
func (h *Handlers) CreateLock(c *gin.Context) {
	issuer, authed := requesterID(c)
	if !authed {
		return
	}
	chatID, valid := pathID(c, "chat_id")
	if !valid {
		return
	}

	var req CreateLockRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TargetID == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "target_id required")
		return
	}

	res, err := h.lockSvc.RequestLock(c.Request.Context(), chatID, issuer, req.TargetID, req.Reason)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeLockFailed, err.Error())
		return
	}
	status := http.StatusCreated
	if res.Outcome == domain.OutcomeNoop {
		status = http.StatusOK
	}
	ok(c, status, res)
}

// DeleteLock godoc
// @ID          deleteLock
// @Summary     Request an unlock
// @Description Deactivates the target's active lock when the requester's role clears the entry's unlock tier.
// @Tags        Locks
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "Requester ID"  example(123456789)
// @Param       chat_id    path    string  true  "Chat ID"       example(-1001234567890)
// @Param       user_id    path    string  true  "Locked user"   example(987654321)
//
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing requester id"
// @Failure     403  {object}  handlers.ErrorResponse  "Insufficient role for this lock"
// @Failure     404  {object}  handlers.ErrorResponse  "No active lock"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /chats/{chat_id}/locks/{user_id} [delete]
func (h *Handlers) DeleteLock(c *gin.Context) {
	requester, authed := requesterID(c)
	if !authed {
		return
	}
	chatID, valid := pathID(c, "chat_id")
	if !valid {
		return
	}
	targetID, valid := pathID(c, "user_id")
	if !valid {
		return
	}

	err := h.lockSvc.RequestUnlock(c.Request.Context(), chatID, requester, targetID)
	switch {
	case err == nil:
		noContent(c)
	case errors.Is(err, locks.ErrNoActiveLock):
		fail(c, http.StatusNotFound, ErrCodeNoActiveLock, "no active lock for this user")
	case errors.Is(err, locks.ErrUnlockForbidden):
		fail(c, http.StatusForbidden, ErrCodeForbidden, "unlock requires a higher role")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

// ListLocks godoc
// @ID          listLocks
// @Summary     List active locks in a chat (paginated)
// @Description Returns a page of the chat's active locks, newest first.
// @Tags        Locks
// @Produce     json
//
// @Param       chat_id    path   string  true  "Chat ID"  example(-1001234567890)
// @Param       page       query  int     false "Page number"     minimum(1) default(1)
// @Param       page_size  query  int     false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListLocksResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /chats/{chat_id}/locks [get]
func (h *Handlers) ListLocks(c *gin.Context) {
	chatID, valid := pathID(c, "chat_id")
	if !valid {
		return
	}
	page, pageSize := clampPagination(c)

	items, total, err := h.lockSvc.ListActivePage(c.Request.Context(), chatID, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListLocksResponse{
		Locks: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetLockStatus godoc
// @ID          getLockStatus
// @Summary     Check whether a user is locked
// @Description Returns the active lock entry for the (chat, user) pair, if any.
// @Tags        Locks
// @Produce     json
//
// @Param       chat_id  path  string  true  "Chat ID"  example(-1001234567890)
// @Param       user_id  path  string  true  "User ID"  example(987654321)
//
// @Success     200  {object}  handlers.LockStatusResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /chats/{chat_id}/locks/{user_id} [get]
func (h *Handlers) GetLockStatus(c *gin.Context) {
	chatID, valid := pathID(c, "chat_id")
	if !valid {
		return
	}
	userID, valid := pathID(c, "user_id")
	if !valid {
		return
	}

	entry, err := h.lockSvc.Status(c.Request.Context(), chatID, userID)
	switch {
	case err == nil:
		ok(c, http.StatusOK, LockStatusResponse{Locked: true, Entry: entry})
	case errors.Is(err, locks.ErrNoActiveLock):
		ok(c, http.StatusOK, LockStatusResponse{Locked: false})
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

// ClearChatLocks godoc
// @ID          clearChatLocks
// @Summary     Deactivate every active lock in a chat
// @Description Bulk unlock for a whole chat. Requires the admin tier. Entries are deactivated, never deleted.
// @Tags        Locks
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "Requester ID"  example(123456789)
// @Param       chat_id    path    string  true  "Chat ID"       example(-1001234567890)
//
// @Success     200  {object}  handlers.ClearedResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing requester id"
// @Failure     403  {object}  handlers.ErrorResponse  "Admin tier required"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /chats/{chat_id}/locks [delete]
func (h *Handlers) ClearChatLocks(c *gin.Context) {
	requester, authed := requesterID(c)
	if !authed {
		return
	}
	chatID, valid := pathID(c, "chat_id")
	if !valid {
		return
	}

	ctx := c.Request.Context()
	if !h.roleSvc.CanUseCommand(ctx, requester, chatID, domain.TierAdmin) {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "clearing chat locks requires the admin tier")
		return
	}

	n, err := h.lockSvc.ClearChat(ctx, chatID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, ClearedResponse{Cleared: n})
}

// LockStats godoc
// @ID          lockStats
// @Summary     Global lock counters
// @Description Returns the number of active locks and of chats holding at least one.
// @Tags        Locks
// @Produce     json
//
// @Success     200  {object}  domain.LockStats
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /locks/stats [get]
func (h *Handlers) LockStats(c *gin.Context) {
	stats, err := h.lockSvc.Stats(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, stats)
}

// CleanupLocks godoc
// @ID          cleanupLocks
// @Summary     Deactivate stale ordinary locks
// @Description Sweeps active ordinary locks older than max_age_days. Lock-back entries are exempt. Requires the owner tier.
// @Tags        Locks
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "Requester ID"  example(123456789)
// @Param       body       body    handlers.CleanupRequest  false  "Sweep parameters"
//
// @Success     200  {object}  handlers.CleanupResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Missing requester id"
// @Failure     403  {object}  handlers.ErrorResponse  "Owner tier required"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /locks/cleanup [post]
func (h *Handlers) CleanupLocks(c *gin.Context) {
	requester, authed := requesterID(c)
	if !authed {
		return
	}

	ctx := c.Request.Context()
	if !h.roleSvc.CanUseCommand(ctx, requester, 0, domain.TierOwner) {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "lock cleanup requires the owner tier")
		return
	}

	var req CleanupRequest
	// Body is optional; malformed JSON is still rejected.
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
			return
		}
	}

	var maxAge time.Duration
	if req.MaxAgeDays > 0 {
		maxAge = time.Duration(req.MaxAgeDays) * 24 * time.Hour
	}

	n, err := h.lockSvc.Cleanup(ctx, maxAge)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, CleanupResponse{Cleaned: n})
}
