// Role HTTP handlers.
//
// This file exposes REST endpoints for role resolution and cache control:
//   - GET  /chats/{chat_id}/roles/{user_id}  (resolve effective role)
//   - POST /cache/clear                      (invalidate cached lookups)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vanzoel/chatguard/internal/auth"
	"github.com/vanzoel/chatguard/internal/domain"
	"github.com/vanzoel/chatguard/internal/http/middleware"
	"github.com/vanzoel/chatguard/internal/utils"
)

//
// Service contracts (context-aware)
//

// RoleService defines role resolution operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type RoleService interface {
	// Resolve returns the effective role of userID inside chatID.
	Resolve(ctx context.Context, userID, chatID int64) domain.Role
	// IsAdminInChat reports the raw group-admin status of userID in chatID.
	IsAdminInChat(ctx context.Context, userID, chatID int64) bool
	// CanUseCommand reports whether userID may invoke a command of the given tier.
	CanUseCommand(ctx context.Context, userID, chatID int64, tier domain.CommandTier) bool
	// ClearAll drops every cached role and admin-status entry.
	ClearAll()
	// ClearChat drops cached entries scoped to chatID.
	ClearChat(chatID int64)
	// ClearUser drops cached entries scoped to userID.
	ClearUser(userID int64)
}

//
// Helpers
//

// requesterID extracts the calling user's id from the X-User-ID header.
// It writes a 401 error envelope and returns ok=false when the header is
// missing or not a valid integer id.
func requesterID(c *gin.Context) (int64, bool) {
	id, ok := utils.ParseID(c.GetHeader(middleware.HeaderUserID))
	if !ok {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "X-User-ID header required")
		return 0, false
	}
	return id, true
}

// pathID parses an int64 path parameter. It writes a 400 error envelope and
// returns ok=false on malformed input.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, ok := utils.ParseID(c.Param(name))
	if !ok {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, name+" must be an integer id")
		return 0, false
	}
	return id, true
}

//
// DTOs
//

// RoleInfoResponse describes a user's effective standing inside a chat.
type RoleInfoResponse struct {
	// Machine-readable role name
	Role domain.Role `json:"role" example:"admin"`
	// Human-facing title for the role
	DisplayName string `json:"display_name" example:"Admin"`
	// Commands the role may invoke
	Permissions domain.PermissionSet `json:"permissions"`
	// Raw group-admin flag, independent of static role assignments
	IsGroupAdmin bool `json:"is_group_admin"`
}

// ClearCacheRequest is the JSON payload for cache invalidation.
type ClearCacheRequest struct {
	// Scope selects what to invalidate: "all", "chat" or "user".
	Scope string `json:"scope" binding:"required" example:"chat"`
	// ChatID is required when scope is "chat".
	ChatID int64 `json:"chat_id,omitempty" example:"-1001234567890"`
	// UserID is required when scope is "user".
	UserID int64 `json:"user_id,omitempty" example:"123456789"`
}

//
// Handlers
//

// GetRoleInfo godoc
// @ID          getRoleInfo
// @Summary     Resolve a user's role in a chat
// @Description Returns the effective role, its permission set and the raw group-admin flag.
// @Tags        Roles
// @Produce     json
//
// @Param       chat_id  path  string  true  "Chat ID"  example(-1001234567890)
// @Param       user_id  path  string  true  "User ID"  example(123456789)
//
// @Success     200  {object}  handlers.RoleInfoResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Router      /chats/{chat_id}/roles/{user_id} [get]
func (h *Handlers) GetRoleInfo(c *gin.Context) {
	chatID, valid := pathID(c, "chat_id")
	if !valid {
		return
	}
	userID, valid := pathID(c, "user_id")
	if !valid {
		return
	}

	ctx := c.Request.Context()
	role := h.roleSvc.Resolve(ctx, userID, chatID)
	ok(c, http.StatusOK, RoleInfoResponse{
		Role:         role,
		DisplayName:  role.DisplayName(),
		Permissions:  auth.PermissionsFor(role),
		IsGroupAdmin: h.roleSvc.IsAdminInChat(ctx, userID, chatID),
	})
}

// ClearCache godoc
// @ID          clearCache
// @Summary     Invalidate cached role and admin lookups
// @Description Drops cached entries for the requested scope. Requires the owner tier.
// @Tags        Roles
// @Accept      json
//
// @Param       X-User-ID  header  string  true  "Requester ID"  example(123456789)
// @Param       body       body    handlers.ClearCacheRequest  true  "Invalidation scope"
//
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing requester id"
// @Failure     403  {object}  handlers.ErrorResponse  "Owner tier required"
// @Router      /cache/clear [post]
func (h *Handlers) ClearCache(c *gin.Context) {
	uid, authed := requesterID(c)
	if !authed {
		return
	}

	var req ClearCacheRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	if !h.roleSvc.CanUseCommand(c.Request.Context(), uid, req.ChatID, domain.TierOwner) {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "cache clearing requires the owner tier")
		return
	}

	switch req.Scope {
	case "all":
		h.roleSvc.ClearAll()
	case "chat":
		if req.ChatID == 0 {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "chat_id required for chat scope")
			return
		}
		h.roleSvc.ClearChat(req.ChatID)
	case "user":
		if req.UserID == 0 {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user_id required for user scope")
			return
		}
		h.roleSvc.ClearUser(req.UserID)
	default:
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, `scope must be "all", "chat" or "user"`)
		return
	}

	noContent(c)
}
