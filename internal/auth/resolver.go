// Package auth implements role resolution for (user, chat) pairs and the
// permission policy derived from roles.
//
// Resolution is layered: statically configured Developer/Owner identities are
// checked first (O(1), never cached, never touch the provider), then the role
// cache, then the admin-status cache, and only then the external admin-status
// provider. Provider failures degrade to the least-privileged outcome and are
// never surfaced as hard errors.
package auth

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vanzoel/chatguard/internal/cache"
	"github.com/vanzoel/chatguard/internal/domain"
)

// AdminStatusProvider answers whether a user currently holds group-admin
// status in a chat. Calls may block on the network and may fail; the resolver
// bounds them with a timeout and treats failure as "not admin".
type AdminStatusProvider interface {
	IsAdmin(ctx context.Context, chatID, userID int64) (bool, error)
}

// member keys both caches by the (user, chat) pair.
type member struct {
	UserID int64
	ChatID int64
}

// Options configures a Service. Zero-value TTLs and capacity fall back to the
// documented defaults; a nil Now falls back to time.Now.
type Options struct {
	OwnerID              int64
	DeveloperIDs         []int64
	AdminChatIDs         []int64
	EnablePublicCommands bool

	Provider        AdminStatusProvider
	ProviderTimeout time.Duration

	RoleCacheTTL  time.Duration
	AdminCacheTTL time.Duration
	CacheCapacity int

	Now func() time.Time
}

// Default cache parameters, applied when Options leaves them zero.
const (
	DefaultRoleCacheTTL    = 5 * time.Minute
	DefaultAdminCacheTTL   = 3 * time.Minute
	DefaultProviderTimeout = 3 * time.Second
)

// Service resolves effective roles with layered caching. It is safe for
// concurrent use; each cache carries its own mutual exclusion.
type Service struct {
	ownerID      int64
	developerIDs map[int64]struct{}
	adminChatIDs map[int64]struct{}
	enablePublic bool

	provider        AdminStatusProvider
	providerTimeout time.Duration

	roleTTL  time.Duration
	adminTTL time.Duration

	roles       *cache.Cache[member, domain.Role]
	adminStatus *cache.Cache[member, bool]
}

// NewService constructs a resolver from Options.
func NewService(opts Options) *Service {
	if opts.RoleCacheTTL <= 0 {
		opts.RoleCacheTTL = DefaultRoleCacheTTL
	}
	if opts.AdminCacheTTL <= 0 {
		opts.AdminCacheTTL = DefaultAdminCacheTTL
	}
	if opts.ProviderTimeout <= 0 {
		opts.ProviderTimeout = DefaultProviderTimeout
	}

	devs := make(map[int64]struct{}, len(opts.DeveloperIDs))
	for _, id := range opts.DeveloperIDs {
		devs[id] = struct{}{}
	}
	adminChats := make(map[int64]struct{}, len(opts.AdminChatIDs))
	for _, id := range opts.AdminChatIDs {
		adminChats[id] = struct{}{}
	}

	return &Service{
		ownerID:         opts.OwnerID,
		developerIDs:    devs,
		adminChatIDs:    adminChats,
		enablePublic:    opts.EnablePublicCommands,
		provider:        opts.Provider,
		providerTimeout: opts.ProviderTimeout,
		roleTTL:         opts.RoleCacheTTL,
		adminTTL:        opts.AdminCacheTTL,
		roles:           cache.New[member, domain.Role](opts.CacheCapacity, opts.Now),
		adminStatus:     cache.New[member, bool](opts.CacheCapacity, opts.Now),
	}
}

// IsDeveloper reports whether userID is in the static Developer set.
func (s *Service) IsDeveloper(userID int64) bool {
	_, ok := s.developerIDs[userID]
	return ok
}

// IsOwner reports whether userID is the statically configured Owner.
// An unset owner id (zero) matches nobody.
func (s *Service) IsOwner(userID int64) bool {
	return s.ownerID != 0 && userID == s.ownerID
}

// Resolve computes the effective role of (userID, chatID).
//
// Developer and Owner resolutions are static lookups; they bypass both caches
// and the provider. Everything else is answered from the role cache when
// fresh, otherwise derived from the admin-status lookup and cached for the
// role TTL.
func (s *Service) Resolve(ctx context.Context, userID, chatID int64) domain.Role {
	if s.IsDeveloper(userID) {
		return domain.RoleDeveloper
	}
	if s.IsOwner(userID) {
		return domain.RoleOwner
	}

	key := member{UserID: userID, ChatID: chatID}
	if role, ok := s.roles.Get(key); ok {
		roleCacheHits.Inc()
		return role
	}
	roleCacheMisses.Inc()

	role := domain.RoleUser
	if s.IsAdminInChat(ctx, userID, chatID) {
		role = domain.RoleAdmin
	}
	s.roles.Set(key, role, s.roleTTL)
	return role
}

// IsAdminInChat reports whether userID holds group-admin status in chatID.
//
// Developers and the Owner are auto-granted without touching the cache or
// provider, as are members of statically configured admin chats. Otherwise
// the admin-status cache is consulted; on a miss the provider is called under
// a bounded timeout. Provider failure yields false and is NOT cached, so the
// next call retries.
func (s *Service) IsAdminInChat(ctx context.Context, userID, chatID int64) bool {
	if s.IsDeveloper(userID) || s.IsOwner(userID) {
		return true
	}
	if _, ok := s.adminChatIDs[chatID]; ok {
		return true
	}

	key := member{UserID: userID, ChatID: chatID}
	if isAdmin, ok := s.adminStatus.Get(key); ok {
		adminCacheHits.Inc()
		return isAdmin
	}
	adminCacheMisses.Inc()

	if s.provider == nil {
		return false
	}

	callCtx, cancel := context.WithTimeout(ctx, s.providerTimeout)
	defer cancel()

	isAdmin, err := s.provider.IsAdmin(callCtx, chatID, userID)
	if err != nil {
		providerFailures.Inc()
		log.Warn().
			Err(err).
			Int64("user_id", userID).
			Int64("chat_id", chatID).
			Msg("admin-status provider failed, denying elevated status")
		return false
	}

	s.adminStatus.Set(key, isAdmin, s.adminTTL)
	return isAdmin
}

// CanUseCommand reports whether (userID, chatID) may issue a command of the
// given tier. Public commands honor the global enable toggle; the role
// mapping itself stays fixed.
func (s *Service) CanUseCommand(ctx context.Context, userID, chatID int64, tier domain.CommandTier) bool {
	if tier == domain.TierPublic {
		return s.enablePublic
	}
	role := s.Resolve(ctx, userID, chatID)
	return PermissionsFor(role).Allows(tier)
}

// ClearAll empties both caches.
func (s *Service) ClearAll() {
	s.roles.Clear(nil)
	s.adminStatus.Clear(nil)
}

// ClearChat drops every cached resolution scoped to chatID.
func (s *Service) ClearChat(chatID int64) {
	pred := func(k member) bool { return k.ChatID == chatID }
	s.roles.Clear(pred)
	s.adminStatus.Clear(pred)
}

// ClearUser drops every cached resolution for userID across all chats.
func (s *Service) ClearUser(userID int64) {
	pred := func(k member) bool { return k.UserID == userID }
	s.roles.Clear(pred)
	s.adminStatus.Clear(pred)
}
