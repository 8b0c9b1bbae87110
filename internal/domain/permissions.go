package domain

// PermissionSet is the capability set derived purely from a Role. It holds
// no state of its own; see auth.PermissionsFor for the role mapping.
type PermissionSet struct {
	// OwnerCommands allows owner-level commands (the '+' prefix tier).
	OwnerCommands bool `json:"owner_commands"`
	// AdminCommands allows admin-level commands (the '/' prefix tier).
	AdminCommands bool `json:"admin_commands"`
	// PublicCommands allows public commands (the '.' prefix tier).
	PublicCommands bool `json:"public_commands"`
	// BypassAllChecks skips every downstream permission check entirely.
	BypassAllChecks bool `json:"bypass_all_checks"`
}

// CommandTier classifies privileged commands into the three dispatch tiers
// recognized by the bot.
type CommandTier int

const (
	// TierPublic covers commands any chat member may issue.
	TierPublic CommandTier = iota
	// TierAdmin covers moderation commands (lock, unlock, clear).
	TierAdmin
	// TierOwner covers bot-management commands.
	TierOwner
)

// String returns the tier name used in logs and error messages.
func (t CommandTier) String() string {
	switch t {
	case TierOwner:
		return "owner"
	case TierAdmin:
		return "admin"
	default:
		return "public"
	}
}

// Allows reports whether the permission set grants the given command tier.
// BypassAllChecks short-circuits every tier.
func (p PermissionSet) Allows(t CommandTier) bool {
	if p.BypassAllChecks {
		return true
	}
	switch t {
	case TierOwner:
		return p.OwnerCommands
	case TierAdmin:
		return p.AdminCommands
	default:
		return p.PublicCommands
	}
}
