package auth

import "github.com/vanzoel/chatguard/internal/domain"

// PermissionsFor maps a role to its capability set. The mapping is pure and
// total over the closed role set:
//
//	Developer, Owner → every flag set (including BypassAllChecks)
//	Admin            → admin + public commands
//	User             → public commands only
func PermissionsFor(role domain.Role) domain.PermissionSet {
	switch role {
	case domain.RoleDeveloper, domain.RoleOwner:
		return domain.PermissionSet{
			OwnerCommands:   true,
			AdminCommands:   true,
			PublicCommands:  true,
			BypassAllChecks: true,
		}
	case domain.RoleAdmin:
		return domain.PermissionSet{
			AdminCommands:  true,
			PublicCommands: true,
		}
	default:
		return domain.PermissionSet{
			PublicCommands: true,
		}
	}
}
