// Package domain defines the core types of the authorization engine: the
// role hierarchy, permission sets, lock records, and lock decision results.
// Lock records are mapped with GORM and form the persistent data layer.
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Role is the closed, totally ordered set of privilege levels a (user, chat)
// pair can resolve to. The zero value is RoleUser, the least privileged.
//
// Ordering: RoleDeveloper > RoleOwner > RoleAdmin > RoleUser. Developer and
// Owner membership is global (static configuration); Admin is chat-scoped
// and derived from the external admin-status provider; User is the default.
type Role int

const (
	// RoleUser is the default role for anyone without elevated status.
	RoleUser Role = iota
	// RoleAdmin is granted per chat via the admin-status provider.
	RoleAdmin
	// RoleOwner is the single statically configured bot owner ("Orang Dalam").
	RoleOwner
	// RoleDeveloper is the highest role ("Founder"). Developers bypass all
	// permission checks and can never be locked.
	RoleDeveloper
)

// roleNames maps roles to their wire representation.
var roleNames = map[Role]string{
	RoleUser:      "user",
	RoleAdmin:     "admin",
	RoleOwner:     "owner",
	RoleDeveloper: "developer",
}

// String returns the lowercase wire name of the role.
func (r Role) String() string {
	if s, ok := roleNames[r]; ok {
		return s
	}
	return "user"
}

// DisplayName returns the human-facing title used in lock reasons and
// moderation messages.
func (r Role) DisplayName() string {
	switch r {
	case RoleDeveloper:
		return "Founder"
	case RoleOwner:
		return "Orang Dalam"
	case RoleAdmin:
		return "Admin"
	default:
		return "User"
	}
}

// AtLeast reports whether r holds privilege equal to or above other.
func (r Role) AtLeast(other Role) bool { return r >= other }

// ParseRole converts a wire name back to a Role. It reports false for
// unknown names.
func ParseRole(s string) (Role, bool) {
	for r, name := range roleNames {
		if name == s {
			return r, true
		}
	}
	return RoleUser, false
}

// MarshalJSON encodes the role as its wire name.
func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON decodes a role from its wire name.
func (r *Role) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, ok := ParseRole(s)
	if !ok {
		return fmt.Errorf("unknown role %q", s)
	}
	*r = parsed
	return nil
}

// Value implements driver.Valuer so roles are stored as strings.
func (r Role) Value() (driver.Value, error) {
	return r.String(), nil
}

// Scan implements sql.Scanner for the string column representation.
func (r *Role) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case nil:
		*r = RoleUser
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Role", src)
	}
	parsed, ok := ParseRole(s)
	if !ok {
		return fmt.Errorf("unknown role %q", s)
	}
	*r = parsed
	return nil
}
