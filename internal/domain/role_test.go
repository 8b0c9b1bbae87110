package domain

import (
	"encoding/json"
	"testing"
)

func TestRoleOrdering(t *testing.T) {
	if !(RoleDeveloper > RoleOwner && RoleOwner > RoleAdmin && RoleAdmin > RoleUser) {
		t.Fatal("role constants are not ordered developer > owner > admin > user")
	}
	if !RoleOwner.AtLeast(RoleAdmin) {
		t.Error("owner should satisfy AtLeast(admin)")
	}
	if RoleAdmin.AtLeast(RoleOwner) {
		t.Error("admin should not satisfy AtLeast(owner)")
	}
}

func TestRoleNames(t *testing.T) {
	tests := []struct {
		role    Role
		wire    string
		display string
	}{
		{RoleUser, "user", "User"},
		{RoleAdmin, "admin", "Admin"},
		{RoleOwner, "owner", "Orang Dalam"},
		{RoleDeveloper, "developer", "Founder"},
	}
	for _, tt := range tests {
		if got := tt.role.String(); got != tt.wire {
			t.Errorf("%v.String() = %q, want %q", tt.role, got, tt.wire)
		}
		if got := tt.role.DisplayName(); got != tt.display {
			t.Errorf("%v.DisplayName() = %q, want %q", tt.role, got, tt.display)
		}
		parsed, ok := ParseRole(tt.wire)
		if !ok || parsed != tt.role {
			t.Errorf("ParseRole(%q) = %v, %v", tt.wire, parsed, ok)
		}
	}
	if _, ok := ParseRole("sudo"); ok {
		t.Error("ParseRole should reject unknown names")
	}
}

func TestRoleJSONRoundTrip(t *testing.T) {
	b, err := json.Marshal(RoleOwner)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"owner"` {
		t.Fatalf("marshal = %s, want %q", b, `"owner"`)
	}

	var r Role
	if err := json.Unmarshal([]byte(`"developer"`), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r != RoleDeveloper {
		t.Fatalf("unmarshal = %v, want RoleDeveloper", r)
	}
	if err := json.Unmarshal([]byte(`"superuser"`), &r); err == nil {
		t.Error("unmarshal should reject unknown role names")
	}
}

func TestRoleScan(t *testing.T) {
	var r Role
	if err := r.Scan("admin"); err != nil || r != RoleAdmin {
		t.Fatalf("Scan(string) = %v, %v", r, err)
	}
	if err := r.Scan([]byte("owner")); err != nil || r != RoleOwner {
		t.Fatalf("Scan([]byte) = %v, %v", r, err)
	}
	if err := r.Scan(nil); err != nil || r != RoleUser {
		t.Fatalf("Scan(nil) = %v, %v", r, err)
	}
	if err := r.Scan(7); err == nil {
		t.Error("Scan should reject unsupported source types")
	}
}

func TestPermissionSetAllows(t *testing.T) {
	bypass := PermissionSet{BypassAllChecks: true}
	for _, tier := range []CommandTier{TierPublic, TierAdmin, TierOwner} {
		if !bypass.Allows(tier) {
			t.Errorf("bypass set should allow tier %v", tier)
		}
	}

	admin := PermissionSet{AdminCommands: true, PublicCommands: true}
	if !admin.Allows(TierAdmin) || !admin.Allows(TierPublic) {
		t.Error("admin set should allow admin and public tiers")
	}
	if admin.Allows(TierOwner) {
		t.Error("admin set should not allow the owner tier")
	}

	user := PermissionSet{PublicCommands: true}
	if user.Allows(TierAdmin) {
		t.Error("user set should not allow the admin tier")
	}
}
