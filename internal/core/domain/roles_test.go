package domain

import "testing"

func TestNewActor_DropsUnknownRoles(t *testing.T) {
	a := NewActor("u1", []string{"Agent", "wizard", " admin "}, true)
	if len(a.Roles) != 2 {
		t.Fatalf("expected 2 recognized roles, got %v", a.Roles)
	}
	if a.Roles[0] != RoleAgent || a.Roles[1] != RoleAdmin {
		t.Errorf("got %v", a.Roles)
	}
}

func TestActor_HasAtLeast(t *testing.T) {
	cases := []struct {
		roles []string
		need  Role
		want  bool
	}{
		{nil, RoleCustomer, true},
		{nil, RoleAgent, false},
		{[]string{"customer"}, RoleAgent, false},
		{[]string{"editor"}, RoleAgent, false},
		{[]string{"agent"}, RoleAgent, true},
		{[]string{"driver"}, RoleAgent, true},
		{[]string{"admin"}, RoleAgent, true},
		{[]string{"dev"}, RoleSuperadmin, true},
		{[]string{"customer", "agent"}, RoleAgent, true},
	}
	for _, tc := range cases {
		a := NewActor("u1", tc.roles, true)
		if got := a.HasAtLeast(tc.need); got != tc.want {
			t.Errorf("roles %v HasAtLeast(%s) = %v, want %v", tc.roles, tc.need, got, tc.want)
		}
	}
}

func TestParseRole(t *testing.T) {
	if r, ok := ParseRole("  SuperAdmin "); !ok || r != RoleSuperadmin {
		t.Errorf("got %q, %v", r, ok)
	}
	if _, ok := ParseRole("root"); ok {
		t.Error("unknown role should not parse")
	}
}
