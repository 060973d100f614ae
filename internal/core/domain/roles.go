package domain

import "strings"

// Role is one level in the fixed access hierarchy.
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleEditor     Role = "editor"
	RoleAgent      Role = "agent"
	RoleDriver     Role = "driver"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
	RoleDev        Role = "dev"
)

// roleRank encodes the total order customer < editor < agent < driver < admin
// < superadmin < dev.
var roleRank = map[Role]int{
	RoleCustomer:   0,
	RoleEditor:     1,
	RoleAgent:      2,
	RoleDriver:     3,
	RoleAdmin:      4,
	RoleSuperadmin: 5,
	RoleDev:        6,
}

// ParseRole normalizes and validates a role token.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	_, ok := roleRank[r]
	return r, ok
}

// Actor is the validated identity of a booking requester, built once at the
// boundary from whatever shape the session layer supplies.
type Actor struct {
	ID       string `json:"id"`
	Roles    []Role `json:"roles,omitempty"`
	IsActive bool   `json:"is_active"`
}

// NewActor builds an Actor, silently dropping unknown role tokens. An actor
// with no recognized roles is treated as a plain customer.
func NewActor(id string, roles []string, isActive bool) Actor {
	a := Actor{ID: id, IsActive: isActive}
	for _, s := range roles {
		if r, ok := ParseRole(s); ok {
			a.Roles = append(a.Roles, r)
		}
	}
	return a
}

// maxRank returns the highest rank among the actor's roles. Actors without
// roles rank as customer.
func (a Actor) maxRank() int {
	max := roleRank[RoleCustomer]
	for _, r := range a.Roles {
		if rank, ok := roleRank[r]; ok && rank > max {
			max = rank
		}
	}
	return max
}

// HasAtLeast reports whether the actor holds a role at or above the given
// level in the hierarchy.
func (a Actor) HasAtLeast(r Role) bool {
	return a.maxRank() >= roleRank[r]
}
