package session

import (
	"fmt"
	"slices"
	"strings"
)

// Role is an identity recognised by the marketplace API. Every role keeps its own
// credential.
type Role string

const (
	RoleLandlord        Role = "landlord"
	RoleTenant          Role = "tenant"
	RoleSeller          Role = "seller"
	RoleSubOwner        Role = "subowner"
	RoleRegionalManager Role = "regional_manager"
	RoleOrganization    Role = "organization"
	RoleWorker          Role = "worker"
)

var allRoles = []Role{
	RoleLandlord,
	RoleTenant,
	RoleSeller,
	RoleSubOwner,
	RoleRegionalManager,
	RoleOrganization,
	RoleWorker,
}

// Roles returns every known role in display order.
func Roles() []Role {
	return slices.Clone(allRoles)
}

// StorageKey is the key the web dashboards keep this role's token under. Landlord,
// sub-owner, regional manager and worker dashboards all share "token".
func (r Role) StorageKey() string {
	switch r {
	case RoleSeller:
		return "sellertoken"
	case RoleTenant:
		return "tenanttoken"
	case RoleOrganization:
		return "orgToken"
	default:
		return "token"
	}
}

// APIPrefix is the path segment the role's endpoints live under.
func (r Role) APIPrefix() string {
	switch r {
	case RoleSubOwner:
		return "sub-owner"
	case RoleRegionalManager:
		return "regional-manager"
	default:
		return string(r)
	}
}

func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "_")
	switch s {
	case "sub_owner":
		s = string(RoleSubOwner)
	case "org":
		s = string(RoleOrganization)
	}
	if slices.Contains(allRoles, Role(s)) {
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}
