// Package rbac holds the organization role hierarchy, the permission matrix,
// the membership rules and the authorization gate composing them.
//
// Everything in this package is a pure decision over values supplied by the
// caller. Callers that persist the outcome must evaluate and apply it while
// holding the organization's write lock.
package rbac

import (
	"fmt"

	apperrors "orghub-backend/internal/errors"
)

// Role is an organization-scoped permission level.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
)

// GlobalRole is a platform-wide identity flag, independent of any organization.
type GlobalRole string

const (
	GlobalRoleUser  GlobalRole = "user"
	GlobalRoleAdmin GlobalRole = "admin"
)

// Roles lists every organization role from lowest to highest rank.
var Roles = []Role{RoleMember, RoleAdmin, RoleOwner}

// IsValid checks if the Role is valid
func (r Role) IsValid() bool {
	switch r {
	case RoleMember, RoleAdmin, RoleOwner:
		return true
	}
	return false
}

// IsValid checks if the GlobalRole is valid
func (g GlobalRole) IsValid() bool {
	switch g {
	case GlobalRoleUser, GlobalRoleAdmin:
		return true
	}
	return false
}

// Rank returns the position of role in the hierarchy (member=1, admin=2, owner=3).
// It panics on a role outside the enumeration; validate with ParseRole at the boundary.
func Rank(role Role) int {
	switch role {
	case RoleMember:
		return 1
	case RoleAdmin:
		return 2
	case RoleOwner:
		return 3
	}
	panic(fmt.Sprintf("rbac: unknown role %q", string(role)))
}

// MeetsOrExceeds reports whether actual ranks at least as high as required.
func MeetsOrExceeds(actual, required Role) bool {
	return Rank(actual) >= Rank(required)
}

// CanManageRole reports whether an actor holding actorRole may act on a member
// holding targetRole: owners manage admins and members, admins manage members,
// members manage nobody.
func CanManageRole(actorRole, targetRole Role) bool {
	return Rank(actorRole) > Rank(targetRole)
}

// ParseRole converts external input into a Role.
func ParseRole(value string) (Role, error) {
	role := Role(value)
	if !role.IsValid() {
		return "", apperrors.NewValidationError("role", fmt.Sprintf("unknown role %q (valid values: member, admin, owner)", value))
	}
	return role, nil
}

// ParseGlobalRole converts external input into a GlobalRole.
func ParseGlobalRole(value string) (GlobalRole, error) {
	role := GlobalRole(value)
	if !role.IsValid() {
		return "", apperrors.NewValidationError("global_role", fmt.Sprintf("unknown global role %q (valid values: user, admin)", value))
	}
	return role, nil
}
