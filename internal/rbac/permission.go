package rbac

import (
	"fmt"
	"sort"

	apperrors "orghub-backend/internal/errors"
)

// Permission is an atomic capability token checked against the permission matrix.
type Permission string

const (
	PermissionCreateProject      Permission = "create_project"
	PermissionEditProject        Permission = "edit_project"
	PermissionViewProject        Permission = "view_project"
	PermissionDeleteProject      Permission = "delete_project"
	PermissionManageMembers      Permission = "manage_members"
	PermissionInviteMembers      Permission = "invite_members"
	PermissionRemoveMembers      Permission = "remove_members"
	PermissionViewMembers        Permission = "view_members"
	PermissionEditOrganization   Permission = "edit_organization"
	PermissionDeleteOrganization Permission = "delete_organization"
	PermissionViewOrganization   Permission = "view_organization"
	PermissionManageSettings     Permission = "manage_settings"
	PermissionViewSettings       Permission = "view_settings"
)

// AllPermissions is the closed set of capability tokens.
var AllPermissions = []Permission{
	PermissionCreateProject,
	PermissionEditProject,
	PermissionViewProject,
	PermissionDeleteProject,
	PermissionManageMembers,
	PermissionInviteMembers,
	PermissionRemoveMembers,
	PermissionViewMembers,
	PermissionEditOrganization,
	PermissionDeleteOrganization,
	PermissionViewOrganization,
	PermissionManageSettings,
	PermissionViewSettings,
}

// The matrix is explicit per role; admin is not derived from owner nor member from admin.
var permissionMatrix = map[Role]map[Permission]bool{
	RoleOwner: setOf(AllPermissions...),
	RoleAdmin: setOf(
		PermissionCreateProject,
		PermissionEditProject,
		PermissionViewProject,
		PermissionManageMembers,
		PermissionInviteMembers,
		PermissionViewMembers,
		PermissionViewOrganization,
		PermissionManageSettings,
		PermissionViewSettings,
	),
	RoleMember: setOf(
		PermissionViewProject,
		PermissionViewMembers,
		PermissionViewOrganization,
		PermissionViewSettings,
	),
}

func setOf(perms ...Permission) map[Permission]bool {
	set := make(map[Permission]bool, len(perms))
	for _, p := range perms {
		set[p] = true
	}
	return set
}

// IsValid checks if the Permission is one of the known tokens
func (p Permission) IsValid() bool {
	return permissionMatrix[RoleOwner][p]
}

// ParsePermission converts external input into a Permission.
func ParsePermission(value string) (Permission, error) {
	p := Permission(value)
	if !p.IsValid() {
		return "", apperrors.NewValidationError("permission", fmt.Sprintf("unknown permission %q", value))
	}
	return p, nil
}

// PermissionsFor returns the permissions granted to role, sorted by name.
// The returned slice is owned by the caller.
func PermissionsFor(role Role) []Permission {
	granted, ok := permissionMatrix[role]
	if !ok {
		panic(fmt.Sprintf("rbac: unknown role %q", string(role)))
	}
	perms := make([]Permission, 0, len(granted))
	for p := range granted {
		perms = append(perms, p)
	}
	sort.Slice(perms, func(i, j int) bool { return perms[i] < perms[j] })
	return perms
}

// HasPermission reports whether role is granted permission.
func HasPermission(role Role, permission Permission) bool {
	granted, ok := permissionMatrix[role]
	if !ok {
		panic(fmt.Sprintf("rbac: unknown role %q", string(role)))
	}
	return granted[permission]
}
