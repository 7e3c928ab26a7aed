package rbac

import (
	"time"

	apperrors "orghub-backend/internal/errors"

	"github.com/google/uuid"
)

// Membership is the slice of a membership row the rules look at.
type Membership struct {
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	Role           Role
	JoinedAt       time.Time
}

// Snapshot is the full membership set of one organization at evaluation time.
type Snapshot struct {
	OrganizationID uuid.UUID
	Memberships    []Membership
}

// Find returns the membership held by userID, if any.
func (s Snapshot) Find(userID uuid.UUID) (Membership, bool) {
	for _, m := range s.Memberships {
		if m.UserID == userID {
			return m, true
		}
	}
	return Membership{}, false
}

// OwnerCount returns the number of owner memberships.
func (s Snapshot) OwnerCount() int {
	count := 0
	for _, m := range s.Memberships {
		if m.Role == RoleOwner {
			count++
		}
	}
	return count
}

// DeltaOp names the storage mutation an accepted evaluation asks for.
type DeltaOp string

const (
	DeltaCreate     DeltaOp = "create"
	DeltaDelete     DeltaOp = "delete"
	DeltaUpdateRole DeltaOp = "update_role"
)

// MembershipDelta is the mutation to apply once a rule evaluation succeeds.
// Membership holds the row as it must look afterwards (or the removed row for DeltaDelete).
type MembershipDelta struct {
	Op           DeltaOp
	Membership   Membership
	PreviousRole Role
}

// Apply returns a copy of snapshot with the delta applied.
func (d MembershipDelta) Apply(snapshot Snapshot) Snapshot {
	next := Snapshot{OrganizationID: snapshot.OrganizationID}
	next.Memberships = make([]Membership, 0, len(snapshot.Memberships)+1)
	for _, m := range snapshot.Memberships {
		if m.UserID != d.Membership.UserID {
			next.Memberships = append(next.Memberships, m)
			continue
		}
		if d.Op == DeltaUpdateRole {
			m.Role = d.Membership.Role
			next.Memberships = append(next.Memberships, m)
		}
	}
	if d.Op == DeltaCreate {
		next.Memberships = append(next.Memberships, d.Membership)
	}
	return next
}

// Evaluator applies the membership rules. The zero value enforces every rule.
type Evaluator struct {
	skipPrivilegeRules bool
	now                func() time.Time
}

// PlatformAdminEvaluator returns an Evaluator for platform administrators:
// rules about who may grant or manage which role are skipped, while
// membership existence, self role change and the last-owner invariant still hold.
func PlatformAdminEvaluator() Evaluator {
	return Evaluator{skipPrivilegeRules: true}
}

func (e Evaluator) clock() time.Time {
	if e.now != nil {
		return e.now().UTC()
	}
	return time.Now().UTC()
}

// mayManage is CanManageRole widened to let owners act on fellow owners;
// the owner-on-owner case is then governed by the last-owner and demotion rules.
func mayManage(actorRole, targetRole Role) bool {
	if actorRole == RoleOwner && targetRole == RoleOwner {
		return true
	}
	return CanManageRole(actorRole, targetRole)
}

// Add evaluates adding targetUserID with requestedRole (member when empty).
func (e Evaluator) Add(snapshot Snapshot, actorRole Role, targetUserID uuid.UUID, requestedRole Role) (MembershipDelta, error) {
	if requestedRole == "" {
		requestedRole = RoleMember
	}
	Rank(requestedRole) // contract check

	if _, exists := snapshot.Find(targetUserID); exists {
		return MembershipDelta{}, apperrors.ErrAlreadyMember
	}
	if !e.skipPrivilegeRules && requestedRole == RoleOwner && actorRole != RoleOwner {
		return MembershipDelta{}, apperrors.ErrInsufficientGrantPermission
	}

	return MembershipDelta{
		Op: DeltaCreate,
		Membership: Membership{
			UserID:         targetUserID,
			OrganizationID: snapshot.OrganizationID,
			Role:           requestedRole,
			JoinedAt:       e.clock(),
		},
	}, nil
}

// Remove evaluates removing targetUserID. When actorUserID equals targetUserID
// the actor is leaving, which only the last-owner rule can refuse.
func (e Evaluator) Remove(snapshot Snapshot, actorRole Role, actorUserID, targetUserID uuid.UUID) (MembershipDelta, error) {
	target, exists := snapshot.Find(targetUserID)
	if !exists {
		return MembershipDelta{}, apperrors.ErrNotAMember
	}
	if target.Role == RoleOwner && snapshot.OwnerCount() == 1 {
		return MembershipDelta{}, apperrors.ErrLastOwner
	}
	if actorUserID != targetUserID && !e.skipPrivilegeRules && !mayManage(actorRole, target.Role) {
		return MembershipDelta{}, apperrors.ErrInsufficientManagePermission
	}

	return MembershipDelta{
		Op:           DeltaDelete,
		Membership:   target,
		PreviousRole: target.Role,
	}, nil
}

// ChangeRole evaluates moving targetUserID to newRole. joined_at is preserved.
func (e Evaluator) ChangeRole(snapshot Snapshot, actorRole Role, actorUserID, targetUserID uuid.UUID, newRole Role) (MembershipDelta, error) {
	Rank(newRole) // contract check

	target, exists := snapshot.Find(targetUserID)
	if !exists {
		return MembershipDelta{}, apperrors.ErrNotAMember
	}
	if actorUserID == targetUserID {
		return MembershipDelta{}, apperrors.ErrSelfRoleChange
	}
	if !e.skipPrivilegeRules {
		if !mayManage(actorRole, target.Role) {
			return MembershipDelta{}, apperrors.ErrInsufficientManagePermission
		}
		if newRole == RoleOwner && actorRole != RoleOwner {
			return MembershipDelta{}, apperrors.ErrOwnerGrantRestricted
		}
		if target.Role == RoleOwner && newRole != RoleOwner && actorRole == RoleOwner {
			return MembershipDelta{}, apperrors.ErrOwnerDemotionRestricted
		}
	}
	if target.Role == RoleOwner && newRole != RoleOwner && snapshot.OwnerCount() == 1 {
		return MembershipDelta{}, apperrors.ErrLastOwner
	}

	updated := target
	updated.Role = newRole
	return MembershipDelta{
		Op:           DeltaUpdateRole,
		Membership:   updated,
		PreviousRole: target.Role,
	}, nil
}

var defaultEvaluator Evaluator

// EvaluateAdd applies the Add rules with every rule enforced.
func EvaluateAdd(snapshot Snapshot, actorRole Role, targetUserID uuid.UUID, requestedRole Role) (MembershipDelta, error) {
	return defaultEvaluator.Add(snapshot, actorRole, targetUserID, requestedRole)
}

// EvaluateRemove applies the Remove rules with every rule enforced.
func EvaluateRemove(snapshot Snapshot, actorRole Role, actorUserID, targetUserID uuid.UUID) (MembershipDelta, error) {
	return defaultEvaluator.Remove(snapshot, actorRole, actorUserID, targetUserID)
}

// EvaluateChangeRole applies the ChangeRole rules with every rule enforced.
func EvaluateChangeRole(snapshot Snapshot, actorRole Role, actorUserID, targetUserID uuid.UUID, newRole Role) (MembershipDelta, error) {
	return defaultEvaluator.ChangeRole(snapshot, actorRole, actorUserID, targetUserID, newRole)
}
