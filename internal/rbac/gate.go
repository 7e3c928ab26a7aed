package rbac

import (
	"context"
	"fmt"

	apperrors "orghub-backend/internal/errors"

	"github.com/google/uuid"
)

//go:generate mockgen -source=gate.go -destination=../mocks/rbac_mocks.go -package=mocks

// Actor is the already-authenticated identity performing an operation.
type Actor struct {
	UserID     uuid.UUID
	GlobalRole GlobalRole
}

// IsPlatformAdmin reports whether the actor bypasses organization-level checks.
func (a Actor) IsPlatformAdmin() bool {
	return a.GlobalRole == GlobalRoleAdmin
}

// OperationKind distinguishes capability checks from membership mutations.
type OperationKind string

const (
	OperationCapability   OperationKind = "capability"
	OperationAddMember    OperationKind = "add_member"
	OperationRemoveMember OperationKind = "remove_member"
	OperationChangeRole   OperationKind = "change_role"
)

// Operation is the request being authorized.
type Operation struct {
	Kind         OperationKind
	Permission   Permission
	TargetUserID uuid.UUID
	Role         Role
}

// Capability asks whether the actor holds permission in the organization.
func Capability(permission Permission) Operation {
	return Operation{Kind: OperationCapability, Permission: permission}
}

// AddMember asks whether userID may be added with role (member when empty).
func AddMember(userID uuid.UUID, role Role) Operation {
	return Operation{Kind: OperationAddMember, TargetUserID: userID, Role: role}
}

// RemoveMember asks whether userID may be removed. Passing the actor's own id means leaving.
func RemoveMember(userID uuid.UUID) Operation {
	return Operation{Kind: OperationRemoveMember, TargetUserID: userID}
}

// ChangeRole asks whether userID may be moved to role.
func ChangeRole(userID uuid.UUID, role Role) Operation {
	return Operation{Kind: OperationChangeRole, TargetUserID: userID, Role: role}
}

func (o Operation) String() string {
	switch o.Kind {
	case OperationCapability:
		return fmt.Sprintf("%s:%s", o.Kind, o.Permission)
	case OperationAddMember, OperationChangeRole:
		return fmt.Sprintf("%s:%s:%s", o.Kind, o.TargetUserID, o.Role)
	default:
		return fmt.Sprintf("%s:%s", o.Kind, o.TargetUserID)
	}
}

// IsMutation reports whether the operation changes the membership set.
func (o Operation) IsMutation() bool {
	return o.Kind != OperationCapability
}

// Decision is the outcome of an authorization request.
// Delta is set when an allowed membership mutation has to be applied.
type Decision struct {
	Allowed bool
	Reason  apperrors.MembershipErrorKind
	Bypass  bool
	Delta   *MembershipDelta
}

// Err returns nil for allowed decisions and the matching membership error otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return apperrors.FromMembershipKind(d.Reason)
}

// CheckContext describes one authorization request for the audit trail.
type CheckContext struct {
	Actor          Actor
	ActorRole      Role
	OrganizationID uuid.UUID
	Operation      Operation
	Bypass         bool
}

// Auditor receives every decision and role change. Implementations must not
// fail the caller; errors stay inside the implementation.
type Auditor interface {
	RecordPermissionCheck(ctx context.Context, check CheckContext, success bool, errorDetail string)
	RecordRoleChange(ctx context.Context, targetUserID, organizationID, performedBy uuid.UUID, oldRole, newRole Role)
}

// ApplyFailedDetail prefixes the audit detail of a granted op whose change was rolled back.
const ApplyFailedDetail = "apply_failed"

// Authorizer answers "may actor A perform operation O in organization G".
type Authorizer struct {
	auditor Auditor
}

// NewAuthorizer creates an Authorizer reporting to auditor. auditor may be nil.
func NewAuthorizer(auditor Auditor) *Authorizer {
	return &Authorizer{auditor: auditor}
}

// Authorize evaluates op for actor against the organization's membership snapshot.
// A snapshot without an organization is taken to belong to organizationID; a
// snapshot of another organization panics.
func (a *Authorizer) Authorize(ctx context.Context, actor Actor, organizationID uuid.UUID, op Operation, snapshot Snapshot) Decision {
	switch snapshot.OrganizationID {
	case uuid.Nil:
		snapshot.OrganizationID = organizationID
	case organizationID:
	default:
		panic(fmt.Sprintf("rbac: snapshot of organization %s used to authorize in %s", snapshot.OrganizationID, organizationID))
	}

	check := checkContext(actor, organizationID, op, snapshot)
	decision := a.decide(actor, check.ActorRole, op, snapshot)
	check.Bypass = decision.Bypass

	if a.auditor != nil {
		detail := ""
		if !decision.Allowed {
			detail = string(decision.Reason)
		}
		a.auditor.RecordPermissionCheck(ctx, check, decision.Allowed, detail)
	}
	return decision
}

// RecordApplyFailure records that an allowed op could not be applied, so the
// grant already in the audit trail is followed by a denial carrying cause.
func (a *Authorizer) RecordApplyFailure(ctx context.Context, actor Actor, organizationID uuid.UUID, op Operation, snapshot Snapshot, cause error) {
	if a.auditor == nil {
		return
	}
	check := checkContext(actor, organizationID, op, snapshot)
	check.Bypass = actor.IsPlatformAdmin()
	a.auditor.RecordPermissionCheck(ctx, check, false, ApplyFailedDetail+": "+cause.Error())
}

func checkContext(actor Actor, organizationID uuid.UUID, op Operation, snapshot Snapshot) CheckContext {
	check := CheckContext{
		Actor:          actor,
		OrganizationID: organizationID,
		Operation:      op,
	}
	if m, ok := snapshot.Find(actor.UserID); ok {
		check.ActorRole = m.Role
	}
	return check
}

// RecordRoleChange forwards a committed role change to the auditor.
func (a *Authorizer) RecordRoleChange(ctx context.Context, targetUserID, organizationID, performedBy uuid.UUID, oldRole, newRole Role) {
	if a.auditor == nil {
		return
	}
	a.auditor.RecordRoleChange(ctx, targetUserID, organizationID, performedBy, oldRole, newRole)
}

func (a *Authorizer) decide(actor Actor, actorRole Role, op Operation, snapshot Snapshot) Decision {
	if actor.IsPlatformAdmin() {
		if !op.IsMutation() {
			return Decision{Allowed: true, Bypass: true}
		}
		return evaluate(PlatformAdminEvaluator(), RoleOwner, actor, op, snapshot, true)
	}

	if actorRole == "" {
		return deny(apperrors.KindNotAMember)
	}

	if !op.IsMutation() {
		if HasPermission(actorRole, op.Permission) {
			return Decision{Allowed: true}
		}
		return deny(apperrors.KindPermissionDenied)
	}

	if op.Kind == OperationAddMember && !HasPermission(actorRole, PermissionInviteMembers) {
		return deny(apperrors.KindInsufficientManagePermission)
	}
	return evaluate(defaultEvaluator, actorRole, actor, op, snapshot, false)
}

func evaluate(e Evaluator, actorRole Role, actor Actor, op Operation, snapshot Snapshot, bypass bool) Decision {
	var (
		delta MembershipDelta
		err   error
	)
	switch op.Kind {
	case OperationAddMember:
		delta, err = e.Add(snapshot, actorRole, op.TargetUserID, op.Role)
	case OperationRemoveMember:
		delta, err = e.Remove(snapshot, actorRole, actor.UserID, op.TargetUserID)
	case OperationChangeRole:
		delta, err = e.ChangeRole(snapshot, actorRole, actor.UserID, op.TargetUserID, op.Role)
	default:
		panic(fmt.Sprintf("rbac: unknown operation kind %q", string(op.Kind)))
	}
	if err != nil {
		kind, ok := apperrors.MembershipKind(err)
		if !ok {
			panic(fmt.Sprintf("rbac: unexpected evaluation error: %v", err))
		}
		return deny(kind)
	}
	return Decision{Allowed: true, Bypass: bypass, Delta: &delta}
}

func deny(kind apperrors.MembershipErrorKind) Decision {
	return Decision{Allowed: false, Reason: kind}
}
