package rbac

import (
	"context"
	"errors"
	"testing"

	apperrors "orghub-backend/internal/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type recordedCheck struct {
	check   CheckContext
	success bool
	detail  string
}

type recordedRoleChange struct {
	target, org, by uuid.UUID
	oldRole         Role
	newRole         Role
}

type recordingAuditor struct {
	checks  []recordedCheck
	changes []recordedRoleChange
}

func (r *recordingAuditor) RecordPermissionCheck(_ context.Context, check CheckContext, success bool, errorDetail string) {
	r.checks = append(r.checks, recordedCheck{check: check, success: success, detail: errorDetail})
}

func (r *recordingAuditor) RecordRoleChange(_ context.Context, target, org, by uuid.UUID, oldRole, newRole Role) {
	r.changes = append(r.changes, recordedRoleChange{target: target, org: org, by: by, oldRole: oldRole, newRole: newRole})
}

type AuthorizerTestSuite struct {
	suite.Suite
	auditor    *recordingAuditor
	authorizer *Authorizer
	ctx        context.Context

	orgID    uuid.UUID
	owner    uuid.UUID
	admin    uuid.UUID
	member   uuid.UUID
	outsider uuid.UUID
	snapshot Snapshot
}

func (suite *AuthorizerTestSuite) SetupTest() {
	suite.auditor = &recordingAuditor{}
	suite.authorizer = NewAuthorizer(suite.auditor)
	suite.ctx = context.Background()

	suite.orgID = uuid.New()
	suite.owner = uuid.New()
	suite.admin = uuid.New()
	suite.member = uuid.New()
	suite.outsider = uuid.New()
	suite.snapshot = snapshotOf(suite.orgID, map[uuid.UUID]Role{
		suite.owner:  RoleOwner,
		suite.admin:  RoleAdmin,
		suite.member: RoleMember,
	})
}

func (suite *AuthorizerTestSuite) actor(id uuid.UUID) Actor {
	return Actor{UserID: id, GlobalRole: GlobalRoleUser}
}

func (suite *AuthorizerTestSuite) TestCapabilityFollowsMatrix() {
	for _, p := range AllPermissions {
		for id, role := range map[uuid.UUID]Role{suite.owner: RoleOwner, suite.admin: RoleAdmin, suite.member: RoleMember} {
			decision := suite.authorizer.Authorize(suite.ctx, suite.actor(id), suite.orgID, Capability(p), suite.snapshot)
			suite.Equal(HasPermission(role, p), decision.Allowed, "%s/%s", role, p)
			if !decision.Allowed {
				suite.ErrorIs(decision.Err(), apperrors.ErrPermissionDenied)
			}
			suite.False(decision.Bypass)
			suite.Nil(decision.Delta)
		}
	}
}

func (suite *AuthorizerTestSuite) TestNonMemberIsRefused() {
	decision := suite.authorizer.Authorize(suite.ctx, suite.actor(suite.outsider), suite.orgID,
		Capability(PermissionViewOrganization), suite.snapshot)

	suite.False(decision.Allowed)
	suite.Equal(apperrors.KindNotAMember, decision.Reason)
	suite.ErrorIs(decision.Err(), apperrors.ErrNotAMember)

	decision = suite.authorizer.Authorize(suite.ctx, suite.actor(suite.outsider), suite.orgID,
		RemoveMember(suite.outsider), suite.snapshot)
	suite.Equal(apperrors.KindNotAMember, decision.Reason)
}

func (suite *AuthorizerTestSuite) TestPlatformAdminBypass() {
	admin := Actor{UserID: suite.outsider, GlobalRole: GlobalRoleAdmin}

	decision := suite.authorizer.Authorize(suite.ctx, admin, suite.orgID, Capability(PermissionDeleteOrganization), suite.snapshot)
	suite.True(decision.Allowed)
	suite.True(decision.Bypass)

	decision = suite.authorizer.Authorize(suite.ctx, admin, suite.orgID, AddMember(uuid.New(), RoleOwner), suite.snapshot)
	suite.True(decision.Allowed)
	suite.True(decision.Bypass)
	suite.Require().NotNil(decision.Delta)
	suite.Equal(RoleOwner, decision.Delta.Membership.Role)

	decision = suite.authorizer.Authorize(suite.ctx, admin, suite.orgID, RemoveMember(suite.owner), suite.snapshot)
	suite.False(decision.Allowed)
	suite.Equal(apperrors.KindLastOwner, decision.Reason)

	suite.Require().Len(suite.auditor.checks, 3)
	suite.True(suite.auditor.checks[0].check.Bypass)
	suite.Equal(Role(""), suite.auditor.checks[0].check.ActorRole)
}

func (suite *AuthorizerTestSuite) TestAddRequiresInvitePermission() {
	decision := suite.authorizer.Authorize(suite.ctx, suite.actor(suite.member), suite.orgID,
		AddMember(uuid.New(), RoleMember), suite.snapshot)
	suite.False(decision.Allowed)
	suite.Equal(apperrors.KindInsufficientManagePermission, decision.Reason)

	decision = suite.authorizer.Authorize(suite.ctx, suite.actor(suite.admin), suite.orgID,
		AddMember(uuid.New(), ""), suite.snapshot)
	suite.True(decision.Allowed)
	suite.Require().NotNil(decision.Delta)
	suite.Equal(DeltaCreate, decision.Delta.Op)
	suite.Equal(RoleMember, decision.Delta.Membership.Role)
}

func (suite *AuthorizerTestSuite) TestInvitePermissionIsCheckedFirst() {
	decision := suite.authorizer.Authorize(suite.ctx, suite.actor(suite.member), suite.orgID,
		AddMember(suite.admin, RoleMember), suite.snapshot)
	suite.False(decision.Allowed)
	suite.Equal(apperrors.KindInsufficientManagePermission, decision.Reason)

	decision = suite.authorizer.Authorize(suite.ctx, suite.actor(suite.member), suite.orgID,
		AddMember(uuid.New(), RoleOwner), suite.snapshot)
	suite.Equal(apperrors.KindInsufficientManagePermission, decision.Reason)

	decision = suite.authorizer.Authorize(suite.ctx, suite.actor(suite.admin), suite.orgID,
		AddMember(suite.member, RoleMember), suite.snapshot)
	suite.Equal(apperrors.KindAlreadyMember, decision.Reason)
}

func (suite *AuthorizerTestSuite) TestSnapshotWithoutOrganizationTakesRequestedOne() {
	snapshot := suite.snapshot
	snapshot.OrganizationID = uuid.Nil

	decision := suite.authorizer.Authorize(suite.ctx, suite.actor(suite.owner), suite.orgID,
		AddMember(uuid.New(), RoleMember), snapshot)

	suite.True(decision.Allowed)
	suite.Require().NotNil(decision.Delta)
	suite.Equal(suite.orgID, decision.Delta.Membership.OrganizationID)
}

func (suite *AuthorizerTestSuite) TestSnapshotOfAnotherOrganizationPanics() {
	other := uuid.New()

	suite.Panics(func() {
		suite.authorizer.Authorize(suite.ctx, suite.actor(suite.owner), other,
			AddMember(uuid.New(), RoleMember), suite.snapshot)
	})
	suite.Empty(suite.auditor.checks)
}

func (suite *AuthorizerTestSuite) TestMutationReasonsComeFromRules() {
	decision := suite.authorizer.Authorize(suite.ctx, suite.actor(suite.admin), suite.orgID,
		AddMember(uuid.New(), RoleOwner), suite.snapshot)
	suite.Equal(apperrors.KindInsufficientGrantPermission, decision.Reason)

	decision = suite.authorizer.Authorize(suite.ctx, suite.actor(suite.owner), suite.orgID,
		ChangeRole(suite.owner, RoleAdmin), suite.snapshot)
	suite.Equal(apperrors.KindSelfRoleChange, decision.Reason)

	decision = suite.authorizer.Authorize(suite.ctx, suite.actor(suite.member), suite.orgID,
		RemoveMember(suite.member), suite.snapshot)
	suite.True(decision.Allowed)
	suite.Equal(DeltaDelete, decision.Delta.Op)
}

func (suite *AuthorizerTestSuite) TestEveryDecisionIsAudited() {
	suite.authorizer.Authorize(suite.ctx, suite.actor(suite.member), suite.orgID, Capability(PermissionViewProject), suite.snapshot)
	suite.authorizer.Authorize(suite.ctx, suite.actor(suite.member), suite.orgID, Capability(PermissionDeleteProject), suite.snapshot)

	suite.Require().Len(suite.auditor.checks, 2)

	granted := suite.auditor.checks[0]
	suite.True(granted.success)
	suite.Empty(granted.detail)
	suite.Equal(RoleMember, granted.check.ActorRole)
	suite.Equal(suite.orgID, granted.check.OrganizationID)

	denied := suite.auditor.checks[1]
	suite.False(denied.success)
	suite.Equal(string(apperrors.KindPermissionDenied), denied.detail)
}

func (suite *AuthorizerTestSuite) TestRecordRoleChangeForwards() {
	suite.authorizer.RecordRoleChange(suite.ctx, suite.member, suite.orgID, suite.owner, RoleMember, RoleAdmin)

	suite.Require().Len(suite.auditor.changes, 1)
	suite.Equal(recordedRoleChange{
		target: suite.member, org: suite.orgID, by: suite.owner, oldRole: RoleMember, newRole: RoleAdmin,
	}, suite.auditor.changes[0])
}

func (suite *AuthorizerTestSuite) TestRecordApplyFailure() {
	op := RemoveMember(suite.member)

	suite.authorizer.RecordApplyFailure(suite.ctx, suite.actor(suite.admin), suite.orgID, op, suite.snapshot, errors.New("connection reset"))

	suite.Require().Len(suite.auditor.checks, 1)
	failed := suite.auditor.checks[0]
	suite.False(failed.success)
	suite.Equal("apply_failed: connection reset", failed.detail)
	suite.Equal(RoleAdmin, failed.check.ActorRole)
	suite.Equal(op, failed.check.Operation)
	suite.False(failed.check.Bypass)
}

func TestAuthorizerTestSuite(t *testing.T) {
	suite.Run(t, new(AuthorizerTestSuite))
}

func TestAuthorizerWithoutAuditor(t *testing.T) {
	authorizer := NewAuthorizer(nil)
	owner := uuid.New()
	s := snapshotOf(uuid.New(), map[uuid.UUID]Role{owner: RoleOwner})

	require.NotPanics(t, func() {
		decision := authorizer.Authorize(context.Background(), Actor{UserID: owner}, s.OrganizationID, Capability(PermissionManageSettings), s)
		assert.True(t, decision.Allowed)
		authorizer.RecordRoleChange(context.Background(), owner, s.OrganizationID, owner, RoleOwner, RoleOwner)
	})
}

func TestOperationString(t *testing.T) {
	id := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	assert.Equal(t, "capability:view_project", Capability(PermissionViewProject).String())
	assert.Equal(t, "change_role:11111111-1111-1111-1111-111111111111:admin", ChangeRole(id, RoleAdmin).String())
	assert.Equal(t, "remove_member:11111111-1111-1111-1111-111111111111", RemoveMember(id).String())
	assert.False(t, Capability(PermissionViewProject).IsMutation())
	assert.True(t, AddMember(id, RoleMember).IsMutation())
}
