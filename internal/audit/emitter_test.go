package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"orghub-backend/internal/database/models"
	"orghub-backend/internal/mocks"
	"orghub-backend/internal/rbac"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type EmitterTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	mockSink *mocks.MockSink
	emitter  *Emitter
	written  []*models.AuditLog

	actorID uuid.UUID
	orgID   uuid.UUID
}

func (suite *EmitterTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockSink = mocks.NewMockSink(suite.ctrl)
	suite.emitter = NewEmitter(suite.mockSink)
	suite.emitter.now = func() time.Time {
		return time.Date(2024, 3, 5, 14, 7, 9, 123456789, time.FixedZone("CET", 3600))
	}
	suite.written = nil
	suite.actorID = uuid.New()
	suite.orgID = uuid.New()
}

func (suite *EmitterTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *EmitterTestSuite) capture() {
	suite.mockSink.EXPECT().
		Write(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, entry *models.AuditLog) error {
			suite.written = append(suite.written, entry)
			return nil
		}).
		Times(1)
}

func (suite *EmitterTestSuite) details(entry *models.AuditLog) map[string]string {
	var details map[string]string
	suite.Require().NoError(json.Unmarshal(entry.Details, &details))
	return details
}

func (suite *EmitterTestSuite) TestGrantedPermissionCheck() {
	suite.capture()

	suite.emitter.RecordPermissionCheck(context.Background(), rbac.CheckContext{
		Actor:          rbac.Actor{UserID: suite.actorID, GlobalRole: rbac.GlobalRoleUser},
		ActorRole:      rbac.RoleAdmin,
		OrganizationID: suite.orgID,
		Operation:      rbac.Capability(rbac.PermissionManageSettings),
	}, true, "")

	suite.Require().Len(suite.written, 1)
	entry := suite.written[0]
	suite.Equal(EventPermissionCheck, entry.EventType)
	suite.Equal(StatusGranted, entry.Status)
	suite.Equal(suite.actorID, entry.ActorID)
	suite.Require().NotNil(entry.OrganizationID)
	suite.Equal(suite.orgID, *entry.OrganizationID)
	suite.Nil(entry.TargetUserID)
	suite.Equal("capability:manage_settings", entry.Operation)
	suite.Equal("2024-03-05T13:07:09.123Z", entry.Timestamp)

	details := suite.details(entry)
	suite.Equal("granted", details["decision"])
	suite.Equal("manage_settings", details["permission"])
	suite.Equal("admin", details["actor_role"])
	suite.NotContains(details, "reason")
}

func (suite *EmitterTestSuite) TestDeniedPermissionCheck() {
	suite.capture()
	target := uuid.New()

	suite.emitter.RecordPermissionCheck(context.Background(), rbac.CheckContext{
		Actor:          rbac.Actor{UserID: suite.actorID},
		ActorRole:      rbac.RoleAdmin,
		OrganizationID: suite.orgID,
		Operation:      rbac.AddMember(target, rbac.RoleOwner),
	}, false, "insufficient_grant_permission")

	entry := suite.written[0]
	suite.Equal(StatusDenied, entry.Status)
	suite.Require().NotNil(entry.TargetUserID)
	suite.Equal(target, *entry.TargetUserID)

	details := suite.details(entry)
	suite.Equal("denied", details["decision"])
	suite.Equal("add_member", details["operation"])
	suite.Equal("insufficient_grant_permission", details["reason"])
}

func (suite *EmitterTestSuite) TestBypassPermissionCheck() {
	suite.capture()

	suite.emitter.RecordPermissionCheck(context.Background(), rbac.CheckContext{
		Actor:          rbac.Actor{UserID: suite.actorID, GlobalRole: rbac.GlobalRoleAdmin},
		OrganizationID: suite.orgID,
		Operation:      rbac.Capability(rbac.PermissionDeleteOrganization),
		Bypass:         true,
	}, true, "")

	entry := suite.written[0]
	suite.Equal(StatusBypass, entry.Status)
	details := suite.details(entry)
	suite.Equal("admin", details["global_role"])
	suite.NotContains(details, "actor_role")
}

func (suite *EmitterTestSuite) TestRefusedBypassIsDenied() {
	suite.capture()

	suite.emitter.RecordPermissionCheck(context.Background(), rbac.CheckContext{
		Actor:          rbac.Actor{UserID: suite.actorID, GlobalRole: rbac.GlobalRoleAdmin},
		OrganizationID: suite.orgID,
		Operation:      rbac.RemoveMember(uuid.New()),
		Bypass:         true,
	}, false, "last_owner")

	suite.Equal(StatusDenied, suite.written[0].Status)
}

func (suite *EmitterTestSuite) TestRoleChange() {
	suite.capture()
	target := uuid.New()

	suite.emitter.RecordRoleChange(context.Background(), target, suite.orgID, suite.actorID, rbac.RoleMember, rbac.RoleAdmin)

	entry := suite.written[0]
	suite.Equal(EventRoleChange, entry.EventType)
	suite.Equal(StatusGranted, entry.Status)
	suite.Equal(suite.actorID, entry.ActorID)
	suite.Equal(target, *entry.TargetUserID)
	suite.Equal("change_role:"+target.String()+":admin", entry.Operation)

	details := suite.details(entry)
	suite.Equal(map[string]string{"old_role": "member", "new_role": "admin"}, details)
}

func (suite *EmitterTestSuite) TestSinkFailureIsSwallowed() {
	hook := test.NewLocal(logrus.StandardLogger())
	defer hook.Reset()

	suite.mockSink.EXPECT().Write(gomock.Any(), gomock.Any()).Return(errors.New("disk full")).Times(1)

	suite.NotPanics(func() {
		suite.emitter.RecordRoleChange(context.Background(), uuid.New(), suite.orgID, suite.actorID, rbac.RoleMember, rbac.RoleAdmin)
	})

	var found bool
	for _, e := range hook.AllEntries() {
		if e.Message == "failed to write audit record" {
			found = true
			suite.Equal(logrus.ErrorLevel, e.Level)
			suite.Equal("disk full", e.Data["error"])
		}
	}
	suite.True(found)
}

func (suite *EmitterTestSuite) TestSinkPanicIsContained() {
	hook := test.NewLocal(logrus.StandardLogger())
	defer hook.Reset()

	suite.mockSink.EXPECT().
		Write(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, *models.AuditLog) error {
			panic("sink down")
		}).
		Times(1)

	suite.NotPanics(func() {
		suite.emitter.RecordPermissionCheck(context.Background(), rbac.CheckContext{
			Actor:          rbac.Actor{UserID: suite.actorID},
			OrganizationID: suite.orgID,
			Operation:      rbac.Capability(rbac.PermissionViewProject),
		}, true, "")
	})

	var found bool
	for _, e := range hook.AllEntries() {
		if e.Message == "audit sink panicked" {
			found = true
			suite.Equal(logrus.ErrorLevel, e.Level)
			suite.Equal("sink down", e.Data["panic"])
			suite.Equal(EventPermissionCheck, e.Data["event_type"])
		}
	}
	suite.True(found)
}

func TestEmitterTestSuite(t *testing.T) {
	suite.Run(t, new(EmitterTestSuite))
}

func TestEmitterWithoutSink(t *testing.T) {
	emitter := NewEmitter(nil)
	require.NotPanics(t, func() {
		emitter.RecordPermissionCheck(context.Background(), rbac.CheckContext{Operation: rbac.Capability(rbac.PermissionViewProject)}, true, "")
	})
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2023, 12, 31, 23, 59, 59, 999999999, time.UTC)
	assert.Equal(t, "2023-12-31T23:59:59.999Z", FormatTimestamp(ts))

	ts = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-01T00:00:00.000Z", FormatTimestamp(ts))
}

func TestEmitterFeedsAuthorizer(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockSink(ctrl)

	var statuses []string
	sink.EXPECT().
		Write(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, entry *models.AuditLog) error {
			statuses = append(statuses, entry.Status)
			return nil
		}).
		Times(2)

	owner := uuid.New()
	orgID := uuid.New()
	snapshot := rbac.Snapshot{
		OrganizationID: orgID,
		Memberships:    []rbac.Membership{{UserID: owner, OrganizationID: orgID, Role: rbac.RoleOwner}},
	}
	authorizer := rbac.NewAuthorizer(NewEmitter(sink))

	authorizer.Authorize(context.Background(), rbac.Actor{UserID: owner}, orgID, rbac.Capability(rbac.PermissionDeleteOrganization), snapshot)
	authorizer.Authorize(context.Background(), rbac.Actor{UserID: owner}, orgID, rbac.RemoveMember(owner), snapshot)

	assert.Equal(t, []string{StatusGranted, StatusDenied}, statuses)
}
