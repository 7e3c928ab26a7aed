package service_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"orghub-backend/internal/database/models"
	apperrors "orghub-backend/internal/errors"
	"orghub-backend/internal/mocks"
	"orghub-backend/internal/rbac"
	"orghub-backend/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

// OrganizationServiceTestSuite defines the test suite for OrganizationService
type OrganizationServiceTestSuite struct {
	suite.Suite
	ctrl                *gomock.Controller
	mockOrgRepo         *mocks.MockOrganizationRepositoryInterface
	mockMemberships     *mocks.MockMembershipRepositoryInterface
	mockAuditRepo       *mocks.MockAuditLogRepositoryInterface
	mockAuditor         *mocks.MockAuditor
	organizationService *service.OrganizationService
	ctx                 context.Context

	org   *models.Organization
	actor rbac.Actor
}

// SetupTest sets up the test suite
func (suite *OrganizationServiceTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockOrgRepo = mocks.NewMockOrganizationRepositoryInterface(suite.ctrl)
	suite.mockMemberships = mocks.NewMockMembershipRepositoryInterface(suite.ctrl)
	suite.mockAuditRepo = mocks.NewMockAuditLogRepositoryInterface(suite.ctrl)
	suite.mockAuditor = mocks.NewMockAuditor(suite.ctrl)
	suite.mockAuditor.EXPECT().RecordPermissionCheck(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	suite.ctx = context.Background()

	suite.organizationService = service.NewOrganizationService(
		suite.mockOrgRepo,
		suite.mockMemberships,
		suite.mockAuditRepo,
		rbac.NewAuthorizer(suite.mockAuditor),
		validator.New(),
	)

	suite.org = &models.Organization{
		BaseModel:   models.BaseModel{ID: uuid.New()},
		Name:        "acme",
		DisplayName: "Acme",
		Domain:      "acme.example.com",
	}
	suite.actor = rbac.Actor{UserID: uuid.New(), GlobalRole: rbac.GlobalRoleUser}
}

// TearDownTest cleans up after each test
func (suite *OrganizationServiceTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

// expectRole makes the actor hold role in suite.org; an empty role means not a member
func (suite *OrganizationServiceTestSuite) expectRole(role rbac.Role) {
	suite.mockOrgRepo.EXPECT().GetByID(suite.org.ID).Return(suite.org, nil).Times(1)
	if role == "" {
		suite.mockMemberships.EXPECT().
			GetByUserAndOrganization(suite.actor.UserID, suite.org.ID).
			Return(nil, gorm.ErrRecordNotFound).
			Times(1)
		return
	}
	suite.mockMemberships.EXPECT().
		GetByUserAndOrganization(suite.actor.UserID, suite.org.ID).
		Return(&models.Membership{UserID: suite.actor.UserID, OrganizationID: suite.org.ID, Role: role}, nil).
		Times(1)
}

// TestCreateOrganization tests creating an organization
func (suite *OrganizationServiceTestSuite) TestCreateOrganization() {
	req := &service.CreateOrganizationRequest{
		Name:        "test-org",
		DisplayName: "Test Organization",
		Description: "A test organization",
		Domain:      "test.com",
	}

	suite.mockOrgRepo.EXPECT().GetByName(req.Name).Return(nil, gorm.ErrRecordNotFound).Times(1)
	suite.mockOrgRepo.EXPECT().GetByDomain(req.Domain).Return(nil, gorm.ErrRecordNotFound).Times(1)
	suite.mockOrgRepo.EXPECT().
		CreateWithOwner(gomock.Any(), suite.actor.UserID, gomock.Any()).
		DoAndReturn(func(org *models.Organization, _ uuid.UUID, _ time.Time) error {
			assert.JSONEq(suite.T(), `{}`, string(org.Settings))
			return nil
		}).
		Times(1)

	response, err := suite.organizationService.Create(suite.ctx, suite.actor, req)

	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), response)
	assert.Equal(suite.T(), req.Name, response.Name)
	assert.Equal(suite.T(), req.DisplayName, response.DisplayName)
	assert.Equal(suite.T(), req.Domain, response.Domain)
}

// TestCreateOrganizationValidationError tests creating an organization with validation error
func (suite *OrganizationServiceTestSuite) TestCreateOrganizationValidationError() {
	req := &service.CreateOrganizationRequest{
		Name:        "",
		DisplayName: "Test Organization",
		Domain:      "test.com",
	}

	response, err := suite.organizationService.Create(suite.ctx, suite.actor, req)

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), response)
	assert.True(suite.T(), apperrors.IsValidation(err))
}

// TestCreateOrganizationSettingsMustBeObject tests the settings document shape
func (suite *OrganizationServiceTestSuite) TestCreateOrganizationSettingsMustBeObject() {
	req := &service.CreateOrganizationRequest{
		Name:        "test-org",
		DisplayName: "Test Organization",
		Domain:      "test.com",
		Settings:    json.RawMessage(`["not","an","object"]`),
	}

	_, err := suite.organizationService.Create(suite.ctx, suite.actor, req)

	assert.True(suite.T(), apperrors.IsValidation(err))
}

// TestCreateOrganizationDuplicateName tests creating an organization with duplicate name
func (suite *OrganizationServiceTestSuite) TestCreateOrganizationDuplicateName() {
	req := &service.CreateOrganizationRequest{Name: "acme", DisplayName: "Acme", Domain: "other.com"}

	suite.mockOrgRepo.EXPECT().GetByName(req.Name).Return(suite.org, nil).Times(1)

	response, err := suite.organizationService.Create(suite.ctx, suite.actor, req)

	assert.ErrorIs(suite.T(), err, apperrors.ErrOrganizationExists)
	assert.Nil(suite.T(), response)
}

// TestCreateOrganizationDuplicateDomain tests creating an organization with duplicate domain
func (suite *OrganizationServiceTestSuite) TestCreateOrganizationDuplicateDomain() {
	req := &service.CreateOrganizationRequest{Name: "other", DisplayName: "Other", Domain: "acme.example.com"}

	suite.mockOrgRepo.EXPECT().GetByName(req.Name).Return(nil, gorm.ErrRecordNotFound).Times(1)
	suite.mockOrgRepo.EXPECT().GetByDomain(req.Domain).Return(suite.org, nil).Times(1)

	_, err := suite.organizationService.Create(suite.ctx, suite.actor, req)

	assert.ErrorIs(suite.T(), err, apperrors.ErrOrganizationExists)
}

// TestGetByID tests that members may view their organization
func (suite *OrganizationServiceTestSuite) TestGetByID() {
	suite.expectRole(rbac.RoleMember)

	response, err := suite.organizationService.GetByID(suite.ctx, suite.actor, suite.org.ID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.org.ID, response.ID)
}

// TestGetByIDNonMember tests that outsiders are refused
func (suite *OrganizationServiceTestSuite) TestGetByIDNonMember() {
	suite.expectRole("")

	response, err := suite.organizationService.GetByID(suite.ctx, suite.actor, suite.org.ID)

	assert.ErrorIs(suite.T(), err, apperrors.ErrNotAMember)
	assert.Nil(suite.T(), response)
}

// TestGetByIDPlatformAdmin tests that platform admins bypass membership
func (suite *OrganizationServiceTestSuite) TestGetByIDPlatformAdmin() {
	suite.actor.GlobalRole = rbac.GlobalRoleAdmin
	suite.expectRole("")

	response, err := suite.organizationService.GetByID(suite.ctx, suite.actor, suite.org.ID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.org.Name, response.Name)
}

// TestGetByIDNotFound tests a missing organization
func (suite *OrganizationServiceTestSuite) TestGetByIDNotFound() {
	id := uuid.New()
	suite.mockOrgRepo.EXPECT().GetByID(id).Return(nil, gorm.ErrRecordNotFound).Times(1)

	_, err := suite.organizationService.GetByID(suite.ctx, suite.actor, id)

	assert.ErrorIs(suite.T(), err, apperrors.ErrOrganizationNotFound)
}

// TestListForUser tests listing the actor's organizations
func (suite *OrganizationServiceTestSuite) TestListForUser() {
	suite.mockOrgRepo.EXPECT().
		GetByUserID(suite.actor.UserID, 20, 0).
		Return([]models.Organization{*suite.org}, int64(1), nil).
		Times(1)

	response, err := suite.organizationService.ListForUser(suite.ctx, suite.actor, 0, 0)

	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), response.Organizations, 1)
	assert.Equal(suite.T(), int64(1), response.Total)
	assert.Equal(suite.T(), 1, response.Page)
	assert.Equal(suite.T(), 20, response.PageSize)
}

// TestListForPlatformAdmin tests that platform admins list every organization
func (suite *OrganizationServiceTestSuite) TestListForPlatformAdmin() {
	suite.actor.GlobalRole = rbac.GlobalRoleAdmin
	suite.mockOrgRepo.EXPECT().
		GetAll(10, 10).
		Return([]models.Organization{*suite.org}, int64(11), nil).
		Times(1)

	response, err := suite.organizationService.ListForUser(suite.ctx, suite.actor, 2, 10)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(11), response.Total)
	assert.Equal(suite.T(), 2, response.Page)
}

// TestUpdate tests that owners may edit the organization
func (suite *OrganizationServiceTestSuite) TestUpdate() {
	suite.expectRole(rbac.RoleOwner)
	suite.mockOrgRepo.EXPECT().Update(gomock.Any()).Return(nil).Times(1)

	response, err := suite.organizationService.Update(suite.ctx, suite.actor, suite.org.ID,
		&service.UpdateOrganizationRequest{DisplayName: "Acme Corp", Description: "Renamed"})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Acme Corp", response.DisplayName)
	assert.Equal(suite.T(), "Renamed", response.Description)
}

// TestUpdateByAdminRefused tests that edit_organization is owner-only
func (suite *OrganizationServiceTestSuite) TestUpdateByAdminRefused() {
	suite.expectRole(rbac.RoleAdmin)

	_, err := suite.organizationService.Update(suite.ctx, suite.actor, suite.org.ID,
		&service.UpdateOrganizationRequest{DisplayName: "Acme Corp"})

	assert.ErrorIs(suite.T(), err, apperrors.ErrPermissionDenied)
}

// TestDelete tests deleting an organization
func (suite *OrganizationServiceTestSuite) TestDelete() {
	suite.expectRole(rbac.RoleOwner)
	suite.mockOrgRepo.EXPECT().Delete(suite.org.ID).Return(nil).Times(1)

	err := suite.organizationService.Delete(suite.ctx, suite.actor, suite.org.ID)

	assert.NoError(suite.T(), err)
}

// TestDeleteByAdminRefused tests that only owners delete organizations
func (suite *OrganizationServiceTestSuite) TestDeleteByAdminRefused() {
	suite.expectRole(rbac.RoleAdmin)

	err := suite.organizationService.Delete(suite.ctx, suite.actor, suite.org.ID)

	assert.ErrorIs(suite.T(), err, apperrors.ErrPermissionDenied)
}

// TestGetSettingsDefaultsToEmptyObject tests reading unset settings
func (suite *OrganizationServiceTestSuite) TestGetSettingsDefaultsToEmptyObject() {
	suite.expectRole(rbac.RoleMember)

	settings, err := suite.organizationService.GetSettings(suite.ctx, suite.actor, suite.org.ID)

	assert.NoError(suite.T(), err)
	assert.JSONEq(suite.T(), `{}`, string(settings))
}

// TestUpdateSettings tests that admins manage settings
func (suite *OrganizationServiceTestSuite) TestUpdateSettings() {
	suite.expectRole(rbac.RoleAdmin)
	suite.mockOrgRepo.EXPECT().
		Update(gomock.Any()).
		DoAndReturn(func(org *models.Organization) error {
			assert.JSONEq(suite.T(), `{"default_role":"member"}`, string(org.Settings))
			return nil
		}).
		Times(1)

	settings, err := suite.organizationService.UpdateSettings(suite.ctx, suite.actor, suite.org.ID,
		json.RawMessage(` {"default_role":"member"} `))

	assert.NoError(suite.T(), err)
	assert.JSONEq(suite.T(), `{"default_role":"member"}`, string(settings))
}

// TestUpdateSettingsByMemberRefused tests that members only read settings
func (suite *OrganizationServiceTestSuite) TestUpdateSettingsByMemberRefused() {
	suite.expectRole(rbac.RoleMember)

	_, err := suite.organizationService.UpdateSettings(suite.ctx, suite.actor, suite.org.ID, json.RawMessage(`{}`))

	assert.ErrorIs(suite.T(), err, apperrors.ErrPermissionDenied)
}

// TestListAuditLogs tests reading the organization audit trail
func (suite *OrganizationServiceTestSuite) TestListAuditLogs() {
	suite.expectRole(rbac.RoleAdmin)
	entry := models.AuditLog{
		ID:        uuid.New(),
		EventType: "authz.permission_check",
		Status:    "granted",
		ActorID:   suite.actor.UserID,
		Operation: "capability:view_project",
		Details:   json.RawMessage(`{"decision":"granted"}`),
		Timestamp: "2024-01-01T00:00:00.000Z",
	}
	suite.mockAuditRepo.EXPECT().
		GetByOrganizationID(suite.org.ID, 50, 0).
		Return([]models.AuditLog{entry}, int64(1), nil).
		Times(1)

	response, err := suite.organizationService.ListAuditLogs(suite.ctx, suite.actor, suite.org.ID, 1, 50)

	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), response.Entries, 1)
	assert.Equal(suite.T(), entry.Operation, response.Entries[0].Operation)
	assert.Equal(suite.T(), entry.Timestamp, response.Entries[0].Timestamp)
}

// TestListAuditLogsByMemberRefused tests that members cannot read the audit trail
func (suite *OrganizationServiceTestSuite) TestListAuditLogsByMemberRefused() {
	suite.expectRole(rbac.RoleMember)

	_, err := suite.organizationService.ListAuditLogs(suite.ctx, suite.actor, suite.org.ID, 1, 20)

	assert.ErrorIs(suite.T(), err, apperrors.ErrPermissionDenied)
}

// TestOrganizationServiceTestSuite runs the test suite
func TestOrganizationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OrganizationServiceTestSuite))
}
