package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	apperrors "orghub-backend/internal/errors"
	"orghub-backend/internal/mocks"
	"orghub-backend/internal/rbac"
	"orghub-backend/internal/service"
	"orghub-backend/internal/testutils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

// OrganizationHandlerTestSuite defines the test suite for OrganizationHandler
type OrganizationHandlerTestSuite struct {
	suite.Suite
	ctrl                    *gomock.Controller
	mockOrganizationService *mocks.MockOrganizationServiceInterface
	handler                 *OrganizationHandler
	httpSuite               *testutils.HTTPTestSuite
	actor                   rbac.Actor
}

// SetupTest sets up the test suite
func (suite *OrganizationHandlerTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockOrganizationService = mocks.NewMockOrganizationServiceInterface(suite.ctrl)
	suite.handler = NewOrganizationHandler(suite.mockOrganizationService)
	suite.actor = rbac.Actor{UserID: uuid.New(), GlobalRole: rbac.GlobalRoleUser}

	suite.httpSuite = testutils.SetupHTTPTest()
	orgs := suite.httpSuite.Router.Group("/api/v1/organizations", testutils.WithActor(suite.actor))
	{
		orgs.POST("", suite.handler.CreateOrganization)
		orgs.GET("", suite.handler.ListOrganizations)
		orgs.GET("/:id", suite.handler.GetOrganization)
		orgs.PUT("/:id", suite.handler.UpdateOrganization)
		orgs.DELETE("/:id", suite.handler.DeleteOrganization)
		orgs.GET("/:id/settings", suite.handler.GetSettings)
		orgs.PUT("/:id/settings", suite.handler.UpdateSettings)
		orgs.GET("/:id/audit-logs", suite.handler.ListAuditLogs)
	}
}

// TearDownTest cleans up after each test
func (suite *OrganizationHandlerTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

// TestCreateOrganization tests creating an organization
func (suite *OrganizationHandlerTestSuite) TestCreateOrganization() {
	orgID := uuid.New()
	requestBody := map[string]interface{}{
		"name":         "test-org",
		"display_name": "Test Organization",
		"domain":       "test.com",
		"description":  "Test description",
	}

	expectedResponse := &service.OrganizationResponse{
		ID:          orgID,
		Name:        "test-org",
		DisplayName: "Test Organization",
		Domain:      "test.com",
		Description: "Test description",
		CreatedAt:   "2023-01-01T00:00:00Z",
		UpdatedAt:   "2023-01-01T00:00:00Z",
	}

	suite.mockOrganizationService.EXPECT().
		Create(gomock.Any(), suite.actor, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ rbac.Actor, req *service.CreateOrganizationRequest) (*service.OrganizationResponse, error) {
			assert.Equal(suite.T(), "test-org", req.Name)
			assert.Equal(suite.T(), "test.com", req.Domain)
			return expectedResponse, nil
		})

	recorder := suite.httpSuite.MakeRequest(http.MethodPost, "/api/v1/organizations", requestBody)

	assert.Equal(suite.T(), http.StatusCreated, recorder.Code)

	var response service.OrganizationResponse
	testutils.ParseJSONResponse(suite.T(), recorder, &response)
	assert.Equal(suite.T(), expectedResponse.Name, response.Name)
	assert.Equal(suite.T(), expectedResponse.DisplayName, response.DisplayName)
}

// TestCreateOrganizationConflict tests creating a duplicate organization
func (suite *OrganizationHandlerTestSuite) TestCreateOrganizationConflict() {
	suite.mockOrganizationService.EXPECT().
		Create(gomock.Any(), suite.actor, gomock.Any()).
		Return(nil, apperrors.ErrOrganizationExists)

	recorder := suite.httpSuite.MakeRequest(http.MethodPost, "/api/v1/organizations", map[string]interface{}{
		"name": "dup", "display_name": "Dup", "domain": "dup.com",
	})

	testutils.AssertErrorResponse(suite.T(), recorder, http.StatusConflict, "already exists")
}

// TestCreateOrganizationServiceError tests the fallback for unexpected failures
func (suite *OrganizationHandlerTestSuite) TestCreateOrganizationServiceError() {
	suite.mockOrganizationService.EXPECT().
		Create(gomock.Any(), suite.actor, gomock.Any()).
		Return(nil, errors.New("database down"))

	recorder := suite.httpSuite.MakeRequest(http.MethodPost, "/api/v1/organizations", map[string]interface{}{
		"name": "x", "display_name": "X", "domain": "x.com",
	})

	testutils.AssertErrorResponse(suite.T(), recorder, http.StatusInternalServerError, "Failed to create organization")
}

func (suite *OrganizationHandlerTestSuite) TestListOrganizations() {
	suite.mockOrganizationService.EXPECT().
		ListForUser(gomock.Any(), suite.actor, 2, 10).
		Return(&service.OrganizationListResponse{
			Organizations: []service.OrganizationResponse{{ID: uuid.New(), Name: "a"}},
			Total:         11,
			Page:          2,
			PageSize:      10,
		}, nil)

	recorder := suite.httpSuite.MakeRequest(http.MethodGet, "/api/v1/organizations?page=2&page_size=10", nil)

	assert.Equal(suite.T(), http.StatusOK, recorder.Code)
	var response service.OrganizationListResponse
	testutils.ParseJSONResponse(suite.T(), recorder, &response)
	assert.Len(suite.T(), response.Organizations, 1)
	assert.Equal(suite.T(), int64(11), response.Total)
}

func (suite *OrganizationHandlerTestSuite) TestGetOrganization() {
	orgID := uuid.New()
	suite.mockOrganizationService.EXPECT().
		GetByID(gomock.Any(), suite.actor, orgID).
		Return(&service.OrganizationResponse{ID: orgID, Name: "acme"}, nil)

	recorder := suite.httpSuite.MakeRequest(http.MethodGet, "/api/v1/organizations/"+orgID.String(), nil)

	var response service.OrganizationResponse
	testutils.AssertJSONResponse(suite.T(), recorder, http.StatusOK, &response)
	assert.Equal(suite.T(), "acme", response.Name)
}

func (suite *OrganizationHandlerTestSuite) TestGetOrganizationNotFound() {
	orgID := uuid.New()
	suite.mockOrganizationService.EXPECT().
		GetByID(gomock.Any(), suite.actor, orgID).
		Return(nil, apperrors.ErrOrganizationNotFound)

	recorder := suite.httpSuite.MakeRequest(http.MethodGet, "/api/v1/organizations/"+orgID.String(), nil)

	testutils.AssertErrorResponse(suite.T(), recorder, http.StatusNotFound, "organization not found")
}

func (suite *OrganizationHandlerTestSuite) TestGetOrganizationInvalidID() {
	recorder := suite.httpSuite.MakeRequest(http.MethodGet, "/api/v1/organizations/invalid-uuid", nil)

	testutils.AssertErrorResponse(suite.T(), recorder, http.StatusBadRequest, "Invalid organization ID")
}

func (suite *OrganizationHandlerTestSuite) TestUpdateOrganizationDenied() {
	orgID := uuid.New()
	suite.mockOrganizationService.EXPECT().
		Update(gomock.Any(), suite.actor, orgID, &service.UpdateOrganizationRequest{DisplayName: "New"}).
		Return(nil, apperrors.ErrPermissionDenied)

	recorder := suite.httpSuite.MakeRequest(http.MethodPut, "/api/v1/organizations/"+orgID.String(),
		map[string]interface{}{"display_name": "New"})

	testutils.AssertErrorResponse(suite.T(), recorder, http.StatusForbidden, "")
	var response ErrorResponse
	testutils.ParseJSONResponse(suite.T(), recorder, &response)
	assert.Equal(suite.T(), string(apperrors.KindPermissionDenied), response.Reason)
}

func (suite *OrganizationHandlerTestSuite) TestDeleteOrganization() {
	orgID := uuid.New()
	suite.mockOrganizationService.EXPECT().
		Delete(gomock.Any(), suite.actor, orgID).
		Return(nil)

	recorder := suite.httpSuite.MakeRequest(http.MethodDelete, "/api/v1/organizations/"+orgID.String(), nil)

	assert.Equal(suite.T(), http.StatusNoContent, recorder.Code)
}

func (suite *OrganizationHandlerTestSuite) TestGetSettings() {
	orgID := uuid.New()
	suite.mockOrganizationService.EXPECT().
		GetSettings(gomock.Any(), suite.actor, orgID).
		Return(json.RawMessage(`{"theme":"dark"}`), nil)

	recorder := suite.httpSuite.MakeRequest(http.MethodGet, "/api/v1/organizations/"+orgID.String()+"/settings", nil)

	testutils.AssertSuccessResponse(suite.T(), recorder, http.StatusOK)
	assert.JSONEq(suite.T(), `{"theme":"dark"}`, recorder.Body.String())
}

func (suite *OrganizationHandlerTestSuite) TestUpdateSettings() {
	orgID := uuid.New()
	suite.mockOrganizationService.EXPECT().
		UpdateSettings(gomock.Any(), suite.actor, orgID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ rbac.Actor, _ uuid.UUID, settings json.RawMessage) (json.RawMessage, error) {
			assert.JSONEq(suite.T(), `{"retention_days":30}`, string(settings))
			return settings, nil
		})

	recorder := suite.httpSuite.MakeRequest(http.MethodPut, "/api/v1/organizations/"+orgID.String()+"/settings",
		map[string]interface{}{"retention_days": 30})

	assert.Equal(suite.T(), http.StatusOK, recorder.Code)
	assert.JSONEq(suite.T(), `{"retention_days":30}`, recorder.Body.String())
}

func (suite *OrganizationHandlerTestSuite) TestUpdateSettingsRejectsNonObject() {
	orgID := uuid.New()
	suite.mockOrganizationService.EXPECT().
		UpdateSettings(gomock.Any(), suite.actor, orgID, gomock.Any()).
		Return(nil, apperrors.NewValidationError("settings", "must be a JSON object"))

	recorder := suite.httpSuite.MakeRequest(http.MethodPut, "/api/v1/organizations/"+orgID.String()+"/settings", []int{1, 2})

	testutils.AssertErrorResponse(suite.T(), recorder, http.StatusBadRequest, "must be a JSON object")
}

func (suite *OrganizationHandlerTestSuite) TestListAuditLogs() {
	orgID := uuid.New()
	suite.mockOrganizationService.EXPECT().
		ListAuditLogs(gomock.Any(), suite.actor, orgID, 1, 20).
		Return(&service.AuditLogListResponse{
			Entries: []service.AuditLogResponse{{ID: uuid.New(), EventType: "permission_check", Status: "success"}},
			Total:   1, Page: 1, PageSize: 20,
		}, nil)

	recorder := suite.httpSuite.MakeRequest(http.MethodGet, "/api/v1/organizations/"+orgID.String()+"/audit-logs", nil)

	assert.Equal(suite.T(), http.StatusOK, recorder.Code)
	var response service.AuditLogListResponse
	testutils.ParseJSONResponse(suite.T(), recorder, &response)
	assert.Len(suite.T(), response.Entries, 1)
	assert.Equal(suite.T(), "permission_check", response.Entries[0].EventType)
}

func TestOrganizationHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(OrganizationHandlerTestSuite))
}
