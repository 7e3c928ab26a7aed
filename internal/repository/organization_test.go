//go:build integration
// +build integration

package repository

import (
	"encoding/json"
	"testing"
	"time"

	"orghub-backend/internal/database/models"
	"orghub-backend/internal/rbac"
	"orghub-backend/internal/testutils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// OrganizationRepositoryTestSuite tests the OrganizationRepository
type OrganizationRepositoryTestSuite struct {
	suite.Suite
	baseTestSuite  *testutils.BaseTestSuite
	repo           *OrganizationRepository
	userRepo       *UserRepository
	membershipRepo *MembershipRepository
	factories      *testutils.FactorySet
}

// SetupSuite runs before all tests in the suite
func (suite *OrganizationRepositoryTestSuite) SetupSuite() {
	suite.baseTestSuite = testutils.SetupTestSuite(suite.T())

	suite.repo = NewOrganizationRepository(suite.baseTestSuite.DB)
	suite.userRepo = NewUserRepository(suite.baseTestSuite.DB)
	suite.membershipRepo = NewMembershipRepository(suite.baseTestSuite.DB)
	suite.factories = testutils.NewFactorySet()
}

// TearDownSuite runs after all tests in the suite
func (suite *OrganizationRepositoryTestSuite) TearDownSuite() {
	suite.baseTestSuite.TeardownTestSuite()
}

// SetupTest runs before each test
func (suite *OrganizationRepositoryTestSuite) SetupTest() {
	suite.baseTestSuite.SetupTest()
}

// TearDownTest runs after each test
func (suite *OrganizationRepositoryTestSuite) TearDownTest() {
	suite.baseTestSuite.TearDownTest()
}

func (suite *OrganizationRepositoryTestSuite) createUser() *models.User {
	user := suite.factories.User.Create()
	suite.Require().NoError(suite.userRepo.Create(user))
	return user
}

// TestCreate tests creating a new organization
func (suite *OrganizationRepositoryTestSuite) TestCreate() {
	org := suite.factories.Organization.Create()

	err := suite.repo.Create(org)

	suite.NoError(err)
	suite.NotEqual(uuid.Nil, org.ID)
	suite.NotZero(org.CreatedAt)
	suite.NotZero(org.UpdatedAt)
}

// TestCreateDuplicateName tests the unique constraint on name
func (suite *OrganizationRepositoryTestSuite) TestCreateDuplicateName() {
	suite.NoError(suite.repo.Create(suite.factories.Organization.WithName("test-org")))

	err := suite.repo.Create(suite.factories.Organization.WithName("test-org"))

	suite.Error(err)
	suite.Contains(err.Error(), "duplicate key value")
}

// TestCreateWithOwner tests that the seed owner membership is written with the organization
func (suite *OrganizationRepositoryTestSuite) TestCreateWithOwner() {
	owner := suite.createUser()
	org := suite.factories.Organization.Create()
	joinedAt := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	err := suite.repo.CreateWithOwner(org, owner.ID, joinedAt)
	suite.Require().NoError(err)

	membership, err := suite.membershipRepo.GetByUserAndOrganization(owner.ID, org.ID)
	suite.Require().NoError(err)
	suite.Equal(rbac.RoleOwner, membership.Role)
	suite.True(joinedAt.Equal(membership.JoinedAt))

	owners, err := suite.membershipRepo.CountOwners(org.ID)
	suite.NoError(err)
	suite.Equal(int64(1), owners)
}

// TestCreateWithOwnerRollsBack tests that a failing owner insert leaves no organization behind
func (suite *OrganizationRepositoryTestSuite) TestCreateWithOwnerRollsBack() {
	org := suite.factories.Organization.Create()

	err := suite.repo.CreateWithOwner(org, uuid.New(), time.Now())
	suite.Error(err)

	_, err = suite.repo.GetByID(org.ID)
	suite.Equal(gorm.ErrRecordNotFound, err)
}

// TestGetByID tests retrieving an organization by ID
func (suite *OrganizationRepositoryTestSuite) TestGetByID() {
	org := suite.factories.Organization.Create()
	suite.Require().NoError(suite.repo.Create(org))

	retrieved, err := suite.repo.GetByID(org.ID)

	suite.NoError(err)
	suite.Equal(org.ID, retrieved.ID)
	suite.Equal(org.Name, retrieved.Name)
	suite.JSONEq(string(org.Settings), string(retrieved.Settings))
}

// TestGetByIDNotFound tests retrieving a non-existent organization
func (suite *OrganizationRepositoryTestSuite) TestGetByIDNotFound() {
	org, err := suite.repo.GetByID(uuid.New())

	suite.Equal(gorm.ErrRecordNotFound, err)
	suite.Nil(org)
}

// TestGetByNameAndDomain tests the unique lookups
func (suite *OrganizationRepositoryTestSuite) TestGetByNameAndDomain() {
	org := suite.factories.Organization.WithDomain("acme.io")
	suite.Require().NoError(suite.repo.Create(org))

	byName, err := suite.repo.GetByName(org.Name)
	suite.NoError(err)
	suite.Equal(org.ID, byName.ID)

	byDomain, err := suite.repo.GetByDomain("acme.io")
	suite.NoError(err)
	suite.Equal(org.ID, byDomain.ID)
}

// TestGetByUserID tests listing the organizations a user belongs to
func (suite *OrganizationRepositoryTestSuite) TestGetByUserID() {
	user := suite.createUser()
	other := suite.createUser()

	mine1 := suite.factories.Organization.WithName("a-org")
	mine2 := suite.factories.Organization.WithName("b-org")
	theirs := suite.factories.Organization.WithName("c-org")
	suite.Require().NoError(suite.repo.CreateWithOwner(mine1, user.ID, time.Now()))
	suite.Require().NoError(suite.repo.CreateWithOwner(mine2, other.ID, time.Now()))
	suite.Require().NoError(suite.repo.CreateWithOwner(theirs, other.ID, time.Now()))
	suite.Require().NoError(suite.membershipRepo.Create(suite.factories.Membership.Create(user.ID, mine2.ID, rbac.RoleMember)))

	orgs, total, err := suite.repo.GetByUserID(user.ID, 10, 0)

	suite.NoError(err)
	suite.Equal(int64(2), total)
	suite.Require().Len(orgs, 2)
	suite.Equal("a-org", orgs[0].Name)
	suite.Equal("b-org", orgs[1].Name)
}

// TestUpdateSettings tests persisting the settings document
func (suite *OrganizationRepositoryTestSuite) TestUpdateSettings() {
	org := suite.factories.Organization.Create()
	suite.Require().NoError(suite.repo.Create(org))

	org.Settings = json.RawMessage(`{"require_mfa":true}`)
	org.DisplayName = "Renamed"
	suite.Require().NoError(suite.repo.Update(org))

	retrieved, err := suite.repo.GetByID(org.ID)
	suite.NoError(err)
	suite.Equal("Renamed", retrieved.DisplayName)
	suite.JSONEq(`{"require_mfa":true}`, string(retrieved.Settings))
}

// TestDeleteCascadesMemberships tests that memberships go with their organization
func (suite *OrganizationRepositoryTestSuite) TestDeleteCascadesMemberships() {
	owner := suite.createUser()
	org := suite.factories.Organization.Create()
	suite.Require().NoError(suite.repo.CreateWithOwner(org, owner.ID, time.Now()))

	suite.Require().NoError(suite.repo.Delete(org.ID))

	_, err := suite.membershipRepo.GetByUserAndOrganization(owner.ID, org.ID)
	suite.Equal(gorm.ErrRecordNotFound, err)
}

// TestGetAll tests pagination over all organizations
func (suite *OrganizationRepositoryTestSuite) TestGetAll() {
	for _, name := range []string{"org-c", "org-a", "org-b"} {
		suite.Require().NoError(suite.repo.Create(suite.factories.Organization.WithName(name)))
	}

	orgs, total, err := suite.repo.GetAll(2, 0)
	suite.NoError(err)
	suite.Equal(int64(3), total)
	suite.Require().Len(orgs, 2)
	suite.Equal("org-a", orgs[0].Name)
}

// TestOrganizationRepositoryTestSuite runs the test suite
func TestOrganizationRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(OrganizationRepositoryTestSuite))
}
