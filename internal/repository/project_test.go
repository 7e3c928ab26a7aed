//go:build integration
// +build integration

package repository

import (
	"testing"

	"orghub-backend/internal/database/models"
	"orghub-backend/internal/testutils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// ProjectRepositoryTestSuite tests the ProjectRepository
type ProjectRepositoryTestSuite struct {
	suite.Suite
	baseTestSuite *testutils.BaseTestSuite
	repo          *ProjectRepository
	orgRepo       *OrganizationRepository
	factories     *testutils.FactorySet
	org           *models.Organization
}

// SetupSuite runs before all tests in the suite
func (suite *ProjectRepositoryTestSuite) SetupSuite() {
	suite.baseTestSuite = testutils.SetupTestSuite(suite.T())
	suite.repo = NewProjectRepository(suite.baseTestSuite.DB)
	suite.orgRepo = NewOrganizationRepository(suite.baseTestSuite.DB)
	suite.factories = testutils.NewFactorySet()
}

// TearDownSuite runs after all tests in the suite
func (suite *ProjectRepositoryTestSuite) TearDownSuite() {
	suite.baseTestSuite.TeardownTestSuite()
}

// SetupTest runs before each test
func (suite *ProjectRepositoryTestSuite) SetupTest() {
	suite.baseTestSuite.SetupTest()
	suite.org = suite.factories.Organization.Create()
	suite.Require().NoError(suite.orgRepo.Create(suite.org))
}

// TearDownTest runs after each test
func (suite *ProjectRepositoryTestSuite) TearDownTest() {
	suite.baseTestSuite.TearDownTest()
}

// TestCreate tests creating a new project
func (suite *ProjectRepositoryTestSuite) TestCreate() {
	project := suite.factories.Project.WithOrganization(suite.org.ID)

	err := suite.repo.Create(project)

	suite.NoError(err)
	suite.NotEqual(uuid.Nil, project.ID)
}

// TestCreateDuplicateNameInOrganization tests the per-organization unique name
func (suite *ProjectRepositoryTestSuite) TestCreateDuplicateNameInOrganization() {
	first := suite.factories.Project.WithName("api")
	first.OrganizationID = suite.org.ID
	suite.Require().NoError(suite.repo.Create(first))

	second := suite.factories.Project.WithName("api")
	second.OrganizationID = suite.org.ID
	err := suite.repo.Create(second)
	suite.Error(err)

	otherOrg := suite.factories.Organization.Create()
	suite.Require().NoError(suite.orgRepo.Create(otherOrg))
	third := suite.factories.Project.WithName("api")
	third.OrganizationID = otherOrg.ID
	suite.NoError(suite.repo.Create(third))
}

// TestGetByIDAndName tests project lookups
func (suite *ProjectRepositoryTestSuite) TestGetByIDAndName() {
	project := suite.factories.Project.WithName("billing")
	project.OrganizationID = suite.org.ID
	suite.Require().NoError(suite.repo.Create(project))

	byID, err := suite.repo.GetByID(project.ID)
	suite.NoError(err)
	suite.Equal("billing", byID.Name)

	byName, err := suite.repo.GetByName(suite.org.ID, "billing")
	suite.NoError(err)
	suite.Equal(project.ID, byName.ID)

	_, err = suite.repo.GetByName(uuid.New(), "billing")
	suite.Equal(gorm.ErrRecordNotFound, err)
}

// TestGetByOrganizationID tests listing projects in an organization
func (suite *ProjectRepositoryTestSuite) TestGetByOrganizationID() {
	for _, name := range []string{"b", "a", "c"} {
		p := suite.factories.Project.WithName(name)
		p.OrganizationID = suite.org.ID
		suite.Require().NoError(suite.repo.Create(p))
	}

	projects, total, err := suite.repo.GetByOrganizationID(suite.org.ID, 10, 0)
	suite.NoError(err)
	suite.Equal(int64(3), total)
	suite.Require().Len(projects, 3)
	suite.Equal("a", projects[0].Name)
}

// TestUpdateOwnerAndDelete tests owner assignment persistence and deletion
func (suite *ProjectRepositoryTestSuite) TestUpdateOwnerAndDelete() {
	owner := suite.factories.User.Create()
	suite.Require().NoError(NewUserRepository(suite.baseTestSuite.DB).Create(owner))

	project := suite.factories.Project.WithOrganization(suite.org.ID)
	suite.Require().NoError(suite.repo.Create(project))

	project.OwnerID = &owner.ID
	suite.Require().NoError(suite.repo.Update(project))

	retrieved, err := suite.repo.GetByID(project.ID)
	suite.NoError(err)
	suite.Require().NotNil(retrieved.OwnerID)
	suite.Equal(owner.ID, *retrieved.OwnerID)

	suite.NoError(suite.repo.Delete(project.ID))
	_, err = suite.repo.GetByID(project.ID)
	suite.Equal(gorm.ErrRecordNotFound, err)
}

// TestProjectRepositoryTestSuite runs the test suite
func TestProjectRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(ProjectRepositoryTestSuite))
}
