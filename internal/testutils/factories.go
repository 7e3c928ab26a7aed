package testutils

import (
	"encoding/json"
	"time"

	"orghub-backend/internal/database/models"
	"orghub-backend/internal/rbac"

	"github.com/google/uuid"
)

func shortID() string {
	return uuid.New().String()[:8]
}

// OrganizationFactory provides methods to create test Organization data
type OrganizationFactory struct{}

// NewOrganizationFactory creates a new OrganizationFactory
func NewOrganizationFactory() *OrganizationFactory {
	return &OrganizationFactory{}
}

// Create creates a test Organization with unique name and domain
func (f *OrganizationFactory) Create() *models.Organization {
	suffix := shortID()
	return &models.Organization{
		BaseModel: models.BaseModel{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		Name:        "org-" + suffix,
		DisplayName: "Test Organization " + suffix,
		Description: "A test organization for testing purposes",
		Domain:      suffix + ".test.com",
		Settings:    json.RawMessage(`{"default_role":"member"}`),
	}
}

// WithName sets a custom name for the organization
func (f *OrganizationFactory) WithName(name string) *models.Organization {
	org := f.Create()
	org.Name = name
	org.DisplayName = name + " Display Name"
	return org
}

// WithDomain sets a custom domain for the organization
func (f *OrganizationFactory) WithDomain(domain string) *models.Organization {
	org := f.Create()
	org.Domain = domain
	return org
}

// UserFactory provides methods to create test User data
type UserFactory struct{}

// NewUserFactory creates a new UserFactory
func NewUserFactory() *UserFactory {
	return &UserFactory{}
}

// Create creates a test User with a unique email
func (f *UserFactory) Create() *models.User {
	return &models.User{
		BaseModel: models.BaseModel{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		Email:      "user-" + shortID() + "@test.com",
		FirstName:  "John",
		LastName:   "Doe",
		GlobalRole: rbac.GlobalRoleUser,
	}
}

// WithEmail sets a custom email for the user
func (f *UserFactory) WithEmail(email string) *models.User {
	user := f.Create()
	user.Email = email
	return user
}

// PlatformAdmin creates a user with the global admin role
func (f *UserFactory) PlatformAdmin() *models.User {
	user := f.Create()
	user.GlobalRole = rbac.GlobalRoleAdmin
	return user
}

// MembershipFactory provides methods to create test Membership data
type MembershipFactory struct{}

// NewMembershipFactory creates a new MembershipFactory
func NewMembershipFactory() *MembershipFactory {
	return &MembershipFactory{}
}

// Create creates a membership of userID in orgID with role
func (f *MembershipFactory) Create(userID, orgID uuid.UUID, role rbac.Role) *models.Membership {
	return &models.Membership{
		BaseModel: models.BaseModel{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		UserID:         userID,
		OrganizationID: orgID,
		Role:           role,
		JoinedAt:       time.Now().UTC().Truncate(time.Microsecond),
	}
}

// ProjectFactory provides methods to create test Project data
type ProjectFactory struct{}

// NewProjectFactory creates a new ProjectFactory
func NewProjectFactory() *ProjectFactory {
	return &ProjectFactory{}
}

// Create creates a test Project with default values
func (f *ProjectFactory) Create() *models.Project {
	return &models.Project{
		BaseModel: models.BaseModel{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		OrganizationID: uuid.New(),
		Name:           "project-" + shortID(),
		DisplayName:    "Test Project",
		Description:    "A test project for testing purposes",
		Status:         models.ProjectStatusActive,
	}
}

// WithOrganization sets the organization ID for the project
func (f *ProjectFactory) WithOrganization(orgID uuid.UUID) *models.Project {
	project := f.Create()
	project.OrganizationID = orgID
	return project
}

// WithName sets a custom name for the project
func (f *ProjectFactory) WithName(name string) *models.Project {
	project := f.Create()
	project.Name = name
	project.DisplayName = name + " Project"
	return project
}

// AuditLogFactory provides methods to create test AuditLog data
type AuditLogFactory struct{}

// NewAuditLogFactory creates a new AuditLogFactory
func NewAuditLogFactory() *AuditLogFactory {
	return &AuditLogFactory{}
}

// Create creates a granted permission check record for actorID in orgID
func (f *AuditLogFactory) Create(actorID, orgID uuid.UUID) *models.AuditLog {
	return &models.AuditLog{
		EventType:      "authz.permission_check",
		Status:         "granted",
		ActorID:        actorID,
		OrganizationID: &orgID,
		Operation:      "capability:view_project",
		Details:        json.RawMessage(`{"actor_role":"member"}`),
		Timestamp:      time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
	}
}

// FactorySet provides access to all factories
type FactorySet struct {
	Organization *OrganizationFactory
	User         *UserFactory
	Membership   *MembershipFactory
	Project      *ProjectFactory
	AuditLog     *AuditLogFactory
}

// NewFactorySet creates a new set of all factories
func NewFactorySet() *FactorySet {
	return &FactorySet{
		Organization: NewOrganizationFactory(),
		User:         NewUserFactory(),
		Membership:   NewMembershipFactory(),
		Project:      NewProjectFactory(),
		AuditLog:     NewAuditLogFactory(),
	}
}
