package repository

import (
	"time"

	"orghub-backend/internal/database/models"
	"orghub-backend/internal/rbac"

	"github.com/google/uuid"
)

//go:generate mockgen -source=interfaces.go -destination=../mocks/repository_mocks.go -package=mocks

// OrganizationRepositoryInterface defines the interface for organization repository operations
type OrganizationRepositoryInterface interface {
	Create(org *models.Organization) error
	CreateWithOwner(org *models.Organization, ownerID uuid.UUID, joinedAt time.Time) error
	GetByID(id uuid.UUID) (*models.Organization, error)
	GetByName(name string) (*models.Organization, error)
	GetByDomain(domain string) (*models.Organization, error)
	GetAll(limit, offset int) ([]models.Organization, int64, error)
	GetByUserID(userID uuid.UUID, limit, offset int) ([]models.Organization, int64, error)
	Update(org *models.Organization) error
	Delete(id uuid.UUID) error
}

// UserRepositoryInterface defines the interface for user repository operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	GetByID(id uuid.UUID) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetAll(limit, offset int) ([]models.User, int64, error)
	Update(user *models.User) error
	Delete(id uuid.UUID) error
}

// MembershipRepositoryInterface defines the interface for membership repository operations
type MembershipRepositoryInterface interface {
	GetByUserAndOrganization(userID, orgID uuid.UUID) (*models.Membership, error)
	GetByOrganizationID(orgID uuid.UUID) ([]models.Membership, error)
	GetByUserID(userID uuid.UUID) ([]models.Membership, error)
	CountOwners(orgID uuid.UUID) (int64, error)
	Create(membership *models.Membership) error
	UpdateRole(userID, orgID uuid.UUID, role rbac.Role) error
	Delete(userID, orgID uuid.UUID) error
	ApplyDelta(delta rbac.MembershipDelta) error
	// WithOrganizationLock runs fn in a transaction holding a row lock on the organization.
	// fn receives a repository bound to that transaction.
	WithOrganizationLock(orgID uuid.UUID, fn func(tx MembershipRepositoryInterface) error) error
}

// ProjectRepositoryInterface defines the interface for project repository operations
type ProjectRepositoryInterface interface {
	Create(project *models.Project) error
	GetByID(id uuid.UUID) (*models.Project, error)
	GetByName(orgID uuid.UUID, name string) (*models.Project, error)
	GetByOrganizationID(orgID uuid.UUID, limit, offset int) ([]models.Project, int64, error)
	Update(project *models.Project) error
	Delete(id uuid.UUID) error
}

// AuditLogRepositoryInterface defines the interface for audit log repository operations
type AuditLogRepositoryInterface interface {
	Create(entry *models.AuditLog) error
	GetByOrganizationID(orgID uuid.UUID, limit, offset int) ([]models.AuditLog, int64, error)
	GetByActorID(actorID uuid.UUID, limit, offset int) ([]models.AuditLog, int64, error)
}
