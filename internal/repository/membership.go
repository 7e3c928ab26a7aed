package repository

import (
	"fmt"

	"orghub-backend/internal/database/models"
	"orghub-backend/internal/rbac"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MembershipRepository handles database operations for organization memberships
type MembershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository creates a new membership repository
func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// GetByUserAndOrganization retrieves the membership of a user in an organization
func (r *MembershipRepository) GetByUserAndOrganization(userID, orgID uuid.UUID) (*models.Membership, error) {
	var membership models.Membership
	err := r.db.First(&membership, "user_id = ? AND organization_id = ?", userID, orgID).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// GetByOrganizationID retrieves every membership of an organization, oldest first
func (r *MembershipRepository) GetByOrganizationID(orgID uuid.UUID) ([]models.Membership, error) {
	var memberships []models.Membership
	err := r.db.Preload("User").
		Where("organization_id = ?", orgID).
		Order("joined_at ASC").
		Find(&memberships).Error
	if err != nil {
		return nil, err
	}
	return memberships, nil
}

// GetByUserID retrieves every membership held by a user
func (r *MembershipRepository) GetByUserID(userID uuid.UUID) ([]models.Membership, error) {
	var memberships []models.Membership
	err := r.db.Where("user_id = ?", userID).Order("joined_at ASC").Find(&memberships).Error
	if err != nil {
		return nil, err
	}
	return memberships, nil
}

// CountOwners returns the number of owners of an organization
func (r *MembershipRepository) CountOwners(orgID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Membership{}).
		Where("organization_id = ? AND role = ?", orgID, rbac.RoleOwner).
		Count(&count).Error
	return count, err
}

// Create creates a new membership
func (r *MembershipRepository) Create(membership *models.Membership) error {
	return r.db.Omit("User", "Organization").Create(membership).Error
}

// UpdateRole changes the role of a membership, leaving joined_at untouched
func (r *MembershipRepository) UpdateRole(userID, orgID uuid.UUID, role rbac.Role) error {
	result := r.db.Model(&models.Membership{}).
		Where("user_id = ? AND organization_id = ?", userID, orgID).
		Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a membership
func (r *MembershipRepository) Delete(userID, orgID uuid.UUID) error {
	result := r.db.Where("user_id = ? AND organization_id = ?", userID, orgID).Delete(&models.Membership{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ApplyDelta persists an accepted membership mutation
func (r *MembershipRepository) ApplyDelta(delta rbac.MembershipDelta) error {
	m := delta.Membership
	switch delta.Op {
	case rbac.DeltaCreate:
		return r.Create(&models.Membership{
			UserID:         m.UserID,
			OrganizationID: m.OrganizationID,
			Role:           m.Role,
			JoinedAt:       m.JoinedAt,
		})
	case rbac.DeltaUpdateRole:
		return r.UpdateRole(m.UserID, m.OrganizationID, m.Role)
	case rbac.DeltaDelete:
		return r.db.Transaction(func(tx *gorm.DB) error {
			repo := &MembershipRepository{db: tx}
			if err := repo.Delete(m.UserID, m.OrganizationID); err != nil {
				return err
			}
			return repo.releaseProjects(m.UserID, m.OrganizationID)
		})
	default:
		return fmt.Errorf("unknown membership delta op %q", delta.Op)
	}
}

// releaseProjects clears ownership of the organization's projects held by userID
func (r *MembershipRepository) releaseProjects(userID, orgID uuid.UUID) error {
	return r.db.Model(&models.Project{}).
		Where("organization_id = ? AND owner_id = ?", orgID, userID).
		Update("owner_id", nil).Error
}

// WithOrganizationLock runs fn in a transaction after taking SELECT ... FOR UPDATE on the
// organization row, serializing membership writers per organization.
func (r *MembershipRepository) WithOrganizationLock(orgID uuid.UUID, fn func(tx MembershipRepositoryInterface) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var org models.Organization
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&org, "id = ?", orgID).Error
		if err != nil {
			return err
		}
		return fn(&MembershipRepository{db: tx})
	})
}
