package models

import (
	"time"

	"orghub-backend/internal/rbac"

	"github.com/google/uuid"
)

// Membership binds a user to an organization with exactly one role.
type Membership struct {
	BaseModel
	UserID         uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_memberships_user_org" validate:"required"`
	OrganizationID uuid.UUID `json:"organization_id" gorm:"type:uuid;not null;uniqueIndex:idx_memberships_user_org;index" validate:"required"`
	Role           rbac.Role `json:"role" gorm:"type:varchar(20);not null;default:'member'" validate:"required"`
	JoinedAt       time.Time `json:"joined_at" gorm:"not null"`

	// Relationships
	User         *User         `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Organization *Organization `json:"organization,omitempty" gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for Membership
func (Membership) TableName() string {
	return "memberships"
}

// ToRBAC returns the view of the row the membership rules operate on.
func (m Membership) ToRBAC() rbac.Membership {
	return rbac.Membership{
		UserID:         m.UserID,
		OrganizationID: m.OrganizationID,
		Role:           m.Role,
		JoinedAt:       m.JoinedAt,
	}
}

// SnapshotOf builds the rule snapshot for one organization from its membership rows.
func SnapshotOf(organizationID uuid.UUID, rows []Membership) rbac.Snapshot {
	snapshot := rbac.Snapshot{
		OrganizationID: organizationID,
		Memberships:    make([]rbac.Membership, 0, len(rows)),
	}
	for _, row := range rows {
		snapshot.Memberships = append(snapshot.Memberships, row.ToRBAC())
	}
	return snapshot
}
