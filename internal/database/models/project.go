package models

import (
	"encoding/json"

	"github.com/google/uuid"
)

// ProjectStatus represents the status of a project
type ProjectStatus string

const (
	ProjectStatusActive   ProjectStatus = "active"
	ProjectStatusInactive ProjectStatus = "inactive"
	ProjectStatusArchived ProjectStatus = "archived"
)

// IsValid checks if the ProjectStatus is valid
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusActive, ProjectStatusInactive, ProjectStatusArchived:
		return true
	}
	return false
}

// Project is an organization-scoped resource guarded by the project permissions
type Project struct {
	BaseModel
	OrganizationID uuid.UUID       `json:"organization_id" gorm:"type:uuid;not null;uniqueIndex:idx_projects_org_name" validate:"required"`
	Name           string          `json:"name" gorm:"not null;size:200;uniqueIndex:idx_projects_org_name" validate:"required,min=1,max=200"`
	DisplayName    string          `json:"display_name" gorm:"not null;size:250" validate:"required,max=250"`
	Description    string          `json:"description" gorm:"type:text"`
	Status         ProjectStatus   `json:"status" gorm:"type:varchar(50);default:'active'"`
	OwnerID        *uuid.UUID      `json:"owner_id,omitempty" gorm:"type:uuid;index"`
	Metadata       json.RawMessage `json:"metadata" gorm:"type:jsonb"`

	// Relationships
	Organization *Organization `json:"organization,omitempty" gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE"`
	Owner        *User         `json:"owner,omitempty" gorm:"foreignKey:OwnerID;constraint:OnDelete:SET NULL"`
}

// TableName returns the table name for Project
func (Project) TableName() string {
	return "projects"
}
