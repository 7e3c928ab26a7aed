package models

import (
	"orghub-backend/internal/rbac"
)

// User is a platform account. GlobalRole admin bypasses organization-level checks.
type User struct {
	BaseModel
	Email      string          `json:"email" gorm:"uniqueIndex;not null;size:255" validate:"required,email,max=255"`
	FirstName  string          `json:"first_name" gorm:"not null;size:100" validate:"required,max=100"`
	LastName   string          `json:"last_name" gorm:"not null;size:100" validate:"required,max=100"`
	GlobalRole rbac.GlobalRole `json:"global_role" gorm:"type:varchar(20);not null;default:'user'"`

	// Relationships
	Memberships []Membership `json:"memberships,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for User
func (User) TableName() string {
	return "users"
}
