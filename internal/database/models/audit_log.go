package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLog is one authorization decision or role change.
// Timestamp keeps the emitter's formatted UTC string; CreatedAt is used for ordering.
type AuditLog struct {
	ID             uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	EventType      string          `json:"event_type" gorm:"type:varchar(50);not null;index"`
	Status         string          `json:"status" gorm:"type:varchar(20);not null"`
	ActorID        uuid.UUID       `json:"actor_id" gorm:"type:uuid;not null;index"`
	OrganizationID *uuid.UUID      `json:"organization_id,omitempty" gorm:"type:uuid;index"`
	TargetUserID   *uuid.UUID      `json:"target_user_id,omitempty" gorm:"type:uuid"`
	Operation      string          `json:"operation" gorm:"size:200"`
	Details        json.RawMessage `json:"details" gorm:"type:jsonb"`
	Timestamp      string          `json:"timestamp" gorm:"size:30;not null"`
	CreatedAt      time.Time       `json:"created_at" gorm:"index"`
}

// TableName returns the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}

// BeforeCreate sets the UUID if not already set
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
