package repository

import (
	"orghub-backend/internal/database/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLogRepository handles database operations for audit records
type AuditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Create appends an audit record
func (r *AuditLogRepository) Create(entry *models.AuditLog) error {
	return r.db.Create(entry).Error
}

// GetByOrganizationID retrieves the newest audit records of an organization
func (r *AuditLogRepository) GetByOrganizationID(orgID uuid.UUID, limit, offset int) ([]models.AuditLog, int64, error) {
	return r.list(r.db.Model(&models.AuditLog{}).Where("organization_id = ?", orgID), limit, offset)
}

// GetByActorID retrieves the newest audit records produced by an actor
func (r *AuditLogRepository) GetByActorID(actorID uuid.UUID, limit, offset int) ([]models.AuditLog, int64, error) {
	return r.list(r.db.Model(&models.AuditLog{}).Where("actor_id = ?", actorID), limit, offset)
}

func (r *AuditLogRepository) list(query *gorm.DB, limit, offset int) ([]models.AuditLog, int64, error) {
	var entries []models.AuditLog
	var total int64

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
