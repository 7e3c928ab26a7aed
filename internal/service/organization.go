package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"orghub-backend/internal/database/models"
	apperrors "orghub-backend/internal/errors"
	"orghub-backend/internal/rbac"
	"orghub-backend/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrganizationService handles business logic for organizations
type OrganizationService struct {
	repo      repository.OrganizationRepositoryInterface
	auditRepo repository.AuditLogRepositoryInterface
	access    accessChecker
	validator *validator.Validate
	now       func() time.Time

	auditPageLimit int
}

// NewOrganizationService creates a new organization service
func NewOrganizationService(
	repo repository.OrganizationRepositoryInterface,
	memberships repository.MembershipRepositoryInterface,
	auditRepo repository.AuditLogRepositoryInterface,
	authorizer *rbac.Authorizer,
	validator *validator.Validate,
) *OrganizationService {
	return &OrganizationService{
		repo:      repo,
		auditRepo: auditRepo,
		access:    accessChecker{orgs: repo, memberships: memberships, authorizer: authorizer},
		validator: validator,
		now:       time.Now,

		auditPageLimit: maxPageSize,
	}
}

// WithAuditPageLimit caps the page size of ListAuditLogs
func (s *OrganizationService) WithAuditPageLimit(limit int) *OrganizationService {
	if limit > 0 {
		s.auditPageLimit = limit
	}
	return s
}

// CreateOrganizationRequest represents the request to create an organization
type CreateOrganizationRequest struct {
	Name        string          `json:"name" validate:"required,min=1,max=100"`
	DisplayName string          `json:"display_name" validate:"required,max=200"`
	Domain      string          `json:"domain" validate:"required,max=100"`
	Description string          `json:"description,omitempty"`
	Settings    json.RawMessage `json:"settings,omitempty"`
}

// UpdateOrganizationRequest represents the request to update an organization
type UpdateOrganizationRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=200"`
	Description string `json:"description,omitempty"`
}

// OrganizationResponse represents the response for organization operations
type OrganizationResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	Domain      string    `json:"domain"`
	Description string    `json:"description"`
	CreatedAt   string    `json:"created_at"`
	UpdatedAt   string    `json:"updated_at"`
}

// OrganizationListResponse represents a paginated list of organizations
type OrganizationListResponse struct {
	Organizations []OrganizationResponse `json:"organizations"`
	Total         int64                  `json:"total"`
	Page          int                    `json:"page"`
	PageSize      int                    `json:"page_size"`
}

// AuditLogResponse represents one audit record
type AuditLogResponse struct {
	ID           uuid.UUID       `json:"id"`
	EventType    string          `json:"event_type"`
	Status       string          `json:"status"`
	ActorID      uuid.UUID       `json:"actor_id"`
	TargetUserID *uuid.UUID      `json:"target_user_id,omitempty"`
	Operation    string          `json:"operation"`
	Details      json.RawMessage `json:"details"`
	Timestamp    string          `json:"timestamp"`
}

// AuditLogListResponse represents a paginated list of audit records
type AuditLogListResponse struct {
	Entries  []AuditLogResponse `json:"entries"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

// Create creates a new organization with the actor as its first owner
func (s *OrganizationService) Create(ctx context.Context, actor rbac.Actor, req *CreateOrganizationRequest) (*OrganizationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	settings, err := normalizeSettings(req.Settings)
	if err != nil {
		return nil, err
	}

	existingByName, err := s.repo.GetByName(req.Name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing organization by name: %w", err)
	}
	if existingByName != nil {
		return nil, apperrors.ErrOrganizationExists
	}

	existingByDomain, err := s.repo.GetByDomain(req.Domain)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing organization by domain: %w", err)
	}
	if existingByDomain != nil {
		return nil, apperrors.ErrOrganizationExists
	}

	org := &models.Organization{
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Domain:      req.Domain,
		Description: req.Description,
		Settings:    settings,
	}

	if err := s.repo.CreateWithOwner(org, actor.UserID, s.now()); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	return toOrganizationResponse(org), nil
}

// GetByID retrieves an organization. Requires view_organization.
func (s *OrganizationService) GetByID(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*OrganizationResponse, error) {
	org, err := s.access.require(ctx, actor, id, rbac.PermissionViewOrganization)
	if err != nil {
		return nil, err
	}
	return toOrganizationResponse(org), nil
}

// ListForUser lists the organizations the actor belongs to; platform admins see all of them
func (s *OrganizationService) ListForUser(ctx context.Context, actor rbac.Actor, page, pageSize int) (*OrganizationListResponse, error) {
	page, pageSize = normalizePage(page, pageSize)
	offset := (page - 1) * pageSize

	var (
		orgs  []models.Organization
		total int64
		err   error
	)
	if actor.IsPlatformAdmin() {
		orgs, total, err = s.repo.GetAll(pageSize, offset)
	} else {
		orgs, total, err = s.repo.GetByUserID(actor.UserID, pageSize, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organizations: %w", err)
	}

	responses := make([]OrganizationResponse, len(orgs))
	for i := range orgs {
		responses[i] = *toOrganizationResponse(&orgs[i])
	}

	return &OrganizationListResponse{
		Organizations: responses,
		Total:         total,
		Page:          page,
		PageSize:      pageSize,
	}, nil
}

// Update updates an organization. Requires edit_organization.
func (s *OrganizationService) Update(ctx context.Context, actor rbac.Actor, id uuid.UUID, req *UpdateOrganizationRequest) (*OrganizationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	org, err := s.access.require(ctx, actor, id, rbac.PermissionEditOrganization)
	if err != nil {
		return nil, err
	}

	org.DisplayName = req.DisplayName
	org.Description = req.Description

	if err := s.repo.Update(org); err != nil {
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}

	return toOrganizationResponse(org), nil
}

// Delete deletes an organization and with it every membership and project. Requires delete_organization.
func (s *OrganizationService) Delete(ctx context.Context, actor rbac.Actor, id uuid.UUID) error {
	if _, err := s.access.require(ctx, actor, id, rbac.PermissionDeleteOrganization); err != nil {
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}

	return nil
}

// GetSettings returns the organization settings document. Requires view_settings.
func (s *OrganizationService) GetSettings(ctx context.Context, actor rbac.Actor, id uuid.UUID) (json.RawMessage, error) {
	org, err := s.access.require(ctx, actor, id, rbac.PermissionViewSettings)
	if err != nil {
		return nil, err
	}
	if len(org.Settings) == 0 {
		return json.RawMessage(`{}`), nil
	}
	return org.Settings, nil
}

// UpdateSettings replaces the organization settings document. Requires manage_settings.
func (s *OrganizationService) UpdateSettings(ctx context.Context, actor rbac.Actor, id uuid.UUID, settings json.RawMessage) (json.RawMessage, error) {
	normalized, err := normalizeSettings(settings)
	if err != nil {
		return nil, err
	}

	org, err := s.access.require(ctx, actor, id, rbac.PermissionManageSettings)
	if err != nil {
		return nil, err
	}

	org.Settings = normalized
	if err := s.repo.Update(org); err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}
	return normalized, nil
}

// ListAuditLogs returns the organization's newest audit records. Requires manage_settings.
func (s *OrganizationService) ListAuditLogs(ctx context.Context, actor rbac.Actor, id uuid.UUID, page, pageSize int) (*AuditLogListResponse, error) {
	if _, err := s.access.require(ctx, actor, id, rbac.PermissionManageSettings); err != nil {
		return nil, err
	}

	if pageSize > s.auditPageLimit {
		pageSize = s.auditPageLimit
	}
	page, pageSize = normalizePage(page, pageSize)
	entries, total, err := s.auditRepo.GetByOrganizationID(id, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit logs: %w", err)
	}

	responses := make([]AuditLogResponse, len(entries))
	for i, entry := range entries {
		responses[i] = AuditLogResponse{
			ID:           entry.ID,
			EventType:    entry.EventType,
			Status:       entry.Status,
			ActorID:      entry.ActorID,
			TargetUserID: entry.TargetUserID,
			Operation:    entry.Operation,
			Details:      entry.Details,
			Timestamp:    entry.Timestamp,
		}
	}

	return &AuditLogListResponse{
		Entries:  responses,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// normalizeSettings accepts an empty document or a JSON object
func normalizeSettings(raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return json.RawMessage(`{}`), nil
	}
	var object map[string]interface{}
	if err := json.Unmarshal(trimmed, &object); err != nil {
		return nil, apperrors.NewValidationError("settings", "must be a JSON object")
	}
	return json.RawMessage(trimmed), nil
}

func toOrganizationResponse(org *models.Organization) *OrganizationResponse {
	return &OrganizationResponse{
		ID:          org.ID,
		Name:        org.Name,
		DisplayName: org.DisplayName,
		Domain:      org.Domain,
		Description: org.Description,
		CreatedAt:   org.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   org.UpdatedAt.Format(time.RFC3339),
	}
}
