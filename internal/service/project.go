package service

import (
	"context"
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

// ProjectService handles business logic for organization projects
type ProjectService struct {
	repo      repository.ProjectRepositoryInterface
	access    accessChecker
	validator *validator.Validate
}

// NewProjectService creates a new project service
func NewProjectService(
	repo repository.ProjectRepositoryInterface,
	orgs repository.OrganizationRepositoryInterface,
	memberships repository.MembershipRepositoryInterface,
	authorizer *rbac.Authorizer,
	validator *validator.Validate,
) *ProjectService {
	return &ProjectService{
		repo:      repo,
		access:    accessChecker{orgs: orgs, memberships: memberships, authorizer: authorizer},
		validator: validator,
	}
}

// CreateProjectRequest represents the request to create a project
type CreateProjectRequest struct {
	Name        string     `json:"name" validate:"required,min=1,max=200"`
	DisplayName string     `json:"display_name" validate:"required,max=250"`
	Description string     `json:"description,omitempty"`
	OwnerID     *uuid.UUID `json:"owner_id,omitempty"`
}

// UpdateProjectRequest represents the request to update a project
type UpdateProjectRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=250"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty" validate:"omitempty,oneof=active inactive archived"`
}

// AssignOwnerRequest represents the request to change a project owner
type AssignOwnerRequest struct {
	OwnerID uuid.UUID `json:"owner_id" validate:"required"`
}

// ProjectResponse represents the response for project operations
type ProjectResponse struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	Name           string     `json:"name"`
	DisplayName    string     `json:"display_name"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	OwnerID        *uuid.UUID `json:"owner_id,omitempty"`
	CreatedAt      string     `json:"created_at"`
	UpdatedAt      string     `json:"updated_at"`
}

// ProjectListResponse represents a paginated list of projects
type ProjectListResponse struct {
	Projects []ProjectResponse `json:"projects"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// Create creates a project in orgID. Requires create_project.
// The owner defaults to the actor when the actor is a member.
func (s *ProjectService) Create(ctx context.Context, actor rbac.Actor, orgID uuid.UUID, req *CreateProjectRequest) (*ProjectResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	if _, err := s.access.require(ctx, actor, orgID, rbac.PermissionCreateProject); err != nil {
		return nil, err
	}

	ownerID := req.OwnerID
	if ownerID == nil {
		isMember, err := s.access.isMember(actor.UserID, orgID)
		if err != nil {
			return nil, err
		}
		if isMember {
			id := actor.UserID
			ownerID = &id
		}
	} else if err := s.requireMember(*ownerID, orgID); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByName(orgID, req.Name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing project: %w", err)
	}
	if existing != nil {
		return nil, apperrors.ErrProjectExists
	}

	project := &models.Project{
		OrganizationID: orgID,
		Name:           req.Name,
		DisplayName:    req.DisplayName,
		Description:    req.Description,
		Status:         models.ProjectStatusActive,
		OwnerID:        ownerID,
	}
	if err := s.repo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return toProjectResponse(project), nil
}

// GetByID retrieves a project. Requires view_project in the owning organization.
func (s *ProjectService) GetByID(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*ProjectResponse, error) {
	project, err := s.load(ctx, actor, id, rbac.PermissionViewProject)
	if err != nil {
		return nil, err
	}
	return toProjectResponse(project), nil
}

// ListByOrganization lists the projects of an organization. Requires view_project.
func (s *ProjectService) ListByOrganization(ctx context.Context, actor rbac.Actor, orgID uuid.UUID, page, pageSize int) (*ProjectListResponse, error) {
	if _, err := s.access.require(ctx, actor, orgID, rbac.PermissionViewProject); err != nil {
		return nil, err
	}

	page, pageSize = normalizePage(page, pageSize)
	projects, total, err := s.repo.GetByOrganizationID(orgID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to get projects: %w", err)
	}

	responses := make([]ProjectResponse, len(projects))
	for i := range projects {
		responses[i] = *toProjectResponse(&projects[i])
	}

	return &ProjectListResponse{
		Projects: responses,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Update updates a project. Requires edit_project.
func (s *ProjectService) Update(ctx context.Context, actor rbac.Actor, id uuid.UUID, req *UpdateProjectRequest) (*ProjectResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	project, err := s.load(ctx, actor, id, rbac.PermissionEditProject)
	if err != nil {
		return nil, err
	}

	project.DisplayName = req.DisplayName
	project.Description = req.Description
	if req.Status != "" {
		project.Status = models.ProjectStatus(req.Status)
	}

	if err := s.repo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return toProjectResponse(project), nil
}

// Delete deletes a project. Requires delete_project.
func (s *ProjectService) Delete(ctx context.Context, actor rbac.Actor, id uuid.UUID) error {
	if _, err := s.load(ctx, actor, id, rbac.PermissionDeleteProject); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// AssignOwner hands the project to another member. Requires edit_project.
func (s *ProjectService) AssignOwner(ctx context.Context, actor rbac.Actor, id uuid.UUID, req *AssignOwnerRequest) (*ProjectResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	project, err := s.load(ctx, actor, id, rbac.PermissionEditProject)
	if err != nil {
		return nil, err
	}

	if err := s.requireMember(req.OwnerID, project.OrganizationID); err != nil {
		return nil, err
	}

	ownerID := req.OwnerID
	project.OwnerID = &ownerID
	if err := s.repo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to assign project owner: %w", err)
	}
	return toProjectResponse(project), nil
}

func (s *ProjectService) load(ctx context.Context, actor rbac.Actor, id uuid.UUID, permission rbac.Permission) (*models.Project, error) {
	project, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if _, err := s.access.require(ctx, actor, project.OrganizationID, permission); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) requireMember(userID, orgID uuid.UUID) error {
	isMember, err := s.access.isMember(userID, orgID)
	if err != nil {
		return err
	}
	if !isMember {
		return apperrors.ErrNotAMember
	}
	return nil
}

func toProjectResponse(p *models.Project) *ProjectResponse {
	return &ProjectResponse{
		ID:             p.ID,
		OrganizationID: p.OrganizationID,
		Name:           p.Name,
		DisplayName:    p.DisplayName,
		Description:    p.Description,
		Status:         string(p.Status),
		OwnerID:        p.OwnerID,
		CreatedAt:      p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      p.UpdatedAt.Format(time.RFC3339),
	}
}
