package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orghub-backend/internal/database/models"
	apperrors "orghub-backend/internal/errors"
	"orghub-backend/internal/logger"
	"orghub-backend/internal/rbac"
	"orghub-backend/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MembershipService manages who belongs to an organization and with which role
type MembershipService struct {
	memberships repository.MembershipRepositoryInterface
	users       repository.UserRepositoryInterface
	access      accessChecker
	authorizer  *rbac.Authorizer
	validator   *validator.Validate
}

// NewMembershipService creates a new membership service
func NewMembershipService(
	memberships repository.MembershipRepositoryInterface,
	users repository.UserRepositoryInterface,
	orgs repository.OrganizationRepositoryInterface,
	authorizer *rbac.Authorizer,
	validator *validator.Validate,
) *MembershipService {
	return &MembershipService{
		memberships: memberships,
		users:       users,
		access:      accessChecker{orgs: orgs, memberships: memberships, authorizer: authorizer},
		authorizer:  authorizer,
		validator:   validator,
	}
}

// AddMemberRequest represents the request to add a user to an organization
type AddMemberRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	Role   string    `json:"role,omitempty" validate:"omitempty,oneof=owner admin member"`
}

// ChangeRoleRequest represents the request to change a member's role
type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=owner admin member"`
}

// MembershipResponse represents a membership in API responses
type MembershipResponse struct {
	UserID         uuid.UUID `json:"user_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Role           string    `json:"role"`
	JoinedAt       string    `json:"joined_at"`
	Email          string    `json:"email,omitempty"`
	FirstName      string    `json:"first_name,omitempty"`
	LastName       string    `json:"last_name,omitempty"`
}

// ListMembers returns every membership of an organization. Requires view_members.
func (s *MembershipService) ListMembers(ctx context.Context, actor rbac.Actor, orgID uuid.UUID) ([]MembershipResponse, error) {
	if _, err := s.access.require(ctx, actor, orgID, rbac.PermissionViewMembers); err != nil {
		return nil, err
	}

	rows, err := s.memberships.GetByOrganizationID(orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	responses := make([]MembershipResponse, len(rows))
	for i := range rows {
		responses[i] = *toMembershipResponse(&rows[i])
	}
	return responses, nil
}

// GetMember returns one membership. Requires view_members.
func (s *MembershipService) GetMember(ctx context.Context, actor rbac.Actor, orgID, userID uuid.UUID) (*MembershipResponse, error) {
	if _, err := s.access.require(ctx, actor, orgID, rbac.PermissionViewMembers); err != nil {
		return nil, err
	}

	membership, err := s.memberships.GetByUserAndOrganization(userID, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMembershipNotFound
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return toMembershipResponse(membership), nil
}

// AddMember adds an existing user to the organization
func (s *MembershipService) AddMember(ctx context.Context, actor rbac.Actor, orgID uuid.UUID, req *AddMemberRequest) (*MembershipResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	user, err := s.users.GetByID(req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	delta, err := s.mutate(ctx, actor, orgID, rbac.AddMember(req.UserID, rbac.Role(req.Role)))
	if err != nil {
		return nil, err
	}

	response := toMembershipResponse(&models.Membership{
		UserID:         delta.Membership.UserID,
		OrganizationID: delta.Membership.OrganizationID,
		Role:           delta.Membership.Role,
		JoinedAt:       delta.Membership.JoinedAt,
		User:           user,
	})
	return response, nil
}

// RemoveMember removes userID from the organization
func (s *MembershipService) RemoveMember(ctx context.Context, actor rbac.Actor, orgID, userID uuid.UUID) error {
	_, err := s.mutate(ctx, actor, orgID, rbac.RemoveMember(userID))
	return err
}

// LeaveOrganization removes the actor's own membership
func (s *MembershipService) LeaveOrganization(ctx context.Context, actor rbac.Actor, orgID uuid.UUID) error {
	_, err := s.mutate(ctx, actor, orgID, rbac.RemoveMember(actor.UserID))
	return err
}

// ChangeRole moves userID to a new role and records the change in the audit trail
func (s *MembershipService) ChangeRole(ctx context.Context, actor rbac.Actor, orgID, userID uuid.UUID, req *ChangeRoleRequest) (*MembershipResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	delta, err := s.mutate(ctx, actor, orgID, rbac.ChangeRole(userID, rbac.Role(req.Role)))
	if err != nil {
		return nil, err
	}

	s.authorizer.RecordRoleChange(ctx, userID, orgID, actor.UserID, delta.PreviousRole, delta.Membership.Role)

	return toMembershipResponse(&models.Membership{
		UserID:         delta.Membership.UserID,
		OrganizationID: delta.Membership.OrganizationID,
		Role:           delta.Membership.Role,
		JoinedAt:       delta.Membership.JoinedAt,
	}), nil
}

// mutate authorizes op against a locked snapshot and applies the resulting delta in the same transaction
func (s *MembershipService) mutate(ctx context.Context, actor rbac.Actor, orgID uuid.UUID, op rbac.Operation) (*rbac.MembershipDelta, error) {
	var applied *rbac.MembershipDelta
	var refused error

	err := s.memberships.WithOrganizationLock(orgID, func(tx repository.MembershipRepositoryInterface) error {
		rows, err := tx.GetByOrganizationID(orgID)
		if err != nil {
			return fmt.Errorf("failed to load members: %w", err)
		}

		snapshot := models.SnapshotOf(orgID, rows)
		decision := s.authorizer.Authorize(ctx, actor, orgID, op, snapshot)
		if !decision.Allowed {
			refused = decision.Err()
			return refused
		}

		if err := tx.ApplyDelta(*decision.Delta); err != nil {
			s.authorizer.RecordApplyFailure(ctx, actor, orgID, op, snapshot, err)
			return fmt.Errorf("failed to apply membership change: %w", err)
		}
		applied = decision.Delta
		return nil
	})

	switch {
	case refused != nil:
		return nil, refused
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperrors.ErrOrganizationNotFound
	case err != nil:
		return nil, err
	}

	logger.WithContext(logger.ContextWithOrganization(ctx, orgID)).
		WithFields(map[string]interface{}{
			"operation": op.String(),
			"bypass":    actor.IsPlatformAdmin(),
		}).Info("membership changed")
	return applied, nil
}

func toMembershipResponse(m *models.Membership) *MembershipResponse {
	response := &MembershipResponse{
		UserID:         m.UserID,
		OrganizationID: m.OrganizationID,
		Role:           string(m.Role),
		JoinedAt:       m.JoinedAt.UTC().Format(time.RFC3339),
	}
	if m.User != nil {
		response.Email = m.User.Email
		response.FirstName = m.User.FirstName
		response.LastName = m.User.LastName
	}
	return response
}
