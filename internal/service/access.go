package service

import (
	"context"
	"errors"
	"fmt"

	"orghub-backend/internal/database/models"
	apperrors "orghub-backend/internal/errors"
	"orghub-backend/internal/rbac"
	"orghub-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// accessChecker answers capability checks for the services that guard organization resources
type accessChecker struct {
	orgs        repository.OrganizationRepositoryInterface
	memberships repository.MembershipRepositoryInterface
	authorizer  *rbac.Authorizer
}

// require loads the organization and fails unless actor holds permission in it.
// Capability checks only look at the actor's own row, so the snapshot holds at most that row.
func (c accessChecker) require(ctx context.Context, actor rbac.Actor, orgID uuid.UUID, permission rbac.Permission) (*models.Organization, error) {
	org, err := c.orgs.GetByID(orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	snapshot := rbac.Snapshot{OrganizationID: orgID}
	membership, err := c.memberships.GetByUserAndOrganization(actor.UserID, orgID)
	switch {
	case err == nil:
		snapshot.Memberships = append(snapshot.Memberships, membership.ToRBAC())
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("failed to get actor membership: %w", err)
	}

	decision := c.authorizer.Authorize(ctx, actor, orgID, rbac.Capability(permission), snapshot)
	if err := decision.Err(); err != nil {
		return nil, err
	}
	return org, nil
}

// isMember reports whether userID belongs to orgID
func (c accessChecker) isMember(userID, orgID uuid.UUID) (bool, error) {
	_, err := c.memberships.GetByUserAndOrganization(userID, orgID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("failed to get membership: %w", err)
}

func validationError(err error) error {
	return apperrors.NewValidationError("", err.Error())
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	return page, pageSize
}
