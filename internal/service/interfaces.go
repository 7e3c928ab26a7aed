package service

import (
	"context"
	"encoding/json"

	"orghub-backend/internal/rbac"

	"github.com/google/uuid"
)

//go:generate mockgen -source=interfaces.go -destination=../mocks/service_mocks.go -package=mocks

// MembershipServiceInterface defines the interface for membership service
type MembershipServiceInterface interface {
	ListMembers(ctx context.Context, actor rbac.Actor, orgID uuid.UUID) ([]MembershipResponse, error)
	GetMember(ctx context.Context, actor rbac.Actor, orgID, userID uuid.UUID) (*MembershipResponse, error)
	AddMember(ctx context.Context, actor rbac.Actor, orgID uuid.UUID, req *AddMemberRequest) (*MembershipResponse, error)
	RemoveMember(ctx context.Context, actor rbac.Actor, orgID, userID uuid.UUID) error
	LeaveOrganization(ctx context.Context, actor rbac.Actor, orgID uuid.UUID) error
	ChangeRole(ctx context.Context, actor rbac.Actor, orgID, userID uuid.UUID, req *ChangeRoleRequest) (*MembershipResponse, error)
}

// OrganizationServiceInterface defines the interface for organization service
type OrganizationServiceInterface interface {
	Create(ctx context.Context, actor rbac.Actor, req *CreateOrganizationRequest) (*OrganizationResponse, error)
	GetByID(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*OrganizationResponse, error)
	ListForUser(ctx context.Context, actor rbac.Actor, page, pageSize int) (*OrganizationListResponse, error)
	Update(ctx context.Context, actor rbac.Actor, id uuid.UUID, req *UpdateOrganizationRequest) (*OrganizationResponse, error)
	Delete(ctx context.Context, actor rbac.Actor, id uuid.UUID) error
	GetSettings(ctx context.Context, actor rbac.Actor, id uuid.UUID) (json.RawMessage, error)
	UpdateSettings(ctx context.Context, actor rbac.Actor, id uuid.UUID, settings json.RawMessage) (json.RawMessage, error)
	ListAuditLogs(ctx context.Context, actor rbac.Actor, id uuid.UUID, page, pageSize int) (*AuditLogListResponse, error)
}

// ProjectServiceInterface defines the interface for project service
type ProjectServiceInterface interface {
	Create(ctx context.Context, actor rbac.Actor, orgID uuid.UUID, req *CreateProjectRequest) (*ProjectResponse, error)
	GetByID(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*ProjectResponse, error)
	ListByOrganization(ctx context.Context, actor rbac.Actor, orgID uuid.UUID, page, pageSize int) (*ProjectListResponse, error)
	Update(ctx context.Context, actor rbac.Actor, id uuid.UUID, req *UpdateProjectRequest) (*ProjectResponse, error)
	Delete(ctx context.Context, actor rbac.Actor, id uuid.UUID) error
	AssignOwner(ctx context.Context, actor rbac.Actor, id uuid.UUID, req *AssignOwnerRequest) (*ProjectResponse, error)
}

// UserServiceInterface defines the interface for user service
type UserServiceInterface interface {
	CreateUser(req *CreateUserRequest) (*UserResponse, error)
	GetUserByID(id uuid.UUID) (*UserResponse, error)
	ListUsers(page, pageSize int) (*UserListResponse, error)
	ResolveActor(userID uuid.UUID) (rbac.Actor, error)
}

var (
	_ MembershipServiceInterface   = (*MembershipService)(nil)
	_ OrganizationServiceInterface = (*OrganizationService)(nil)
	_ ProjectServiceInterface      = (*ProjectService)(nil)
	_ UserServiceInterface         = (*UserService)(nil)
)
