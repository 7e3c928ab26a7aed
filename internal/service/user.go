package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"orghub-backend/internal/database/models"
	apperrors "orghub-backend/internal/errors"
	"orghub-backend/internal/rbac"
	"orghub-backend/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserService handles business logic for platform users
type UserService struct {
	repo        repository.UserRepositoryInterface
	memberships repository.MembershipRepositoryInterface
	validator   *validator.Validate
}

// NewUserService creates a new user service
func NewUserService(repo repository.UserRepositoryInterface, memberships repository.MembershipRepositoryInterface, validator *validator.Validate) *UserService {
	return &UserService{
		repo:        repo,
		memberships: memberships,
		validator:   validator,
	}
}

// CreateUserRequest represents the data needed to create a user
type CreateUserRequest struct {
	Email      string `json:"email" validate:"required,email,max=255"`
	FirstName  string `json:"first_name" validate:"required,max=100"`
	LastName   string `json:"last_name" validate:"required,max=100"`
	GlobalRole string `json:"global_role,omitempty" validate:"omitempty,oneof=user admin"`
}

// UserResponse represents the response data for a user
type UserResponse struct {
	ID          uuid.UUID            `json:"id"`
	Email       string               `json:"email"`
	FirstName   string               `json:"first_name"`
	LastName    string               `json:"last_name"`
	GlobalRole  string               `json:"global_role"`
	CreatedAt   string               `json:"created_at"`
	Memberships []MembershipResponse `json:"memberships,omitempty"`
}

// UserListResponse represents a paginated list of users
type UserListResponse struct {
	Users    []UserResponse `json:"users"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// CreateUser creates a user; the global role defaults to user
func (s *UserService) CreateUser(req *CreateUserRequest) (*UserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	globalRole := rbac.GlobalRoleUser
	if req.GlobalRole != "" {
		parsed, err := rbac.ParseGlobalRole(req.GlobalRole)
		if err != nil {
			return nil, err
		}
		globalRole = parsed
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	existing, err := s.repo.GetByEmail(email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, apperrors.ErrUserExists
	}

	user := &models.User{
		Email:      email,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		GlobalRole: globalRole,
	}
	if err := s.repo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return toUserResponse(user), nil
}

// GetUserByID retrieves a user together with their memberships
func (s *UserService) GetUserByID(id uuid.UUID) (*UserResponse, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	memberships, err := s.memberships.GetByUserID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get memberships: %w", err)
	}

	response := toUserResponse(user)
	for i := range memberships {
		response.Memberships = append(response.Memberships, *toMembershipResponse(&memberships[i]))
	}
	return response, nil
}

// ListUsers lists users with pagination
func (s *UserService) ListUsers(page, pageSize int) (*UserListResponse, error) {
	page, pageSize = normalizePage(page, pageSize)
	users, total, err := s.repo.GetAll(pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	responses := make([]UserResponse, len(users))
	for i := range users {
		responses[i] = *toUserResponse(&users[i])
	}
	return &UserListResponse{Users: responses, Total: total, Page: page, PageSize: pageSize}, nil
}

// ResolveActor returns the identity the authorization gate evaluates for userID
func (s *UserService) ResolveActor(userID uuid.UUID) (rbac.Actor, error) {
	user, err := s.repo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return rbac.Actor{}, apperrors.ErrActorNotResolved
		}
		return rbac.Actor{}, fmt.Errorf("failed to resolve actor: %w", err)
	}

	globalRole := user.GlobalRole
	if !globalRole.IsValid() {
		globalRole = rbac.GlobalRoleUser
	}
	return rbac.Actor{UserID: user.ID, GlobalRole: globalRole}, nil
}

func toUserResponse(u *models.User) *UserResponse {
	return &UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		GlobalRole: string(u.GlobalRole),
		CreatedAt:  u.CreatedAt.Format(time.RFC3339),
	}
}
