package errors

import (
	"errors"
	"fmt"
)

// NotFoundError represents an error when an entity is not found
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Entity)
}

// Is enables errors.Is() comparison for NotFoundError
func (e *NotFoundError) Is(target error) bool {
	t, ok := target.(*NotFoundError)
	if !ok {
		return false
	}
	return e.Entity == t.Entity
}

// AlreadyExistsError represents an error when an entity already exists
type AlreadyExistsError struct {
	Entity  string
	Context string // Additional context like "with this email"
}

func (e *AlreadyExistsError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s already exists %s", e.Entity, e.Context)
	}
	return fmt.Sprintf("%s already exists", e.Entity)
}

// Is enables errors.Is() comparison for AlreadyExistsError
func (e *AlreadyExistsError) Is(target error) bool {
	t, ok := target.(*AlreadyExistsError)
	if !ok {
		return false
	}
	return e.Entity == t.Entity
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// AuthenticationError represents authentication-related errors
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

// AuthorizationError represents authorization-related errors
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

// ConfigurationError represents configuration-related errors
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// MembershipErrorKind identifies why a membership check or mutation was refused.
type MembershipErrorKind string

const (
	KindNotAMember                   MembershipErrorKind = "not_a_member"
	KindAlreadyMember                MembershipErrorKind = "already_member"
	KindInsufficientGrantPermission  MembershipErrorKind = "insufficient_grant_permission"
	KindInsufficientManagePermission MembershipErrorKind = "insufficient_manage_permission"
	KindSelfRoleChange               MembershipErrorKind = "self_role_change"
	KindOwnerGrantRestricted         MembershipErrorKind = "owner_grant_restricted"
	KindOwnerDemotionRestricted      MembershipErrorKind = "owner_demotion_restricted"
	KindLastOwner                    MembershipErrorKind = "last_owner"
	KindPermissionDenied             MembershipErrorKind = "permission_denied"
)

// MembershipError is a business-rule refusal produced by the membership rules.
// Two MembershipErrors match under errors.Is when their kinds match.
type MembershipError struct {
	Kind    MembershipErrorKind
	Message string
}

func (e *MembershipError) Error() string {
	return e.Message
}

// Is enables errors.Is() comparison for MembershipError
func (e *MembershipError) Is(target error) bool {
	t, ok := target.(*MembershipError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Entity Not Found Errors
var (
	ErrOrganizationNotFound = &NotFoundError{Entity: "organization"}
	ErrUserNotFound         = &NotFoundError{Entity: "user"}
	ErrProjectNotFound      = &NotFoundError{Entity: "project"}
	ErrMembershipNotFound   = &NotFoundError{Entity: "membership"}
)

// Already Exists Errors
var (
	ErrOrganizationExists = &AlreadyExistsError{Entity: "organization", Context: "with this name or domain"}
	ErrUserExists         = &AlreadyExistsError{Entity: "user", Context: "with this email"}
	ErrProjectExists      = &AlreadyExistsError{Entity: "project", Context: "with this name in the organization"}
)

// Membership Errors
var (
	ErrNotAMember                   = &MembershipError{Kind: KindNotAMember, Message: "user is not a member of this organization"}
	ErrAlreadyMember                = &MembershipError{Kind: KindAlreadyMember, Message: "user is already a member of this organization"}
	ErrInsufficientGrantPermission  = &MembershipError{Kind: KindInsufficientGrantPermission, Message: "only owners may add new owners"}
	ErrInsufficientManagePermission = &MembershipError{Kind: KindInsufficientManagePermission, Message: "insufficient permission to manage this member"}
	ErrSelfRoleChange               = &MembershipError{Kind: KindSelfRoleChange, Message: "members may not change their own role"}
	ErrOwnerGrantRestricted         = &MembershipError{Kind: KindOwnerGrantRestricted, Message: "only owners may promote members to owner"}
	ErrOwnerDemotionRestricted      = &MembershipError{Kind: KindOwnerDemotionRestricted, Message: "owners may not demote another owner"}
	ErrLastOwner                    = &MembershipError{Kind: KindLastOwner, Message: "organization must keep at least one owner"}
	ErrPermissionDenied             = &MembershipError{Kind: KindPermissionDenied, Message: "role does not grant the required permission"}
)

var membershipErrorsByKind = map[MembershipErrorKind]*MembershipError{
	KindNotAMember:                   ErrNotAMember,
	KindAlreadyMember:                ErrAlreadyMember,
	KindInsufficientGrantPermission:  ErrInsufficientGrantPermission,
	KindInsufficientManagePermission: ErrInsufficientManagePermission,
	KindSelfRoleChange:               ErrSelfRoleChange,
	KindOwnerGrantRestricted:         ErrOwnerGrantRestricted,
	KindOwnerDemotionRestricted:      ErrOwnerDemotionRestricted,
	KindLastOwner:                    ErrLastOwner,
	KindPermissionDenied:             ErrPermissionDenied,
}

// Authentication Errors
var (
	ErrMissingAuthorization = &AuthenticationError{Message: "authorization header is required"}
	ErrInvalidToken         = &AuthenticationError{Message: "invalid token"}
	ErrActorNotResolved     = &AuthenticationError{Message: "authenticated user could not be resolved"}
)

// Helper Functions

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// IsAlreadyExists checks if an error is an AlreadyExistsError
func IsAlreadyExists(err error) bool {
	var existsErr *AlreadyExistsError
	return errors.As(err, &existsErr)
}

// IsValidation checks if an error is a ValidationError
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IsAuthentication checks if an error is an AuthenticationError
func IsAuthentication(err error) bool {
	var authErr *AuthenticationError
	return errors.As(err, &authErr)
}

// IsAuthorization checks if an error is an AuthorizationError
func IsAuthorization(err error) bool {
	var authzErr *AuthorizationError
	return errors.As(err, &authzErr)
}

// IsConfiguration checks if an error is a ConfigurationError
func IsConfiguration(err error) bool {
	var configErr *ConfigurationError
	return errors.As(err, &configErr)
}

// MembershipKind returns the membership error kind carried by err, if any.
func MembershipKind(err error) (MembershipErrorKind, bool) {
	var membershipErr *MembershipError
	if errors.As(err, &membershipErr) {
		return membershipErr.Kind, true
	}
	return "", false
}

// FromMembershipKind returns the predefined error for kind.
// Unknown kinds produce a generic AuthorizationError.
func FromMembershipKind(kind MembershipErrorKind) error {
	if err, ok := membershipErrorsByKind[kind]; ok {
		return err
	}
	return &AuthorizationError{Message: fmt.Sprintf("operation denied: %s", kind)}
}

// NewNotFoundError creates a new NotFoundError for a custom entity
func NewNotFoundError(entity string) error {
	return &NotFoundError{Entity: entity}
}

// NewAlreadyExistsError creates a new AlreadyExistsError for a custom entity
func NewAlreadyExistsError(entity, context string) error {
	return &AlreadyExistsError{Entity: entity, Context: context}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewAuthenticationError creates a new AuthenticationError
func NewAuthenticationError(message string) error {
	return &AuthenticationError{Message: message}
}

// NewAuthorizationError creates a new AuthorizationError
func NewAuthorizationError(message string) error {
	return &AuthorizationError{Message: message}
}

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(message string) error {
	return &ConfigurationError{Message: message}
}
