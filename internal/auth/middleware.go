package auth

import (
	"net/http"
	"strings"

	apperrors "orghub-backend/internal/errors"
	"orghub-backend/internal/logger"
	"orghub-backend/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	contextKeyClaims = "auth_claims"
	contextKeyUserID = "user_id"
	contextKeyActor  = "actor"
)

// ActorResolver turns an authenticated user id into the actor the authorization gate sees
type ActorResolver interface {
	ResolveActor(userID uuid.UUID) (rbac.Actor, error)
}

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	service  *AuthService
	resolver ActorResolver
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(service *AuthService, resolver ActorResolver) *AuthMiddleware {
	return &AuthMiddleware{service: service, resolver: resolver}
}

// RequireAuth validates the bearer token, resolves the actor and stores both on the context
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": apperrors.ErrMissingAuthorization.Error()})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		claims, err := m.service.ValidateJWT(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": apperrors.ErrInvalidToken.Error()})
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		actor, err := m.resolver.ResolveActor(userID)
		if err != nil {
			logger.WithContext(c.Request.Context()).WithField("user_id", userID.String()).
				WithField("error", err.Error()).Warn("actor resolution failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": apperrors.ErrActorNotResolved.Error()})
			return
		}

		c.Set(contextKeyClaims, claims)
		c.Set(contextKeyUserID, userID)
		c.Set(contextKeyActor, actor)
		c.Request = c.Request.WithContext(logger.ContextWithActor(c.Request.Context(), userID))

		c.Next()
	}
}

// RequirePlatformAdmin only lets global administrators through. Must run after RequireAuth.
func (m *AuthMiddleware) RequirePlatformAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		if !actor.IsPlatformAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "platform administrator role required"})
			return
		}
		c.Next()
	}
}

// GetActor is a helper function to extract the resolved actor from context
func GetActor(c *gin.Context) (rbac.Actor, bool) {
	value, exists := c.Get(contextKeyActor)
	if !exists {
		return rbac.Actor{}, false
	}
	actor, ok := value.(rbac.Actor)
	return actor, ok
}

// SetActor stores actor on the context. Used by tests and internal tooling.
func SetActor(c *gin.Context, actor rbac.Actor) {
	c.Set(contextKeyActor, actor)
	c.Set(contextKeyUserID, actor.UserID)
}

// GetUserID is a helper function to extract user ID from context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(contextKeyUserID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}

// GetAuthClaims is a helper function to extract full auth claims from context
func GetAuthClaims(c *gin.Context) (*AuthClaims, bool) {
	claims, exists := c.Get(contextKeyClaims)
	if !exists {
		return nil, false
	}
	authClaims, ok := claims.(*AuthClaims)
	return authClaims, ok
}
