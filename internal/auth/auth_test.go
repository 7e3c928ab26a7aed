package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"orghub-backend/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type resolverFunc func(uuid.UUID) (rbac.Actor, error)

func (f resolverFunc) ResolveActor(id uuid.UUID) (rbac.Actor, error) { return f(id) }

func testConfig() *AuthConfig {
	return &AuthConfig{
		JWTSecret: "test-signing-key",
		Issuer:    "orghub-test",
		Audience:  "orghub",
		TokenTTL:  time.Hour,
	}
}

func TestAuthConfig(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		assert.NoError(t, testConfig().ValidateConfig())
	})

	t.Run("missing jwt secret", func(t *testing.T) {
		config := testConfig()
		config.JWTSecret = ""
		assert.ErrorContains(t, config.ValidateConfig(), "JWT secret is required")
	})

	t.Run("missing issuer", func(t *testing.T) {
		config := testConfig()
		config.Issuer = ""
		assert.ErrorContains(t, config.ValidateConfig(), "issuer is required")
	})

	t.Run("non-positive ttl", func(t *testing.T) {
		config := testConfig()
		config.TokenTTL = 0
		assert.Error(t, config.ValidateConfig())
	})
}

func TestLoadAuthConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "auth.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jwt_secret: file-secret\nissuer: file-issuer\ntoken_ttl: 30m\n"), 0o600))

	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_ISSUER", "")
	config, err := LoadAuthConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "file-secret", config.JWTSecret)
	assert.Equal(t, "file-issuer", config.Issuer)
	assert.Equal(t, 30*time.Minute, config.TokenTTL)
	assert.Equal(t, "orghub", config.Audience)

	t.Setenv("JWT_SECRET", "env-secret")
	config, err = LoadAuthConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "env-secret", config.JWTSecret)
}

func TestJWTOperations(t *testing.T) {
	service, err := NewAuthService(testConfig())
	require.NoError(t, err)
	userID := uuid.New()

	t.Run("round trip", func(t *testing.T) {
		token, err := service.GenerateJWT(userID, "jane@example.com")
		require.NoError(t, err)

		claims, err := service.ValidateJWT(token)
		require.NoError(t, err)
		assert.Equal(t, "jane@example.com", claims.Email)
		id, err := claims.UserID()
		require.NoError(t, err)
		assert.Equal(t, userID, id)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := &AuthService{config: testConfig(), now: func() time.Time { return time.Now().Add(-2 * time.Hour) }}
		token, err := expired.GenerateJWT(userID, "")
		require.NoError(t, err)

		_, err = service.ValidateJWT(token)
		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := testConfig()
		other.JWTSecret = "another-key"
		otherService, err := NewAuthService(other)
		require.NoError(t, err)
		token, err := otherService.GenerateJWT(userID, "")
		require.NoError(t, err)

		_, err = service.ValidateJWT(token)
		assert.Error(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := testConfig()
		other.Issuer = "someone-else"
		otherService, err := NewAuthService(other)
		require.NoError(t, err)
		token, err := otherService.GenerateJWT(userID, "")
		require.NoError(t, err)

		_, err = service.ValidateJWT(token)
		assert.Error(t, err)
	})

	t.Run("non-uuid subject", func(t *testing.T) {
		claims := &AuthClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "12345"}}
		_, err := claims.UserID()
		assert.Error(t, err)
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := NewAuthService(&AuthConfig{})
		assert.Error(t, err)
	})
}

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service, err := NewAuthService(testConfig())
	require.NoError(t, err)

	known := uuid.New()
	resolver := resolverFunc(func(id uuid.UUID) (rbac.Actor, error) {
		if id == known {
			return rbac.Actor{UserID: id, GlobalRole: rbac.GlobalRoleUser}, nil
		}
		return rbac.Actor{}, errors.New("user not found")
	})
	middleware := NewAuthMiddleware(service, resolver)

	router := gin.New()
	router.GET("/me", middleware.RequireAuth(), func(c *gin.Context) {
		actor, ok := GetActor(c)
		require.True(t, ok)
		userID, ok := GetUserID(c)
		require.True(t, ok)
		_, ok = GetAuthClaims(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"user_id": userID.String(), "global_role": actor.GlobalRole})
	})
	router.GET("/admin", middleware.RequireAuth(), middleware.RequirePlatformAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	do := func(path, header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	validToken, err := service.GenerateJWT(known, "")
	require.NoError(t, err)
	unknownToken, err := service.GenerateJWT(uuid.New(), "")
	require.NoError(t, err)

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do("/me", "").Code)
	})

	t.Run("not a bearer header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do("/me", "Basic abc").Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do("/me", "Bearer not-a-jwt").Code)
	})

	t.Run("unresolvable user", func(t *testing.T) {
		w := do("/me", "Bearer "+unknownToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "could not be resolved")
	})

	t.Run("valid token", func(t *testing.T) {
		w := do("/me", "Bearer "+validToken)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), known.String())
	})

	t.Run("platform admin required", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, do("/admin", "Bearer "+validToken).Code)
	})
}

func TestContextHelpersWithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetActor(c)
	assert.False(t, ok)
	_, ok = GetUserID(c)
	assert.False(t, ok)

	actor := rbac.Actor{UserID: uuid.New(), GlobalRole: rbac.GlobalRoleAdmin}
	SetActor(c, actor)
	got, ok := GetActor(c)
	assert.True(t, ok)
	assert.Equal(t, actor, got)
}
