package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orghub-backend/internal/api/routes"
	"orghub-backend/internal/audit"
	"orghub-backend/internal/auth"
	"orghub-backend/internal/config"
	"orghub-backend/internal/database"
	"orghub-backend/internal/rbac"
	"orghub-backend/internal/repository"
	"orghub-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	_ "orghub-backend/docs" // This is needed for swag
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 15 * time.Second

//	@title			OrgHub Backend API
//	@version		1.0
//	@description	Multi-tenant organizations, memberships, role based access control and projects.
//	@termsOfService	http://swagger.io/terms/

//	@contact.name	API Support
//	@contact.url	http://www.example.com/support
//	@contact.email	support@example.com

//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT

//	@host		localhost:7008
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and JWT token.

func main() {
	// Load environment variables from .env file in development
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Set up logging
	setupLogging(cfg.LogLevel)

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL, &database.Options{AutoMigrate: true})
	if err != nil {
		logrus.Fatal("Failed to initialize database:", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logrus.WithError(err).Error("Failed to close database")
		}
	}()

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authService, err := auth.NewAuthService(loadAuthConfig(cfg))
	if err != nil {
		logrus.Fatal("Failed to initialize auth service:", err)
	}

	services, users := buildServices(db, cfg)
	authMiddleware := auth.NewAuthMiddleware(authService, users)

	// Initialize router
	router := routes.SetupRoutes(db, cfg, services, authMiddleware, version)

	port := cfg.Port
	if port == "" {
		port = "7008"
	}

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logrus.Infof("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Server shutdown failed")
	}
}

// buildServices wires repositories, the audit pipeline and the authorizer into the business services
func buildServices(db *gorm.DB, cfg *config.Config) (routes.Services, *service.UserService) {
	orgRepo := repository.NewOrganizationRepository(db)
	userRepo := repository.NewUserRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	var sinks audit.MultiSink
	for _, name := range cfg.AuditSinkNames() {
		switch name {
		case "repository":
			sinks = append(sinks, audit.NewRepositorySink(auditRepo))
		case "log":
			sinks = append(sinks, audit.NewLogSink(nil))
		}
	}
	authorizer := rbac.NewAuthorizer(audit.NewEmitter(sinks))

	validate := validator.New()

	users := service.NewUserService(userRepo, membershipRepo, validate)
	return routes.Services{
		Organizations: service.NewOrganizationService(orgRepo, membershipRepo, auditRepo, authorizer, validate).
			WithAuditPageLimit(cfg.AuditPageLimit),
		Memberships: service.NewMembershipService(membershipRepo, userRepo, orgRepo, authorizer, validate),
		Projects:    service.NewProjectService(projectRepo, orgRepo, membershipRepo, authorizer, validate),
		Users:       users,
	}, users
}

// loadAuthConfig reads config/auth.yaml; outside production it falls back to the main JWT secret
func loadAuthConfig(cfg *config.Config) *auth.AuthConfig {
	authConfig, err := auth.LoadAuthConfig("")
	if err == nil {
		return authConfig
	}
	if cfg.IsProduction() {
		logrus.Fatal("Failed to load auth configuration:", err)
	}

	logrus.WithError(err).Warn("Auth configuration incomplete, using JWT_SECRET from main configuration")
	return &auth.AuthConfig{
		JWTSecret: cfg.JWTSecret,
		Issuer:    "orghub-backend",
		Audience:  "orghub",
		TokenTTL:  time.Hour,
	}
}

func setupLogging(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	switch level {
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "info":
		logrus.SetLevel(logrus.InfoLevel)
	case "warn":
		logrus.SetLevel(logrus.WarnLevel)
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}
}
