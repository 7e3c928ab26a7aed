package routes

import (
	"orghub-backend/internal/api/handlers"
	"orghub-backend/internal/api/middleware"
	"orghub-backend/internal/auth"
	"orghub-backend/internal/config"
	"orghub-backend/internal/service"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// Services bundles the business services the HTTP layer exposes
type Services struct {
	Organizations service.OrganizationServiceInterface
	Memberships   service.MembershipServiceInterface
	Projects      service.ProjectServiceInterface
	Users         service.UserServiceInterface
}

// SetupRoutes configures all the routes for the application
func SetupRoutes(db *gorm.DB, cfg *config.Config, services Services, authMiddleware *auth.AuthMiddleware, version string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS(cfg))

	healthHandler := handlers.NewHealthHandler(db, version)
	organizationHandler := handlers.NewOrganizationHandler(services.Organizations)
	membershipHandler := handlers.NewMembershipHandler(services.Memberships)
	projectHandler := handlers.NewProjectHandler(services.Projects)
	userHandler := handlers.NewUserHandler(services.Users)

	// Health check routes
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/health/live", healthHandler.Live)

	// Swagger documentation route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	v1.Use(authMiddleware.RequireAuth())
	RegisterAPIRoutes(v1, organizationHandler, membershipHandler, projectHandler, userHandler, authMiddleware.RequirePlatformAdmin())

	return router
}

// RegisterAPIRoutes mounts the authenticated API on group. platformAdmin guards user administration.
func RegisterAPIRoutes(
	group *gin.RouterGroup,
	organizationHandler *handlers.OrganizationHandler,
	membershipHandler *handlers.MembershipHandler,
	projectHandler *handlers.ProjectHandler,
	userHandler *handlers.UserHandler,
	platformAdmin gin.HandlerFunc,
) {
	users := group.Group("/users")
	{
		users.GET("/me", userHandler.GetCurrentUser)
		users.GET("/:id", userHandler.GetUser)
		users.GET("", platformAdmin, userHandler.ListUsers)
		users.POST("", platformAdmin, userHandler.CreateUser)
	}

	organizations := group.Group("/organizations")
	{
		organizations.GET("", organizationHandler.ListOrganizations)
		organizations.POST("", organizationHandler.CreateOrganization)
		organizations.GET("/:id", organizationHandler.GetOrganization)
		organizations.PUT("/:id", organizationHandler.UpdateOrganization)
		organizations.DELETE("/:id", organizationHandler.DeleteOrganization)

		organizations.GET("/:id/settings", organizationHandler.GetSettings)
		organizations.PUT("/:id/settings", organizationHandler.UpdateSettings)
		organizations.GET("/:id/audit-logs", organizationHandler.ListAuditLogs)

		organizations.GET("/:id/members", membershipHandler.ListMembers)
		organizations.POST("/:id/members", membershipHandler.AddMember)
		organizations.GET("/:id/members/:userId", membershipHandler.GetMember)
		organizations.DELETE("/:id/members/:userId", membershipHandler.RemoveMember)
		organizations.PUT("/:id/members/:userId/role", membershipHandler.ChangeRole)
		organizations.POST("/:id/leave", membershipHandler.LeaveOrganization)

		organizations.GET("/:id/projects", projectHandler.ListProjects)
		organizations.POST("/:id/projects", projectHandler.CreateProject)
	}

	projects := group.Group("/projects")
	{
		projects.GET("/:id", projectHandler.GetProject)
		projects.PUT("/:id", projectHandler.UpdateProject)
		projects.DELETE("/:id", projectHandler.DeleteProject)
		projects.PUT("/:id/owner", projectHandler.AssignOwner)
	}
}
