package router

import (
	"database/sql"

	"church_community_backend/internal/handlers"
	"church_community_backend/internal/middleware"
	"church_community_backend/internal/repositories"
	"church_community_backend/internal/services"
	"church_community_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB) {
	// Initialize Repositories
	authRepo := repositories.NewAuthRepository(db)
	rosterRepo := repositories.NewRosterRepository(db)
	eventRepo := repositories.NewEventRepository(db)
	assignmentRepo := repositories.NewAssignmentRepository(db)
	reportRepo := repositories.NewReportRepository(db)

	// Policy knobs are environment driven so a congregation can tighten the
	// staffing rules without a rebuild.
	assignmentOpts := services.AssignmentOptions{
		AllowMultipleFunctions: utils.Getenv("ALLOW_MULTIPLE_FUNCTIONS", "true") == "true",
	}
	reportOpts := services.ReportOptions{
		CoerceInvalidAmounts: utils.Getenv("COERCE_INVALID_AMOUNTS", "false") == "true",
	}

	// Initialize Services
	authService := services.NewAuthService(authRepo, db)
	rosterService := services.NewRosterService(rosterRepo, authRepo, db)
	eventService := services.NewEventService(eventRepo, db)
	assignmentService := services.NewAssignmentService(assignmentRepo, eventRepo, db, assignmentOpts)
	confirmationService := services.NewConfirmationService(assignmentRepo, eventRepo, db)
	reportService := services.NewReportService(reportRepo, assignmentRepo, eventRepo, db, reportOpts)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	rosterHandler := handlers.NewRosterHandler(rosterService)
	eventHandler := handlers.NewEventHandler(eventService)
	assignmentHandler := handlers.NewAssignmentHandler(assignmentService, confirmationService)
	reportHandler := handlers.NewReportHandler(reportService)

	apiV1 := engine.Group("/api/v1")

	// Public authentication routes
	SetupPublicAuthRoutes(apiV1.Group("/auth"), authHandler)

	// Authenticated routes
	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupAuthenticatedAuthRoutes(authenticated.Group("/auth"), authHandler)
		SetupRosterRoutes(authenticated, rosterHandler)
		SetupEventRoutes(authenticated, eventHandler)
		SetupAssignmentRoutes(authenticated, assignmentHandler)
		SetupReportRoutes(authenticated, reportHandler)
	}
}

func SetupPublicAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.POST("/register", authHandler.RegisterUser)
	group.POST("/login", authHandler.LoginUser)
}

func SetupAuthenticatedAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.GET("/me", authHandler.GetCurrentUser)
	group.GET("/users", middleware.RoleAuthMiddleware(middleware.AdminRoles...), authHandler.GetUsers)
}
