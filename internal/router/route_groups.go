package router

import (
	"church_community_backend/internal/handlers"
	"church_community_backend/internal/middleware"
	"church_community_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// managementRoles is every role allowed to touch roster composition: the
// leadership chain plus the plain admin.
var managementRoles = append(append([]models.Role{}, middleware.LeadershipRoles...), models.RoleAdmin)

// SetupRosterRoutes sets up the ministry roster and leadership routes.
// Fine-grained checks (own-team scoping, eligibility) live in the service;
// the middleware only fences off roles that can never perform the action.
func SetupRosterRoutes(authenticatedGroup *gin.RouterGroup, rosterHandler *handlers.RosterHandler) {
	ministryRoutes := authenticatedGroup.Group("/ministry")
	{
		ministryRoutes.GET("/members", rosterHandler.GetMembers)
		ministryRoutes.GET("/members/search", middleware.RoleAuthMiddleware(managementRoles...), rosterHandler.SearchMembers)
		ministryRoutes.POST("/members", middleware.RoleAuthMiddleware(middleware.AdminRoles...), rosterHandler.AddMinistryMember)
		ministryRoutes.DELETE("/members/:userId", middleware.RoleAuthMiddleware(middleware.AdminRoles...), rosterHandler.RemoveMinistryMember)

		ministryRoutes.POST("/teams/:team/members", middleware.RoleAuthMiddleware(managementRoles...), rosterHandler.AddTeamMember)
		ministryRoutes.DELETE("/teams/:team/members/:userId", middleware.RoleAuthMiddleware(managementRoles...), rosterHandler.RemoveTeamMember)

		ministryRoutes.GET("/leaders", rosterHandler.GetLeaders)
		ministryRoutes.PUT("/leaders/:scope", middleware.RoleAuthMiddleware(middleware.AdminRoles...), rosterHandler.SetLeader)
		ministryRoutes.DELETE("/leaders/:scope", middleware.RoleAuthMiddleware(middleware.AdminRoles...), rosterHandler.RemoveLeader)
	}
}

// SetupEventRoutes sets up the event calendar routes.
func SetupEventRoutes(authenticatedGroup *gin.RouterGroup, eventHandler *handlers.EventHandler) {
	eventRoutes := authenticatedGroup.Group("/events")
	{
		eventRoutes.GET("", eventHandler.GetEvents)
		eventRoutes.POST("", middleware.RoleAuthMiddleware(middleware.AdminRoles...), eventHandler.CreateEvent)
		eventRoutes.GET("/:eventId", eventHandler.GetEventByID)
	}
}

// SetupAssignmentRoutes sets up the staffing assignment routes. Confirmation
// is open to every authenticated member; the service rejects callers who are
// not on the assignment themselves.
func SetupAssignmentRoutes(authenticatedGroup *gin.RouterGroup, assignmentHandler *handlers.AssignmentHandler) {
	assignmentRoutes := authenticatedGroup.Group("/events/:eventId/assignment")
	{
		assignmentRoutes.PUT("", middleware.RoleAuthMiddleware(middleware.LeadershipRoles...), assignmentHandler.SaveAssignment)
		assignmentRoutes.GET("", assignmentHandler.GetAssignment)
		assignmentRoutes.DELETE("", middleware.RoleAuthMiddleware(middleware.LeadershipRoles...), assignmentHandler.DeleteAssignment)
		assignmentRoutes.POST("/confirm", assignmentHandler.ConfirmPresence)
		assignmentRoutes.POST("/finalize", middleware.RoleAuthMiddleware(middleware.LeadershipRoles...), assignmentHandler.FinalizeAssignment)
	}

	authenticatedGroup.GET("/assignments", assignmentHandler.GetAssignments)
}

// SetupReportRoutes sets up the collection report routes. Saving has no role
// middleware because the offering-function member may hold the plain member
// role; authorization is resolved against the event's assignment in the
// service.
func SetupReportRoutes(authenticatedGroup *gin.RouterGroup, reportHandler *handlers.ReportHandler) {
	authenticatedGroup.PUT("/events/:eventId/collection-report", reportHandler.SaveReport)
	authenticatedGroup.GET("/events/:eventId/collection-report", reportHandler.GetReport)
	authenticatedGroup.GET("/collection-reports", middleware.RoleAuthMiddleware(managementRoles...), reportHandler.GetReports)
}
