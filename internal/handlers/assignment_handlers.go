package handlers

import (
	"errors"
	"net/http"

	"church_community_backend/internal/middleware"
	"church_community_backend/internal/models"
	"church_community_backend/internal/services"
	"church_community_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AssignmentHandler holds the assignment and confirmation services.
type AssignmentHandler struct {
	assignmentService   services.AssignmentService
	confirmationService services.ConfirmationService
}

// NewAssignmentHandler creates a new AssignmentHandler.
func NewAssignmentHandler(as services.AssignmentService, cs services.ConfirmationService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: as, confirmationService: cs}
}

func respondAssignmentError(c *gin.Context, err error, logContext string) {
	utils.LogError(err, logContext)
	switch {
	case errors.Is(err, services.ErrPermissionDenied):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "You do not have permission for this operation.", ""))
	case errors.Is(err, services.ErrEventNotFound), errors.Is(err, services.ErrAssignmentNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Record not found.", err.Error()))
	case errors.Is(err, services.ErrDuplicateMember):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Member is already assigned.", err.Error()))
	case errors.Is(err, services.ErrNotScheduled):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "You are not scheduled on this assignment.", err.Error()))
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrInvalidTeam),
		errors.Is(err, services.ErrNoTeamSelected),
		errors.Is(err, services.ErrNoMembersAssigned):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Assignment operation failed.", "Internal error"))
	}
}

// SaveAssignment creates or replaces the staffing assignment for an event.
func (h *AssignmentHandler) SaveAssignment(c *gin.Context) {
	actor, _ := middleware.GetActor(c)
	eventID := c.Param("eventId")

	var req services.SaveAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	assignment, err := h.assignmentService.SaveAssignment(actor, eventID, req)
	if err != nil {
		respondAssignmentError(c, err, "SaveAssignment: Error from assignmentService.SaveAssignment for event "+eventID)
		return
	}
	c.JSON(http.StatusOK, assignment)
}

// GetAssignment fetches the staffing assignment for an event, including its
// confirmation rate.
func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	eventID := c.Param("eventId")

	assignment, err := h.assignmentService.GetAssignment(eventID)
	if err != nil {
		respondAssignmentError(c, err, "GetAssignment: Error from assignmentService.GetAssignment for event "+eventID)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"assignment":        assignment,
		"confirmation_rate": h.confirmationService.ConfirmationRate(assignment),
	})
}

// GetAssignments lists the ministry's assignments with optional filters.
func (h *AssignmentHandler) GetAssignments(c *gin.Context) {
	var team *models.Team
	if teamParam := c.Query("team"); teamParam != "" {
		t := models.Team(teamParam)
		team = &t
	}
	pendingOnly := c.Query("pending") == "true"

	assignments, err := h.assignmentService.GetAssignments(team, pendingOnly)
	if err != nil {
		respondAssignmentError(c, err, "GetAssignments: Error from assignmentService.GetAssignments")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": assignments, "total": len(assignments)})
}

// DeleteAssignment removes the staffing assignment for an event.
func (h *AssignmentHandler) DeleteAssignment(c *gin.Context) {
	actor, _ := middleware.GetActor(c)
	eventID := c.Param("eventId")

	if err := h.assignmentService.DeleteAssignment(actor, eventID); err != nil {
		respondAssignmentError(c, err, "DeleteAssignment: Error from assignmentService.DeleteAssignment for event "+eventID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Assignment deleted successfully"})
}

// ConfirmPresence flips the caller's own confirmation entry. A repeated
// confirmation responds with a warning payload rather than an error.
func (h *AssignmentHandler) ConfirmPresence(c *gin.Context) {
	actor, _ := middleware.GetActor(c)
	eventID := c.Param("eventId")

	assignment, err := h.confirmationService.ConfirmPresence(actor, eventID)
	if err != nil {
		if errors.Is(err, services.ErrAlreadyConfirmed) {
			c.JSON(http.StatusOK, gin.H{
				"warning":    "Presence was already confirmed.",
				"assignment": assignment,
			})
			return
		}
		respondAssignmentError(c, err, "ConfirmPresence: Error from confirmationService.ConfirmPresence for event "+eventID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignment": assignment})
}

// FinalizeAssignment records the leader's final sign-off.
func (h *AssignmentHandler) FinalizeAssignment(c *gin.Context) {
	actor, _ := middleware.GetActor(c)
	eventID := c.Param("eventId")

	assignment, err := h.confirmationService.FinalizeAssignment(actor, eventID)
	if err != nil {
		respondAssignmentError(c, err, "FinalizeAssignment: Error from confirmationService.FinalizeAssignment for event "+eventID)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"assignment":        assignment,
		"confirmation_rate": h.confirmationService.ConfirmationRate(assignment),
	})
}
