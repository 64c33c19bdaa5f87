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

// RosterHandler holds the roster service.
type RosterHandler struct {
	rosterService services.RosterService
}

// NewRosterHandler creates a new RosterHandler.
func NewRosterHandler(rs services.RosterService) *RosterHandler {
	return &RosterHandler{rosterService: rs}
}

// respondRosterError maps roster service errors onto API responses.
func respondRosterError(c *gin.Context, err error, logContext string) {
	utils.LogError(err, logContext)
	switch {
	case errors.Is(err, services.ErrPermissionDenied):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "You do not have permission for this operation.", ""))
	case errors.Is(err, services.ErrUserDirNotFound), errors.Is(err, services.ErrNotMinistryMember), errors.Is(err, services.ErrNoLeader):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Record not found.", err.Error()))
	case errors.Is(err, services.ErrAlreadyMember), errors.Is(err, services.ErrAlreadyAssigned), errors.Is(err, services.ErrAlreadyLeader), errors.Is(err, services.ErrScopeOccupied), errors.Is(err, services.ErrNotOnTeam):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Conflicting roster state.", err.Error()))
	case errors.Is(err, services.ErrNotEligible):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "User must be a ministry member first.", err.Error()))
	case errors.Is(err, services.ErrInvalidTeam), errors.Is(err, services.ErrInvalidScope), errors.Is(err, services.ErrSearchTooShort), errors.Is(err, services.ErrValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Roster operation failed.", "Internal error"))
	}
}

// AddMinistryMember enrols a directory user into the ministry.
func (h *RosterHandler) AddMinistryMember(c *gin.Context) {
	actor, _ := middleware.GetActor(c)
	var req services.AddMinistryMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	member, err := h.rosterService.AddMinistryMember(actor, req)
	if err != nil {
		respondRosterError(c, err, "AddMinistryMember: Error from rosterService.AddMinistryMember")
		return
	}
	c.JSON(http.StatusCreated, member)
}

// RemoveMinistryMember deletes a ministry member record.
func (h *RosterHandler) RemoveMinistryMember(c *gin.Context) {
	actor, _ := middleware.GetActor(c)
	userID := c.Param("userId")

	if err := h.rosterService.RemoveMinistryMember(actor, userID); err != nil {
		respondRosterError(c, err, "RemoveMinistryMember: Error from rosterService.RemoveMinistryMember for user "+userID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ministry member removed successfully"})
}

// GetMembers lists ministry members, optionally filtered by team.
func (h *RosterHandler) GetMembers(c *gin.Context) {
	var team *models.Team
	if teamParam := c.Query("team"); teamParam != "" {
		t := models.Team(teamParam)
		team = &t
	}

	members, err := h.rosterService.GetMembers(team)
	if err != nil {
		respondRosterError(c, err, "GetMembers: Error from rosterService.GetMembers")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": members, "total": len(members)})
}

// SearchMembers finds eligible members for a function by name substring.
func (h *RosterHandler) SearchMembers(c *gin.Context) {
	function := models.FunctionKey(c.Query("function"))
	queryText := c.Query("q")
	team := models.Team(c.Query("team"))

	members, err := h.rosterService.SearchEligibleMembers(function, queryText, team)
	if err != nil {
		respondRosterError(c, err, "SearchMembers: Error from rosterService.SearchEligibleMembers")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": members, "total": len(members)})
}

// AddTeamMember enrols a ministry member onto a team.
func (h *RosterHandler) AddTeamMember(c *gin.Context) {
	actor, _ := middleware.GetActor(c)
	team := models.Team(c.Param("team"))
	var req struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	member, err := h.rosterService.AddTeamMember(actor, req.UserID, team)
	if err != nil {
		respondRosterError(c, err, "AddTeamMember: Error from rosterService.AddTeamMember")
		return
	}
	c.JSON(http.StatusCreated, member)
}

// RemoveTeamMember clears a member's team enrolment.
func (h *RosterHandler) RemoveTeamMember(c *gin.Context) {
	actor, _ := middleware.GetActor(c)
	team := models.Team(c.Param("team"))
	userID := c.Param("userId")

	if err := h.rosterService.RemoveTeamMember(actor, userID, team); err != nil {
		respondRosterError(c, err, "RemoveTeamMember: Error from rosterService.RemoveTeamMember for user "+userID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Team member removed successfully"})
}

// SetLeader appoints a member as leader of a scope.
func (h *RosterHandler) SetLeader(c *gin.Context) {
	actor, _ := middleware.GetActor(c)
	scope := models.LeaderScope(c.Param("scope"))
	var req struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	leadership, err := h.rosterService.SetLeader(actor, req.UserID, scope)
	if err != nil {
		respondRosterError(c, err, "SetLeader: Error from rosterService.SetLeader")
		return
	}
	c.JSON(http.StatusOK, leadership)
}

// RemoveLeader clears the leadership record for a scope.
func (h *RosterHandler) RemoveLeader(c *gin.Context) {
	actor, _ := middleware.GetActor(c)
	scope := models.LeaderScope(c.Param("scope"))

	if err := h.rosterService.RemoveLeader(actor, scope); err != nil {
		respondRosterError(c, err, "RemoveLeader: Error from rosterService.RemoveLeader for scope "+string(scope))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Leader removed successfully"})
}

// GetLeaders lists the current leadership records.
func (h *RosterHandler) GetLeaders(c *gin.Context) {
	leaders, err := h.rosterService.GetLeaders()
	if err != nil {
		respondRosterError(c, err, "GetLeaders: Error from rosterService.GetLeaders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": leaders, "total": len(leaders)})
}
