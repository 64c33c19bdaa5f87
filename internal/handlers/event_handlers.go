package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"church_community_backend/internal/middleware"
	"church_community_backend/internal/services"
	"church_community_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// EventHandler holds the event service.
type EventHandler struct {
	eventService services.EventService
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(es services.EventService) *EventHandler {
	return &EventHandler{eventService: es}
}

// CreateEvent registers a new event on the calendar.
func (h *EventHandler) CreateEvent(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	var req services.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	event, err := h.eventService.CreateEvent(actor, req)
	if err != nil {
		utils.LogError(err, "CreateEvent: Error from eventService.CreateEvent")
		if errors.Is(err, services.ErrPermissionDenied) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "You do not have permission to create events.", ""))
		} else if errors.Is(err, services.ErrEventTimeFormat) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create event.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, event)
}

// GetEventByID fetches one event with its staffing status fields.
func (h *EventHandler) GetEventByID(c *gin.Context) {
	id := c.Param("eventId")

	event, err := h.eventService.GetEventByID(id)
	if err != nil {
		utils.LogError(err, "GetEventByID: Error from eventService.GetEventByID for "+id)
		if errors.Is(err, services.ErrEventNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Event not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch event.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, event)
}

// GetEvents lists events, optionally from a start date.
func (h *EventHandler) GetEvents(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	var from *string
	if fromParam := c.Query("from"); fromParam != "" {
		from = &fromParam
	}

	events, totalCount, err := h.eventService.GetEvents(from, page, pageSize)
	if err != nil {
		utils.LogError(err, "GetEvents: Error from eventService.GetEvents")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch events.", "Internal error"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      events,
		"total":     totalCount,
		"page":      page,
		"page_size": pageSize,
	})
}
