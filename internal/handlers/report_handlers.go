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

// ReportHandler holds the collection report service.
type ReportHandler struct {
	reportService services.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(rs services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: rs}
}

// SaveReport creates or overwrites the collection report for an event.
func (h *ReportHandler) SaveReport(c *gin.Context) {
	actor, _ := middleware.GetActor(c)
	eventID := c.Param("eventId")

	var req services.SaveReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	report, err := h.reportService.SaveReport(actor, eventID, req)
	if err != nil {
		utils.LogError(err, "SaveReport: Error from reportService.SaveReport for event "+eventID)
		if errors.Is(err, services.ErrPermissionDenied) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "You are not authorized to file this report.", ""))
		} else if errors.Is(err, services.ErrEventNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Event not found.", err.Error()))
		} else if errors.Is(err, services.ErrZeroTotal) || errors.Is(err, services.ErrAmountFormat) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to save collection report.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetReport fetches the collection report for an event.
func (h *ReportHandler) GetReport(c *gin.Context) {
	eventID := c.Param("eventId")

	report, err := h.reportService.GetReport(eventID)
	if err != nil {
		utils.LogError(err, "GetReport: Error from reportService.GetReport for event "+eventID)
		if errors.Is(err, services.ErrReportNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Collection report not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch collection report.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetReports lists the ministry's collection reports.
func (h *ReportHandler) GetReports(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	reports, totalCount, err := h.reportService.GetReports(page, pageSize)
	if err != nil {
		utils.LogError(err, "GetReports: Error from reportService.GetReports")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch collection reports.", "Internal error"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      reports,
		"total":     totalCount,
		"page":      page,
		"page_size": pageSize,
	})
}
