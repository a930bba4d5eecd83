package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/sourcehub/hub-backend/internal/models"
	"github.com/sourcehub/hub-backend/internal/service"
)

// ============================================
// Workspace Handler
// ============================================

type WorkspaceHandler struct {
	workspaceService service.WorkspaceService
}

func (h *WorkspaceHandler) Create(c *gin.Context) {
	var req models.CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	workspace, err := h.workspaceService.Create(c.Request.Context(), service.CreateWorkspaceInput{
		Name:        req.Name,
		Type:        req.Type,
		Floor:       req.Floor,
		Capacity:    req.Capacity,
		HourlyRate:  decimal.NewFromFloat(req.HourlyRate),
		DailyRate:   decimal.NewFromFloat(req.DailyRate),
		MonthlyRate: decimal.NewFromFloat(req.MonthlyRate),
		Amenities:   req.Amenities,
		Equipment:   req.Equipment,
		IsAvailable: req.IsAvailable,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toWorkspaceResponse(workspace))
}

func (h *WorkspaceHandler) Get(c *gin.Context) {
	workspace, err := h.workspaceService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWorkspaceResponse(workspace))
}

func (h *WorkspaceHandler) List(c *gin.Context) {
	workspaces, err := h.workspaceService.List(c.Request.Context(), c.Query("type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch workspaces"})
		return
	}

	response := make([]models.WorkspaceResponse, len(workspaces))
	for i, w := range workspaces {
		response[i] = toWorkspaceResponse(w)
	}
	c.JSON(http.StatusOK, response)
}

func (h *WorkspaceHandler) Update(c *gin.Context) {
	var req models.UpdateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := service.UpdateWorkspaceInput{
		Name:        req.Name,
		Floor:       req.Floor,
		Capacity:    req.Capacity,
		Amenities:   req.Amenities,
		Equipment:   req.Equipment,
		IsAvailable: req.IsAvailable,
	}
	if req.HourlyRate != nil {
		rate := decimal.NewFromFloat(*req.HourlyRate)
		input.HourlyRate = &rate
	}
	if req.DailyRate != nil {
		rate := decimal.NewFromFloat(*req.DailyRate)
		input.DailyRate = &rate
	}
	if req.MonthlyRate != nil {
		rate := decimal.NewFromFloat(*req.MonthlyRate)
		input.MonthlyRate = &rate
	}

	workspace, err := h.workspaceService.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWorkspaceResponse(workspace))
}

func (h *WorkspaceHandler) SetMaintenanceStatus(c *gin.Context) {
	var req models.MaintenanceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	workspace, err := h.workspaceService.SetMaintenanceStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWorkspaceResponse(workspace))
}

func (h *WorkspaceHandler) Schedule(c *gin.Context) {
	from, to, err := parseTimeRange(c, 7*24*time.Hour)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bookings, err := h.workspaceService.Schedule(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]models.BookingResponse, len(bookings))
	for i, b := range bookings {
		response[i] = toBookingResponse(b)
	}
	c.JSON(http.StatusOK, response)
}

func (h *WorkspaceHandler) Delete(c *gin.Context) {
	if err := h.workspaceService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusNoContent, nil)
}
