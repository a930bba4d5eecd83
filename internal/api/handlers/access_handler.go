package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sourcehub/hub-backend/internal/models"
	"github.com/sourcehub/hub-backend/internal/service"
)

// ============================================
// Access Handler
// ============================================

type AccessHandler struct {
	accessService service.AccessService
}

func (h *AccessHandler) Verify(c *gin.Context) {
	var req models.VerifyAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.accessService.VerifyAccess(c.Request.Context(), service.AccessAttempt{
		Identifier:   req.Identifier,
		AccessMethod: req.AccessMethod,
		WorkspaceID:  req.WorkspaceID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	resp := models.AccessResultResponse{
		Granted: result.Granted,
		Reason:  result.Reason,
		Log:     toAccessLogResponse(result.Log),
	}
	if result.Member != nil {
		member := toMemberResponse(result.Member)
		resp.Member = &member
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AccessHandler) Exit(c *gin.Context) {
	log, err := h.accessService.LogExit(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAccessLogResponse(log))
}

func (h *AccessHandler) MemberHistory(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'limit' parameter"})
			return
		}
		limit = parsed
	}

	logs, err := h.accessService.MemberHistory(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]models.AccessLogResponse, len(logs))
	for i, l := range logs {
		response[i] = toAccessLogResponse(l)
	}
	c.JSON(http.StatusOK, response)
}

func (h *AccessHandler) Occupants(c *gin.Context) {
	occupants, err := h.accessService.CurrentOccupants(c.Request.Context(), c.Query("workspaceId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch occupants"})
		return
	}

	response := make([]models.OccupantResponse, len(occupants))
	for i, o := range occupants {
		response[i] = models.OccupantResponse{
			Member: toMemberResponse(o.Member),
			Log:    toAccessLogResponse(o.Log),
		}
	}
	c.JSON(http.StatusOK, response)
}

func (h *AccessHandler) Stats(c *gin.Context) {
	from, to, err := parseTimeRange(c, -24*time.Hour)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stats, err := h.accessService.Stats(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute access stats"})
		return
	}
	c.JSON(http.StatusOK, models.AccessStatsResponse{
		TotalEntries:  stats.TotalEntries,
		Granted:       stats.Granted,
		Denied:        stats.Denied,
		UniqueMembers: stats.UniqueMembers,
		PeakHour:      stats.PeakHour,
	})
}
