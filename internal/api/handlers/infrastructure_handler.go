package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sourcehub/hub-backend/internal/models"
	"github.com/sourcehub/hub-backend/internal/repository"
	"github.com/sourcehub/hub-backend/internal/service"
)

// ============================================
// Infrastructure Handler
// ============================================

type InfrastructureHandler struct {
	infraService service.InfrastructureService
}

func (h *InfrastructureHandler) RecordMetric(c *gin.Context) {
	var req models.RecordMetricRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	metric := &repository.InfrastructureMetric{
		MetricType:     req.MetricType,
		PowerSource:    req.PowerSource,
		PowerStatus:    req.PowerStatus,
		BatteryLevel:   req.BatteryLevel,
		InternetStatus: req.InternetStatus,
		DownloadMbps:   req.DownloadMbps,
		UploadMbps:     req.UploadMbps,
		LatencyMs:      req.LatencyMs,
		TemperatureC:   req.TemperatureC,
		HumidityPct:    req.HumidityPct,
	}

	alerts, err := h.infraService.RecordMetric(c.Request.Context(), metric)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"metric": toMetricResponse(metric),
		"alerts": alerts,
	})
}

func (h *InfrastructureHandler) Latest(c *gin.Context) {
	metric, err := h.infraService.Latest(c.Request.Context(), c.Param("type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch metric"})
		return
	}
	if metric == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No readings recorded yet"})
		return
	}
	c.JSON(http.StatusOK, toMetricResponse(metric))
}

func (h *InfrastructureHandler) Range(c *gin.Context) {
	from, to, err := parseTimeRange(c, -24*time.Hour)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	metrics, err := h.infraService.Range(c.Request.Context(), c.Param("type"), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch metrics"})
		return
	}

	response := make([]models.MetricResponse, len(metrics))
	for i, m := range metrics {
		response[i] = toMetricResponse(m)
	}
	c.JSON(http.StatusOK, response)
}

func (h *InfrastructureHandler) Uptime(c *gin.Context) {
	from, to, err := parseTimeRange(c, -30*24*time.Hour)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	metricType := c.Param("type")
	uptime, err := h.infraService.Uptime(c.Request.Context(), metricType, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute uptime"})
		return
	}
	c.JSON(http.StatusOK, models.UptimeResponse{
		MetricType:    metricType,
		From:          from.Format(time.RFC3339),
		To:            to.Format(time.RFC3339),
		UptimePercent: uptime,
	})
}

func (h *InfrastructureHandler) Failovers(c *gin.Context) {
	from, to, err := parseTimeRange(c, -30*24*time.Hour)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	count, err := h.infraService.Failovers(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count failovers"})
		return
	}
	c.JSON(http.StatusOK, models.FailoverResponse{
		From:      from.Format(time.RFC3339),
		To:        to.Format(time.RFC3339),
		Failovers: count,
	})
}

func (h *InfrastructureHandler) Status(c *gin.Context) {
	status, err := h.infraService.Status(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch facility status"})
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *InfrastructureHandler) ActiveAlerts(c *gin.Context) {
	c.JSON(http.StatusOK, h.infraService.ActiveAlerts())
}

func (h *InfrastructureHandler) AlertHistory(c *gin.Context) {
	limit := 100
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'limit' parameter"})
			return
		}
		limit = parsed
	}
	c.JSON(http.StatusOK, h.infraService.AlertHistory(limit))
}
