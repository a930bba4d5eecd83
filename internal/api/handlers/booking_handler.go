package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sourcehub/hub-backend/internal/api/middleware"
	"github.com/sourcehub/hub-backend/internal/models"
	"github.com/sourcehub/hub-backend/internal/service"
)

// ============================================
// Booking Handler
// ============================================

type BookingHandler struct {
	bookingService service.BookingService
}

func (h *BookingHandler) Create(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.bookingService.Create(c.Request.Context(), service.CreateBookingInput{
		MemberID:    memberID,
		WorkspaceID: req.WorkspaceID,
		BookingType: req.BookingType,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingResponse(booking))
}

func (h *BookingHandler) CreateTrial(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	var req models.TrialBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.bookingService.CreateTrial(c.Request.Context(), memberID, req.WorkspaceID, req.StartTime)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingResponse(booking))
}

func (h *BookingHandler) CheckAvailability(c *gin.Context) {
	workspaceID := c.Query("workspaceId")
	if workspaceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workspaceId is required"})
		return
	}
	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'start' timestamp"})
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'end' timestamp"})
		return
	}

	availability, err := h.bookingService.CheckAvailability(c.Request.Context(), workspaceID, start, end, c.Query("excludeBookingId"))
	if err != nil {
		respondError(c, err)
		return
	}

	conflicts := make([]models.BookingResponse, len(availability.Conflicts))
	for i, b := range availability.Conflicts {
		conflicts[i] = toBookingResponse(b)
	}
	c.JSON(http.StatusOK, models.AvailabilityResponse{
		WorkspaceID: workspaceID,
		Available:   availability.Available,
		Conflicts:   conflicts,
	})
}

func (h *BookingHandler) Quote(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	var req models.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quote, err := h.bookingService.CalculatePrice(c.Request.Context(), req.WorkspaceID, memberID, req.BookingType, req.StartTime, req.EndTime)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.QuoteResponse{
		WorkspaceID:        req.WorkspaceID,
		BookingType:        req.BookingType,
		BasePrice:          quote.BasePrice.InexactFloat64(),
		Discount:           quote.Discount.InexactFloat64(),
		TotalAmount:        quote.TotalAmount.InexactFloat64(),
		ScholarshipApplied: quote.ScholarshipApplied,
	})
}

func (h *BookingHandler) UpdatePayment(c *gin.Context) {
	var req models.UpdateBookingPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.bookingService.UpdatePaymentStatus(c.Request.Context(), c.Param("id"), req.PaymentStatus, req.PaymentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(booking))
}

func (h *BookingHandler) Active(c *gin.Context) {
	workspaceID := c.Query("workspaceId")
	if workspaceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workspaceId is required"})
		return
	}

	booking, err := h.bookingService.GetActiveBooking(c.Request.Context(), workspaceID)
	if err != nil {
		respondError(c, err)
		return
	}
	if booking == nil {
		c.JSON(http.StatusOK, gin.H{"booking": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": toBookingResponse(booking)})
}

func (h *BookingHandler) Get(c *gin.Context) {
	booking, err := h.bookingService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(booking))
}

func (h *BookingHandler) ListMine(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	bookings, err := h.bookingService.ListByMember(c.Request.Context(), memberID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
		return
	}

	response := make([]models.BookingResponse, len(bookings))
	for i, b := range bookings {
		response[i] = toBookingResponse(b)
	}
	c.JSON(http.StatusOK, response)
}

func (h *BookingHandler) CheckIn(c *gin.Context) {
	booking, err := h.bookingService.CheckIn(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(booking))
}

func (h *BookingHandler) CheckOut(c *gin.Context) {
	booking, err := h.bookingService.CheckOut(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(booking))
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	result, err := h.bookingService.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.CancelBookingResponse{
		Booking: toBookingResponse(result.Booking),
		Refund:  result.Refund.InexactFloat64(),
	})
}
