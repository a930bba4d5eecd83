package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/sourcehub/hub-backend/internal/api/middleware"
	"github.com/sourcehub/hub-backend/internal/models"
	"github.com/sourcehub/hub-backend/internal/service"
)

// ============================================
// Payment Handler
// ============================================

type PaymentHandler struct {
	paymentService service.PaymentService
}

func (h *PaymentHandler) PayBooking(c *gin.Context) {
	var req models.PayBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := h.paymentService.ProcessBookingPayment(c.Request.Context(), c.Param("id"), req.Method)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPaymentResponse(payment))
}

func (h *PaymentHandler) PayMembership(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	var req models.MembershipPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := h.paymentService.ProcessMembershipPayment(c.Request.Context(), memberID, req.Tier, req.Method)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPaymentResponse(payment))
}

func (h *PaymentHandler) Retry(c *gin.Context) {
	payment, err := h.paymentService.RetryPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPaymentResponse(payment))
}

func (h *PaymentHandler) Refund(c *gin.Context) {
	// Body is optional; omitting the amount refunds in full.
	var req models.RefundRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	var amount *decimal.Decimal
	if req.Amount != nil {
		a := decimal.NewFromFloat(*req.Amount)
		amount = &a
	}

	payment, err := h.paymentService.ProcessRefund(c.Request.Context(), c.Param("id"), amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPaymentResponse(payment))
}

func (h *PaymentHandler) Get(c *gin.Context) {
	payment, err := h.paymentService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPaymentResponse(payment))
}

func (h *PaymentHandler) ListMine(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	payments, err := h.paymentService.ListByMember(c.Request.Context(), memberID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payments"})
		return
	}

	response := make([]models.PaymentResponse, len(payments))
	for i, p := range payments {
		response[i] = toPaymentResponse(p)
	}
	c.JSON(http.StatusOK, response)
}

func (h *PaymentHandler) Invoice(c *gin.Context) {
	invoice, err := h.paymentService.Invoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.InvoiceResponse{
		InvoiceNumber: invoice.InvoiceNumber,
		IssuedAt:      invoice.IssuedAt,
		MemberName:    invoice.MemberName,
		MemberEmail:   invoice.MemberEmail,
		Description:   invoice.Description,
		Amount:        invoice.Amount.InexactFloat64(),
		Currency:      invoice.Currency,
		Status:        invoice.Status,
		TransactionID: invoice.TransactionID,
	})
}

func (h *PaymentHandler) Revenue(c *gin.Context) {
	from, to, err := parseTimeRange(c, -30*24*time.Hour)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.paymentService.Revenue(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute revenue"})
		return
	}

	byType := make(map[string]float64, len(report.ByType))
	for paymentType, amount := range report.ByType {
		byType[paymentType] = amount.InexactFloat64()
	}
	c.JSON(http.StatusOK, models.RevenueResponse{
		From:   report.From,
		To:     report.To,
		Total:  report.Total.InexactFloat64(),
		ByType: byType,
	})
}

// Webhook receives asynchronous payment status updates from the gateway.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	var req models.PaymentWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.paymentService.HandleWebhook(c.Request.Context(), req.Data.ID, req.Data.Status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process webhook"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
