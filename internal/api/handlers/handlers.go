package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sourcehub/hub-backend/internal/models"
	"github.com/sourcehub/hub-backend/internal/repository"
	"github.com/sourcehub/hub-backend/internal/service"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	Auth           *AuthHandler
	Member         *MemberHandler
	Workspace      *WorkspaceHandler
	Booking        *BookingHandler
	Payment        *PaymentHandler
	Access         *AccessHandler
	Infrastructure *InfrastructureHandler
}

// NewHandlers creates all handlers
func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Auth:           &AuthHandler{authService: services.Auth},
		Member:         &MemberHandler{membershipService: services.Membership},
		Workspace:      &WorkspaceHandler{workspaceService: services.Workspace},
		Booking:        &BookingHandler{bookingService: services.Booking},
		Payment:        &PaymentHandler{paymentService: services.Payment},
		Access:         &AccessHandler{accessService: services.Access},
		Infrastructure: &InfrastructureHandler{infraService: services.Infrastructure},
	}
}

// respondError maps service errors to HTTP status codes.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrMemberNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrConflict),
		errors.Is(err, service.ErrMemberExists),
		errors.Is(err, service.ErrScholarshipGranted),
		errors.Is(err, service.ErrMembershipInactive),
		errors.Is(err, service.ErrMembershipExpired),
		errors.Is(err, service.ErrWorkspaceUnbookable),
		errors.Is(err, service.ErrTrialAlreadyUsed),
		errors.Is(err, service.ErrBookingNotPayable),
		errors.Is(err, service.ErrNotRefundable),
		errors.Is(err, service.ErrRefundTooLarge),
		errors.Is(err, service.ErrNotCheckInWindow),
		errors.Is(err, service.ErrPaymentRequired),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrTierDowngrade),
		errors.Is(err, service.ErrPaymentFailed):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// ============================================
// Response Mappers
// ============================================

func toMemberResponse(m *repository.Member) models.MemberResponse {
	return models.MemberResponse{
		ID:                m.ID,
		Email:             m.Email,
		Name:              m.Name,
		Phone:             m.Phone,
		MembershipTier:    m.MembershipTier,
		MembershipStatus:  m.MembershipStatus,
		JoinDate:          m.JoinDate,
		ExpiryDate:        m.ExpiryDate,
		AccessCardID:      m.AccessCardID,
		Scholarship:       m.Scholarship,
		TrialUsed:         m.TrialUsed,
		StorageUnitNumber: m.StorageUnitNumber,
		Bio:               m.Bio,
		Skills:            safeStringSlice(m.Skills),
		Interests:         safeStringSlice(m.Interests),
		PortfolioURL:      m.PortfolioURL,
		CreatedAt:         m.CreatedAt,
	}
}

func toWorkspaceResponse(w *repository.Workspace) models.WorkspaceResponse {
	return models.WorkspaceResponse{
		ID:                w.ID,
		Name:              w.Name,
		Type:              w.Type,
		Floor:             w.Floor,
		Capacity:          w.Capacity,
		HourlyRate:        w.HourlyRate.InexactFloat64(),
		DailyRate:         w.DailyRate.InexactFloat64(),
		MonthlyRate:       w.MonthlyRate.InexactFloat64(),
		Amenities:         safeStringSlice(w.Amenities),
		Equipment:         safeStringSlice(w.Equipment),
		IsAvailable:       w.IsAvailable,
		MaintenanceStatus: w.MaintenanceStatus,
		CreatedAt:         w.CreatedAt,
	}
}

func toBookingResponse(b *repository.Booking) models.BookingResponse {
	return models.BookingResponse{
		ID:            b.ID,
		MemberID:      b.MemberID,
		WorkspaceID:   b.WorkspaceID,
		BookingType:   b.BookingType,
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		Status:        b.Status,
		TotalPrice:    b.TotalPrice.InexactFloat64(),
		PaymentStatus: b.PaymentStatus,
		PaymentID:     b.PaymentID,
		IsTrial:       b.IsTrial,
		CheckedInAt:   b.CheckedInAt,
		CheckedOutAt:  b.CheckedOutAt,
		CancelledAt:   b.CancelledAt,
		CreatedAt:     b.CreatedAt,
	}
}

func toPaymentResponse(p *repository.Payment) models.PaymentResponse {
	resp := models.PaymentResponse{
		ID:            p.ID,
		MemberID:      p.MemberID,
		BookingID:     p.BookingID,
		Amount:        p.Amount.InexactFloat64(),
		Currency:      p.Currency,
		PaymentType:   p.PaymentType,
		PaymentMethod: p.PaymentMethod,
		Status:        p.Status,
		TransactionID: p.TransactionID,
		FailureReason: p.FailureReason,
		PaidAt:        p.PaidAt,
		CreatedAt:     p.CreatedAt,
	}
	if p.RefundedAmount != nil {
		refunded := p.RefundedAmount.InexactFloat64()
		resp.RefundedAmount = &refunded
	}
	return resp
}

func toAccessLogResponse(l *repository.AccessLog) models.AccessLogResponse {
	return models.AccessLogResponse{
		ID:           l.ID,
		MemberID:     l.MemberID,
		WorkspaceID:  l.WorkspaceID,
		AccessMethod: l.AccessMethod,
		Granted:      l.Granted,
		DenialReason: l.DenialReason,
		EntryTime:    l.EntryTime,
		ExitTime:     l.ExitTime,
	}
}

func toMetricResponse(m *repository.InfrastructureMetric) models.MetricResponse {
	return models.MetricResponse{
		ID:             m.ID,
		MetricType:     m.MetricType,
		PowerSource:    m.PowerSource,
		PowerStatus:    m.PowerStatus,
		BatteryLevel:   m.BatteryLevel,
		InternetStatus: m.InternetStatus,
		DownloadMbps:   m.DownloadMbps,
		UploadMbps:     m.UploadMbps,
		LatencyMs:      m.LatencyMs,
		TemperatureC:   m.TemperatureC,
		HumidityPct:    m.HumidityPct,
		RecordedAt:     m.RecordedAt,
	}
}

// parseTimeRange reads optional RFC3339 "from"/"to" query params. A negative
// span defaults to a window ending now, a positive one to a window starting now.
func parseTimeRange(c *gin.Context, span time.Duration) (time.Time, time.Time, error) {
	now := time.Now()
	var from, to time.Time
	var err error

	if v := c.Query("from"); v != "" {
		from, err = time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid 'from' timestamp: %w", err)
		}
	} else if span < 0 {
		from = now.Add(span)
	} else {
		from = now
	}

	if v := c.Query("to"); v != "" {
		to, err = time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid 'to' timestamp: %w", err)
		}
	} else if span < 0 {
		to = now
	} else {
		to = from.Add(span)
	}

	if !from.Before(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("'from' must be before 'to'")
	}
	return from, to, nil
}

func safeStringSlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
