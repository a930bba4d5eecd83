// internal/models/models.go
package models

import "time"

// ============================================
// Request Models
// ============================================

type RegisterRequest struct {
	Email        string   `json:"email" binding:"required,email"`
	Password     string   `json:"password" binding:"required,min=8"`
	Name         string   `json:"name" binding:"required"`
	Phone        *string  `json:"phone"`
	Tier         string   `json:"tier"`
	Scholarship  bool     `json:"scholarship"`
	Bio          *string  `json:"bio"`
	Skills       []string `json:"skills"`
	Interests    []string `json:"interests"`
	PortfolioURL *string  `json:"portfolioUrl"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type UpdateProfileRequest struct {
	Name              *string  `json:"name"`
	Phone             *string  `json:"phone"`
	Bio               *string  `json:"bio"`
	Skills            []string `json:"skills"`
	Interests         []string `json:"interests"`
	PortfolioURL      *string  `json:"portfolioUrl"`
	StorageUnitNumber *string  `json:"storageUnitNumber"`
}

type CreateWorkspaceRequest struct {
	Name        string   `json:"name" binding:"required"`
	Type        string   `json:"type" binding:"required"`
	Floor       int      `json:"floor"`
	Capacity    int      `json:"capacity"`
	HourlyRate  float64  `json:"hourlyRate" binding:"gte=0"`
	DailyRate   float64  `json:"dailyRate" binding:"gte=0"`
	MonthlyRate float64  `json:"monthlyRate" binding:"gte=0"`
	Amenities   []string `json:"amenities"`
	Equipment   []string `json:"equipment"`
	IsAvailable *bool    `json:"isAvailable"`
}

type UpdateWorkspaceRequest struct {
	Name        *string  `json:"name"`
	Floor       *int     `json:"floor"`
	Capacity    *int     `json:"capacity"`
	HourlyRate  *float64 `json:"hourlyRate"`
	DailyRate   *float64 `json:"dailyRate"`
	MonthlyRate *float64 `json:"monthlyRate"`
	Amenities   []string `json:"amenities"`
	Equipment   []string `json:"equipment"`
	IsAvailable *bool    `json:"isAvailable"`
}

type MaintenanceStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type CreateBookingRequest struct {
	WorkspaceID string    `json:"workspaceId" binding:"required"`
	BookingType string    `json:"bookingType" binding:"required,oneof=hourly daily monthly"`
	StartTime   time.Time `json:"startTime" binding:"required"`
	EndTime     time.Time `json:"endTime" binding:"required"`
}

type TrialBookingRequest struct {
	WorkspaceID string    `json:"workspaceId" binding:"required"`
	StartTime   time.Time `json:"startTime" binding:"required"`
}

type QuoteRequest struct {
	WorkspaceID string    `json:"workspaceId" binding:"required"`
	BookingType string    `json:"bookingType" binding:"required,oneof=hourly daily monthly"`
	StartTime   time.Time `json:"startTime" binding:"required"`
	EndTime     time.Time `json:"endTime" binding:"required"`
}

type PayBookingRequest struct {
	Method string `json:"method" binding:"required"`
}

type RefundRequest struct {
	Amount *float64 `json:"amount" binding:"omitempty,gt=0"`
}

type UpdateBookingPaymentRequest struct {
	PaymentStatus string  `json:"paymentStatus" binding:"required,oneof=pending paid refunded"`
	PaymentID     *string `json:"paymentId"`
}

type MembershipPaymentRequest struct {
	Tier   string `json:"tier" binding:"required,oneof=basic pro enterprise"`
	Method string `json:"method" binding:"required"`
}

// PaymentWebhookRequest mirrors the gateway's event envelope.
type PaymentWebhookRequest struct {
	Key  string `json:"key"`
	Data struct {
		ID     string `json:"id" binding:"required"`
		Status string `json:"status" binding:"required"`
	} `json:"data" binding:"required"`
}

type VerifyAccessRequest struct {
	Identifier   string `json:"identifier" binding:"required"`
	AccessMethod string `json:"accessMethod" binding:"required"`
	WorkspaceID  string `json:"workspaceId"`
}

type RecordMetricRequest struct {
	MetricType     string   `json:"metricType" binding:"required,oneof=power internet environmental"`
	PowerSource    *string  `json:"powerSource"`
	PowerStatus    *string  `json:"powerStatus"`
	BatteryLevel   *float64 `json:"batteryLevel"`
	InternetStatus *string  `json:"internetStatus"`
	DownloadMbps   *float64 `json:"downloadMbps"`
	UploadMbps     *float64 `json:"uploadMbps"`
	LatencyMs      *float64 `json:"latencyMs"`
	TemperatureC   *float64 `json:"temperatureC"`
	HumidityPct    *float64 `json:"humidityPct"`
}

// ============================================
// Response Models
// ============================================

type MemberResponse struct {
	ID                string     `json:"id"`
	Email             string     `json:"email"`
	Name              string     `json:"name"`
	Phone             *string    `json:"phone,omitempty"`
	MembershipTier    string     `json:"membershipTier"`
	MembershipStatus  string     `json:"membershipStatus"`
	JoinDate          time.Time  `json:"joinDate"`
	ExpiryDate        *time.Time `json:"expiryDate,omitempty"`
	AccessCardID      string     `json:"accessCardId"`
	Scholarship       bool       `json:"scholarship"`
	TrialUsed         bool       `json:"trialUsed"`
	StorageUnitNumber *string    `json:"storageUnitNumber,omitempty"`
	Bio               *string    `json:"bio,omitempty"`
	Skills            []string   `json:"skills"`
	Interests         []string   `json:"interests"`
	PortfolioURL      *string    `json:"portfolioUrl,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

type AuthResponse struct {
	Member       MemberResponse `json:"member"`
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
}

type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type WorkspaceResponse struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Type              string    `json:"type"`
	Floor             int       `json:"floor"`
	Capacity          int       `json:"capacity"`
	HourlyRate        float64   `json:"hourlyRate"`
	DailyRate         float64   `json:"dailyRate"`
	MonthlyRate       float64   `json:"monthlyRate"`
	Amenities         []string  `json:"amenities"`
	Equipment         []string  `json:"equipment"`
	IsAvailable       bool      `json:"isAvailable"`
	MaintenanceStatus string    `json:"maintenanceStatus"`
	CreatedAt         time.Time `json:"createdAt"`
}

type BookingResponse struct {
	ID            string     `json:"id"`
	MemberID      string     `json:"memberId"`
	WorkspaceID   string     `json:"workspaceId"`
	BookingType   string     `json:"bookingType"`
	StartTime     time.Time  `json:"startTime"`
	EndTime       time.Time  `json:"endTime"`
	Status        string     `json:"status"`
	TotalPrice    float64    `json:"totalPrice"`
	PaymentStatus string     `json:"paymentStatus"`
	PaymentID     *string    `json:"paymentId,omitempty"`
	IsTrial       bool       `json:"isTrial"`
	CheckedInAt   *time.Time `json:"checkedInAt,omitempty"`
	CheckedOutAt  *time.Time `json:"checkedOutAt,omitempty"`
	CancelledAt   *time.Time `json:"cancelledAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

type CancelBookingResponse struct {
	Booking BookingResponse `json:"booking"`
	Refund  float64         `json:"refund"`
}

type AvailabilityResponse struct {
	WorkspaceID string            `json:"workspaceId"`
	Available   bool              `json:"available"`
	Conflicts   []BookingResponse `json:"conflicts"`
}

type QuoteResponse struct {
	WorkspaceID        string  `json:"workspaceId"`
	BookingType        string  `json:"bookingType"`
	BasePrice          float64 `json:"basePrice"`
	Discount           float64 `json:"discount"`
	TotalAmount        float64 `json:"totalAmount"`
	ScholarshipApplied bool    `json:"scholarshipApplied"`
}

type PaymentResponse struct {
	ID             string     `json:"id"`
	MemberID       string     `json:"memberId"`
	BookingID      *string    `json:"bookingId,omitempty"`
	Amount         float64    `json:"amount"`
	Currency       string     `json:"currency"`
	PaymentType    string     `json:"paymentType"`
	PaymentMethod  string     `json:"paymentMethod"`
	Status         string     `json:"status"`
	TransactionID  *string    `json:"transactionId,omitempty"`
	FailureReason  *string    `json:"failureReason,omitempty"`
	RefundedAmount *float64   `json:"refundedAmount,omitempty"`
	PaidAt         *time.Time `json:"paidAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

type InvoiceResponse struct {
	InvoiceNumber string    `json:"invoiceNumber"`
	IssuedAt      time.Time `json:"issuedAt"`
	MemberName    string    `json:"memberName"`
	MemberEmail   string    `json:"memberEmail"`
	Description   string    `json:"description"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	TransactionID *string   `json:"transactionId,omitempty"`
}

type RevenueResponse struct {
	From   time.Time          `json:"from"`
	To     time.Time          `json:"to"`
	Total  float64            `json:"total"`
	ByType map[string]float64 `json:"byType"`
}

type AccessLogResponse struct {
	ID           string     `json:"id"`
	MemberID     *string    `json:"memberId,omitempty"`
	WorkspaceID  *string    `json:"workspaceId,omitempty"`
	AccessMethod string     `json:"accessMethod"`
	Granted      bool       `json:"granted"`
	DenialReason *string    `json:"denialReason,omitempty"`
	EntryTime    time.Time  `json:"entryTime"`
	ExitTime     *time.Time `json:"exitTime,omitempty"`
}

type AccessResultResponse struct {
	Granted bool              `json:"granted"`
	Reason  string            `json:"reason"`
	Member  *MemberResponse   `json:"member,omitempty"`
	Log     AccessLogResponse `json:"log"`
}

type OccupantResponse struct {
	Member MemberResponse    `json:"member"`
	Log    AccessLogResponse `json:"log"`
}

type AccessStatsResponse struct {
	TotalEntries  int `json:"totalEntries"`
	Granted       int `json:"granted"`
	Denied        int `json:"denied"`
	UniqueMembers int `json:"uniqueMembers"`
	PeakHour      int `json:"peakHour"`
}

type MetricResponse struct {
	ID             string    `json:"id"`
	MetricType     string    `json:"metricType"`
	PowerSource    *string   `json:"powerSource,omitempty"`
	PowerStatus    *string   `json:"powerStatus,omitempty"`
	BatteryLevel   *float64  `json:"batteryLevel,omitempty"`
	InternetStatus *string   `json:"internetStatus,omitempty"`
	DownloadMbps   *float64  `json:"downloadMbps,omitempty"`
	UploadMbps     *float64  `json:"uploadMbps,omitempty"`
	LatencyMs      *float64  `json:"latencyMs,omitempty"`
	TemperatureC   *float64  `json:"temperatureC,omitempty"`
	HumidityPct    *float64  `json:"humidityPct,omitempty"`
	RecordedAt     time.Time `json:"recordedAt"`
}

type UptimeResponse struct {
	MetricType    string  `json:"metricType"`
	From          string  `json:"from"`
	To            string  `json:"to"`
	UptimePercent float64 `json:"uptimePercent"`
}

type FailoverResponse struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Failovers int    `json:"failovers"`
}
