// internal/repository/repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// ErrOverlap is returned when a booking insert collides with an existing
// confirmed or checked-in booking for the same workspace.
var ErrOverlap = errors.New("booking overlaps an existing reservation")

// ============================================
// Models / Entities
// ============================================

type Member struct {
	ID                string
	Email             string
	PasswordHash      string
	Name              string
	Phone             *string
	MembershipTier    string
	MembershipStatus  string
	JoinDate          time.Time
	ExpiryDate        *time.Time
	AccessCardID      string
	Scholarship       bool
	TrialUsed         bool
	StorageUnitNumber *string
	Bio               *string
	Skills            []string
	Interests         []string
	PortfolioURL      *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type Workspace struct {
	ID                string
	Name              string
	Type              string
	Floor             int
	Capacity          int
	HourlyRate        decimal.Decimal
	DailyRate         decimal.Decimal
	MonthlyRate       decimal.Decimal
	Amenities         []string
	Equipment         []string
	IsAvailable       bool
	MaintenanceStatus string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type Booking struct {
	ID            string
	MemberID      string
	WorkspaceID   string
	BookingType   string
	StartTime     time.Time
	EndTime       time.Time
	Status        string
	TotalPrice    decimal.Decimal
	PaymentStatus string
	PaymentID     *string
	IsTrial       bool
	CheckedInAt   *time.Time
	CheckedOutAt  *time.Time
	CancelledAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Payment struct {
	ID             string
	MemberID       string
	BookingID      *string
	Amount         decimal.Decimal
	Currency       string
	PaymentType    string
	PaymentMethod  string
	Status         string
	TransactionID  *string
	FailureReason  *string
	RefundedAmount *decimal.Decimal
	PaidAt         *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type AccessLog struct {
	ID           string
	MemberID     *string
	WorkspaceID  *string
	AccessMethod string
	Granted      bool
	DenialReason *string
	EntryTime    time.Time
	ExitTime     *time.Time
	CreatedAt    time.Time
}

// AccessStats aggregates a period of access logs.
type AccessStats struct {
	TotalEntries  int
	Granted       int
	Denied        int
	UniqueMembers int
	PeakHour      int
}

type InfrastructureMetric struct {
	ID             string     `db:"id"`
	MetricType     string     `db:"metric_type"`
	PowerSource    *string    `db:"power_source"`
	PowerStatus    *string    `db:"power_status"`
	BatteryLevel   *float64   `db:"battery_level"`
	InternetStatus *string    `db:"internet_status"`
	DownloadMbps   *float64   `db:"download_mbps"`
	UploadMbps     *float64   `db:"upload_mbps"`
	LatencyMs      *float64   `db:"latency_ms"`
	TemperatureC   *float64   `db:"temperature_c"`
	HumidityPct    *float64   `db:"humidity_pct"`
	RecordedAt     time.Time  `db:"recorded_at"`
}

// ============================================
// Repository Interfaces
// ============================================

type MemberRepository interface {
	Create(ctx context.Context, member *Member) error
	FindByID(ctx context.Context, id string) (*Member, error)
	FindByEmail(ctx context.Context, email string) (*Member, error)
	FindByAccessCard(ctx context.Context, cardID string) (*Member, error)
	FindAll(ctx context.Context, status string) ([]*Member, error)
	Update(ctx context.Context, member *Member) error
	ExpireOverdue(ctx context.Context, now time.Time) (int, error)
	Delete(ctx context.Context, id string) error
}

type WorkspaceRepository interface {
	Create(ctx context.Context, workspace *Workspace) error
	FindByID(ctx context.Context, id string) (*Workspace, error)
	FindAll(ctx context.Context, workspaceType string) ([]*Workspace, error)
	Update(ctx context.Context, workspace *Workspace) error
	Delete(ctx context.Context, id string) error
}

type BookingRepository interface {
	// Create inserts the booking, failing with ErrOverlap if a live booking
	// already occupies any part of [StartTime, EndTime) for the workspace.
	Create(ctx context.Context, booking *Booking) error
	FindByID(ctx context.Context, id string) (*Booking, error)
	FindByMemberID(ctx context.Context, memberID string) ([]*Booking, error)
	FindByWorkspaceID(ctx context.Context, workspaceID string, from, to time.Time) ([]*Booking, error)
	FindOverlapping(ctx context.Context, workspaceID string, start, end time.Time, excludeID string) ([]*Booking, error)
	FindActiveForMember(ctx context.Context, memberID, workspaceID string, at time.Time) (*Booking, error)
	FindNoShowCandidates(ctx context.Context, startedBefore time.Time) ([]*Booking, error)
	Update(ctx context.Context, booking *Booking) error
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	FindByID(ctx context.Context, id string) (*Payment, error)
	FindByMemberID(ctx context.Context, memberID string) ([]*Payment, error)
	FindByBookingID(ctx context.Context, bookingID string) ([]*Payment, error)
	FindByTransactionID(ctx context.Context, transactionID string) (*Payment, error)
	Update(ctx context.Context, payment *Payment) error
	RevenueBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	RevenueByType(ctx context.Context, from, to time.Time) (map[string]decimal.Decimal, error)
}

type AccessLogRepository interface {
	Create(ctx context.Context, log *AccessLog) error
	FindByID(ctx context.Context, id string) (*AccessLog, error)
	FindByMemberID(ctx context.Context, memberID string, limit int) ([]*AccessLog, error)
	FindOpenByMember(ctx context.Context, memberID string) (*AccessLog, error)
	FindOpenByWorkspace(ctx context.Context, workspaceID string) ([]*AccessLog, error)
	FindOpen(ctx context.Context) ([]*AccessLog, error)
	Update(ctx context.Context, log *AccessLog) error
	Stats(ctx context.Context, from, to time.Time) (*AccessStats, error)
}

type MetricRepository interface {
	Insert(ctx context.Context, metric *InfrastructureMetric) error
	FindLatest(ctx context.Context, metricType string) (*InfrastructureMetric, error)
	FindRange(ctx context.Context, metricType string, from, to time.Time) ([]*InfrastructureMetric, error)
	UptimePercent(ctx context.Context, metricType string, from, to time.Time) (float64, error)
	CountFailovers(ctx context.Context, from, to time.Time) (int, error)
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

// ============================================
// Repositories Container
// ============================================

type Repositories struct {
	MemberRepo    MemberRepository
	WorkspaceRepo WorkspaceRepository
	BookingRepo   BookingRepository
	PaymentRepo   PaymentRepository
	AccessLogRepo AccessLogRepository
	MetricRepo    MetricRepository
}

// NewRepositories creates in-memory repositories (for testing/fallback)
func NewRepositories() *Repositories {
	return &Repositories{
		MemberRepo:    newInMemoryMemberRepository(),
		WorkspaceRepo: newInMemoryWorkspaceRepository(),
		BookingRepo:   newInMemoryBookingRepository(),
		PaymentRepo:   newInMemoryPaymentRepository(),
		AccessLogRepo: newInMemoryAccessLogRepository(),
		MetricRepo:    newInMemoryMetricRepository(),
	}
}

// NewPgRepositories creates PostgreSQL-backed repositories. Metrics go
// through sqlx since their queries are column-mapped reporting reads.
func NewPgRepositories(pool *pgxpool.Pool, metricsDB *sqlx.DB) *Repositories {
	return &Repositories{
		MemberRepo:    &pgMemberRepository{pool: pool},
		WorkspaceRepo: &pgWorkspaceRepository{pool: pool},
		BookingRepo:   &pgBookingRepository{pool: pool},
		PaymentRepo:   &pgPaymentRepository{pool: pool},
		AccessLogRepo: &pgAccessLogRepository{pool: pool},
		MetricRepo:    &sqlxMetricRepository{db: metricsDB},
	}
}
