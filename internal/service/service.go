package service

import (
	"errors"

	"github.com/sourcehub/hub-backend/internal/alert"
	"github.com/sourcehub/hub-backend/internal/config"
	"github.com/sourcehub/hub-backend/internal/db"
	"github.com/sourcehub/hub-backend/internal/events"
	"github.com/sourcehub/hub-backend/internal/gateway"
	"github.com/sourcehub/hub-backend/internal/repository"
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrMemberExists        = errors.New("member already exists")
	ErrMemberNotFound      = errors.New("member not found")
	ErrInvalidToken        = errors.New("invalid token")
	ErrNotFound            = errors.New("resource not found")
	ErrConflict            = errors.New("workspace is already booked for this time")
	ErrInvalidInput        = errors.New("invalid input")
	ErrMembershipInactive  = errors.New("membership is not active")
	ErrMembershipExpired   = errors.New("membership has expired")
	ErrWorkspaceUnbookable = errors.New("workspace is not available for booking")
	ErrTrialAlreadyUsed    = errors.New("trial bookings are only available for first-time users")
	ErrBookingNotPayable   = errors.New("booking is not awaiting payment")
	ErrNotRefundable       = errors.New("only completed payments can be refunded")
	ErrRefundTooLarge      = errors.New("refund amount cannot exceed original payment amount")
	ErrNotCheckInWindow    = errors.New("check-in is only allowed during the booking window")
	ErrPaymentRequired     = errors.New("booking must be paid before check-in")
	ErrInvalidTransition   = errors.New("booking state does not allow this operation")
	ErrPaymentFailed       = errors.New("payment could not be processed")
	ErrScholarshipGranted  = errors.New("scholarship already granted")
	ErrTierDowngrade       = errors.New("membership tier can only be upgraded")
)

// ============================================
// Services Container
// ============================================

type Services struct {
	Auth           AuthService
	Membership     MembershipService
	Workspace      WorkspaceService
	Booking        BookingService
	Payment        PaymentService
	Access         AccessService
	Infrastructure InfrastructureService
}

// ServiceDeps contains all dependencies needed to create services
type ServiceDeps struct {
	Config    *config.Config
	Repos     *repository.Repositories
	Gateway   gateway.Gateway
	Alerts    *alert.Engine
	Redis     *db.RedisDB
	Publisher *events.Publisher
}

func NewServices(deps *ServiceDeps) *Services {
	paymentService := NewPaymentService(
		deps.Config,
		deps.Repos.PaymentRepo,
		deps.Repos.BookingRepo,
		deps.Repos.MemberRepo,
		deps.Gateway,
		deps.Publisher,
	)

	return &Services{
		Auth:       NewAuthService(deps.Config, deps.Repos.MemberRepo),
		Membership: NewMembershipService(deps.Repos.MemberRepo),
		Workspace:  NewWorkspaceService(deps.Repos.WorkspaceRepo, deps.Repos.BookingRepo),
		Booking: NewBookingService(
			deps.Repos.BookingRepo,
			deps.Repos.MemberRepo,
			deps.Repos.WorkspaceRepo,
			paymentService,
			deps.Publisher,
		),
		Payment: paymentService,
		Access: NewAccessService(
			deps.Repos.MemberRepo,
			deps.Repos.WorkspaceRepo,
			deps.Repos.BookingRepo,
			deps.Repos.AccessLogRepo,
		),
		Infrastructure: NewInfrastructureService(
			deps.Repos.MetricRepo,
			deps.Alerts,
			deps.Redis,
			deps.Publisher,
		),
	}
}
