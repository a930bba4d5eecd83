package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sourcehub/hub-backend/internal/events"
	"github.com/sourcehub/hub-backend/internal/repository"
	"github.com/sourcehub/hub-backend/internal/types"
)

const (
	trialDuration         = 4 * time.Hour
	freeCancellationLead  = 24 * time.Hour
	noShowGracePeriod     = 15 * time.Minute
	scholarshipDiscount   = 0.30
	hoursPerBillableMonth = 720
)

// ============================================
// Booking Service
// ============================================

type CreateBookingInput struct {
	MemberID    string
	WorkspaceID string
	BookingType string
	StartTime   time.Time
	EndTime     time.Time
}

type CancelResult struct {
	Booking *repository.Booking
	Refund  decimal.Decimal
}

// Availability reports whether a slot is free and which live bookings
// collide with it.
type Availability struct {
	Available bool
	Conflicts []*repository.Booking
}

// PriceQuote breaks a booking price into its parts.
type PriceQuote struct {
	BasePrice          decimal.Decimal
	Discount           decimal.Decimal
	TotalAmount        decimal.Decimal
	ScholarshipApplied bool
}

type BookingService interface {
	CheckAvailability(ctx context.Context, workspaceID string, start, end time.Time, excludeBookingID string) (*Availability, error)
	CalculatePrice(ctx context.Context, workspaceID, memberID, bookingType string, start, end time.Time) (*PriceQuote, error)
	Create(ctx context.Context, input CreateBookingInput) (*repository.Booking, error)
	CreateTrial(ctx context.Context, memberID, workspaceID string, start time.Time) (*repository.Booking, error)
	CheckIn(ctx context.Context, bookingID string) (*repository.Booking, error)
	CheckOut(ctx context.Context, bookingID string) (*repository.Booking, error)
	Cancel(ctx context.Context, bookingID string) (*CancelResult, error)
	UpdatePaymentStatus(ctx context.Context, bookingID, paymentStatus string, paymentID *string) (*repository.Booking, error)
	GetActiveBooking(ctx context.Context, workspaceID string) (*repository.Booking, error)
	GetByID(ctx context.Context, id string) (*repository.Booking, error)
	ListByMember(ctx context.Context, memberID string) ([]*repository.Booking, error)
	MarkNoShows(ctx context.Context) (int, error)
}

type bookingService struct {
	bookingRepo   repository.BookingRepository
	memberRepo    repository.MemberRepository
	workspaceRepo repository.WorkspaceRepository
	payments      PaymentService
	publisher     *events.Publisher

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	memberRepo repository.MemberRepository,
	workspaceRepo repository.WorkspaceRepository,
	payments PaymentService,
	publisher *events.Publisher,
) BookingService {
	return &bookingService{
		bookingRepo:   bookingRepo,
		memberRepo:    memberRepo,
		workspaceRepo: workspaceRepo,
		payments:      payments,
		publisher:     publisher,
		locks:         make(map[string]*sync.Mutex),
	}
}

// workspaceLock serializes booking creation per workspace so two requests
// for the same slot cannot both pass the availability check.
func (s *bookingService) workspaceLock(workspaceID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[workspaceID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[workspaceID] = lock
	}
	return lock
}

func (s *bookingService) CheckAvailability(ctx context.Context, workspaceID string, start, end time.Time, excludeBookingID string) (*Availability, error) {
	if !start.Before(end) {
		return nil, ErrInvalidInput
	}
	workspace, err := s.workspaceRepo.FindByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if workspace == nil {
		return nil, ErrNotFound
	}
	if !workspaceBookable(workspace) {
		return &Availability{Available: false}, nil
	}

	conflicts, err := s.bookingRepo.FindOverlapping(ctx, workspaceID, start, end, excludeBookingID)
	if err != nil {
		return nil, err
	}
	return &Availability{Available: len(conflicts) == 0, Conflicts: conflicts}, nil
}

func (s *bookingService) CalculatePrice(ctx context.Context, workspaceID, memberID, bookingType string, start, end time.Time) (*PriceQuote, error) {
	workspace, err := s.workspaceRepo.FindByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if workspace == nil {
		return nil, ErrNotFound
	}

	member, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}

	return computePrice(workspace, bookingType, start, end, member.Scholarship)
}

// computePrice bills hourly by exact duration, daily and monthly by
// rounded-up units. Scholarship members get a 30% discount.
func computePrice(workspace *repository.Workspace, bookingType string, start, end time.Time, scholarship bool) (*PriceQuote, error) {
	if !start.Before(end) {
		return nil, ErrInvalidInput
	}
	hours := end.Sub(start).Hours()

	var base decimal.Decimal
	switch bookingType {
	case types.BookingHourly:
		base = workspace.HourlyRate.Mul(decimal.NewFromFloat(hours))
	case types.BookingDaily:
		days := math.Ceil(hours / 24)
		base = workspace.DailyRate.Mul(decimal.NewFromFloat(days))
	case types.BookingMonthly:
		months := math.Ceil(hours / hoursPerBillableMonth)
		base = workspace.MonthlyRate.Mul(decimal.NewFromFloat(months))
	default:
		return nil, ErrInvalidInput
	}
	base = base.Round(2)

	discount := decimal.Zero
	if scholarship {
		discount = base.Mul(decimal.NewFromFloat(scholarshipDiscount)).Round(2)
	}

	return &PriceQuote{
		BasePrice:          base,
		Discount:           discount,
		TotalAmount:        base.Sub(discount),
		ScholarshipApplied: scholarship,
	}, nil
}

func (s *bookingService) Create(ctx context.Context, input CreateBookingInput) (*repository.Booking, error) {
	member, workspace, err := s.validateBookingRequest(ctx, input.MemberID, input.WorkspaceID, input.StartTime, input.EndTime)
	if err != nil {
		return nil, err
	}

	quote, err := computePrice(workspace, input.BookingType, input.StartTime, input.EndTime, member.Scholarship)
	if err != nil {
		return nil, err
	}

	lock := s.workspaceLock(input.WorkspaceID)
	lock.Lock()
	defer lock.Unlock()

	overlapping, err := s.bookingRepo.FindOverlapping(ctx, input.WorkspaceID, input.StartTime, input.EndTime, "")
	if err != nil {
		return nil, err
	}
	if len(overlapping) > 0 {
		return nil, ErrConflict
	}

	booking := &repository.Booking{
		MemberID:      input.MemberID,
		WorkspaceID:   input.WorkspaceID,
		BookingType:   input.BookingType,
		StartTime:     input.StartTime,
		EndTime:       input.EndTime,
		Status:        types.BookingConfirmed,
		TotalPrice:    quote.TotalAmount,
		PaymentStatus: types.PaymentPending,
	}
	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		if errors.Is(err, repository.ErrOverlap) {
			return nil, ErrConflict
		}
		return nil, err
	}

	s.publisher.Publish(ctx, events.BookingCreated, map[string]interface{}{
		"bookingId":   booking.ID,
		"memberId":    booking.MemberID,
		"workspaceId": booking.WorkspaceID,
		"startTime":   booking.StartTime,
		"endTime":     booking.EndTime,
		"totalPrice":  booking.TotalPrice,
	})
	return booking, nil
}

// CreateTrial books a complimentary four-hour slot for first-time users.
// Any earlier booking, whatever its state, disqualifies the member.
func (s *bookingService) CreateTrial(ctx context.Context, memberID, workspaceID string, start time.Time) (*repository.Booking, error) {
	end := start.Add(trialDuration)
	member, _, err := s.validateBookingRequest(ctx, memberID, workspaceID, start, end)
	if err != nil {
		return nil, err
	}

	previous, err := s.bookingRepo.FindByMemberID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if len(previous) > 0 {
		return nil, ErrTrialAlreadyUsed
	}

	lock := s.workspaceLock(workspaceID)
	lock.Lock()
	defer lock.Unlock()

	overlapping, err := s.bookingRepo.FindOverlapping(ctx, workspaceID, start, end, "")
	if err != nil {
		return nil, err
	}
	if len(overlapping) > 0 {
		return nil, ErrConflict
	}

	booking := &repository.Booking{
		MemberID:      memberID,
		WorkspaceID:   workspaceID,
		BookingType:   types.BookingHourly,
		StartTime:     start,
		EndTime:       end,
		Status:        types.BookingConfirmed,
		TotalPrice:    decimal.Zero,
		PaymentStatus: types.PaymentPaid,
		IsTrial:       true,
	}
	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		if errors.Is(err, repository.ErrOverlap) {
			return nil, ErrConflict
		}
		return nil, err
	}

	member.TrialUsed = true
	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) CheckIn(ctx context.Context, bookingID string) (*repository.Booking, error) {
	booking, err := s.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != types.BookingConfirmed {
		return nil, ErrInvalidTransition
	}
	if booking.PaymentStatus != types.PaymentPaid {
		return nil, ErrPaymentRequired
	}
	now := time.Now()
	if now.Before(booking.StartTime) || now.After(booking.EndTime) {
		return nil, ErrNotCheckInWindow
	}

	booking.Status = types.BookingCheckedIn
	booking.CheckedInAt = &now
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// CheckOut completes a booking. Completing an already-completed booking
// returns it unchanged.
func (s *bookingService) CheckOut(ctx context.Context, bookingID string) (*repository.Booking, error) {
	booking, err := s.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status == types.BookingCompleted {
		return booking, nil
	}
	if booking.Status != types.BookingCheckedIn && booking.Status != types.BookingConfirmed {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	booking.Status = types.BookingCompleted
	booking.CheckedOutAt = &now
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// Cancel releases the slot. Cancelling more than 24 hours before the start
// refunds the full price; later cancellations refund nothing.
func (s *bookingService) Cancel(ctx context.Context, bookingID string) (*CancelResult, error) {
	booking, err := s.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != types.BookingConfirmed && booking.Status != types.BookingCheckedIn {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	refund := decimal.Zero
	if booking.StartTime.Sub(now) > freeCancellationLead {
		refund = booking.TotalPrice
	}

	booking.Status = types.BookingCancelled
	booking.CancelledAt = &now

	// Any positive refund flips the payment status. The gateway is only
	// involved when money actually moved.
	if refund.IsPositive() {
		if booking.PaymentStatus == types.PaymentPaid {
			if err := s.payments.RefundBooking(ctx, booking, refund); err != nil {
				return nil, err
			}
		}
		booking.PaymentStatus = types.PaymentRefunded
	}

	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, events.BookingCancelled, map[string]interface{}{
		"bookingId": booking.ID,
		"memberId":  booking.MemberID,
		"refund":    refund,
	})
	return &CancelResult{Booking: booking, Refund: refund}, nil
}

// UpdatePaymentStatus is the reconciliation hook the payment flow uses to
// stamp a booking with its payment outcome and payment record.
func (s *bookingService) UpdatePaymentStatus(ctx context.Context, bookingID, paymentStatus string, paymentID *string) (*repository.Booking, error) {
	if !types.IsValid(paymentStatus, types.ValidBookingPaymentStatuses) {
		return nil, ErrInvalidInput
	}
	booking, err := s.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	booking.PaymentStatus = paymentStatus
	if paymentID != nil {
		booking.PaymentID = paymentID
	}
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// GetActiveBooking returns the live booking occupying the workspace right
// now, or nil when the slot is free.
func (s *bookingService) GetActiveBooking(ctx context.Context, workspaceID string) (*repository.Booking, error) {
	now := time.Now()
	bookings, err := s.bookingRepo.FindOverlapping(ctx, workspaceID, now, now, "")
	if err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return nil, nil
	}
	return bookings[0], nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*repository.Booking, error) {
	booking, err := s.bookingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrNotFound
	}
	return booking, nil
}

func (s *bookingService) ListByMember(ctx context.Context, memberID string) ([]*repository.Booking, error) {
	return s.bookingRepo.FindByMemberID(ctx, memberID)
}

// MarkNoShows flags confirmed bookings whose start passed the grace period
// without a check-in. Run periodically.
func (s *bookingService) MarkNoShows(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-noShowGracePeriod)
	candidates, err := s.bookingRepo.FindNoShowCandidates(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, booking := range candidates {
		booking.Status = types.BookingNoShow
		if err := s.bookingRepo.Update(ctx, booking); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func (s *bookingService) validateBookingRequest(ctx context.Context, memberID, workspaceID string, start, end time.Time) (*repository.Member, *repository.Workspace, error) {
	if !start.Before(end) || start.Before(time.Now()) {
		return nil, nil, ErrInvalidInput
	}

	member, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		return nil, nil, err
	}
	if member == nil {
		return nil, nil, ErrMemberNotFound
	}
	if member.MembershipStatus != types.MembershipActive {
		return nil, nil, ErrMembershipInactive
	}
	if member.ExpiryDate != nil && member.ExpiryDate.Before(time.Now()) {
		return nil, nil, ErrMembershipExpired
	}

	workspace, err := s.workspaceRepo.FindByID(ctx, workspaceID)
	if err != nil {
		return nil, nil, err
	}
	if workspace == nil {
		return nil, nil, ErrNotFound
	}
	if !workspaceBookable(workspace) {
		return nil, nil, ErrWorkspaceUnbookable
	}

	return member, workspace, nil
}

// A workspace takes bookings only while its availability flag is on and it
// is not under maintenance.
func workspaceBookable(w *repository.Workspace) bool {
	return w.IsAvailable && w.MaintenanceStatus == types.MaintenanceOperational
}
