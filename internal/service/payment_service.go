package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sourcehub/hub-backend/internal/config"
	"github.com/sourcehub/hub-backend/internal/events"
	"github.com/sourcehub/hub-backend/internal/gateway"
	"github.com/sourcehub/hub-backend/internal/repository"
	"github.com/sourcehub/hub-backend/internal/types"
)

const maxChargeAttempts = 3

// ============================================
// Payment Service
// ============================================

type Invoice struct {
	InvoiceNumber string
	IssuedAt      time.Time
	MemberName    string
	MemberEmail   string
	Description   string
	Amount        decimal.Decimal
	Currency      string
	Status        string
	TransactionID *string
}

type RevenueReport struct {
	From   time.Time
	To     time.Time
	Total  decimal.Decimal
	ByType map[string]decimal.Decimal
}

type PaymentService interface {
	ProcessBookingPayment(ctx context.Context, bookingID, method string) (*repository.Payment, error)
	ProcessMembershipPayment(ctx context.Context, memberID, tier, method string) (*repository.Payment, error)
	RetryPayment(ctx context.Context, paymentID string) (*repository.Payment, error)
	ProcessRefund(ctx context.Context, paymentID string, amount *decimal.Decimal) (*repository.Payment, error)
	RefundBooking(ctx context.Context, booking *repository.Booking, amount decimal.Decimal) error
	HandleWebhook(ctx context.Context, transactionID, status string) error
	GetByID(ctx context.Context, id string) (*repository.Payment, error)
	ListByMember(ctx context.Context, memberID string) ([]*repository.Payment, error)
	Revenue(ctx context.Context, from, to time.Time) (*RevenueReport, error)
	Invoice(ctx context.Context, paymentID string) (*Invoice, error)
}

type paymentService struct {
	cfg          *config.Config
	paymentRepo  repository.PaymentRepository
	bookingRepo  repository.BookingRepository
	memberRepo   repository.MemberRepository
	gw           gateway.Gateway
	publisher    *events.Publisher
	retryBackoff time.Duration
}

func NewPaymentService(
	cfg *config.Config,
	paymentRepo repository.PaymentRepository,
	bookingRepo repository.BookingRepository,
	memberRepo repository.MemberRepository,
	gw gateway.Gateway,
	publisher *events.Publisher,
) PaymentService {
	return &paymentService{
		cfg:          cfg,
		paymentRepo:  paymentRepo,
		bookingRepo:  bookingRepo,
		memberRepo:   memberRepo,
		gw:           gw,
		publisher:    publisher,
		retryBackoff: time.Second,
	}
}

func (s *paymentService) ProcessBookingPayment(ctx context.Context, bookingID, method string) (*repository.Payment, error) {
	if !types.IsValid(method, types.ValidPaymentMethods) {
		return nil, ErrInvalidInput
	}

	booking, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrNotFound
	}
	if booking.PaymentStatus != types.PaymentPending {
		return nil, ErrBookingNotPayable
	}

	member, err := s.memberRepo.FindByID(ctx, booking.MemberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}

	payment := &repository.Payment{
		MemberID:      booking.MemberID,
		BookingID:     &booking.ID,
		Amount:        booking.TotalPrice,
		Currency:      "USD",
		PaymentType:   types.PaymentTypeBooking,
		PaymentMethod: method,
		Status:        types.PaymentStatusPending,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	result, chargeErr := s.chargeOnce(ctx, gateway.ChargeRequest{
		Amount:    payment.Amount,
		Currency:  payment.Currency,
		Method:    method,
		Reference: payment.ID,
	})
	if chargeErr != nil {
		return s.recordFailure(ctx, payment, chargeErr)
	}

	now := time.Now()
	payment.Status = types.PaymentStatusCompleted
	payment.TransactionID = &result.TransactionID
	payment.PaidAt = &now
	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, err
	}

	booking.PaymentStatus = types.PaymentPaid
	booking.PaymentID = &payment.ID
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, events.PaymentCompleted, map[string]interface{}{
		"paymentId": payment.ID,
		"bookingId": booking.ID,
		"amount":    payment.Amount,
	})
	return payment, nil
}

// ProcessMembershipPayment charges the tier price and, on success, moves
// the member onto the tier with a renewed expiry. Renewal extends from the
// current expiry when the membership has time left, otherwise from now.
func (s *paymentService) ProcessMembershipPayment(ctx context.Context, memberID, tier, method string) (*repository.Payment, error) {
	if !types.IsValid(method, types.ValidPaymentMethods) {
		return nil, ErrInvalidInput
	}
	price := TierPrice(tier)
	if !price.IsPositive() {
		return nil, ErrInvalidInput
	}

	member, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	if TierRank(tier) < TierRank(member.MembershipTier) {
		return nil, ErrTierDowngrade
	}

	payment := &repository.Payment{
		MemberID:      memberID,
		Amount:        price,
		Currency:      "USD",
		PaymentType:   types.PaymentTypeMembership,
		PaymentMethod: method,
		Status:        types.PaymentStatusPending,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	result, chargeErr := s.chargeOnce(ctx, gateway.ChargeRequest{
		Amount:    price,
		Currency:  payment.Currency,
		Method:    method,
		Reference: payment.ID,
	})
	if chargeErr != nil {
		return s.recordFailure(ctx, payment, chargeErr)
	}

	now := time.Now()
	payment.Status = types.PaymentStatusCompleted
	payment.TransactionID = &result.TransactionID
	payment.PaidAt = &now
	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, err
	}

	base := now
	if member.ExpiryDate != nil && member.ExpiryDate.After(now) {
		base = *member.ExpiryDate
	}
	expiry := base.AddDate(0, 0, renewalPeriodDays)
	member.MembershipTier = tier
	member.MembershipStatus = types.MembershipActive
	member.ExpiryDate = &expiry
	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, err
	}

	return payment, nil
}

func (s *paymentService) RetryPayment(ctx context.Context, paymentID string) (*repository.Payment, error) {
	payment, err := s.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != types.PaymentStatusFailed {
		return nil, ErrInvalidTransition
	}

	result, chargeErr := s.chargeWithRetry(ctx, gateway.ChargeRequest{
		Amount:    payment.Amount,
		Currency:  payment.Currency,
		Method:    payment.PaymentMethod,
		Reference: payment.ID,
	})
	if chargeErr != nil {
		return s.recordFailure(ctx, payment, chargeErr)
	}

	now := time.Now()
	payment.Status = types.PaymentStatusCompleted
	payment.TransactionID = &result.TransactionID
	payment.FailureReason = nil
	payment.PaidAt = &now
	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, err
	}

	if payment.BookingID != nil {
		booking, err := s.bookingRepo.FindByID(ctx, *payment.BookingID)
		if err == nil && booking != nil && booking.PaymentStatus == types.PaymentPending {
			booking.PaymentStatus = types.PaymentPaid
			booking.PaymentID = &payment.ID
			_ = s.bookingRepo.Update(ctx, booking)
		}
	}
	return payment, nil
}

// ProcessRefund reverses a completed payment, in full by default or
// partially when an amount is given.
func (s *paymentService) ProcessRefund(ctx context.Context, paymentID string, amount *decimal.Decimal) (*repository.Payment, error) {
	payment, err := s.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != types.PaymentStatusCompleted {
		return nil, ErrNotRefundable
	}

	refund := payment.Amount
	if amount != nil {
		refund = *amount
	}
	if !refund.IsPositive() {
		return nil, ErrInvalidInput
	}
	if refund.GreaterThan(payment.Amount) {
		return nil, ErrRefundTooLarge
	}

	if err := s.refundPayment(ctx, payment, refund); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *paymentService) RefundBooking(ctx context.Context, booking *repository.Booking, amount decimal.Decimal) error {
	payments, err := s.paymentRepo.FindByBookingID(ctx, booking.ID)
	if err != nil {
		return err
	}

	var completed *repository.Payment
	for _, p := range payments {
		if p.Status == types.PaymentStatusCompleted {
			completed = p
		}
	}
	if completed == nil {
		return ErrNotFound
	}
	return s.refundPayment(ctx, completed, amount)
}

func (s *paymentService) refundPayment(ctx context.Context, payment *repository.Payment, amount decimal.Decimal) error {
	if payment.TransactionID != nil {
		gwCtx, cancel := s.gatewayContext(ctx)
		defer cancel()
		if _, err := s.gw.Refund(gwCtx, *payment.TransactionID, amount, payment.Currency); err != nil {
			return err
		}
	}

	payment.Status = types.PaymentStatusRefunded
	payment.RefundedAmount = &amount
	return s.paymentRepo.Update(ctx, payment)
}

// HandleWebhook reconciles an asynchronous gateway notification. Unknown
// transaction IDs are logged and ignored.
func (s *paymentService) HandleWebhook(ctx context.Context, transactionID, status string) error {
	payment, err := s.paymentRepo.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return err
	}
	if payment == nil {
		log.Printf("[Payment] Webhook for unknown transaction %s ignored", transactionID)
		return nil
	}

	switch status {
	case "successful":
		if payment.Status == types.PaymentStatusCompleted {
			return nil
		}
		now := time.Now()
		payment.Status = types.PaymentStatusCompleted
		payment.FailureReason = nil
		payment.PaidAt = &now
		if err := s.paymentRepo.Update(ctx, payment); err != nil {
			return err
		}
		if payment.BookingID != nil {
			booking, err := s.bookingRepo.FindByID(ctx, *payment.BookingID)
			if err == nil && booking != nil && booking.PaymentStatus == types.PaymentPending {
				booking.PaymentStatus = types.PaymentPaid
				booking.PaymentID = &payment.ID
				_ = s.bookingRepo.Update(ctx, booking)
			}
		}
	case "failed":
		if payment.Status == types.PaymentStatusCompleted {
			return nil
		}
		reason := "gateway reported failure"
		payment.Status = types.PaymentStatusFailed
		payment.FailureReason = &reason
		return s.paymentRepo.Update(ctx, payment)
	default:
		log.Printf("[Payment] Webhook status %q for transaction %s ignored", status, transactionID)
	}
	return nil
}

func (s *paymentService) GetByID(ctx context.Context, id string) (*repository.Payment, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrNotFound
	}
	return payment, nil
}

func (s *paymentService) ListByMember(ctx context.Context, memberID string) ([]*repository.Payment, error) {
	return s.paymentRepo.FindByMemberID(ctx, memberID)
}

func (s *paymentService) Revenue(ctx context.Context, from, to time.Time) (*RevenueReport, error) {
	total, err := s.paymentRepo.RevenueBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	byType, err := s.paymentRepo.RevenueByType(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return &RevenueReport{From: from, To: to, Total: total, ByType: byType}, nil
}

func (s *paymentService) Invoice(ctx context.Context, paymentID string) (*Invoice, error) {
	payment, err := s.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	member, err := s.memberRepo.FindByID(ctx, payment.MemberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}

	description := fmt.Sprintf("%s payment via %s", payment.PaymentType, payment.PaymentMethod)
	return &Invoice{
		InvoiceNumber: invoiceNumber(payment),
		IssuedAt:      payment.CreatedAt,
		MemberName:    member.Name,
		MemberEmail:   member.Email,
		Description:   description,
		Amount:        payment.Amount,
		Currency:      payment.Currency,
		Status:        payment.Status,
		TransactionID: payment.TransactionID,
	}, nil
}

// chargeOnce runs a single gateway charge. Initial payment flows do not
// retry; a failed charge lands as a failed payment the member can retry.
func (s *paymentService) chargeOnce(ctx context.Context, req gateway.ChargeRequest) (*gateway.ChargeResult, error) {
	gwCtx, cancel := s.gatewayContext(ctx)
	defer cancel()
	result, err := s.gw.Charge(gwCtx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}
	return result, nil
}

// chargeWithRetry attempts the charge up to maxChargeAttempts times.
// Attempts are numbered from 1 and each one waits 2^attempt backoff units
// before running, so even the first retry is delayed.
func (s *paymentService) chargeWithRetry(ctx context.Context, req gateway.ChargeRequest) (*gateway.ChargeResult, error) {
	var lastErr error
	for attempt := 1; attempt <= maxChargeAttempts; attempt++ {
		backoff := s.retryBackoff * (1 << attempt)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		gwCtx, cancel := s.gatewayContext(ctx)
		result, err := s.gw.Charge(gwCtx, req)
		cancel()
		if err == nil {
			return result, nil
		}
		lastErr = err
		log.Printf("[Payment] Charge attempt %d/%d failed: %v", attempt, maxChargeAttempts, err)
	}
	return nil, fmt.Errorf("%w: %v", ErrPaymentFailed, lastErr)
}

func (s *paymentService) gatewayContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := time.Duration(s.cfg.GatewayTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

func (s *paymentService) recordFailure(ctx context.Context, payment *repository.Payment, chargeErr error) (*repository.Payment, error) {
	reason := chargeErr.Error()
	payment.Status = types.PaymentStatusFailed
	payment.FailureReason = &reason
	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, err
	}
	s.publisher.Publish(ctx, events.PaymentFailed, map[string]interface{}{
		"paymentId": payment.ID,
		"reason":    reason,
	})
	return payment, chargeErr
}

func invoiceNumber(payment *repository.Payment) string {
	short := strings.ToUpper(strings.ReplaceAll(payment.ID, "-", ""))
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("INV-%d-%s", payment.CreatedAt.Year(), short)
}
