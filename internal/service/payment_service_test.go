package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sourcehub/hub-backend/internal/config"
	"github.com/sourcehub/hub-backend/internal/gateway"
	"github.com/sourcehub/hub-backend/internal/repository"
	"github.com/sourcehub/hub-backend/internal/types"
)

// scriptedGateway declines the first `failures` charges, then succeeds.
// With alwaysFail set every charge is declined.
type scriptedGateway struct {
	mu         sync.Mutex
	failures   int
	alwaysFail bool
	charges    int
	refunds    int
}

func (g *scriptedGateway) Charge(ctx context.Context, req gateway.ChargeRequest) (*gateway.ChargeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.charges++
	if g.alwaysFail || g.charges <= g.failures {
		return nil, gateway.ErrDeclined
	}
	return &gateway.ChargeResult{
		TransactionID: fmt.Sprintf("txn_test_%d", g.charges),
		Status:        "successful",
	}, nil
}

func (g *scriptedGateway) Refund(ctx context.Context, transactionID string, amount decimal.Decimal, currency string) (*gateway.RefundResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refunds++
	return &gateway.RefundResult{RefundID: "rfnd_test", Amount: amount}, nil
}

type paymentFixture struct {
	repos    *repository.Repositories
	gw       *scriptedGateway
	payments *paymentService
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	repos := repository.NewRepositories()
	gw := &scriptedGateway{}
	cfg := &config.Config{GatewayTimeout: 5}

	svc := NewPaymentService(cfg, repos.PaymentRepo, repos.BookingRepo, repos.MemberRepo, gw, nil).(*paymentService)
	svc.retryBackoff = time.Millisecond
	return &paymentFixture{repos: repos, gw: gw, payments: svc}
}

func seedPendingBooking(t *testing.T, repos *repository.Repositories, memberID string, price int64) *repository.Booking {
	t.Helper()
	booking := &repository.Booking{
		MemberID:      memberID,
		WorkspaceID:   "ws-payment",
		BookingType:   types.BookingHourly,
		StartTime:     time.Now().Add(24 * time.Hour),
		EndTime:       time.Now().Add(26 * time.Hour),
		Status:        types.BookingConfirmed,
		TotalPrice:    decimal.NewFromInt(price),
		PaymentStatus: types.PaymentPending,
	}
	require.NoError(t, repos.BookingRepo.Create(context.Background(), booking))
	return booking
}

func TestProcessBookingPayment(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	member := seedMember(t, f.repos, nil)
	booking := seedPendingBooking(t, f.repos, member.ID, 50)

	payment, err := f.payments.ProcessBookingPayment(ctx, booking.ID, types.MethodCard)
	require.NoError(t, err)
	assert.Equal(t, types.PaymentStatusCompleted, payment.Status)
	require.NotNil(t, payment.TransactionID)
	require.NotNil(t, payment.PaidAt)
	assert.Equal(t, "50.00", payment.Amount.StringFixed(2))

	updated, _ := f.repos.BookingRepo.FindByID(ctx, booking.ID)
	assert.Equal(t, types.PaymentPaid, updated.PaymentStatus)
	require.NotNil(t, updated.PaymentID)
	assert.Equal(t, payment.ID, *updated.PaymentID)

	// A paid booking cannot be paid again.
	_, err = f.payments.ProcessBookingPayment(ctx, booking.ID, types.MethodCard)
	assert.ErrorIs(t, err, ErrBookingNotPayable)
}

func TestBookingPaymentChargesOnce(t *testing.T) {
	f := newPaymentFixture(t)
	f.gw.failures = 1
	ctx := context.Background()
	member := seedMember(t, f.repos, nil)
	booking := seedPendingBooking(t, f.repos, member.ID, 50)

	// The initial attempt is a single charge. Recovering from a decline
	// is the retry endpoint's job.
	payment, err := f.payments.ProcessBookingPayment(ctx, booking.ID, types.MethodMobileMoney)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPaymentFailed)
	assert.Equal(t, 1, f.gw.charges)

	require.NotNil(t, payment)
	assert.Equal(t, types.PaymentStatusFailed, payment.Status)
	require.NotNil(t, payment.FailureReason)

	updated, _ := f.repos.BookingRepo.FindByID(ctx, booking.ID)
	assert.Equal(t, types.PaymentPending, updated.PaymentStatus)
}

func TestRetryPayment(t *testing.T) {
	f := newPaymentFixture(t)
	f.gw.alwaysFail = true
	ctx := context.Background()
	member := seedMember(t, f.repos, nil)
	booking := seedPendingBooking(t, f.repos, member.ID, 50)

	failed, err := f.payments.ProcessBookingPayment(ctx, booking.ID, types.MethodCard)
	require.ErrorIs(t, err, ErrPaymentFailed)

	f.gw.alwaysFail = false
	retried, err := f.payments.RetryPayment(ctx, failed.ID)
	require.NoError(t, err)
	assert.Equal(t, types.PaymentStatusCompleted, retried.Status)
	assert.Nil(t, retried.FailureReason)

	updated, _ := f.repos.BookingRepo.FindByID(ctx, booking.ID)
	assert.Equal(t, types.PaymentPaid, updated.PaymentStatus)
	require.NotNil(t, updated.PaymentID)
	assert.Equal(t, retried.ID, *updated.PaymentID)

	// Completed payments cannot be retried.
	_, err = f.payments.RetryPayment(ctx, retried.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRetryPaymentBacksOffAcrossAttempts(t *testing.T) {
	f := newPaymentFixture(t)
	f.gw.alwaysFail = true
	ctx := context.Background()
	member := seedMember(t, f.repos, nil)
	booking := seedPendingBooking(t, f.repos, member.ID, 50)

	failed, err := f.payments.ProcessBookingPayment(ctx, booking.ID, types.MethodCard)
	require.ErrorIs(t, err, ErrPaymentFailed)
	require.Equal(t, 1, f.gw.charges)

	// Two more declines inside the retry, then success on its third
	// attempt.
	f.gw.alwaysFail = false
	f.gw.failures = 3
	retried, err := f.payments.RetryPayment(ctx, failed.ID)
	require.NoError(t, err)
	assert.Equal(t, types.PaymentStatusCompleted, retried.Status)
	assert.Equal(t, 4, f.gw.charges)
}

func TestRetryPaymentFailsAfterMaxAttempts(t *testing.T) {
	f := newPaymentFixture(t)
	f.gw.alwaysFail = true
	ctx := context.Background()
	member := seedMember(t, f.repos, nil)
	booking := seedPendingBooking(t, f.repos, member.ID, 50)

	failed, err := f.payments.ProcessBookingPayment(ctx, booking.ID, types.MethodCard)
	require.ErrorIs(t, err, ErrPaymentFailed)
	require.Equal(t, 1, f.gw.charges)

	retried, err := f.payments.RetryPayment(ctx, failed.ID)
	require.ErrorIs(t, err, ErrPaymentFailed)
	assert.Equal(t, 4, f.gw.charges)

	require.NotNil(t, retried)
	assert.Equal(t, types.PaymentStatusFailed, retried.Status)

	updated, _ := f.repos.BookingRepo.FindByID(ctx, booking.ID)
	assert.Equal(t, types.PaymentPending, updated.PaymentStatus)
}

func TestProcessRefundFullByDefault(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	member := seedMember(t, f.repos, nil)
	booking := seedPendingBooking(t, f.repos, member.ID, 50)

	payment, err := f.payments.ProcessBookingPayment(ctx, booking.ID, types.MethodCard)
	require.NoError(t, err)

	refunded, err := f.payments.ProcessRefund(ctx, payment.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, types.PaymentStatusRefunded, refunded.Status)
	require.NotNil(t, refunded.RefundedAmount)
	assert.Equal(t, "50.00", refunded.RefundedAmount.StringFixed(2))
	assert.Equal(t, 1, f.gw.refunds)
}

func TestProcessRefundPartial(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	member := seedMember(t, f.repos, nil)
	booking := seedPendingBooking(t, f.repos, member.ID, 50)

	payment, err := f.payments.ProcessBookingPayment(ctx, booking.ID, types.MethodCard)
	require.NoError(t, err)

	partial := decimal.NewFromInt(20)
	refunded, err := f.payments.ProcessRefund(ctx, payment.ID, &partial)
	require.NoError(t, err)
	assert.Equal(t, types.PaymentStatusRefunded, refunded.Status)
	require.NotNil(t, refunded.RefundedAmount)
	assert.Equal(t, "20.00", refunded.RefundedAmount.StringFixed(2))
}

func TestProcessRefundGuards(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	member := seedMember(t, f.repos, nil)
	booking := seedPendingBooking(t, f.repos, member.ID, 50)

	pending := &repository.Payment{
		MemberID:      member.ID,
		BookingID:     &booking.ID,
		Amount:        decimal.NewFromInt(50),
		Currency:      "USD",
		PaymentType:   types.PaymentTypeBooking,
		PaymentMethod: types.MethodCard,
		Status:        types.PaymentStatusPending,
	}
	require.NoError(t, f.repos.PaymentRepo.Create(ctx, pending))

	_, err := f.payments.ProcessRefund(ctx, pending.ID, nil)
	assert.ErrorIs(t, err, ErrNotRefundable)

	payment, err := f.payments.ProcessBookingPayment(ctx, booking.ID, types.MethodCard)
	require.NoError(t, err)

	tooMuch := decimal.NewFromInt(75)
	_, err = f.payments.ProcessRefund(ctx, payment.ID, &tooMuch)
	assert.ErrorIs(t, err, ErrRefundTooLarge)

	zero := decimal.Zero
	_, err = f.payments.ProcessRefund(ctx, payment.ID, &zero)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.payments.ProcessRefund(ctx, "missing-payment", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMembershipPaymentRenewsFromExpiry(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	member := seedMember(t, f.repos, func(m *repository.Member) {
		m.MembershipTier = types.TierBasic
		m.ExpiryDate = datePtr(time.Now().AddDate(0, 0, 10))
	})
	oldExpiry := *member.ExpiryDate

	payment, err := f.payments.ProcessMembershipPayment(ctx, member.ID, types.TierPro, types.MethodCard)
	require.NoError(t, err)
	assert.Equal(t, types.PaymentStatusCompleted, payment.Status)
	assert.Equal(t, "100.00", payment.Amount.StringFixed(2))
	assert.Equal(t, types.PaymentTypeMembership, payment.PaymentType)

	updated, _ := f.repos.MemberRepo.FindByID(ctx, member.ID)
	assert.Equal(t, types.TierPro, updated.MembershipTier)
	assert.Equal(t, types.MembershipActive, updated.MembershipStatus)
	require.NotNil(t, updated.ExpiryDate)
	assert.WithinDuration(t, oldExpiry.AddDate(0, 0, 30), *updated.ExpiryDate, time.Second)
}

func TestMembershipPaymentRenewsFromNowWhenLapsed(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	member := seedMember(t, f.repos, func(m *repository.Member) {
		m.MembershipStatus = types.MembershipExpired
		m.ExpiryDate = datePtr(time.Now().AddDate(0, 0, -5))
	})

	_, err := f.payments.ProcessMembershipPayment(ctx, member.ID, types.TierBasic, types.MethodCard)
	require.NoError(t, err)

	updated, _ := f.repos.MemberRepo.FindByID(ctx, member.ID)
	assert.Equal(t, types.MembershipActive, updated.MembershipStatus)
	require.NotNil(t, updated.ExpiryDate)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 30), *updated.ExpiryDate, time.Minute)
}

func TestMembershipPaymentRejectsFreeTiers(t *testing.T) {
	f := newPaymentFixture(t)
	member := seedMember(t, f.repos, nil)

	_, err := f.payments.ProcessMembershipPayment(context.Background(), member.ID, types.TierTrial, types.MethodCard)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMembershipPaymentRejectsDowngrade(t *testing.T) {
	f := newPaymentFixture(t)
	member := seedMember(t, f.repos, func(m *repository.Member) {
		m.MembershipTier = types.TierPro
	})

	_, err := f.payments.ProcessMembershipPayment(context.Background(), member.ID, types.TierBasic, types.MethodCard)
	assert.ErrorIs(t, err, ErrTierDowngrade)
	assert.Equal(t, 0, f.gw.charges)
}

func TestWebhookUnknownTransactionIgnored(t *testing.T) {
	f := newPaymentFixture(t)

	err := f.payments.HandleWebhook(context.Background(), "txn_does_not_exist", "successful")
	assert.NoError(t, err)
}

func TestWebhookReconcilesPayment(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	member := seedMember(t, f.repos, nil)
	booking := seedPendingBooking(t, f.repos, member.ID, 50)

	txn := "txn_webhook_1"
	payment := &repository.Payment{
		MemberID:      member.ID,
		BookingID:     &booking.ID,
		Amount:        decimal.NewFromInt(50),
		Currency:      "USD",
		PaymentType:   types.PaymentTypeBooking,
		PaymentMethod: types.MethodMobileMoney,
		Status:        types.PaymentStatusPending,
		TransactionID: &txn,
	}
	require.NoError(t, f.repos.PaymentRepo.Create(ctx, payment))

	require.NoError(t, f.payments.HandleWebhook(ctx, txn, "successful"))

	updated, _ := f.repos.PaymentRepo.FindByID(ctx, payment.ID)
	assert.Equal(t, types.PaymentStatusCompleted, updated.Status)
	require.NotNil(t, updated.PaidAt)

	updatedBooking, _ := f.repos.BookingRepo.FindByID(ctx, booking.ID)
	assert.Equal(t, types.PaymentPaid, updatedBooking.PaymentStatus)

	// A later failure notification for a completed payment is ignored.
	require.NoError(t, f.payments.HandleWebhook(ctx, txn, "failed"))
	updated, _ = f.repos.PaymentRepo.FindByID(ctx, payment.ID)
	assert.Equal(t, types.PaymentStatusCompleted, updated.Status)
}

func TestWebhookMarksFailure(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	member := seedMember(t, f.repos, nil)

	txn := "txn_webhook_2"
	payment := &repository.Payment{
		MemberID:      member.ID,
		Amount:        decimal.NewFromInt(50),
		Currency:      "USD",
		PaymentType:   types.PaymentTypeMembership,
		PaymentMethod: types.MethodCard,
		Status:        types.PaymentStatusPending,
		TransactionID: &txn,
	}
	require.NoError(t, f.repos.PaymentRepo.Create(ctx, payment))

	require.NoError(t, f.payments.HandleWebhook(ctx, txn, "failed"))

	updated, _ := f.repos.PaymentRepo.FindByID(ctx, payment.ID)
	assert.Equal(t, types.PaymentStatusFailed, updated.Status)
	require.NotNil(t, updated.FailureReason)
}

func TestRevenueReport(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	member := seedMember(t, f.repos, nil)
	now := time.Now()

	mkPayment := func(amount int64, paymentType string, refunded *int64) {
		p := &repository.Payment{
			MemberID:      member.ID,
			Amount:        decimal.NewFromInt(amount),
			Currency:      "USD",
			PaymentType:   paymentType,
			PaymentMethod: types.MethodCard,
			Status:        types.PaymentStatusCompleted,
			PaidAt:        &now,
		}
		if refunded != nil {
			amt := decimal.NewFromInt(*refunded)
			p.Status = types.PaymentStatusRefunded
			p.RefundedAmount = &amt
		}
		require.NoError(t, f.repos.PaymentRepo.Create(ctx, p))
	}

	mkPayment(100, types.PaymentTypeMembership, nil)
	mkPayment(50, types.PaymentTypeBooking, nil)
	full := int64(50)
	mkPayment(50, types.PaymentTypeBooking, &full)

	report, err := f.payments.Revenue(ctx, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "150.00", report.Total.StringFixed(2))
	assert.Equal(t, "100.00", report.ByType[types.PaymentTypeMembership].StringFixed(2))
	assert.Equal(t, "50.00", report.ByType[types.PaymentTypeBooking].StringFixed(2))
}

func TestInvoice(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	member := seedMember(t, f.repos, nil)
	booking := seedPendingBooking(t, f.repos, member.ID, 50)

	payment, err := f.payments.ProcessBookingPayment(ctx, booking.ID, types.MethodCard)
	require.NoError(t, err)

	invoice, err := f.payments.Invoice(ctx, payment.ID)
	require.NoError(t, err)
	assert.Regexp(t, `^INV-\d{4}-[0-9A-F]{8}$`, invoice.InvoiceNumber)
	assert.Equal(t, member.Name, invoice.MemberName)
	assert.Equal(t, member.Email, invoice.MemberEmail)
	assert.Equal(t, types.PaymentStatusCompleted, invoice.Status)
	assert.Equal(t, "50.00", invoice.Amount.StringFixed(2))
}
