package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type pgPaymentRepository struct {
	pool *pgxpool.Pool
}

const paymentColumns = `
	id, member_id, booking_id, amount, currency, payment_type, payment_method,
	status, transaction_id, failure_reason, refunded_amount, paid_at,
	created_at, updated_at
`

func scanPayment(row pgx.Row) (*Payment, error) {
	p := &Payment{}
	err := row.Scan(
		&p.ID, &p.MemberID, &p.BookingID, &p.Amount, &p.Currency,
		&p.PaymentType, &p.PaymentMethod, &p.Status, &p.TransactionID,
		&p.FailureReason, &p.RefundedAmount, &p.PaidAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *pgPaymentRepository) Create(ctx context.Context, payment *Payment) error {
	query := `
		INSERT INTO payments (
			member_id, booking_id, amount, currency, payment_type, payment_method,
			status, transaction_id, failure_reason, refunded_amount, paid_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		payment.MemberID, payment.BookingID, payment.Amount, payment.Currency,
		payment.PaymentType, payment.PaymentMethod, payment.Status,
		payment.TransactionID, payment.FailureReason, payment.RefundedAmount,
		payment.PaidAt,
	).Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)
}

func (r *pgPaymentRepository) FindByID(ctx context.Context, id string) (*Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	return scanPayment(r.pool.QueryRow(ctx, query, id))
}

func (r *pgPaymentRepository) FindByMemberID(ctx context.Context, memberID string) ([]*Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE member_id = $1 ORDER BY created_at DESC`
	return r.queryPayments(ctx, query, memberID)
}

func (r *pgPaymentRepository) FindByBookingID(ctx context.Context, bookingID string) ([]*Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE booking_id = $1 ORDER BY created_at`
	return r.queryPayments(ctx, query, bookingID)
}

func (r *pgPaymentRepository) FindByTransactionID(ctx context.Context, transactionID string) (*Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE transaction_id = $1`
	return scanPayment(r.pool.QueryRow(ctx, query, transactionID))
}

func (r *pgPaymentRepository) Update(ctx context.Context, payment *Payment) error {
	query := `
		UPDATE payments SET
			status = $2, transaction_id = $3, failure_reason = $4,
			refunded_amount = $5, paid_at = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	return r.pool.QueryRow(ctx, query,
		payment.ID, payment.Status, payment.TransactionID, payment.FailureReason,
		payment.RefundedAmount, payment.PaidAt,
	).Scan(&payment.UpdatedAt)
}

func (r *pgPaymentRepository) RevenueBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount - COALESCE(refunded_amount, 0)), 0)
		FROM payments
		WHERE status IN ('completed', 'refunded') AND paid_at >= $1 AND paid_at < $2
	`
	var total decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, from, to).Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func (r *pgPaymentRepository) RevenueByType(ctx context.Context, from, to time.Time) (map[string]decimal.Decimal, error) {
	query := `
		SELECT payment_type, COALESCE(SUM(amount - COALESCE(refunded_amount, 0)), 0)
		FROM payments
		WHERE status IN ('completed', 'refunded') AND paid_at >= $1 AND paid_at < $2
		GROUP BY payment_type
	`
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byType := make(map[string]decimal.Decimal)
	for rows.Next() {
		var paymentType string
		var total decimal.Decimal
		if err := rows.Scan(&paymentType, &total); err != nil {
			return nil, err
		}
		byType[paymentType] = total
	}
	return byType, rows.Err()
}

func (r *pgPaymentRepository) queryPayments(ctx context.Context, query string, args ...interface{}) ([]*Payment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
