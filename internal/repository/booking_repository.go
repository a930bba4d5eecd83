package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgBookingRepository struct {
	pool *pgxpool.Pool
}

const bookingColumns = `
	id, member_id, workspace_id, booking_type, start_time, end_time, status,
	total_price, payment_status, payment_id, is_trial, checked_in_at,
	checked_out_at, cancelled_at, created_at, updated_at
`

// Bookings in these states hold their time slot. Cancelled and no-show
// bookings release it.
const liveBookingStates = `('confirmed', 'checked-in')`

func scanBooking(row pgx.Row) (*Booking, error) {
	b := &Booking{}
	err := row.Scan(
		&b.ID, &b.MemberID, &b.WorkspaceID, &b.BookingType,
		&b.StartTime, &b.EndTime, &b.Status, &b.TotalPrice, &b.PaymentStatus,
		&b.PaymentID, &b.IsTrial, &b.CheckedInAt, &b.CheckedOutAt, &b.CancelledAt,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Create serializes inserts per workspace with an advisory transaction lock,
// re-checks the half-open overlap predicate, then inserts. Two requests for
// the same slot cannot both commit even across multiple API instances.
func (r *pgBookingRepository) Create(ctx context.Context, booking *Booking) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, booking.WorkspaceID); err != nil {
		return err
	}

	var conflicts int
	overlapQuery := `
		SELECT COUNT(*) FROM bookings
		WHERE workspace_id = $1
		  AND status IN ` + liveBookingStates + `
		  AND start_time < $3 AND end_time > $2
	`
	if err := tx.QueryRow(ctx, overlapQuery, booking.WorkspaceID, booking.StartTime, booking.EndTime).Scan(&conflicts); err != nil {
		return err
	}
	if conflicts > 0 {
		return ErrOverlap
	}

	insertQuery := `
		INSERT INTO bookings (
			member_id, workspace_id, booking_type, start_time, end_time,
			status, total_price, payment_status, payment_id, is_trial
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRow(ctx, insertQuery,
		booking.MemberID, booking.WorkspaceID, booking.BookingType,
		booking.StartTime, booking.EndTime, booking.Status, booking.TotalPrice,
		booking.PaymentStatus, booking.PaymentID, booking.IsTrial,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *pgBookingRepository) FindByID(ctx context.Context, id string) (*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return scanBooking(r.pool.QueryRow(ctx, query, id))
}

func (r *pgBookingRepository) FindByMemberID(ctx context.Context, memberID string) ([]*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE member_id = $1 ORDER BY start_time DESC`
	return r.queryBookings(ctx, query, memberID)
}

func (r *pgBookingRepository) FindByWorkspaceID(ctx context.Context, workspaceID string, from, to time.Time) ([]*Booking, error) {
	query := `
		SELECT ` + bookingColumns + ` FROM bookings
		WHERE workspace_id = $1 AND start_time < $3 AND end_time > $2
		ORDER BY start_time
	`
	return r.queryBookings(ctx, query, workspaceID, from, to)
}

func (r *pgBookingRepository) FindOverlapping(ctx context.Context, workspaceID string, start, end time.Time, excludeID string) ([]*Booking, error) {
	query := `
		SELECT ` + bookingColumns + ` FROM bookings
		WHERE workspace_id = $1
		  AND status IN ` + liveBookingStates + `
		  AND start_time < $3 AND end_time > $2
		  AND ($4 = '' OR id::text <> $4)
	`
	return r.queryBookings(ctx, query, workspaceID, start, end, excludeID)
}

func (r *pgBookingRepository) FindActiveForMember(ctx context.Context, memberID, workspaceID string, at time.Time) (*Booking, error) {
	query := `
		SELECT ` + bookingColumns + ` FROM bookings
		WHERE member_id = $1 AND workspace_id = $2
		  AND status IN ` + liveBookingStates + `
		  AND start_time <= $3 AND end_time >= $3
		ORDER BY start_time
		LIMIT 1
	`
	return scanBooking(r.pool.QueryRow(ctx, query, memberID, workspaceID, at))
}

func (r *pgBookingRepository) FindNoShowCandidates(ctx context.Context, startedBefore time.Time) ([]*Booking, error) {
	query := `
		SELECT ` + bookingColumns + ` FROM bookings
		WHERE status = 'confirmed' AND start_time < $1
	`
	return r.queryBookings(ctx, query, startedBefore)
}

func (r *pgBookingRepository) Update(ctx context.Context, booking *Booking) error {
	query := `
		UPDATE bookings SET
			status = $2, payment_status = $3, payment_id = $4, total_price = $5,
			checked_in_at = $6, checked_out_at = $7, cancelled_at = $8,
			start_time = $9, end_time = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	return r.pool.QueryRow(ctx, query,
		booking.ID, booking.Status, booking.PaymentStatus, booking.PaymentID,
		booking.TotalPrice, booking.CheckedInAt, booking.CheckedOutAt,
		booking.CancelledAt, booking.StartTime, booking.EndTime,
	).Scan(&booking.UpdatedAt)
}

func (r *pgBookingRepository) queryBookings(ctx context.Context, query string, args ...interface{}) ([]*Booking, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
