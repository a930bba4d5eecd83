package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgAccessLogRepository struct {
	pool *pgxpool.Pool
}

const accessLogColumns = `
	id, member_id, workspace_id, access_method, granted, denial_reason,
	entry_time, exit_time, created_at
`

func scanAccessLog(row pgx.Row) (*AccessLog, error) {
	l := &AccessLog{}
	err := row.Scan(
		&l.ID, &l.MemberID, &l.WorkspaceID, &l.AccessMethod, &l.Granted,
		&l.DenialReason, &l.EntryTime, &l.ExitTime, &l.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *pgAccessLogRepository) Create(ctx context.Context, log *AccessLog) error {
	query := `
		INSERT INTO access_logs (
			member_id, workspace_id, access_method, granted, denial_reason, entry_time
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query,
		log.MemberID, log.WorkspaceID, log.AccessMethod, log.Granted,
		log.DenialReason, log.EntryTime,
	).Scan(&log.ID, &log.CreatedAt)
}

func (r *pgAccessLogRepository) FindByID(ctx context.Context, id string) (*AccessLog, error) {
	query := `SELECT ` + accessLogColumns + ` FROM access_logs WHERE id = $1`
	return scanAccessLog(r.pool.QueryRow(ctx, query, id))
}

func (r *pgAccessLogRepository) FindByMemberID(ctx context.Context, memberID string, limit int) ([]*AccessLog, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT ` + accessLogColumns + ` FROM access_logs
		WHERE member_id = $1 ORDER BY entry_time DESC LIMIT $2
	`
	return r.queryLogs(ctx, query, memberID, limit)
}

func (r *pgAccessLogRepository) FindOpenByMember(ctx context.Context, memberID string) (*AccessLog, error) {
	query := `
		SELECT ` + accessLogColumns + ` FROM access_logs
		WHERE member_id = $1 AND granted AND exit_time IS NULL
		ORDER BY entry_time DESC
		LIMIT 1
	`
	return scanAccessLog(r.pool.QueryRow(ctx, query, memberID))
}

func (r *pgAccessLogRepository) FindOpenByWorkspace(ctx context.Context, workspaceID string) ([]*AccessLog, error) {
	query := `
		SELECT ` + accessLogColumns + ` FROM access_logs
		WHERE workspace_id = $1 AND granted AND exit_time IS NULL
		ORDER BY entry_time
	`
	return r.queryLogs(ctx, query, workspaceID)
}

func (r *pgAccessLogRepository) FindOpen(ctx context.Context) ([]*AccessLog, error) {
	query := `
		SELECT ` + accessLogColumns + ` FROM access_logs
		WHERE granted AND exit_time IS NULL
		ORDER BY entry_time DESC
	`
	return r.queryLogs(ctx, query)
}

func (r *pgAccessLogRepository) Update(ctx context.Context, log *AccessLog) error {
	query := `UPDATE access_logs SET exit_time = $2 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, log.ID, log.ExitTime)
	return err
}

func (r *pgAccessLogRepository) Stats(ctx context.Context, from, to time.Time) (*AccessStats, error) {
	stats := &AccessStats{}
	summary := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE granted),
		       COUNT(*) FILTER (WHERE NOT granted),
		       COUNT(DISTINCT member_id) FILTER (WHERE member_id IS NOT NULL)
		FROM access_logs
		WHERE entry_time >= $1 AND entry_time < $2
	`
	err := r.pool.QueryRow(ctx, summary, from, to).Scan(
		&stats.TotalEntries, &stats.Granted, &stats.Denied, &stats.UniqueMembers,
	)
	if err != nil {
		return nil, err
	}

	peak := `
		SELECT EXTRACT(HOUR FROM entry_time)::int AS hour
		FROM access_logs
		WHERE entry_time >= $1 AND entry_time < $2 AND granted
		GROUP BY hour
		ORDER BY COUNT(*) DESC, hour
		LIMIT 1
	`
	err = r.pool.QueryRow(ctx, peak, from, to).Scan(&stats.PeakHour)
	if err == pgx.ErrNoRows {
		stats.PeakHour = -1
		return stats, nil
	}
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *pgAccessLogRepository) queryLogs(ctx context.Context, query string, args ...interface{}) ([]*AccessLog, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*AccessLog
	for rows.Next() {
		l, err := scanAccessLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
