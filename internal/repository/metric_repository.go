package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
)

// sqlxMetricRepository stores time-series infrastructure readings. Reporting
// queries run through sqlx struct scanning rather than hand-written Scan lists.
type sqlxMetricRepository struct {
	db *sqlx.DB
}

func (r *sqlxMetricRepository) Insert(ctx context.Context, metric *InfrastructureMetric) error {
	query := `
		INSERT INTO infrastructure_metrics (
			metric_type, power_source, power_status, battery_level,
			internet_status, download_mbps, upload_mbps, latency_ms,
			temperature_c, humidity_pct, recorded_at
		)
		VALUES (
			:metric_type, :power_source, :power_status, :battery_level,
			:internet_status, :download_mbps, :upload_mbps, :latency_ms,
			:temperature_c, :humidity_pct, :recorded_at
		)
		RETURNING id
	`
	if metric.RecordedAt.IsZero() {
		metric.RecordedAt = time.Now()
	}
	rows, err := r.db.NamedQueryContext(ctx, query, metric)
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		return rows.Scan(&metric.ID)
	}
	return rows.Err()
}

func (r *sqlxMetricRepository) FindLatest(ctx context.Context, metricType string) (*InfrastructureMetric, error) {
	query := `
		SELECT * FROM infrastructure_metrics
		WHERE metric_type = $1
		ORDER BY recorded_at DESC
		LIMIT 1
	`
	m := &InfrastructureMetric{}
	err := r.db.GetContext(ctx, m, query, metricType)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *sqlxMetricRepository) FindRange(ctx context.Context, metricType string, from, to time.Time) ([]*InfrastructureMetric, error) {
	query := `
		SELECT * FROM infrastructure_metrics
		WHERE metric_type = $1 AND recorded_at >= $2 AND recorded_at < $3
		ORDER BY recorded_at
	`
	var metrics []*InfrastructureMetric
	if err := r.db.SelectContext(ctx, &metrics, query, metricType, from, to); err != nil {
		return nil, err
	}
	return metrics, nil
}

// UptimePercent is the share of readings in the period that report the
// service online. Power counts grid or backup as up; internet counts
// degraded as up since traffic still flows.
func (r *sqlxMetricRepository) UptimePercent(ctx context.Context, metricType string, from, to time.Time) (float64, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (
				WHERE (metric_type = 'power' AND power_status <> 'offline')
				   OR (metric_type = 'internet' AND internet_status <> 'offline')
			) AS up
		FROM infrastructure_metrics
		WHERE metric_type = $1 AND recorded_at >= $2 AND recorded_at < $3
	`
	var result struct {
		Total int `db:"total"`
		Up    int `db:"up"`
	}
	if err := r.db.GetContext(ctx, &result, query, metricType, from, to); err != nil {
		return 0, err
	}
	if result.Total == 0 {
		return 0, nil
	}
	return float64(result.Up) / float64(result.Total) * 100, nil
}

// CountFailovers counts transitions away from grid power.
func (r *sqlxMetricRepository) CountFailovers(ctx context.Context, from, to time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM (
			SELECT power_source,
			       LAG(power_source) OVER (ORDER BY recorded_at) AS prev_source
			FROM infrastructure_metrics
			WHERE metric_type = 'power' AND recorded_at >= $1 AND recorded_at < $2
		) t
		WHERE t.prev_source = 'grid' AND t.power_source <> 'grid'
	`
	var count int
	if err := r.db.GetContext(ctx, &count, query, from, to); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *sqlxMetricRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM infrastructure_metrics WHERE recorded_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
