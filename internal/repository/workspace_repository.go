package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgWorkspaceRepository struct {
	pool *pgxpool.Pool
}

const workspaceColumns = `
	id, name, type, floor, capacity, hourly_rate, daily_rate, monthly_rate,
	amenities, equipment, is_available, maintenance_status, created_at, updated_at
`

func scanWorkspace(row pgx.Row) (*Workspace, error) {
	w := &Workspace{}
	err := row.Scan(
		&w.ID, &w.Name, &w.Type, &w.Floor, &w.Capacity,
		&w.HourlyRate, &w.DailyRate, &w.MonthlyRate,
		&w.Amenities, &w.Equipment, &w.IsAvailable, &w.MaintenanceStatus,
		&w.CreatedAt, &w.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (r *pgWorkspaceRepository) Create(ctx context.Context, workspace *Workspace) error {
	query := `
		INSERT INTO workspaces (
			name, type, floor, capacity, hourly_rate, daily_rate, monthly_rate,
			amenities, equipment, is_available, maintenance_status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		workspace.Name, workspace.Type, workspace.Floor, workspace.Capacity,
		workspace.HourlyRate, workspace.DailyRate, workspace.MonthlyRate,
		workspace.Amenities, workspace.Equipment, workspace.IsAvailable,
		workspace.MaintenanceStatus,
	).Scan(&workspace.ID, &workspace.CreatedAt, &workspace.UpdatedAt)
}

func (r *pgWorkspaceRepository) FindByID(ctx context.Context, id string) (*Workspace, error) {
	query := `SELECT ` + workspaceColumns + ` FROM workspaces WHERE id = $1`
	return scanWorkspace(r.pool.QueryRow(ctx, query, id))
}

func (r *pgWorkspaceRepository) FindAll(ctx context.Context, workspaceType string) ([]*Workspace, error) {
	query := `SELECT ` + workspaceColumns + ` FROM workspaces`
	args := []interface{}{}
	if workspaceType != "" {
		query += ` WHERE type = $1`
		args = append(args, workspaceType)
	}
	query += ` ORDER BY floor, name`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workspaces []*Workspace
	for rows.Next() {
		w, err := scanWorkspace(rows)
		if err != nil {
			return nil, err
		}
		workspaces = append(workspaces, w)
	}
	return workspaces, rows.Err()
}

func (r *pgWorkspaceRepository) Update(ctx context.Context, workspace *Workspace) error {
	query := `
		UPDATE workspaces SET
			name = $2, type = $3, floor = $4, capacity = $5, hourly_rate = $6,
			daily_rate = $7, monthly_rate = $8, amenities = $9, equipment = $10,
			is_available = $11, maintenance_status = $12, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	return r.pool.QueryRow(ctx, query,
		workspace.ID, workspace.Name, workspace.Type, workspace.Floor,
		workspace.Capacity, workspace.HourlyRate, workspace.DailyRate,
		workspace.MonthlyRate, workspace.Amenities, workspace.Equipment,
		workspace.IsAvailable, workspace.MaintenanceStatus,
	).Scan(&workspace.UpdatedAt)
}

func (r *pgWorkspaceRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM workspaces WHERE id = $1`, id)
	return err
}
