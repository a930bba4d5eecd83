package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgMemberRepository struct {
	pool *pgxpool.Pool
}

const memberColumns = `
	id, email, password_hash, name, phone, membership_tier, membership_status,
	join_date, expiry_date, access_card_id, scholarship, trial_used,
	storage_unit_number, bio, skills, interests, portfolio_url, created_at, updated_at
`

func scanMember(row pgx.Row) (*Member, error) {
	m := &Member{}
	err := row.Scan(
		&m.ID, &m.Email, &m.PasswordHash, &m.Name, &m.Phone,
		&m.MembershipTier, &m.MembershipStatus, &m.JoinDate, &m.ExpiryDate,
		&m.AccessCardID, &m.Scholarship, &m.TrialUsed, &m.StorageUnitNumber,
		&m.Bio, &m.Skills, &m.Interests, &m.PortfolioURL, &m.CreatedAt, &m.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *pgMemberRepository) Create(ctx context.Context, member *Member) error {
	query := `
		INSERT INTO members (
			email, password_hash, name, phone, membership_tier, membership_status,
			join_date, expiry_date, access_card_id, scholarship, trial_used,
			storage_unit_number, bio, skills, interests, portfolio_url
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		member.Email, member.PasswordHash, member.Name, member.Phone,
		member.MembershipTier, member.MembershipStatus, member.JoinDate,
		member.ExpiryDate, member.AccessCardID, member.Scholarship, member.TrialUsed,
		member.StorageUnitNumber, member.Bio, member.Skills, member.Interests,
		member.PortfolioURL,
	).Scan(&member.ID, &member.CreatedAt, &member.UpdatedAt)
}

func (r *pgMemberRepository) FindByID(ctx context.Context, id string) (*Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`
	return scanMember(r.pool.QueryRow(ctx, query, id))
}

func (r *pgMemberRepository) FindByEmail(ctx context.Context, email string) (*Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE LOWER(email) = LOWER($1)`
	return scanMember(r.pool.QueryRow(ctx, query, email))
}

func (r *pgMemberRepository) FindByAccessCard(ctx context.Context, cardID string) (*Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE access_card_id = $1`
	return scanMember(r.pool.QueryRow(ctx, query, cardID))
}

func (r *pgMemberRepository) FindAll(ctx context.Context, status string) ([]*Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE membership_status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *pgMemberRepository) Update(ctx context.Context, member *Member) error {
	query := `
		UPDATE members SET
			email = $2, name = $3, phone = $4, membership_tier = $5,
			membership_status = $6, expiry_date = $7, scholarship = $8,
			trial_used = $9, storage_unit_number = $10, bio = $11, skills = $12,
			interests = $13, portfolio_url = $14, password_hash = $15, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	return r.pool.QueryRow(ctx, query,
		member.ID, member.Email, member.Name, member.Phone, member.MembershipTier,
		member.MembershipStatus, member.ExpiryDate, member.Scholarship,
		member.TrialUsed, member.StorageUnitNumber, member.Bio, member.Skills,
		member.Interests, member.PortfolioURL, member.PasswordHash,
	).Scan(&member.UpdatedAt)
}

func (r *pgMemberRepository) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	query := `
		UPDATE members SET membership_status = 'expired', updated_at = NOW()
		WHERE membership_status = 'active' AND expiry_date IS NOT NULL AND expiry_date < $1
	`
	tag, err := r.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *pgMemberRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM members WHERE id = $1`, id)
	return err
}
