// Package supervisor implements the Supervisor repository using PostgreSQL.
package supervisor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/internlog/internlog-backend/internal/adapter/postgres"
	"github.com/internlog/internlog-backend/internal/domain"
)

// Repo provides supervisor persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new supervisor repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const supervisorColumns = `id, user_id, company_id, status, created_at, updated_at`

const getByIDSQL = `
SELECT ` + supervisorColumns + `
FROM supervisors
WHERE id = $1`

const getByUserIDSQL = `
SELECT ` + supervisorColumns + `
FROM supervisors
WHERE user_id = $1`

const deleteStalePendingSQL = `
DELETE FROM supervisors
WHERE status = 'pending' AND created_at < $1`

func (r *Repo) GetByID(ctx context.Context, supervisorID uuid.UUID) (*domain.Supervisor, error) {
	return r.scanOne(ctx, getByIDSQL, supervisorID, supervisorID)
}

func (r *Repo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Supervisor, error) {
	return r.scanOne(ctx, getByUserIDSQL, userID, userID)
}

// DeleteStalePending removes supervisors stuck in pending verification
// since before the cutoff. Returns the number of rows removed.
func (r *Repo) DeleteStalePending(ctx context.Context, cutoff time.Time) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, deleteStalePendingSQL, cutoff)
	if err != nil {
		return 0, postgres.MapError(err, "supervisor", uuid.Nil)
	}
	return int(tag.RowsAffected()), nil
}

func (r *Repo) scanOne(ctx context.Context, sql string, errID uuid.UUID, args ...any) (*domain.Supervisor, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var s domain.Supervisor
	err := q.QueryRow(ctx, sql, args...).Scan(
		&s.ID, &s.UserID, &s.CompanyID, &s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, postgres.MapError(err, "supervisor", errID)
	}
	return &s, nil
}
