// Package weeklylog implements the WeeklyLog repository using PostgreSQL.
package weeklylog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/internlog/internlog-backend/internal/adapter/postgres"
	"github.com/internlog/internlog-backend/internal/domain"
)

// Repo provides weekly log persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new weekly log repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const weeklyLogColumns = `id, logbook_id, week_no, status, comment, created_at, updated_at`

const createSQL = `
INSERT INTO weekly_logs (logbook_id, week_no)
VALUES ($1, $2)
RETURNING ` + weeklyLogColumns

const getByIDSQL = `
SELECT ` + weeklyLogColumns + `
FROM weekly_logs
WHERE id = $1`

const getByIDForUpdateSQL = getByIDSQL + `
FOR UPDATE`

const listByLogbookIDSQL = `
SELECT ` + weeklyLogColumns + `
FROM weekly_logs
WHERE logbook_id = $1
ORDER BY week_no`

const setStatusSQL = `
UPDATE weekly_logs
SET status = $2, comment = $3, updated_at = now()
WHERE id = $1`

// Create inserts a weekly log for the computed calendar week. The
// (logbook_id, week_no) unique constraint detects the duplicate week,
// surfaced as domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, logbookID uuid.UUID, weekNo int) (*domain.WeeklyLog, error) {
	return r.scanOne(ctx, createSQL, logbookID, logbookID, weekNo)
}

func (r *Repo) GetByID(ctx context.Context, weeklyLogID uuid.UUID) (*domain.WeeklyLog, error) {
	return r.scanOne(ctx, getByIDSQL, weeklyLogID, weeklyLogID)
}

// GetByIDForUpdate locks the weekly log row for the rest of the
// transaction. Entry creation and week approval serialize on it.
func (r *Repo) GetByIDForUpdate(ctx context.Context, weeklyLogID uuid.UUID) (*domain.WeeklyLog, error) {
	return r.scanOne(ctx, getByIDForUpdateSQL, weeklyLogID, weeklyLogID)
}

func (r *Repo) ListByLogbookID(ctx context.Context, logbookID uuid.UUID) ([]domain.WeeklyLog, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, listByLogbookIDSQL, logbookID)
	if err != nil {
		return nil, postgres.MapError(err, "weekly log", logbookID)
	}
	defer rows.Close()

	var out []domain.WeeklyLog
	for rows.Next() {
		var w domain.WeeklyLog
		if err := rows.Scan(
			&w.ID, &w.LogbookID, &w.WeekNo, &w.Status, &w.Comment,
			&w.CreatedAt, &w.UpdatedAt,
		); err != nil {
			return nil, postgres.MapError(err, "weekly log", logbookID)
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "weekly log", logbookID)
	}
	return out, nil
}

func (r *Repo) SetStatus(ctx context.Context, weeklyLogID uuid.UUID, status domain.ApprovalStatus, comment string) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, setStatusSQL, weeklyLogID, status, comment)
	if err != nil {
		return postgres.MapError(err, "weekly log", weeklyLogID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("weekly log %s: %w", weeklyLogID, domain.ErrNotFound)
	}
	return nil
}

func (r *Repo) scanOne(ctx context.Context, sql string, errID uuid.UUID, args ...any) (*domain.WeeklyLog, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var w domain.WeeklyLog
	err := q.QueryRow(ctx, sql, args...).Scan(
		&w.ID, &w.LogbookID, &w.WeekNo, &w.Status, &w.Comment,
		&w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, postgres.MapError(err, "weekly log", errID)
	}
	return &w, nil
}
