// Package logbook implements the Logbook repository using PostgreSQL.
package logbook

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/internlog/internlog-backend/internal/adapter/postgres"
	"github.com/internlog/internlog-backend/internal/domain"
)

// Repo provides logbook persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new logbook repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const logbookColumns = `id, internship_id, status, created_at, updated_at`

const createSQL = `
INSERT INTO logbooks (internship_id)
VALUES ($1)
RETURNING ` + logbookColumns

const getByIDSQL = `
SELECT ` + logbookColumns + `
FROM logbooks
WHERE id = $1`

const getByInternshipIDSQL = `
SELECT ` + logbookColumns + `
FROM logbooks
WHERE internship_id = $1`

const setStatusSQL = `
UPDATE logbooks
SET status = $2, updated_at = now()
WHERE id = $1`

// Create inserts the singleton logbook row for an internship. The
// unique constraint on internship_id is the concurrency arbiter:
// the loser of a creation race gets domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, internshipID uuid.UUID) (*domain.Logbook, error) {
	return r.scanOne(ctx, createSQL, internshipID, internshipID)
}

func (r *Repo) GetByID(ctx context.Context, logbookID uuid.UUID) (*domain.Logbook, error) {
	return r.scanOne(ctx, getByIDSQL, logbookID, logbookID)
}

func (r *Repo) GetByInternshipID(ctx context.Context, internshipID uuid.UUID) (*domain.Logbook, error) {
	return r.scanOne(ctx, getByInternshipIDSQL, internshipID, internshipID)
}

func (r *Repo) SetStatus(ctx context.Context, logbookID uuid.UUID, status domain.ApprovalStatus) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, setStatusSQL, logbookID, status)
	if err != nil {
		return postgres.MapError(err, "logbook", logbookID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("logbook %s: %w", logbookID, domain.ErrNotFound)
	}
	return nil
}

func (r *Repo) scanOne(ctx context.Context, sql string, errID uuid.UUID, args ...any) (*domain.Logbook, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var l domain.Logbook
	err := q.QueryRow(ctx, sql, args...).Scan(
		&l.ID, &l.InternshipID, &l.Status, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, postgres.MapError(err, "logbook", errID)
	}
	return &l, nil
}
