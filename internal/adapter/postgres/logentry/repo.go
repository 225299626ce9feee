// Package logentry implements the LogbookEntry repository using PostgreSQL.
package logentry

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/internlog/internlog-backend/internal/adapter/postgres"
	"github.com/internlog/internlog-backend/internal/domain"
)

// Repo provides logbook entry persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new logbook entry repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const entryColumns = `id, weekly_log_id, description, feedback, is_immutable,
       signature, original_signature, created_at, updated_at`

const createSQL = `
INSERT INTO logbook_entries
    (id, weekly_log_id, description, signature, original_signature, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + entryColumns

const getByIDSQL = `
SELECT ` + entryColumns + `
FROM logbook_entries
WHERE id = $1`

const getByIDForUpdateSQL = getByIDSQL + `
FOR UPDATE`

const listByWeeklyLogIDSQL = `
SELECT ` + entryColumns + `
FROM logbook_entries
WHERE weekly_log_id = $1
ORDER BY created_at`

const countByWeeklyLogIDSQL = `
SELECT count(*) FROM logbook_entries WHERE weekly_log_id = $1`

const countMutableByWeeklyLogIDSQL = `
SELECT count(*) FROM logbook_entries WHERE weekly_log_id = $1 AND NOT is_immutable`

const updateContentSQL = `
UPDATE logbook_entries
SET description = $2, feedback = $3, signature = $4, updated_at = now()
WHERE id = $1
RETURNING ` + entryColumns

const sealSQL = `
UPDATE logbook_entries
SET is_immutable = true, updated_at = now()
WHERE id = $1`

const deleteSQL = `
DELETE FROM logbook_entries WHERE id = $1`

// Create inserts a signed entry. ID, signatures, and created_at are
// assigned by the service: the creation timestamp is part of the signed
// message, so the stored value must be exactly the one that was signed.
func (r *Repo) Create(ctx context.Context, entry *domain.LogbookEntry) (*domain.LogbookEntry, error) {
	return r.scanOne(ctx, createSQL, entry.ID,
		entry.ID, entry.WeeklyLogID, entry.Description,
		entry.Signature, entry.OriginalSignature, entry.CreatedAt,
	)
}

func (r *Repo) GetByID(ctx context.Context, entryID uuid.UUID) (*domain.LogbookEntry, error) {
	return r.scanOne(ctx, getByIDSQL, entryID, entryID)
}

// GetByIDForUpdate locks the entry row for the rest of the transaction.
func (r *Repo) GetByIDForUpdate(ctx context.Context, entryID uuid.UUID) (*domain.LogbookEntry, error) {
	return r.scanOne(ctx, getByIDForUpdateSQL, entryID, entryID)
}

func (r *Repo) ListByWeeklyLogID(ctx context.Context, weeklyLogID uuid.UUID) ([]domain.LogbookEntry, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, listByWeeklyLogIDSQL, weeklyLogID)
	if err != nil {
		return nil, postgres.MapError(err, "logbook entry", weeklyLogID)
	}
	defer rows.Close()

	var out []domain.LogbookEntry
	for rows.Next() {
		var e domain.LogbookEntry
		if err := rows.Scan(
			&e.ID, &e.WeeklyLogID, &e.Description, &e.Feedback, &e.IsImmutable,
			&e.Signature, &e.OriginalSignature, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, postgres.MapError(err, "logbook entry", weeklyLogID)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "logbook entry", weeklyLogID)
	}
	return out, nil
}

func (r *Repo) CountByWeeklyLogID(ctx context.Context, weeklyLogID uuid.UUID) (int, error) {
	return r.count(ctx, countByWeeklyLogIDSQL, weeklyLogID)
}

func (r *Repo) CountMutableByWeeklyLogID(ctx context.Context, weeklyLogID uuid.UUID) (int, error) {
	return r.count(ctx, countMutableByWeeklyLogIDSQL, weeklyLogID)
}

// UpdateContent overwrites the entry content and the current signature.
// The original signature column is never touched after creation.
func (r *Repo) UpdateContent(ctx context.Context, entryID uuid.UUID, description, feedback, signature string) (*domain.LogbookEntry, error) {
	return r.scanOne(ctx, updateContentSQL, entryID,
		entryID, description, feedback, signature,
	)
}

// Seal flips the entry immutable. One-way: nothing ever clears the flag.
func (r *Repo) Seal(ctx context.Context, entryID uuid.UUID) error {
	return r.exec(ctx, sealSQL, entryID)
}

func (r *Repo) Delete(ctx context.Context, entryID uuid.UUID) error {
	return r.exec(ctx, deleteSQL, entryID)
}

func (r *Repo) exec(ctx context.Context, sql string, entryID uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, sql, entryID)
	if err != nil {
		return postgres.MapError(err, "logbook entry", entryID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("logbook entry %s: %w", entryID, domain.ErrNotFound)
	}
	return nil
}

func (r *Repo) count(ctx context.Context, sql string, weeklyLogID uuid.UUID) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var n int
	if err := q.QueryRow(ctx, sql, weeklyLogID).Scan(&n); err != nil {
		return 0, postgres.MapError(err, "logbook entry", weeklyLogID)
	}
	return n, nil
}

func (r *Repo) scanOne(ctx context.Context, sql string, errID uuid.UUID, args ...any) (*domain.LogbookEntry, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var e domain.LogbookEntry
	err := q.QueryRow(ctx, sql, args...).Scan(
		&e.ID, &e.WeeklyLogID, &e.Description, &e.Feedback, &e.IsImmutable,
		&e.Signature, &e.OriginalSignature, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, postgres.MapError(err, "logbook entry", errID)
	}
	return &e, nil
}
