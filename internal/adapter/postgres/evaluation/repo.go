// Package evaluation implements the evaluation repositories using
// PostgreSQL: the evaluation root, its categories and subfields, and
// the static rubric templates.
package evaluation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/internlog/internlog-backend/internal/adapter/postgres"
	"github.com/internlog/internlog-backend/internal/domain"
)

// Repo provides evaluation root persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new evaluation repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const evaluationColumns = `id, internship_id, total_score, comments, created_at, updated_at`

const createSQL = `
INSERT INTO evaluations (id, internship_id, total_score, comments)
VALUES ($1, $2, $3, $4)
RETURNING ` + evaluationColumns

const getByIDSQL = `
SELECT ` + evaluationColumns + `
FROM evaluations
WHERE id = $1`

const getByInternshipIDSQL = `
SELECT ` + evaluationColumns + `
FROM evaluations
WHERE internship_id = $1`

const getByIDForUpdateSQL = getByIDSQL + `
FOR UPDATE`

const setTotalScoreSQL = `
UPDATE evaluations
SET total_score = $2, updated_at = now()
WHERE id = $1`

// Create inserts the evaluation root. The unique constraint on
// internship_id enforces one evaluation per internship, surfaced as
// domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, eval *domain.Evaluation) (*domain.Evaluation, error) {
	return r.scanOne(ctx, createSQL, eval.InternshipID,
		eval.ID, eval.InternshipID, eval.TotalScore, eval.Comments,
	)
}

func (r *Repo) GetByID(ctx context.Context, evaluationID uuid.UUID) (*domain.Evaluation, error) {
	return r.scanOne(ctx, getByIDSQL, evaluationID, evaluationID)
}

func (r *Repo) GetByInternshipID(ctx context.Context, internshipID uuid.UUID) (*domain.Evaluation, error) {
	return r.scanOne(ctx, getByInternshipIDSQL, internshipID, internshipID)
}

// GetByIDForUpdate locks the evaluation row for the duration of the
// surrounding transaction. Score corrections take this lock so sibling
// reads during the recompute see committed values only.
func (r *Repo) GetByIDForUpdate(ctx context.Context, evaluationID uuid.UUID) (*domain.Evaluation, error) {
	return r.scanOne(ctx, getByIDForUpdateSQL, evaluationID, evaluationID)
}

func (r *Repo) SetTotalScore(ctx context.Context, evaluationID uuid.UUID, total int) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, setTotalScoreSQL, evaluationID, total)
	if err != nil {
		return postgres.MapError(err, "evaluation", evaluationID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("evaluation %s: %w", evaluationID, domain.ErrNotFound)
	}
	return nil
}

func (r *Repo) scanOne(ctx context.Context, sql string, errID uuid.UUID, args ...any) (*domain.Evaluation, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var e domain.Evaluation
	err := q.QueryRow(ctx, sql, args...).Scan(
		&e.ID, &e.InternshipID, &e.TotalScore, &e.Comments, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, postgres.MapError(err, "evaluation", errID)
	}
	return &e, nil
}
