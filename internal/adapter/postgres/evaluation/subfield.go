package evaluation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/internlog/internlog-backend/internal/adapter/postgres"
	"github.com/internlog/internlog-backend/internal/domain"
)

// SubfieldRepo provides evaluation subfield persistence.
type SubfieldRepo struct {
	pool *pgxpool.Pool
}

// NewSubfieldRepo creates a new subfield repository.
func NewSubfieldRepo(pool *pgxpool.Pool) *SubfieldRepo {
	return &SubfieldRepo{pool: pool}
}

const subfieldColumns = `id, category_id, template_id, score, created_at`

const createSubfieldSQL = `
INSERT INTO evaluation_category_subfields (id, category_id, template_id, score)
VALUES ($1, $2, $3, $4)
RETURNING ` + subfieldColumns

const getSubfieldByIDForUpdateSQL = `
SELECT ` + subfieldColumns + `
FROM evaluation_category_subfields
WHERE id = $1
FOR UPDATE`

const listSubfieldsByCategoryIDSQL = `
SELECT s.id, s.category_id, s.template_id, s.score, s.created_at
FROM evaluation_category_subfields s
JOIN evaluation_subfield_templates t ON s.template_id = t.id
WHERE s.category_id = $1
ORDER BY t.ord`

const setScoreSQL = `
UPDATE evaluation_category_subfields
SET score = $2
WHERE id = $1`

func (r *SubfieldRepo) Create(ctx context.Context, subfield *domain.EvaluationCategorySubfield) (*domain.EvaluationCategorySubfield, error) {
	return r.scanOne(ctx, createSubfieldSQL, subfield.CategoryID,
		subfield.ID, subfield.CategoryID, subfield.TemplateID, subfield.Score,
	)
}

// GetByIDForUpdate locks the subfield row; the administrative
// correction path serializes on it.
func (r *SubfieldRepo) GetByIDForUpdate(ctx context.Context, subfieldID uuid.UUID) (*domain.EvaluationCategorySubfield, error) {
	return r.scanOne(ctx, getSubfieldByIDForUpdateSQL, subfieldID, subfieldID)
}

// ListByCategoryID returns the subfields in rubric display order.
func (r *SubfieldRepo) ListByCategoryID(ctx context.Context, categoryID uuid.UUID) ([]domain.EvaluationCategorySubfield, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, listSubfieldsByCategoryIDSQL, categoryID)
	if err != nil {
		return nil, postgres.MapError(err, "evaluation subfield", categoryID)
	}
	defer rows.Close()

	var out []domain.EvaluationCategorySubfield
	for rows.Next() {
		var s domain.EvaluationCategorySubfield
		if err := rows.Scan(
			&s.ID, &s.CategoryID, &s.TemplateID, &s.Score, &s.CreatedAt,
		); err != nil {
			return nil, postgres.MapError(err, "evaluation subfield", categoryID)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "evaluation subfield", categoryID)
	}
	return out, nil
}

func (r *SubfieldRepo) SetScore(ctx context.Context, subfieldID uuid.UUID, score int) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, setScoreSQL, subfieldID, score)
	if err != nil {
		return postgres.MapError(err, "evaluation subfield", subfieldID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("evaluation subfield %s: %w", subfieldID, domain.ErrNotFound)
	}
	return nil
}

func (r *SubfieldRepo) scanOne(ctx context.Context, sql string, errID uuid.UUID, args ...any) (*domain.EvaluationCategorySubfield, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var s domain.EvaluationCategorySubfield
	err := q.QueryRow(ctx, sql, args...).Scan(
		&s.ID, &s.CategoryID, &s.TemplateID, &s.Score, &s.CreatedAt,
	)
	if err != nil {
		return nil, postgres.MapError(err, "evaluation subfield", errID)
	}
	return &s, nil
}
