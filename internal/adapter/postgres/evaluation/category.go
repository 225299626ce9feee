package evaluation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/internlog/internlog-backend/internal/adapter/postgres"
	"github.com/internlog/internlog-backend/internal/domain"
)

// CategoryRepo provides evaluation category persistence.
type CategoryRepo struct {
	pool *pgxpool.Pool
}

// NewCategoryRepo creates a new category repository.
func NewCategoryRepo(pool *pgxpool.Pool) *CategoryRepo {
	return &CategoryRepo{pool: pool}
}

const categoryColumns = `id, evaluation_id, template_id, subfields_total, created_at`

const createCategorySQL = `
INSERT INTO evaluation_categories (id, evaluation_id, template_id, subfields_total)
VALUES ($1, $2, $3, $4)
RETURNING ` + categoryColumns

const getCategoryByIDSQL = `
SELECT ` + categoryColumns + `
FROM evaluation_categories
WHERE id = $1`

const listCategoriesByEvaluationIDSQL = `
SELECT c.id, c.evaluation_id, c.template_id, c.subfields_total, c.created_at
FROM evaluation_categories c
JOIN evaluation_templates t ON c.template_id = t.id
WHERE c.evaluation_id = $1
ORDER BY t.ord`

const setSubfieldsTotalSQL = `
UPDATE evaluation_categories
SET subfields_total = $2
WHERE id = $1`

func (r *CategoryRepo) Create(ctx context.Context, category *domain.EvaluationCategory) (*domain.EvaluationCategory, error) {
	return r.scanOne(ctx, createCategorySQL, category.EvaluationID,
		category.ID, category.EvaluationID, category.TemplateID, category.SubfieldsTotal,
	)
}

func (r *CategoryRepo) GetByID(ctx context.Context, categoryID uuid.UUID) (*domain.EvaluationCategory, error) {
	return r.scanOne(ctx, getCategoryByIDSQL, categoryID, categoryID)
}

// ListByEvaluationID returns the categories in rubric display order.
func (r *CategoryRepo) ListByEvaluationID(ctx context.Context, evaluationID uuid.UUID) ([]domain.EvaluationCategory, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, listCategoriesByEvaluationIDSQL, evaluationID)
	if err != nil {
		return nil, postgres.MapError(err, "evaluation category", evaluationID)
	}
	defer rows.Close()

	var out []domain.EvaluationCategory
	for rows.Next() {
		var c domain.EvaluationCategory
		if err := rows.Scan(
			&c.ID, &c.EvaluationID, &c.TemplateID, &c.SubfieldsTotal, &c.CreatedAt,
		); err != nil {
			return nil, postgres.MapError(err, "evaluation category", evaluationID)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "evaluation category", evaluationID)
	}
	return out, nil
}

func (r *CategoryRepo) SetSubfieldsTotal(ctx context.Context, categoryID uuid.UUID, total int) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, setSubfieldsTotalSQL, categoryID, total)
	if err != nil {
		return postgres.MapError(err, "evaluation category", categoryID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("evaluation category %s: %w", categoryID, domain.ErrNotFound)
	}
	return nil
}

func (r *CategoryRepo) scanOne(ctx context.Context, sql string, errID uuid.UUID, args ...any) (*domain.EvaluationCategory, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var c domain.EvaluationCategory
	err := q.QueryRow(ctx, sql, args...).Scan(
		&c.ID, &c.EvaluationID, &c.TemplateID, &c.SubfieldsTotal, &c.CreatedAt,
	)
	if err != nil {
		return nil, postgres.MapError(err, "evaluation category", errID)
	}
	return &c, nil
}
