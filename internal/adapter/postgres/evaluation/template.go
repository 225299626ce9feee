package evaluation

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/internlog/internlog-backend/internal/adapter/postgres"
	"github.com/internlog/internlog-backend/internal/domain"
)

// TemplateRepo reads the static rubric reference data.
type TemplateRepo struct {
	pool *pgxpool.Pool
}

// NewTemplateRepo creates a new template repository.
func NewTemplateRepo(pool *pgxpool.Pool) *TemplateRepo {
	return &TemplateRepo{pool: pool}
}

const listTemplatesSQL = `
SELECT id, name, ord
FROM evaluation_templates
ORDER BY ord`

const listSubfieldTemplatesSQL = `
SELECT id, template_id, name, ord
FROM evaluation_subfield_templates
WHERE template_id = $1
ORDER BY ord`

func (r *TemplateRepo) ListTemplates(ctx context.Context) ([]domain.EvaluationTemplate, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, listTemplatesSQL)
	if err != nil {
		return nil, postgres.MapError(err, "evaluation template", uuid.Nil)
	}
	defer rows.Close()

	var out []domain.EvaluationTemplate
	for rows.Next() {
		var t domain.EvaluationTemplate
		if err := rows.Scan(&t.ID, &t.Name, &t.Order); err != nil {
			return nil, postgres.MapError(err, "evaluation template", uuid.Nil)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "evaluation template", uuid.Nil)
	}
	return out, nil
}

func (r *TemplateRepo) ListSubfieldTemplates(ctx context.Context, templateID uuid.UUID) ([]domain.EvaluationSubfieldTemplate, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, listSubfieldTemplatesSQL, templateID)
	if err != nil {
		return nil, postgres.MapError(err, "evaluation subfield template", templateID)
	}
	defer rows.Close()

	var out []domain.EvaluationSubfieldTemplate
	for rows.Next() {
		var t domain.EvaluationSubfieldTemplate
		if err := rows.Scan(&t.ID, &t.TemplateID, &t.Name, &t.Order); err != nil {
			return nil, postgres.MapError(err, "evaluation subfield template", templateID)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "evaluation subfield template", templateID)
	}
	return out, nil
}
