// Package internship implements the read-only Internship repository.
// The logbook core reads internship status and dates but never writes
// them; lifecycle management lives with the academic administration.
package internship

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/internlog/internlog-backend/internal/adapter/postgres"
	"github.com/internlog/internlog-backend/internal/domain"
)

// Repo provides internship persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new internship repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const internshipColumns = `id, student_id, supervisor_id, status, start_date, end_date, created_at, updated_at`

const getByIDSQL = `
SELECT ` + internshipColumns + `
FROM internships
WHERE id = $1`

func (r *Repo) GetByID(ctx context.Context, internshipID uuid.UUID) (*domain.Internship, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var i domain.Internship
	err := q.QueryRow(ctx, getByIDSQL, internshipID).Scan(
		&i.ID, &i.StudentID, &i.SupervisorID, &i.Status,
		&i.StartDate, &i.EndDate, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, postgres.MapError(err, "internship", internshipID)
	}
	return &i, nil
}

// List returns internships matching the filter, newest first.
func (r *Repo) List(ctx context.Context, filter domain.InternshipFilter) ([]domain.Internship, error) {
	builder := squirrel.Select(
		"id", "student_id", "supervisor_id", "status",
		"start_date", "end_date", "created_at", "updated_at",
	).
		From("internships").
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar)

	if filter.StudentID != uuid.Nil {
		builder = builder.Where(squirrel.Eq{"student_id": filter.StudentID})
	}
	if filter.SupervisorID != uuid.Nil {
		builder = builder.Where(squirrel.Eq{"supervisor_id": filter.SupervisorID})
	}
	if filter.Status != "" {
		builder = builder.Where(squirrel.Eq{"status": filter.Status})
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build internship list query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "internship", uuid.Nil)
	}
	defer rows.Close()

	var out []domain.Internship
	for rows.Next() {
		var i domain.Internship
		if err := rows.Scan(
			&i.ID, &i.StudentID, &i.SupervisorID, &i.Status,
			&i.StartDate, &i.EndDate, &i.CreatedAt, &i.UpdatedAt,
		); err != nil {
			return nil, postgres.MapError(err, "internship", uuid.Nil)
		}
		out = append(out, i)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "internship", uuid.Nil)
	}
	return out, nil
}
