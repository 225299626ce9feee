// Package student implements the Student repository using PostgreSQL.
package student

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/internlog/internlog-backend/internal/adapter/postgres"
	"github.com/internlog/internlog-backend/internal/domain"
)

// Repo provides student persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new student repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const studentColumns = `id, user_id, matricule_num, public_key,
       COALESCE(encrypted_private_key, ''::bytea), created_at, updated_at`

const getByIDSQL = `
SELECT ` + studentColumns + `
FROM students
WHERE id = $1`

const getByIDForUpdateSQL = getByIDSQL + `
FOR UPDATE`

const getByUserIDSQL = `
SELECT ` + studentColumns + `
FROM students
WHERE user_id = $1`

const setKeypairSQL = `
UPDATE students
SET public_key = $2, encrypted_private_key = $3, updated_at = now()
WHERE id = $1`

const createSQL = `
INSERT INTO students (user_id, matricule_num)
VALUES ($1, $2)
RETURNING ` + studentColumns

func (r *Repo) GetByID(ctx context.Context, studentID uuid.UUID) (*domain.Student, error) {
	return r.scanOne(ctx, getByIDSQL, studentID, studentID)
}

// GetByIDForUpdate locks the student row for the rest of the
// transaction. Used to serialize keypair issuance.
func (r *Repo) GetByIDForUpdate(ctx context.Context, studentID uuid.UUID) (*domain.Student, error) {
	return r.scanOne(ctx, getByIDForUpdateSQL, studentID, studentID)
}

func (r *Repo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Student, error) {
	return r.scanOne(ctx, getByUserIDSQL, userID, userID)
}

// SetKeypair stores the public key in clear and the encrypted private
// scalar. The one-keypair-ever rule is enforced by the custody service
// under the row lock, not here.
func (r *Repo) SetKeypair(ctx context.Context, studentID uuid.UUID, publicKey string, encryptedPrivateKey []byte) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, setKeypairSQL, studentID, publicKey, encryptedPrivateKey)
	if err != nil {
		return postgres.MapError(err, "student", studentID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("student %s: %w", studentID, domain.ErrNotFound)
	}
	return nil
}

func (r *Repo) Create(ctx context.Context, userID uuid.UUID, matriculeNum string) (*domain.Student, error) {
	return r.scanOne(ctx, createSQL, userID, userID, matriculeNum)
}

func (r *Repo) scanOne(ctx context.Context, sql string, errID uuid.UUID, args ...any) (*domain.Student, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var s domain.Student
	err := q.QueryRow(ctx, sql, args...).Scan(
		&s.ID, &s.UserID, &s.MatriculeNum, &s.PublicKey,
		&s.EncryptedPrivateKey, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, postgres.MapError(err, "student", errID)
	}
	return &s, nil
}
