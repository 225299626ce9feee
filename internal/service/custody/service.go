// Package custody issues and guards the per-student signing keypairs.
//
// The public key is stored in clear; the private key only ever exists in
// plaintext inside a single WithPrivateKey call frame. It is never
// cached, logged, or returned across a suspension point.
package custody

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/internlog/internlog-backend/internal/domain"
	"github.com/internlog/internlog-backend/internal/signature"
)

type studentRepo interface {
	GetByID(ctx context.Context, studentID uuid.UUID) (*domain.Student, error)
	GetByIDForUpdate(ctx context.Context, studentID uuid.UUID) (*domain.Student, error)
	SetKeypair(ctx context.Context, studentID uuid.UUID, publicKey string, encryptedPrivateKey []byte) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service is the key custody service.
type Service struct {
	students studentRepo
	tx       txManager
	box      *keyBox
	log      *slog.Logger
}

// NewService creates the custody service. masterKey is the decoded
// process-wide custody secret from configuration.
func NewService(logger *slog.Logger, students studentRepo, tx txManager, masterKey []byte) (*Service, error) {
	box, err := newKeyBox(masterKey)
	if err != nil {
		return nil, err
	}
	return &Service{
		students: students,
		tx:       tx,
		box:      box,
		log:      logger.With("service", "custody"),
	}, nil
}

// IssueKeypair generates a P-256 keypair for the student, persisting the
// public key in clear and the private scalar encrypted. One-way: a
// student who already holds a keypair gets domain.ErrKeypairExists, so a
// silent key rotation can never repudiate earlier signatures.
//
// Runs inside a transaction; callers performing role activation should
// invoke it within their own unit of work so a failure rolls the whole
// activation back.
func (s *Service) IssueKeypair(ctx context.Context, studentID uuid.UUID) (string, error) {
	var publicKeyHex string

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		student, err := s.students.GetByIDForUpdate(txCtx, studentID)
		if err != nil {
			return fmt.Errorf("get student: %w", err)
		}
		if student.HasKeypair() {
			return domain.ErrKeypairExists
		}

		priv, err := signature.GenerateKey()
		if err != nil {
			return err
		}

		scalarHex := signature.EncodePrivateKey(priv)
		sealed, err := s.box.seal([]byte(scalarHex))
		if err != nil {
			return err
		}

		publicKeyHex = signature.EncodePublicKey(&priv.PublicKey)
		if err := s.students.SetKeypair(txCtx, studentID, publicKeyHex, sealed); err != nil {
			return fmt.Errorf("store keypair: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.log.InfoContext(ctx, "keypair issued", slog.String("student_id", studentID.String()))
	return publicKeyHex, nil
}

// WithPrivateKey decrypts the student's custodial key and hands it to fn
// for the duration of the call only. fn must not retain the key.
// Decryption failure maps to domain.ErrDecryption, which upstream treats
// as a security-relevant failure rather than a soft error.
func (s *Service) WithPrivateKey(ctx context.Context, studentID uuid.UUID, fn func(priv *ecdsa.PrivateKey) error) error {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return fmt.Errorf("get student: %w", err)
	}
	if len(student.EncryptedPrivateKey) == 0 {
		return fmt.Errorf("student %s: %w", studentID, domain.ErrNotFound)
	}

	scalarHex, err := s.box.open(student.EncryptedPrivateKey)
	if err != nil {
		s.log.ErrorContext(ctx, "custodial key decryption failed",
			slog.String("student_id", studentID.String()))
		return domain.ErrDecryption
	}

	priv, err := signature.DecodePrivateKey(string(scalarHex))
	if err != nil {
		s.log.ErrorContext(ctx, "custodial key material corrupt",
			slog.String("student_id", studentID.String()))
		return domain.ErrDecryption
	}

	return fn(priv)
}

// PublicKey returns the student's verification key.
func (s *Service) PublicKey(ctx context.Context, studentID uuid.UUID) (*ecdsa.PublicKey, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	if student.PublicKey == "" {
		return nil, fmt.Errorf("student %s has no keypair: %w", studentID, domain.ErrNotFound)
	}

	pub, err := signature.DecodePublicKey(student.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("stored public key corrupt: %w", domain.ErrDecryption)
	}
	return pub, nil
}
