package logbook

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/internlog/internlog-backend/internal/domain"
	"github.com/internlog/internlog-backend/internal/notify"
	"github.com/internlog/internlog-backend/internal/signature"
	"github.com/internlog/internlog-backend/pkg/ctxutil"
)

// UpdateEntryInput is a partial entry patch. Which field an actor may
// set depends on their role.
type UpdateEntryInput struct {
	Description *string
	Feedback    *string
}

// CreateEntry records a day-level activity entry and signs it with the
// student's custodial key in the same transaction. The parent weekly log
// row is locked to serialize the capacity check; a signing failure
// aborts the insert, an entry is never persisted unsigned.
func (s *Service) CreateEntry(ctx context.Context, actor ctxutil.Actor, weeklyLogID uuid.UUID, description string) (*domain.LogbookEntry, error) {
	if strings.TrimSpace(description) == "" {
		return nil, domain.NewValidationError("description", "must not be empty")
	}

	var created *domain.LogbookEntry
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		scope, err := s.loadWeekScope(txCtx, weeklyLogID, true)
		if err != nil {
			return err
		}
		if _, err := s.requireStudentOwner(txCtx, actor, scope.internship); err != nil {
			return err
		}
		if scope.internship.Ended(s.now()) {
			return fmt.Errorf("internship has ended: %w", domain.ErrOutOfRange)
		}
		if scope.week.Status != domain.ApprovalStatusPending {
			return fmt.Errorf("week already %s: %w", scope.week.Status, domain.ErrImmutable)
		}

		count, err := s.entries.CountByWeeklyLogID(txCtx, weeklyLogID)
		if err != nil {
			return fmt.Errorf("count entries: %w", err)
		}
		if count >= domain.MaxEntriesPerWeek {
			return fmt.Errorf("week %d: %w", scope.week.WeekNo, domain.ErrCapacityExceeded)
		}

		entry := &domain.LogbookEntry{
			ID:          uuid.New(),
			WeeklyLogID: weeklyLogID,
			Description: description,
			CreatedAt:   s.now().UTC(),
		}

		err = s.custody.WithPrivateKey(txCtx, scope.internship.StudentID, func(priv *ecdsa.PrivateKey) error {
			sig, signErr := signature.Sign(entry.SignedMessage(), priv)
			if signErr != nil {
				return fmt.Errorf("sign entry: %w", signErr)
			}
			entry.Signature = sig
			entry.OriginalSignature = sig
			return nil
		})
		if err != nil {
			return err
		}

		created, err = s.entries.Create(txCtx, entry)
		if err != nil {
			return fmt.Errorf("create entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "entry created",
		"entry_id", created.ID, "weekly_log_id", weeklyLogID)
	return created, nil
}

// GetEntry returns a single entry.
func (s *Service) GetEntry(ctx context.Context, actor ctxutil.Actor, entryID uuid.UUID) (*domain.LogbookEntry, error) {
	entry, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	scope, err := s.loadWeekScope(ctx, entry.WeeklyLogID, false)
	if err != nil {
		return nil, err
	}
	if err := s.requireReadAccess(ctx, actor, scope.internship); err != nil {
		return nil, err
	}
	return entry, nil
}

// UpdateEntry patches a mutable entry. The owning student may amend the
// description; the assigned supervisor may annotate feedback. Every
// successful update re-signs the entry content with the student's
// custodial key so the chain stays machine-verifiable; the original
// signature is retained untouched for audit.
func (s *Service) UpdateEntry(ctx context.Context, actor ctxutil.Actor, entryID uuid.UUID, input UpdateEntryInput) (*domain.LogbookEntry, error) {
	if input.Description == nil && input.Feedback == nil {
		return nil, domain.NewValidationError("patch", "no fields to update")
	}

	var updated *domain.LogbookEntry
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		entry, err := s.entries.GetByIDForUpdate(txCtx, entryID)
		if err != nil {
			return fmt.Errorf("get entry: %w", err)
		}
		if entry.IsImmutable {
			return domain.ErrImmutable
		}

		scope, err := s.loadWeekScope(txCtx, entry.WeeklyLogID, false)
		if err != nil {
			return err
		}

		switch domain.Role(actor.Role) {
		case domain.RoleStudent:
			if input.Feedback != nil {
				return domain.ErrForbidden
			}
			if _, err := s.requireStudentOwner(txCtx, actor, scope.internship); err != nil {
				return err
			}
			if scope.internship.Ended(s.now()) {
				return fmt.Errorf("internship has ended: %w", domain.ErrOutOfRange)
			}
			if strings.TrimSpace(*input.Description) == "" {
				return domain.NewValidationError("description", "must not be empty")
			}
			entry.Description = *input.Description
		case domain.RoleSupervisor:
			if input.Description != nil {
				return domain.ErrForbidden
			}
			if _, err := s.requireAssignedSupervisor(txCtx, actor, scope.internship); err != nil {
				return err
			}
			entry.Feedback = *input.Feedback
		default:
			return domain.ErrForbidden
		}

		err = s.custody.WithPrivateKey(txCtx, scope.internship.StudentID, func(priv *ecdsa.PrivateKey) error {
			sig, signErr := signature.Sign(entry.SignedMessage(), priv)
			if signErr != nil {
				return fmt.Errorf("re-sign entry: %w", signErr)
			}
			entry.Signature = sig
			return nil
		})
		if err != nil {
			return err
		}

		updated, err = s.entries.UpdateContent(txCtx, entryID, entry.Description, entry.Feedback, entry.Signature)
		if err != nil {
			return fmt.Errorf("update entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "entry updated", "entry_id", entryID)
	return updated, nil
}

// ApproveEntry seals an entry. The signature must be present and verify
// against the student's public key over the current content; once sealed
// the entry is immutable for good.
func (s *Service) ApproveEntry(ctx context.Context, actor ctxutil.Actor, entryID uuid.UUID) error {
	var studentID uuid.UUID

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		entry, err := s.entries.GetByIDForUpdate(txCtx, entryID)
		if err != nil {
			return fmt.Errorf("get entry: %w", err)
		}
		if entry.IsImmutable {
			return fmt.Errorf("entry already sealed: %w", domain.ErrImmutable)
		}

		scope, err := s.loadWeekScope(txCtx, entry.WeeklyLogID, false)
		if err != nil {
			return err
		}
		if _, err := s.requireAssignedSupervisor(txCtx, actor, scope.internship); err != nil {
			return err
		}

		if entry.Signature == "" {
			return fmt.Errorf("entry has no signature: %w", domain.ErrInvalidSignature)
		}
		pub, err := s.custody.PublicKey(txCtx, scope.internship.StudentID)
		if err != nil {
			return fmt.Errorf("get student public key: %w", err)
		}
		if !signature.Verify(entry.SignedMessage(), entry.Signature, pub) {
			return fmt.Errorf("signature does not verify: %w", domain.ErrInvalidSignature)
		}

		if err := s.entries.Seal(txCtx, entryID); err != nil {
			return fmt.Errorf("seal entry: %w", err)
		}
		studentID = scope.internship.StudentID
		return nil
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "entry sealed", "entry_id", entryID)
	s.notifyBestEffort(ctx, notify.Notification{
		Event:       notify.EventEntrySealed,
		RecipientID: studentID,
		EntityID:    entryID,
	})
	return nil
}

// DeleteEntry removes a mutable entry. Only the owning student may
// delete, and only before sealing.
func (s *Service) DeleteEntry(ctx context.Context, actor ctxutil.Actor, entryID uuid.UUID) error {
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		entry, err := s.entries.GetByIDForUpdate(txCtx, entryID)
		if err != nil {
			return fmt.Errorf("get entry: %w", err)
		}
		if entry.IsImmutable {
			return domain.ErrImmutable
		}

		scope, err := s.loadWeekScope(txCtx, entry.WeeklyLogID, false)
		if err != nil {
			return err
		}
		if _, err := s.requireStudentOwner(txCtx, actor, scope.internship); err != nil {
			return err
		}
		if scope.internship.Ended(s.now()) {
			return fmt.Errorf("internship has ended: %w", domain.ErrOutOfRange)
		}

		if err := s.entries.Delete(txCtx, entryID); err != nil {
			return fmt.Errorf("delete entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "entry deleted", "entry_id", entryID)
	return nil
}
