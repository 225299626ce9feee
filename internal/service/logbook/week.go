package logbook

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/internlog/internlog-backend/internal/domain"
	"github.com/internlog/internlog-backend/internal/notify"
	"github.com/internlog/internlog-backend/pkg/ctxutil"
)

// CreateWeek opens the weekly log for the current calendar week of the
// internship. The week number is computed from the clock, never supplied
// by the client, which makes creation idempotent by calendar position:
// a second call in the same week fails with domain.ErrWeekExists off the
// store's unique constraint rather than a check-then-insert.
func (s *Service) CreateWeek(ctx context.Context, actor ctxutil.Actor, logbookID uuid.UUID) (*domain.WeeklyLog, error) {
	logbook, err := s.logbooks.GetByID(ctx, logbookID)
	if err != nil {
		return nil, fmt.Errorf("get logbook: %w", err)
	}
	internship, err := s.internships.GetByID(ctx, logbook.InternshipID)
	if err != nil {
		return nil, fmt.Errorf("get internship: %w", err)
	}
	if _, err := s.requireStudentOwner(ctx, actor, internship); err != nil {
		return nil, err
	}

	today := s.now()
	if !internship.ContainsDate(today) {
		return nil, fmt.Errorf("today is outside the internship dates: %w", domain.ErrOutOfRange)
	}
	weekNo := domain.WeekNumber(internship.StartDate, today)

	week, err := s.weeks.Create(ctx, logbookID, weekNo)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, fmt.Errorf("week %d: %w", weekNo, domain.ErrWeekExists)
		}
		return nil, fmt.Errorf("create week %d: %w", weekNo, err)
	}

	s.log.InfoContext(ctx, "weekly log created",
		"weekly_log_id", week.ID, "logbook_id", logbookID, "week_no", weekNo)
	return week, nil
}

// GetWeek returns a weekly log with its entries.
func (s *Service) GetWeek(ctx context.Context, actor ctxutil.Actor, weeklyLogID uuid.UUID) (*domain.WeekWithEntries, error) {
	scope, err := s.loadWeekScope(ctx, weeklyLogID, false)
	if err != nil {
		return nil, err
	}
	if err := s.requireReadAccess(ctx, actor, scope.internship); err != nil {
		return nil, err
	}
	entries, err := s.entries.ListByWeeklyLogID(ctx, weeklyLogID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return &domain.WeekWithEntries{WeeklyLog: *scope.week, Entries: entries}, nil
}

// ApproveWeek transitions a weekly log to approved. Requires every child
// entry to be sealed; an unsealed entry fails the whole approval with
// domain.ErrIncompleteEntries. The supervisor comment is stored and the
// parent logbook status is recomputed in the same transaction. Approval
// of already-complete work remains valid after the internship end date.
func (s *Service) ApproveWeek(ctx context.Context, actor ctxutil.Actor, weeklyLogID uuid.UUID, comment string) error {
	var studentID uuid.UUID

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		scope, err := s.loadWeekScope(txCtx, weeklyLogID, true)
		if err != nil {
			return err
		}
		if _, err := s.requireAssignedSupervisor(txCtx, actor, scope.internship); err != nil {
			return err
		}
		if scope.week.Status != domain.ApprovalStatusPending {
			return fmt.Errorf("week already %s: %w", scope.week.Status, domain.ErrImmutable)
		}

		mutable, err := s.entries.CountMutableByWeeklyLogID(txCtx, weeklyLogID)
		if err != nil {
			return fmt.Errorf("count mutable entries: %w", err)
		}
		if mutable > 0 {
			return fmt.Errorf("%d entries unsealed: %w", mutable, domain.ErrIncompleteEntries)
		}

		if err := s.weeks.SetStatus(txCtx, weeklyLogID, domain.ApprovalStatusApproved, comment); err != nil {
			return fmt.Errorf("set week status: %w", err)
		}
		studentID = scope.internship.StudentID
		return s.recomputeLogbookStatus(txCtx, scope.logbook.ID)
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "weekly log approved", "weekly_log_id", weeklyLogID)
	s.notifyBestEffort(ctx, notify.Notification{
		Event:       notify.EventWeekApproved,
		RecipientID: studentID,
		EntityID:    weeklyLogID,
		Comment:     comment,
	})
	return nil
}

// RejectWeek transitions a weekly log to rejected. No entry-completeness
// requirement: a supervisor can bounce a week back at any point before
// approval. Blocked after the internship end date, since the resulting
// state is not an approval of finished work.
func (s *Service) RejectWeek(ctx context.Context, actor ctxutil.Actor, weeklyLogID uuid.UUID, comment string) error {
	var studentID uuid.UUID

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		scope, err := s.loadWeekScope(txCtx, weeklyLogID, true)
		if err != nil {
			return err
		}
		if _, err := s.requireAssignedSupervisor(txCtx, actor, scope.internship); err != nil {
			return err
		}
		if scope.week.Status != domain.ApprovalStatusPending {
			return fmt.Errorf("week already %s: %w", scope.week.Status, domain.ErrImmutable)
		}
		if scope.internship.Ended(s.now()) {
			return fmt.Errorf("internship has ended: %w", domain.ErrOutOfRange)
		}

		if err := s.weeks.SetStatus(txCtx, weeklyLogID, domain.ApprovalStatusRejected, comment); err != nil {
			return fmt.Errorf("set week status: %w", err)
		}
		studentID = scope.internship.StudentID
		return s.recomputeLogbookStatus(txCtx, scope.logbook.ID)
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "weekly log rejected", "weekly_log_id", weeklyLogID)
	s.notifyBestEffort(ctx, notify.Notification{
		Event:       notify.EventWeekRejected,
		RecipientID: studentID,
		EntityID:    weeklyLogID,
		Comment:     comment,
	})
	return nil
}
