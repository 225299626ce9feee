package logbook

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/internlog/internlog-backend/internal/domain"
	"github.com/internlog/internlog-backend/pkg/ctxutil"
)

// GetOrCreate returns the internship's logbook, creating it on first
// access. Concurrent first accesses collapse on the unique constraint:
// the loser observes domain.ErrAlreadyExists from the store and re-reads
// the winner's row.
func (s *Service) GetOrCreate(ctx context.Context, actor ctxutil.Actor, internshipID uuid.UUID) (*domain.Logbook, error) {
	internship, err := s.internships.GetByID(ctx, internshipID)
	if err != nil {
		return nil, fmt.Errorf("get internship: %w", err)
	}
	if err := s.requireReadAccess(ctx, actor, internship); err != nil {
		return nil, err
	}

	logbook, err := s.logbooks.GetByInternshipID(ctx, internshipID)
	if err == nil {
		return logbook, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get logbook: %w", err)
	}

	// A new logbook starts pending, so first access after the internship
	// ends must not create one.
	if internship.Ended(s.now()) {
		return nil, fmt.Errorf("internship %s ended: %w", internshipID, domain.ErrOutOfRange)
	}

	logbook, err = s.logbooks.Create(ctx, internshipID)
	if err == nil {
		s.log.InfoContext(ctx, "logbook created",
			"logbook_id", logbook.ID, "internship_id", internshipID)
		return logbook, nil
	}
	if errors.Is(err, domain.ErrAlreadyExists) {
		// Lost the creation race; the winner's row is authoritative.
		logbook, err = s.logbooks.GetByInternshipID(ctx, internshipID)
		if err != nil {
			return nil, fmt.Errorf("get logbook after conflict: %w", err)
		}
		return logbook, nil
	}
	return nil, fmt.Errorf("create logbook: %w", err)
}

// GetLogbookTree returns the full read-only tree (weeks with their
// entries, ordered by creation) for rendering and reporting.
func (s *Service) GetLogbookTree(ctx context.Context, actor ctxutil.Actor, logbookID uuid.UUID) (*domain.LogbookTree, error) {
	logbook, err := s.logbooks.GetByID(ctx, logbookID)
	if err != nil {
		return nil, fmt.Errorf("get logbook: %w", err)
	}
	internship, err := s.internships.GetByID(ctx, logbook.InternshipID)
	if err != nil {
		return nil, fmt.Errorf("get internship: %w", err)
	}
	if err := s.requireReadAccess(ctx, actor, internship); err != nil {
		return nil, err
	}

	weeks, err := s.weeks.ListByLogbookID(ctx, logbookID)
	if err != nil {
		return nil, fmt.Errorf("list weeks: %w", err)
	}

	tree := &domain.LogbookTree{
		Logbook: *logbook,
		Weeks:   make([]domain.WeekWithEntries, 0, len(weeks)),
	}
	for _, week := range weeks {
		entries, err := s.entries.ListByWeeklyLogID(ctx, week.ID)
		if err != nil {
			return nil, fmt.Errorf("list entries for week %d: %w", week.WeekNo, err)
		}
		tree.Weeks = append(tree.Weeks, domain.WeekWithEntries{
			WeeklyLog: week,
			Entries:   entries,
		})
	}
	return tree, nil
}
