// Package logbook implements the tamper-evident internship logbook:
// the entry ledger, the weekly aggregator, and the logbook controller.
package logbook

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/internlog/internlog-backend/internal/domain"
	"github.com/internlog/internlog-backend/internal/notify"
	"github.com/internlog/internlog-backend/pkg/ctxutil"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type logbookRepo interface {
	Create(ctx context.Context, internshipID uuid.UUID) (*domain.Logbook, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Logbook, error)
	GetByInternshipID(ctx context.Context, internshipID uuid.UUID) (*domain.Logbook, error)
	SetStatus(ctx context.Context, id uuid.UUID, status domain.ApprovalStatus) error
}

type weeklyLogRepo interface {
	Create(ctx context.Context, logbookID uuid.UUID, weekNo int) (*domain.WeeklyLog, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.WeeklyLog, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.WeeklyLog, error)
	ListByLogbookID(ctx context.Context, logbookID uuid.UUID) ([]domain.WeeklyLog, error)
	SetStatus(ctx context.Context, id uuid.UUID, status domain.ApprovalStatus, comment string) error
}

type entryRepo interface {
	Create(ctx context.Context, entry *domain.LogbookEntry) (*domain.LogbookEntry, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LogbookEntry, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.LogbookEntry, error)
	ListByWeeklyLogID(ctx context.Context, weeklyLogID uuid.UUID) ([]domain.LogbookEntry, error)
	CountByWeeklyLogID(ctx context.Context, weeklyLogID uuid.UUID) (int, error)
	CountMutableByWeeklyLogID(ctx context.Context, weeklyLogID uuid.UUID) (int, error)
	UpdateContent(ctx context.Context, id uuid.UUID, description, feedback, signature string) (*domain.LogbookEntry, error)
	Seal(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type internshipRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Internship, error)
}

type studentRepo interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Student, error)
}

type supervisorRepo interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Supervisor, error)
}

type keyCustody interface {
	WithPrivateKey(ctx context.Context, studentID uuid.UUID, fn func(priv *ecdsa.PrivateKey) error) error
	PublicKey(ctx context.Context, studentID uuid.UUID) (*ecdsa.PublicKey, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service is the logbook service.
type Service struct {
	logbooks    logbookRepo
	weeks       weeklyLogRepo
	entries     entryRepo
	internships internshipRepo
	students    studentRepo
	supervisors supervisorRepo
	custody     keyCustody
	notifier    notify.Notifier
	tx          txManager
	now         func() time.Time
	log         *slog.Logger
}

// NewService creates a new logbook service. now is the clock used for
// week numbering and the internship date guard; pass nil for time.Now.
func NewService(
	log *slog.Logger,
	logbooks logbookRepo,
	weeks weeklyLogRepo,
	entries entryRepo,
	internships internshipRepo,
	students studentRepo,
	supervisors supervisorRepo,
	custody keyCustody,
	notifier notify.Notifier,
	tx txManager,
	now func() time.Time,
) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		logbooks:    logbooks,
		weeks:       weeks,
		entries:     entries,
		internships: internships,
		students:    students,
		supervisors: supervisors,
		custody:     custody,
		notifier:    notifier,
		tx:          tx,
		now:         now,
		log:         log.With("service", "logbook"),
	}
}

// ---------------------------------------------------------------------------
// Access resolution
// ---------------------------------------------------------------------------

// requireStudentOwner resolves the actor to the student profile owning
// the internship. Any other actor fails with domain.ErrForbidden.
func (s *Service) requireStudentOwner(ctx context.Context, actor ctxutil.Actor, internship *domain.Internship) (*domain.Student, error) {
	if domain.Role(actor.Role) != domain.RoleStudent {
		return nil, domain.ErrForbidden
	}
	student, err := s.students.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolve student profile: %w", err)
	}
	if student.ID != internship.StudentID {
		return nil, domain.ErrForbidden
	}
	return student, nil
}

// requireAssignedSupervisor resolves the actor to the supervisor profile
// assigned to the internship.
func (s *Service) requireAssignedSupervisor(ctx context.Context, actor ctxutil.Actor, internship *domain.Internship) (*domain.Supervisor, error) {
	if domain.Role(actor.Role) != domain.RoleSupervisor {
		return nil, domain.ErrForbidden
	}
	supervisor, err := s.supervisors.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolve supervisor profile: %w", err)
	}
	if supervisor.ID != internship.SupervisorID {
		return nil, domain.ErrForbidden
	}
	return supervisor, nil
}

// requireReadAccess admits the owning student, the assigned supervisor,
// and academic staff (lecturer, super admin).
func (s *Service) requireReadAccess(ctx context.Context, actor ctxutil.Actor, internship *domain.Internship) error {
	switch domain.Role(actor.Role) {
	case domain.RoleLecturer, domain.RoleSuperAdmin:
		return nil
	case domain.RoleStudent:
		_, err := s.requireStudentOwner(ctx, actor, internship)
		return err
	case domain.RoleSupervisor:
		_, err := s.requireAssignedSupervisor(ctx, actor, internship)
		return err
	}
	return domain.ErrForbidden
}

// weekScope is a weekly log together with its parents, loaded in one
// walk. lock locks the weekly log row for the rest of the transaction.
type weekScope struct {
	week       *domain.WeeklyLog
	logbook    *domain.Logbook
	internship *domain.Internship
}

func (s *Service) loadWeekScope(ctx context.Context, weeklyLogID uuid.UUID, lock bool) (*weekScope, error) {
	var week *domain.WeeklyLog
	var err error
	if lock {
		week, err = s.weeks.GetByIDForUpdate(ctx, weeklyLogID)
	} else {
		week, err = s.weeks.GetByID(ctx, weeklyLogID)
	}
	if err != nil {
		return nil, fmt.Errorf("get weekly log: %w", err)
	}

	logbook, err := s.logbooks.GetByID(ctx, week.LogbookID)
	if err != nil {
		return nil, fmt.Errorf("get logbook: %w", err)
	}
	internship, err := s.internships.GetByID(ctx, logbook.InternshipID)
	if err != nil {
		return nil, fmt.Errorf("get internship: %w", err)
	}
	return &weekScope{week: week, logbook: logbook, internship: internship}, nil
}

// recomputeLogbookStatus refreshes the cached logbook status from the
// current week statuses. Must run inside the transaction that changed a
// child week so the cache and the change commit together.
func (s *Service) recomputeLogbookStatus(ctx context.Context, logbookID uuid.UUID) error {
	weeks, err := s.weeks.ListByLogbookID(ctx, logbookID)
	if err != nil {
		return fmt.Errorf("list weeks: %w", err)
	}
	derived := domain.DeriveLogbookStatus(weeks)
	if err := s.logbooks.SetStatus(ctx, logbookID, derived); err != nil {
		return fmt.Errorf("set logbook status: %w", err)
	}
	return nil
}

// notifyBestEffort delivers a notification outside the transaction.
// Failure is logged, never returned.
func (s *Service) notifyBestEffort(ctx context.Context, n notify.Notification) {
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.log.WarnContext(ctx, "notification delivery failed",
			slog.String("event", string(n.Event)),
			slog.Any("error", err),
		)
	}
}
