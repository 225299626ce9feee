// Package internship exposes the read-only internship feed: the core
// never mutates internships, it only lists and resolves them for the
// logbook and evaluation surfaces.
package internship

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/internlog/internlog-backend/internal/domain"
	"github.com/internlog/internlog-backend/pkg/ctxutil"
)

type internshipRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Internship, error)
	List(ctx context.Context, filter domain.InternshipFilter) ([]domain.Internship, error)
}

type studentRepo interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Student, error)
}

type supervisorRepo interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Supervisor, error)
}

// Service is the internship read service.
type Service struct {
	internships internshipRepo
	students    studentRepo
	supervisors supervisorRepo
	log         *slog.Logger
}

// NewService creates a new internship read service.
func NewService(logger *slog.Logger, internships internshipRepo, students studentRepo, supervisors supervisorRepo) *Service {
	return &Service{
		internships: internships,
		students:    students,
		supervisors: supervisors,
		log:         logger.With("service", "internship"),
	}
}

// Get returns one internship. Students and supervisors see only their
// own; lecturers and admins see any.
func (s *Service) Get(ctx context.Context, actor ctxutil.Actor, internshipID uuid.UUID) (*domain.Internship, error) {
	internship, err := s.internships.GetByID(ctx, internshipID)
	if err != nil {
		return nil, err
	}

	switch domain.Role(actor.Role) {
	case domain.RoleLecturer, domain.RoleSuperAdmin:
		return internship, nil
	case domain.RoleStudent:
		student, err := s.students.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		if student.ID != internship.StudentID {
			return nil, domain.ErrForbidden
		}
		return internship, nil
	case domain.RoleSupervisor:
		supervisor, err := s.supervisors.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		if supervisor.ID != internship.SupervisorID {
			return nil, domain.ErrForbidden
		}
		return internship, nil
	default:
		return nil, domain.ErrForbidden
	}
}

// List returns the internships visible to the actor, optionally narrowed
// by status. Students and supervisors are scoped to their own rows.
func (s *Service) List(ctx context.Context, actor ctxutil.Actor, status domain.InternshipStatus) ([]domain.Internship, error) {
	if status != "" && !status.IsValid() {
		return nil, domain.NewValidationError("status", "unknown internship status")
	}

	filter := domain.InternshipFilter{Status: status}

	switch domain.Role(actor.Role) {
	case domain.RoleLecturer, domain.RoleSuperAdmin:
	case domain.RoleStudent:
		student, err := s.students.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		filter.StudentID = student.ID
	case domain.RoleSupervisor:
		supervisor, err := s.supervisors.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		filter.SupervisorID = supervisor.ID
	default:
		return nil, domain.ErrForbidden
	}

	return s.internships.List(ctx, filter)
}
