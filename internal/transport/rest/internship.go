package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/internlog/internlog-backend/internal/domain"
	"github.com/internlog/internlog-backend/pkg/ctxutil"
)

// internshipService defines the minimal interface needed by InternshipHandler.
type internshipService interface {
	Get(ctx context.Context, actor ctxutil.Actor, internshipID uuid.UUID) (*domain.Internship, error)
	List(ctx context.Context, actor ctxutil.Actor, status domain.InternshipStatus) ([]domain.Internship, error)
}

// InternshipHandler serves the read-only internship endpoints.
type InternshipHandler struct {
	svc internshipService
	log *slog.Logger
}

// NewInternshipHandler creates an InternshipHandler.
func NewInternshipHandler(svc internshipService, logger *slog.Logger) *InternshipHandler {
	return &InternshipHandler{svc: svc, log: logger.With("handler", "internship")}
}

type internshipResponse struct {
	ID           string    `json:"id"`
	StudentID    string    `json:"studentId"`
	SupervisorID string    `json:"supervisorId"`
	Status       string    `json:"status"`
	StartDate    string    `json:"startDate"`
	EndDate      string    `json:"endDate"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Get handles GET /internships/{internshipID}.
func (h *InternshipHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	internshipID, ok := pathID(w, r, "internshipID")
	if !ok {
		return
	}

	internship, err := h.svc.Get(r.Context(), actor, internshipID)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toInternshipResponse(internship))
}

// List handles GET /internships?status=ongoing. Students and supervisors
// see only their own internships.
func (h *InternshipHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	status := domain.InternshipStatus(r.URL.Query().Get("status"))

	internships, err := h.svc.List(r.Context(), actor, status)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	resp := make([]internshipResponse, 0, len(internships))
	for i := range internships {
		resp = append(resp, toInternshipResponse(&internships[i]))
	}

	writeJSON(w, http.StatusOK, resp)
}

func toInternshipResponse(i *domain.Internship) internshipResponse {
	return internshipResponse{
		ID:           i.ID.String(),
		StudentID:    i.StudentID.String(),
		SupervisorID: i.SupervisorID.String(),
		Status:       i.Status.String(),
		StartDate:    i.StartDate.Format(time.DateOnly),
		EndDate:      i.EndDate.Format(time.DateOnly),
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	}
}
