package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/internlog/internlog-backend/internal/domain"
	"github.com/internlog/internlog-backend/internal/service/evaluation"
	"github.com/internlog/internlog-backend/pkg/ctxutil"
)

// evaluationService defines the minimal interface needed by EvaluationHandler.
type evaluationService interface {
	Create(ctx context.Context, actor ctxutil.Actor, input evaluation.CreateInput) (*domain.EvaluationView, error)
	Get(ctx context.Context, actor ctxutil.Actor, internshipID uuid.UUID) (*domain.EvaluationView, error)
	UpdateSubfieldScore(ctx context.Context, actor ctxutil.Actor, subfieldID uuid.UUID, score int) error
	ListTemplates(ctx context.Context) ([]domain.EvaluationTemplate, map[uuid.UUID][]domain.EvaluationSubfieldTemplate, error)
}

// EvaluationHandler serves evaluation REST endpoints.
type EvaluationHandler struct {
	svc evaluationService
	log *slog.Logger
}

// NewEvaluationHandler creates an EvaluationHandler.
func NewEvaluationHandler(svc evaluationService, logger *slog.Logger) *EvaluationHandler {
	return &EvaluationHandler{svc: svc, log: logger.With("handler", "evaluation")}
}

type createEvaluationRequest struct {
	InternshipID string                  `json:"internshipId"`
	Comments     string                  `json:"comments"`
	Categories   []categoryScoresRequest `json:"categories"`
}

type categoryScoresRequest struct {
	TemplateID string                 `json:"templateId"`
	Subfields  []subfieldScoreRequest `json:"subfields"`
}

type subfieldScoreRequest struct {
	TemplateID string `json:"templateId"`
	Score      int    `json:"score"`
}

type updateScoreRequest struct {
	Score int `json:"score"`
}

type evaluationResponse struct {
	ID           string             `json:"id"`
	InternshipID string             `json:"internshipId"`
	TotalScore   int                `json:"totalScore"`
	Comments     string             `json:"comments,omitempty"`
	Categories   []categoryResponse `json:"categories"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

type categoryResponse struct {
	ID             string             `json:"id"`
	TemplateID     string             `json:"templateId"`
	SubfieldsTotal int                `json:"subfieldsTotal"`
	Subfields      []subfieldResponse `json:"subfields"`
}

type subfieldResponse struct {
	ID         string `json:"id"`
	TemplateID string `json:"templateId"`
	Score      int    `json:"score"`
}

type templateResponse struct {
	ID        string                     `json:"id"`
	Name      string                     `json:"name"`
	Order     int                        `json:"order"`
	Subfields []subfieldTemplateResponse `json:"subfields"`
}

type subfieldTemplateResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// Create handles POST /evaluations. The submission must carry the full
// rubric: five categories of four scored subfields each.
func (h *EvaluationHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req createEvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	internshipID, err := uuid.Parse(req.InternshipID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid internshipId")
		return
	}

	input := evaluation.CreateInput{
		InternshipID: internshipID,
		Comments:     req.Comments,
		Categories:   make([]evaluation.CategoryInput, 0, len(req.Categories)),
	}
	for _, cat := range req.Categories {
		catTemplateID, err := uuid.Parse(cat.TemplateID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid category templateId")
			return
		}
		catInput := evaluation.CategoryInput{
			TemplateID: catTemplateID,
			Subfields:  make([]evaluation.SubfieldInput, 0, len(cat.Subfields)),
		}
		for _, sub := range cat.Subfields {
			subTemplateID, err := uuid.Parse(sub.TemplateID)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid subfield templateId")
				return
			}
			catInput.Subfields = append(catInput.Subfields, evaluation.SubfieldInput{
				TemplateID: subTemplateID,
				Score:      sub.Score,
			})
		}
		input.Categories = append(input.Categories, catInput)
	}

	view, err := h.svc.Create(r.Context(), actor, input)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toEvaluationResponse(view))
}

// Get handles GET /internships/{internshipID}/evaluation.
func (h *EvaluationHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	internshipID, ok := pathID(w, r, "internshipID")
	if !ok {
		return
	}

	view, err := h.svc.Get(r.Context(), actor, internshipID)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toEvaluationResponse(view))
}

// UpdateSubfieldScore handles PATCH /evaluation-subfields/{subfieldID}/score,
// the administrative correction path.
func (h *EvaluationHandler) UpdateSubfieldScore(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	subfieldID, ok := pathID(w, r, "subfieldID")
	if !ok {
		return
	}

	var req updateScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.UpdateSubfieldScore(r.Context(), actor, subfieldID, req.Score); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// ListTemplates handles GET /evaluation-templates. Reference data, no
// actor required beyond authentication.
func (h *EvaluationHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}

	templates, subfields, err := h.svc.ListTemplates(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	resp := make([]templateResponse, 0, len(templates))
	for _, tmpl := range templates {
		tr := templateResponse{
			ID:        tmpl.ID.String(),
			Name:      tmpl.Name,
			Order:     tmpl.Order,
			Subfields: make([]subfieldTemplateResponse, 0, len(subfields[tmpl.ID])),
		}
		for _, sub := range subfields[tmpl.ID] {
			tr.Subfields = append(tr.Subfields, subfieldTemplateResponse{
				ID:    sub.ID.String(),
				Name:  sub.Name,
				Order: sub.Order,
			})
		}
		resp = append(resp, tr)
	}

	writeJSON(w, http.StatusOK, resp)
}

func toEvaluationResponse(view *domain.EvaluationView) evaluationResponse {
	resp := evaluationResponse{
		ID:           view.Evaluation.ID.String(),
		InternshipID: view.Evaluation.InternshipID.String(),
		TotalScore:   view.Evaluation.TotalScore,
		Comments:     view.Evaluation.Comments,
		Categories:   make([]categoryResponse, 0, len(view.Categories)),
		CreatedAt:    view.Evaluation.CreatedAt,
		UpdatedAt:    view.Evaluation.UpdatedAt,
	}
	for _, cat := range view.Categories {
		cr := categoryResponse{
			ID:             cat.Category.ID.String(),
			TemplateID:     cat.Category.TemplateID.String(),
			SubfieldsTotal: cat.Category.SubfieldsTotal,
			Subfields:      make([]subfieldResponse, 0, len(cat.Subfields)),
		}
		for _, sub := range cat.Subfields {
			cr.Subfields = append(cr.Subfields, subfieldResponse{
				ID:         sub.ID.String(),
				TemplateID: sub.TemplateID.String(),
				Score:      sub.Score,
			})
		}
		resp.Categories = append(resp.Categories, cr)
	}
	return resp
}
