// Package evaluation implements the internship evaluation scoring
// engine: fixed-shape rubric construction with derived totals.
package evaluation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/internlog/internlog-backend/internal/domain"
	"github.com/internlog/internlog-backend/pkg/ctxutil"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type evaluationRepo interface {
	Create(ctx context.Context, eval *domain.Evaluation) (*domain.Evaluation, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Evaluation, error)
	GetByInternshipID(ctx context.Context, internshipID uuid.UUID) (*domain.Evaluation, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Evaluation, error)
	SetTotalScore(ctx context.Context, id uuid.UUID, total int) error
}

type categoryRepo interface {
	Create(ctx context.Context, category *domain.EvaluationCategory) (*domain.EvaluationCategory, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.EvaluationCategory, error)
	ListByEvaluationID(ctx context.Context, evaluationID uuid.UUID) ([]domain.EvaluationCategory, error)
	SetSubfieldsTotal(ctx context.Context, id uuid.UUID, total int) error
}

type subfieldRepo interface {
	Create(ctx context.Context, subfield *domain.EvaluationCategorySubfield) (*domain.EvaluationCategorySubfield, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.EvaluationCategorySubfield, error)
	ListByCategoryID(ctx context.Context, categoryID uuid.UUID) ([]domain.EvaluationCategorySubfield, error)
	SetScore(ctx context.Context, id uuid.UUID, score int) error
}

type templateRepo interface {
	ListTemplates(ctx context.Context) ([]domain.EvaluationTemplate, error)
	ListSubfieldTemplates(ctx context.Context, templateID uuid.UUID) ([]domain.EvaluationSubfieldTemplate, error)
}

type internshipRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Internship, error)
}

type supervisorRepo interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Supervisor, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Inputs
// ---------------------------------------------------------------------------

// CategoryInput scores one rubric category against its template.
type CategoryInput struct {
	TemplateID uuid.UUID
	Subfields  []SubfieldInput
}

// SubfieldInput scores one rubric leaf.
type SubfieldInput struct {
	TemplateID uuid.UUID
	Score      int
}

// CreateInput is the full evaluation submission: exactly 5 categories of
// exactly 4 subfields each.
type CreateInput struct {
	InternshipID uuid.UUID
	Comments     string
	Categories   []CategoryInput
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service is the evaluation service.
type Service struct {
	evaluations evaluationRepo
	categories  categoryRepo
	subfields   subfieldRepo
	templates   templateRepo
	internships internshipRepo
	supervisors supervisorRepo
	tx          txManager
	log         *slog.Logger
}

// NewService creates a new evaluation service.
func NewService(
	log *slog.Logger,
	evaluations evaluationRepo,
	categories categoryRepo,
	subfields subfieldRepo,
	templates templateRepo,
	internships internshipRepo,
	supervisors supervisorRepo,
	tx txManager,
) *Service {
	return &Service{
		evaluations: evaluations,
		categories:  categories,
		subfields:   subfields,
		templates:   templates,
		internships: internships,
		supervisors: supervisors,
		tx:          tx,
		log:         log.With("service", "evaluation"),
	}
}

// validateShape checks the fixed 5x4 rubric shape and all score bounds.
// Runs before anything is written.
func validateShape(input CreateInput) error {
	if len(input.Categories) != domain.EvaluationCategoryCount {
		return domain.NewValidationError("categories",
			fmt.Sprintf("exactly %d categories required, got %d", domain.EvaluationCategoryCount, len(input.Categories)))
	}
	for i, cat := range input.Categories {
		if len(cat.Subfields) != domain.SubfieldsPerCategory {
			return domain.NewValidationError(
				fmt.Sprintf("categories[%d].subfields", i),
				fmt.Sprintf("exactly %d subfields required, got %d", domain.SubfieldsPerCategory, len(cat.Subfields)))
		}
		for j, sub := range cat.Subfields {
			if !domain.ValidSubfieldScore(sub.Score) {
				return fmt.Errorf("categories[%d].subfields[%d]: score %d: %w",
					i, j, sub.Score, domain.ErrOutOfRange)
			}
		}
	}
	return nil
}

// Create builds the full evaluation tree in one transaction. Totals are
// computed bottom-up exactly once: four scores into each category total,
// five category totals into the evaluation total. Nothing is written
// until the shape and every bound has been checked.
func (s *Service) Create(ctx context.Context, actor ctxutil.Actor, input CreateInput) (*domain.EvaluationView, error) {
	internship, err := s.internships.GetByID(ctx, input.InternshipID)
	if err != nil {
		return nil, fmt.Errorf("get internship: %w", err)
	}
	if _, err := s.requireAssignedSupervisor(ctx, actor, internship); err != nil {
		return nil, err
	}
	if internship.Status != domain.InternshipStatusCompleted {
		return nil, fmt.Errorf("internship is %s: %w", internship.Status, domain.ErrInternshipNotCompleted)
	}
	if err := validateShape(input); err != nil {
		return nil, err
	}

	// Totals computed up front; the per-subfield bound makes an overflow
	// unreachable, the check stays as a final guard.
	categoryTotals := make([]int, len(input.Categories))
	for i, cat := range input.Categories {
		scores := make([]int, len(cat.Subfields))
		for j, sub := range cat.Subfields {
			scores[j] = sub.Score
		}
		categoryTotals[i] = domain.SumScores(scores)
	}
	totalScore := domain.SumScores(categoryTotals)
	if totalScore > domain.MaxTotalScore {
		return nil, fmt.Errorf("total %d: %w", totalScore, domain.ErrScoreOverflow)
	}

	var view *domain.EvaluationView
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		eval, err := s.evaluations.Create(txCtx, &domain.Evaluation{
			ID:           uuid.New(),
			InternshipID: input.InternshipID,
			TotalScore:   totalScore,
			Comments:     input.Comments,
		})
		if err != nil {
			return fmt.Errorf("create evaluation: %w", err)
		}

		view = &domain.EvaluationView{
			Evaluation: *eval,
			Categories: make([]domain.CategoryWithSubfields, 0, len(input.Categories)),
		}
		for i, catInput := range input.Categories {
			category, err := s.categories.Create(txCtx, &domain.EvaluationCategory{
				ID:             uuid.New(),
				EvaluationID:   eval.ID,
				TemplateID:     catInput.TemplateID,
				SubfieldsTotal: categoryTotals[i],
			})
			if err != nil {
				return fmt.Errorf("create category %d: %w", i, err)
			}

			withSubfields := domain.CategoryWithSubfields{Category: *category}
			for j, subInput := range catInput.Subfields {
				subfield, err := s.subfields.Create(txCtx, &domain.EvaluationCategorySubfield{
					ID:         uuid.New(),
					CategoryID: category.ID,
					TemplateID: subInput.TemplateID,
					Score:      subInput.Score,
				})
				if err != nil {
					return fmt.Errorf("create subfield %d/%d: %w", i, j, err)
				}
				withSubfields.Subfields = append(withSubfields.Subfields, *subfield)
			}
			view.Categories = append(view.Categories, withSubfields)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "evaluation created",
		"evaluation_id", view.Evaluation.ID,
		"internship_id", input.InternshipID,
		"total_score", totalScore)
	return view, nil
}

// Get returns the full evaluation tree for an internship.
func (s *Service) Get(ctx context.Context, actor ctxutil.Actor, internshipID uuid.UUID) (*domain.EvaluationView, error) {
	internship, err := s.internships.GetByID(ctx, internshipID)
	if err != nil {
		return nil, fmt.Errorf("get internship: %w", err)
	}
	if err := s.requireReadAccess(ctx, actor, internship); err != nil {
		return nil, err
	}

	eval, err := s.evaluations.GetByInternshipID(ctx, internshipID)
	if err != nil {
		return nil, fmt.Errorf("get evaluation: %w", err)
	}
	categories, err := s.categories.ListByEvaluationID(ctx, eval.ID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	view := &domain.EvaluationView{
		Evaluation: *eval,
		Categories: make([]domain.CategoryWithSubfields, 0, len(categories)),
	}
	for _, category := range categories {
		subfields, err := s.subfields.ListByCategoryID(ctx, category.ID)
		if err != nil {
			return nil, fmt.Errorf("list subfields: %w", err)
		}
		view.Categories = append(view.Categories, domain.CategoryWithSubfields{
			Category:  category,
			Subfields: subfields,
		})
	}
	return view, nil
}

// UpdateSubfieldScore is the administrative correction path. The new
// score, the category total, and the evaluation total are recomputed
// bottom-up and written in one transaction; the recompute is never
// partial.
func (s *Service) UpdateSubfieldScore(ctx context.Context, actor ctxutil.Actor, subfieldID uuid.UUID, score int) error {
	if domain.Role(actor.Role) != domain.RoleSuperAdmin {
		return domain.ErrForbidden
	}
	if !domain.ValidSubfieldScore(score) {
		return fmt.Errorf("score %d: %w", score, domain.ErrOutOfRange)
	}

	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		subfield, err := s.subfields.GetByIDForUpdate(txCtx, subfieldID)
		if err != nil {
			return fmt.Errorf("get subfield: %w", err)
		}
		category, err := s.categories.GetByID(txCtx, subfield.CategoryID)
		if err != nil {
			return fmt.Errorf("get category: %w", err)
		}
		// Concurrent corrections to the same evaluation serialize on its
		// row lock before any write, so every sibling read below sees
		// committed scores only.
		if _, err := s.evaluations.GetByIDForUpdate(txCtx, category.EvaluationID); err != nil {
			return fmt.Errorf("lock evaluation: %w", err)
		}

		if err := s.subfields.SetScore(txCtx, subfieldID, score); err != nil {
			return fmt.Errorf("set score: %w", err)
		}

		siblings, err := s.subfields.ListByCategoryID(txCtx, subfield.CategoryID)
		if err != nil {
			return fmt.Errorf("list subfields: %w", err)
		}
		scores := make([]int, 0, len(siblings))
		for _, sib := range siblings {
			if sib.ID == subfieldID {
				scores = append(scores, score)
				continue
			}
			scores = append(scores, sib.Score)
		}
		categoryTotal := domain.SumScores(scores)
		if err := s.categories.SetSubfieldsTotal(txCtx, subfield.CategoryID, categoryTotal); err != nil {
			return fmt.Errorf("set category total: %w", err)
		}

		all, err := s.categories.ListByEvaluationID(txCtx, category.EvaluationID)
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		totals := make([]int, 0, len(all))
		for _, cat := range all {
			if cat.ID == category.ID {
				totals = append(totals, categoryTotal)
				continue
			}
			totals = append(totals, cat.SubfieldsTotal)
		}
		totalScore := domain.SumScores(totals)
		if totalScore > domain.MaxTotalScore {
			return fmt.Errorf("total %d: %w", totalScore, domain.ErrScoreOverflow)
		}
		if err := s.evaluations.SetTotalScore(txCtx, category.EvaluationID, totalScore); err != nil {
			return fmt.Errorf("set evaluation total: %w", err)
		}

		s.log.InfoContext(txCtx, "subfield score corrected",
			"subfield_id", subfieldID, "score", score, "new_total", totalScore)
		return nil
	})
}

// ---------------------------------------------------------------------------
// Access resolution
// ---------------------------------------------------------------------------

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

// requireReadAccess admits the assigned supervisor and academic staff.
// Students see their evaluation through the academic surface, not here.
func (s *Service) requireReadAccess(ctx context.Context, actor ctxutil.Actor, internship *domain.Internship) error {
	switch domain.Role(actor.Role) {
	case domain.RoleLecturer, domain.RoleSuperAdmin:
		return nil
	case domain.RoleSupervisor:
		_, err := s.requireAssignedSupervisor(ctx, actor, internship)
		return err
	}
	return domain.ErrForbidden
}

// ListTemplates returns the fixed rubric reference data, categories with
// their subfield templates in display order.
func (s *Service) ListTemplates(ctx context.Context) ([]domain.EvaluationTemplate, map[uuid.UUID][]domain.EvaluationSubfieldTemplate, error) {
	templates, err := s.templates.ListTemplates(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list templates: %w", err)
	}
	subfields := make(map[uuid.UUID][]domain.EvaluationSubfieldTemplate, len(templates))
	for _, tmpl := range templates {
		subs, err := s.templates.ListSubfieldTemplates(ctx, tmpl.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("list subfield templates: %w", err)
		}
		subfields[tmpl.ID] = subs
	}
	return templates, subfields, nil
}
