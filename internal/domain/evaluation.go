package domain

import (
	"time"

	"github.com/google/uuid"
)

// Evaluation rubric shape: exactly 5 categories of exactly 4 subfields,
// each subfield scored 0-5. Category totals are 0-20, the evaluation
// total 0-100. All totals are derived, never client-set.
const (
	EvaluationCategoryCount = 5
	SubfieldsPerCategory    = 4
	MinSubfieldScore        = 0
	MaxSubfieldScore        = 5
	MaxTotalScore           = 100
)

// EvaluationTemplate is static reference data naming one rubric category.
type EvaluationTemplate struct {
	ID    uuid.UUID
	Name  string
	Order int
}

// EvaluationSubfieldTemplate is static reference data naming one subfield
// within a category template.
type EvaluationSubfieldTemplate struct {
	ID         uuid.UUID
	TemplateID uuid.UUID
	Name       string
	Order      int
}

// Evaluation is the one-per-internship supervisor assessment.
type Evaluation struct {
	ID           uuid.UUID
	InternshipID uuid.UUID
	TotalScore   int
	Comments     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// EvaluationCategory holds the derived total of its four subfields.
type EvaluationCategory struct {
	ID             uuid.UUID
	EvaluationID   uuid.UUID
	TemplateID     uuid.UUID
	SubfieldsTotal int
	CreatedAt      time.Time
}

// EvaluationCategorySubfield is a single scored rubric leaf.
type EvaluationCategorySubfield struct {
	ID         uuid.UUID
	CategoryID uuid.UUID
	TemplateID uuid.UUID
	Score      int
	CreatedAt  time.Time
}

// ValidSubfieldScore reports whether score is within [0, 5].
func ValidSubfieldScore(score int) bool {
	return score >= MinSubfieldScore && score <= MaxSubfieldScore
}

// SumScores returns the arithmetic total of the given scores. Used for
// both category totals (4 scores) and evaluation totals (5 category
// totals); bounds are validated by the caller before anything persists.
func SumScores(scores []int) int {
	total := 0
	for _, s := range scores {
		total += s
	}
	return total
}

// EvaluationView is the full evaluation tree returned to callers.
type EvaluationView struct {
	Evaluation Evaluation
	Categories []CategoryWithSubfields
}

// CategoryWithSubfields pairs a category with its scored subfields.
type CategoryWithSubfields struct {
	Category  EvaluationCategory
	Subfields []EvaluationCategorySubfield
}
