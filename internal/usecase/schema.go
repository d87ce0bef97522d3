package usecase

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/NexabitAI/mock-interviews-ai/internal/domain"
)

// rawCategoryScore is one category entry as the generator phrased it.
// Pointer fields distinguish absent from zero-valued.
type rawCategoryScore struct {
	Name    string   `json:"name" validate:"required"`
	Score   *float64 `json:"score" validate:"required"`
	Comment *string  `json:"comment" validate:"required"`
}

// feedbackPayload is the untrusted parsed shape of a generator response.
type feedbackPayload struct {
	TotalScore          *float64           `json:"totalScore" validate:"required"`
	CategoryScores      []rawCategoryScore `json:"categoryScores" validate:"required,len=5,dive"`
	Strengths           []string           `json:"strengths" validate:"required"`
	AreasForImprovement []string           `json:"areasForImprovement" validate:"required"`
	FinalAssessment     *string            `json:"finalAssessment" validate:"required"`
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

// parseFeedback normalizes and validates a sanitized JSON payload into a
// domain.Feedback. Category labels are canonicalized before validation since
// generators phrase them inconsistently; a payload that does not normalize to
// exactly the five canonical categories is rejected, never truncated or
// padded.
func parseFeedback(cleanedJSON, interviewID, userID string, now time.Time) (domain.Feedback, error) {
	var p feedbackPayload
	if err := json.Unmarshal([]byte(cleanedJSON), &p); err != nil {
		return domain.Feedback{}, fmt.Errorf("%w: %v", domain.ErrSchemaInvalid, err)
	}
	if err := getValidator().Struct(p); err != nil {
		return domain.Feedback{}, fmt.Errorf("%w: %v", domain.ErrSchemaInvalid, err)
	}

	seen := make(map[string]bool, len(domain.CanonicalCategories))
	scores := make([]domain.CategoryScore, 0, len(p.CategoryScores))
	for _, cs := range p.CategoryScores {
		canonical, ok := domain.NormalizeCategory(cs.Name)
		if !ok {
			return domain.Feedback{}, fmt.Errorf("%w: unknown category %q", domain.ErrSchemaInvalid, cs.Name)
		}
		if seen[canonical] {
			return domain.Feedback{}, fmt.Errorf("%w: duplicate category %q", domain.ErrSchemaInvalid, canonical)
		}
		seen[canonical] = true
		scores = append(scores, domain.CategoryScore{Name: canonical, Score: *cs.Score, Comment: *cs.Comment})
	}
	// len=5 plus distinctness implies full coverage; keep the explicit check
	// so the failure message names the gap.
	for _, want := range domain.CanonicalCategories {
		if !seen[want] {
			return domain.Feedback{}, fmt.Errorf("%w: missing category %q", domain.ErrSchemaInvalid, want)
		}
	}

	return domain.Feedback{
		InterviewID:         interviewID,
		UserID:              userID,
		TotalScore:          *p.TotalScore,
		CategoryScores:      scores,
		Strengths:           p.Strengths,
		AreasForImprovement: p.AreasForImprovement,
		FinalAssessment:     *p.FinalAssessment,
		CreatedAt:           now,
	}, nil
}

// parseQuestions validates a sanitized JSON payload into a non-empty list of
// question strings.
func parseQuestions(cleanedJSON string) ([]string, error) {
	var qs []string
	if err := json.Unmarshal([]byte(cleanedJSON), &qs); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSchemaInvalid, err)
	}
	if len(qs) == 0 {
		return nil, fmt.Errorf("%w: no questions generated", domain.ErrSchemaInvalid)
	}
	for i, q := range qs {
		if q == "" {
			return nil, fmt.Errorf("%w: empty question at index %d", domain.ErrSchemaInvalid, i)
		}
	}
	return qs, nil
}
