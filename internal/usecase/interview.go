package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/NexabitAI/mock-interviews-ai/internal/adapter/ai"
	"github.com/NexabitAI/mock-interviews-ai/internal/adapter/observability"
	"github.com/NexabitAI/mock-interviews-ai/internal/covers"
	"github.com/NexabitAI/mock-interviews-ai/internal/domain"
)

// CreateInterviewRequest describes the interview to prepare questions for.
// Techstack is a comma-separated list as submitted by the client.
type CreateInterviewRequest struct {
	Role      string
	Type      string
	Level     string
	Techstack string
	Amount    int
	UserID    string
}

// InterviewService generates interview questions and stores the resulting
// interview. It shares the sanitization contract with the feedback pipeline:
// generator output is untrusted regardless of what the prompt demanded.
type InterviewService struct {
	Interviews domain.InterviewRepository
	AI         domain.CompletionClient
	Covers     *covers.Picker
	cleaner    *ai.ResponseCleaner
}

// NewInterviewService constructs an InterviewService with its dependencies.
func NewInterviewService(ivs domain.InterviewRepository, cc domain.CompletionClient, cp *covers.Picker) InterviewService {
	return InterviewService{Interviews: ivs, AI: cc, Covers: cp, cleaner: ai.NewResponseCleaner()}
}

// Create generates questions for the described interview and stores it.
/// The new interview starts with finalized=false: finalization is owned by
// feedback creation, and an interview without feedback is not final.
func (s InterviewService) Create(ctx context.Context, req CreateInterviewRequest) (string, error) {
	if req.UserID == "" {
		return "", fmt.Errorf("%w: userId required", domain.ErrInvalidArgument)
	}
	if req.Role == "" {
		return "", fmt.Errorf("%w: role required", domain.ErrInvalidArgument)
	}
	amount := req.Amount
	if amount <= 0 {
		amount = 5
	}

	raw, err := s.AI.Generate(ctx, questionSystemPrompt, questionUserPrompt(req.Role, req.Level, req.Techstack, req.Type, amount))
	if err != nil {
		return "", err
	}
	cleaned, err := s.cleaner.CleanJSON(raw)
	if err != nil {
		return "", err
	}
	questions, err := parseQuestions(cleaned)
	if err != nil {
		return "", err
	}

	iv := domain.Interview{
		Role:       req.Role,
		Type:       req.Type,
		Level:      req.Level,
		Techstack:  splitTechstack(req.Techstack),
		Questions:  questions,
		UserID:     req.UserID,
		Finalized:  false,
		CoverImage: s.Covers.Pick(),
		CreatedAt:  time.Now().UTC(),
	}
	id, err := s.Interviews.Create(ctx, iv)
	if err != nil {
		return "", err
	}
	observability.LoggerFromContext(ctx).Info("interview created",
		"interview_id", id,
		"user_id", req.UserID,
		"questions", len(questions))
	return id, nil
}

func splitTechstack(csv string) []string {
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
