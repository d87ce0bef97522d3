// Package usecase contains application business logic services.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NexabitAI/mock-interviews-ai/internal/adapter/ai"
	"github.com/NexabitAI/mock-interviews-ai/internal/adapter/observability"
	"github.com/NexabitAI/mock-interviews-ai/internal/domain"
	"github.com/NexabitAI/mock-interviews-ai/pkg/transcriptx"
)

// Pipeline stages, used for failure metrics and logs.
const (
	stageInput     = "input"
	stageFormat    = "format"
	stageGenerate  = "generate"
	stageSanitize  = "sanitize"
	stageValidate  = "validate"
	stageStore     = "store"
	stageReconcile = "reconcile"
)

// GenerateFeedbackRequest carries one feedback-creation attempt.
// FeedbackID is optional; supplying it makes resubmission an idempotent
// upsert of the same record.
type GenerateFeedbackRequest struct {
	InterviewID string
	UserID      string
	Transcript  []domain.Turn
	FeedbackID  string
}

// GenerateFeedbackResult is the uniform caller-facing outcome. Failures carry
// no detail beyond the log record; the caller contract is a stable
// success/failure envelope.
type GenerateFeedbackResult struct {
	Success    bool   `json:"success"`
	FeedbackID string `json:"feedbackId,omitempty"`
}

// FeedbackService orchestrates the transcript-to-feedback pipeline end to
// end: format, generate, sanitize, validate, store, reconcile.
type FeedbackService struct {
	Interviews domain.InterviewRepository
	Feedbacks  domain.FeedbackRepository
	AI         domain.CompletionClient
	cleaner    *ai.ResponseCleaner
}

// NewFeedbackService constructs a FeedbackService with its dependencies.
func NewFeedbackService(ivs domain.InterviewRepository, fbs domain.FeedbackRepository, cc domain.CompletionClient) FeedbackService {
	return FeedbackService{Interviews: ivs, Feedbacks: fbs, AI: cc, cleaner: ai.NewResponseCleaner()}
}

// Generate runs one feedback-creation attempt. Every failure kind is caught
// here and converted to {Success:false}; no error escapes to the caller.
// There is no retry loop — resubmission with the same FeedbackID is safe.
func (s FeedbackService) Generate(ctx context.Context, req GenerateFeedbackRequest) GenerateFeedbackResult {
	lg := observability.LoggerFromContext(ctx)
	id, fb, stage, err := s.run(ctx, req)
	if err != nil {
		lg.Error("feedback generation failed",
			"stage", stage,
			"interview_id", req.InterviewID,
			"user_id", req.UserID,
			"error", err)
		observability.FeedbackFailuresTotal.WithLabelValues(stage).Inc()
		observability.FeedbackGenerationsTotal.WithLabelValues("failure").Inc()
		return GenerateFeedbackResult{Success: false}
	}
	lg.Info("feedback stored",
		"feedback_id", id,
		"interview_id", req.InterviewID,
		"total_score", fb.TotalScore)
	observability.FeedbackGenerationsTotal.WithLabelValues("success").Inc()
	observability.TotalScoreHistogram.Observe(fb.TotalScore)
	return GenerateFeedbackResult{Success: true, FeedbackID: id}
}

func (s FeedbackService) run(ctx context.Context, req GenerateFeedbackRequest) (string, domain.Feedback, string, error) {
	if req.InterviewID == "" {
		return "", domain.Feedback{}, stageInput, fmt.Errorf("%w: interviewId required", domain.ErrInvalidArgument)
	}
	if req.UserID == "" {
		return "", domain.Feedback{}, stageInput, fmt.Errorf("%w: userId required", domain.ErrInvalidArgument)
	}

	formatted, err := transcriptx.Format(req.Transcript)
	if err != nil {
		return "", domain.Feedback{}, stageFormat, err
	}

	raw, err := s.AI.Generate(ctx, feedbackSystemPrompt, feedbackUserPrompt(formatted))
	if err != nil {
		return "", domain.Feedback{}, stageGenerate, err
	}

	cleaned, err := s.cleaner.CleanJSON(raw)
	if err != nil {
		return "", domain.Feedback{}, stageSanitize, err
	}

	now := time.Now().UTC()
	fb, err := parseFeedback(cleaned, req.InterviewID, req.UserID, now)
	if err != nil {
		return "", domain.Feedback{}, stageValidate, err
	}

	fb.ID = req.FeedbackID
	id, err := s.Feedbacks.Upsert(ctx, fb)
	if err != nil {
		return "", domain.Feedback{}, stageStore, err
	}

	if err := s.reconcileInterview(ctx, req.InterviewID, req.UserID, now); err != nil {
		return "", domain.Feedback{}, stageReconcile, err
	}
	return id, fb, "", nil
}

// reconcileInterview marks the referenced interview finalized after a
// successful feedback write. The two writes are not atomic; a concurrent
// submission for the same interview may interleave and the last finalized
// write wins. A missing interview is self-healed with a minimal stub instead
// of failing — already-computed feedback is never thrown away over a dangling
// reference.
func (s FeedbackService) reconcileInterview(ctx context.Context, interviewID, userID string, now time.Time) error {
	_, err := s.Interviews.Get(ctx, interviewID)
	if err == nil {
		return s.Interviews.SetFinalized(ctx, interviewID, true, now)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	observability.LoggerFromContext(ctx).Warn("healing orphaned feedback reference with stub interview",
		"interview_id", interviewID,
		"user_id", userID)
	observability.InterviewStubsHealedTotal.Inc()
	stub := domain.Interview{
		ID:        interviewID,
		UserID:    userID,
		Finalized: true,
		CreatedAt: now,
	}
	_, err = s.Interviews.Create(ctx, stub)
	return err
}
