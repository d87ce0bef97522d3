package repo

import (
	"context"
	"fmt"

	"github.com/NexabitAI/mock-interviews-ai/internal/domain"
)

// FeedbackRepo provides typed access to the feedback collection.
type FeedbackRepo struct{ Store domain.DocumentStore }

// NewFeedbackRepo constructs a FeedbackRepo over the given store.
func NewFeedbackRepo(s domain.DocumentStore) *FeedbackRepo { return &FeedbackRepo{Store: s} }

// Upsert writes fb under fb.ID when set, otherwise under a store-assigned id.
// Resubmission with the same id replaces the whole record rather than
// appending a duplicate.
func (r *FeedbackRepo) Upsert(ctx context.Context, fb domain.Feedback) (string, error) {
	doc, err := toDoc(fb)
	if err != nil {
		return "", fmt.Errorf("op=feedback.upsert: %w", err)
	}
	if fb.ID != "" {
		if err := r.Store.Set(ctx, domain.CollectionFeedback, fb.ID, doc); err != nil {
			return "", fmt.Errorf("op=feedback.upsert: %w", err)
		}
		return fb.ID, nil
	}
	id, err := r.Store.Add(ctx, domain.CollectionFeedback, doc)
	if err != nil {
		return "", fmt.Errorf("op=feedback.upsert: %w", err)
	}
	return id, nil
}

// FindByInterviewAndUser returns all feedback records matching both
// references, in unspecified order. Callers pick a deterministic winner.
func (r *FeedbackRepo) FindByInterviewAndUser(ctx context.Context, interviewID, userID string) ([]domain.Feedback, error) {
	filters := map[string]any{"interviewId": interviewID, "userId": userID}
	docs, err := r.Store.Query(ctx, domain.CollectionFeedback, filters, 0)
	if err != nil {
		return nil, fmt.Errorf("op=feedback.find: %w", err)
	}
	out := make([]domain.Feedback, 0, len(docs))
	for _, d := range docs {
		var fb domain.Feedback
		if err := fromDoc(d.Data, d.ID, &fb); err != nil {
			return nil, fmt.Errorf("op=feedback.decode: %w", err)
		}
		out = append(out, fb)
	}
	return out, nil
}
