// Package repo maps domain entities onto generic document store records.
//
// The store only offers get/set/update and query-by-equality; anything beyond
// that (sorting, owner exclusion, truncation) happens in the query usecase
// after retrieval. Document ids live outside the document body, Firestore
// style, and are re-attached on read.
package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/NexabitAI/mock-interviews-ai/internal/domain"
)

func toDoc(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	delete(doc, "id")
	return doc, nil
}

func fromDoc(doc map[string]any, id string, v any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return err
	}
	switch t := v.(type) {
	case *domain.Interview:
		t.ID = id
	case *domain.Feedback:
		t.ID = id
	}
	return nil
}

// InterviewRepo provides typed access to the interviews collection.
type InterviewRepo struct{ Store domain.DocumentStore }

// NewInterviewRepo constructs an InterviewRepo over the given store.
func NewInterviewRepo(s domain.DocumentStore) *InterviewRepo { return &InterviewRepo{Store: s} }

// Create stores an interview. When iv.ID is set the record is written under
// that identity (used by the orphan-healing stub path); otherwise the store
// assigns a fresh id.
func (r *InterviewRepo) Create(ctx context.Context, iv domain.Interview) (string, error) {
	doc, err := toDoc(iv)
	if err != nil {
		return "", fmt.Errorf("op=interview.create: %w", err)
	}
	if iv.ID != "" {
		if err := r.Store.Set(ctx, domain.CollectionInterviews, iv.ID, doc); err != nil {
			return "", fmt.Errorf("op=interview.create: %w", err)
		}
		return iv.ID, nil
	}
	id, err := r.Store.Add(ctx, domain.CollectionInterviews, doc)
	if err != nil {
		return "", fmt.Errorf("op=interview.create: %w", err)
	}
	return id, nil
}

// Get loads an interview by id.
func (r *InterviewRepo) Get(ctx context.Context, id string) (domain.Interview, error) {
	doc, err := r.Store.Get(ctx, domain.CollectionInterviews, id)
	if err != nil {
		return domain.Interview{}, fmt.Errorf("op=interview.get: %w", err)
	}
	var iv domain.Interview
	if err := fromDoc(doc, id, &iv); err != nil {
		return domain.Interview{}, fmt.Errorf("op=interview.get: %w", err)
	}
	return iv, nil
}

// SetFinalized flips only the finalized flag and updatedAt timestamp. This is
// a partial update, never a full overwrite.
func (r *InterviewRepo) SetFinalized(ctx context.Context, id string, finalized bool, at time.Time) error {
	fields := map[string]any{
		"finalized": finalized,
		"updatedAt": at.UTC().Format(time.RFC3339Nano),
	}
	if err := r.Store.Update(ctx, domain.CollectionInterviews, id, fields); err != nil {
		return fmt.Errorf("op=interview.set_finalized: %w", err)
	}
	return nil
}

// ListByUser returns all interviews owned by userID, in unspecified order.
func (r *InterviewRepo) ListByUser(ctx context.Context, userID string) ([]domain.Interview, error) {
	docs, err := r.Store.Query(ctx, domain.CollectionInterviews, map[string]any{"userId": userID}, 0)
	if err != nil {
		return nil, fmt.Errorf("op=interview.list_by_user: %w", err)
	}
	return decodeInterviews(docs)
}

// ListFinalized returns all finalized interviews, in unspecified order.
func (r *InterviewRepo) ListFinalized(ctx context.Context) ([]domain.Interview, error) {
	docs, err := r.Store.Query(ctx, domain.CollectionInterviews, map[string]any{"finalized": true}, 0)
	if err != nil {
		return nil, fmt.Errorf("op=interview.list_finalized: %w", err)
	}
	return decodeInterviews(docs)
}

func decodeInterviews(docs []domain.Document) ([]domain.Interview, error) {
	out := make([]domain.Interview, 0, len(docs))
	for _, d := range docs {
		var iv domain.Interview
		if err := fromDoc(d.Data, d.ID, &iv); err != nil {
			return nil, fmt.Errorf("op=interview.decode: %w", err)
		}
		out = append(out, iv)
	}
	return out, nil
}
