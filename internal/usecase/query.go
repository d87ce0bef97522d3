package usecase

import (
	"context"
	"errors"
	"sort"

	"github.com/NexabitAI/mock-interviews-ai/internal/adapter/cache"
	"github.com/NexabitAI/mock-interviews-ai/internal/domain"
)

// DefaultLatestLimit caps the latest-interviews feed when the caller does not
// supply a limit.
const DefaultLatestLimit = 20

// QueryService provides the read side: pure projections over the store.
// The store only answers equality queries, so all sorting, owner exclusion
// and truncation happen here after retrieval. That is a deliberate
// scalability ceiling, not an oversight: it stays correct without composite
// indexes and must be revisited with real indexes before data volume grows.
type QueryService struct {
	Interviews domain.InterviewRepository
	Feedbacks  domain.FeedbackRepository
	Latest     *cache.LatestInterviews
}

// NewQueryService constructs a QueryService. latest may be nil.
func NewQueryService(ivs domain.InterviewRepository, fbs domain.FeedbackRepository, latest *cache.LatestInterviews) QueryService {
	return QueryService{Interviews: ivs, Feedbacks: fbs, Latest: latest}
}

// InterviewByID returns the interview or nil when absent. An empty id is a
// precondition rejection that reads as "not found", never an error.
func (s QueryService) InterviewByID(ctx context.Context, id string) (*domain.Interview, error) {
	if id == "" {
		return nil, nil
	}
	iv, err := s.Interviews.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &iv, nil
}

// InterviewsByUser returns all interviews owned by userID, newest first.
func (s QueryService) InterviewsByUser(ctx context.Context, userID string) ([]domain.Interview, error) {
	if userID == "" {
		return nil, nil
	}
	ivs, err := s.Interviews.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(ivs)
	return ivs, nil
}

// LatestInterviews returns finalized interviews not owned by userID, newest
// first, truncated to limit (default 20).
func (s QueryService) LatestInterviews(ctx context.Context, userID string, limit int) ([]domain.Interview, error) {
	if limit <= 0 {
		limit = DefaultLatestLimit
	}
	if ivs, ok := s.Latest.Get(ctx, userID, limit); ok {
		return ivs, nil
	}
	all, err := s.Interviews.ListFinalized(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Interview, 0, len(all))
	for _, iv := range all {
		if iv.UserID != userID {
			out = append(out, iv)
		}
	}
	sortNewestFirst(out)
	if len(out) > limit {
		out = out[:limit]
	}
	s.Latest.Put(ctx, userID, limit, out)
	return out, nil
}

// FeedbackForInterview returns the feedback matching both references, or nil
// when none exists. The store may hold duplicates for the pair; the earliest
// record by creation time (id as tiebreak) wins deterministically.
func (s QueryService) FeedbackForInterview(ctx context.Context, interviewID, userID string) (*domain.Feedback, error) {
	if interviewID == "" || userID == "" {
		return nil, nil
	}
	fbs, err := s.Feedbacks.FindByInterviewAndUser(ctx, interviewID, userID)
	if err != nil {
		return nil, err
	}
	if len(fbs) == 0 {
		return nil, nil
	}
	sort.Slice(fbs, func(i, j int) bool {
		if !fbs[i].CreatedAt.Equal(fbs[j].CreatedAt) {
			return fbs[i].CreatedAt.Before(fbs[j].CreatedAt)
		}
		return fbs[i].ID < fbs[j].ID
	})
	return &fbs[0], nil
}

func sortNewestFirst(ivs []domain.Interview) {
	sort.Slice(ivs, func(i, j int) bool {
		if !ivs[i].CreatedAt.Equal(ivs[j].CreatedAt) {
			return ivs[i].CreatedAt.After(ivs[j].CreatedAt)
		}
		// ULID/uuid ids: descending id keeps equal-timestamp order stable.
		return ivs[i].ID > ivs[j].ID
	})
}
