// Package domain holds the core entities, ports and error taxonomy of the
// mock-interview feedback pipeline.
package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrNotFound            = errors.New("not found")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrUpstreamError       = errors.New("upstream error")
	ErrEmptyResponse       = errors.New("empty response")
	ErrMalformedResponse   = errors.New("malformed response")
	ErrSchemaInvalid       = errors.New("schema invalid")
	ErrInternal            = errors.New("internal error")
)

// Collection names in the document store.
const (
	CollectionInterviews = "interviews"
	CollectionFeedback   = "feedback"
)

// Turn is a single speaker turn of an interview transcript.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Interview is a scheduled or completed mock interview.
// Finalized stays false until at least one Feedback has been recorded for it.
type Interview struct {
	ID         string     `json:"id"`
	Role       string     `json:"role"`
	Type       string     `json:"type"`
	Level      string     `json:"level"`
	Techstack  []string   `json:"techstack"`
	Questions  []string   `json:"questions"`
	UserID     string     `json:"userId"`
	Finalized  bool       `json:"finalized"`
	CoverImage string     `json:"coverImage"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

// CategoryScore is one scored dimension of a Feedback record. Name is always
// one of the canonical category names.
type CategoryScore struct {
	Name    string  `json:"name"`
	Score   float64 `json:"score"`
	Comment string  `json:"comment"`
}

// Feedback is the validated, scored assessment derived from a transcript.
// Immutable once stored; resubmission with the same ID replaces the whole record.
type Feedback struct {
	ID                  string          `json:"id"`
	InterviewID         string          `json:"interviewId"`
	UserID              string          `json:"userId"`
	TotalScore          float64         `json:"totalScore"`
	CategoryScores      []CategoryScore `json:"categoryScores"`
	Strengths           []string        `json:"strengths"`
	AreasForImprovement []string        `json:"areasForImprovement"`
	FinalAssessment     string          `json:"finalAssessment"`
	CreatedAt           time.Time       `json:"createdAt"`
}

// CompletionClient is the single external dependency boundary of the pipeline.
// Implementations submit a two-message prompt to a text-generation provider and
// return the raw response text. The returned text must be treated as untrusted
// even when the prompt demands a strict output format.
type CompletionClient interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Document is a stored document plus its store-assigned identity.
type Document struct {
	ID   string
	Data map[string]any
}

// DocumentStore is a generic per-document key-value store with
// query-by-equality. Equality filters cannot be combined with cross-field
// ordering; callers sort and truncate after retrieval.
type DocumentStore interface {
	// Add stores doc under a fresh id and returns it.
	Add(ctx context.Context, collection string, doc map[string]any) (string, error)
	// Get returns the document or ErrNotFound.
	Get(ctx context.Context, collection, id string) (map[string]any, error)
	// Set fully replaces the document at id, creating it if absent.
	Set(ctx context.Context, collection, id string, doc map[string]any) error
	// Update merges fields into an existing document; ErrNotFound if absent.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	// Query returns documents whose fields equal every filter value.
	// limit <= 0 means no limit. Result order is unspecified.
	Query(ctx context.Context, collection string, filters map[string]any, limit int) ([]Document, error)
}

// InterviewRepository provides typed access to stored interviews.
type InterviewRepository interface {
	Create(ctx context.Context, iv Interview) (string, error)
	Get(ctx context.Context, id string) (Interview, error)
	// SetFinalized flips only the finalized flag and updatedAt timestamp.
	SetFinalized(ctx context.Context, id string, finalized bool, at time.Time) error
	ListByUser(ctx context.Context, userID string) ([]Interview, error)
	ListFinalized(ctx context.Context) ([]Interview, error)
}

// FeedbackRepository provides typed access to stored feedback records.
type FeedbackRepository interface {
	// Upsert writes fb under fb.ID when set, otherwise under a fresh id.
	// Returns the identifier the record was stored under.
	Upsert(ctx context.Context, fb Feedback) (string, error)
	// FindByInterviewAndUser returns all feedback matching both references.
	FindByInterviewAndUser(ctx context.Context, interviewID, userID string) ([]Feedback, error)
}
