package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/NexabitAI/mock-interviews-ai/internal/config"
	"github.com/NexabitAI/mock-interviews-ai/internal/domain"
	"github.com/NexabitAI/mock-interviews-ai/internal/usecase"
)

// Server aggregates handler dependencies.
type Server struct {
	Cfg        config.Config
	Feedback   usecase.FeedbackService
	Interviews usecase.InterviewService
	Queries    usecase.QueryService
	DBCheck    func(ctx context.Context) error
	RedisCheck func(ctx context.Context) error
}

// NewServer constructs an HTTP server with all handlers and checks wired.
func NewServer(cfg config.Config, fb usecase.FeedbackService, ivs usecase.InterviewService, q usecase.QueryService, dbCheck, redisCheck func(context.Context) error) *Server {
	return &Server{Cfg: cfg, Feedback: fb, Interviews: ivs, Queries: q, DBCheck: dbCheck, RedisCheck: redisCheck}
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

// acceptsJSON rejects requests whose Accept header excludes JSON. Only JSON
// responses are supported.
func acceptsJSON(w http.ResponseWriter, r *http.Request) bool {
	if a := r.Header.Get("Accept"); a != "" && a != "*/*" && !strings.Contains(a, "application/json") {
		writeJSON(w, http.StatusNotAcceptable, errorEnvelope{Error: apiError{
			Code: "INVALID_ARGUMENT", Message: "not acceptable", Details: map[string]any{"accept": a},
		}})
		return false
	}
	return true
}

func decodeValidated(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
		return false
	}
	if err := getValidator().Struct(dst); err != nil {
		verrs := map[string]string{}
		if ve, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range ve {
				verrs[strings.ToLower(fe.Field())] = fe.Tag()
			}
		}
		writeError(w, r, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument), verrs)
		return false
	}
	return true
}

// GenerateFeedbackHandler runs the transcript-to-feedback pipeline.
// The response envelope is always 200 with a success flag: generation
// failures are an expected outcome of calling a generator, not a transport
// error, and the caller retries by resubmitting.
func (s *Server) GenerateFeedbackHandler() http.HandlerFunc {
	type turn struct {
		Role    string `json:"role" validate:"required"`
		Content string `json:"content"`
	}
	type request struct {
		InterviewID string `json:"interviewId" validate:"required"`
		UserID      string `json:"userId" validate:"required"`
		Transcript  []turn `json:"transcript"`
		FeedbackID  string `json:"feedbackId"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		var req request
		if !decodeValidated(w, r, &req) {
			return
		}
		turns := make([]domain.Turn, 0, len(req.Transcript))
		for _, t := range req.Transcript {
			turns = append(turns, domain.Turn{Role: t.Role, Content: t.Content})
		}
		res := s.Feedback.Generate(r.Context(), usecase.GenerateFeedbackRequest{
			InterviewID: req.InterviewID,
			UserID:      req.UserID,
			Transcript:  turns,
			FeedbackID:  req.FeedbackID,
		})
		writeJSON(w, http.StatusOK, res)
	}
}

// CreateInterviewHandler generates questions and stores a new interview.
func (s *Server) CreateInterviewHandler() http.HandlerFunc {
	type request struct {
		Role      string `json:"role" validate:"required"`
		Type      string `json:"type"`
		Level     string `json:"level"`
		Techstack string `json:"techstack"`
		Amount    int    `json:"amount" validate:"omitempty,min=1,max=20"`
		UserID    string `json:"userid" validate:"required"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		var req request
		if !decodeValidated(w, r, &req) {
			return
		}
		id, err := s.Interviews.Create(r.Context(), usecase.CreateInterviewRequest{
			Role:      SanitizeString(req.Role),
			Type:      SanitizeString(req.Type),
			Level:     SanitizeString(req.Level),
			Techstack: SanitizeString(req.Techstack),
			Amount:    req.Amount,
			UserID:    req.UserID,
		})
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "interviewId": id})
	}
}

// InterviewHandler returns one interview by id.
func (s *Server) InterviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		id := chi.URLParam(r, "id")
		if vr := ValidateDocID("id", id); !vr.Valid {
			writeError(w, r, fmt.Errorf("%w: invalid interview id", domain.ErrInvalidArgument), vr.Errors)
			return
		}
		iv, err := s.Queries.InterviewByID(r.Context(), id)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		if iv == nil {
			writeError(w, r, fmt.Errorf("%w: interview %s", domain.ErrNotFound, id), nil)
			return
		}
		writeJSON(w, http.StatusOK, iv)
	}
}

// LatestInterviewsHandler returns recent finalized interviews from other
// users, for the browse feed.
func (s *Server) LatestInterviewsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		userID := r.URL.Query().Get("userId")
		limit := s.Cfg.LatestInterviewsLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				writeError(w, r, fmt.Errorf("%w: limit must be a positive integer", domain.ErrInvalidArgument), map[string]string{"limit": raw})
				return
			}
			limit = n
		}
		ivs, err := s.Queries.LatestInterviews(r.Context(), userID, limit)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		if ivs == nil {
			ivs = []domain.Interview{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"interviews": ivs})
	}
}

// UserInterviewsHandler returns all interviews owned by one user, newest first.
func (s *Server) UserInterviewsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		userID := chi.URLParam(r, "id")
		if vr := ValidateDocID("id", userID); !vr.Valid {
			writeError(w, r, fmt.Errorf("%w: invalid user id", domain.ErrInvalidArgument), vr.Errors)
			return
		}
		ivs, err := s.Queries.InterviewsByUser(r.Context(), userID)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		if ivs == nil {
			ivs = []domain.Interview{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"interviews": ivs})
	}
}

// InterviewFeedbackHandler returns the feedback for an interview/user pair.
func (s *Server) InterviewFeedbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		interviewID := chi.URLParam(r, "id")
		if vr := ValidateDocID("id", interviewID); !vr.Valid {
			writeError(w, r, fmt.Errorf("%w: invalid interview id", domain.ErrInvalidArgument), vr.Errors)
			return
		}
		userID := r.URL.Query().Get("userId")
		if userID == "" {
			writeError(w, r, fmt.Errorf("%w: userId query parameter required", domain.ErrInvalidArgument), map[string]string{"field": "userId"})
			return
		}
		fb, err := s.Queries.FeedbackForInterview(r.Context(), interviewID, userID)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		if fb == nil {
			writeError(w, r, fmt.Errorf("%w: no feedback for interview %s", domain.ErrNotFound, interviewID), nil)
			return
		}
		writeJSON(w, http.StatusOK, fb)
	}
}

// ReadyzHandler returns a readiness handler that probes DB and Redis.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		checks := make([]check, 0, 2)
		if s.DBCheck != nil {
			if err := s.DBCheck(ctx); err != nil {
				checks = append(checks, check{Name: "db", OK: false, Details: err.Error()})
			} else {
				checks = append(checks, check{Name: "db", OK: true})
			}
		}
		if s.RedisCheck != nil {
			if err := s.RedisCheck(ctx); err != nil {
				checks = append(checks, check{Name: "redis", OK: false, Details: err.Error()})
			} else {
				checks = append(checks, check{Name: "redis", OK: true})
			}
		}
		st := http.StatusOK
		for _, c := range checks {
			if !c.OK {
				st = http.StatusServiceUnavailable
				break
			}
		}
		writeJSON(w, st, map[string]any{"checks": checks})
	}
}
