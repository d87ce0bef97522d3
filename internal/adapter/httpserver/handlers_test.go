package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NexabitAI/mock-interviews-ai/internal/adapter/docstore/memory"
	"github.com/NexabitAI/mock-interviews-ai/internal/adapter/repo"
	"github.com/NexabitAI/mock-interviews-ai/internal/config"
	"github.com/NexabitAI/mock-interviews-ai/internal/covers"
	"github.com/NexabitAI/mock-interviews-ai/internal/domain"
	"github.com/NexabitAI/mock-interviews-ai/internal/usecase"
)

type stubAI struct{ response string }

func (s stubAI) Generate(context.Context, string, string) (string, error) {
	return s.response, nil
}

const feedbackJSON = `{
	"totalScore": 72,
	"categoryScores": [
		{"name": "Communication Skills", "score": 80, "comment": "clear"},
		{"name": "Technical Knowledge", "score": 70, "comment": "solid"},
		{"name": "Problem Solving", "score": 65, "comment": "ok"},
		{"name": "Cultural Fit", "score": 75, "comment": "good"},
		{"name": "Confidence and Clarity", "score": 70, "comment": "steady"}
	],
	"strengths": ["communication"],
	"areasForImprovement": ["algorithms"],
	"finalAssessment": "Decent."
}`

type fixture struct {
	router     http.Handler
	interviews *repo.InterviewRepo
	feedbacks  *repo.FeedbackRepo
}

func newFixture(t *testing.T, aiResponse string) fixture {
	t.Helper()
	store := memory.NewStore()
	ivs := repo.NewInterviewRepo(store)
	fbs := repo.NewFeedbackRepo(store)
	ai := stubAI{response: aiResponse}
	picker, err := covers.NewPicker(1)
	require.NoError(t, err)

	cfg := config.Config{LatestInterviewsLimit: 20}
	srv := NewServer(cfg,
		usecase.NewFeedbackService(ivs, fbs, ai),
		usecase.NewInterviewService(ivs, ai, picker),
		usecase.NewQueryService(ivs, fbs, nil),
		nil, nil)

	r := chi.NewRouter()
	r.Post("/v1/feedback", srv.GenerateFeedbackHandler())
	r.Post("/v1/interviews", srv.CreateInterviewHandler())
	r.Get("/v1/interviews/latest", srv.LatestInterviewsHandler())
	r.Get("/v1/interviews/{id}", srv.InterviewHandler())
	r.Get("/v1/interviews/{id}/feedback", srv.InterviewFeedbackHandler())
	r.Get("/v1/users/{id}/interviews", srv.UserInterviewsHandler())
	r.Get("/readyz", srv.ReadyzHandler())
	return fixture{router: r, interviews: ivs, feedbacks: fbs}
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGenerateFeedbackSuccessEnvelope(t *testing.T) {
	fx := newFixture(t, feedbackJSON)
	ivID, err := fx.interviews.Create(context.Background(), domain.Interview{
		Role: "r", UserID: "u-1", CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	body := `{"interviewId": "` + ivID + `", "userId": "u-1", "transcript": [{"role": "candidate", "content": "hi"}]}`
	rec := doJSON(t, fx.router, http.MethodPost, "/v1/feedback", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Success    bool   `json:"success"`
		FeedbackID string `json:"feedbackId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.NotEmpty(t, res.FeedbackID)

	iv, err := fx.interviews.Get(context.Background(), ivID)
	require.NoError(t, err)
	assert.True(t, iv.Finalized)
}

func TestGenerateFeedbackFailureEnvelopeIs200(t *testing.T) {
	fx := newFixture(t, "sorry, no JSON today")

	body := `{"interviewId": "iv-1", "userId": "u-1", "transcript": [{"role": "candidate", "content": "hi"}]}`
	rec := doJSON(t, fx.router, http.MethodPost, "/v1/feedback", body)
	require.Equal(t, http.StatusOK, rec.Code, "generation failure is an envelope, not a transport error")

	var res struct {
		Success    bool   `json:"success"`
		FeedbackID string `json:"feedbackId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.False(t, res.Success)
	assert.Empty(t, res.FeedbackID)
}

func TestGenerateFeedbackRejectsBadRequests(t *testing.T) {
	fx := newFixture(t, feedbackJSON)

	rec := doJSON(t, fx.router, http.MethodPost, "/v1/feedback", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, fx.router, http.MethodPost, "/v1/feedback", `{"userId": "u-1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateInterview(t *testing.T) {
	fx := newFixture(t, `["What is a goroutine?", "Explain channels."]`)

	body := `{"role": "Backend Engineer", "type": "technical", "level": "mid", "techstack": "go,postgres", "amount": 2, "userid": "u-1"}`
	rec := doJSON(t, fx.router, http.MethodPost, "/v1/interviews", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res struct {
		Success     bool   `json:"success"`
		InterviewID string `json:"interviewId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Success)

	iv, err := fx.interviews.Get(context.Background(), res.InterviewID)
	require.NoError(t, err)
	assert.False(t, iv.Finalized, "new interviews start unfinalized")
	assert.Equal(t, []string{"go", "postgres"}, iv.Techstack)
	assert.Len(t, iv.Questions, 2)
	assert.NotEmpty(t, iv.CoverImage)
}

func TestCreateInterviewValidation(t *testing.T) {
	fx := newFixture(t, `["q"]`)

	rec := doJSON(t, fx.router, http.MethodPost, "/v1/interviews", `{"role": "Backend"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, fx.router, http.MethodPost, "/v1/interviews", `{"userid": "u-1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInterviewByID(t *testing.T) {
	fx := newFixture(t, feedbackJSON)
	ivID, err := fx.interviews.Create(context.Background(), domain.Interview{
		Role: "r", UserID: "u-1", CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	rec := doJSON(t, fx.router, http.MethodGet, "/v1/interviews/"+ivID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var iv domain.Interview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &iv))
	assert.Equal(t, ivID, iv.ID)

	rec = doJSON(t, fx.router, http.MethodGet, "/v1/interviews/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, fx.router, http.MethodGet, "/v1/interviews/bad%24id", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLatestInterviews(t *testing.T) {
	fx := newFixture(t, feedbackJSON)
	ctx := context.Background()

	_, err := fx.interviews.Create(ctx, domain.Interview{Role: "r", UserID: "viewer", Finalized: true, CreatedAt: time.Now().UTC()})
	require.NoError(t, err)
	_, err = fx.interviews.Create(ctx, domain.Interview{Role: "r", UserID: "other", Finalized: true, CreatedAt: time.Now().UTC()})
	require.NoError(t, err)

	rec := doJSON(t, fx.router, http.MethodGet, "/v1/interviews/latest?userId=viewer", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var res struct {
		Interviews []domain.Interview `json:"interviews"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Interviews, 1)
	assert.Equal(t, "other", res.Interviews[0].UserID)

	rec = doJSON(t, fx.router, http.MethodGet, "/v1/interviews/latest?userId=viewer&limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserInterviews(t *testing.T) {
	fx := newFixture(t, feedbackJSON)
	ctx := context.Background()

	_, err := fx.interviews.Create(ctx, domain.Interview{Role: "r", UserID: "u-1", CreatedAt: time.Now().UTC()})
	require.NoError(t, err)

	rec := doJSON(t, fx.router, http.MethodGet, "/v1/users/u-1/interviews", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var res struct {
		Interviews []domain.Interview `json:"interviews"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Len(t, res.Interviews, 1)

	rec = doJSON(t, fx.router, http.MethodGet, "/v1/users/nobody/interviews", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Empty(t, res.Interviews)
}

func TestInterviewFeedback(t *testing.T) {
	fx := newFixture(t, feedbackJSON)

	// Generate real feedback through the pipeline first.
	ivID, err := fx.interviews.Create(context.Background(), domain.Interview{
		Role: "r", UserID: "u-1", CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	body := `{"interviewId": "` + ivID + `", "userId": "u-1", "transcript": [{"role": "candidate", "content": "hi"}]}`
	rec := doJSON(t, fx.router, http.MethodPost, "/v1/feedback", body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, fx.router, http.MethodGet, "/v1/interviews/"+ivID+"/feedback?userId=u-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var fb domain.Feedback
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fb))
	assert.Equal(t, 72.0, fb.TotalScore)
	assert.Len(t, fb.CategoryScores, 5)

	rec = doJSON(t, fx.router, http.MethodGet, "/v1/interviews/"+ivID+"/feedback?userId=stranger", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, fx.router, http.MethodGet, "/v1/interviews/"+ivID+"/feedback", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReadyz(t *testing.T) {
	fx := newFixture(t, feedbackJSON)
	rec := doJSON(t, fx.router, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNotAcceptable(t *testing.T) {
	fx := newFixture(t, feedbackJSON)
	req := httptest.NewRequest(http.MethodGet, "/v1/interviews/latest", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotAcceptable, rec.Code)
}
