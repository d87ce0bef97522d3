package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NexabitAI/mock-interviews-ai/internal/adapter/docstore/memory"
	httpserver "github.com/NexabitAI/mock-interviews-ai/internal/adapter/httpserver"
	"github.com/NexabitAI/mock-interviews-ai/internal/adapter/repo"
	"github.com/NexabitAI/mock-interviews-ai/internal/config"
	"github.com/NexabitAI/mock-interviews-ai/internal/covers"
	"github.com/NexabitAI/mock-interviews-ai/internal/usecase"
)

func TestParseOrigins(t *testing.T) {
	assert.Equal(t, []string{"*"}, ParseOrigins(""))
	assert.Equal(t, []string{"*"}, ParseOrigins("*"))
	assert.Equal(t, []string{"https://a.example"}, ParseOrigins("https://a.example"))
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, ParseOrigins(" https://a.example , https://b.example "))
	assert.Equal(t, []string{"*"}, ParseOrigins(" , , "))
}

type nilAI struct{}

func (nilAI) Generate(context.Context, string, string) (string, error) { return "[]", nil }

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := config.Config{
		CORSAllowOrigins:      "*",
		RateLimitPerMin:       1000,
		LatestInterviewsLimit: 20,
		HTTPWriteTimeout:      30 * time.Second,
	}

	store := memory.NewStore()
	ivs := repo.NewInterviewRepo(store)
	fbs := repo.NewFeedbackRepo(store)
	picker, err := covers.NewPicker(1)
	require.NoError(t, err)

	srv := httpserver.NewServer(cfg,
		usecase.NewFeedbackService(ivs, fbs, nilAI{}),
		usecase.NewInterviewService(ivs, nilAI{}, picker),
		usecase.NewQueryService(ivs, fbs, nil),
		nil, nil)
	return BuildRouter(cfg, srv)
}

func TestRouterHealthz(t *testing.T) {
	h := testRouter(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterMetrics(t *testing.T) {
	h := testRouter(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterReadyz(t *testing.T) {
	h := testRouter(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterSetsRequestIDAndSecurityHeaders(t *testing.T) {
	h := testRouter(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestRouterUnknownRoute(t *testing.T) {
	h := testRouter(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBuildReadinessChecksAbsentDeps(t *testing.T) {
	dbCheck, redisCheck := BuildReadinessChecks(nil, nil)
	assert.NoError(t, dbCheck(context.Background()))
	assert.NoError(t, redisCheck(context.Background()))
}
