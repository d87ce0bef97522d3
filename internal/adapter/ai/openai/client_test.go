package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NexabitAI/mock-interviews-ai/internal/config"
	"github.com/NexabitAI/mock-interviews-ai/internal/domain"
)

func testConfig(baseURL string) config.Config {
	return config.Config{
		AppEnv:        "test",
		AIAPIKey:      "test-key",
		AIBaseURL:     baseURL,
		AIModel:       "grok-2-1212",
		AITemperature: 0.4,
		AIMaxTokens:   2048,
		AITimeout:     5 * time.Second,
	}
}

func chatResponse(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	})
	return string(b)
}

func TestGenerateSuccess(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(chatResponse(`{"ok": true}`)))
	}))
	defer ts.Close()

	c := New(testConfig(ts.URL))
	out, err := c.Generate(context.Background(), "system says", "user asks")
	require.NoError(t, err)
	assert.Equal(t, `{"ok": true}`, out)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "grok-2-1212", gotBody["model"])
	assert.InDelta(t, 0.4, gotBody["temperature"], 1e-9)

	msgs, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	first := msgs[0].(map[string]any)
	assert.Equal(t, "system", first["role"])
	assert.Equal(t, "system says", first["content"])
}

func TestGenerateMissingAPIKey(t *testing.T) {
	cfg := testConfig("http://unused")
	cfg.AIAPIKey = ""
	c := New(cfg)
	_, err := c.Generate(context.Background(), "s", "u")
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestGenerateRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(chatResponse("recovered")))
	}))
	defer ts.Close()

	c := New(testConfig(ts.URL))
	out, err := c.Generate(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, "recovered", out)
	assert.GreaterOrEqual(t, calls.Load(), int32(3))
}

func TestGenerateRetries429(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(chatResponse("after cooldown")))
	}))
	defer ts.Close()

	c := New(testConfig(ts.URL))
	out, err := c.Generate(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, "after cooldown", out)
}

func TestGenerate4xxIsPermanent(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	c := New(testConfig(ts.URL))
	_, err := c.Generate(context.Background(), "s", "u")
	require.ErrorIs(t, err, domain.ErrUpstreamError)
	assert.Equal(t, int32(1), calls.Load(), "4xx must not be retried")
}

func TestGenerateExhaustedRetries(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	c := New(testConfig(ts.URL))
	_, err := c.Generate(context.Background(), "s", "u")
	require.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestGenerateEmptyChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer ts.Close()

	c := New(testConfig(ts.URL))
	out, err := c.Generate(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Empty(t, out, "empty choices surface as blank text for the sanitizer to reject")
}

func TestWithModel(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(chatResponse(body["model"].(string))))
	}))
	defer ts.Close()

	c := New(testConfig(ts.URL))
	q := c.WithModel("gpt-4o-mini", 0.7)

	out, err := q.Generate(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", out)

	out, err = c.Generate(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, "grok-2-1212", out, "base client must be unchanged")
}
