// Package openai implements the completion client against any
// OpenAI-compatible chat-completions endpoint (x.ai, OpenAI, OpenRouter,
// Groq). The provider behind the endpoint has changed more than once in this
// project's history; nothing outside this package may depend on which one is
// configured.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/NexabitAI/mock-interviews-ai/internal/adapter/ai/tokencount"
	"github.com/NexabitAI/mock-interviews-ai/internal/adapter/observability"
	"github.com/NexabitAI/mock-interviews-ai/internal/config"
	"github.com/NexabitAI/mock-interviews-ai/internal/domain"
)

// Client implements domain.CompletionClient over an OpenAI-compatible API.
type Client struct {
	cfg     config.Config
	hc      *http.Client
	counter *tokencount.Counter

	// Model and Temperature may be overridden per pipeline; the feedback
	// pipeline wants low-temperature deterministic output while question
	// generation prefers variety.
	Model       string
	Temperature float64
}

// New constructs a client using the configured feedback model and temperature.
func New(cfg config.Config) *Client {
	return &Client{
		cfg: cfg,
		hc: &http.Client{
			Timeout:   cfg.AITimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		counter:     tokencount.NewCounter(),
		Model:       cfg.AIModel,
		Temperature: cfg.AITemperature,
	}
}

// WithModel returns a copy of the client that generates with a different
// model and temperature but shares the HTTP client and token counter.
func (c *Client) WithModel(model string, temperature float64) *Client {
	cp := *c
	cp.Model = model
	cp.Temperature = temperature
	return &cp
}

func (c *Client) backoffConfig() *backoff.ExponentialBackOff {
	expo := backoff.NewExponentialBackOff()
	maxElapsed, initial, maxInterval, multiplier := c.cfg.GetAIBackoffConfig()
	expo.MaxElapsedTime = maxElapsed
	expo.InitialInterval = initial
	expo.MaxInterval = maxInterval
	expo.Multiplier = multiplier
	return expo
}

// Generate submits the two-message prompt and returns the raw response text.
// Transport failures and retryable statuses are retried with exponential
// backoff; 4xx responses are permanent. The returned text is untrusted.
func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c.cfg.AIAPIKey == "" {
		return "", fmt.Errorf("%w: AI_API_KEY missing", domain.ErrInvalidArgument)
	}

	promptTokens := c.counter.Count(c.Model, systemPrompt+userPrompt)
	observability.AIPromptTokens.WithLabelValues("chat").Observe(float64(promptTokens))
	if promptTokens > c.cfg.AIMaxTokens*4 {
		slog.Warn("prompt unusually large",
			slog.Int("prompt_tokens", promptTokens),
			slog.String("model", c.Model))
	}

	body := map[string]any{
		"model":       c.Model,
		"temperature": c.Temperature,
		"max_tokens":  c.cfg.AIMaxTokens,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
	}
	b, _ := json.Marshal(body)

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	op := func() error {
		start := time.Now()
		// Recreate the request each attempt to avoid reusing consumed bodies.
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AIBaseURL+"/chat/completions", bytes.NewReader(b))
		if err != nil {
			return backoff.Permanent(err)
		}
		r.Header.Set("Authorization", "Bearer "+c.cfg.AIAPIKey)
		r.Header.Set("Content-Type", "application/json")
		resp, err := c.hc.Do(r)
		observability.AIRequestsTotal.WithLabelValues("openai", "chat").Inc()
		observability.AIRequestDuration.WithLabelValues("openai", "chat").Observe(time.Since(start).Seconds())
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			slog.Warn("ai provider rate limited",
				slog.Int("status", resp.StatusCode),
				slog.String("x_request_id", resp.Header.Get("X-Request-Id")))
			return fmt.Errorf("rate limited: 429")
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			snippet := string(bodyBytes)
			if len(snippet) > 512 {
				snippet = snippet[:512]
			}
			slog.Warn("ai provider 4xx",
				slog.Int("status", resp.StatusCode),
				slog.String("model", c.Model),
				slog.String("body", snippet))
			return backoff.Permanent(fmt.Errorf("%w: chat status %d", domain.ErrUpstreamError, resp.StatusCode))
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			slog.Error("ai provider non-2xx",
				slog.Int("status", resp.StatusCode),
				slog.String("model", c.Model))
			return fmt.Errorf("chat status %d", resp.StatusCode)
		}
		if err := json.Unmarshal(bodyBytes, &out); err != nil {
			return backoff.Permanent(fmt.Errorf("%w: decode response: %v", domain.ErrUpstreamError, err))
		}
		return nil
	}

	expo := c.backoffConfig()
	if err := backoff.Retry(op, backoff.WithContext(expo, ctx)); err != nil {
		if errors.Is(err, domain.ErrUpstreamError) {
			return "", err
		}
		// Retries exhausted on transport errors, 429s or 5xx.
		return "", fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	if len(out.Choices) == 0 {
		return "", nil
	}
	return out.Choices[0].Message.Content, nil
}
