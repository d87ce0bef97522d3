// Package gemini implements the completion client against the Gemini API.
package gemini

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/NexabitAI/mock-interviews-ai/internal/adapter/observability"
	"github.com/NexabitAI/mock-interviews-ai/internal/config"
	"github.com/NexabitAI/mock-interviews-ai/internal/domain"
)

// Client implements domain.CompletionClient using google.golang.org/genai.
type Client struct {
	client      *genai.Client
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
}

// New constructs a Gemini-backed completion client.
func New(ctx context.Context, cfg config.Config) (*Client, error) {
	if cfg.AIAPIKey == "" {
		return nil, fmt.Errorf("%w: AI_API_KEY missing", domain.ErrInvalidArgument)
	}
	cl, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.AIAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("op=gemini.new: %w", err)
	}
	return &Client{
		client:      cl,
		model:       cfg.AIModel,
		temperature: cfg.AITemperature,
		maxTokens:   cfg.AIMaxTokens,
		timeout:     cfg.AITimeout,
	}, nil
}

// WithModel returns a copy of the client targeting a different model and
// temperature. The underlying connection is shared.
func (c *Client) WithModel(model string, temperature float64) *Client {
	cp := *c
	cp.model = model
	cp.temperature = temperature
	return &cp
}

// Generate submits the two-message prompt and returns the raw response text.
func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	result, err := c.client.Models.GenerateContent(
		ctx,
		c.model,
		genai.Text(userPrompt),
		&genai.GenerateContentConfig{
			Temperature:       genai.Ptr(float32(c.temperature)),
			MaxOutputTokens:   int32(c.maxTokens),
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
		},
	)
	observability.AIRequestsTotal.WithLabelValues("gemini", "chat").Inc()
	observability.AIRequestDuration.WithLabelValues("gemini", "chat").Observe(time.Since(start).Seconds())
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
		}
		return "", fmt.Errorf("%w: %v", domain.ErrUpstreamError, err)
	}
	if result == nil {
		return "", nil
	}
	return result.Text(), nil
}
