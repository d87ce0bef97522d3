// Package ai provides response sanitization utilities for text-generation
// output. Providers are instructed to return bare JSON but routinely wrap it
// in markdown fences or prose, so cleaning is defensive rather than assumed
// unnecessary.
package ai

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/NexabitAI/mock-interviews-ai/internal/domain"
)

// ResponseCleaner strips formatting artifacts from LLM responses and verifies
// the remainder is parseable JSON.
type ResponseCleaner struct{}

// NewResponseCleaner creates a new response cleaner.
func NewResponseCleaner() *ResponseCleaner { return &ResponseCleaner{} }

// CleanJSON sanitizes a raw response down to a JSON payload.
// Blank input fails with domain.ErrEmptyResponse; input that cannot be
// reduced to valid JSON fails with domain.ErrMalformedResponse.
func (rc *ResponseCleaner) CleanJSON(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("%w: generator returned no text", domain.ErrEmptyResponse)
	}
	cleaned := rc.removeMarkdownFences(raw)
	cleaned = rc.extractJSON(cleaned)
	if !gjson.Valid(cleaned) {
		return "", fmt.Errorf("%w: not valid JSON", domain.ErrMalformedResponse)
	}
	return cleaned, nil
}

// removeMarkdownFences removes ``` blocks the generator may have added.
func (rc *ResponseCleaner) removeMarkdownFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	// Fences may also appear mid-text when the model adds prose around them.
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// extractJSON pulls the first balanced JSON object or array out of mixed
// content. Returns the input unchanged when no balanced value is found.
func (rc *ResponseCleaner) extractJSON(s string) string {
	objStart := strings.IndexByte(s, '{')
	arrStart := strings.IndexByte(s, '[')
	start := objStart
	open, clos := byte('{'), byte('}')
	if start == -1 || (arrStart != -1 && arrStart < start) {
		start = arrStart
		open, clos = '[', ']'
	}
	if start == -1 {
		return s
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case clos:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return s
}
