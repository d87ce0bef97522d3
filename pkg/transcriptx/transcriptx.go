// Package transcriptx provides small transcript utilities used across the project.
package transcriptx

import (
	"fmt"
	"strings"

	"github.com/NexabitAI/mock-interviews-ai/internal/domain"
)

// Format renders an ordered sequence of speaker turns into a prompt-ready text
// block, one "- <role>: <content>" line per turn, order preserved. An empty
// transcript is a hard precondition failure for the whole pipeline.
func Format(turns []domain.Turn) (string, error) {
	if len(turns) == 0 {
		return "", fmt.Errorf("%w: transcript must not be empty", domain.ErrInvalidArgument)
	}
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		lines = append(lines, fmt.Sprintf("- %s: %s", t.Role, t.Content))
	}
	return strings.Join(lines, "\n"), nil
}

// SanitizeText removes control characters except tab/newline/CR and trims spaces.
func SanitizeText(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || (r >= 32 && r != 127) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
