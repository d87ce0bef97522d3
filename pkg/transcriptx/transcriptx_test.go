package transcriptx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NexabitAI/mock-interviews-ai/internal/domain"
)

func TestFormat(t *testing.T) {
	got, err := Format([]domain.Turn{
		{Role: "interviewer", Content: "Tell me about goroutines."},
		{Role: "candidate", Content: "They are lightweight threads."},
		{Role: "interviewer", Content: "And channels?"},
	})
	require.NoError(t, err)
	want := "- interviewer: Tell me about goroutines.\n- candidate: They are lightweight threads.\n- interviewer: And channels?"
	assert.Equal(t, want, got)
}

func TestFormatSingleTurn(t *testing.T) {
	got, err := Format([]domain.Turn{{Role: "candidate", Content: "Hello"}})
	require.NoError(t, err)
	assert.Equal(t, "- candidate: Hello", got)
}

func TestFormatEmptyTranscript(t *testing.T) {
	_, err := Format(nil)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = Format([]domain.Turn{})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestFormatPreservesOrder(t *testing.T) {
	turns := []domain.Turn{
		{Role: "a", Content: "1"},
		{Role: "b", Content: "2"},
		{Role: "a", Content: "3"},
	}
	got, err := Format(turns)
	require.NoError(t, err)
	assert.Equal(t, "- a: 1\n- b: 2\n- a: 3", got)
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "hello world", SanitizeText("  hello\x00 world\x01  "))
	assert.Equal(t, "line1\nline2", SanitizeText("line1\nline2"))
}
