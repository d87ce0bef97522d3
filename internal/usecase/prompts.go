package usecase

import (
	"fmt"
	"strings"
)

// Prompts demand bare JSON, but nothing downstream assumes compliance; the
// sanitizer and schema stages treat every response as untrusted.

const feedbackSystemPrompt = "You are a professional interviewer. Return ONLY valid JSON. No markdown. No explanations."

const feedbackUserPromptTemplate = `
Analyze the following mock interview transcript and generate structured feedback.

Transcript:
%s

Return JSON ONLY in this exact format:
{
  "totalScore": number,
  "categoryScores": [
    {"name": "Communication Skills", "score": number, "comment": string},
    {"name": "Technical Knowledge", "score": number, "comment": string},
    {"name": "Problem Solving", "score": number, "comment": string},
    {"name": "Cultural Fit", "score": number, "comment": string},
    {"name": "Confidence and Clarity", "score": number, "comment": string}
  ],
  "strengths": string[],
  "areasForImprovement": string[],
  "finalAssessment": string
}
`

func feedbackUserPrompt(formattedTranscript string) string {
	return fmt.Sprintf(feedbackUserPromptTemplate, formattedTranscript)
}

const questionSystemPrompt = "You generate interview questions. Return ONLY a valid JSON array of strings. No markdown. No explanation."

const questionUserPromptTemplate = `
Prepare questions for a job interview.

Role: %s
Experience Level: %s
Tech Stack: %s
Focus: %s
Number of questions: %d

Rules:
- Return ONLY a JSON array
- Do not include extra text
- Do not use special characters like / or *
- Format example:
["Question 1", "Question 2"]
`

func questionUserPrompt(role, level, techstack, focus string, amount int) string {
	return fmt.Sprintf(questionUserPromptTemplate, role, level, strings.TrimSpace(techstack), focus, amount)
}
