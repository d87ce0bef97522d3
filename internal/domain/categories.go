package domain

import "strings"

// Canonical scoring categories. Every Feedback reports exactly these five.
const (
	CategoryCommunication = "Communication Skills"
	CategoryTechnical     = "Technical Knowledge"
	CategoryProblemSolve  = "Problem Solving"
	CategoryCulturalFit   = "Cultural Fit"
	CategoryConfidence    = "Confidence and Clarity"
)

// CanonicalCategories lists the fixed category vocabulary in report order.
var CanonicalCategories = []string{
	CategoryCommunication,
	CategoryTechnical,
	CategoryProblemSolve,
	CategoryCulturalFit,
	CategoryConfidence,
}

// NormalizeCategory maps a generator-phrased category label onto its canonical
// name via keyword matching. Generators routinely emit variants such as
// "Problem-Solving", "Cultural & Role Fit" or "Confidence & Clarity Score"
// despite explicit instructions, so matching is by keyword rather than exact
// string. Returns the canonical name and true, or "" and false when the label
// matches no known category.
func NormalizeCategory(label string) (string, bool) {
	l := strings.ToLower(label)
	// Strip separators that show up in hyphenated or ampersand variants.
	l = strings.NewReplacer("-", " ", "_", " ", "&", " ", "/", " ").Replace(l)
	switch {
	case strings.Contains(l, "communication"):
		return CategoryCommunication, true
	case strings.Contains(l, "technical"), strings.Contains(l, "knowledge"):
		return CategoryTechnical, true
	case strings.Contains(l, "problem"):
		return CategoryProblemSolve, true
	case strings.Contains(l, "cultur"), strings.Contains(l, "fit"):
		return CategoryCulturalFit, true
	case strings.Contains(l, "confidence"), strings.Contains(l, "clarity"):
		return CategoryConfidence, true
	}
	return "", false
}
