package query

import "strings"

// Complexity thresholds. A query crossing any of them is routed to the
// deep-reasoning tier.
const (
	MaxQuestionMarks = 1
	ComplexWordCount = 60
)

// IsComplex decides whether the combined outbound text warrants deeper
// reasoning: more than one question mark, any word fuzzy-matching a
// complexity keyword, or a word count above the cutoff. Evaluated once
// per routing decision.
func IsComplex(text string) bool {
	text = strings.ToLower(text)

	if strings.Count(text, "?") > MaxQuestionMarks {
		return true
	}

	words := strings.Fields(text)
	for _, w := range words {
		if MatchesComplex(w) {
			return true
		}
	}

	return len(words) > ComplexWordCount
}
