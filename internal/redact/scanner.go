package redact

import (
	"regexp"
	"strings"
)

// namePattern flags every "Capitalized-Word Capitalized-Word" bigram as a
// name candidate. It runs after structured-PII substitution; sentinel tokens
// are bracketed all-caps, so they can never be candidates.
var namePattern = regexp.MustCompile(`\b([A-Z][a-z]+)\s+([A-Z][a-z]+)\b`)

// scanNames walks the candidates left-to-right, non-overlapping, asking
// decide once per occurrence, and rewrites redacted candidates in place.
// The scanner makes no redact/preserve decision itself.
func scanNames(text string, decide func(NameCandidate) Decision) (string, int) {
	matches := namePattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, 0
	}

	var b strings.Builder
	b.Grow(len(text))
	last, count := 0, 0
	for _, m := range matches {
		start, end := m[0], m[1]
		candidate := NameCandidate{
			Full:   text[start:end],
			First:  text[m[2]:m[3]],
			Second: text[m[4]:m[5]],
			Offset: start,
		}

		b.WriteString(text[last:start])
		if decision := decide(candidate); decision.Redact {
			b.WriteString(decision.Replacement)
			count++
		} else {
			b.WriteString(candidate.Full)
		}
		last = end
	}
	b.WriteString(text[last:])

	return b.String(), count
}
