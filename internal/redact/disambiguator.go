package redact

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/auditware/ticket-sentinel/internal/vocab"
)

// Disambiguator decides REDACT vs PRESERVE for each name candidate. The
// default assumption is redact; the rule chain exists only to rebut it, so
// the first rule that fires preserves the candidate. It never errors: an
// ambiguous candidate either trips a preservation rule or falls through to
// the truncating default.
type Disambiguator struct {
	vocabulary *vocab.Vocabulary
	rules      []preservationRule
}

// preservationRule is one named (predicate -> preserve) pair in the ordered
// chain. Predicates must be pure so concurrent runs can share the chain.
type preservationRule struct {
	name     string
	preserve func(d *Disambiguator, c NameCandidate) bool
}

// NewDisambiguator builds the rule chain over an immutable vocabulary.
func NewDisambiguator(v *vocab.Vocabulary) *Disambiguator {
	return &Disambiguator{
		vocabulary: v,
		rules: []preservationRule{
			{"single_word_term", (*Disambiguator).hasSingleWordTerm},
			{"compound_phrase", (*Disambiguator).isCompoundPhrase},
			{"technical_identifier", (*Disambiguator).isTechnicalIdentifier},
			{"malformed_shape", (*Disambiguator).isMalformed},
			{"business_suffix", (*Disambiguator).hasBusinessSuffix},
		},
	}
}

// Classify evaluates the chain in order, short-circuiting on the first rule
// that preserves. A candidate surviving every rule is treated as a person
// name and truncated to "First L." — enough identity for operational
// continuity, no full surname.
func (d *Disambiguator) Classify(c NameCandidate) Decision {
	for _, rule := range d.rules {
		if rule.preserve(d, c) {
			return Decision{Redact: false, Rule: rule.name}
		}
	}
	return Decision{Redact: true, Rule: "default", Replacement: truncateName(c)}
}

// hasSingleWordTerm preserves candidates where either word is known
// business/technical vocabulary.
func (d *Disambiguator) hasSingleWordTerm(c NameCandidate) bool {
	return d.vocabulary.ContainsSingle(c.First) || d.vocabulary.ContainsSingle(c.Second)
}

// isCompoundPhrase preserves exact two-word business phrases. The bigram is
// normalized to single-space lowercase; the scanner only ever produces
// exactly two words, so a compound entry can never match a superset span.
func (d *Disambiguator) isCompoundPhrase(c NameCandidate) bool {
	return d.vocabulary.ContainsCompound(c.First + " " + c.Second)
}

// isTechnicalIdentifier preserves device/ticket identifier shapes: anything
// with a digit, underscore or dot, plus the vocabulary's hostname/serial
// patterns and tech abbreviation substrings.
func (d *Disambiguator) isTechnicalIdentifier(c NameCandidate) bool {
	if strings.ContainsAny(c.Full, "0123456789_.") {
		return true
	}
	return d.vocabulary.MatchesIdentifier(c.Full)
}

// isMalformed preserves candidates without the canonical proper-noun shape
// for both words. Malformed candidates are assumed non-name; this is the
// conservative default for anything the broad scanner over-matches.
func (d *Disambiguator) isMalformed(c NameCandidate) bool {
	return !isProperNoun(c.First) || !isProperNoun(c.Second)
}

// businessSuffixes are abstract-noun endings that mark gerund/abstraction
// phrases ("Processing Management") missed by the vocabulary tables.
var businessSuffixes = []string{"ing", "tion", "ment", "ness", "ity", "ics", "ogy"}

func (d *Disambiguator) hasBusinessSuffix(c NameCandidate) bool {
	second := strings.ToLower(c.Second)
	for _, suffix := range businessSuffixes {
		if strings.HasSuffix(second, suffix) {
			return true
		}
	}
	return false
}

// isProperNoun reports the canonical shape: first rune upper, remainder
// lower, at least two runes.
func isProperNoun(word string) bool {
	runes := []rune(word)
	if len(runes) < 2 {
		return false
	}
	if !unicode.IsUpper(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if !unicode.IsLower(r) {
			return false
		}
	}
	return true
}

// truncateName keeps the given name and reduces the second word to its
// initial plus a period.
func truncateName(c NameCandidate) string {
	initial, _ := utf8.DecodeRuneInString(c.Second)
	return c.First + " " + string(initial) + "."
}
