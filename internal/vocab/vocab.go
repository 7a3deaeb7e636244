// Package vocab holds the exclusion vocabulary: the maintained tables of
// business and technical terms that the name disambiguator must never
// mistake for person names. The vocabulary is the system of record for
// redaction correctness and is expected to grow as new false positives are
// found in real tickets.
package vocab

import (
	"fmt"
	"regexp"
	"strings"
)

// Tables is the serializable form of the vocabulary, as stored in the
// curated YAML data file.
type Tables struct {
	Version string `yaml:"version"`

	// SingleTerms are individual business/technical words. A candidate
	// bigram containing any of them (case-insensitive) is preserved.
	SingleTerms []string `yaml:"single_terms"`

	// CompoundTerms are exact two-word business phrases ("service offering",
	// "time worked"). Matched against the lowercased full bigram only.
	CompoundTerms []string `yaml:"compound_terms"`

	// IdentifierPatterns are regexes for hostnames, serials, ticket numbers
	// and other device/record identifiers that can look name-shaped.
	IdentifierPatterns []string `yaml:"identifier_patterns"`

	// TechAbbreviations are short substrings ("fw", "srv") whose presence
	// marks a span as a device identifier rather than a name.
	TechAbbreviations []string `yaml:"tech_abbreviations"`
}

// Vocabulary is the compiled, immutable form consulted during a redaction
// run. It is never mutated after construction, so a single instance is safe
// to share across concurrent runs.
type Vocabulary struct {
	version     string
	singles     map[string]struct{}
	compounds   map[string]struct{}
	identifiers []*regexp.Regexp
	abbrevs     []string
}

// New compiles a Vocabulary from tables. All terms are lowercased; empty
// terms and non-compiling patterns are rejected.
func New(tables Tables) (*Vocabulary, error) {
	v := &Vocabulary{
		version:   tables.Version,
		singles:   make(map[string]struct{}, len(tables.SingleTerms)),
		compounds: make(map[string]struct{}, len(tables.CompoundTerms)),
	}

	for _, term := range tables.SingleTerms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			return nil, fmt.Errorf("empty single-word term in vocabulary")
		}
		v.singles[term] = struct{}{}
	}

	for _, term := range tables.CompoundTerms {
		term = strings.ToLower(strings.TrimSpace(term))
		if len(strings.Fields(term)) != 2 {
			return nil, fmt.Errorf("compound term %q is not a two-word phrase", term)
		}
		v.compounds[term] = struct{}{}
	}

	for _, pattern := range tables.IdentifierPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid identifier pattern %q: %w", pattern, err)
		}
		v.identifiers = append(v.identifiers, re)
	}

	for _, abbrev := range tables.TechAbbreviations {
		abbrev = strings.ToLower(strings.TrimSpace(abbrev))
		if abbrev == "" {
			return nil, fmt.Errorf("empty tech abbreviation in vocabulary")
		}
		v.abbrevs = append(v.abbrevs, abbrev)
	}

	return v, nil
}

// Version returns the vocabulary version string.
func (v *Vocabulary) Version() string {
	return v.version
}

// ContainsSingle reports whether word is a known business/technical term.
func (v *Vocabulary) ContainsSingle(word string) bool {
	_, ok := v.singles[strings.ToLower(word)]
	return ok
}

// ContainsCompound reports whether the exact lowercased bigram is a known
// business phrase. Only whole two-word spans are ever checked; "time worked"
// does not cover "time worked on".
func (v *Vocabulary) ContainsCompound(bigram string) bool {
	_, ok := v.compounds[strings.ToLower(bigram)]
	return ok
}

// MatchesIdentifier reports whether the span matches any technical
// identifier pattern or contains a known tech abbreviation.
func (v *Vocabulary) MatchesIdentifier(span string) bool {
	for _, re := range v.identifiers {
		if re.MatchString(span) {
			return true
		}
	}

	spanLower := strings.ToLower(span)
	for _, abbrev := range v.abbrevs {
		if strings.Contains(spanLower, abbrev) {
			return true
		}
	}

	return false
}

// Counts returns the table sizes, for logging and the info endpoint.
func (v *Vocabulary) Counts() (singles, compounds, patterns int) {
	return len(v.singles), len(v.compounds), len(v.identifiers)
}
