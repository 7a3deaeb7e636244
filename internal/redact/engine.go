// Package redact rewrites incident-ticket text so it can be sent to a
// hosted LLM: structured PII is replaced with sentinel tokens, and person
// names are distinguished from superficially similar business and technical
// vocabulary before being truncated.
package redact

import (
	"go.uber.org/zap"

	"github.com/auditware/ticket-sentinel/internal/logger"
	"github.com/auditware/ticket-sentinel/internal/vocab"
)

// Engine performs full redaction passes. It holds only immutable state (the
// detector registry, the rule chain, and the vocabulary snapshot), so one
// Engine is safe for concurrent use across documents.
type Engine struct {
	detectors     []detector
	disambiguator *Disambiguator
	vocabulary    *vocab.Vocabulary
	logger        *logger.Logger
}

// NewEngine creates an engine over a vocabulary snapshot.
func NewEngine(v *vocab.Vocabulary, log *logger.Logger) *Engine {
	engine := &Engine{
		detectors:     defaultDetectors(),
		disambiguator: NewDisambiguator(v),
		vocabulary:    v,
		logger:        log,
	}

	singles, compounds, patterns := v.Counts()
	log.Info("Redaction engine initialized",
		zap.String("vocabulary_version", v.Version()),
		zap.Int("detectors", len(engine.detectors)),
		zap.Int("single_terms", singles),
		zap.Int("compound_terms", compounds),
		zap.Int("identifier_patterns", patterns),
	)

	return engine
}

// Redact runs one full pass: structured-PII substitution in fixed category
// order, then the name-candidate scan with per-candidate disambiguation.
// It is total over all inputs — the empty string yields zero counts and the
// input unchanged — and never returns an error.
func (e *Engine) Redact(text string) Document {
	stats := Statistics{}
	out := text

	for _, det := range e.detectors {
		var n int
		out, n = det.apply(out)
		stats.add(det.category, n)
	}

	out, names := scanNames(out, e.disambiguator.Classify)
	stats.NamesRedacted = names

	// The total must be summed only after every detector has run; summing
	// incrementally while categories are still being populated undercounts.
	stats.TotalRedactions = stats.sum()

	if stats.TotalRedactions > 0 {
		e.logger.Debug("Document redacted",
			zap.Int("total_redactions", stats.TotalRedactions),
			zap.Int("names_redacted", stats.NamesRedacted),
			zap.Int("input_bytes", len(text)),
		)
	}

	return Document{Text: out, Stats: stats}
}

// Vocabulary returns the vocabulary snapshot this engine was built over.
func (e *Engine) Vocabulary() *vocab.Vocabulary {
	return e.vocabulary
}
