package vocabstore

import (
	"time"
)

// Term kinds stored in the curated vocabulary table.
const (
	KindSingle   = "single"
	KindCompound = "compound"
	KindPattern  = "pattern"
	KindAbbrev   = "abbreviation"
)

// Term represents a curated vocabulary entry.
type Term struct {
	ID      int64     `db:"id" json:"id"`
	Term    string    `db:"term" json:"term"`
	Kind    string    `db:"kind" json:"kind"`
	Source  string    `db:"source" json:"source"`
	AddedAt time.Time `db:"added_at" json:"added_at"`
}

// TermStats represents curated vocabulary counts.
type TermStats struct {
	TotalTerms    int64 `json:"total_terms"`
	SingleCount   int64 `json:"single_count"`
	CompoundCount int64 `json:"compound_count"`
	PatternCount  int64 `json:"pattern_count"`
	AbbrevCount   int64 `json:"abbreviation_count"`
}

// BatchInsertResult represents the result of a batch insert operation
type BatchInsertResult struct {
	Inserted   int64         `json:"inserted"`
	Duplicates int64         `json:"duplicates"`
	Failed     int64         `json:"failed"`
	Duration   time.Duration `json:"duration"`
	Errors     []error       `json:"errors,omitempty"`
}
