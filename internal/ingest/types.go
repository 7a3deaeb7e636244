package ingest

import (
	"time"
)

// TermRecord represents a single record from an input term file
type TermRecord struct {
	Term   string `csv:"term" parquet:"term" json:"term"`
	Kind   string `csv:"kind" parquet:"kind" json:"kind"`
	Source string `csv:"source" parquet:"source" json:"source"`
}

// ProcessingResult represents the result of processing a term file
type ProcessingResult struct {
	TotalRecords    int64         `json:"total_records"`
	ProcessedOK     int64         `json:"processed_ok"`
	ProcessedFailed int64         `json:"processed_failed"`
	Duplicates      int64         `json:"duplicates"`
	Duration        time.Duration `json:"duration"`
	DatabaseTime    time.Duration `json:"database_time"`
	Errors          []string      `json:"errors,omitempty"`
}

// Config contains ingest pipeline configuration
type Config struct {
	BatchSize      int  `yaml:"batch_size" mapstructure:"batch_size"`           // 500
	ValidateData   bool `yaml:"validate_data" mapstructure:"validate_data"`     // true
	DryRun         bool `yaml:"dry_run" mapstructure:"dry_run"`                 // false
	ProgressReport int  `yaml:"progress_report" mapstructure:"progress_report"` // 1000
}

// FileFormat represents supported file formats
type FileFormat string

const (
	FormatCSV     FileFormat = "csv"
	FormatParquet FileFormat = "parquet"
	FormatJSON    FileFormat = "json"
)

// DetectFileFormat detects file format from extension
func DetectFileFormat(filename string) FileFormat {
	switch {
	case len(filename) >= 4 && filename[len(filename)-4:] == ".csv":
		return FormatCSV
	case len(filename) >= 8 && filename[len(filename)-8:] == ".parquet":
		return FormatParquet
	case len(filename) >= 5 && filename[len(filename)-5:] == ".json":
		return FormatJSON
	default:
		return FormatCSV
	}
}
