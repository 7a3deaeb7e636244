package ingest

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/segmentio/parquet-go"
	"go.uber.org/zap"

	"github.com/auditware/ticket-sentinel/internal/vocabstore"
)

// Pipeline loads curated vocabulary terms from export files into the store.
type Pipeline struct {
	store  *vocabstore.Store
	config *Config
	logger *zap.Logger
}

// NewPipeline creates a new ingest pipeline
func NewPipeline(store *vocabstore.Store, config *Config, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		store:  store,
		config: config,
		logger: logger,
	}
}

// ProcessFile processes a term file (CSV, Parquet, or JSON lines)
func (p *Pipeline) ProcessFile(ctx context.Context, filePath string) (*ProcessingResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	p.logger.Info("Starting term ingest",
		zap.String("file", filePath),
		zap.Int("batch_size", p.config.BatchSize))

	start := time.Now()
	result := &ProcessingResult{}

	format := DetectFileFormat(filePath)
	p.logger.Info("Detected file format", zap.String("format", string(format)))

	var err error
	switch format {
	case FormatCSV:
		err = p.processCSV(ctx, filePath, result)
	case FormatParquet:
		err = p.processParquet(ctx, filePath, result)
	case FormatJSON:
		err = p.processJSON(ctx, filePath, result)
	default:
		return result, fmt.Errorf("unsupported file format: %s", format)
	}
	if err != nil {
		return result, fmt.Errorf("%s processing failed: %w", format, err)
	}

	result.Duration = time.Since(start)

	p.logger.Info("Term ingest completed",
		zap.Int64("total_records", result.TotalRecords),
		zap.Int64("processed_ok", result.ProcessedOK),
		zap.Int64("processed_failed", result.ProcessedFailed),
		zap.Int64("duplicates", result.Duplicates),
		zap.Duration("total_duration", result.Duration),
		zap.Duration("database_time", result.DatabaseTime))

	return result, nil
}

// processCSV processes CSV files with a term,kind,source header
func (p *Pipeline) processCSV(ctx context.Context, filePath string, result *ProcessingResult) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = 3 // term, kind, source

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}

	p.logger.Info("CSV header detected", zap.Strings("columns", header))

	return p.processBatches(ctx, func() ([]*TermRecord, error) {
		var batch []*TermRecord

		for len(batch) < p.config.BatchSize {
			record, err := reader.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				p.logger.Warn("Failed to read CSV record", zap.Error(err))
				continue
			}

			if len(record) != 3 {
				p.logger.Warn("Invalid CSV record length", zap.Int("length", len(record)))
				continue
			}

			termRecord := &TermRecord{
				Term:   strings.TrimSpace(record[0]),
				Kind:   strings.ToLower(strings.TrimSpace(record[1])),
				Source: strings.TrimSpace(record[2]),
			}

			if p.validateRecord(termRecord) {
				batch = append(batch, termRecord)
			} else {
				result.ProcessedFailed++
			}
		}

		return batch, nil
	}, result)
}

// processParquet processes Parquet files
func (p *Pipeline) processParquet(ctx context.Context, filePath string, result *ProcessingResult) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open Parquet file: %w", err)
	}
	defer file.Close()

	reader := parquet.NewReader(file)
	defer reader.Close()

	return p.processBatches(ctx, func() ([]*TermRecord, error) {
		var batch []*TermRecord

		for len(batch) < p.config.BatchSize {
			var record TermRecord
			err := reader.Read(&record)
			if err == io.EOF {
				break
			}
			if err != nil {
				p.logger.Warn("Failed to read Parquet record", zap.Error(err))
				continue
			}

			record.Term = strings.TrimSpace(record.Term)
			record.Kind = strings.ToLower(strings.TrimSpace(record.Kind))

			if p.validateRecord(&record) {
				batch = append(batch, &record)
			} else {
				result.ProcessedFailed++
			}
		}

		return batch, nil
	}, result)
}

// processJSON processes JSON files (one JSON object per line)
func (p *Pipeline) processJSON(ctx context.Context, filePath string, result *ProcessingResult) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open JSON file: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)

	return p.processBatches(ctx, func() ([]*TermRecord, error) {
		var batch []*TermRecord

		for len(batch) < p.config.BatchSize {
			var record TermRecord
			err := decoder.Decode(&record)
			if err == io.EOF {
				break
			}
			if err != nil {
				p.logger.Warn("Failed to read JSON record", zap.Error(err))
				continue
			}

			record.Term = strings.TrimSpace(record.Term)
			record.Kind = strings.ToLower(strings.TrimSpace(record.Kind))

			if p.validateRecord(&record) {
				batch = append(batch, &record)
			} else {
				result.ProcessedFailed++
			}
		}

		return batch, nil
	}, result)
}

// processBatches processes data in batches using the provided reader function
func (p *Pipeline) processBatches(ctx context.Context, readBatch func() ([]*TermRecord, error), result *ProcessingResult) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		batch, err := readBatch()
		if err != nil {
			return fmt.Errorf("failed to read batch: %w", err)
		}

		if len(batch) == 0 {
			break // End of file
		}

		if err := p.processBatch(ctx, batch, result); err != nil {
			p.logger.Error("Batch processing failed", zap.Error(err))
			result.ProcessedFailed += int64(len(batch))
			result.Errors = append(result.Errors, err.Error())
			continue
		}

		result.TotalRecords += int64(len(batch))

		if p.config.ProgressReport > 0 && result.TotalRecords%int64(p.config.ProgressReport) == 0 {
			p.logger.Info("Processing progress",
				zap.Int64("records_processed", result.TotalRecords),
				zap.Int64("records_ok", result.ProcessedOK),
				zap.Int64("records_failed", result.ProcessedFailed))
		}
	}

	return nil
}

// processBatch stores a single batch of validated terms
func (p *Pipeline) processBatch(ctx context.Context, batch []*TermRecord, result *ProcessingResult) error {
	terms := make([]*vocabstore.Term, len(batch))
	for i, record := range batch {
		terms[i] = &vocabstore.Term{
			Term:   record.Term,
			Kind:   record.Kind,
			Source: record.Source,
		}
	}

	if p.config.DryRun {
		result.ProcessedOK += int64(len(terms))
		return nil
	}

	dbStart := time.Now()
	batchResult, err := p.store.BatchInsert(ctx, terms)
	if err != nil {
		return fmt.Errorf("database batch insert failed: %w", err)
	}
	result.DatabaseTime += time.Since(dbStart)
	result.ProcessedOK += batchResult.Inserted
	result.Duplicates += batchResult.Duplicates

	p.logger.Debug("Batch processed successfully",
		zap.Int("batch_size", len(batch)),
		zap.Int64("inserted", batchResult.Inserted),
		zap.Int64("duplicates", batchResult.Duplicates))

	return nil
}

// validateRecord validates a term record
func (p *Pipeline) validateRecord(record *TermRecord) bool {
	if !p.config.ValidateData {
		return true
	}

	if record.Term == "" {
		p.logger.Debug("Invalid record: empty term")
		return false
	}

	if len(record.Term) > 200 {
		p.logger.Debug("Invalid record: term too long", zap.Int("length", len(record.Term)))
		return false
	}

	switch record.Kind {
	case vocabstore.KindSingle:
		if strings.ContainsAny(record.Term, " \t") {
			p.logger.Debug("Invalid record: single term contains whitespace", zap.String("term", record.Term))
			return false
		}
	case vocabstore.KindCompound:
		if len(strings.Fields(record.Term)) != 2 {
			p.logger.Debug("Invalid record: compound term is not two words", zap.String("term", record.Term))
			return false
		}
	case vocabstore.KindPattern:
		if _, err := regexp.Compile(record.Term); err != nil {
			p.logger.Debug("Invalid record: pattern does not compile",
				zap.String("term", record.Term), zap.Error(err))
			return false
		}
	case vocabstore.KindAbbrev:
		if strings.ContainsAny(record.Term, " \t") {
			p.logger.Debug("Invalid record: abbreviation contains whitespace", zap.String("term", record.Term))
			return false
		}
	default:
		p.logger.Debug("Invalid record: unknown kind", zap.String("kind", record.Kind))
		return false
	}

	return true
}
