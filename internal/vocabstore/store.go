package vocabstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/auditware/ticket-sentinel/internal/vocab"
)

// Store handles curated vocabulary storage in PostgreSQL
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// Config contains database configuration
type Config struct {
	DatabaseURL     string        `yaml:"database_url" mapstructure:"database_url"`
	MaxOpenConns    int           `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" mapstructure:"conn_max_idle_time"`
}

// NewStore creates a new vocabulary store instance
func NewStore(config *Config, logger *zap.Logger) (*Store, error) {
	db, err := sqlx.Connect("postgres", config.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	store := &Store{
		db:     db,
		logger: logger,
	}

	if err := store.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	logger.Info("Vocabulary store initialized successfully",
		zap.String("database_url", maskDatabaseURL(config.DatabaseURL)),
		zap.Int("max_open_conns", config.MaxOpenConns),
		zap.Int("max_idle_conns", config.MaxIdleConns))

	return store, nil
}

// initialize checks the database connection and ensures the terms table exists
func (s *Store) initialize() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS vocabulary_terms (
			id       BIGSERIAL PRIMARY KEY,
			term     TEXT NOT NULL,
			kind     TEXT NOT NULL,
			source   TEXT NOT NULL DEFAULT '',
			added_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (term, kind)
		)`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure vocabulary_terms table: %w", err)
	}

	s.logger.Info("Database initialized with vocabulary_terms table")
	return nil
}

// Insert adds a single curated term to the database
func (s *Store) Insert(ctx context.Context, term *Term) error {
	query := `
		INSERT INTO vocabulary_terms (term, kind, source)
		VALUES ($1, $2, $3)
		ON CONFLICT (term, kind) DO NOTHING
		RETURNING id, added_at`

	err := s.db.QueryRowContext(ctx, query,
		term.Term,
		term.Kind,
		term.Source,
	).Scan(&term.ID, &term.AddedAt)

	if err == sql.ErrNoRows {
		s.logger.Debug("Term already present, skipped",
			zap.String("term", term.Term),
			zap.String("kind", term.Kind))
		return nil
	}
	if err != nil {
		s.logger.Error("Failed to insert term",
			zap.Error(err),
			zap.String("term", term.Term),
			zap.String("kind", term.Kind))
		return fmt.Errorf("failed to insert term: %w", err)
	}

	s.logger.Debug("Term inserted successfully",
		zap.Int64("id", term.ID),
		zap.String("term", term.Term))

	return nil
}

// BatchInsert adds multiple curated terms efficiently
func (s *Store) BatchInsert(ctx context.Context, terms []*Term) (*BatchInsertResult, error) {
	if len(terms) == 0 {
		return &BatchInsertResult{}, nil
	}

	start := time.Now()
	result := &BatchInsertResult{}

	valueStrings := make([]string, 0, len(terms))
	valueArgs := make([]interface{}, 0, len(terms)*3)

	for i, term := range terms {
		valueStrings = append(valueStrings, fmt.Sprintf("($%d, $%d, $%d)", i*3+1, i*3+2, i*3+3))
		valueArgs = append(valueArgs,
			term.Term,
			term.Kind,
			term.Source,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO vocabulary_terms (term, kind, source)
		VALUES %s
		ON CONFLICT (term, kind) DO NOTHING`,
		strings.Join(valueStrings, ","))

	res, err := s.db.ExecContext(ctx, query, valueArgs...)
	if err != nil {
		result.Failed = int64(len(terms))
		result.Errors = []error{err}
		s.logger.Error("Batch insert failed", zap.Error(err))
		return result, fmt.Errorf("batch insert failed: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		s.logger.Warn("Could not get rows affected", zap.Error(err))
		inserted = int64(len(terms))
	}

	result.Inserted = inserted
	result.Duplicates = int64(len(terms)) - inserted
	result.Duration = time.Since(start)

	s.logger.Info("Batch insert completed",
		zap.Int64("inserted", result.Inserted),
		zap.Int64("duplicates_skipped", result.Duplicates),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// GetStats returns curated vocabulary counts by kind
func (s *Store) GetStats(ctx context.Context) (*TermStats, error) {
	stats := &TermStats{}

	query := `
		SELECT
			COUNT(*) as total,
			COUNT(CASE WHEN kind = 'single' THEN 1 END) as singles,
			COUNT(CASE WHEN kind = 'compound' THEN 1 END) as compounds,
			COUNT(CASE WHEN kind = 'pattern' THEN 1 END) as patterns,
			COUNT(CASE WHEN kind = 'abbreviation' THEN 1 END) as abbrevs
		FROM vocabulary_terms`

	err := s.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalTerms,
		&stats.SingleCount,
		&stats.CompoundCount,
		&stats.PatternCount,
		&stats.AbbrevCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get term stats: %w", err)
	}

	return stats, nil
}

// Export reads every curated term and assembles vocabulary tables,
// merged on top of the built-in defaults.
func (s *Store) Export(ctx context.Context, version string) (*vocab.Tables, error) {
	query := `SELECT id, term, kind, source, added_at FROM vocabulary_terms ORDER BY kind, term`

	var terms []Term
	if err := s.db.SelectContext(ctx, &terms, query); err != nil {
		return nil, fmt.Errorf("failed to read terms: %w", err)
	}

	extra := vocab.Tables{Version: version}
	for _, t := range terms {
		switch t.Kind {
		case KindSingle:
			extra.SingleTerms = append(extra.SingleTerms, t.Term)
		case KindCompound:
			extra.CompoundTerms = append(extra.CompoundTerms, t.Term)
		case KindPattern:
			extra.IdentifierPatterns = append(extra.IdentifierPatterns, t.Term)
		case KindAbbrev:
			extra.TechAbbreviations = append(extra.TechAbbreviations, t.Term)
		default:
			s.logger.Warn("Skipping term with unknown kind",
				zap.String("term", t.Term),
				zap.String("kind", t.Kind))
		}
	}

	tables := vocab.Merge(vocab.DefaultTables(), extra)
	tables.Version = version

	s.logger.Info("Vocabulary exported",
		zap.Int("curated_terms", len(terms)),
		zap.String("version", version))

	return &tables, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// maskDatabaseURL masks sensitive information in database URL for logging
func maskDatabaseURL(url string) string {
	if strings.Contains(url, "@") {
		parts := strings.Split(url, "@")
		if len(parts) >= 2 {
			userPart := parts[0]
			if strings.Contains(userPart, ":") {
				userParts := strings.Split(userPart, ":")
				if len(userParts) >= 3 {
					userParts[len(userParts)-1] = "***"
					parts[0] = strings.Join(userParts, ":")
				}
			}
			return strings.Join(parts, "@")
		}
	}
	return url
}
