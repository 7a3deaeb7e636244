// Package cache provides a Redis-backed cache of redaction results. Batch
// reruns over the same exports are common, and redaction is deterministic
// for a given vocabulary version, so results are safe to reuse.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/auditware/ticket-sentinel/internal/redact"
)

// DocumentCache caches redacted documents keyed by input text hash and
// vocabulary version.
type DocumentCache struct {
	client *redis.Client
	config *Config
	logger *zap.Logger
	stats  *counters
}

// Config contains cache configuration
type Config struct {
	RedisURL   string        `yaml:"redis_url" mapstructure:"redis_url"`
	KeyPrefix  string        `yaml:"key_prefix" mapstructure:"key_prefix"`
	DefaultTTL time.Duration `yaml:"default_ttl" mapstructure:"default_ttl"`
}

// counters are read by GetStats while Get runs on request goroutines.
type counters struct {
	hits   atomic.Int64
	misses atomic.Int64
}

// Stats reports cache performance.
type Stats struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	HitRate   float64 `json:"hit_rate"`
	TotalKeys int64   `json:"total_keys"`
}

// entry is the serialized cache record.
type entry struct {
	Document          redact.Document `json:"document"`
	VocabularyVersion string          `json:"vocabulary_version"`
	CachedAt          time.Time       `json:"cached_at"`
}

// New creates a DocumentCache and verifies connectivity.
func New(config *Config, logger *zap.Logger) (*DocumentCache, error) {
	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Document cache initialized",
		zap.String("redis_url", maskRedisURL(config.RedisURL)),
		zap.Duration("default_ttl", config.DefaultTTL))

	return &DocumentCache{
		client: client,
		config: config,
		logger: logger,
		stats:  &counters{},
	}, nil
}

// Get returns the cached document for text, if one exists for this
// vocabulary version. A miss returns (zero Document, false, nil).
func (c *DocumentCache) Get(ctx context.Context, text, vocabVersion string) (redact.Document, bool, error) {
	key := c.key(text)

	data, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		c.stats.misses.Add(1)
		return redact.Document{}, false, nil
	} else if err != nil {
		c.logger.Error("Cache lookup failed", zap.Error(err))
		return redact.Document{}, false, err
	}

	var e entry
	if err := json.Unmarshal([]byte(data), &e); err != nil {
		c.logger.Error("Failed to unmarshal cached document", zap.Error(err))
		// Drop the corrupted record so it does not keep failing.
		c.client.Del(ctx, key)
		c.stats.misses.Add(1)
		return redact.Document{}, false, nil
	}

	// Results from an older vocabulary are stale.
	if e.VocabularyVersion != vocabVersion {
		c.stats.misses.Add(1)
		return redact.Document{}, false, nil
	}

	c.stats.hits.Add(1)
	c.logger.Debug("Cache hit", zap.String("key", key))
	return e.Document, true, nil
}

// Store caches a redacted document with the configured TTL.
func (c *DocumentCache) Store(ctx context.Context, text, vocabVersion string, doc redact.Document) error {
	data, err := json.Marshal(entry{
		Document:          doc,
		VocabularyVersion: vocabVersion,
		CachedAt:          time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal document for caching: %w", err)
	}

	if err := c.client.Set(ctx, c.key(text), data, c.config.DefaultTTL).Err(); err != nil {
		c.logger.Error("Failed to cache document", zap.Error(err))
		return fmt.Errorf("failed to cache document: %w", err)
	}

	return nil
}

// GetStats returns cache performance statistics.
func (c *DocumentCache) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		Hits:   c.stats.hits.Load(),
		Misses: c.stats.misses.Load(),
	}

	total := stats.Hits + stats.Misses
	if total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total) * 100
	}

	keys, err := c.client.DBSize(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get Redis key count: %w", err)
	}
	stats.TotalKeys = keys

	return stats, nil
}

// Clear removes all cached documents under this cache's prefix.
func (c *DocumentCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.config.KeyPrefix+":*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache keys: %w", err)
	}

	c.logger.Info("Cache cleared", zap.Int("deleted_keys", len(keys)))
	return nil
}

// Close closes the Redis connection.
func (c *DocumentCache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// key derives the cache key from the input text hash.
func (c *DocumentCache) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%s:doc:%s", c.config.KeyPrefix, hex.EncodeToString(sum[:16]))
}

// maskRedisURL masks credentials in the Redis URL for logging.
func maskRedisURL(url string) string {
	if !strings.Contains(url, "@") {
		return url
	}
	parts := strings.Split(url, "@")
	userPart := parts[0]
	if idx := strings.LastIndex(userPart, ":"); idx > strings.Index(userPart, "//") {
		parts[0] = userPart[:idx+1] + "***"
	}
	return strings.Join(parts, "@")
}
