package config

import "time"

// Config represents the main configuration structure
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Redaction RedactionConfig `yaml:"redaction" mapstructure:"redaction"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
	WebSocket WebSocketConfig `yaml:"websocket" mapstructure:"websocket"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port           int           `yaml:"port" mapstructure:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	MaxRequestSize int64         `yaml:"max_request_size" mapstructure:"max_request_size"`
	RateLimit      struct {
		Enabled        bool `yaml:"enabled" mapstructure:"enabled"`
		RequestsPerSec int  `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
		Burst          int  `yaml:"burst" mapstructure:"burst"`
	} `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// RedactionConfig configures the redaction engine and its vocabulary
type RedactionConfig struct {
	// VocabularyFile is the curated YAML data file extending the built-in
	// exclusion vocabulary. Empty means built-ins only.
	VocabularyFile string `yaml:"vocabulary_file" mapstructure:"vocabulary_file"`
	// WatchVocabulary reloads the vocabulary file on change.
	WatchVocabulary bool `yaml:"watch_vocabulary" mapstructure:"watch_vocabulary"`
}

// CacheConfig contains Redis result cache configuration
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled" mapstructure:"enabled"`
	RedisURL   string        `yaml:"redis_url" mapstructure:"redis_url"`
	KeyPrefix  string        `yaml:"key_prefix" mapstructure:"key_prefix"`
	DefaultTTL time.Duration `yaml:"default_ttl" mapstructure:"default_ttl"`
}

// StoreConfig contains the vocabulary term store (PostgreSQL) configuration
type StoreConfig struct {
	DatabaseURL     string        `yaml:"database_url" mapstructure:"database_url"`
	MaxOpenConns    int           `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // json or console
	File   struct {
		Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
		Path    string `yaml:"path" mapstructure:"path"`
	} `yaml:"file" mapstructure:"file"`
}

// WebSocketConfig contains the dashboard event stream configuration
type WebSocketConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
	Events  struct {
		BroadcastRequests   bool `yaml:"broadcast_requests" mapstructure:"broadcast_requests"`
		BroadcastRedactions bool `yaml:"broadcast_redactions" mapstructure:"broadcast_redactions"`
		BroadcastSystem     bool `yaml:"broadcast_system" mapstructure:"broadcast_system"`
	} `yaml:"events" mapstructure:"events"`
}

// GetDefaults returns a configuration with sensible defaults
func GetDefaults() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:           8080,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxRequestSize: 10 << 20, // 10 MB of extracted ticket text
		},
		Redaction: RedactionConfig{
			VocabularyFile:  "",
			WatchVocabulary: true,
		},
		Cache: CacheConfig{
			Enabled:    false,
			RedisURL:   "redis://localhost:6379/0",
			KeyPrefix:  "ticket-sentinel",
			DefaultTTL: 24 * time.Hour,
		},
		Store: StoreConfig{
			DatabaseURL:     "",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		WebSocket: WebSocketConfig{
			Enabled: true,
			Path:    "/ws",
		},
	}

	cfg.Server.RateLimit.Enabled = true
	cfg.Server.RateLimit.RequestsPerSec = 20
	cfg.Server.RateLimit.Burst = 40

	cfg.WebSocket.Events.BroadcastRequests = true
	cfg.WebSocket.Events.BroadcastRedactions = true
	cfg.WebSocket.Events.BroadcastSystem = true

	return cfg
}
