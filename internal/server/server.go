package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/auditware/ticket-sentinel/internal/cache"
	"github.com/auditware/ticket-sentinel/internal/config"
	"github.com/auditware/ticket-sentinel/internal/logger"
	"github.com/auditware/ticket-sentinel/internal/redact"
	"github.com/auditware/ticket-sentinel/internal/vocab"
	"github.com/auditware/ticket-sentinel/internal/web"
	"github.com/auditware/ticket-sentinel/internal/websocket"
)

// Server exposes the redaction engine over HTTP.
type Server struct {
	config *config.Config
	logger *logger.Logger
	router *mux.Router
	server *http.Server
	wsHub   *websocket.Hub
	cache   *cache.DocumentCache
	limiter *RateLimiter

	// engine is swapped wholesale on vocabulary reload
	mu     sync.RWMutex
	engine *redact.Engine

	startTime       time.Time
	totalRequests   int64
	totalRedactions int64
}

// New creates a new server instance
func New(cfg *config.Config, log *logger.Logger) (*Server, error) {
	vocabulary, err := loadVocabulary(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load vocabulary: %w", err)
	}

	engine := redact.NewEngine(vocabulary, log.WithComponent("redact"))

	wsHub := websocket.NewHub(&websocket.HubConfig{
		BroadcastRequests:    cfg.WebSocket.Events.BroadcastRequests,
		BroadcastRedactions:  cfg.WebSocket.Events.BroadcastRedactions,
		BroadcastSystem:      cfg.WebSocket.Events.BroadcastSystem,
		BroadcastConnections: true,
	}, log.WithComponent("websocket").Logger)

	server := &Server{
		config:    cfg,
		logger:    log.WithComponent("server"),
		router:    mux.NewRouter(),
		wsHub:     wsHub,
		engine:    engine,
		startTime: time.Now(),
	}

	if cfg.Server.RateLimit.Enabled {
		server.limiter = NewRateLimiter(cfg.Server.RateLimit.RequestsPerSec, cfg.Server.RateLimit.Burst)
		server.limiter.StartCleanupRoutine()
	}

	if cfg.Cache.Enabled {
		docCache, err := cache.New(&cache.Config{
			RedisURL:   cfg.Cache.RedisURL,
			KeyPrefix:  cfg.Cache.KeyPrefix,
			DefaultTTL: cfg.Cache.DefaultTTL,
		}, log.WithComponent("cache").Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create document cache: %w", err)
		}
		server.cache = docCache
	}

	server.setupRoutes()

	server.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return server, nil
}

// loadVocabulary builds the exclusion vocabulary from the configured data
// file, falling back to built-ins when no file is set.
func loadVocabulary(cfg *config.Config, log *logger.Logger) (*vocab.Vocabulary, error) {
	if cfg.Redaction.VocabularyFile == "" {
		return vocab.Default(), nil
	}

	vocabulary, err := vocab.LoadFile(cfg.Redaction.VocabularyFile)
	if err != nil {
		return nil, err
	}

	singles, compounds, patterns := vocabulary.Counts()
	log.Info("Vocabulary file loaded",
		zap.String("file", cfg.Redaction.VocabularyFile),
		zap.String("version", vocabulary.Version()),
		zap.Int("single_terms", singles),
		zap.Int("compound_terms", compounds),
		zap.Int("identifier_patterns", patterns),
	)
	return vocabulary, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/info", s.handleInfo).Methods("GET")
	s.router.HandleFunc("/stats", s.handleStats).Methods("GET")

	// Dashboard endpoint - embedded HTML
	s.router.HandleFunc("/", web.ServeDashboard).Methods("GET")
	s.router.HandleFunc("/dashboard", web.ServeDashboard).Methods("GET")

	// WebSocket endpoint for dashboard
	s.router.HandleFunc("/ws", s.handleWebSocket).Methods("GET")

	// Redaction API
	api := s.router.PathPrefix("/v1").Subrouter()
	api.Use(s.loggingMiddleware)
	if s.config.Server.RateLimit.Enabled {
		api.Use(s.rateLimitMiddleware)
	}
	api.HandleFunc("/redact", s.handleRedact).Methods("POST")
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("Starting ticket-sentinel server",
		zap.Int("port", s.config.Server.Port),
		zap.String("vocabulary_version", s.Engine().Vocabulary().Version()),
		zap.Bool("cache_enabled", s.cache != nil),
	)

	go s.wsHub.Run()

	return s.server.ListenAndServe()
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping ticket-sentinel server")
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			s.logger.Warn("Failed to close document cache", zap.Error(err))
		}
	}
	return s.server.Shutdown(ctx)
}

// Engine returns the current redaction engine.
func (s *Server) Engine() *redact.Engine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// SwapVocabulary replaces the engine with one built on the given vocabulary.
// In-flight requests keep the engine they started with.
func (s *Server) SwapVocabulary(v *vocab.Vocabulary) {
	engine := redact.NewEngine(v, s.logger.WithComponent("redact"))

	s.mu.Lock()
	s.engine = engine
	s.mu.Unlock()

	s.logger.Info("Vocabulary swapped",
		zap.String("vocabulary_version", v.Version()),
	)
}

// GetWebSocketHub returns the WebSocket hub for broadcasting events
func (s *Server) GetWebSocketHub() *websocket.Hub {
	return s.wsHub
}

func (s *Server) countRequest(redactions int) {
	atomic.AddInt64(&s.totalRequests, 1)
	atomic.AddInt64(&s.totalRedactions, int64(redactions))
}
