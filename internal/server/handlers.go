package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/auditware/ticket-sentinel/internal/redact"
	"github.com/auditware/ticket-sentinel/internal/websocket"
)

// RedactResponse is the body returned by POST /v1/redact.
type RedactResponse struct {
	Text              string            `json:"text"`
	Stats             redact.Statistics `json:"stats"`
	VocabularyVersion string            `json:"vocabulary_version"`
	CacheHit          bool              `json:"cache_hit"`
	ProcessingMS      float64           `json:"processing_ms"`
}

// handleRedact runs one redaction pass over the submitted ticket text.
func (s *Server) handleRedact(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestID(r.Context())
	log := s.logger.WithRequestID(requestID)

	maxSize := s.config.Server.MaxRequestSize
	if maxSize <= 0 {
		maxSize = 1 << 20
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxSize+1))
	if err != nil {
		log.Error("Failed to read request body", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read request")
		return
	}
	if int64(len(body)) > maxSize {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	// JSON bodies carry the ticket in the "text" field; anything that is
	// not JSON is treated as the raw ticket text itself.
	var text string
	if textField := gjson.GetBytes(body, "text"); textField.Exists() {
		text = textField.String()
	} else if gjson.ValidBytes(body) {
		writeError(w, http.StatusBadRequest, `missing "text" field`)
		return
	} else {
		text = string(body)
	}

	engine := s.Engine()
	vocabVersion := engine.Vocabulary().Version()

	start := time.Now()

	var doc redact.Document
	cacheHit := false
	if s.cache != nil {
		if cached, ok, err := s.cache.Get(r.Context(), text, vocabVersion); err != nil {
			log.Warn("Cache lookup failed", zap.Error(err))
		} else if ok {
			doc = cached
			cacheHit = true
		}
	}

	if !cacheHit {
		doc = engine.Redact(text)
		if s.cache != nil {
			if err := s.cache.Store(r.Context(), text, vocabVersion, doc); err != nil {
				log.Warn("Cache store failed", zap.Error(err))
			}
		}
	}

	processingMS := float64(time.Since(start).Nanoseconds()) / 1e6
	s.countRequest(doc.Stats.TotalRedactions)

	log.Info("Ticket redacted",
		zap.Int("input_bytes", len(text)),
		zap.Int("total_redactions", doc.Stats.TotalRedactions),
		zap.Bool("cache_hit", cacheHit),
		zap.Float64("processing_ms", processingMS),
	)

	s.wsHub.BroadcastEvent(websocket.Event{
		Type:      websocket.EventTypeRedaction,
		Timestamp: time.Now(),
		RequestID: requestID,
		Data: websocket.RedactionEvent{
			RequestID:         requestID,
			ClientIP:          getClientIP(r),
			InputBytes:        len(text),
			Stats:             doc.Stats,
			VocabularyVersion: vocabVersion,
			CacheHit:          cacheHit,
			ProcessingMS:      processingMS,
		},
	})

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(RedactResponse{
		Text:              doc.Text,
		Stats:             doc.Stats,
		VocabularyVersion: vocabVersion,
		CacheHit:          cacheHit,
		ProcessingMS:      processingMS,
	}); err != nil {
		log.Error("Failed to encode response", zap.Error(err))
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","timestamp":"%s"}`, time.Now().Format(time.RFC3339))
}

// handleInfo handles info requests
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	vocabulary := s.Engine().Vocabulary()
	singles, compounds, patterns := vocabulary.Counts()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{
		"name":"ticket-sentinel",
		"version":"0.1.0",
		"vocabulary_version":%q,
		"single_terms":%d,
		"compound_terms":%d,
		"identifier_patterns":%d,
		"cache_enabled":%t
	}`, vocabulary.Version(), singles, compounds, patterns, s.cache != nil)
}

// handleStats reports service counters, hub and cache statistics.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	hubStats := s.wsHub.GetStats()

	response := map[string]interface{}{
		"uptime":             time.Since(s.startTime).String(),
		"total_requests":     atomic.LoadInt64(&s.totalRequests),
		"total_redactions":   atomic.LoadInt64(&s.totalRedactions),
		"vocabulary_version": s.Engine().Vocabulary().Version(),
		"connected_clients":  hubStats.ActiveConnections,
		"memory_alloc_bytes": memStats.Alloc,
	}

	if s.cache != nil {
		if cacheStats, err := s.cache.GetStats(r.Context()); err != nil {
			s.logger.Warn("Failed to read cache stats", zap.Error(err))
		} else {
			response["cache"] = cacheStats
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Error("Failed to encode stats response", zap.Error(err))
	}
}

// handleWebSocket handles WebSocket connections for the dashboard
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.wsHub.HandleWebSocket(w, r)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
