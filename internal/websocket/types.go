package websocket

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/auditware/ticket-sentinel/internal/redact"
)

// EventType represents the type of WebSocket event
type EventType string

const (
	// EventTypeRedaction represents a ticket redaction event
	EventTypeRedaction EventType = "redaction"
	// EventTypeRequestLog represents a request logging event
	EventTypeRequestLog EventType = "request_log"
	// EventTypeSystemStatus represents a system status event
	EventTypeSystemStatus EventType = "system_status"
	// EventTypeConnection represents connection events
	EventTypeConnection EventType = "connection"
)

// Event represents a WebSocket event sent to clients
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id,omitempty"`
}

// RedactionEvent describes one redaction pass over a submitted ticket.
// Only counts are carried, never the ticket text itself.
type RedactionEvent struct {
	RequestID         string            `json:"request_id"`
	ClientIP          string            `json:"client_ip"`
	InputBytes        int               `json:"input_bytes"`
	Stats             redact.Statistics `json:"stats"`
	VocabularyVersion string            `json:"vocabulary_version"`
	CacheHit          bool              `json:"cache_hit"`
	ProcessingMS      float64           `json:"processing_ms"`
}

// RequestLogEvent represents a request logging event
type RequestLogEvent struct {
	RequestID    string        `json:"request_id"`
	Method       string        `json:"method"`
	Path         string        `json:"path"`
	StatusCode   int           `json:"status_code"`
	ClientIP     string        `json:"client_ip"`
	UserAgent    string        `json:"user_agent,omitempty"`
	Duration     time.Duration `json:"duration"`
	RequestSize  int64         `json:"request_size"`
	ResponseSize int64         `json:"response_size"`
}

// SystemStatusEvent represents system status information
type SystemStatusEvent struct {
	Status            string `json:"status"`
	Uptime            string `json:"uptime"`
	TotalRequests     int64  `json:"total_requests"`
	TotalRedactions   int64  `json:"total_redactions"`
	VocabularyVersion string `json:"vocabulary_version"`
	VocabularyTerms   int    `json:"vocabulary_terms"`
	ConnectedClients  int    `json:"connected_clients"`
	MemoryUsage       string `json:"memory_usage"`
}

// ConnectionEvent represents WebSocket connection events
type ConnectionEvent struct {
	Action    string `json:"action"` // "connected", "disconnected"
	ClientID  string `json:"client_id"`
	ClientIP  string `json:"client_ip"`
	UserAgent string `json:"user_agent,omitempty"`
	Message   string `json:"message,omitempty"`
}

// ClientMessage represents messages sent from clients to server
type ClientMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// SubscriptionRequest represents a client subscription request
type SubscriptionRequest struct {
	Events []EventType `json:"events"`
}

// Client represents a WebSocket client connection
type Client struct {
	ID           string
	Conn         *websocket.Conn
	Send         chan Event
	Subscription *SubscriptionRequest
	ConnectedAt  time.Time
	LastPing     time.Time
	IP           string
	UserAgent    string
}
