package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/auditware/ticket-sentinel/internal/config"
	"github.com/auditware/ticket-sentinel/internal/logger"
	"github.com/auditware/ticket-sentinel/internal/vocab"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()

	cfg := config.GetDefaults()
	cfg.Cache.Enabled = false
	cfg.Server.RateLimit.Enabled = false
	cfg.Redaction.VocabularyFile = ""
	if mutate != nil {
		mutate(cfg)
	}

	srv, err := New(cfg, logger.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return srv
}

func postRedact(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/v1/redact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	return rec
}

func TestHandleRedact(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := postRedact(t, srv, `{"text":"Run By: John Smith\nEmail jsmith@example.com from 203.0.113.7"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp RedactResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}

	if strings.Contains(resp.Text, "jsmith@example.com") {
		t.Error("email survived redaction")
	}
	if strings.Contains(resp.Text, "203.0.113.7") {
		t.Error("public IP survived redaction")
	}
	if !strings.Contains(resp.Text, "Run By: [REDACTED]") {
		t.Errorf("Run By field not redacted: %q", resp.Text)
	}
	if resp.Stats.TotalRedactions == 0 {
		t.Error("expected nonzero redaction total")
	}
	if resp.CacheHit {
		t.Error("cache disabled, response should not report a hit")
	}
	if resp.VocabularyVersion == "" {
		t.Error("missing vocabulary version")
	}
}

func TestHandleRedactRawTextBody(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/redact",
		strings.NewReader("Caller: John Smith left jsmith@example.com"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp RedactResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if strings.Contains(resp.Text, "jsmith@example.com") {
		t.Error("email survived redaction")
	}
	if strings.Contains(resp.Text, "John Smith") {
		t.Errorf("name survived redaction: %q", resp.Text)
	}
}

func TestHandleRedactMissingText(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := postRedact(t, srv, `{"ticket":"no text field"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleRedactBodyTooLarge(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.MaxRequestSize = 64
	})

	rec := postRedact(t, srv, `{"text":"`+strings.Repeat("x", 200)+`"}`)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusRequestEntityTooLarge)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"healthy"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestHandleInfo(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/info", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var info map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("invalid info JSON: %v", err)
	}
	if info["name"] != "ticket-sentinel" {
		t.Errorf("name = %v", info["name"])
	}
	if info["single_terms"].(float64) == 0 {
		t.Error("expected built-in single terms to be reported")
	}
}

func TestHandleStats(t *testing.T) {
	srv := newTestServer(t, nil)

	// Drive one request through so the counters move.
	postRedact(t, srv, `{"text":"Contact John Smith at 555-123-4567"}`)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var stats map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("invalid stats JSON: %v", err)
	}
	if stats["total_requests"].(float64) != 1 {
		t.Errorf("total_requests = %v, want 1", stats["total_requests"])
	}
	if stats["total_redactions"].(float64) == 0 {
		t.Error("expected nonzero total_redactions")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.RateLimit.Enabled = true
		cfg.Server.RateLimit.RequestsPerSec = 1
		cfg.Server.RateLimit.Burst = 2
	})

	var statuses []int
	for i := 0; i < 4; i++ {
		rec := postRedact(t, srv, `{"text":"hello"}`)
		statuses = append(statuses, rec.Code)
	}

	if statuses[0] != http.StatusOK || statuses[1] != http.StatusOK {
		t.Errorf("first requests within burst should pass: %v", statuses)
	}
	if statuses[3] != http.StatusTooManyRequests {
		t.Errorf("request over burst should be limited: %v", statuses)
	}
}

func TestSwapVocabulary(t *testing.T) {
	srv := newTestServer(t, nil)
	before := srv.Engine().Vocabulary().Version()

	replacement, err := vocab.New(vocab.Tables{
		Version:     "swap-test",
		SingleTerms: []string{"Wheeling"},
	})
	if err != nil {
		t.Fatal(err)
	}
	srv.SwapVocabulary(replacement)

	if got := srv.Engine().Vocabulary().Version(); got != "swap-test" {
		t.Errorf("version after swap = %q, want %q (was %q)", got, "swap-test", before)
	}

	rec := postRedact(t, srv, `{"text":"hello"}`)
	var resp RedactResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.VocabularyVersion != "swap-test" {
		t.Errorf("response version = %q, want %q", resp.VocabularyVersion, "swap-test")
	}
}
