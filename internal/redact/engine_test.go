package redact

import (
	"strings"
	"sync"
	"testing"

	"github.com/auditware/ticket-sentinel/internal/logger"
	"github.com/auditware/ticket-sentinel/internal/vocab"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(vocab.Default(), logger.Nop())
}

func TestEngineRedact(t *testing.T) {
	engine := testEngine(t)

	t.Run("EmptyInput", func(t *testing.T) {
		doc := engine.Redact("")
		if doc.Text != "" {
			t.Errorf("empty input altered: %q", doc.Text)
		}
		if doc.Stats.TotalRedactions != 0 {
			t.Errorf("empty input produced %d redactions", doc.Stats.TotalRedactions)
		}
	})

	t.Run("NameTruncation", func(t *testing.T) {
		doc := engine.Redact("Engineer: John Smith worked on this")
		if doc.Text != "Engineer: John S. worked on this" {
			t.Errorf("unexpected output: %q", doc.Text)
		}
		if doc.Stats.NamesRedacted != 1 {
			t.Errorf("names_redacted = %d, want 1", doc.Stats.NamesRedacted)
		}
	})

	t.Run("BusinessTermPreservation", func(t *testing.T) {
		doc := engine.Redact("Category: Security Device Management")
		if doc.Text != "Category: Security Device Management" {
			t.Errorf("business term altered: %q", doc.Text)
		}
		if doc.Stats.NamesRedacted != 0 {
			t.Errorf("names_redacted = %d, want 0", doc.Stats.NamesRedacted)
		}
	})

	t.Run("PrivateIPPreserved", func(t *testing.T) {
		doc := engine.Redact("Server at 10.0.0.5 and 8.8.8.8")
		if !strings.Contains(doc.Text, "10.0.0.5") {
			t.Errorf("private IP redacted: %q", doc.Text)
		}
		if strings.Contains(doc.Text, "8.8.8.8") {
			t.Errorf("public IP survived: %q", doc.Text)
		}
		if doc.Stats.IPAddresses != 1 {
			t.Errorf("ip_addresses = %d, want 1", doc.Stats.IPAddresses)
		}
	})

	t.Run("CaseNumberExemption", func(t *testing.T) {
		doc := engine.Redact("Case #6-555-123-4567 was opened")
		if !strings.Contains(doc.Text, "555-123-4567") {
			t.Errorf("case number redacted: %q", doc.Text)
		}
		if doc.Stats.PhoneNumbers != 0 {
			t.Errorf("phone_numbers = %d, want 0", doc.Stats.PhoneNumbers)
		}
	})

	t.Run("RunByOverridesNameHeuristics", func(t *testing.T) {
		doc := engine.Redact("Run By: Jeremy Murray 08-03-2025")
		if doc.Text != "Run By: [REDACTED]" {
			t.Errorf("unexpected output: %q", doc.Text)
		}
		if doc.Stats.RunByFields != 1 {
			t.Errorf("run_by_fields = %d, want 1", doc.Stats.RunByFields)
		}
		if doc.Stats.NamesRedacted != 0 {
			t.Errorf("run-by value double-counted as name: %+v", doc.Stats)
		}
		if doc.Stats.TotalRedactions != 1 {
			t.Errorf("total_redactions = %d, want 1", doc.Stats.TotalRedactions)
		}
	})

	t.Run("CompoundPhraseExactness", func(t *testing.T) {
		// "time worked" preserves that exact bigram; a name right after a
		// preserved bigram is still evaluated on its own.
		doc := engine.Redact("Time Worked: 10 Minutes")
		if doc.Text != "Time Worked: 10 Minutes" {
			t.Errorf("field label altered: %q", doc.Text)
		}
	})
}

func TestEngineCountConsistency(t *testing.T) {
	engine := testEngine(t)

	inputs := []string{
		"",
		"plain text with nothing sensitive",
		"Caller: John Smith at 555-867-5309, jsmith@example.com, from 203.0.113.9",
		"Run By: Jeremy Murray 08-03-2025\nAssigned to: Kaushal Singh\nIMEI# 356938035643809",
		"Account 987654321 and https://portal.example.com/ticket/42 and EVE87654321",
	}

	for _, text := range inputs {
		doc := engine.Redact(text)
		s := doc.Stats
		sum := s.IPAddresses + s.MACAddresses + s.PhoneNumbers + s.EmailAddresses +
			s.EmployeeIDs + s.IMEINumbers + s.AccountNumbers + s.URLs +
			s.NamesRedacted + s.RunByFields
		if s.TotalRedactions != sum {
			t.Errorf("total_redactions = %d, category sum = %d for %q", s.TotalRedactions, sum, text)
		}
	}
}

func TestEngineIncidentExport(t *testing.T) {
	engine := testEngine(t)

	input := strings.Join([]string{
		"Company: Delaware North Companies, Inc.",
		"Caller: John Smith",
		"Contact: john.smith@example.com",
		"Location: Wheeling Downs - Gaming",
		"Service Offering: Network Services",
		"Configuration item: GEWIGGAFW01",
		"Category: Security Device Management",
		"Assignment group: MSC Network Engineer",
		"Assigned to: Kaushal Singh",
		"Resolved by: Delaware North Integration User",
		"Updated by: Sarah Johnson",
		"Eastern Daylight Time",
		"Run By: Jeremy Murray 08-03-2025 09:29:30 Eastern Daylight Time",
		"IP Address: 192.168.1.100",
		"Phone: 555-123-4567",
		"Case #6-555-123-4567 was opened",
	}, "\n")

	doc := engine.Redact(input)

	preserved := []string{
		"Wheeling Downs - Gaming",
		"Service Offering: Network Services",
		"GEWIGGAFW01",
		"Security Device Management",
		"MSC Network Engineer",
		"Delaware North Integration User",
		"Eastern Daylight Time",
		"192.168.1.100",
		"Case #6-555-123-4567",
	}
	for _, want := range preserved {
		if !strings.Contains(doc.Text, want) {
			t.Errorf("expected %q preserved in output:\n%s", want, doc.Text)
		}
	}

	redacted := []string{"John Smith", "Kaushal Singh", "Sarah Johnson", "Jeremy Murray", "john.smith@example.com"}
	for _, leak := range redacted {
		if strings.Contains(doc.Text, leak) {
			t.Errorf("PII %q leaked into output:\n%s", leak, doc.Text)
		}
	}

	for _, want := range []string{"John S.", "Kaushal S.", "Sarah J.", "Run By: [REDACTED]"} {
		if !strings.Contains(doc.Text, want) {
			t.Errorf("expected %q in output:\n%s", want, doc.Text)
		}
	}

	if doc.Stats.NamesRedacted != 3 {
		t.Errorf("names_redacted = %d, want 3", doc.Stats.NamesRedacted)
	}
	if doc.Stats.EmailAddresses != 1 {
		t.Errorf("email_addresses = %d, want 1", doc.Stats.EmailAddresses)
	}
	if doc.Stats.PhoneNumbers != 1 {
		t.Errorf("phone_numbers = %d, want 1", doc.Stats.PhoneNumbers)
	}
	if doc.Stats.IPAddresses != 0 {
		t.Errorf("ip_addresses = %d, want 0 (private range)", doc.Stats.IPAddresses)
	}
	if doc.Stats.RunByFields != 1 {
		t.Errorf("run_by_fields = %d, want 1", doc.Stats.RunByFields)
	}
}

func TestEngineBinaryContaminatedInput(t *testing.T) {
	engine := testEngine(t)

	// Must not panic; output is whatever survives, stats stay consistent.
	input := "Caller: John Smith \x00\x01\xfe\xff garbled \x80 bytes"
	doc := engine.Redact(input)
	if doc.Stats.TotalRedactions < 1 {
		t.Errorf("name not redacted in contaminated input: %q", doc.Text)
	}
}

func TestEngineConcurrentUse(t *testing.T) {
	engine := testEngine(t)
	input := "Engineer: John Smith reached at 555-867-5309 about 203.0.113.9"
	want := engine.Redact(input)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got := engine.Redact(input); got != want {
					t.Errorf("concurrent result diverged: %+v", got)
					return
				}
			}
		}()
	}
	wg.Wait()
}
