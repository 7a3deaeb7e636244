package redact

import (
	"strings"
	"testing"
)

func findDetector(t *testing.T, category Category) detector {
	t.Helper()
	for _, d := range defaultDetectors() {
		if d.category == category {
			return d
		}
	}
	t.Fatalf("no detector for category %s", category)
	return detector{}
}

func TestIPDetector(t *testing.T) {
	d := findDetector(t, CategoryIPAddress)

	t.Run("PublicRedactedPrivatePreserved", func(t *testing.T) {
		out, n := d.apply("Server at 10.0.0.5 and 8.8.8.8")
		if n != 1 {
			t.Errorf("expected 1 redaction, got %d", n)
		}
		if !strings.Contains(out, "10.0.0.5") {
			t.Errorf("private IP was redacted: %q", out)
		}
		if strings.Contains(out, "8.8.8.8") {
			t.Errorf("public IP survived: %q", out)
		}
		if !strings.Contains(out, "[REDACTED IP]") {
			t.Errorf("missing IP sentinel: %q", out)
		}
	})

	t.Run("PrivateRanges", func(t *testing.T) {
		cases := []struct {
			ip      string
			private bool
		}{
			{"10.0.0.1", true},
			{"10.255.255.255", true},
			{"172.16.0.1", true},
			{"172.31.254.9", true},
			{"172.15.0.1", false}, // below the /12 second-octet bound
			{"172.32.0.1", false}, // above the /12 second-octet bound
			{"192.168.1.100", true},
			{"192.169.1.100", false},
			{"8.8.4.4", false},
		}

		for _, tc := range cases {
			if got := isPrivateIP(tc.ip); got != tc.private {
				t.Errorf("isPrivateIP(%s) = %v, want %v", tc.ip, got, tc.private)
			}
		}
	})
}

func TestPhoneDetector(t *testing.T) {
	d := findDetector(t, CategoryPhoneNumber)

	t.Run("PlainPhoneRedacted", func(t *testing.T) {
		out, n := d.apply("Call me at 555-123-4567 today")
		if n != 1 {
			t.Errorf("expected 1 redaction, got %d", n)
		}
		if !strings.Contains(out, "[REDACTED PHONE]") {
			t.Errorf("missing phone sentinel: %q", out)
		}
	})

	t.Run("CaseNumberExempt", func(t *testing.T) {
		cases := []string{
			"Case #6-555-123-4567 was opened",
			"ticket 555-123-4567 escalated",
			"RMA 555-123-4567 approved",
			"TAC 555-123-4567 engaged",
			"reference: 555-123-4567",
		}

		for _, text := range cases {
			out, n := d.apply(text)
			if n != 0 {
				t.Errorf("case ID counted as phone in %q", text)
			}
			if out != text {
				t.Errorf("case ID altered: %q -> %q", text, out)
			}
		}
	})

	t.Run("MarkerInsideLongerWordDoesNotExempt", func(t *testing.T) {
		cases := []string{
			"Contact John Smith at 555-123-4567",
			"Incident desk gave 555-123-4567",
			"Required line is 555-123-4567",
		}

		for _, text := range cases {
			out, n := d.apply(text)
			if n != 1 {
				t.Errorf("phone not redacted in %q (got %d redactions)", text, n)
			}
			if strings.Contains(out, "555-123-4567") {
				t.Errorf("phone survived: %q", out)
			}
		}
	})

	t.Run("MarkerOutsideWindowStillRedacts", func(t *testing.T) {
		text := "case was discussed at length over several days before 555-123-4567 rang"
		_, n := d.apply(text)
		if n != 1 {
			t.Errorf("marker beyond the lookback window should not exempt, got %d redactions", n)
		}
	})
}

func TestRunByDetector(t *testing.T) {
	d := findDetector(t, CategoryRunByField)

	t.Run("FullValueRedacted", func(t *testing.T) {
		out, n := d.apply("Run By: Jeremy Murray 08-03-2025 09:29:30 Eastern Daylight Time")
		if n != 1 {
			t.Errorf("expected 1 run-by redaction, got %d", n)
		}
		if out != "Run By: [REDACTED]" {
			t.Errorf("unexpected output: %q", out)
		}
	})

	t.Run("LowercaseByAndFlexibleSpacing", func(t *testing.T) {
		out, n := d.apply("Run by :  svc_export_account")
		if n != 1 {
			t.Errorf("expected 1 run-by redaction, got %d", n)
		}
		if strings.Contains(out, "svc_export_account") {
			t.Errorf("run-by value survived: %q", out)
		}
	})

	t.Run("OutputNotRematched", func(t *testing.T) {
		out, n := d.apply("Run By: [REDACTED]")
		if n != 0 {
			t.Errorf("already-redacted line matched %d times", n)
		}
		if out != "Run By: [REDACTED]" {
			t.Errorf("already-redacted line altered: %q", out)
		}
	})

	t.Run("OnlyOwnLine", func(t *testing.T) {
		out, _ := d.apply("Run By: admin\nNext Steps: reboot the switch")
		if !strings.Contains(out, "Next Steps: reboot the switch") {
			t.Errorf("redaction crossed the line boundary: %q", out)
		}
	})
}

func TestStructuredDetectorIdempotence(t *testing.T) {
	text := "Engineer reached at 203.0.113.7, MAC 00:1B:44:11:3A:B7, phone 555-123-4567, " +
		"email jdoe@example.com, badge EVE12345678, IMEI# 356938035643809, " +
		"Account 123456789-1, docs at https://wiki.example.com/runbook\n" +
		"Run By: integration_account 08-03-2025"

	once := text
	for _, d := range defaultDetectors() {
		once, _ = d.apply(once)
	}

	twice := once
	for _, d := range defaultDetectors() {
		var n int
		twice, n = d.apply(twice)
		if n != 0 {
			t.Errorf("detector %s found %d matches in already-substituted text", d.category, n)
		}
	}

	if twice != once {
		t.Errorf("second pass altered text:\nfirst:  %q\nsecond: %q", once, twice)
	}
}

func TestSentinelsAreNotNameCandidates(t *testing.T) {
	text := "Contact jdoe@example.com or 555-123-4567"
	for _, d := range defaultDetectors() {
		text, _ = d.apply(text)
	}

	if matches := namePattern.FindAllString(text, -1); len(matches) != 0 {
		t.Errorf("sentinel tokens matched the name pattern: %v", matches)
	}
}
