package redact

import (
	"regexp"
	"strconv"
	"strings"
)

// detector owns one structured-PII category: a precompiled pattern plus a
// per-match replacement decision. Sentinel tokens are bracketed all-caps so
// they never re-match their own pattern (idempotence) and never look like
// name candidates to the bigram scanner.
type detector struct {
	category Category
	pattern  *regexp.Regexp

	// replace returns the rewrite for one match and whether the match counts
	// as a redaction. Returning (match, false) leaves the text untouched,
	// which is how per-match policy exemptions are expressed.
	replace func(match string, start int, text string) (string, bool)
}

// apply runs the detector over text in a single left-to-right pass,
// counting and substituting together so counts always reflect the text the
// pattern actually matched.
func (d detector) apply(text string) (string, int) {
	locs := d.pattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return text, 0
	}

	var b strings.Builder
	b.Grow(len(text))
	last, count := 0, 0
	for _, loc := range locs {
		replacement, redacted := d.replace(text[loc[0]:loc[1]], loc[0], text)
		b.WriteString(text[last:loc[0]])
		b.WriteString(replacement)
		last = loc[1]
		if redacted {
			count++
		}
	}
	b.WriteString(text[last:])

	return b.String(), count
}

// sentinel builds a replace func with a fixed substitution token.
func sentinel(token string) func(string, int, string) (string, bool) {
	return func(string, int, string) (string, bool) {
		return token, true
	}
}

var (
	ipPattern       = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
	macPattern      = regexp.MustCompile(`(?:[0-9A-Fa-f]{2}[:-]){5}[0-9A-Fa-f]{2}`)
	phonePattern    = regexp.MustCompile(`\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`)
	emailPattern    = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	employeePattern = regexp.MustCompile(`\bEVE\d{8}\b`)
	imeiPattern     = regexp.MustCompile(`IMEI[#\s]*\d+`)
	accountPattern  = regexp.MustCompile(`Account\s+\d{8,}(?:-\d+)?`)
	urlPattern      = regexp.MustCompile(`https?://\S+`)

	// Run By lines from ServiceNow exports name the account that generated
	// the export. The first value char must be neither whitespace nor "[",
	// so an already-redacted line finds zero further matches.
	runByPattern = regexp.MustCompile(`Run\s+[Bb]y\s*:[ \t]*[^\s\[][^\n]*`)
)

// defaultDetectors returns the structured-PII detectors in their fixed
// substitution order. The order is part of the contract: each detector
// counts against text already substituted by its predecessors.
func defaultDetectors() []detector {
	return []detector{
		{CategoryIPAddress, ipPattern, replaceIP},
		{CategoryMACAddress, macPattern, sentinel("[REDACTED MAC]")},
		{CategoryPhoneNumber, phonePattern, replacePhone},
		{CategoryEmailAddress, emailPattern, sentinel("[REDACTED EMAIL]")},
		{CategoryEmployeeID, employeePattern, sentinel("[REDACTED EMPLOYEE ID]")},
		{CategoryIMEINumber, imeiPattern, sentinel("IMEI#[REDACTED]")},
		{CategoryAccountNumber, accountPattern, sentinel("Account [REDACTED]")},
		{CategoryURL, urlPattern, sentinel("[REDACTED URL]")},
		{CategoryRunByField, runByPattern, replaceRunBy},
	}
}

// replaceIP redacts public IPs only. Private ranges carry no external
// identification risk and are operationally useful in incident text, so
// they are preserved verbatim and not counted.
func replaceIP(match string, _ int, _ string) (string, bool) {
	if isPrivateIP(match) {
		return match, false
	}
	return "[REDACTED IP]", true
}

// isPrivateIP reports whether ip falls in 10.0.0.0/8, 172.16.0.0/12 or
// 192.168.0.0/16.
func isPrivateIP(ip string) bool {
	octets := strings.Split(ip, ".")
	if len(octets) != 4 {
		return false
	}
	first, err := strconv.Atoi(octets[0])
	if err != nil {
		return false
	}
	second, err := strconv.Atoi(octets[1])
	if err != nil {
		return false
	}

	switch {
	case first == 10:
		return true
	case first == 172 && second >= 16 && second <= 31:
		return true
	case first == 192 && second == 168:
		return true
	}
	return false
}

// caseMarkerWords in the text immediately before a phone-shaped digit
// sequence mean it is a case/ticket/reference identifier, not a phone
// number. Matched as whole words: "Contact" must not trip on "tac" nor
// "Incident" on "inc".
var caseMarkerWords = regexp.MustCompile(`(?i)\b(?:case|ticket|reference|rma|tac|inc|req)\b`)

// caseIDPrefix matches the tail of a compound case ID ("#6-", "...-") that
// a phone-shaped sequence continues.
var caseIDPrefix = regexp.MustCompile(`(?:#\d*-|\d-)\s*$`)

// phoneLookback is how far back to scan for case markers.
const phoneLookback = 25

// replacePhone redacts phone-shaped digit sequences unless the immediately
// preceding context marks them as case identifiers.
func replacePhone(match string, start int, text string) (string, bool) {
	from := start - phoneLookback
	if from < 0 {
		from = 0
	}
	window := text[from:start]

	if strings.Contains(window, "#") || caseMarkerWords.MatchString(window) {
		return match, false
	}
	if caseIDPrefix.MatchString(window) {
		return match, false
	}

	return "[REDACTED PHONE]", true
}

// replaceRunBy blanks everything after the Run By label on the line,
// whatever its shape. The label rule deliberately outranks the name
// heuristics that run later.
func replaceRunBy(match string, _ int, _ string) (string, bool) {
	colon := strings.Index(match, ":")
	return match[:colon+1] + " [REDACTED]", true
}
