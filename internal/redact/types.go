package redact

// Category identifies one structured-PII detector.
type Category string

const (
	CategoryIPAddress     Category = "ip_addresses"
	CategoryMACAddress    Category = "mac_addresses"
	CategoryPhoneNumber   Category = "phone_numbers"
	CategoryEmailAddress  Category = "email_addresses"
	CategoryEmployeeID    Category = "employee_ids"
	CategoryIMEINumber    Category = "imei_numbers"
	CategoryAccountNumber Category = "account_numbers"
	CategoryURL           Category = "urls"
	CategoryRunByField    Category = "run_by_fields"
)

// Statistics holds per-category redaction counts for one document pass.
// TotalRedactions is computed once, after every detector has run.
type Statistics struct {
	IPAddresses     int `json:"ip_addresses"`
	MACAddresses    int `json:"mac_addresses"`
	PhoneNumbers    int `json:"phone_numbers"`
	EmailAddresses  int `json:"email_addresses"`
	EmployeeIDs     int `json:"employee_ids"`
	IMEINumbers     int `json:"imei_numbers"`
	AccountNumbers  int `json:"account_numbers"`
	URLs            int `json:"urls"`
	NamesRedacted   int `json:"names_redacted"`
	RunByFields     int `json:"run_by_fields"`
	TotalRedactions int `json:"total_redactions"`
}

// add records the count for a structured category.
func (s *Statistics) add(category Category, n int) {
	switch category {
	case CategoryIPAddress:
		s.IPAddresses += n
	case CategoryMACAddress:
		s.MACAddresses += n
	case CategoryPhoneNumber:
		s.PhoneNumbers += n
	case CategoryEmailAddress:
		s.EmailAddresses += n
	case CategoryEmployeeID:
		s.EmployeeIDs += n
	case CategoryIMEINumber:
		s.IMEINumbers += n
	case CategoryAccountNumber:
		s.AccountNumbers += n
	case CategoryURL:
		s.URLs += n
	case CategoryRunByField:
		s.RunByFields += n
	}
}

// sum returns the total across all categories.
func (s *Statistics) sum() int {
	return s.IPAddresses + s.MACAddresses + s.PhoneNumbers + s.EmailAddresses +
		s.EmployeeIDs + s.IMEINumbers + s.AccountNumbers + s.URLs +
		s.NamesRedacted + s.RunByFields
}

// Document is the immutable output of one redaction pass.
type Document struct {
	Text  string     `json:"text"`
	Stats Statistics `json:"stats"`
}

// NameCandidate is a two-word capitalized span flagged by the scanner,
// pending a redact/preserve decision. It exists only for the duration of
// that decision.
type NameCandidate struct {
	Full   string
	First  string
	Second string
	Offset int
}

// Decision is the disambiguator's verdict for one candidate. Rule names the
// preservation rule that fired, or "default" when the candidate is redacted.
type Decision struct {
	Redact      bool
	Replacement string
	Rule        string
}
