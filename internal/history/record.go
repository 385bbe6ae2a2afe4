package history

import (
	"slices"
	"time"

	"github.com/JaimeStill/attest/pkg/ledger"
)

// Outcome is the verdict derived from a document's fraud risk.
type Outcome string

const (
	Genuine Outcome = "Genuine"
	Invalid Outcome = "Invalid"
)

// Record is one completed verification. Records are never modified after
// they are appended to a Store.
type Record struct {
	ID            string         `json:"id"`
	Filename      string         `json:"filename"`
	VerifiedAt    time.Time      `json:"verified_at"`
	DocumentType  string         `json:"document_type"`
	Confidence    float64        `json:"confidence"`
	FraudRisk     string         `json:"fraud_risk"`
	Result        Outcome        `json:"result"`
	FraudIssues   []string       `json:"fraud_issues"`
	ExtractedText string         `json:"extracted_text"`
	FileHash      string         `json:"file_hash"`
	ContentType   string         `json:"content_type"`
	SizeBytes     int64          `json:"size_bytes"`
	PageCount     *int           `json:"page_count,omitempty"`
	ArchiveKey    string         `json:"archive_key,omitempty"`
	Ledger        ledger.Receipt `json:"ledger"`
}

// Clone returns a deep copy so callers cannot reach stored state.
func (r Record) Clone() Record {
	out := r
	out.FraudIssues = slices.Clone(r.FraudIssues)
	if out.FraudIssues == nil {
		out.FraudIssues = []string{}
	}
	if r.PageCount != nil {
		n := *r.PageCount
		out.PageCount = &n
	}
	return out
}
