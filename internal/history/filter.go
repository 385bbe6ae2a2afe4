package history

import (
	"net/url"
	"strings"

	"github.com/JaimeStill/attest/pkg/query"
)

// Filter narrows a history search. Empty fields match every record.
// Result and FraudRisk compare case-insensitively; Search is a
// case-insensitive substring of the filename or document type.
type Filter struct {
	Result    string `json:"result,omitempty"`
	FraudRisk string `json:"fraud_risk,omitempty"`
	FileHash  string `json:"file_hash,omitempty"`
	Search    string `json:"search,omitempty"`
}

// FilterFromQuery reads result, fraud_risk, file_hash, and search from values.
func FilterFromQuery(values url.Values) Filter {
	return Filter{
		Result:    values.Get("result"),
		FraudRisk: values.Get("fraud_risk"),
		FileHash:  values.Get("file_hash"),
		Search:    values.Get("search"),
	}.normalize()
}

// normalize trims every field and reduces FileHash to bare lowercase hex.
func (f Filter) normalize() Filter {
	f.Result = strings.TrimSpace(f.Result)
	f.FraudRisk = strings.TrimSpace(f.FraudRisk)
	f.Search = strings.TrimSpace(f.Search)
	f.FileHash = strings.ToLower(strings.TrimSpace(f.FileHash))
	f.FileHash = strings.TrimPrefix(f.FileHash, "0x")
	return f
}

// Match reports whether r satisfies every set field of f.
func (f Filter) Match(r Record) bool {
	f = f.normalize()

	if f.Result != "" && !strings.EqualFold(string(r.Result), f.Result) {
		return false
	}
	if f.FraudRisk != "" && !strings.EqualFold(r.FraudRisk, f.FraudRisk) {
		return false
	}
	if f.FileHash != "" && r.FileHash != f.FileHash {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(r.Filename), needle) &&
			!strings.Contains(strings.ToLower(r.DocumentType), needle) {
			return false
		}
	}
	return true
}

// Apply adds the filter's conditions to a builder over the verifications projection.
func (f Filter) Apply(b *query.Builder) *query.Builder {
	f = f.normalize()
	return b.
		WhereEqualFold("Result", f.Result).
		WhereEqualFold("FraudRisk", f.FraudRisk).
		WhereEquals("FileHash", f.FileHash).
		WhereSearch(f.Search, "Filename", "DocumentType")
}

// filterRecords keeps the records of newest-first list that match f.
func filterRecords(list []Record, f Filter) []Record {
	out := make([]Record, 0, len(list))
	for _, r := range list {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}
