package classifier

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Risk is the fraud-risk level reported for a document.
// Values outside Low, Medium, and High are preserved verbatim.
type Risk string

const (
	RiskLow    Risk = "Low"
	RiskMedium Risk = "Medium"
	RiskHigh   Risk = "High"
)

// ParseRisk normalizes the casing of known risk levels.
// Unknown values are returned trimmed but otherwise unchanged.
func ParseRisk(s string) Risk {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "low":
		return RiskLow
	case "medium":
		return RiskMedium
	case "high":
		return RiskHigh
	}
	return Risk(s)
}

// Result is the parsed output of a classification call.
// Confidence is on a 0.0–1.0 scale.
type Result struct {
	DocumentType  string   `json:"document_type"`
	Confidence    float64  `json:"confidence"`
	FraudRisk     Risk     `json:"fraud_risk"`
	FraudIssues   []string `json:"fraud_issues"`
	ExtractedText string   `json:"extracted_text"`
}

// Document is the file payload submitted for classification.
type Document struct {
	Data        []byte
	Filename    string
	ContentType string
}

// response accepts the field names used by the classification services
// this client has been pointed at.
type response struct {
	DocumentType   string   `json:"document_type"`
	Status         string   `json:"status"`
	MLDocumentType string   `json:"ml_document_type"`
	Confidence     *float64 `json:"confidence"`
	MLConfidence   *float64 `json:"ml_confidence"`
	FraudRisk      string   `json:"fraud_risk"`
	FraudIssues    []string `json:"fraud_issues"`
	Issues         []string `json:"issues"`
	ExtractedText  string   `json:"extracted_text"`
}

type normalized struct {
	DocumentType string  `validate:"required,max=128"`
	Confidence   float64 `validate:"gte=0,lte=1"`
	FraudRisk    string  `validate:"max=32"`
}

const (
	lowConfidenceIssue  = "Low confidence in document classification"
	fraudulentLikeIssue = "Document may be fraudulent or corrupted"
)

func (r response) toResult(v *validator.Validate) (*Result, error) {
	conf := r.Confidence
	if conf == nil {
		conf = r.MLConfidence
	}
	if conf == nil {
		return nil, fmt.Errorf("%w: missing confidence", ErrProtocol)
	}

	confidence, err := normalizeConfidence(*conf)
	if err != nil {
		return nil, err
	}

	n := normalized{
		DocumentType: firstNonEmpty(r.DocumentType, r.MLDocumentType, r.Status),
		Confidence:   confidence,
		FraudRisk:    r.FraudRisk,
	}

	if err := v.Struct(n); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProtocol, err)
	}

	issues := r.FraudIssues
	if issues == nil {
		issues = r.Issues
	}

	risk := ParseRisk(n.FraudRisk)
	if risk == "" {
		risk, issues = deriveRisk(n.Confidence, issues)
	}

	if issues == nil {
		issues = []string{}
	}

	return &Result{
		DocumentType:  n.DocumentType,
		Confidence:    n.Confidence,
		FraudRisk:     risk,
		FraudIssues:   issues,
		ExtractedText: r.ExtractedText,
	}, nil
}

// normalizeConfidence maps a 0–100 score onto 0.0–1.0.
func normalizeConfidence(c float64) (float64, error) {
	switch {
	case c < 0:
		return 0, fmt.Errorf("%w: negative confidence %v", ErrProtocol, c)
	case c <= 1:
		return c, nil
	case c <= 100:
		return c / 100, nil
	}
	return 0, fmt.Errorf("%w: confidence %v out of range", ErrProtocol, c)
}

func deriveRisk(confidence float64, issues []string) (Risk, []string) {
	if confidence < 0.7 {
		issues = append(issues, lowConfidenceIssue)
	}
	if confidence < 0.5 {
		issues = append(issues, fraudulentLikeIssue)
	}

	switch {
	case confidence >= 0.8:
		return RiskLow, issues
	case confidence >= 0.6:
		return RiskMedium, issues
	}
	return RiskHigh, issues
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
