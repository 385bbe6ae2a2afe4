package verification

import (
	"maps"
	"net/http"

	"github.com/JaimeStill/attest/pkg/openapi"
)

func recordProperties() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"id":             {Type: "string", Format: "uuid", Description: "Time-ordered verification id"},
		"filename":       {Type: "string", Example: "deed.pdf"},
		"verified_at":    {Type: "string", Format: "date-time"},
		"document_type":  {Type: "string", Description: "Classifier label", Example: "real_estate"},
		"confidence":     {Type: "number", Description: "Classifier confidence on a 0.0-1.0 scale", Example: 0.92},
		"fraud_risk":     {Type: "string", Description: "Low, Medium, High, or the classifier's verbatim value", Example: "Low"},
		"result":         {Type: "string", Enum: []any{"Genuine", "Invalid"}},
		"fraud_issues":   {Type: "array", Items: &openapi.Schema{Type: "string"}},
		"extracted_text": {Type: "string"},
		"file_hash":      {Type: "string", Description: "Lowercase hex SHA-256 of the uploaded bytes", Pattern: "^[0-9a-f]{64}$"},
		"content_type":   {Type: "string", Example: "application/pdf"},
		"size_bytes":     {Type: "integer"},
		"page_count":     {Type: "integer", Description: "PDF uploads only"},
		"archive_key":    {Type: "string", Description: "Set when the original was archived"},
		"ledger":         openapi.SchemaRef("LedgerReceipt"),
	}
}

func schemas() map[string]*openapi.Schema {
	result := recordProperties()
	result["verification_id"] = &openapi.Schema{Type: "string", Format: "uuid", Description: "Same value as id"}

	filter := map[string]*openapi.Schema{
		"result":     {Type: "string", Description: "Genuine or Invalid, case-insensitive"},
		"fraud_risk": {Type: "string", Description: "Case-insensitive fraud risk"},
		"file_hash":  {Type: "string", Description: "Fingerprint, with or without 0x"},
		"search":     {Type: "string", Description: "Substring of filename or document type"},
	}
	search := map[string]*openapi.Schema{
		"page":      {Type: "integer", Example: 1},
		"page_size": {Type: "integer", Example: 20},
	}
	maps.Copy(search, filter)

	return map[string]*openapi.Schema{
		"LedgerReceipt": {
			Type:     "object",
			Required: []string{"status"},
			Properties: map[string]*openapi.Schema{
				"status": {Type: "string", Enum: []any{"recorded", "already_recorded", "failed", "skipped"}},
				"tx_id":  {Type: "string", Description: "Transaction hash when recorded"},
				"error":  {Type: "string", Description: "Normalized failure description"},
			},
		},
		"VerificationRecord": {Type: "object", Properties: recordProperties()},
		"VerificationResult": {Type: "object", Properties: result},
		"TextRequest": {
			Type:       "object",
			Required:   []string{"text"},
			Properties: map[string]*openapi.Schema{"text": {Type: "string"}},
		},
		"ListResponse": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"success": {Type: "boolean"},
				"data":    {Type: "array", Items: openapi.SchemaRef("VerificationRecord")},
				"total":   {Type: "integer"},
			},
		},
		"RecordResponse": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"success": {Type: "boolean"},
				"data":    openapi.SchemaRef("VerificationRecord"),
			},
		},
		"SearchRequest": {Type: "object", Properties: search},
		"SearchResponse": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"success":     {Type: "boolean"},
				"data":        {Type: "array", Items: openapi.SchemaRef("VerificationRecord")},
				"total":       {Type: "integer"},
				"page":        {Type: "integer"},
				"page_size":   {Type: "integer"},
				"total_pages": {Type: "integer"},
			},
		},
	}
}

var tags = []string{"Verification"}

var spec = struct {
	Verify      *openapi.Operation
	VerifyText  *openapi.Operation
	List        *openapi.Operation
	SearchQuery *openapi.Operation
	Search      *openapi.Operation
	Find        *openapi.Operation
	Document    *openapi.Operation
}{
	Verify: &openapi.Operation{
		Summary:     "Verify an uploaded document",
		Description: "Fingerprints the file, classifies it, records the fingerprint on the ledger when enabled, and appends the result to history.",
		Tags:        tags,
		RequestBody: openapi.RequestBodyMultipart("file", "PDF, image, or text document"),
		Responses: openapi.Responses(
			openapi.ResponseJSON("Verification completed", "VerificationResult"),
			http.StatusBadRequest, http.StatusBadGateway, http.StatusInternalServerError,
		),
	},
	VerifyText: &openapi.Operation{
		Summary:     "Verify already-extracted text",
		Tags:        tags,
		RequestBody: openapi.RequestBodyJSON("TextRequest", true),
		Responses: openapi.Responses(
			openapi.ResponseJSON("Verification completed", "VerificationResult"),
			http.StatusBadRequest, http.StatusNotImplemented, http.StatusBadGateway, http.StatusInternalServerError,
		),
	},
	List: &openapi.Operation{
		Summary: "List every verification, newest first",
		Tags:    tags,
		Responses: openapi.Responses(
			openapi.ResponseJSON("Verification history", "ListResponse"),
			http.StatusInternalServerError,
		),
	},
	SearchQuery: &openapi.Operation{
		Summary: "Search verification history",
		Tags:    tags,
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("page", "integer", "Page number (1-indexed)", false),
			openapi.QueryParam("page_size", "integer", "Results per page", false),
			openapi.QueryParam("result", "string", "Genuine or Invalid", false),
			openapi.QueryParam("fraud_risk", "string", "Fraud risk level", false),
			openapi.QueryParam("file_hash", "string", "Document fingerprint", false),
			openapi.QueryParam("search", "string", "Filename or document type substring", false),
		},
		Responses: openapi.Responses(
			openapi.ResponseJSON("Matching verifications", "SearchResponse"),
			http.StatusInternalServerError,
		),
	},
	Search: &openapi.Operation{
		Summary:     "Search verification history with a JSON body",
		Tags:        tags,
		RequestBody: openapi.RequestBodyJSON("SearchRequest", true),
		Responses: openapi.Responses(
			openapi.ResponseJSON("Matching verifications", "SearchResponse"),
			http.StatusBadRequest, http.StatusInternalServerError,
		),
	},
	Find: &openapi.Operation{
		Summary:    "Find a verification by id",
		Tags:       tags,
		Parameters: []*openapi.Parameter{openapi.PathParam("id", "Verification id")},
		Responses: openapi.Responses(
			openapi.ResponseJSON("Verification record", "RecordResponse"),
			http.StatusNotFound, http.StatusInternalServerError,
		),
	},
	Document: &openapi.Operation{
		Summary:    "Download the archived original",
		Tags:       tags,
		Parameters: []*openapi.Parameter{openapi.PathParam("id", "Verification id")},
		Responses: openapi.Responses(
			openapi.ResponseBinary("Original document bytes"),
			http.StatusNotFound, http.StatusBadGateway, http.StatusInternalServerError,
		),
	},
}
