package verification

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/JaimeStill/attest/internal/history"
	"github.com/JaimeStill/attest/pkg/formatting"
	"github.com/JaimeStill/attest/pkg/handlers"
	"github.com/JaimeStill/attest/pkg/pagination"
	"github.com/JaimeStill/attest/pkg/routes"
)

// multipartOverhead is the slack allowed on top of the upload limit for
// multipart boundaries and part headers.
const multipartOverhead = 1 << 20

// Handler provides HTTP endpoints for verification operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// ListResponse is the body returned by the history listing.
type ListResponse struct {
	Success bool             `json:"success"`
	Data    []history.Record `json:"data"`
	Total   int              `json:"total"`
}

// SearchRequest combines paging and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	history.Filter
}

// SearchResponse is one page of matching history records.
type SearchResponse struct {
	Success bool `json:"success"`
	pagination.PageResult[history.Record]
}

// RecordResponse is the body returned for a single history record.
type RecordResponse struct {
	Success bool            `json:"success"`
	Data    *history.Record `json:"data"`
}

// TextRequest is the body accepted by the text verification endpoint.
type TextRequest struct {
	Text string `json:"text"`
}

// NewHandler creates a Handler with the given system, logger, pagination
// config, and upload size limit.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "verification"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for verification endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:  "/verify",
		Schemas: schemas(),
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Verify, OpenAPI: spec.Verify},
			{Method: "POST", Pattern: "/text", Handler: h.VerifyText, OpenAPI: spec.VerifyText},
			{Method: "GET", Pattern: "/history", Handler: h.List, OpenAPI: spec.List},
			{Method: "GET", Pattern: "/history/search", Handler: h.SearchQuery, OpenAPI: spec.SearchQuery},
			{Method: "POST", Pattern: "/history/search", Handler: h.Search, OpenAPI: spec.Search},
			{Method: "GET", Pattern: "/history/{id}", Handler: h.Find, OpenAPI: spec.Find},
			{Method: "GET", Pattern: "/history/{id}/document", Handler: h.Document, OpenAPI: spec.Document},
		},
	}
}

// Verify accepts a multipart upload in the "file" field and returns the
// aggregated verification result.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartOverhead)
	}

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		h.respond(w, h.bodyError(err, "expected multipart form with a file field"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respond(w, fail(ErrInvalidInput, "file is required", nil))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.respond(w, fail(ErrInvalidInput, "unreadable file", err))
		return
	}

	result, err := h.sys.Verify(r.Context(), Upload{
		Data:        data,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	})
	if err != nil {
		h.respond(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// VerifyText accepts {"text": "..."} and verifies the text as a document.
func (h *Handler) VerifyText(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartOverhead)
	}

	var req TextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond(w, h.bodyError(err, "expected JSON body with a text field"))
		return
	}

	result, err := h.sys.VerifyText(r.Context(), req.Text)
	if err != nil {
		h.respond(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// List returns every verification, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.sys.List(r.Context())
	if err != nil {
		h.respond(w, err)
		return
	}

	if records == nil {
		records = []history.Record{}
	}

	handlers.RespondJSON(w, http.StatusOK, ListResponse{
		Success: true,
		Data:    records,
		Total:   len(records),
	})
}

// SearchQuery pages through history using page, page_size, result,
// fraud_risk, file_hash, and search query parameters.
func (h *Handler) SearchQuery(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	page := pagination.PageRequestFromQuery(values, h.pagination)
	h.search(w, r, history.FilterFromQuery(values), page)
}

// Search accepts a JSON SearchRequest and returns the matching page.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond(w, fail(ErrInvalidInput, "expected JSON search request", err))
		return
	}
	h.search(w, r, req.Filter, req.PageRequest)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request, f history.Filter, page pagination.PageRequest) {
	result, err := h.sys.Search(r.Context(), f, page)
	if err != nil {
		h.respond(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, SearchResponse{Success: true, PageResult: *result})
}

// Find returns a single verification by id.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	rec, err := h.sys.Find(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respond(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, RecordResponse{Success: true, Data: rec})
}

// Document streams the archived original of a verification.
func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	doc, err := h.sys.Document(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respond(w, err)
		return
	}
	defer doc.Body.Close()

	w.Header().Set("Content-Type", doc.ContentType)
	if doc.Size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(doc.Size, 10))
	}
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{
		"filename": doc.Filename,
	}))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, doc.Body); err != nil {
		h.logger.Warn("document stream interrupted", "id", r.PathValue("id"), "error", err)
	}
}

func (h *Handler) respond(w http.ResponseWriter, err error) {
	handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
}

func (h *Handler) bodyError(err error, detail string) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fail(ErrInvalidInput, "file exceeds "+formatting.FormatBytes(h.maxUploadSize)+" limit", nil)
	}
	return fail(ErrInvalidInput, detail, err)
}
