package verification

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/attest/internal/history"
	"github.com/JaimeStill/attest/pkg/classifier"
	"github.com/JaimeStill/attest/pkg/fingerprint"
	"github.com/JaimeStill/attest/pkg/formatting"
	"github.com/JaimeStill/attest/pkg/ledger"
	"github.com/JaimeStill/attest/pkg/pagination"
	"github.com/JaimeStill/attest/pkg/storage"
)

const textFilename = "submitted-text.txt"

// System defines the public contract for verification operations.
type System interface {
	Handler() *Handler

	// Verify hashes, classifies and records an uploaded document, then
	// appends the resulting record to history.
	Verify(ctx context.Context, u Upload) (*Result, error)
	// VerifyText runs the same flow for already-extracted text.
	VerifyText(ctx context.Context, text string) (*Result, error)

	List(ctx context.Context) ([]history.Record, error)
	// Search returns one page of the records matching f. page is
	// normalized against the configured page size bounds.
	Search(ctx context.Context, f history.Filter, page pagination.PageRequest) (*pagination.PageResult[history.Record], error)
	Find(ctx context.Context, id string) (*history.Record, error)
	// Document returns the archived original of a verification.
	Document(ctx context.Context, id string) (*Document, error)
}

// Classifier is the subset of the classification client the orchestrator uses.
type Classifier interface {
	Classify(ctx context.Context, doc classifier.Document) (*classifier.Result, error)
	ClassifyText(ctx context.Context, text string) (*classifier.Result, error)
}

// Config bounds what the orchestrator accepts.
type Config struct {
	MaxUploadSize     int64
	AllowedExtensions []string
	ArchiveTimeout    time.Duration
	Pagination        pagination.Config
}

type system struct {
	classifier Classifier
	ledger     ledger.System
	archive    storage.System
	store      history.Store
	cfg        Config
	logger     *slog.Logger
}

// New creates the verification orchestrator. archive may be nil, in which
// case originals are not kept.
func New(
	cls Classifier,
	ldg ledger.System,
	archive storage.System,
	store history.Store,
	cfg Config,
	logger *slog.Logger,
) System {
	if cfg.ArchiveTimeout <= 0 {
		cfg.ArchiveTimeout = 30 * time.Second
	}
	if cfg.Pagination.MaxPageSize <= 0 {
		cfg.Pagination = pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}
	}
	return &system{
		classifier: cls,
		ledger:     ldg,
		archive:    archive,
		store:      store,
		cfg:        cfg,
		logger:     logger.With("system", "verification"),
	}
}

func (s *system) Handler() *Handler {
	return NewHandler(s, s.logger, s.cfg.Pagination, s.cfg.MaxUploadSize)
}

func (s *system) Verify(ctx context.Context, u Upload) (*Result, error) {
	log := s.logger.With("filename", u.Filename)
	transition(log, StateReceived)

	if err := s.validate(u); err != nil {
		transition(log, StateInvalid)
		return nil, err
	}

	transition(log, StateHashing)
	u.ContentType = detectContentType(u.ContentType, u.Data)
	fp := fingerprint.Sum(u.Data)
	pages := extractPDFPageCount(log, u.Data, u.ContentType)
	log = log.With("fingerprint", fp)

	transition(log, StateClassifying)
	cls, err := s.classifier.Classify(ctx, classifier.Document{
		Data:        u.Data,
		Filename:    u.Filename,
		ContentType: u.ContentType,
	})
	if err != nil {
		transition(log, StateFailed)
		return nil, classifierFailure(log, err)
	}

	return s.complete(ctx, log, u, fp, pages, cls)
}

func (s *system) VerifyText(ctx context.Context, text string) (*Result, error) {
	u := Upload{
		Data:        []byte(text),
		Filename:    textFilename,
		ContentType: "text/plain; charset=utf-8",
	}

	log := s.logger.With("filename", u.Filename)
	transition(log, StateReceived)

	if strings.TrimSpace(text) == "" {
		transition(log, StateInvalid)
		return nil, fail(ErrInvalidInput, "text is required", nil)
	}
	if err := s.validateSize(u); err != nil {
		transition(log, StateInvalid)
		return nil, err
	}

	transition(log, StateHashing)
	fp := fingerprint.Sum(u.Data)
	log = log.With("fingerprint", fp)

	transition(log, StateClassifying)
	cls, err := s.classifier.ClassifyText(ctx, text)
	if err != nil {
		transition(log, StateFailed)
		return nil, classifierFailure(log, err)
	}

	return s.complete(ctx, log, u, fp, nil, cls)
}

func (s *system) List(ctx context.Context) ([]history.Record, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, fail(ErrHistory, "", err)
	}
	return records, nil
}

func (s *system) Search(ctx context.Context, f history.Filter, page pagination.PageRequest) (*pagination.PageResult[history.Record], error) {
	page.Normalize(s.cfg.Pagination)

	result, err := s.store.Search(ctx, f, page)
	if err != nil {
		return nil, fail(ErrHistory, "", err)
	}
	return &result, nil
}

func (s *system) Find(ctx context.Context, id string) (*history.Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fail(ErrNotFound, "", nil)
	}

	rec, err := s.store.Find(ctx, id)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			return nil, fail(ErrNotFound, "", nil)
		}
		return nil, fail(ErrHistory, "", err)
	}
	return rec, nil
}

func (s *system) Document(ctx context.Context, id string) (*Document, error) {
	rec, err := s.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.archive == nil || rec.ArchiveKey == "" {
		return nil, fail(ErrNotArchived, "", nil)
	}

	blob, err := s.archive.Download(ctx, rec.ArchiveKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fail(ErrNotArchived, "", err)
		}
		return nil, fail(ErrArchive, "", err)
	}
	return &Document{Filename: path.Base(rec.ArchiveKey), Blob: blob}, nil
}

// complete records the fingerprint, builds the record and appends it.
// Steps after classification are detached from the caller's context so a
// client disconnect cannot drop a record whose ledger write already went out.
func (s *system) complete(
	ctx context.Context,
	log *slog.Logger,
	u Upload,
	fp string,
	pages *int,
	cls *classifier.Result,
) (*Result, error) {
	ctx = context.WithoutCancel(ctx)

	transition(log, StateRecording)
	receipt, key := s.record(ctx, log, u, fp)
	if receipt.Status == ledger.Failed || receipt.Status == ledger.Skipped {
		transition(log, StateRecordingSkipped)
	}

	id, err := uuid.NewV7()
	if err != nil {
		transition(log, StateFailed)
		return nil, fail(ErrHistory, "", fmt.Errorf("generate id: %w", err))
	}

	issues := slices.Clone(cls.FraudIssues)
	if issues == nil {
		issues = []string{}
	}

	rec := history.Record{
		ID:            id.String(),
		Filename:      u.Filename,
		VerifiedAt:    time.Now().UTC().Truncate(time.Microsecond),
		DocumentType:  cls.DocumentType,
		Confidence:    cls.Confidence,
		FraudRisk:     string(cls.FraudRisk),
		Result:        OutcomeFor(cls.FraudRisk),
		FraudIssues:   issues,
		ExtractedText: cls.ExtractedText,
		FileHash:      fp,
		ContentType:   u.ContentType,
		SizeBytes:     int64(len(u.Data)),
		PageCount:     pages,
		ArchiveKey:    key,
		Ledger:        receipt,
	}

	if err := s.store.Append(ctx, rec); err != nil {
		transition(log, StateFailed)
		return nil, fail(ErrHistory, "", err)
	}

	transition(log, StateCompleted)
	log.Info(
		"document verified",
		"id", rec.ID,
		"result", rec.Result,
		"fraud_risk", rec.FraudRisk,
		"ledger", receipt.Status,
	)

	return &Result{VerificationID: rec.ID, Record: rec.Clone()}, nil
}

// record runs the ledger write and the archive upload concurrently.
// Neither can fail the verification.
func (s *system) record(ctx context.Context, log *slog.Logger, u Upload, fp string) (ledger.Receipt, string) {
	var (
		receipt ledger.Receipt
		key     string
		g       errgroup.Group
	)

	g.Go(func() error {
		receipt = s.ledger.Record(ctx, fp)
		if receipt.Status == ledger.Failed {
			log.Warn("ledger recording failed", "error", receipt.Error)
		}
		return nil
	})

	if s.archive != nil {
		g.Go(func() error {
			actx, cancel := context.WithTimeout(ctx, s.cfg.ArchiveTimeout)
			defer cancel()

			k, err := s.archive.Archive(actx, fp, u.Filename, u.ContentType, u.Data)
			if err != nil {
				log.Warn("document archive failed", "error", err)
				return nil
			}
			key = k
			return nil
		})
	}

	g.Wait()
	return receipt, key
}

// validate checks an uploaded file. Text submissions skip the extension
// allowlist and go through validateSize only.
func (s *system) validate(u Upload) error {
	if err := s.validateSize(u); err != nil {
		return err
	}

	if len(s.cfg.AllowedExtensions) > 0 {
		ext := strings.ToLower(strings.TrimPrefix(path.Ext(u.Filename), "."))
		if !slices.Contains(s.cfg.AllowedExtensions, ext) {
			return fail(
				ErrInvalidInput,
				fmt.Sprintf("file type not allowed (allowed: %s)", strings.Join(s.cfg.AllowedExtensions, ", ")),
				nil,
			)
		}
	}

	return nil
}

func (s *system) validateSize(u Upload) error {
	if len(u.Data) == 0 {
		return fail(ErrInvalidInput, "file is empty", nil)
	}
	if strings.TrimSpace(u.Filename) == "" {
		return fail(ErrInvalidInput, "filename is required", nil)
	}
	if s.cfg.MaxUploadSize > 0 && int64(len(u.Data)) > s.cfg.MaxUploadSize {
		return fail(
			ErrInvalidInput,
			fmt.Sprintf("file exceeds %s limit", formatting.FormatBytes(s.cfg.MaxUploadSize)),
			nil,
		)
	}
	return nil
}

func classifierFailure(log *slog.Logger, err error) error {
	var rejected *classifier.RejectedError

	switch {
	case errors.Is(err, classifier.ErrTextUnsupported):
		return fail(ErrTextUnsupported, "", nil)
	case errors.As(err, &rejected):
		log.Warn("classifier rejected document", "status", rejected.StatusCode, "body", rejected.Body)
		return fail(ErrClassifierRejected, fmt.Sprintf("status %d", rejected.StatusCode), err)
	case errors.Is(err, classifier.ErrProtocol):
		return fail(ErrClassifierProtocol, "", err)
	}
	return fail(ErrClassifierUnavailable, "", err)
}

func transition(log *slog.Logger, st State) {
	log.Debug("verification state", "state", st)
}

func detectContentType(header string, data []byte) string {
	header = strings.TrimSpace(header)
	if header != "" && header != "application/octet-stream" {
		return header
	}
	return http.DetectContentType(data)
}

func extractPDFPageCount(log *slog.Logger, data []byte, contentType string) *int {
	if contentType != "application/pdf" {
		return nil
	}

	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		log.Warn("failed to extract PDF page count", "error", err)
		return nil
	}

	return &count
}
