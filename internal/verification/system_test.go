package verification_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/JaimeStill/attest/internal/history"
	"github.com/JaimeStill/attest/internal/verification"
	"github.com/JaimeStill/attest/pkg/classifier"
	"github.com/JaimeStill/attest/pkg/fingerprint"
	"github.com/JaimeStill/attest/pkg/lifecycle"
	"github.com/JaimeStill/attest/pkg/ledger"
	"github.com/JaimeStill/attest/pkg/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockClassifier struct {
	classifyFn     func(ctx context.Context, doc classifier.Document) (*classifier.Result, error)
	classifyTextFn func(ctx context.Context, text string) (*classifier.Result, error)

	mu    sync.Mutex
	calls int
}

func (m *mockClassifier) Classify(ctx context.Context, doc classifier.Document) (*classifier.Result, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.classifyFn(ctx, doc)
}

func (m *mockClassifier) ClassifyText(ctx context.Context, text string) (*classifier.Result, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.classifyTextFn == nil {
		return nil, classifier.ErrTextUnsupported
	}
	return m.classifyTextFn(ctx, text)
}

func (m *mockClassifier) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func classifyAs(risk classifier.Risk) *mockClassifier {
	return &mockClassifier{
		classifyFn: func(_ context.Context, doc classifier.Document) (*classifier.Result, error) {
			return &classifier.Result{
				DocumentType:  "real_estate",
				Confidence:    0.92,
				FraudRisk:     risk,
				FraudIssues:   []string{},
				ExtractedText: "SALE DEED " + doc.Filename,
			}, nil
		},
	}
}

type mockLedger struct {
	recordFn func(ctx context.Context, fp string) ledger.Receipt

	mu  sync.Mutex
	fps []string
}

func (m *mockLedger) Enabled() bool { return true }

func (m *mockLedger) Record(ctx context.Context, fp string) ledger.Receipt {
	m.mu.Lock()
	m.fps = append(m.fps, fp)
	m.mu.Unlock()
	if m.recordFn == nil {
		return ledger.Receipt{Status: ledger.Recorded, TxID: "0x" + fp}
	}
	return m.recordFn(ctx, fp)
}

func (m *mockLedger) Status(context.Context) ledger.Status { return ledger.Status{Enabled: true} }
func (m *mockLedger) Close()                               {}

func (m *mockLedger) recorded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.fps...)
}

type mockArchive struct {
	archiveFn func(ctx context.Context, fp, filename, contentType string, data []byte) (string, error)

	mu    sync.Mutex
	blobs map[string][]byte
	types map[string]string
}

func newMockArchive() *mockArchive {
	return &mockArchive{blobs: map[string][]byte{}, types: map[string]string{}}
}

func (m *mockArchive) Start(*lifecycle.Coordinator) error { return nil }

func (m *mockArchive) Archive(ctx context.Context, fp, filename, contentType string, data []byte) (string, error) {
	if m.archiveFn != nil {
		return m.archiveFn(ctx, fp, filename, contentType, data)
	}
	key := storage.Key(fp, filename)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = bytes.Clone(data)
	m.types[key] = contentType
	return key, nil
}

func (m *mockArchive) Download(_ context.Context, key string) (*storage.Blob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.Blob{
		Body:        io.NopCloser(bytes.NewReader(data)),
		ContentType: m.types[key],
		Size:        int64(len(data)),
	}, nil
}

func (m *mockArchive) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.blobs[key]
	return ok, nil
}

type failingStore struct {
	history.Store
	err error
}

func (f failingStore) Append(context.Context, history.Record) error { return f.err }

func testConfig() verification.Config {
	return verification.Config{
		MaxUploadSize:     1024,
		AllowedExtensions: []string{"pdf", "jpg", "jpeg", "png", "txt"},
	}
}

type fixture struct {
	sys        verification.System
	classifier *mockClassifier
	ledger     *mockLedger
	archive    *mockArchive
	store      history.Store
}

func newFixture(cls *mockClassifier) *fixture {
	f := &fixture{
		classifier: cls,
		ledger:     &mockLedger{},
		archive:    newMockArchive(),
		store:      history.NewMemory(),
	}
	f.sys = verification.New(f.classifier, f.ledger, f.archive, f.store, testConfig(), discardLogger())
	return f
}

func upload(name, body string) verification.Upload {
	return verification.Upload{
		Data:        []byte(body),
		Filename:    name,
		ContentType: "application/pdf",
	}
}

func TestVerify(t *testing.T) {
	f := newFixture(classifyAs(classifier.RiskLow))
	ctx := context.Background()

	result, err := f.sys.Verify(ctx, upload("deed.pdf", "deed contents"))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}

	fp := fingerprint.Sum([]byte("deed contents"))

	if result.VerificationID == "" || result.VerificationID != result.ID {
		t.Errorf("verification_id = %q, id = %q", result.VerificationID, result.ID)
	}
	if result.FileHash != fp {
		t.Errorf("file_hash = %s, want %s", result.FileHash, fp)
	}
	if result.Result != history.Genuine {
		t.Errorf("result = %s, want Genuine", result.Result)
	}
	if result.DocumentType != "real_estate" || result.Confidence != 0.92 {
		t.Errorf("classification = %s/%v", result.DocumentType, result.Confidence)
	}
	if result.Ledger.Status != ledger.Recorded || result.Ledger.TxID != "0x"+fp {
		t.Errorf("ledger = %+v", result.Ledger)
	}
	if result.ArchiveKey != storage.Key(fp, "deed.pdf") {
		t.Errorf("archive_key = %s", result.ArchiveKey)
	}
	if result.SizeBytes != int64(len("deed contents")) {
		t.Errorf("size_bytes = %d", result.SizeBytes)
	}
	if result.VerifiedAt.Location().String() != "UTC" {
		t.Errorf("verified_at not UTC: %v", result.VerifiedAt)
	}

	if got := f.ledger.recorded(); len(got) != 1 || got[0] != fp {
		t.Errorf("ledger fingerprints = %v, want [%s]", got, fp)
	}

	stored, err := f.sys.Find(ctx, result.ID)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if stored.FileHash != fp || stored.Filename != "deed.pdf" || !stored.VerifiedAt.Equal(result.VerifiedAt) {
		t.Errorf("stored record = %+v", stored)
	}
}

func TestVerifyOutcome(t *testing.T) {
	tests := []struct {
		risk classifier.Risk
		want history.Outcome
	}{
		{classifier.RiskLow, history.Genuine},
		{classifier.RiskMedium, history.Invalid},
		{classifier.RiskHigh, history.Invalid},
		{classifier.Risk("Severe"), history.Invalid},
		{classifier.Risk(""), history.Invalid},
	}

	for _, tt := range tests {
		t.Run(string(tt.risk), func(t *testing.T) {
			if got := verification.OutcomeFor(tt.risk); got != tt.want {
				t.Errorf("OutcomeFor(%q) = %s, want %s", tt.risk, got, tt.want)
			}

			f := newFixture(classifyAs(tt.risk))
			result, err := f.sys.Verify(context.Background(), upload("doc.pdf", "body"))
			if err != nil {
				t.Fatalf("Verify: %v", err)
			}
			if result.Result != tt.want {
				t.Errorf("result = %s, want %s", result.Result, tt.want)
			}
			if result.FraudRisk != string(tt.risk) {
				t.Errorf("fraud_risk = %q, want %q", result.FraudRisk, tt.risk)
			}
		})
	}
}

func TestVerifyDuplicateUpload(t *testing.T) {
	f := newFixture(classifyAs(classifier.RiskLow))
	ctx := context.Background()

	first, err := f.sys.Verify(ctx, upload("a.pdf", "same bytes"))
	if err != nil {
		t.Fatalf("first Verify: %v", err)
	}
	second, err := f.sys.Verify(ctx, upload("a.pdf", "same bytes"))
	if err != nil {
		t.Fatalf("second Verify: %v", err)
	}

	if first.ID == second.ID {
		t.Errorf("duplicate upload reused id %s", first.ID)
	}
	if first.FileHash != second.FileHash {
		t.Errorf("fingerprints differ: %s vs %s", first.FileHash, second.FileHash)
	}
	if first.DocumentType != second.DocumentType || first.FraudRisk != second.FraudRisk {
		t.Errorf("classification differs: %+v vs %+v", first, second)
	}

	records, err := f.sys.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].ID != second.ID {
		t.Errorf("newest record = %s, want %s", records[0].ID, second.ID)
	}
}

func TestVerifyClassifierFailure(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		want       error
		wantKind   string
		wantStatus int
	}{
		{
			name:       "unavailable",
			err:        fmt.Errorf("%w: dial tcp 127.0.0.1:5000: connection refused", classifier.ErrUnavailable),
			want:       verification.ErrClassifierUnavailable,
			wantKind:   "classifier_unavailable",
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "rejected",
			err:        &classifier.RejectedError{StatusCode: 500, Body: `{"error":"model not loaded"}`},
			want:       verification.ErrClassifierRejected,
			wantKind:   "classifier_rejected",
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "protocol",
			err:        fmt.Errorf("%w: missing confidence", classifier.ErrProtocol),
			want:       verification.ErrClassifierProtocol,
			wantKind:   "classifier_protocol_error",
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "unclassified error",
			err:        errors.New("boom"),
			want:       verification.ErrClassifierUnavailable,
			wantKind:   "classifier_unavailable",
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(&mockClassifier{
				classifyFn: func(context.Context, classifier.Document) (*classifier.Result, error) {
					return nil, tt.err
				},
			})
			ctx := context.Background()

			_, err := f.sys.Verify(ctx, upload("doc.pdf", "body"))
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}

			var failure *verification.Failure
			if !errors.As(err, &failure) {
				t.Fatalf("err %T is not a *Failure", err)
			}
			if failure.Kind() != tt.wantKind {
				t.Errorf("kind = %s, want %s", failure.Kind(), tt.wantKind)
			}
			if got := verification.MapHTTPStatus(err); got != tt.wantStatus {
				t.Errorf("status = %d, want %d", got, tt.wantStatus)
			}
			if strings.Contains(err.Error(), "connection refused") || strings.Contains(err.Error(), "model not loaded") {
				t.Errorf("transport detail leaked into message: %q", err.Error())
			}

			records, _ := f.sys.List(ctx)
			if len(records) != 0 {
				t.Errorf("records = %d, want 0", len(records))
			}
			if got := f.ledger.recorded(); len(got) != 0 {
				t.Errorf("ledger called for unclassified document: %v", got)
			}
		})
	}
}

func TestVerifyLedgerFailure(t *testing.T) {
	tests := []struct {
		name    string
		receipt ledger.Receipt
		want    ledger.Outcome
	}{
		{"rejected", ledger.Receipt{Status: ledger.Failed, Error: ledger.ErrRejected.Error()}, ledger.Failed},
		{"timeout", ledger.Receipt{Status: ledger.Failed, Error: ledger.ErrTimeout.Error()}, ledger.Failed},
		{"already recorded", ledger.Receipt{Status: ledger.AlreadyRecorded}, ledger.AlreadyRecorded},
		{"disabled", ledger.Receipt{Status: ledger.Skipped}, ledger.Skipped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(classifyAs(classifier.RiskLow))
			f.ledger.recordFn = func(context.Context, string) ledger.Receipt { return tt.receipt }

			result, err := f.sys.Verify(context.Background(), upload("doc.pdf", "body"))
			if err != nil {
				t.Fatalf("Verify: %v", err)
			}
			if result.Ledger.Status != tt.want {
				t.Errorf("ledger status = %s, want %s", result.Ledger.Status, tt.want)
			}
			if result.Ledger.Error != tt.receipt.Error {
				t.Errorf("ledger error = %q, want %q", result.Ledger.Error, tt.receipt.Error)
			}

			if _, err := f.sys.Find(context.Background(), result.ID); err != nil {
				t.Errorf("record not appended: %v", err)
			}
		})
	}
}

func TestVerifyDetachesRecording(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cls := classifyAs(classifier.RiskLow)
	inner := cls.classifyFn
	cls.classifyFn = func(ctx context.Context, doc classifier.Document) (*classifier.Result, error) {
		res, err := inner(ctx, doc)
		cancel()
		return res, err
	}

	f := newFixture(cls)

	var ledgerErr, archiveErr error
	f.ledger.recordFn = func(ctx context.Context, fp string) ledger.Receipt {
		ledgerErr = ctx.Err()
		return ledger.Receipt{Status: ledger.Recorded, TxID: "0x1"}
	}
	f.archive.archiveFn = func(ctx context.Context, fp, filename, _ string, _ []byte) (string, error) {
		archiveErr = ctx.Err()
		return storage.Key(fp, filename), nil
	}

	result, err := f.sys.Verify(ctx, upload("doc.pdf", "body"))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ledgerErr != nil || archiveErr != nil {
		t.Errorf("recording saw cancelled context: ledger=%v archive=%v", ledgerErr, archiveErr)
	}
	if _, err := f.sys.Find(context.Background(), result.ID); err != nil {
		t.Errorf("record not appended after disconnect: %v", err)
	}
}

func TestVerifyInvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		upload verification.Upload
	}{
		{"empty data", verification.Upload{Filename: "a.pdf"}},
		{"missing filename", verification.Upload{Data: []byte("x")}},
		{"blank filename", verification.Upload{Data: []byte("x"), Filename: "  "}},
		{"oversized", verification.Upload{Data: bytes.Repeat([]byte("x"), 1025), Filename: "a.pdf"}},
		{"disallowed extension", verification.Upload{Data: []byte("x"), Filename: "run.exe"}},
		{"no extension", verification.Upload{Data: []byte("x"), Filename: "README"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(classifyAs(classifier.RiskLow))

			_, err := f.sys.Verify(context.Background(), tt.upload)
			if !errors.Is(err, verification.ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
			if got := verification.MapHTTPStatus(err); got != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", got)
			}
			if f.classifier.count() != 0 {
				t.Error("classifier called for invalid input")
			}
		})
	}
}

func TestVerifyUppercaseExtension(t *testing.T) {
	f := newFixture(classifyAs(classifier.RiskLow))

	if _, err := f.sys.Verify(context.Background(), upload("SCAN.PDF", "body")); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerifyOversizedMessage(t *testing.T) {
	f := newFixture(classifyAs(classifier.RiskLow))

	_, err := f.sys.Verify(context.Background(), verification.Upload{
		Data:     bytes.Repeat([]byte("x"), 2048),
		Filename: "big.pdf",
	})
	if err == nil || !strings.Contains(err.Error(), "1 KB") {
		t.Errorf("err = %v, want size limit message", err)
	}
}

func TestVerifyDetectsContentType(t *testing.T) {
	cls := classifyAs(classifier.RiskLow)
	var sent string
	inner := cls.classifyFn
	cls.classifyFn = func(ctx context.Context, doc classifier.Document) (*classifier.Result, error) {
		sent = doc.ContentType
		return inner(ctx, doc)
	}
	f := newFixture(cls)

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	result, err := f.sys.Verify(context.Background(), verification.Upload{
		Data:        png,
		Filename:    "scan.png",
		ContentType: "application/octet-stream",
	})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if result.ContentType != "image/png" || sent != "image/png" {
		t.Errorf("content type = %s (sent %s), want image/png", result.ContentType, sent)
	}
	if result.PageCount != nil {
		t.Errorf("page_count = %d for non-pdf", *result.PageCount)
	}
}

func TestVerifyArchive(t *testing.T) {
	t.Run("failure does not fail verification", func(t *testing.T) {
		f := newFixture(classifyAs(classifier.RiskLow))
		f.archive.archiveFn = func(context.Context, string, string, string, []byte) (string, error) {
			return "", errors.New("container unreachable")
		}

		result, err := f.sys.Verify(context.Background(), upload("doc.pdf", "body"))
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}
		if result.ArchiveKey != "" {
			t.Errorf("archive_key = %q, want empty", result.ArchiveKey)
		}

		_, err = f.sys.Document(context.Background(), result.ID)
		if !errors.Is(err, verification.ErrNotArchived) {
			t.Errorf("Document err = %v, want ErrNotArchived", err)
		}
	})

	t.Run("document round trip", func(t *testing.T) {
		f := newFixture(classifyAs(classifier.RiskLow))

		result, err := f.sys.Verify(context.Background(), upload("deed.pdf", "original bytes"))
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}

		doc, err := f.sys.Document(context.Background(), result.ID)
		if err != nil {
			t.Fatalf("Document: %v", err)
		}
		defer doc.Body.Close()

		data, _ := io.ReadAll(doc.Body)
		if string(data) != "original bytes" {
			t.Errorf("body = %q", data)
		}
		if doc.Filename != "deed.pdf" || doc.ContentType != "application/pdf" {
			t.Errorf("document = %s (%s)", doc.Filename, doc.ContentType)
		}
	})

	t.Run("no archive configured", func(t *testing.T) {
		store := history.NewMemory()
		sys := verification.New(classifyAs(classifier.RiskLow), &mockLedger{}, nil, store, testConfig(), discardLogger())

		result, err := sys.Verify(context.Background(), upload("doc.pdf", "body"))
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}
		if result.ArchiveKey != "" {
			t.Errorf("archive_key = %q, want empty", result.ArchiveKey)
		}
		if _, err := sys.Document(context.Background(), result.ID); !errors.Is(err, verification.ErrNotArchived) {
			t.Errorf("Document err = %v, want ErrNotArchived", err)
		}
	})
}

func TestVerifyHistoryFailure(t *testing.T) {
	store := failingStore{Store: history.NewMemory(), err: errors.New("connection reset")}
	sys := verification.New(classifyAs(classifier.RiskLow), &mockLedger{}, nil, store, testConfig(), discardLogger())

	_, err := sys.Verify(context.Background(), upload("doc.pdf", "body"))
	if !errors.Is(err, verification.ErrHistory) {
		t.Fatalf("err = %v, want ErrHistory", err)
	}
	if got := verification.MapHTTPStatus(err); got != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", got)
	}
	if strings.Contains(err.Error(), "connection reset") {
		t.Errorf("cause leaked into message: %q", err.Error())
	}
}

func TestVerifyText(t *testing.T) {
	t.Run("classifies text", func(t *testing.T) {
		cls := &mockClassifier{
			classifyTextFn: func(_ context.Context, text string) (*classifier.Result, error) {
				return &classifier.Result{
					DocumentType:  "real_estate",
					Confidence:    0.65,
					FraudRisk:     classifier.RiskMedium,
					FraudIssues:   []string{"Low confidence in document classification"},
					ExtractedText: text,
				}, nil
			},
		}
		f := newFixture(cls)

		result, err := f.sys.VerifyText(context.Background(), "THIS DEED OF SALE")
		if err != nil {
			t.Fatalf("VerifyText: %v", err)
		}
		if result.Result != history.Invalid {
			t.Errorf("result = %s, want Invalid", result.Result)
		}
		if result.FileHash != fingerprint.Sum([]byte("THIS DEED OF SALE")) {
			t.Errorf("file_hash = %s", result.FileHash)
		}
		if result.ExtractedText != "THIS DEED OF SALE" {
			t.Errorf("extracted_text = %q", result.ExtractedText)
		}
		if len(result.FraudIssues) != 1 {
			t.Errorf("fraud_issues = %v", result.FraudIssues)
		}
	})

	t.Run("empty text", func(t *testing.T) {
		f := newFixture(&mockClassifier{})

		_, err := f.sys.VerifyText(context.Background(), "   ")
		if !errors.Is(err, verification.ErrInvalidInput) {
			t.Errorf("err = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("ignores extension allowlist", func(t *testing.T) {
		cls := &mockClassifier{
			classifyTextFn: func(context.Context, string) (*classifier.Result, error) {
				return &classifier.Result{DocumentType: "real_estate", Confidence: 0.9, FraudRisk: classifier.RiskLow}, nil
			},
		}
		cfg := testConfig()
		cfg.AllowedExtensions = []string{"pdf"}
		sys := verification.New(cls, &mockLedger{}, newMockArchive(), history.NewMemory(), cfg, discardLogger())

		result, err := sys.VerifyText(context.Background(), "THIS DEED OF SALE")
		if err != nil {
			t.Fatalf("VerifyText: %v", err)
		}
		if result.Result != history.Genuine {
			t.Errorf("result = %s, want Genuine", result.Result)
		}
	})

	t.Run("text over size limit", func(t *testing.T) {
		f := newFixture(classifyAs(classifier.RiskLow))

		_, err := f.sys.VerifyText(context.Background(), strings.Repeat("a", 2048))
		if !errors.Is(err, verification.ErrInvalidInput) {
			t.Errorf("err = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("unsupported", func(t *testing.T) {
		f := newFixture(&mockClassifier{})

		_, err := f.sys.VerifyText(context.Background(), "text")
		if !errors.Is(err, verification.ErrTextUnsupported) {
			t.Fatalf("err = %v, want ErrTextUnsupported", err)
		}
		if got := verification.MapHTTPStatus(err); got != http.StatusNotImplemented {
			t.Errorf("status = %d, want 501", got)
		}
	})
}

func TestFind(t *testing.T) {
	f := newFixture(classifyAs(classifier.RiskLow))

	for _, id := range []string{"not-a-uuid", "0192a7c4-0000-7000-8000-000000000000", ""} {
		t.Run(id, func(t *testing.T) {
			_, err := f.sys.Find(context.Background(), id)
			if !errors.Is(err, verification.ErrNotFound) {
				t.Errorf("err = %v, want ErrNotFound", err)
			}
			if got := verification.MapHTTPStatus(err); got != http.StatusNotFound {
				t.Errorf("status = %d, want 404", got)
			}
		})
	}
}

func TestVerifyConcurrent(t *testing.T) {
	const n = 25
	f := newFixture(classifyAs(classifier.RiskLow))
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make([]string, n)
	errs := make([]error, n)

	for i := range n {
		wg.Go(func() {
			result, err := f.sys.Verify(ctx, upload(fmt.Sprintf("doc-%d.pdf", i), fmt.Sprintf("contents %d", i)))
			errs[i] = err
			if err == nil {
				ids[i] = result.ID
			}
		})
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for i, err := range errs {
		if err != nil {
			t.Fatalf("upload %d: %v", i, err)
		}
		if seen[ids[i]] {
			t.Errorf("duplicate id %s", ids[i])
		}
		seen[ids[i]] = true
	}

	records, err := f.sys.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != n {
		t.Fatalf("records = %d, want %d", len(records), n)
	}
	for _, r := range records {
		if !seen[r.ID] {
			t.Errorf("unexpected record %s", r.ID)
		}
	}
}

func TestFailure(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	f := &verification.Failure{Err: verification.ErrClassifierUnavailable, Cause: cause}

	if f.Error() != "classifier unavailable" {
		t.Errorf("Error() = %q", f.Error())
	}
	if !errors.Is(f, cause) || !errors.Is(f, verification.ErrClassifierUnavailable) {
		t.Error("Failure does not unwrap to both sentinel and cause")
	}
	if got := f.LogValue().String(); !strings.Contains(got, "connection refused") {
		t.Errorf("LogValue() = %q, want cause included", got)
	}

	detailed := &verification.Failure{Err: verification.ErrInvalidInput, Detail: "file is empty"}
	if detailed.Error() != "invalid input: file is empty" {
		t.Errorf("Error() = %q", detailed.Error())
	}
	if detailed.Kind() != "invalid_input" {
		t.Errorf("Kind() = %q", detailed.Kind())
	}
}
