package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/attest/pkg/ledger"
	"github.com/JaimeStill/attest/pkg/pagination"
	"github.com/JaimeStill/attest/pkg/query"
	"github.com/JaimeStill/attest/pkg/repository"
)

// projection lists the verifications columns in scanRecord order.
var projection = query.
	NewProjectionMap("verifications", "v").
	Project("id", "ID").
	Project("filename", "Filename").
	Project("verified_at", "VerifiedAt").
	Project("document_type", "DocumentType").
	Project("confidence", "Confidence").
	Project("fraud_risk", "FraudRisk").
	Project("result", "Result").
	Project("fraud_issues", "FraudIssues").
	Project("extracted_text", "ExtractedText").
	Project("file_hash", "FileHash").
	Project("content_type", "ContentType").
	Project("size_bytes", "SizeBytes").
	Project("page_count", "PageCount").
	Project("archive_key", "ArchiveKey").
	Project("ledger", "Ledger")

var newestFirst = []query.SortField{
	{Field: "VerifiedAt", Descending: true},
	{Field: "ID", Descending: true},
}

const insertRecord = `INSERT INTO verifications (id, filename, verified_at, document_type,
	confidence, fraud_risk, result, fraud_issues, extracted_text, file_hash, content_type,
	size_bytes, page_count, archive_key, ledger)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

type postgres struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgres returns a Store backed by the verifications table.
func NewPostgres(db *sql.DB, logger *slog.Logger) Store {
	return &postgres{
		db:     db,
		logger: logger.With("system", "history", "backend", BackendPostgres),
	}
}

func (p *postgres) Append(ctx context.Context, r Record) error {
	issues, err := json.Marshal(r.Clone().FraudIssues)
	if err != nil {
		return fmt.Errorf("encode fraud issues: %w", err)
	}
	receipt, err := json.Marshal(r.Ledger)
	if err != nil {
		return fmt.Errorf("encode ledger receipt: %w", err)
	}

	var pageCount sql.NullInt32
	if r.PageCount != nil {
		pageCount = sql.NullInt32{Int32: int32(*r.PageCount), Valid: true}
	}

	err = repository.ExecExpectOne(ctx, p.db, insertRecord,
		r.ID, r.Filename, r.VerifiedAt, r.DocumentType, r.Confidence, r.FraudRisk,
		string(r.Result), string(issues), r.ExtractedText, r.FileHash, r.ContentType,
		r.SizeBytes, pageCount, sql.NullString{String: r.ArchiveKey, Valid: r.ArchiveKey != ""},
		string(receipt),
	)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	p.logger.Debug("record appended", "id", r.ID)
	return nil
}

func (p *postgres) List(ctx context.Context) ([]Record, error) {
	q, args := query.NewBuilder(projection, newestFirst...).Build()

	records, err := repository.QueryMany(ctx, p.db, q, args, scanRecord)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return records, nil
}

func (p *postgres) Find(ctx context.Context, id string) (*Record, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}

	q, args := query.NewBuilder(projection).BuildSingle("ID", parsed.String())

	r, err := repository.QueryOne(ctx, p.db, q, args, scanRecord)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &r, nil
}

func (p *postgres) Search(ctx context.Context, f Filter, page pagination.PageRequest) (pagination.PageResult[Record], error) {
	qb := f.Apply(query.NewBuilder(projection, newestFirst...))

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := p.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return pagination.PageResult[Record]{}, fmt.Errorf("count verifications: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Offset(), page.PageSize)
	records, err := repository.QueryMany(ctx, p.db, pageSQL, pageArgs, scanRecord)
	if err != nil {
		return pagination.PageResult[Record]{}, fmt.Errorf("query verifications: %w", err)
	}

	return pagination.NewPageResult(records, total, page), nil
}

func scanRecord(s repository.Scanner) (Record, error) {
	var (
		r          Record
		result     string
		issues     []byte
		pageCount  sql.NullInt32
		archiveKey sql.NullString
		receipt    []byte
	)

	err := s.Scan(
		&r.ID, &r.Filename, &r.VerifiedAt, &r.DocumentType, &r.Confidence, &r.FraudRisk,
		&result, &issues, &r.ExtractedText, &r.FileHash, &r.ContentType, &r.SizeBytes,
		&pageCount, &archiveKey, &receipt,
	)
	if err != nil {
		return Record{}, err
	}

	r.Result = Outcome(result)
	r.VerifiedAt = r.VerifiedAt.UTC()
	r.ArchiveKey = archiveKey.String

	if pageCount.Valid {
		n := int(pageCount.Int32)
		r.PageCount = &n
	}

	if err := json.Unmarshal(issues, &r.FraudIssues); err != nil {
		return Record{}, fmt.Errorf("decode fraud issues: %w", err)
	}
	if r.FraudIssues == nil {
		r.FraudIssues = []string{}
	}

	var lr ledger.Receipt
	if err := json.Unmarshal(receipt, &lr); err != nil {
		return Record{}, fmt.Errorf("decode ledger receipt: %w", err)
	}
	r.Ledger = lr

	return r, nil
}
