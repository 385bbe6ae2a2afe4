package history_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/attest/internal/history"
	"github.com/JaimeStill/attest/pkg/fingerprint"
	"github.com/JaimeStill/attest/pkg/ledger"
	"github.com/JaimeStill/attest/pkg/pagination"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRecord(t *testing.T, filename string) history.Record {
	t.Helper()
	id, err := uuid.NewV7()
	if err != nil {
		t.Fatalf("uuid: %v", err)
	}
	pages := 2
	return history.Record{
		ID:            id.String(),
		Filename:      filename,
		VerifiedAt:    time.Now().UTC().Truncate(time.Microsecond),
		DocumentType:  "real_estate",
		Confidence:    0.91,
		FraudRisk:     "Low",
		Result:        history.Genuine,
		FraudIssues:   []string{},
		ExtractedText: "SALE DEED",
		FileHash:      "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08",
		ContentType:   "application/pdf",
		SizeBytes:     1024,
		PageCount:     &pages,
		Ledger:        ledger.Receipt{Status: ledger.Skipped},
	}
}

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, store history.Store) {
	ctx := context.Background()

	t.Run("newest first", func(t *testing.T) {
		before, err := store.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}

		first := newRecord(t, "first.pdf")
		second := newRecord(t, "second.pdf")
		for _, r := range []history.Record{first, second} {
			if err := store.Append(ctx, r); err != nil {
				t.Fatalf("Append: %v", err)
			}
		}

		after, err := store.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(after) != len(before)+2 {
			t.Fatalf("len = %d, want %d", len(after), len(before)+2)
		}
		if after[0].ID != second.ID || after[1].ID != first.ID {
			t.Errorf("order = [%s %s], want [%s %s]", after[0].ID, after[1].ID, second.ID, first.ID)
		}
	})

	t.Run("find round trip", func(t *testing.T) {
		want := newRecord(t, "deed.pdf")
		want.FraudIssues = []string{"Low confidence in document classification"}
		want.ArchiveKey = "verifications/" + want.FileHash + "/deed.pdf"
		want.Ledger = ledger.Receipt{Status: ledger.Recorded, TxID: "0xabc"}

		if err := store.Append(ctx, want); err != nil {
			t.Fatalf("Append: %v", err)
		}

		got, err := store.Find(ctx, want.ID)
		if err != nil {
			t.Fatalf("Find: %v", err)
		}
		if got.ID != want.ID || got.Filename != want.Filename || got.FileHash != want.FileHash {
			t.Errorf("Find = %+v", got)
		}
		if !got.VerifiedAt.Equal(want.VerifiedAt) {
			t.Errorf("verified_at = %v, want %v", got.VerifiedAt, want.VerifiedAt)
		}
		if len(got.FraudIssues) != 1 || got.FraudIssues[0] != want.FraudIssues[0] {
			t.Errorf("fraud issues = %v", got.FraudIssues)
		}
		if got.PageCount == nil || *got.PageCount != 2 {
			t.Errorf("page count = %v, want 2", got.PageCount)
		}
		if got.Ledger != want.Ledger {
			t.Errorf("ledger = %+v, want %+v", got.Ledger, want.Ledger)
		}
		if got.ArchiveKey != want.ArchiveKey {
			t.Errorf("archive key = %q", got.ArchiveKey)
		}
	})

	t.Run("not found", func(t *testing.T) {
		for _, id := range []string{uuid.NewString(), "not-a-uuid"} {
			if _, err := store.Find(ctx, id); !errors.Is(err, history.ErrNotFound) {
				t.Errorf("Find(%q) err = %v, want ErrNotFound", id, err)
			}
		}
	})

	t.Run("duplicate id refused", func(t *testing.T) {
		r := newRecord(t, "dup.pdf")
		if err := store.Append(ctx, r); err != nil {
			t.Fatalf("Append: %v", err)
		}
		if err := store.Append(ctx, r); !errors.Is(err, history.ErrDuplicate) {
			t.Errorf("second Append err = %v, want ErrDuplicate", err)
		}
	})

	t.Run("concurrent appends", func(t *testing.T) {
		before, _ := store.List(ctx)

		const n = 25
		ids := make([]string, n)
		errs := make([]error, n)

		var wg sync.WaitGroup
		for i := range n {
			r := newRecord(t, fmt.Sprintf("doc-%d.pdf", i))
			ids[i] = r.ID
			wg.Go(func() {
				errs[i] = store.Append(ctx, r)
			})
		}
		wg.Wait()

		for i, err := range errs {
			if err != nil {
				t.Errorf("append %d: %v", i, err)
			}
		}

		after, err := store.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(after) != len(before)+n {
			t.Errorf("len = %d, want %d", len(after), len(before)+n)
		}

		seen := make(map[string]bool, len(after))
		for _, r := range after {
			if seen[r.ID] {
				t.Errorf("id %s listed twice", r.ID)
			}
			seen[r.ID] = true
		}
		for _, id := range ids {
			if !seen[id] {
				t.Errorf("id %s missing", id)
			}
		}
	})
}

// exerciseSearch appends a tagged batch so records from earlier subtests
// never match.
func exerciseSearch(t *testing.T, store history.Store) {
	ctx := context.Background()
	tag := uuid.NewString()[:8]
	base := time.Now().UTC().Truncate(time.Second)

	batch := make([]history.Record, 3)
	for i := range batch {
		r := newRecord(t, fmt.Sprintf("Deed-%s-%d.pdf", tag, i))
		r.VerifiedAt = base.Add(time.Duration(i) * time.Second)
		r.FileHash = fingerprint.Sum([]byte(r.Filename))
		batch[i] = r
	}
	batch[1].FraudRisk = "High"
	batch[1].Result = history.Invalid

	for _, r := range batch {
		if err := store.Append(ctx, r); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	first := pagination.PageRequest{Page: 1, PageSize: 2}

	t.Run("search pages newest first", func(t *testing.T) {
		res, err := store.Search(ctx, history.Filter{Search: "deed-" + tag}, first)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if res.Total != 3 || res.TotalPages != 2 || len(res.Data) != 2 {
			t.Fatalf("total = %d pages = %d len = %d", res.Total, res.TotalPages, len(res.Data))
		}
		if res.Data[0].ID != batch[2].ID || res.Data[1].ID != batch[1].ID {
			t.Errorf("order = [%s %s], want [%s %s]", res.Data[0].ID, res.Data[1].ID, batch[2].ID, batch[1].ID)
		}

		next, err := store.Search(ctx, history.Filter{Search: "deed-" + tag}, pagination.PageRequest{Page: 2, PageSize: 2})
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(next.Data) != 1 || next.Data[0].ID != batch[0].ID {
			t.Errorf("second page = %+v", next.Data)
		}
	})

	tests := []struct {
		name   string
		filter history.Filter
		want   string
	}{
		{"result", history.Filter{Search: tag, Result: "invalid"}, batch[1].ID},
		{"fraud risk", history.Filter{Search: tag, FraudRisk: "HIGH"}, batch[1].ID},
		{"file hash", history.Filter{FileHash: "0x" + strings.ToUpper(batch[0].FileHash)}, batch[0].ID},
	}

	for _, tt := range tests {
		t.Run("filter "+tt.name, func(t *testing.T) {
			res, err := store.Search(ctx, tt.filter, first)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if res.Total != 1 || len(res.Data) != 1 || res.Data[0].ID != tt.want {
				t.Errorf("got total %d data %+v, want only %s", res.Total, res.Data, tt.want)
			}
		})
	}

	t.Run("page past the end of int range", func(t *testing.T) {
		page := pagination.PageRequest{Page: math.MaxInt64, PageSize: 20}
		page.Normalize(pagination.Config{DefaultPageSize: 20, MaxPageSize: 100})

		res, err := store.Search(ctx, history.Filter{Search: "deed-" + tag}, page)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if res.Total != 3 || res.Data == nil || len(res.Data) != 0 {
			t.Errorf("got total %d data %+v, want empty page of 3", res.Total, res.Data)
		}
	})

	t.Run("no match", func(t *testing.T) {
		res, err := store.Search(ctx, history.Filter{Search: "%" + tag}, first)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if res.Total != 0 || res.Data == nil || len(res.Data) != 0 {
			t.Errorf("got %+v, want empty page", res)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	store := history.NewMemory()
	exerciseStore(t, store)
	exerciseSearch(t, store)
}

func TestFilterFromQuery(t *testing.T) {
	values := url.Values{
		"result":    {" Genuine "},
		"file_hash": {"0xABC"},
		"search":    {"deed"},
	}

	got := history.FilterFromQuery(values)
	want := history.Filter{Result: "Genuine", FileHash: "abc", Search: "deed"}
	if got != want {
		t.Errorf("FilterFromQuery = %+v, want %+v", got, want)
	}
}

func TestMemoryStoreIsolation(t *testing.T) {
	ctx := context.Background()
	store := history.NewMemory()

	r := newRecord(t, "deed.pdf")
	r.FraudIssues = []string{"original"}
	if err := store.Append(ctx, r); err != nil {
		t.Fatalf("Append: %v", err)
	}

	r.FraudIssues[0] = "mutated by caller"

	got, _ := store.Find(ctx, r.ID)
	if got.FraudIssues[0] != "original" {
		t.Errorf("stored record changed through caller slice: %v", got.FraudIssues)
	}

	got.FraudIssues[0] = "mutated by reader"
	*got.PageCount = 99

	again, _ := store.Find(ctx, r.ID)
	if again.FraudIssues[0] != "original" || *again.PageCount != 2 {
		t.Errorf("stored record changed through returned copy: %+v", again)
	}
}

func TestMemoryStoreEmpty(t *testing.T) {
	records, err := history.NewMemory().List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Errorf("List = %#v, want empty non-nil slice", records)
	}
}

func TestRecordClone(t *testing.T) {
	r := history.Record{ID: "x"}
	c := r.Clone()
	if c.FraudIssues == nil {
		t.Error("Clone should normalize nil fraud issues to an empty slice")
	}
}
