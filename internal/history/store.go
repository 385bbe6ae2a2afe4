// Package history keeps the append-only log of completed verifications.
// Backends are selected at startup; all are safe for concurrent use.
package history

import (
	"context"

	"github.com/JaimeStill/attest/pkg/pagination"
)

// Store is an ordered, append-only collection of Records.
type Store interface {
	// Append adds r as the newest record.
	Append(ctx context.Context, r Record) error
	// List returns every record, newest first.
	List(ctx context.Context) ([]Record, error)
	// Find returns the record with the given id or ErrNotFound.
	Find(ctx context.Context, id string) (*Record, error)
	// Search returns one newest-first page of the records matching f.
	Search(ctx context.Context, f Filter, page pagination.PageRequest) (pagination.PageResult[Record], error)
}

// Backend names accepted by configuration.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)
