package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation = "23505"
	pgUndefinedTable  = "42P01"
)

// ErrSchemaMissing indicates a query referenced a table that does not exist,
// usually because migrations have not been applied.
var ErrSchemaMissing = errors.New("database schema missing; run migrations")

// MapError translates database errors to domain errors.
// sql.ErrNoRows maps to notFoundErr, a unique violation to duplicateErr,
// and an undefined table to ErrSchemaMissing. Other errors pass through.
func MapError(err error, notFoundErr, duplicateErr error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return duplicateErr
		case pgUndefinedTable:
			return fmt.Errorf("%w: %s", ErrSchemaMissing, pgErr.TableName)
		}
	}

	return err
}
