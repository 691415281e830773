// Package repository provides database access layer.
package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// PostgreSQL error codes the repository maps to sentinel errors.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeInvalidText         = "22P02"
)

// querier is satisfied by both pools.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository provides database access methods.
// pool is the privileged service connection; public serves anonymous
// reads and falls back to pool when no separate DSN is configured.
type Repository struct {
	pool   *pgxpool.Pool
	public *pgxpool.Pool
}

// New creates a new Repository. publicURL may be empty or equal to
// databaseURL, in which case a single pool is shared.
func New(ctx context.Context, databaseURL, publicURL string) (*Repository, error) {
	pool, err := newPool(ctx, databaseURL, 10, 2)
	if err != nil {
		return nil, err
	}

	repo := &Repository{pool: pool, public: pool}
	if publicURL != "" && publicURL != databaseURL {
		public, err := newPool(ctx, publicURL, 5, 1)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("public pool: %w", err)
		}
		repo.public = public
	}

	return repo, nil
}

func newPool(ctx context.Context, databaseURL string, maxConns, minConns int32) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pool settings
	config.MaxConns = maxConns
	config.MinConns = minConns

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return err
	}
	if r.public != r.pool {
		return r.public.Ping(ctx)
	}
	return nil
}

// Close closes the database connection pools.
func (r *Repository) Close() {
	if r.public != r.pool {
		r.public.Close()
	}
	r.pool.Close()
}

// Pool returns the underlying service connection pool.
// Use sparingly - prefer adding methods to Repository.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	return pgErrorCode(err) == codeUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pgErrorCode(err) == codeForeignKeyViolation
}

// isInvalidText reports a malformed literal, e.g. a non-UUID id.
func isInvalidText(err error) bool {
	return pgErrorCode(err) == codeInvalidText
}

// validID reports whether id can be compared against a UUID column.
// Malformed ids are treated as absent rows instead of query errors.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// buildUpdate renders "UPDATE table SET a = $1, b = $2, updated_at = $3
// WHERE id = $4" for the given columns. Column names are sorted so the
// statement text is stable, and quoted because they come from a map.
func buildUpdate(table string, cols map[string]any, updatedAt any, id string) (string, []any) {
	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}
	sort.Strings(names)

	sets := make([]string, 0, len(names)+1)
	args := make([]any, 0, len(names)+2)
	for _, name := range names {
		args = append(args, cols[name])
		sets = append(sets, fmt.Sprintf("%s = $%d", pq.QuoteIdentifier(name), len(args)))
	}
	args = append(args, updatedAt)
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d",
		pq.QuoteIdentifier(table), strings.Join(sets, ", "), len(args))
	return query, args
}
