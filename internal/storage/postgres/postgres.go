// Package postgres implements the record archive on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool wraps pgxpool.Pool so the stores take one injectable handle.
type Pool struct {
	*pgxpool.Pool
}

// NewPool connects to the archive database and pings it before handing
// the pool out.
func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// Close releases the underlying pool.
func (p *Pool) Close() {
	p.Pool.Close()
}

// unique_violation, the only constraint the append-only stores hit.
const pgErrUniqueViolation = "23505"

// isDuplicateKeyError reports whether err carries the unique-violation
// SQLSTATE. Matching the code instead of the message survives server
// locale and version differences.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation
}

// isNotFoundError reports whether a single-row query came back empty.
func isNotFoundError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
