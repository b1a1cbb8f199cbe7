package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

// NewPostgres creates a ledger backed by a Postgres database
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("new pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping ledger db: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Postgres persists experiment records with optimistic concurrency
type Postgres struct {
	pool *pgxpool.Pool
}

// Migrate creates the experiments table when it does not exist yet
func (p *Postgres) Migrate(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS experiments (
			id       UUID PRIMARY KEY,
			name     TEXT NOT NULL UNIQUE,
			begin_at TIMESTAMPTZ,
			end_at   TIMESTAMPTZ,
			version  BIGINT NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		return fmt.Errorf("migrate experiments: %w", err)
	}
	return nil
}

// CreateOrFetch returns the record for the given experiment name. A
// concurrent creation of the same name surfaces as ErrDuplicate, which is
// rolled back and retried once.
func (p *Postgres) CreateOrFetch(ctx context.Context, name string) (*Record, error) {
	var rec *Record
	op := func() error {
		r, err := p.createOrFetch(ctx, name)
		if err != nil {
			if errors.Is(err, ErrDuplicate) {
				return err
			}
			return backoff.Permanent(err)
		}
		rec = r
		return nil
	}

	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(100*time.Millisecond), 1)
	if err := backoff.Retry(op, backoff.WithContext(policy, ctx)); err != nil {
		return nil, err
	}
	return rec, nil
}

func (p *Postgres) createOrFetch(ctx context.Context, name string) (*Record, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	query := `
		SELECT id, name, begin_at, end_at, version
		FROM experiments
		WHERE name = $1
	`
	rec, err := scanRecord(tx.QueryRow(ctx, query, name))
	if err == nil {
		return rec, tx.Commit(ctx)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("fetch experiment: %w", err)
	}

	rec = &Record{ID: uuid.New(), Name: name}
	_, err = tx.Exec(ctx,
		`INSERT INTO experiments (id, name, version) VALUES ($1, $2, 0)`,
		rec.ID, rec.Name,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert experiment: %w", err)
	}
	return rec, tx.Commit(ctx)
}

// Commit writes the record back when its version is still current
func (p *Postgres) Commit(ctx context.Context, rec *Record) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE experiments
		SET begin_at = $2, end_at = $3, version = version + 1
		WHERE id = $1 AND version = $4
	`, rec.ID, rec.Begin, rec.End, rec.Version)
	if err != nil {
		return fmt.Errorf("update experiment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConsistency
	}
	rec.Version++
	return nil
}

// Close releases the connection pool
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	if err := row.Scan(&rec.ID, &rec.Name, &rec.Begin, &rec.End, &rec.Version); err != nil {
		return nil, err
	}
	return &rec, nil
}
