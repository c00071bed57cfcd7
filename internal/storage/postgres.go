package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is a Postgres-backed Store. State lives in a single
// key/value table; values are jsonb so they stay queryable for support
// tooling.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Store backed by the given pool and ensures
// the backing table exists. The caller owns the pool lifecycle.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	const ddl = `
		CREATE TABLE IF NOT EXISTS store_entries (
			key        text PRIMARY KEY,
			value      jsonb NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now()
		)`
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return nil, fmt.Errorf("storage: create store_entries: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Get(ctx context.Context, key string, out any) error {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM store_entries WHERE key = $1`, key,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrKeyNotFound
	}
	if err != nil {
		return fmt.Errorf("storage: postgres get %q: %w", key, err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("storage: decode %q: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("storage: encode %q: %w", key, err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO store_entries (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = now()`,
		key, raw,
	)
	if err != nil {
		return fmt.Errorf("storage: postgres set %q: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM store_entries WHERE key = $1`, key,
	); err != nil {
		return fmt.Errorf("storage: postgres delete %q: %w", key, err)
	}
	return nil
}
