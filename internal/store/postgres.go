package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is a Store backed by a single jsonb table, so rooms survive
// server restarts. The room session remains the only writer per room;
// the database only has to provide per-statement atomicity.
type Postgres struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS room_records (
	path       text PRIMARY KEY,
	value      jsonb NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
)`

// NewPostgres connects to the database, ensures the schema and returns
// the store.
func NewPostgres(ctx context.Context, dsn string, log *slog.Logger) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	log.Info("postgres store ready")

	return &Postgres{pool: pool, log: log}, nil
}

// Read implements Store
func (p *Postgres) Read(ctx context.Context, path string) (json.RawMessage, error) {
	const q = `SELECT value FROM room_records WHERE path = $1`

	var raw json.RawMessage
	if err := p.pool.QueryRow(ctx, q, path).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return raw, nil
}

// Write implements Store
func (p *Postgres) Write(ctx context.Context, path string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", path, err)
	}

	const q = `
		INSERT INTO room_records (path, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (path) DO UPDATE SET value = $2, updated_at = now()`

	if _, err := p.pool.Exec(ctx, q, path, data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Delete implements Store
func (p *Postgres) Delete(ctx context.Context, path string) error {
	const q = `DELETE FROM room_records WHERE path = $1`

	if _, err := p.pool.Exec(ctx, q, path); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

// List implements Store
func (p *Postgres) List(ctx context.Context, prefix string) (map[string]json.RawMessage, error) {
	const q = `SELECT path, value FROM room_records WHERE path LIKE $1`

	rows, err := p.pool.Query(ctx, q, prefix+"/%")
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}
	defer rows.Close()

	out := make(map[string]json.RawMessage)
	for rows.Next() {
		var path string
		var raw json.RawMessage
		if err := rows.Scan(&path, &raw); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rest := strings.TrimPrefix(path, prefix+"/")
		if strings.Contains(rest, "/") {
			continue // only direct children
		}
		out[rest] = raw
	}
	return out, rows.Err()
}

// Close implements Store
func (p *Postgres) Close() {
	p.pool.Close()
	p.log.Info("postgres store closed")
}
