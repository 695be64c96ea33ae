package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultTable is the table name used when none is configured.
const DefaultTable = "finspect_kv"

// Postgres is a KV backed by a single PostgreSQL table.
type Postgres struct {
	pool  *pgxpool.Pool
	table string
}

// OpenPostgres connects to url and creates the table if it is missing.
func OpenPostgres(ctx context.Context, url, table string) (*Postgres, error) {
	if url == "" {
		return nil, errors.New("postgres url not set (DATABASE_URL)")
	}
	if table == "" {
		table = DefaultTable
	}
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	p := &Postgres{pool: pool, table: pgx.Identifier{table}.Sanitize()}
	if err := p.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) migrate(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS `+p.table+` (
		key        TEXT PRIMARY KEY,
		value      BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	if err != nil {
		return fmt.Errorf("creating table %s: %w", p.table, err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	var v []byte
	err := p.pool.QueryRow(ctx, `SELECT value FROM `+p.table+` WHERE key = $1`, key).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return v, nil
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (p *Postgres) upsert(ctx context.Context, db execer, key string, value []byte) error {
	_, err := db.Exec(ctx, `INSERT INTO `+p.table+` (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`, key, value)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func (p *Postgres) Put(ctx context.Context, key string, value []byte) error {
	return p.upsert(ctx, p.pool, key, value)
}

func (p *Postgres) List(ctx context.Context, prefix string) ([]Entry, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT key, value FROM `+p.table+` WHERE starts_with(key, $1) ORDER BY key COLLATE "C"`, prefix)
	if err != nil {
		return nil, fmt.Errorf("listing %q: %w", prefix, err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Entry, error) {
		var e Entry
		err := row.Scan(&e.Key, &e.Value)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("listing %q: %w", prefix, err)
	}
	return out, nil
}

// Update serializes writers of key with a transaction-scoped advisory lock,
// so a missing row cannot be created twice.
func (p *Postgres) Update(ctx context.Context, key string, fn UpdateFunc) error {
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
			return fmt.Errorf("locking %s: %w", key, err)
		}
		var old []byte
		exists := true
		err := tx.QueryRow(ctx, `SELECT value FROM `+p.table+` WHERE key = $1`, key).Scan(&old)
		if errors.Is(err, pgx.ErrNoRows) {
			exists = false
		} else if err != nil {
			return fmt.Errorf("reading %s: %w", key, err)
		}
		v, err := fn(old, exists)
		if err != nil {
			return err
		}
		return p.upsert(ctx, tx, key, v)
	})
}

func (p *Postgres) Delete(ctx context.Context, key string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM `+p.table+` WHERE key = $1`, key); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
