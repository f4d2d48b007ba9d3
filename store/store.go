// Package store persists a sheet's cell formulas to Postgres via pgx's
// connection pool. There is no ORM or query builder here, matching the
// rest of the pack's habit of hand-written SQL over a pgxpool.Pool.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is a Postgres-backed sheet persistence layer.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to Postgres at dsn and ensures the schema exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}
	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS cells (
			sheet      TEXT NOT NULL,
			cell_id    TEXT NOT NULL,
			raw_value  TEXT NOT NULL,
			PRIMARY KEY (sheet, cell_id)
		)
	`)
	if err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// SaveCell upserts a single cell's raw formula/literal text.
func (s *Store) SaveCell(ctx context.Context, sheet, cellID, rawValue string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO cells (sheet, cell_id, raw_value)
		VALUES ($1, $2, $3)
		ON CONFLICT (sheet, cell_id) DO UPDATE SET raw_value = EXCLUDED.raw_value
	`, sheet, cellID, rawValue)
	if err != nil {
		return fmt.Errorf("store: save %s!%s: %w", sheet, cellID, err)
	}
	return nil
}

// LoadSheet returns every stored cell's raw text for sheet, keyed by
// cell ID, so the caller can replay it through Sheet.SetCell to rebuild
// the dependency graph and recompute every Value.
func (s *Store) LoadSheet(ctx context.Context, sheet string) (map[string]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT cell_id, raw_value FROM cells WHERE sheet = $1
	`, sheet)
	if err != nil {
		return nil, fmt.Errorf("store: load %s: %w", sheet, err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("store: scan %s: %w", sheet, err)
		}
		out[id] = raw
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: load %s: %w", sheet, err)
	}
	return out, nil
}

// DeleteSheet removes every stored cell for sheet.
func (s *Store) DeleteSheet(ctx context.Context, sheet string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM cells WHERE sheet = $1`, sheet)
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", sheet, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() { s.pool.Close() }
