package leads

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists leads in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := initPostgresSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

func initPostgresSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS leads (
			id TEXT PRIMARY KEY,
			reference TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			phone TEXT NOT NULL,
			property_interest TEXT NOT NULL DEFAULT '',
			budget TEXT NOT NULL DEFAULT '',
			timeline TEXT NOT NULL DEFAULT '',
			message TEXT NOT NULL DEFAULT '',
			bedrooms INTEGER NOT NULL DEFAULT 0,
			location TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_leads_created ON leads (created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, r Record) (string, error) {
	r, err := prepare(r)
	if err != nil {
		return "", err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO leads (id, reference, name, email, phone, property_interest, budget, timeline, message, bedrooms, location, source, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		r.ID, r.Reference, r.Name, r.Email, r.Phone, r.PropertyInterest, r.Budget,
		r.Timeline, r.Message, r.Bedrooms, r.Location, r.Source, r.Status, r.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("save lead: %w", err)
	}
	return r.Reference, nil
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, reference, name, email, phone, property_interest, budget, timeline, message, bedrooms, location, source, status, created_at
		 FROM leads ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}
	defer rows.Close()

	out := make([]Record, 0, limit)
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Reference, &r.Name, &r.Email, &r.Phone, &r.PropertyInterest, &r.Budget,
			&r.Timeline, &r.Message, &r.Bedrooms, &r.Location, &r.Source, &r.Status, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan lead row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lead rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
