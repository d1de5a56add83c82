package leads

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists leads in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serializes writers and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if err := migrateSQLite(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func migrateSQLite(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS leads (
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
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_leads_created ON leads(created_at);
`)
	if err != nil {
		return fmt.Errorf("migrate sqlite: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, r Record) (string, error) {
	r, err := prepare(r)
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO leads(id, reference, name, email, phone, property_interest, budget, timeline, message, bedrooms, location, source, status, created_at)
		 VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		r.ID, r.Reference, r.Name, r.Email, r.Phone, r.PropertyInterest, r.Budget,
		r.Timeline, r.Message, r.Bedrooms, r.Location, r.Source, r.Status,
		r.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("save lead: %w", err)
	}
	return r.Reference, nil
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, reference, name, email, phone, property_interest, budget, timeline, message, bedrooms, location, source, status, created_at
		 FROM leads ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r       Record
			created string
		)
		if err := rows.Scan(&r.ID, &r.Reference, &r.Name, &r.Email, &r.Phone, &r.PropertyInterest, &r.Budget,
			&r.Timeline, &r.Message, &r.Bedrooms, &r.Location, &r.Source, &r.Status, &created); err != nil {
			return nil, fmt.Errorf("scan lead row: %w", err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lead rows: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
