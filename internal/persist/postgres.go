package persist

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps one row per (client, key) pair. Values are stored as
// TEXT rather than JSONB so unreadable payloads surface as decode misses
// instead of write failures.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	s := &PostgresStore{pool: pool}
	if err := s.Init(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS chatbot_storage (
			client_id TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (client_id, key)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, clientID string) (Values, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT key, value FROM chatbot_storage WHERE client_id=$1`,
		clientID,
	)
	if err != nil {
		return nil, fmt.Errorf("query session storage: %w", err)
	}
	defer rows.Close()

	values := Values{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan session storage row: %w", err)
		}
		values[key] = json.RawMessage(value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session storage rows: %w", err)
	}
	return values, nil
}

func (s *PostgresStore) Save(ctx context.Context, clientID string, values Values) error {
	if len(values) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for key, value := range values {
		batch.Queue(
			`INSERT INTO chatbot_storage (client_id, key, value, updated_at)
			 VALUES ($1, $2, $3, now())
			 ON CONFLICT (client_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
			clientID, key, string(value),
		)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("save session storage: %w", err)
	}
	return nil
}

func (s *PostgresStore) Clear(ctx context.Context, clientID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM chatbot_storage WHERE client_id=$1`, clientID); err != nil {
		return fmt.Errorf("clear session storage: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
