package leads

import (
	"context"
	"fmt"
	"strings"
)

type Config struct {
	// Backend is auto, memory, postgres or sqlite.
	Backend     string
	DatabaseURL string
	SQLitePath  string
}

// NewStore resolves the configured backend. auto picks postgres when a
// database URL is set, then sqlite when a path is set, then memory.
func NewStore(ctx context.Context, cfg Config) (Store, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" || backend == "auto" {
		switch {
		case strings.TrimSpace(cfg.DatabaseURL) != "":
			backend = "postgres"
		case strings.TrimSpace(cfg.SQLitePath) != "":
			backend = "sqlite"
		default:
			backend = "memory"
		}
	}

	switch backend {
	case "memory":
		return NewInMemoryStore(), nil
	case "postgres":
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for postgres lead store")
		}
		return NewPostgresStore(ctx, cfg.DatabaseURL)
	case "sqlite":
		if strings.TrimSpace(cfg.SQLitePath) == "" {
			return nil, fmt.Errorf("LEAD_SQLITE_PATH is required for sqlite lead store")
		}
		return NewSQLiteStore(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported lead store %q", cfg.Backend)
	}
}
