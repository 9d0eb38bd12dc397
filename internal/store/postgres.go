package store

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
)

// PostgresStore keeps the posted-links set in a table. Useful when the bot
// runs on a host without a persistent filesystem.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Load ensures the schema exists. Rows are queried on demand; nothing is
// cached in memory.
func (ps *PostgresStore) Load() error {
	_, err := ps.db.Exec(`
		CREATE TABLE IF NOT EXISTS posted_links (
			url TEXT PRIMARY KEY,
			posted_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("create posted_links table: %w", err)
	}
	return nil
}

// Save is a no-op: every Add is already durable.
func (ps *PostgresStore) Save() error {
	return nil
}

func (ps *PostgresStore) Contains(url string) bool {
	var exists bool
	err := ps.db.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM posted_links WHERE url = $1)`, url).Scan(&exists)
	if err != nil {
		slog.Error("posted_links lookup failed", "url", url, "error", err)
		return false
	}
	return exists
}

func (ps *PostgresStore) Add(url string) error {
	_, err := ps.db.Exec(
		`INSERT INTO posted_links (url) VALUES ($1) ON CONFLICT (url) DO NOTHING`, url)
	if err != nil {
		return fmt.Errorf("insert posted link: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
