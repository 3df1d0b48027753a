package dedupe

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/vcarciu/vesti-bune/internal/logger"
)

// PostgresHistory keeps seen articles in a Postgres table, for setups
// where runs happen on ephemeral CI workers and a JSON file in the
// repo checkout is not durable enough.
type PostgresHistory struct {
	db  *sql.DB
	ttl time.Duration
}

func NewPostgresHistory(dsn string, ttlHours int) (*PostgresHistory, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	ph := &PostgresHistory{
		db:  db,
		ttl: time.Duration(ttlHours) * time.Hour,
	}
	if err := ph.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return ph, nil
}

func (ph *PostgresHistory) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS seen_articles (
		id SERIAL PRIMARY KEY,
		key VARCHAR(64) UNIQUE NOT NULL,
		title TEXT NOT NULL,
		link TEXT NOT NULL,
		section VARCHAR(50),
		source VARCHAR(100),
		seen_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_seen_articles_key ON seen_articles(key);
	CREATE INDEX IF NOT EXISTS idx_seen_articles_seen_at ON seen_articles(seen_at);
	`

	if _, err := ph.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (ph *PostgresHistory) Seen(key string) bool {
	cutoff := time.Now().Add(-ph.ttl)

	var count int
	err := ph.db.QueryRow(
		`SELECT COUNT(*) FROM seen_articles WHERE key = $1 AND seen_at > $2`,
		key, cutoff,
	).Scan(&count)
	if err != nil {
		logger.Warn("history lookup failed", "error", err)
		return false
	}
	return count > 0
}

func (ph *PostgresHistory) Mark(key, title, link, section, source string) error {
	// INSERT ON CONFLICT keeps concurrent runs from racing each other.
	query := `
		INSERT INTO seen_articles (key, title, link, section, source, seen_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (key) DO UPDATE SET seen_at = NOW()
	`
	if _, err := ph.db.Exec(query, key, title, link, section, source); err != nil {
		return fmt.Errorf("mark seen: %w", err)
	}
	return nil
}

// Cleanup deletes expired rows.
func (ph *PostgresHistory) Cleanup() error {
	cutoff := time.Now().Add(-ph.ttl)
	result, err := ph.db.Exec(`DELETE FROM seen_articles WHERE seen_at < $1`, cutoff)
	if err != nil {
		return fmt.Errorf("cleanup history: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows > 0 {
		logger.Info("history cleanup", "removed", rows)
	}
	return nil
}

func (ph *PostgresHistory) Close() error {
	if err := ph.Cleanup(); err != nil {
		logger.Warn("history cleanup on close failed", "error", err)
	}
	return ph.db.Close()
}
