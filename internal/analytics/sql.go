package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/cookhub/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS access_events (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	slug       TEXT NOT NULL,
	branch     TEXT NOT NULL,
	user_agent TEXT NOT NULL DEFAULT '',
	client_ip  TEXT NOT NULL DEFAULT '',
	request_id TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_access_events_item ON access_events(branch, slug);
CREATE INDEX IF NOT EXISTS idx_access_events_created ON access_events(created_at);
`

const (
	sqliteInsert = `INSERT INTO access_events
		(id, kind, slug, branch, user_agent, client_ip, request_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	postgresInsert = `INSERT INTO access_events
		(id, kind, slug, branch, user_agent, client_ip, request_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
)

// SQLStore writes access events to SQLite or PostgreSQL.
type SQLStore struct {
	conn   *sql.DB
	insert string
}

// OpenSQLite opens (or creates) the SQLite database and applies the schema.
func OpenSQLite(path string) (*SQLStore, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("analytics: open sqlite: %w", err)
	}
	// Writes come from a single recorder goroutine.
	conn.SetMaxOpenConns(1)
	return initStore(context.Background(), conn, sqliteInsert)
}

// OpenPostgres connects to PostgreSQL and applies the schema.
func OpenPostgres(ctx context.Context, url string) (*SQLStore, error) {
	conn, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("analytics: open postgres: %w", err)
	}
	conn.SetMaxOpenConns(5)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(5 * time.Minute)
	return initStore(ctx, conn, postgresInsert)
}

func initStore(ctx context.Context, conn *sql.DB, insert string) (*SQLStore, error) {
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("analytics: ping: %w", err)
	}
	if _, err := conn.ExecContext(ctx, schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("analytics: apply schema: %w", err)
	}
	return &SQLStore{conn: conn, insert: insert}, nil
}

// Record implements Sink.
func (s *SQLStore) Record(ctx context.Context, ev models.AccessEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	_, err := s.conn.ExecContext(ctx, s.insert,
		ev.ID, string(ev.Kind), ev.Slug, ev.Branch,
		ev.UserAgent, ev.ClientIP, ev.RequestID, ev.Timestamp.UTC())
	if err != nil {
		return fmt.Errorf("analytics: insert event: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLStore) Close() error {
	return s.conn.Close()
}
