// internal/db/db.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// schema bootstraps the single-file store shared by the server and worker
// processes. Snapshot fields are JSON text columns; all absolute times are
// canonical UTC strings so they compare correctly as TEXT.
const schema = `
CREATE TABLE IF NOT EXISTS profiles (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL DEFAULT '',
    profession TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS templates (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    subject TEXT NOT NULL DEFAULT '',
    body TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS user_profile (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    name TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL DEFAULT '',
    title TEXT NOT NULL DEFAULT '',
    profession TEXT NOT NULL DEFAULT '',
    signature TEXT NOT NULL DEFAULT '',
    social_links TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS campaigns (
    id TEXT PRIMARY KEY,
    subject TEXT NOT NULL,
    body TEXT NOT NULL,
    body_is_html INTEGER NOT NULL DEFAULT 0,
    recipients TEXT NOT NULL DEFAULT '[]',
    sender_profile TEXT NOT NULL DEFAULT '{}',
    attachments TEXT NOT NULL DEFAULT '[]',
    add_signature INTEGER NOT NULL DEFAULT 1,
    status TEXT NOT NULL,
    schedule_time TEXT NOT NULL,
    sent_time TEXT,
    reminder_date TEXT,
    total INTEGER NOT NULL DEFAULT 0,
    pending INTEGER NOT NULL DEFAULT 0,
    sent INTEGER NOT NULL DEFAULT 0,
    failed INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS deliveries (
    id TEXT PRIMARY KEY,
    campaign_id TEXT NOT NULL REFERENCES campaigns(id),
    recipient_id TEXT NOT NULL DEFAULT '',
    recipient_email TEXT NOT NULL DEFAULT '',
    recipient_snapshot TEXT,
    status TEXT NOT NULL DEFAULT 'pending',
    error TEXT,
    schedule_time TEXT NOT NULL,
    sent_time TEXT,
    last_attempt TEXT,
    rendered_body TEXT,
    attempt_count INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_deliveries_due ON deliveries(status, schedule_time);
CREATE INDEX IF NOT EXISTS idx_deliveries_campaign ON deliveries(campaign_id);
`

// Open opens (creating if needed) the sqlite store at path and bootstraps
// the schema. busy_timeout makes write-lock acquisition block instead of
// failing when the other process holds the file, which is the advisory
// lock discipline between the server and the worker.
//
// _txlock=immediate makes every transaction take the write lock at Begin.
// A deferred transaction that reads before its first write would try to
// upgrade its read snapshot instead, and busy_timeout does not apply to
// that upgrade: a commit from the other process in the gap fails the
// transaction instantly with SQLITE_BUSY.
func Open(path string, busyTimeout time.Duration) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	d, err := sql.Open("sqlite", "file:"+path+"?_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	// One connection per process keeps every logical operation serialized.
	d.SetMaxOpenConns(1)
	d.SetMaxIdleConns(1)

	if busyTimeout > 0 {
		if _, err := d.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeout.Milliseconds())); err != nil {
			_ = d.Close()
			return nil, fmt.Errorf("set busy_timeout: %w", err)
		}
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := d.Exec(pragma); err != nil {
			_ = d.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if _, err := d.Exec(schema); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}
	return d, nil
}

// Refresh verifies the store handle before a poll cycle so writes committed
// by the other process are observed. Caller treats an error as "skip this
// cycle and retry on the next one".
func Refresh(ctx context.Context, d *sql.DB) error {
	return d.PingContext(ctx)
}
