package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    display_name  TEXT NOT NULL DEFAULT '',
    employee_id   TEXT UNIQUE,
    email         TEXT UNIQUE,
    department    TEXT,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'user')),
    is_active     INTEGER NOT NULL DEFAULT 1,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS items (
    id               INTEGER PRIMARY KEY,
    name             TEXT NOT NULL,
    management_code  TEXT NOT NULL,
    category         TEXT NOT NULL DEFAULT '',
    is_fixed_asset   INTEGER NOT NULL DEFAULT 0,
    accessories      TEXT NOT NULL DEFAULT '[]',
    status           TEXT NOT NULL DEFAULT 'available' CHECK (status IN ('available', 'borrowed', 'broken')),
    owner_id         INTEGER REFERENCES users(id),
    due_date         TEXT,
    lending_reason   TEXT,
    lending_location TEXT,
    image            BLOB,
    image_mime       TEXT,
    created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at       DATETIME,
    CHECK ((status = 'borrowed') = (owner_id IS NOT NULL)),
    CHECK ((owner_id IS NULL) = (due_date IS NULL))
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_items_code_active
    ON items(management_code) WHERE deleted_at IS NULL;

CREATE INDEX IF NOT EXISTS idx_items_borrowed_due
    ON items(due_date) WHERE status = 'borrowed';

CREATE TABLE IF NOT EXISTS logs (
    id         INTEGER PRIMARY KEY,
    item_id    INTEGER NOT NULL REFERENCES items(id),
    user_id    INTEGER NOT NULL REFERENCES users(id),
    action     TEXT NOT NULL CHECK (action IN ('borrow', 'return')),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_logs_item ON logs(item_id, id);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS notification_settings (
    id             INTEGER PRIMARY KEY CHECK (id = 1),
    n_days_before  INTEGER NOT NULL DEFAULT 3,
    m_days_overdue INTEGER NOT NULL DEFAULT 7,
    smtp_server    TEXT NOT NULL DEFAULT 'smtp.gmail.com',
    smtp_port      INTEGER NOT NULL DEFAULT 587,
    smtp_username  TEXT NOT NULL DEFAULT '',
    smtp_password  TEXT NOT NULL DEFAULT '',
    sender_email   TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS email_templates (
    name    TEXT PRIMARY KEY,
    subject TEXT NOT NULL,
    body    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS notifications_sent (
    item_id  INTEGER NOT NULL REFERENCES items(id),
    template TEXT NOT NULL,
    due_date TEXT NOT NULL,
    sent_on  TEXT NOT NULL,
    PRIMARY KEY (item_id, template, due_date, sent_on)
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
