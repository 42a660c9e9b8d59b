package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/erazemk/izposoja/internal/model"
)

// GetJWTSecret retrieves the JWT secret from the database.
// If no secret exists, it generates one, stores it, and returns it.
// Uses INSERT OR IGNORE + re-SELECT to avoid TOCTOU race on concurrent startup.
func GetJWTSecret(ctx context.Context, db *sql.DB) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	candidate := hex.EncodeToString(buf)

	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES ('jwt_secret', ?)`,
		candidate,
	)
	if err != nil {
		return "", fmt.Errorf("storing jwt_secret: %w", err)
	}

	// Always read back (either our insert or the existing value).
	var secret string
	err = db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = 'jwt_secret'`,
	).Scan(&secret)
	if err != nil {
		return "", fmt.Errorf("querying jwt_secret: %w", err)
	}

	return secret, nil
}

// EnsureNotificationSettings creates the settings row with defaults if it is missing.
func EnsureNotificationSettings(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `INSERT OR IGNORE INTO notification_settings (id) VALUES (1)`)
	if err != nil {
		return fmt.Errorf("creating notification settings: %w", err)
	}
	return nil
}

// GetNotificationSettings returns the notification settings, or nil if they
// were never created.
func GetNotificationSettings(ctx context.Context, db *sql.DB) (*model.NotificationSettings, error) {
	s := &model.NotificationSettings{}
	err := db.QueryRowContext(ctx,
		`SELECT n_days_before, m_days_overdue, smtp_server, smtp_port, smtp_username,
		        smtp_password, sender_email
		 FROM notification_settings WHERE id = 1`,
	).Scan(&s.NDaysBefore, &s.MDaysOverdue, &s.SMTPServer, &s.SMTPPort, &s.SMTPUsername,
		&s.SMTPPassword, &s.SenderEmail)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting notification settings: %w", err)
	}
	return s, nil
}

// SaveNotificationSettings creates or replaces the notification settings.
func SaveNotificationSettings(ctx context.Context, db *sql.DB, s model.NotificationSettings) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO notification_settings
		     (id, n_days_before, m_days_overdue, smtp_server, smtp_port, smtp_username, smtp_password, sender_email)
		 VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		     n_days_before = excluded.n_days_before,
		     m_days_overdue = excluded.m_days_overdue,
		     smtp_server = excluded.smtp_server,
		     smtp_port = excluded.smtp_port,
		     smtp_username = excluded.smtp_username,
		     smtp_password = excluded.smtp_password,
		     sender_email = excluded.sender_email`,
		s.NDaysBefore, s.MDaysOverdue, s.SMTPServer, s.SMTPPort, s.SMTPUsername,
		s.SMTPPassword, s.SenderEmail,
	)
	if err != nil {
		return fmt.Errorf("saving notification settings: %w", err)
	}
	return nil
}
