package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// RevokeToken puts a session token's JTI on the deny list until it expires.
// Entries that already expired are purged on the way.
func RevokeToken(ctx context.Context, db *sql.DB, jti string, expiresAt time.Time) error {
	if _, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO revoked_tokens (jti, expires_at) VALUES (?, ?)`,
		jti, expiresAt.UTC(),
	); err != nil {
		return fmt.Errorf("revoking token %s: %w", jti, err)
	}

	if n, err := PurgeExpiredTokens(ctx, db, time.Now()); err != nil {
		slog.Debug("purging expired tokens", "error", err)
	} else if n > 0 {
		slog.Debug("purged expired tokens", "count", n)
	}
	return nil
}

// PurgeExpiredTokens deletes deny list entries that expired before now.
func PurgeExpiredTokens(ctx context.Context, db *sql.DB, now time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM revoked_tokens WHERE expires_at < ?`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("purging expired tokens: %w", err)
	}
	return res.RowsAffected()
}

// IsTokenRevoked reports whether the JTI is on the deny list.
func IsTokenRevoked(ctx context.Context, db *sql.DB, jti string) (bool, error) {
	var revoked bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM revoked_tokens WHERE jti = ?)`, jti,
	).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("checking token %s: %w", jti, err)
	}
	return revoked, nil
}
