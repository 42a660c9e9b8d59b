package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/izposoja/internal/db"
)

func TestRevokeAndCheckToken(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	revoked, err := IsTokenRevoked(ctx, database, "session-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, RevokeToken(ctx, database, "session-1", time.Now().Add(time.Hour)))

	revoked, err = IsTokenRevoked(ctx, database, "session-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = IsTokenRevoked(ctx, database, "session-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	// Logging out twice with the same token is harmless.
	require.NoError(t, RevokeToken(ctx, database, "session-1", time.Now().Add(time.Hour)))
}

func TestRevokeTokenPurgesExpired(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, err := database.Exec(`INSERT INTO revoked_tokens (jti, expires_at) VALUES (?, ?)`,
		"stale", time.Now().Add(-48*time.Hour).UTC())
	require.NoError(t, err)

	require.NoError(t, RevokeToken(ctx, database, "fresh", time.Now().Add(time.Hour)))

	stale, err := IsTokenRevoked(ctx, database, "stale")
	require.NoError(t, err)
	assert.False(t, stale)

	fresh, err := IsTokenRevoked(ctx, database, "fresh")
	require.NoError(t, err)
	assert.True(t, fresh)
}

func TestPurgeExpiredTokens(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, time.October, 15, 8, 0, 0, 0, time.UTC)

	_, err := database.Exec(`INSERT INTO revoked_tokens (jti, expires_at) VALUES (?, ?), (?, ?)`,
		"yesterday", now.Add(-24*time.Hour), "tomorrow", now.Add(24*time.Hour))
	require.NoError(t, err)

	n, err := PurgeExpiredTokens(ctx, database, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = PurgeExpiredTokens(ctx, database, now)
	require.NoError(t, err)
	assert.Zero(t, n)

	revoked, err := IsTokenRevoked(ctx, database, "tomorrow")
	require.NoError(t, err)
	assert.True(t, revoked)
}
