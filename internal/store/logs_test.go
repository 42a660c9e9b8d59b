package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/izposoja/internal/db"
	"github.com/erazemk/izposoja/internal/model"
)

func TestListLogsFiltered(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	sato := createTestUser(t, database, "sato", "")
	suzuki := createTestUser(t, database, "suzuki", "")
	pc := createTestItem(t, database, "PC", "PC-001")
	monitor := createTestItem(t, database, "Monitor", "MON-001")
	due := model.DateOf(time.Now()).AddDays(7)

	borrowDirect(t, database, pc.ID, sato.ID, due)
	borrowDirect(t, database, monitor.ID, suzuki.ID, due)

	all, err := ListLogs(ctx, database, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byItem, err := ListLogs(ctx, database, pc.ID, 0)
	require.NoError(t, err)
	require.Len(t, byItem, 1)
	assert.Equal(t, sato.ID, byItem[0].UserID)

	byUser, err := ListLogs(ctx, database, 0, suzuki.ID)
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	assert.Equal(t, monitor.ID, byUser[0].ItemID)
}
