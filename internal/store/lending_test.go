package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/izposoja/internal/db"
	"github.com/erazemk/izposoja/internal/model"
)

func TestTransitionWritesItemAndLog(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, database, "sato", "")
	item := createTestItem(t, database, "Monitor", "MON-01")
	due := model.Date{Year: 2026, Month: time.October, Day: 22}

	got := borrowDirect(t, database, item.ID, user.ID, due)
	assert.Equal(t, model.ItemStatusBorrowed, got.Status)
	require.NotNil(t, got.OwnerID)
	assert.Equal(t, user.ID, *got.OwnerID)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, due, *got.DueDate)

	logs, err := GetItemHistory(ctx, database, item.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.ActionBorrow, logs[0].Action)
	assert.Equal(t, user.ID, logs[0].UserID)
	assert.Equal(t, "sato", logs[0].Username)
	assert.Equal(t, "Monitor", logs[0].ItemName)
}

func TestTransitionPassesMissingRowsAsNil(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := createTestItem(t, database, "Monitor", "MON-01")
	errMissing := errors.New("missing")

	l := &Lending{DB: database}
	var sawItem, sawUser bool
	_, err := l.Transition(ctx, item.ID, 42, func(i *model.Item, u *model.User) (string, error) {
		sawItem = i != nil
		sawUser = u != nil
		return "", errMissing
	})
	assert.ErrorIs(t, err, errMissing)
	assert.True(t, sawItem)
	assert.False(t, sawUser)

	// Soft-deleted items count as missing.
	_, err = DeleteItem(ctx, database, item.ID)
	require.NoError(t, err)
	user := createTestUser(t, database, "sato", "")
	_, err = l.Transition(ctx, item.ID, user.ID, func(i *model.Item, u *model.User) (string, error) {
		sawItem = i != nil
		return "", errMissing
	})
	assert.ErrorIs(t, err, errMissing)
	assert.False(t, sawItem)
}

func TestTransitionRejectedWritesNothing(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, database, "sato", "")
	item := createTestItem(t, database, "Monitor", "MON-01")
	errRefused := errors.New("refused")

	l := &Lending{DB: database}
	_, err := l.Transition(ctx, item.ID, user.ID, func(i *model.Item, _ *model.User) (string, error) {
		// Mutations made before the refusal must not be persisted.
		i.Status = model.ItemStatusBorrowed
		return "", errRefused
	})
	assert.ErrorIs(t, err, errRefused)

	got, err := GetItem(ctx, database, item.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ItemStatusAvailable, got.Status)

	logs, err := GetItemHistory(ctx, database, item.ID)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestTransitionInconsistentItemRejectedByDatabase(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, database, "sato", "")
	item := createTestItem(t, database, "Monitor", "MON-01")

	l := &Lending{DB: database}
	_, err := l.Transition(ctx, item.ID, user.ID, func(i *model.Item, _ *model.User) (string, error) {
		i.Status = model.ItemStatusBorrowed // no owner, no due date
		return model.ActionBorrow, nil
	})
	assert.Error(t, err)

	logs, err := GetItemHistory(ctx, database, item.ID)
	require.NoError(t, err)
	assert.Empty(t, logs)
}
