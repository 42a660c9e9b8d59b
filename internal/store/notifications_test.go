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

func TestListBorrowedWithDueDate(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	today := model.Date{Year: 2026, Month: time.October, Day: 15}
	user, err := CreateUser(ctx, database, UserFields{
		Username: "sato", DisplayName: "Sato Ken", Email: "sato@example.com", Role: model.RoleUser,
	}, "hash")
	require.NoError(t, err)

	borrowed := createTestItem(t, database, "MacBook Pro M3", "PC-001")
	createTestItem(t, database, "USB-C Monitor", "MON-001")
	borrowDirect(t, database, borrowed.ID, user.ID, today.AddDays(3))

	items, err := ListBorrowedWithDueDate(ctx, database)
	require.NoError(t, err)
	require.Len(t, items, 1)

	b := items[0]
	assert.Equal(t, borrowed.ID, b.ItemID)
	assert.Equal(t, "MacBook Pro M3", b.ItemName)
	assert.Equal(t, today.AddDays(3), b.DueDate)
	assert.Equal(t, user.ID, b.OwnerID)
	assert.Equal(t, "sato", b.OwnerUsername)
	assert.Equal(t, "Sato Ken", b.OwnerName)
	assert.Equal(t, "sato@example.com", b.OwnerEmail)
}

func TestNotificationRecords(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := createTestItem(t, database, "Monitor", "MON-01")
	day := model.Date{Year: 2026, Month: time.October, Day: 15}
	due := day.AddDays(3)

	sent, err := WasNotified(ctx, database, item.ID, model.TemplateReminderBefore, due, day)
	require.NoError(t, err)
	assert.False(t, sent)

	claimed, err := ClaimNotification(ctx, database, item.ID, model.TemplateReminderBefore, due, day)
	require.NoError(t, err)
	assert.True(t, claimed)
	// Only the first claim wins.
	claimed, err = ClaimNotification(ctx, database, item.ID, model.TemplateReminderBefore, due, day)
	require.NoError(t, err)
	assert.False(t, claimed)

	sent, err = WasNotified(ctx, database, item.ID, model.TemplateReminderBefore, due, day)
	require.NoError(t, err)
	assert.True(t, sent)

	// Other days, templates and due dates are independent.
	sent, err = WasNotified(ctx, database, item.ID, model.TemplateReminderBefore, due, day.AddDays(1))
	require.NoError(t, err)
	assert.False(t, sent)

	sent, err = WasNotified(ctx, database, item.ID, model.TemplateDueDate, due, day)
	require.NoError(t, err)
	assert.False(t, sent)

	sent, err = WasNotified(ctx, database, item.ID, model.TemplateReminderBefore, due.AddDays(7), day)
	require.NoError(t, err)
	assert.False(t, sent)
}

func TestReleaseNotification(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := createTestItem(t, database, "Monitor", "MON-01")
	day := model.Date{Year: 2026, Month: time.October, Day: 15}

	claimed, err := ClaimNotification(ctx, database, item.ID, model.TemplateDueDate, day, day)
	require.NoError(t, err)
	require.True(t, claimed)

	require.NoError(t, ReleaseNotification(ctx, database, item.ID, model.TemplateDueDate, day, day))

	sent, err := WasNotified(ctx, database, item.ID, model.TemplateDueDate, day, day)
	require.NoError(t, err)
	assert.False(t, sent)

	claimed, err = ClaimNotification(ctx, database, item.ID, model.TemplateDueDate, day, day)
	require.NoError(t, err)
	assert.True(t, claimed, "released claim can be taken again")

	// Releasing a claim that does not exist is not an error.
	require.NoError(t, ReleaseNotification(ctx, database, item.ID, model.TemplateReminderBefore, day, day))
}
