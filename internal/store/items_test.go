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

func TestCreateAndGetItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, err := CreateItem(ctx, database, ItemFields{
		Name:           "MacBook Pro M3",
		ManagementCode: "PC-001",
		Category:       "PC",
		IsFixedAsset:   true,
		Accessories:    []string{"charger", "USB-C hub"},
	})
	require.NoError(t, err)
	assert.Equal(t, "MacBook Pro M3", item.Name)
	assert.Equal(t, model.ItemStatusAvailable, item.Status)
	assert.True(t, item.IsFixedAsset)
	assert.Equal(t, []string{"charger", "USB-C hub"}, item.Accessories)
	assert.Nil(t, item.OwnerID)
	assert.Nil(t, item.DueDate)

	got, err := GetItemByCode(ctx, database, "PC-001")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, item.ID, got.ID)

	missing, err := GetItem(ctx, database, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCreateItemDuplicateCode(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	createTestItem(t, database, "Monitor", "MON-01")
	_, err := CreateItem(ctx, database, ItemFields{Name: "Other monitor", ManagementCode: "MON-01"})
	assert.Error(t, err)
}

func TestListItemsByStatus(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	createTestItem(t, database, "Available Item", "A-1")
	broken := createTestItem(t, database, "Broken Item", "B-1")
	ok, err := SetItemStatus(ctx, database, broken.ID, model.ItemStatusBroken)
	require.NoError(t, err)
	assert.True(t, ok)

	all, err := ListItems(ctx, database, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	available, err := ListItems(ctx, database, model.ItemStatusAvailable)
	require.NoError(t, err)
	assert.Len(t, available, 1)
}

func TestSetItemStatusRejectsBorrowed(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, database, "sato", "")
	item := createTestItem(t, database, "Projector", "PRJ-1")
	borrowDirect(t, database, item.ID, user.ID, model.DateOf(time.Now()))

	ok, err := SetItemStatus(ctx, database, item.ID, model.ItemStatusBroken)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = SetItemStatus(ctx, database, item.ID, model.ItemStatusBorrowed)
	assert.Error(t, err)
}

func TestUpdateItemKeepsLendingFields(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, database, "sato", "")
	item := createTestItem(t, database, "Camera", "CAM-1")
	due := model.Date{Year: 2026, Month: time.November, Day: 1}
	borrowDirect(t, database, item.ID, user.ID, due)

	require.NoError(t, UpdateItem(ctx, database, item.ID, ItemFields{
		Name:           "Camera body",
		ManagementCode: "CAM-1",
		Accessories:    []string{"strap"},
	}))

	got, err := GetItem(ctx, database, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Camera body", got.Name)
	assert.Equal(t, model.ItemStatusBorrowed, got.Status)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, due, *got.DueDate)
}

func TestSoftDeleteItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := createTestItem(t, database, "Delete Me", "DEL-1")
	ok, err := DeleteItem(ctx, database, item.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	items, err := ListItems(ctx, database, "")
	require.NoError(t, err)
	assert.Empty(t, items)

	// Should still be fetchable by ID (for history).
	got, err := GetItem(ctx, database, item.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.NotNil(t, got.DeletedAt)

	// The code can be reused once the old item is deleted.
	createTestItem(t, database, "Replacement", "DEL-1")
}

func TestDeleteBorrowedItemRefused(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, database, "sato", "")
	item := createTestItem(t, database, "Laptop", "PC-9")
	borrowDirect(t, database, item.ID, user.ID, model.DateOf(time.Now()))

	ok, err := DeleteItem(ctx, database, item.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestItemImage(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := createTestItem(t, database, "Photo Item", "IMG-1")
	require.NoError(t, SetItemImage(ctx, database, item.ID, []byte("fake image data"), "image/jpeg"))

	data, mime, err := GetItemImage(ctx, database, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "fake image data", string(data))
	assert.Equal(t, "image/jpeg", mime)
}

func TestListItemStatus(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	today := model.Date{Year: 2026, Month: time.October, Day: 15}
	user, err := CreateUser(ctx, database, UserFields{
		Username: "suzuki", DisplayName: "Suzuki Ichiro", Role: model.RoleUser,
	}, "hash")
	require.NoError(t, err)

	late := createTestItem(t, database, "Windows Test PC", "PC-002")
	createTestItem(t, database, "Design Book", "BK-001")
	borrowDirect(t, database, late.ID, user.ID, today.AddDays(-1))

	views, err := ListItemStatus(ctx, database, today)
	require.NoError(t, err)
	require.Len(t, views, 2)

	// Ordered by management code.
	assert.Equal(t, "BK-001", views[0].ManagementCode)
	assert.False(t, views[0].IsOverdue)
	assert.Empty(t, views[0].OwnerName)

	assert.Equal(t, "PC-002", views[1].ManagementCode)
	assert.True(t, views[1].IsOverdue)
	assert.Equal(t, "Suzuki Ichiro", views[1].OwnerName)
}
