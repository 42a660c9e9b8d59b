package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erazemk/izposoja/internal/model"
)

func createTestUser(t *testing.T, database *sql.DB, username, email string) *model.User {
	t.Helper()
	user, err := CreateUser(context.Background(), database, UserFields{
		Username: username,
		Email:    email,
		Role:     model.RoleUser,
	}, "hash")
	require.NoError(t, err)
	return user
}

func createTestItem(t *testing.T, database *sql.DB, name, code string) *model.Item {
	t.Helper()
	item, err := CreateItem(context.Background(), database, ItemFields{Name: name, ManagementCode: code})
	require.NoError(t, err)
	return item
}

// borrowDirect borrows an item through a transition without any validation.
func borrowDirect(t *testing.T, database *sql.DB, itemID, userID int64, due model.Date) *model.Item {
	t.Helper()
	l := &Lending{DB: database}
	item, err := l.Transition(context.Background(), itemID, userID, func(item *model.Item, _ *model.User) (string, error) {
		item.Status = model.ItemStatusBorrowed
		item.OwnerID = &userID
		item.DueDate = &due
		return model.ActionBorrow, nil
	})
	require.NoError(t, err)
	return item
}
