package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/izposoja/internal/model"
)

// Lending applies borrow and return transitions to the items table.
type Lending struct {
	DB *sql.DB
}

// Transition runs one lending transition in a single write transaction.
//
// The item and the acting user are read inside the transaction and handed to
// apply; either is nil when the row does not exist (soft-deleted items count
// as missing). apply validates the transition, mutates the item in place and
// returns the log action to record. When apply fails nothing is written and
// its error is returned unchanged.
func (l *Lending) Transition(ctx context.Context, itemID, userID int64,
	apply func(item *model.Item, user *model.User) (string, error),
) (*model.Item, error) {
	tx, err := l.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	item, err := getItem(ctx, tx, itemID)
	if err != nil {
		return nil, err
	}
	if item != nil && item.DeletedAt != nil {
		item = nil
	}

	user, err := getUser(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	var previous string
	if item != nil {
		previous = item.Status
	}

	action, err := apply(item, user)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("transition accepted a missing item %d", itemID)
	}

	// The status guard makes the write a compare-and-set on the row.
	result, err := tx.ExecContext(ctx,
		`UPDATE items SET status = ?, owner_id = ?, due_date = ?, lending_reason = ?,
		        lending_location = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		item.Status, item.OwnerID, item.DueDate, nullString(item.LendingReason),
		nullString(item.LendingLocation), item.ID, previous,
	)
	if err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}
	if n != 1 {
		return nil, fmt.Errorf("item %d changed during transition", item.ID)
	}

	if err := appendLog(ctx, tx, item.ID, userID, action); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transition: %w", err)
	}

	return GetItem(ctx, l.DB, item.ID)
}
