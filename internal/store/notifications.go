package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/izposoja/internal/model"
)

// ListBorrowedWithDueDate returns every borrowed item that has a due date,
// joined with its borrower. Borrower fields are empty if the user row is gone.
func ListBorrowedWithDueDate(ctx context.Context, db *sql.DB) ([]model.BorrowedItem, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT i.id, i.name, i.due_date, i.owner_id,
		        COALESCE(u.username, ''), COALESCE(u.display_name, ''), COALESCE(u.email, '')
		 FROM items i
		 LEFT JOIN users u ON u.id = i.owner_id
		 WHERE i.status = 'borrowed' AND i.due_date IS NOT NULL AND i.deleted_at IS NULL
		 ORDER BY i.due_date, i.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing borrowed items: %w", err)
	}
	defer rows.Close()

	var items []model.BorrowedItem
	for rows.Next() {
		var b model.BorrowedItem
		var ownerID sql.NullInt64
		if err := rows.Scan(&b.ItemID, &b.ItemName, &b.DueDate, &ownerID,
			&b.OwnerUsername, &b.OwnerName, &b.OwnerEmail); err != nil {
			return nil, fmt.Errorf("scanning borrowed item: %w", err)
		}
		b.OwnerID = ownerID.Int64
		items = append(items, b)
	}
	return items, rows.Err()
}

// WasNotified reports whether the template was already sent for the item's
// due date on the given day.
func WasNotified(ctx context.Context, db *sql.DB, itemID int64, template string, due, day model.Date) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications_sent
		 WHERE item_id = ? AND template = ? AND due_date = ? AND sent_on = ?`,
		itemID, template, due, day,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking notification record: %w", err)
	}
	return count > 0, nil
}

// ClaimNotification reserves the template for the item on the given day.
// It reports false if another sweep already holds or completed the claim.
func ClaimNotification(ctx context.Context, db *sql.DB, itemID int64, template string, due, day model.Date) (bool, error) {
	res, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO notifications_sent (item_id, template, due_date, sent_on)
		 VALUES (?, ?, ?, ?)`,
		itemID, template, due, day,
	)
	if err != nil {
		return false, fmt.Errorf("claiming notification: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claiming notification: %w", err)
	}
	return n == 1, nil
}

// ReleaseNotification drops a claim whose e-mail was not delivered, so a
// later sweep on the same day can try again.
func ReleaseNotification(ctx context.Context, db *sql.DB, itemID int64, template string, due, day model.Date) error {
	_, err := db.ExecContext(ctx,
		`DELETE FROM notifications_sent
		 WHERE item_id = ? AND template = ? AND due_date = ? AND sent_on = ?`,
		itemID, template, due, day,
	)
	if err != nil {
		return fmt.Errorf("releasing notification: %w", err)
	}
	return nil
}

// Notifications exposes the notification queries to the sweep.
type Notifications struct {
	DB *sql.DB
}

func (n *Notifications) GetNotificationSettings(ctx context.Context) (*model.NotificationSettings, error) {
	return GetNotificationSettings(ctx, n.DB)
}

func (n *Notifications) ListBorrowedWithDueDate(ctx context.Context) ([]model.BorrowedItem, error) {
	return ListBorrowedWithDueDate(ctx, n.DB)
}

func (n *Notifications) GetTemplate(ctx context.Context, name string) (*model.EmailTemplate, error) {
	return GetTemplate(ctx, n.DB, name)
}

func (n *Notifications) WasNotified(ctx context.Context, itemID int64, template string, due, day model.Date) (bool, error) {
	return WasNotified(ctx, n.DB, itemID, template, due, day)
}

func (n *Notifications) ClaimNotification(ctx context.Context, itemID int64, template string, due, day model.Date) (bool, error) {
	return ClaimNotification(ctx, n.DB, itemID, template, due, day)
}

func (n *Notifications) ReleaseNotification(ctx context.Context, itemID int64, template string, due, day model.Date) error {
	return ReleaseNotification(ctx, n.DB, itemID, template, due, day)
}
