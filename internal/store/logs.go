package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/izposoja/internal/model"
)

// appendLog records a lending action. Log rows are never updated or deleted.
func appendLog(ctx context.Context, q querier, itemID, userID int64, action string) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO logs (item_id, user_id, action) VALUES (?, ?, ?)`,
		itemID, userID, action,
	)
	if err != nil {
		return fmt.Errorf("appending log: %w", err)
	}
	return nil
}

// ListLogs returns log entries in the order they were written, optionally
// filtered by item or user.
func ListLogs(ctx context.Context, db *sql.DB, itemID, userID int64) ([]model.LogEntry, error) {
	query := `SELECT l.id, l.item_id, l.user_id, l.action, l.created_at,
	                 i.name AS item_name, u.username
	          FROM logs l
	          JOIN items i ON i.id = l.item_id
	          JOIN users u ON u.id = l.user_id
	          WHERE 1=1`
	var args []any

	if itemID > 0 {
		query += ` AND l.item_id = ?`
		args = append(args, itemID)
	}
	if userID > 0 {
		query += ` AND l.user_id = ?`
		args = append(args, userID)
	}

	query += ` ORDER BY l.id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing logs: %w", err)
	}
	defer rows.Close()

	var entries []model.LogEntry
	for rows.Next() {
		var e model.LogEntry
		if err := rows.Scan(&e.ID, &e.ItemID, &e.UserID, &e.Action, &e.CreatedAt,
			&e.ItemName, &e.Username); err != nil {
			return nil, fmt.Errorf("scanning log entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetItemHistory returns the lending history of an item, oldest first.
func GetItemHistory(ctx context.Context, db *sql.DB, itemID int64) ([]model.LogEntry, error) {
	return ListLogs(ctx, db, itemID, 0)
}
