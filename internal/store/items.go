package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/erazemk/izposoja/internal/model"
)

// ItemFields are the editable metadata of an item.
type ItemFields struct {
	Name           string
	ManagementCode string
	Category       string
	IsFixedAsset   bool
	Accessories    []string
}

const itemColumns = `id, name, management_code, category, is_fixed_asset, accessories, status,
	owner_id, due_date, lending_reason, lending_location, image_mime,
	created_at, updated_at, deleted_at`

// CreateItem creates a new available item.
func CreateItem(ctx context.Context, db *sql.DB, f ItemFields) (*model.Item, error) {
	accessories, err := encodeAccessories(f.Accessories)
	if err != nil {
		return nil, err
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO items (name, management_code, category, is_fixed_asset, accessories)
		 VALUES (?, ?, ?, ?, ?)`,
		f.Name, f.ManagementCode, f.Category, f.IsFixedAsset, accessories,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID, including soft-deleted items.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	return getItem(ctx, db, id)
}

func getItem(ctx context.Context, q querier, id int64) (*model.Item, error) {
	item, err := scanItem(q.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// GetItemByCode returns a non-deleted item by its management code.
func GetItemByCode(ctx context.Context, db *sql.DB, code string) (*model.Item, error) {
	item, err := scanItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE management_code = ? AND deleted_at IS NULL`, code,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item by code: %w", err)
	}
	return item, nil
}

// ListItems returns all non-deleted items, optionally filtered by status.
func ListItems(ctx context.Context, db *sql.DB, status string) ([]model.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE deleted_at IS NULL`
	var args []any
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY management_code`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// UpdateItem updates an item's metadata. Lending fields are not touched.
func UpdateItem(ctx context.Context, db *sql.DB, id int64, f ItemFields) error {
	accessories, err := encodeAccessories(f.Accessories)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx,
		`UPDATE items SET name = ?, management_code = ?, category = ?, is_fixed_asset = ?,
		        accessories = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		f.Name, f.ManagementCode, f.Category, f.IsFixedAsset, accessories, id,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return nil
}

// SetItemStatus switches a non-borrowed item between available and broken.
// It reports false when the item is missing or currently borrowed.
func SetItemStatus(ctx context.Context, db *sql.DB, id int64, status string) (bool, error) {
	if status != model.ItemStatusAvailable && status != model.ItemStatusBroken {
		return false, fmt.Errorf("status %q cannot be set directly", status)
	}

	result, err := db.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL AND status != 'borrowed'`,
		status, id,
	)
	if err != nil {
		return false, fmt.Errorf("setting item status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("setting item status: %w", err)
	}
	return n == 1, nil
}

// DeleteItem soft-deletes an item that is not currently borrowed. It reports
// false when nothing was deleted.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET deleted_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL AND status != 'borrowed'`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("deleting item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting item: %w", err)
	}
	return n == 1, nil
}

// SetItemImage sets an item's image data.
func SetItemImage(ctx context.Context, db *sql.DB, id int64, image []byte, mime string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET image = ?, image_mime = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting item image: %w", err)
	}
	return nil
}

// GetItemImage returns an item's image data and MIME type.
func GetItemImage(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM items WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item image: %w", err)
	}
	return image, mime.String, nil
}

// ListItemStatus returns the public overview of all non-deleted items.
func ListItemStatus(ctx context.Context, db *sql.DB, today model.Date) ([]model.ItemStatusView, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+prefixed("i", itemColumns)+`, COALESCE(NULLIF(u.display_name, ''), u.username, '')
		 FROM items i
		 LEFT JOIN users u ON u.id = i.owner_id
		 WHERE i.deleted_at IS NULL
		 ORDER BY i.management_code`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing item status: %w", err)
	}
	defer rows.Close()

	var views []model.ItemStatusView
	for rows.Next() {
		var ownerName string
		item, err := scanItem(rows, &ownerName)
		if err != nil {
			return nil, fmt.Errorf("scanning item status: %w", err)
		}
		views = append(views, model.ItemStatusView{
			ID:              item.ID,
			Name:            item.Name,
			ManagementCode:  item.ManagementCode,
			Status:          item.Status,
			OwnerName:       ownerName,
			DueDate:         item.DueDate,
			IsOverdue:       item.IsOverdue(today),
			IsFixedAsset:    item.IsFixedAsset,
			Accessories:     item.Accessories,
			LendingReason:   item.LendingReason,
			LendingLocation: item.LendingLocation,
		})
	}
	return views, rows.Err()
}

// scanItem scans the itemColumns, followed by any extra destinations.
func scanItem(s scanner, extra ...any) (*model.Item, error) {
	item := &model.Item{}
	var accessories string
	var reason, location, imageMime sql.NullString
	dest := []any{&item.ID, &item.Name, &item.ManagementCode, &item.Category, &item.IsFixedAsset,
		&accessories, &item.Status, &item.OwnerID, &item.DueDate, &reason, &location, &imageMime,
		&item.CreatedAt, &item.UpdatedAt, &item.DeletedAt}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(accessories), &item.Accessories); err != nil {
		return nil, fmt.Errorf("decoding accessories: %w", err)
	}
	if item.Accessories == nil {
		item.Accessories = []string{}
	}
	item.LendingReason = reason.String
	item.LendingLocation = location.String
	item.ImageMime = imageMime.String
	return item, nil
}

func encodeAccessories(accessories []string) (string, error) {
	if accessories == nil {
		accessories = []string{}
	}
	data, err := json.Marshal(accessories)
	if err != nil {
		return "", fmt.Errorf("encoding accessories: %w", err)
	}
	return string(data), nil
}
