package model

import "time"

// LogEntry records one successful borrow or return. Entries are append-only.
type LogEntry struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"item_id"`
	UserID    int64     `json:"user_id"`
	Action    string    `json:"action"`
	CreatedAt time.Time `json:"created_at"`

	// Joined fields (not always populated).
	ItemName string `json:"item_name,omitempty"`
	Username string `json:"username,omitempty"`
}

// Log actions.
const (
	ActionBorrow = "borrow"
	ActionReturn = "return"
)
