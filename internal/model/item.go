package model

import "time"

// Item is a single trackable piece of equipment with one lending state.
type Item struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	ManagementCode  string     `json:"management_code"`
	Category        string     `json:"category"`
	IsFixedAsset    bool       `json:"is_fixed_asset"`
	Accessories     []string   `json:"accessories"`
	Status          string     `json:"status"`
	OwnerID         *int64     `json:"owner_id,omitempty"`
	DueDate         *Date      `json:"due_date,omitempty"`
	LendingReason   string     `json:"lending_reason,omitempty"`
	LendingLocation string     `json:"lending_location,omitempty"`
	ImageMime       string     `json:"image_mime,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`
}

// Item statuses.
const (
	ItemStatusAvailable = "available"
	ItemStatusBorrowed  = "borrowed"
	ItemStatusBroken    = "broken"
)

// ValidItemStatus reports whether status is one of the known item statuses.
func ValidItemStatus(status string) bool {
	switch status {
	case ItemStatusAvailable, ItemStatusBorrowed, ItemStatusBroken:
		return true
	}
	return false
}

// Consistent reports whether the owner and due date agree with the status:
// both are set exactly when the item is borrowed.
func (i *Item) Consistent() bool {
	hasOwner := i.OwnerID != nil
	hasDue := i.DueDate != nil
	if hasOwner != hasDue {
		return false
	}
	return hasOwner == (i.Status == ItemStatusBorrowed)
}

// IsOverdue reports whether a borrowed item is past its due date on today.
func (i *Item) IsOverdue(today Date) bool {
	if i.Status != ItemStatusBorrowed || i.DueDate == nil {
		return false
	}
	return today.DaysSince(*i.DueDate) > 0
}

// ItemStatusView is the public overview row for an item.
type ItemStatusView struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	ManagementCode  string   `json:"management_code"`
	Status          string   `json:"status"`
	OwnerName       string   `json:"owner_name,omitempty"`
	DueDate         *Date    `json:"due_date,omitempty"`
	IsOverdue       bool     `json:"is_overdue"`
	IsFixedAsset    bool     `json:"is_fixed_asset"`
	Accessories     []string `json:"accessories"`
	LendingReason   string   `json:"lending_reason,omitempty"`
	LendingLocation string   `json:"lending_location,omitempty"`
}
