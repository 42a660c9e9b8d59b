package lending

import "github.com/erazemk/izposoja/internal/model"

// BorrowRequest describes a loan of one item to one user.
type BorrowRequest struct {
	ItemID   int64
	UserID   int64
	DueDate  model.Date
	Reason   string
	Location string
}

// borrow moves an available item to the borrowed state.
func borrow(item *model.Item, user *model.User, req BorrowRequest) error {
	if item == nil || user == nil {
		return ErrNotFound
	}
	if item.Status != model.ItemStatusAvailable {
		return ErrNotAvailable
	}

	owner := user.ID
	due := req.DueDate
	item.Status = model.ItemStatusBorrowed
	item.OwnerID = &owner
	item.DueDate = &due
	item.LendingReason = req.Reason
	item.LendingLocation = req.Location
	return nil
}

// giveBack moves a borrowed item back to available. Unless force is set
// only the current borrower may do this.
func giveBack(item *model.Item, user *model.User, force bool) error {
	if item == nil || user == nil {
		return ErrNotFound
	}
	if item.Status != model.ItemStatusBorrowed {
		return ErrNotBorrowed
	}
	if !force && (item.OwnerID == nil || *item.OwnerID != user.ID) {
		return ErrNotBorrower
	}

	item.Status = model.ItemStatusAvailable
	item.OwnerID = nil
	item.DueDate = nil
	item.LendingReason = ""
	item.LendingLocation = ""
	return nil
}
