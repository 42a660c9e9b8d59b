package lending

import "errors"

// Lending outcomes. Callers match them with errors.Is.
var (
	ErrNotFound       = errors.New("item or user not found")
	ErrNotAvailable   = errors.New("item is not available")
	ErrNotBorrowed    = errors.New("item is not borrowed")
	ErrNotBorrower    = errors.New("only the borrower can return this item")
	ErrInvalidDueDate = errors.New("due date is required")
)
