// Package lending implements the borrow and return transitions of items.
package lending

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/erazemk/izposoja/internal/model"
)

// Store runs a read-validate-write transition atomically. apply receives the
// item and the acting user, either nil when absent, and returns the log
// action to append. If apply fails nothing is written.
type Store interface {
	Transition(ctx context.Context, itemID, userID int64,
		apply func(item *model.Item, user *model.User) (string, error)) (*model.Item, error)
}

// UserFinder resolves usernames for lending on behalf of another user.
type UserFinder interface {
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// Service applies lending transitions through a Store.
type Service struct {
	Store Store
	Users UserFinder
}

// NewService returns a Service backed by store.
func NewService(store Store, users UserFinder) *Service {
	return &Service{Store: store, Users: users}
}

// Borrow lends an available item to a user until the due date.
func (s *Service) Borrow(ctx context.Context, req BorrowRequest) (*model.Item, error) {
	if req.DueDate.IsZero() {
		return nil, ErrInvalidDueDate
	}

	item, err := s.Store.Transition(ctx, req.ItemID, req.UserID,
		func(item *model.Item, user *model.User) (string, error) {
			if err := borrow(item, user, req); err != nil {
				return "", err
			}
			return model.ActionBorrow, nil
		})
	if err != nil {
		return nil, fmt.Errorf("borrowing item %d: %w", req.ItemID, err)
	}

	slog.Info("item borrowed", "item", item.ID, "user", req.UserID, "due", req.DueDate)
	return item, nil
}

// BorrowByUsername lends an item to the user with the given username.
func (s *Service) BorrowByUsername(ctx context.Context, username string, req BorrowRequest) (*model.Item, error) {
	if s.Users == nil {
		return nil, fmt.Errorf("borrowing item %d: no user lookup configured", req.ItemID)
	}
	user, err := s.Users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("looking up user %q: %w", username, err)
	}
	if user == nil {
		return nil, fmt.Errorf("borrowing item %d for %q: %w", req.ItemID, username, ErrNotFound)
	}
	req.UserID = user.ID
	return s.Borrow(ctx, req)
}

// Return gives a borrowed item back. The acting user must be the borrower
// unless force is set.
func (s *Service) Return(ctx context.Context, itemID, userID int64, force bool) (*model.Item, error) {
	item, err := s.Store.Transition(ctx, itemID, userID,
		func(item *model.Item, user *model.User) (string, error) {
			if err := giveBack(item, user, force); err != nil {
				return "", err
			}
			return model.ActionReturn, nil
		})
	if err != nil {
		return nil, fmt.Errorf("returning item %d: %w", itemID, err)
	}

	slog.Info("item returned", "item", item.ID, "user", userID, "forced", force)
	return item, nil
}
