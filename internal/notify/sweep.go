package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/erazemk/izposoja/internal/mail"
	"github.com/erazemk/izposoja/internal/model"
)

// Store is what a sweep reads and records.
type Store interface {
	GetNotificationSettings(ctx context.Context) (*model.NotificationSettings, error)
	ListBorrowedWithDueDate(ctx context.Context) ([]model.BorrowedItem, error)
	GetTemplate(ctx context.Context, name string) (*model.EmailTemplate, error)
	ClaimNotification(ctx context.Context, itemID int64, template string, due, day model.Date) (bool, error)
	ReleaseNotification(ctx context.Context, itemID int64, template string, due, day model.Date) error
}

// ErrNoSettings is returned when the notification settings row is missing.
var ErrNoSettings = errors.New("notification settings not found")

// SweepResult counts what a sweep did. Previewed counts reminders a dry-run
// sender logged without delivering.
type SweepResult struct {
	Checked   int `json:"checked"`
	Sent      int `json:"sent"`
	Previewed int `json:"previewed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

type outcome int

const (
	skipped outcome = iota
	sent
	previewed
)

// Sweeper checks every borrowed item once and sends the reminders due today.
type Sweeper struct {
	Store  Store
	Sender mail.Sender
	Clock  Clock
}

// NewSweeper returns a Sweeper using the system clock.
func NewSweeper(store Store, sender mail.Sender) *Sweeper {
	return &Sweeper{Store: store, Sender: sender, Clock: SystemClock{}}
}

// Sweep runs one notification pass. Settings are read fresh on every call.
// Failures for a single item are logged and counted; only failures that
// prevent the sweep from starting are returned.
func (s *Sweeper) Sweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	settings, err := s.Store.GetNotificationSettings(ctx)
	if err != nil {
		return result, fmt.Errorf("loading notification settings: %w", err)
	}
	if settings == nil {
		return result, ErrNoSettings
	}

	items, err := s.Store.ListBorrowedWithDueDate(ctx)
	if err != nil {
		return result, fmt.Errorf("listing borrowed items: %w", err)
	}

	today := model.DateOf(s.clock().Now())
	from := mail.IdentityFrom(*settings)

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Checked++

		out, err := s.notify(ctx, item, today, *settings, from)
		switch {
		case err != nil:
			result.Failed++
			slog.Error("sending notification", "item", item.ItemID, "error", err)
		case out == sent:
			result.Sent++
		case out == previewed:
			result.Previewed++
		default:
			result.Skipped++
		}
	}

	return result, nil
}

// notify handles one item. The dedup row is claimed before sending and
// released again when nothing was delivered.
func (s *Sweeper) notify(ctx context.Context, item model.BorrowedItem, today model.Date,
	settings model.NotificationSettings, from mail.Identity,
) (outcome, error) {
	if !Eligible(item) {
		return skipped, nil
	}

	name, ok := Classify(today, item.DueDate, settings.NDaysBefore, settings.MDaysOverdue)
	if !ok {
		return skipped, nil
	}

	tmpl, err := s.Store.GetTemplate(ctx, name)
	if err != nil {
		return skipped, fmt.Errorf("loading template %s: %w", name, err)
	}
	if tmpl == nil {
		slog.Warn("notification template missing", "template", name, "item", item.ItemID)
		return skipped, nil
	}

	claimed, err := s.Store.ClaimNotification(ctx, item.ItemID, name, item.DueDate, today)
	if err != nil {
		return skipped, err
	}
	if !claimed {
		return skipped, nil
	}

	msg := Render(*tmpl, DataFor(item, today))
	sendErr := s.Sender.Send(ctx, from, item.OwnerEmail, msg.Subject, msg.Body)
	if sendErr == nil {
		slog.Info("notification sent", "item", item.ItemID, "template", name, "to", item.OwnerEmail)
		return sent, nil
	}

	if err := s.Store.ReleaseNotification(context.WithoutCancel(ctx), item.ItemID, name, item.DueDate, today); err != nil {
		return skipped, errors.Join(sendErr, err)
	}
	if errors.Is(sendErr, mail.ErrDryRun) {
		slog.Info("notification previewed", "item", item.ItemID, "template", name, "to", item.OwnerEmail)
		return previewed, nil
	}
	return skipped, sendErr
}

func (s *Sweeper) clock() Clock {
	if s.Clock == nil {
		return SystemClock{}
	}
	return s.Clock
}
