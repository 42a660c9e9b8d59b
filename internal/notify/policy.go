// Package notify decides which reminder e-mails to send and sends them on a
// daily schedule.
package notify

import "github.com/erazemk/izposoja/internal/model"

// Classify picks the template for an item due on due, as seen on today.
// It reports false when no e-mail is due. A non-positive mDaysOverdue
// disables overdue reminders.
func Classify(today, due model.Date, nDaysBefore, mDaysOverdue int) (string, bool) {
	diff := due.DaysSince(today)
	switch {
	case diff == nDaysBefore:
		return model.TemplateReminderBefore, true
	case diff == 0:
		return model.TemplateDueDate, true
	case diff < 0 && mDaysOverdue > 0 && (-diff)%mDaysOverdue == 0:
		return model.TemplateOverdue, true
	}
	return "", false
}

// Eligible reports whether a borrowed item can receive reminders.
func Eligible(b model.BorrowedItem) bool {
	return b.OwnerID != 0 && b.OwnerEmail != "" && !b.DueDate.IsZero()
}
