package notify

import (
	"strconv"
	"strings"

	"github.com/erazemk/izposoja/internal/model"
)

// Message is a rendered e-mail.
type Message struct {
	Subject string
	Body    string
}

// Data fills the placeholders of a template.
type Data struct {
	UserName    string
	ItemName    string
	DueDate     model.Date
	DaysOverdue int
}

// DataFor builds template data for a borrowed item on today.
func DataFor(b model.BorrowedItem, today model.Date) Data {
	name := b.OwnerName
	if name == "" {
		name = b.OwnerUsername
	}
	overdue := today.DaysSince(b.DueDate)
	if overdue < 0 {
		overdue = 0
	}
	return Data{
		UserName:    name,
		ItemName:    b.ItemName,
		DueDate:     b.DueDate,
		DaysOverdue: overdue,
	}
}

// Render substitutes {user_name}, {item_name}, {due_date} and {days_overdue}
// in the template's subject and body. Other braces are left untouched.
func Render(tmpl model.EmailTemplate, data Data) Message {
	r := strings.NewReplacer(
		"{user_name}", data.UserName,
		"{item_name}", data.ItemName,
		"{due_date}", data.DueDate.String(),
		"{days_overdue}", strconv.Itoa(data.DaysOverdue),
	)
	return Message{
		Subject: r.Replace(tmpl.Subject),
		Body:    r.Replace(tmpl.Body),
	}
}
