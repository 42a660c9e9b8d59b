package model

// NotificationSettings holds the reminder thresholds and the outgoing mail
// account. There is a single row.
type NotificationSettings struct {
	NDaysBefore  int    `json:"n_days_before"`
	MDaysOverdue int    `json:"m_days_overdue"`
	SMTPServer   string `json:"smtp_server"`
	SMTPPort     int    `json:"smtp_port"`
	SMTPUsername string `json:"smtp_username"`
	SMTPPassword string `json:"smtp_password,omitempty"`
	SenderEmail  string `json:"sender_email"`
}

// Default notification settings.
const (
	DefaultNDaysBefore  = 3
	DefaultMDaysOverdue = 7
	DefaultSMTPServer   = "smtp.gmail.com"
	DefaultSMTPPort     = 587
)

// EmailTemplate is a named subject/body pair with {placeholder} fields.
type EmailTemplate struct {
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Template names.
const (
	TemplateReminderBefore = "reminder_before"
	TemplateDueDate        = "due_date"
	TemplateOverdue        = "overdue"
)

// ValidTemplateName reports whether name is a template the sweep can use.
func ValidTemplateName(name string) bool {
	switch name {
	case TemplateReminderBefore, TemplateDueDate, TemplateOverdue:
		return true
	}
	return false
}

// DefaultTemplates are installed when a database is initialized.
var DefaultTemplates = []EmailTemplate{
	{
		Name:    TemplateReminderBefore,
		Subject: "Reminder: {item_name} is due on {due_date}",
		Body:    "Hello {user_name},\n\nplease return {item_name} by {due_date}.\n",
	},
	{
		Name:    TemplateDueDate,
		Subject: "{item_name} is due today",
		Body:    "Hello {user_name},\n\n{item_name} is due today ({due_date}). Please return it.\n",
	},
	{
		Name:    TemplateOverdue,
		Subject: "Overdue: {item_name}",
		Body:    "Hello {user_name},\n\n{item_name} was due on {due_date} and is {days_overdue} days overdue. Please return it as soon as possible.\n",
	},
}

// BorrowedItem is a borrowed item joined with its borrower, as read by the
// notification sweep.
type BorrowedItem struct {
	ItemID        int64
	ItemName      string
	DueDate       Date
	OwnerID       int64
	OwnerUsername string
	OwnerName     string
	OwnerEmail    string
}
