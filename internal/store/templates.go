package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/izposoja/internal/model"
)

// GetTemplate returns an e-mail template by name, or nil if it does not exist.
func GetTemplate(ctx context.Context, db *sql.DB, name string) (*model.EmailTemplate, error) {
	t := &model.EmailTemplate{}
	err := db.QueryRowContext(ctx,
		`SELECT name, subject, body FROM email_templates WHERE name = ?`, name,
	).Scan(&t.Name, &t.Subject, &t.Body)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting template: %w", err)
	}
	return t, nil
}

// ListTemplates returns all e-mail templates.
func ListTemplates(ctx context.Context, db *sql.DB) ([]model.EmailTemplate, error) {
	rows, err := db.QueryContext(ctx, `SELECT name, subject, body FROM email_templates ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	defer rows.Close()

	var templates []model.EmailTemplate
	for rows.Next() {
		var t model.EmailTemplate
		if err := rows.Scan(&t.Name, &t.Subject, &t.Body); err != nil {
			return nil, fmt.Errorf("scanning template: %w", err)
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// SaveTemplate creates or replaces a template.
func SaveTemplate(ctx context.Context, db *sql.DB, t model.EmailTemplate) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO email_templates (name, subject, body) VALUES (?, ?, ?)
		 ON CONFLICT (name) DO UPDATE SET subject = excluded.subject, body = excluded.body`,
		t.Name, t.Subject, t.Body,
	)
	if err != nil {
		return fmt.Errorf("saving template: %w", err)
	}
	return nil
}

// EnsureDefaultTemplates installs the default templates that are missing.
// Existing templates are left alone.
func EnsureDefaultTemplates(ctx context.Context, db *sql.DB) error {
	for _, t := range model.DefaultTemplates {
		_, err := db.ExecContext(ctx,
			`INSERT OR IGNORE INTO email_templates (name, subject, body) VALUES (?, ?, ?)`,
			t.Name, t.Subject, t.Body,
		)
		if err != nil {
			return fmt.Errorf("installing template %s: %w", t.Name, err)
		}
	}
	return nil
}
