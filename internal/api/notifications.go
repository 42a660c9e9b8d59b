package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/notify"
	"github.com/erazemk/izposoja/internal/store"
)

// NotificationsHandler handles reminder settings, templates and manual sweeps.
type NotificationsHandler struct {
	DB      *sql.DB
	Sweeper notify.Sweeps
}

// GetSettings handles GET /api/settings/notifications. The SMTP password is
// never returned.
func (h *NotificationsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := store.GetNotificationSettings(r.Context(), h.DB)
	if err != nil {
		internalError(w, "failed to get notification settings", err)
		return
	}
	if settings == nil {
		jsonError(w, http.StatusNotFound, "notification settings not initialized")
		return
	}

	settings.SMTPPassword = ""
	jsonResponse(w, http.StatusOK, settings)
}

// UpdateSettings handles PUT /api/settings/notifications. An empty
// smtp_password keeps the stored one.
func (h *NotificationsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req model.NotificationSettings
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.SMTPServer = strings.TrimSpace(req.SMTPServer)
	req.SenderEmail = strings.TrimSpace(req.SenderEmail)
	switch {
	case req.NDaysBefore < 0:
		jsonError(w, http.StatusBadRequest, "n_days_before must not be negative")
		return
	case req.SMTPPort < 1 || req.SMTPPort > 65535:
		jsonError(w, http.StatusBadRequest, "smtp_port must be between 1 and 65535")
		return
	}

	if req.SMTPPassword == "" {
		current, err := store.GetNotificationSettings(r.Context(), h.DB)
		if err != nil {
			internalError(w, "failed to get notification settings", err)
			return
		}
		if current != nil {
			req.SMTPPassword = current.SMTPPassword
		}
	}

	if err := store.SaveNotificationSettings(r.Context(), h.DB, req); err != nil {
		internalError(w, "failed to save notification settings", err)
		return
	}

	slog.Info("notification settings updated", "user", GetClaims(r.Context()).Username,
		"n_days_before", req.NDaysBefore, "m_days_overdue", req.MDaysOverdue, "smtp_server", req.SMTPServer)

	req.SMTPPassword = ""
	jsonResponse(w, http.StatusOK, req)
}

// ListTemplates handles GET /api/templates.
func (h *NotificationsHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := store.ListTemplates(r.Context(), h.DB)
	if err != nil {
		internalError(w, "failed to list templates", err)
		return
	}
	if templates == nil {
		templates = []model.EmailTemplate{}
	}
	jsonResponse(w, http.StatusOK, templates)
}

// SaveTemplate handles PUT /api/templates/{name}.
func (h *NotificationsHandler) SaveTemplate(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !model.ValidTemplateName(name) {
		jsonError(w, http.StatusNotFound, "unknown template")
		return
	}

	var req model.EmailTemplate
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.Body) == "" {
		jsonError(w, http.StatusBadRequest, "subject and body required")
		return
	}
	req.Name = name

	if err := store.SaveTemplate(r.Context(), h.DB, req); err != nil {
		internalError(w, "failed to save template", err)
		return
	}

	slog.Info("template updated", "user", GetClaims(r.Context()).Username, "template", name)
	jsonResponse(w, http.StatusOK, req)
}

// Sweep handles POST /api/notifications/sweep.
func (h *NotificationsHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	result, err := h.Sweeper.Sweep(r.Context())
	if errors.Is(err, notify.ErrNoSettings) {
		jsonError(w, http.StatusConflict, "notification settings not initialized")
		return
	}
	if err != nil {
		internalError(w, "notification sweep failed", err)
		return
	}

	slog.Info("sweep finished", "user", GetClaims(r.Context()).Username,
		"checked", result.Checked, "sent", result.Sent,
		"previewed", result.Previewed, "skipped", result.Skipped, "failed", result.Failed)
	jsonResponse(w, http.StatusOK, result)
}
