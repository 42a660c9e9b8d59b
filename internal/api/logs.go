package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

// LogsHandler serves the lending log.
type LogsHandler struct {
	DB *sql.DB
}

// List handles GET /api/logs?item_id=&user_id=.
func (h *LogsHandler) List(w http.ResponseWriter, r *http.Request) {
	itemID, ok := queryID(r, "item_id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item_id")
		return
	}
	userID, ok := queryID(r, "user_id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid user_id")
		return
	}

	logs, err := store.ListLogs(r.Context(), h.DB, itemID, userID)
	if err != nil {
		internalError(w, "failed to list logs", err)
		return
	}
	if logs == nil {
		logs = []model.LogEntry{}
	}
	jsonResponse(w, http.StatusOK, logs)
}
