package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/erazemk/izposoja/internal/lending"
	"github.com/erazemk/izposoja/internal/model"
)

// LendingHandler handles borrow and return.
type LendingHandler struct {
	Service *lending.Service
}

type borrowRequest struct {
	DueDate  model.Date `json:"due_date"`
	Username string     `json:"username"`
	Reason   string     `json:"reason"`
	Location string     `json:"location"`
}

type returnRequest struct {
	Force bool `json:"force"`
}

// Borrow handles POST /api/items/{id}/borrow. Admins may lend to another
// user by username.
func (h *LendingHandler) Borrow(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req borrowRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	borrow := lending.BorrowRequest{
		ItemID:   id,
		UserID:   claims.UserID,
		DueDate:  req.DueDate,
		Reason:   strings.TrimSpace(req.Reason),
		Location: strings.TrimSpace(req.Location),
	}

	var item *model.Item
	var err error
	username := strings.TrimSpace(req.Username)
	switch {
	case username == "" || username == claims.Username:
		item, err = h.Service.Borrow(r.Context(), borrow)
	case model.RoleAtLeast(claims.Role, model.RoleAdmin):
		item, err = h.Service.BorrowByUsername(r.Context(), username, borrow)
	default:
		jsonError(w, http.StatusForbidden, "only admins can lend to other users")
		return
	}
	if err != nil {
		lendingError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, item)
}

// Return handles POST /api/items/{id}/return. Only admins may force a
// return of an item borrowed by someone else.
func (h *LendingHandler) Return(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req returnRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	force := req.Force && model.RoleAtLeast(claims.Role, model.RoleAdmin)

	item, err := h.Service.Return(r.Context(), id, claims.UserID, force)
	if err != nil {
		lendingError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, item)
}

// lendingError maps lending outcomes to status codes.
func lendingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lending.ErrNotFound):
		jsonError(w, http.StatusNotFound, lending.ErrNotFound.Error())
	case errors.Is(err, lending.ErrNotAvailable):
		jsonError(w, http.StatusConflict, lending.ErrNotAvailable.Error())
	case errors.Is(err, lending.ErrNotBorrowed):
		jsonError(w, http.StatusConflict, lending.ErrNotBorrowed.Error())
	case errors.Is(err, lending.ErrNotBorrower):
		jsonError(w, http.StatusForbidden, lending.ErrNotBorrower.Error())
	case errors.Is(err, lending.ErrInvalidDueDate):
		jsonError(w, http.StatusBadRequest, lending.ErrInvalidDueDate.Error())
	default:
		internalError(w, "lending failed", err)
	}
}
