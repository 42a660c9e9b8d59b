package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/erazemk/izposoja/internal/imaging"
	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

// ItemsHandler handles item endpoints.
type ItemsHandler struct {
	DB  *sql.DB
	Now func() time.Time
}

type itemRequest struct {
	Name           string   `json:"name"`
	ManagementCode string   `json:"management_code"`
	Category       string   `json:"category"`
	IsFixedAsset   bool     `json:"is_fixed_asset"`
	Accessories    []string `json:"accessories"`
	Status         string   `json:"status"`
}

func (req *itemRequest) fields() (store.ItemFields, error) {
	f := store.ItemFields{
		Name:           strings.TrimSpace(req.Name),
		ManagementCode: strings.TrimSpace(req.ManagementCode),
		Category:       strings.TrimSpace(req.Category),
		IsFixedAsset:   req.IsFixedAsset,
		Accessories:    req.Accessories,
	}
	if f.Name == "" || f.ManagementCode == "" {
		return f, errors.New("name and management_code required")
	}
	return f, nil
}

func (h *ItemsHandler) today() model.Date {
	if h.Now != nil {
		return model.DateOf(h.Now())
	}
	return model.DateOf(time.Now())
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && !model.ValidItemStatus(status) {
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}

	items, err := store.ListItems(r.Context(), h.DB, status)
	if err != nil {
		internalError(w, "failed to list items", err)
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Status handles GET /api/items/status. It needs no login.
func (h *ItemsHandler) Status(w http.ResponseWriter, r *http.Request) {
	views, err := store.ListItemStatus(r.Context(), h.DB, h.today())
	if err != nil {
		internalError(w, "failed to list item status", err)
		return
	}
	if views == nil {
		views = []model.ItemStatusView{}
	}
	jsonResponse(w, http.StatusOK, views)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	f, err := req.fields()
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	existing, err := store.GetItemByCode(r.Context(), h.DB, f.ManagementCode)
	if err != nil {
		internalError(w, "failed to look up item", err)
		return
	}
	if existing != nil {
		jsonError(w, http.StatusConflict, "management code already in use")
		return
	}

	item, err := store.CreateItem(r.Context(), h.DB, f)
	if err != nil {
		internalError(w, "failed to create item", err)
		return
	}

	slog.Info("item created", "user", GetClaims(r.Context()).Username, "item", item.ID, "code", item.ManagementCode)
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, ok := h.load(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /api/items/{id}. The status may only be switched
// between available and broken, and only while the item is not borrowed.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	item, ok := h.load(w, r)
	if !ok {
		return
	}

	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	f, err := req.fields()
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Status != "" && req.Status != model.ItemStatusAvailable && req.Status != model.ItemStatusBroken {
		jsonError(w, http.StatusBadRequest, "status must be available or broken")
		return
	}

	if f.ManagementCode != item.ManagementCode {
		other, err := store.GetItemByCode(r.Context(), h.DB, f.ManagementCode)
		if err != nil {
			internalError(w, "failed to look up item", err)
			return
		}
		if other != nil {
			jsonError(w, http.StatusConflict, "management code already in use")
			return
		}
	}

	if req.Status != "" && req.Status != item.Status {
		changed, err := store.SetItemStatus(r.Context(), h.DB, item.ID, req.Status)
		if err != nil {
			internalError(w, "failed to update item status", err)
			return
		}
		if !changed {
			jsonError(w, http.StatusConflict, "borrowed items cannot change status")
			return
		}
	}

	if err := store.UpdateItem(r.Context(), h.DB, item.ID, f); err != nil {
		internalError(w, "failed to update item", err)
		return
	}

	item, err = store.GetItem(r.Context(), h.DB, item.ID)
	if err != nil {
		internalError(w, "failed to get item", err)
		return
	}

	slog.Info("item updated", "user", GetClaims(r.Context()).Username, "item", item.ID, "status", item.Status)
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	item, ok := h.load(w, r)
	if !ok {
		return
	}

	deleted, err := store.DeleteItem(r.Context(), h.DB, item.ID)
	if err != nil {
		internalError(w, "failed to delete item", err)
		return
	}
	if !deleted {
		jsonError(w, http.StatusConflict, "borrowed items cannot be deleted")
		return
	}

	slog.Info("item deleted", "user", GetClaims(r.Context()).Username, "item", item.ID, "code", item.ManagementCode)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// UploadImage handles PUT /api/items/{id}/image.
func (h *ItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	item, ok := h.load(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	photo, err := imaging.Process(file)
	if err != nil {
		if errors.Is(err, imaging.ErrUnsupported) || errors.Is(err, imaging.ErrTooLarge) {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		internalError(w, "failed to process image", err)
		return
	}

	if err := store.SetItemImage(r.Context(), h.DB, item.ID, photo.Data, photo.MIME); err != nil {
		internalError(w, "failed to save image", err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "image uploaded"})
}

// GetImage handles GET /api/items/{id}/image.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	data, mime, err := store.GetItemImage(r.Context(), h.DB, id)
	if err != nil {
		internalError(w, "failed to get image", err)
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}

// GetHistory handles GET /api/items/{id}/history.
func (h *ItemsHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	history, err := store.GetItemHistory(r.Context(), h.DB, id)
	if err != nil {
		internalError(w, "failed to get item history", err)
		return
	}
	if history == nil {
		history = []model.LogEntry{}
	}
	jsonResponse(w, http.StatusOK, history)
}

// load reads the {id} item and writes the error response if it is missing
// or deleted.
func (h *ItemsHandler) load(w http.ResponseWriter, r *http.Request) (*model.Item, bool) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return nil, false
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		internalError(w, "failed to get item", err)
		return nil, false
	}
	if item == nil || item.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return nil, false
	}
	return item, true
}
