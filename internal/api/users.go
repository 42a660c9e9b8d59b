package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

// UsersHandler handles user management endpoints.
type UsersHandler struct {
	DB *sql.DB
}

type userProfile struct {
	DisplayName string `json:"display_name"`
	EmployeeID  string `json:"employee_id"`
	Email       string `json:"email"`
	Department  string `json:"department"`
	Role        string `json:"role"`
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	userProfile
}

type updateUserRequest struct {
	userProfile
	IsActive *bool `json:"is_active"`
}

func (p userProfile) fields(username string) store.UserFields {
	return store.UserFields{
		Username:    username,
		DisplayName: strings.TrimSpace(p.DisplayName),
		EmployeeID:  strings.TrimSpace(p.EmployeeID),
		Email:       strings.TrimSpace(p.Email),
		Department:  strings.TrimSpace(p.Department),
		Role:        p.Role,
	}
}

// Me handles GET /api/users/me.
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	user, err := store.GetUser(r.Context(), h.DB, claims.UserID)
	if err != nil {
		internalError(w, "failed to get user", err)
		return
	}
	if user == nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}
	jsonResponse(w, http.StatusOK, user)
}

// List handles GET /api/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := store.ListUsers(r.Context(), h.DB)
	if err != nil {
		internalError(w, "failed to list users", err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	jsonResponse(w, http.StatusOK, users)
}

// Create handles POST /api/users.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "username and password required")
		return
	}
	if req.Role == "" {
		req.Role = model.RoleUser
	}
	if !model.ValidRole(req.Role) {
		jsonError(w, http.StatusBadRequest, "invalid role")
		return
	}
	if err := model.ValidatePassword(req.Password); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	existing, err := store.GetUserByUsername(r.Context(), h.DB, req.Username)
	if err != nil {
		internalError(w, "failed to look up user", err)
		return
	}
	if existing != nil {
		jsonError(w, http.StatusConflict, "username already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		internalError(w, "failed to hash password", err)
		return
	}

	user, err := store.CreateUser(r.Context(), h.DB, req.fields(req.Username), string(hash))
	if err != nil {
		// Username is checked above; what is left is a duplicate e-mail or employee ID.
		slog.Warn("user not created", "username", req.Username, "error", err)
		jsonError(w, http.StatusConflict, "e-mail or employee id already in use")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("user created", "user", claims.Username, "new_user", user.Username, "role", user.Role)
	jsonResponse(w, http.StatusCreated, user)
}

// Get handles GET /api/users/{id}.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, id)
	if err != nil {
		internalError(w, "failed to get user", err)
		return
	}
	if user == nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}

	jsonResponse(w, http.StatusOK, user)
}

// Update handles PUT /api/users/{id}.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !model.ValidRole(req.Role) {
		jsonError(w, http.StatusBadRequest, "invalid role")
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, id)
	if err != nil {
		internalError(w, "failed to get user", err)
		return
	}
	if user == nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}

	active := user.IsActive
	if req.IsActive != nil {
		active = *req.IsActive
	}

	claims := GetClaims(r.Context())
	if claims.UserID == id && (!active || req.Role != model.RoleAdmin) {
		jsonError(w, http.StatusBadRequest, "cannot demote or deactivate yourself")
		return
	}

	if err := store.UpdateUser(r.Context(), h.DB, id, req.fields(user.Username), active); err != nil {
		slog.Warn("user not updated", "target_user", user.Username, "error", err)
		jsonError(w, http.StatusConflict, "e-mail or employee id already in use")
		return
	}

	user, err = store.GetUser(r.Context(), h.DB, id)
	if err != nil {
		internalError(w, "failed to get user", err)
		return
	}

	slog.Info("user updated", "user", claims.Username, "target_user", user.Username,
		"role", user.Role, "active", user.IsActive)
	jsonResponse(w, http.StatusOK, user)
}
