package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/izposoja/internal/lending"
	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/notify"
	"github.com/erazemk/izposoja/internal/store"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string, sweeper notify.Sweeps) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	itemsHandler := &ItemsHandler{DB: db}
	lendingHandler := &LendingHandler{
		Service: lending.NewService(&store.Lending{DB: db}, &store.Users{DB: db}),
	}
	logsHandler := &LogsHandler{DB: db}
	notificationsHandler := &NotificationsHandler{DB: db, Sweeper: sweeper}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	authed := func(h http.HandlerFunc) http.Handler { return authMW(h) }
	admin := func(h http.HandlerFunc) http.Handler { return authMW(requireAdmin(h)) }

	// Public.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/items/status", itemsHandler.Status)

	// Session.
	mux.Handle("POST /api/auth/logout", authed(authHandler.Logout))
	mux.Handle("PUT /api/auth/password", authed(authHandler.ChangePassword))

	// Users.
	mux.Handle("GET /api/users/me", authed(usersHandler.Me))
	mux.Handle("GET /api/users", admin(usersHandler.List))
	mux.Handle("POST /api/users", admin(usersHandler.Create))
	mux.Handle("GET /api/users/{id}", admin(usersHandler.Get))
	mux.Handle("PUT /api/users/{id}", admin(usersHandler.Update))

	// Items: read (all users), write (admin).
	mux.Handle("GET /api/items", authed(itemsHandler.List))
	mux.Handle("POST /api/items", admin(itemsHandler.Create))
	mux.Handle("GET /api/items/{id}", authed(itemsHandler.Get))
	mux.Handle("PUT /api/items/{id}", admin(itemsHandler.Update))
	mux.Handle("DELETE /api/items/{id}", admin(itemsHandler.Delete))
	mux.Handle("PUT /api/items/{id}/image", admin(itemsHandler.UploadImage))
	mux.Handle("GET /api/items/{id}/image", authed(itemsHandler.GetImage))
	mux.Handle("GET /api/items/{id}/history", authed(itemsHandler.GetHistory))

	// Lending.
	mux.Handle("POST /api/items/{id}/borrow", authed(lendingHandler.Borrow))
	mux.Handle("POST /api/items/{id}/return", authed(lendingHandler.Return))
	mux.Handle("GET /api/logs", admin(logsHandler.List))

	// Notifications (admin).
	mux.Handle("GET /api/settings/notifications", admin(notificationsHandler.GetSettings))
	mux.Handle("PUT /api/settings/notifications", admin(notificationsHandler.UpdateSettings))
	mux.Handle("GET /api/templates", admin(notificationsHandler.ListTemplates))
	mux.Handle("PUT /api/templates/{name}", admin(notificationsHandler.SaveTemplate))
	mux.Handle("POST /api/notifications/sweep", admin(notificationsHandler.Sweep))

	return mux
}
