package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mateusbrg/user-registry/internal/auth"
	"github.com/mateusbrg/user-registry/internal/config"
	"github.com/mateusbrg/user-registry/internal/http/handlers"
	"github.com/mateusbrg/user-registry/internal/middleware"
	"github.com/mateusbrg/user-registry/internal/models"
	"github.com/mateusbrg/user-registry/internal/service"
	"github.com/mateusbrg/user-registry/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, store storage.UserStore, logger *slog.Logger) *Server {
	handler := middleware.CORS(cfg.CORSOrigins, middleware.Logging(logger, NewRouter(cfg, store, logger)))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// NewRouter builds the route table. Every registry operation except login and
// health sits behind the token gate plus its required permission.
func NewRouter(cfg config.Config, store storage.UserStore, logger *slog.Logger) http.Handler {
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	accounts := service.NewAccount(store, tokens)
	users := handlers.NewUsersHandler(accounts, logger)
	health := handlers.NewHealthHandler(time.Now())

	protected := func(required models.Permission, fn http.HandlerFunc) http.Handler {
		return middleware.Authenticate(tokens, middleware.RequirePermission(required, fn))
	}

	mux := http.NewServeMux()
	mux.Handle("POST /users", protected(models.PermissionCreate, users.Create))
	mux.Handle("GET /users", protected(models.PermissionRead, users.List))
	mux.Handle("GET /users/{id}", protected(models.PermissionRead, users.GetByID))
	mux.Handle("PATCH /users/{id}", protected(models.PermissionUpdate, users.Update))
	mux.Handle("DELETE /users/{id}", protected(models.PermissionDelete, users.Delete))
	mux.HandleFunc("POST /login", users.Login)
	mux.HandleFunc("GET /health", health.Handle)
	return mux
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
