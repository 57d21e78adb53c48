package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mateusbrg/user-registry/internal/http/respond"
	"github.com/mateusbrg/user-registry/internal/models/dto"
	"github.com/mateusbrg/user-registry/internal/service"
	"github.com/mateusbrg/user-registry/internal/storage"
	"github.com/mateusbrg/user-registry/internal/validate"
)

// UsersHandler owns the registry CRUD and login endpoints. Authentication and
// permission checks happen in middleware before these handlers run.
type UsersHandler struct {
	accounts *service.Account
	logger   *slog.Logger
}

// NewUsersHandler constructs the handler.
func NewUsersHandler(accounts *service.Account, logger *slog.Logger) *UsersHandler {
	return &UsersHandler{accounts: accounts, logger: logger}
}

// Create handles POST /users.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	user, err := h.accounts.Register(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "user created successfully", user)
}

// List handles GET /users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "users retrieved", users)
}

// GetByID handles GET /users/{id}.
func (h *UsersHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeError(w, storage.ErrNotFound)
		return
	}

	user, err := h.accounts.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "user retrieved", user)
}

// Update handles PATCH /users/{id}.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeError(w, storage.ErrNotFound)
		return
	}

	var req dto.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	user, err := h.accounts.Update(r.Context(), id, req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "user updated successfully", user)
}

// Delete handles DELETE /users/{id}.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeError(w, storage.ErrNotFound)
		return
	}

	if err := h.accounts.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "user deleted successfully", nil)
}

// Login handles POST /login. It is the only ungated endpoint besides /health.
func (h *UsersHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if req.Email == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	token, user, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "login successful", dto.LoginResponse{Token: token, User: user})
}

// writeError maps service errors onto HTTP responses. Unexpected errors are
// logged and answered with an opaque 500 before any success payload is sent.
func (h *UsersHandler) writeError(w http.ResponseWriter, err error) {
	var violations validate.Violations
	switch {
	case errors.As(err, &violations):
		respond.Violations(w, violations)
	case errors.Is(err, storage.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "no user with that id, try again")
	case errors.Is(err, service.ErrInvalidCredentials):
		respond.Error(w, http.StatusBadRequest, "incorrect credentials, try again")
	case errors.Is(err, service.ErrInactiveAccount):
		respond.Error(w, http.StatusBadRequest, "user is inactive")
	default:
		h.logger.Error("request failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal server error")
	}
}

// pathID parses the {id} path segment. A non-integer value can never match a
// stored user, so callers treat it as not found.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil
}
