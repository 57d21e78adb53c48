package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mateusbrg/user-registry/internal/auth"
	"github.com/mateusbrg/user-registry/internal/http/respond"
	"github.com/mateusbrg/user-registry/internal/models"
)

type contextKey int

const permissionsKey contextKey = iota

// Authenticate extracts the bearer token from the Authorization header,
// verifies it, and attaches the caller's permission set to the request
// context. A missing header and a bad token both answer with the 498 token
// status, with distinct messages.
func Authenticate(tokens *auth.TokenManager, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			respond.Error(w, respond.StatusInvalidToken, "authentication token not provided")
			return
		}

		token, _ := strings.CutPrefix(header, "Bearer ")
		claims, err := tokens.Verify(token)
		if err != nil {
			respond.Error(w, respond.StatusInvalidToken, "authentication token is expired or invalid")
			return
		}

		ctx := context.WithValue(r.Context(), permissionsKey, claims.Permissions)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PermissionsFromContext returns the permission set attached by Authenticate.
func PermissionsFromContext(ctx context.Context) []models.Permission {
	perms, _ := ctx.Value(permissionsKey).([]models.Permission)
	return perms
}

// RequirePermission rejects the request with 401 unless the caller's
// permission set contains the required permission.
func RequirePermission(required models.Permission, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !models.HasPermission(PermissionsFromContext(r.Context()), required) {
			respond.Error(w, http.StatusUnauthorized, "user does not have permission for this operation")
			return
		}
		next(w, r)
	})
}
