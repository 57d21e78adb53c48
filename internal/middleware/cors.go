package middleware

import (
	"net/http"
	"slices"
	"strings"
)

// CORS adds Access-Control headers for allowed origins and short-circuits
// OPTIONS preflight requests.
func CORS(allowedOrigins []string, next http.Handler) http.Handler {
	allowAll := slices.Contains(allowedOrigins, "*")
	normalized := make([]string, len(allowedOrigins))
	for i, origin := range allowedOrigins {
		normalized[i] = strings.ToLower(origin)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			// the response depends on the Origin header whether or not the
			// origin is allowed; caches must not mix them up
			w.Header().Set("Vary", "Origin")
			if allowAll || slices.Contains(normalized, strings.ToLower(origin)) {
				if allowAll {
					w.Header().Set("Access-Control-Allow-Origin", "*")
				} else {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
