package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// Authenticator reports whether a session token is stored.
type Authenticator interface {
	IsAuthenticated() bool
}

// RequireAuth rejects requests while no session token is stored.
func RequireAuth(auth Authenticator) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !auth.IsAuthenticated() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "Please sign in first.", "redirect": "login"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
