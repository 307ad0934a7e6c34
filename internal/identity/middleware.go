// internal/identity/middleware.go
package identity

import (
	"context"
	"net/http"
	"strings"

	"shelfwise/internal/apperr"
	"shelfwise/internal/httpx"
)

type contextKey struct{}

// UserFrom extracts the authenticated user from the request context.
func UserFrom(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(contextKey{}).(*User)
	return u, ok
}

// Middleware guards routes: Authenticate resolves the bearer token to a
// user, RequireAdmin additionally checks the role.
type Middleware struct {
	service Service
	tokens  *TokenManager
}

// NewMiddleware creates the auth middleware.
func NewMiddleware(service Service, tokens *TokenManager) *Middleware {
	return &Middleware{service: service, tokens: tokens}
}

// Authenticate verifies the Authorization header and loads the user into
// the request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if header == "" || token == header {
			httpx.Error(w, r, apperr.AuthRequired("Authentication required"))
			return
		}

		userID, _, err := m.tokens.Verify(token)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}

		// The token may outlive the account; resolve against the store.
		user, err := m.service.GetUser(r.Context(), userID)
		if err != nil {
			httpx.Error(w, r, apperr.AuthRequired("User not found"))
			return
		}

		ctx := context.WithValue(r.Context(), contextKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects non-admin users. It must run after Authenticate.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFrom(r.Context())
		if !ok {
			httpx.Error(w, r, apperr.AuthRequired("Authentication required"))
			return
		}
		if !user.IsAdmin() {
			httpx.Error(w, r, apperr.Forbidden("Access denied. Admin only."))
			return
		}
		next.ServeHTTP(w, r)
	})
}
