package handlers

import (
	"context"
	"net/http"

	"github.com/rupeex/usdt-inr-exchange/backend/internal/entities"
)

type contextKey string

const userContextKey contextKey = "user"

// Auth-proxy headers. The proxy in front of this service authenticates the
// session and forwards the identity; requests without them are anonymous.
const (
	headerUserEmail = "X-User-Email"
	headerUserName  = "X-User-Name"
	headerUserRole  = "X-User-Role"
)

// HeaderIdentityProvider resolves the caller from proxy headers stashed in
// the request context.
type HeaderIdentityProvider struct{}

func (HeaderIdentityProvider) CurrentUser(ctx context.Context) (entities.User, bool) {
	user, ok := ctx.Value(userContextKey).(entities.User)
	return user, ok
}

// IdentityMiddleware copies the proxy identity headers into the context.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email := r.Header.Get(headerUserEmail)
		if email != "" {
			user := entities.User{
				Email:       email,
				DisplayName: r.Header.Get(headerUserName),
				Role:        r.Header.Get(headerUserRole),
			}
			r = r.WithContext(context.WithValue(r.Context(), userContextKey, user))
		}
		next.ServeHTTP(w, r)
	})
}

// requireUser resolves the caller or writes 401.
func requireUser(w http.ResponseWriter, r *http.Request) (entities.User, bool) {
	user, ok := r.Context().Value(userContextKey).(entities.User)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return entities.User{}, false
	}
	return user, true
}
