package mw

import (
	"context"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/coursemark/internal/logger"
)

type userKey struct{}

// RequireUser takes the caller identity from header, set by the
// authenticating proxy in front of the service. Requests without it get 401.
func RequireUser(header string, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := strings.TrimSpace(r.Header.Get(header))
			if user == "" {
				log.Debugf("RequireUser: missing %s header on %s %s", header, r.Method, r.URL.Path)
				deny(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if slot, ok := r.Context().Value(userSlotKey{}).(*userSlot); ok {
				slot.user = user
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser stores the caller identity in ctx.
func WithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext returns the identity set by RequireUser.
func UserFromContext(ctx context.Context) (string, bool) {
	user, ok := ctx.Value(userKey{}).(string)
	return user, ok && user != ""
}

func withUserSlot(ctx context.Context, slot *userSlot) context.Context {
	return context.WithValue(ctx, userSlotKey{}, slot)
}
