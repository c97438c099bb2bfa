package notifications

import (
	"context"
	"net/http"
	"strings"
)

// RoleOperator marks staff callers allowed to use operator-only routes.
const RoleOperator = "operator"

type (
	userIDContextKey struct{}
	roleContextKey   struct{}
)

// SetUserIDToContext stores the authenticated caller for the handlers below.
func SetUserIDToContext(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey{}, userID)
}

// GetUserIDFromContext returns the authenticated caller, or "" if none was stored.
func GetUserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDContextKey{}).(string)
	return id
}

// TrustedHeader copies the caller identity from a header set by the
// authenticating gateway in front of this service.
func TrustedHeader(header string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := strings.TrimSpace(r.Header.Get(header)); id != "" {
				r = r.WithContext(SetUserIDToContext(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SetRoleToContext stores the caller's role.
func SetRoleToContext(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleContextKey{}, role)
}

// GetRoleFromContext returns the caller's role, or "" if none was stored.
func GetRoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(roleContextKey{}).(string)
	return role
}

func isOperator(ctx context.Context) bool {
	return GetRoleFromContext(ctx) == RoleOperator
}

// TrustedRoleHeader copies the caller role from a header set by the
// authenticating gateway.
func TrustedRoleHeader(header string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if role := strings.TrimSpace(r.Header.Get(header)); role != "" {
				r = r.WithContext(SetRoleToContext(r.Context(), role))
			}
			next.ServeHTTP(w, r)
		})
	}
}
