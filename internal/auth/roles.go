package auth

import (
	"log/slog"
	"net/http"
)

// RoleAuthorization gates routes by the caller's role.
type RoleAuthorization struct {
	logger *slog.Logger
}

func NewRoleAuthorization(logger *slog.Logger) *RoleAuthorization {
	return &RoleAuthorization{logger: logger}
}

// RequireRoles allows the request through only when the caller holds one of
// the given roles. Unknown roles are rejected.
func (ra *RoleAuthorization) RequireRoles(roles ...Role) func(http.Handler) http.Handler {
	allowed := make(map[Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				ra.logger.Warn("authorization check failed: user not found in context")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !user.Role.Valid() {
				ra.logger.WarnContext(r.Context(), "access denied: unknown role",
					"user_id", user.ID, "role", user.Role)
				http.Error(w, "Forbidden: unknown role", http.StatusForbidden)
				return
			}

			if _, ok := allowed[user.Role]; !ok {
				ra.logger.WarnContext(r.Context(), "access denied: insufficient role",
					"user_id", user.ID, "role", user.Role)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin gates admin-only routes.
func (ra *RoleAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return ra.RequireRoles(RoleAdmin)
}

// RequireManager gates routes for supervisors and admins.
func (ra *RoleAuthorization) RequireManager() func(http.Handler) http.Handler {
	return ra.RequireRoles(RoleAdmin, RoleSupervisor)
}
