package auth

import (
	"encoding/json"
	"net/http"
)

// RequirePermission guards a route with a single permission check against the
// principal loaded by the auth middleware.
func RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				writeForbidden(w, "authentication required")
				return
			}
			if !HasPermission(user.Permissions, permission) {
				writeForbidden(w, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func RequireApproveLeave() func(http.Handler) http.Handler {
	return RequirePermission(PermissionApproveLeaves)
}

func RequireRejectLeave() func(http.Handler) http.Handler {
	return RequirePermission(PermissionRejectLeaves)
}

func RequireManager() func(http.Handler) http.Handler {
	return RequirePermission(PermissionManager)
}

func RequireAdmin() func(http.Handler) http.Handler {
	return RequirePermission(PermissionAdmin)
}

func writeForbidden(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    "FORBIDDEN",
			"message": message,
		},
	})
}
