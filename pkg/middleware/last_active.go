package middleware

import (
	"net/http"

	"github.com/Dias221467/Veritas_Network/internal/services"
)

// UpdateLastActiveMiddleware records user activity on authenticated requests.
// Best effort: failures never block the request.
func UpdateLastActiveMiddleware(userService *services.UserService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserFromContext(r.Context())
			if claims != nil {
				_ = userService.TouchLastActive(r.Context(), claims.UserID)
			}
			next.ServeHTTP(w, r)
		})
	}
}
