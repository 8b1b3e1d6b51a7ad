package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/lagoon-hr/payroll-backend-go/internal/handler/http/response"
)

// AdminOnly guards the payroll administration endpoints: creating,
// processing, approving and paying cycles.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, "Invalid token")
			return
		}

		role, ok := claims["role"].(string)
		if !ok || (role != "admin" && role != "payroll_admin") {
			response.Forbidden(w, "Payroll administrator privilege required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
