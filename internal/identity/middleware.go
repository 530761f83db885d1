package identity

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wolfman30/telepsych-site/pkg/logging"
)

// Authenticate attaches claims for a valid bearer token and passes
// anonymous requests through untouched.
func Authenticate(a *Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, err := a.VerifyRequest(r); err == nil {
				r = r.WithContext(WithClaims(r.Context(), claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole rejects requests whose token does not grant role.
func RequireRole(a *Authorizer, role Role, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				var err error
				claims, err = a.VerifyRequest(r)
				if err != nil {
					status := http.StatusUnauthorized
					msg := "invalid token"
					switch {
					case errors.Is(err, ErrMissingToken):
						msg = "missing authorization header"
					case errors.Is(err, ErrDisabled):
						msg = "admin auth disabled"
					}
					writeAuthError(w, status, msg)
					return
				}
			}
			if !claims.Role.Allows(role) {
				logger.Warn("role check failed", "subject", claims.Subject, "role", claims.Role, "required", role, "path", r.URL.Path)
				writeAuthError(w, http.StatusForbidden, ErrForbidden.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": msg})
}
