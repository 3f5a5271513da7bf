package middleware

import (
	"net/http"
	"strings"

	"techtrends/backend/internal/platform/httpjson"
)

const bearerPrefix = "bearer "

// DevUserID and DevRole identify the caller when authentication is disabled.
const (
	DevUserID = "dev"
	DevRole   = "admin"
)

// TokenValidator validates an access token and returns its user id and role.
type TokenValidator interface {
	ValidateAccess(token string) (userID, role string, err error)
}

// Auth validates the Bearer access token and stores the principal in the request context.
// Missing or invalid tokens get 401. When disabled is true every request runs as DevUserID/DevRole.
func Auth(tokens TokenValidator, disabled bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if disabled {
				next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), DevUserID, DevRole)))
				return
			}
			token := extractBearer(r.Header.Get("Authorization"))
			if token == "" {
				unauthorized(w)
				return
			}
			userID, role, err := tokens.ValidateAccess(token)
			if err != nil {
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), userID, role)))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="techtrends"`)
	httpjson.Error(w, http.StatusUnauthorized, "missing or invalid authorization")
}

// extractBearer returns the token from an Authorization header value, or "" if missing or malformed.
func extractBearer(v string) string {
	v = strings.TrimSpace(v)
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
