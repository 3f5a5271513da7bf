package middleware

import (
	"log"
	"net/http"

	"techtrends/backend/internal/platform/httpjson"
	"techtrends/backend/internal/policy/engine"
)

// Authorize asks authz whether the principal's role may call the request's method and path.
// A deny or an evaluation error responds 403.
func Authorize(authz engine.Authorizer) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, _ := GetUserID(r.Context())
			role, _ := GetRole(r.Context())
			allowed, err := authz.Allow(r.Context(), engine.Input{
				Role:   role,
				Method: r.Method,
				Path:   r.URL.Path,
				UserID: userID,
			})
			if err != nil {
				log.Printf("policy: authorize %s %s: %v", r.Method, r.URL.Path, err)
			}
			if err != nil || !allowed {
				httpjson.Error(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
