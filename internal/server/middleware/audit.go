package middleware

import (
	"net/http"

	"techtrends/backend/internal/audit"
)

// Audit records one audit entry after each state-changing request (any method but GET, HEAD and OPTIONS).
// It must run inside Auth so the principal is in the context. logger may be nil.
// Handlers may add a user and metadata through audit.Annotate; an authenticated principal wins over the annotated user.
func Audit(logger audit.AuditLogger) Middleware {
	return func(next http.Handler) http.Handler {
		if logger == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}
			ctx, note := audit.WithAnnotation(r.Context())
			r = r.WithContext(ctx)
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			pattern := r.Pattern
			if pattern == "" {
				pattern = r.Method + " " + r.URL.Path
			}
			ar := audit.ParseRoute(r.Method, pattern, status)
			userID, _ := GetUserID(r.Context())
			if userID == "" {
				userID = note.UserID
			}
			logger.LogEvent(r.Context(), audit.Entry{
				UserID:     userID,
				Action:     ar.Action,
				Resource:   ar.Resource,
				ResourceID: r.PathValue("id"),
				StatusCode: status,
				IP:         clientIP(r),
				Metadata:   note.Metadata,
			})
		})
	}
}
