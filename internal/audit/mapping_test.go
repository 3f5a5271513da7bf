package audit

import (
	"net/http"
	"testing"
)

func TestParseRoute(t *testing.T) {
	testCases := []struct {
		method  string
		pattern string
		status  int
		want    ActionResource
	}{
		{http.MethodPost, "POST /api/JobTelemetries", 201, ActionResource{"create", "job_telemetry"}},
		{http.MethodPut, "PUT /api/JobTelemetries/{id}", 204, ActionResource{"update", "job_telemetry"}},
		{http.MethodDelete, "DELETE /api/JobTelemetries/{id}", 404, ActionResource{"delete", "job_telemetry"}},
		{http.MethodGet, "GET /api/JobTelemetries/{id}", 200, ActionResource{"get", "job_telemetry"}},
		{http.MethodGet, "GET /api/AuditLogs", 200, ActionResource{"list", "audit_log"}},
		{http.MethodGet, "GET /savings/by-project", 200, ActionResource{"list", "saving"}},
		{http.MethodPost, "POST /api/Authenticate/login", 200, ActionResource{"login", "session"}},
		{http.MethodPost, "POST /api/Authenticate/login", 401, ActionResource{"login_failure", "session"}},
		{http.MethodPatch, "/", 200, ActionResource{"update", "unknown"}},
		{"OPTIONS", "/api/Things", 200, ActionResource{"options", "thing"}},
	}
	for _, tc := range testCases {
		t.Run(tc.pattern, func(t *testing.T) {
			if got := ParseRoute(tc.method, tc.pattern, tc.status); got != tc.want {
				t.Errorf("ParseRoute(%q, %q, %d) = %+v, want %+v", tc.method, tc.pattern, tc.status, got, tc.want)
			}
		})
	}
}
