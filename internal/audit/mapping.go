package audit

import (
	"net/http"
	"strings"
	"unicode"
)

// ActionResource holds action and resource derived from a route.
type ActionResource struct {
	Action   string
	Resource string
}

const loginRoute = "POST /api/Authenticate/login"

// ParseRoute returns action and resource for a method and matched ServeMux pattern
// (e.g. "PUT /api/JobTelemetries/{id}" → update, job_telemetry).
// Action is a verb derived from the method: get, list, create, update, delete, or the lowercase method.
// Resource is the first literal path segment after /api, singular and snake_case.
// The login route maps to login or login_failure on resource "session" depending on status.
func ParseRoute(method, pattern string, status int) ActionResource {
	if pattern == loginRoute {
		if status >= 200 && status < 300 {
			return ActionResource{Action: "login", Resource: "session"}
		}
		return ActionResource{Action: "login_failure", Resource: "session"}
	}
	path := pattern
	if _, p, ok := strings.Cut(pattern, " "); ok {
		path = p
	}
	resource, hasID := "unknown", false
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		switch {
		case seg == "" || seg == "api":
			continue
		case strings.HasPrefix(seg, "{"):
			hasID = true
		case resource == "unknown":
			resource = toResource(seg)
		}
	}
	return ActionResource{Action: methodToAction(method, hasID), Resource: resource}
}

func methodToAction(method string, hasID bool) string {
	switch method {
	case http.MethodGet, http.MethodHead:
		if hasID {
			return "get"
		}
		return "list"
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return strings.ToLower(method)
	}
}

// toResource turns a path segment such as JobTelemetries into job_telemetry.
func toResource(seg string) string {
	switch {
	case strings.HasSuffix(seg, "ies"):
		seg = strings.TrimSuffix(seg, "ies") + "y"
	case strings.HasSuffix(seg, "s") && !strings.HasSuffix(seg, "ss"):
		seg = strings.TrimSuffix(seg, "s")
	}
	var b strings.Builder
	for i, r := range seg {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		if r == '-' {
			r = '_'
		}
		b.WriteRune(r)
	}
	return b.String()
}
