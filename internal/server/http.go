// Package server wires the HTTP API routes and the gRPC health endpoint.
package server

import (
	"net/http"

	"techtrends/backend/internal/audit"
	audithandler "techtrends/backend/internal/audit/handler"
	healthhandler "techtrends/backend/internal/health/handler"
	identityhandler "techtrends/backend/internal/identity/handler"
	jobtelemetryhandler "techtrends/backend/internal/jobtelemetry/handler"
	"techtrends/backend/internal/policy/engine"
	savingshandler "techtrends/backend/internal/savings/handler"
	"techtrends/backend/internal/server/middleware"
	"techtrends/backend/internal/telemetry"
)

// Deps holds the handlers and cross-cutting dependencies for the HTTP API.
type Deps struct {
	Savings      *savingshandler.Server
	JobTelemetry *jobtelemetryhandler.Server
	// Identity serves login. If nil, the login route is not registered.
	Identity *identityhandler.Server
	// AuditLogs serves the audit log listing. If nil, the route is not registered.
	AuditLogs *audithandler.Server
	// Health serves /healthz. If nil, a handler that always reports SERVING is used.
	Health *healthhandler.Server

	// Tokens validates bearer tokens on protected routes. Unused when AuthDisabled is true.
	Tokens middleware.TokenValidator
	// Authz decides access to protected routes.
	Authz engine.Authorizer
	// Audit records state-changing requests and login attempts. May be nil.
	Audit audit.AuditLogger
	// Emitter receives one http_request event per request. May be nil.
	Emitter telemetry.EventEmitter
	// AuthDisabled runs every protected route as the development principal.
	AuthDisabled bool
}

// NewHTTPHandler returns the API router.
//
// Route → handler mapping:
//   - GET  /savings/by-project, /savings/by-client       → internal/savings/handler
//   - /api/JobTelemetries[/{id}] CRUD                    → internal/jobtelemetry/handler
//   - GET  /api/AuditLogs                                → internal/audit/handler
//   - POST /api/Authenticate/login (public)              → internal/identity/handler
//   - GET  /healthz (public)                             → internal/health/handler
//
// Protected routes run Telemetry → Auth → Authorize → Audit → handler. Middleware wraps each route
// rather than the mux so the matched pattern is visible to Telemetry.
func NewHTTPHandler(deps Deps) http.Handler {
	mux := http.NewServeMux()
	public := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, middleware.Chain(h, middleware.Telemetry(deps.Emitter), middleware.Audit(deps.Audit)))
	}
	protected := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, middleware.Chain(h,
			middleware.Telemetry(deps.Emitter),
			middleware.Auth(deps.Tokens, deps.AuthDisabled),
			middleware.Authorize(deps.Authz),
			middleware.Audit(deps.Audit),
		))
	}

	if deps.Savings != nil {
		protected("GET /savings/by-project", deps.Savings.ByProject)
		protected("GET /savings/by-client", deps.Savings.ByClient)
		protected("GET /api/JobTelemetries/savingsByProject", deps.Savings.ByProject)
		protected("GET /api/JobTelemetries/savingsByClient", deps.Savings.ByClient)
	}
	if deps.JobTelemetry != nil {
		protected("GET /api/JobTelemetries", deps.JobTelemetry.List)
		protected("POST /api/JobTelemetries", deps.JobTelemetry.Create)
		protected("GET /api/JobTelemetries/{id}", deps.JobTelemetry.Get)
		protected("PUT /api/JobTelemetries/{id}", deps.JobTelemetry.Update)
		protected("DELETE /api/JobTelemetries/{id}", deps.JobTelemetry.Delete)
	}
	if deps.AuditLogs != nil {
		protected("GET /api/AuditLogs", deps.AuditLogs.List)
	}
	if deps.Identity != nil {
		public("POST /api/Authenticate/login", deps.Identity.Login)
	}
	health := deps.Health
	if health == nil {
		health = healthhandler.NewServer(nil)
	}
	public("GET /healthz", health.Healthz)
	return mux
}
