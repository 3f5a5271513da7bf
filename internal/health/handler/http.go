// Package handler serves the HTTP readiness probe.
package handler

import (
	"context"
	"log"
	"net/http"

	"techtrends/backend/internal/platform/httpjson"
)

// Checker reports readiness.
type Checker interface {
	Check(ctx context.Context) error
}

// StatusResponse is the /healthz body.
type StatusResponse struct {
	Status string `json:"status"`
}

// Server serves GET /healthz.
type Server struct {
	checker Checker
}

// NewServer returns a health HTTP server. A nil checker always reports SERVING.
func NewServer(checker Checker) *Server {
	return &Server{checker: checker}
}

// Healthz responds 200 SERVING when ready, 503 NOT_SERVING otherwise.
func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	if s.checker != nil {
		if err := s.checker.Check(r.Context()); err != nil {
			log.Printf("health: not serving: %v", err)
			httpjson.Write(w, http.StatusServiceUnavailable, StatusResponse{Status: "NOT_SERVING"})
			return
		}
	}
	httpjson.Write(w, http.StatusOK, StatusResponse{Status: "SERVING"})
}
