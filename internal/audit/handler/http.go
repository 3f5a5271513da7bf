// Package handler serves the audit log listing.
package handler

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"techtrends/backend/internal/audit/repository"
	"techtrends/backend/internal/platform/httpjson"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// AuditLogResponse is one entry of GET /api/AuditLogs.
type AuditLogResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId,omitempty"`
	Action     string    `json:"action"`
	Resource   string    `json:"resource"`
	ResourceID string    `json:"resourceId,omitempty"`
	StatusCode int       `json:"statusCode"`
	IP         string    `json:"ip"`
	Metadata   string    `json:"metadata,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Server serves audit logs.
type Server struct {
	repo repository.Repository
}

// NewServer returns an audit HTTP server.
func NewServer(repo repository.Repository) *Server {
	return &Server{repo: repo}
}

// List handles GET /api/AuditLogs?limit=&offset=. limit defaults to 50 and is capped at 500.
func (s *Server) List(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit", defaultLimit)
	if !ok {
		return
	}
	offset, ok := queryInt(w, r, "offset", 0)
	if !ok {
		return
	}
	if limit == 0 {
		limit = defaultLimit
	}
	limit = min(limit, maxLimit)

	list, err := s.repo.List(r.Context(), limit, offset)
	if err != nil {
		log.Printf("audit: list: %v", err)
		httpjson.Error(w, http.StatusInternalServerError, "failed to list audit logs")
		return
	}
	out := make([]AuditLogResponse, 0, len(list))
	for _, a := range list {
		out = append(out, AuditLogResponse{
			ID:         a.ID,
			UserID:     a.UserID,
			Action:     a.Action,
			Resource:   a.Resource,
			ResourceID: a.ResourceID,
			StatusCode: a.StatusCode,
			IP:         a.IP,
			Metadata:   a.Metadata,
			CreatedAt:  a.CreatedAt,
		})
	}
	httpjson.Write(w, http.StatusOK, out)
}

func queryInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		httpjson.Error(w, http.StatusBadRequest, name+" must be a non-negative integer")
		return 0, false
	}
	return n, true
}
