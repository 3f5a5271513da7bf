// Package handler implements the job telemetry CRUD endpoints under /api/JobTelemetries.
package handler

import (
	"log"
	"net/http"
	"strconv"

	"techtrends/backend/internal/jobtelemetry/codec"
	"techtrends/backend/internal/jobtelemetry/repository"
	"techtrends/backend/internal/platform/httpjson"
)

const basePath = "/api/JobTelemetries"

// Server serves job telemetry records backed by a repository.
type Server struct {
	repo repository.Repository
}

// NewServer returns a job telemetry HTTP server.
func NewServer(repo repository.Repository) *Server {
	return &Server{repo: repo}
}

// List handles GET /api/JobTelemetries.
func (s *Server) List(w http.ResponseWriter, r *http.Request) {
	list, err := s.repo.List(r.Context())
	if err != nil {
		log.Printf("jobtelemetry: list: %v", err)
		httpjson.Error(w, http.StatusInternalServerError, "failed to list telemetry")
		return
	}
	out := make([]codec.Payload, 0, len(list))
	for _, t := range list {
		out = append(out, codec.FromDomain(t))
	}
	httpjson.Write(w, http.StatusOK, out)
}

// Get handles GET /api/JobTelemetries/{id}.
func (s *Server) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	t, err := s.repo.GetByID(r.Context(), id)
	if err != nil {
		log.Printf("jobtelemetry: get %d: %v", id, err)
		httpjson.Error(w, http.StatusInternalServerError, "failed to get telemetry")
		return
	}
	if t == nil {
		httpjson.Error(w, http.StatusNotFound, "Telemetry not found.")
		return
	}
	httpjson.Write(w, http.StatusOK, codec.FromDomain(t))
}

// Create handles POST /api/JobTelemetries. Responds 201 with the stored record and its Location.
func (s *Server) Create(w http.ResponseWriter, r *http.Request) {
	var p codec.Payload
	if err := httpjson.Decode(r, &p); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	t, err := p.ToDomain()
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	t.ID = 0
	if err := s.repo.Create(r.Context(), t); err != nil {
		log.Printf("jobtelemetry: create: %v", err)
		httpjson.Error(w, http.StatusInternalServerError, "failed to create telemetry")
		return
	}
	w.Header().Set("Location", basePath+"/"+strconv.FormatInt(t.ID, 10))
	httpjson.Write(w, http.StatusCreated, codec.FromDomain(t))
}

// Update handles PUT /api/JobTelemetries/{id}. The body id must match the path id.
func (s *Server) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var p codec.Payload
	if err := httpjson.Decode(r, &p); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if p.ID != id {
		httpjson.Error(w, http.StatusBadRequest, "id in body does not match id in path")
		return
	}
	t, err := p.ToDomain()
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	found, err := s.repo.Update(r.Context(), t)
	if err != nil {
		log.Printf("jobtelemetry: update %d: %v", id, err)
		httpjson.Error(w, http.StatusInternalServerError, "failed to update telemetry")
		return
	}
	if !found {
		httpjson.Error(w, http.StatusNotFound, "Telemetry not found.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /api/JobTelemetries/{id}.
func (s *Server) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	found, err := s.repo.Delete(r.Context(), id)
	if err != nil {
		log.Printf("jobtelemetry: delete %d: %v", id, err)
		httpjson.Error(w, http.StatusInternalServerError, "failed to delete telemetry")
		return
	}
	if !found {
		httpjson.Error(w, http.StatusNotFound, "Telemetry not found.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		httpjson.Error(w, http.StatusBadRequest, "id must be a positive integer")
		return 0, false
	}
	return id, true
}
