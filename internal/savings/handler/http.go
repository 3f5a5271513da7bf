// Package handler exposes the savings reports over HTTP.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"techtrends/backend/internal/platform/httpjson"
	"techtrends/backend/internal/savings/domain"
	"techtrends/backend/internal/savings/service"
)

// Aggregator is the savings computation the handler delegates to.
type Aggregator interface {
	AggregateByProject(ctx context.Context, projectID uuid.UUID, start, end time.Time) (*domain.Aggregate, error)
	AggregateByClient(ctx context.Context, clientID uuid.UUID, start, end time.Time) (*domain.Aggregate, error)
}

// ProjectResponse is the body of a successful by-project report.
type ProjectResponse struct {
	ProjectID      uuid.UUID `json:"ProjectId"`
	TotalTimeSaved int64     `json:"TotalTimeSaved"`
	TotalCostSaved float64   `json:"TotalCostSaved"`
}

// ClientResponse is the body of a successful by-client report.
type ClientResponse struct {
	ClientID       uuid.UUID `json:"ClientId"`
	TotalTimeSaved int64     `json:"TotalTimeSaved"`
	TotalCostSaved float64   `json:"TotalCostSaved"`
}

// Server serves GET /savings/by-project and GET /savings/by-client.
type Server struct {
	agg Aggregator
}

// NewServer returns a savings HTTP server backed by agg.
func NewServer(agg Aggregator) *Server {
	return &Server{agg: agg}
}

// ByProject handles GET /savings/by-project?projectId=&startDate=&endDate=.
func (s *Server) ByProject(w http.ResponseWriter, r *http.Request) {
	id, start, end, err := parseQuery(r, "projectId")
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	agg, err := s.agg.AggregateByProject(r.Context(), id, start, end)
	if err != nil {
		writeAggregateError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, ProjectResponse{
		ProjectID:      agg.ScopeID,
		TotalTimeSaved: agg.TotalTimeSaved,
		TotalCostSaved: agg.TotalCostSaved,
	})
}

// ByClient handles GET /savings/by-client?clientId=&startDate=&endDate=.
func (s *Server) ByClient(w http.ResponseWriter, r *http.Request) {
	id, start, end, err := parseQuery(r, "clientId")
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	agg, err := s.agg.AggregateByClient(r.Context(), id, start, end)
	if err != nil {
		writeAggregateError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, ClientResponse{
		ClientID:       agg.ScopeID,
		TotalTimeSaved: agg.TotalTimeSaved,
		TotalCostSaved: agg.TotalCostSaved,
	})
}

func writeAggregateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRange):
		httpjson.Error(w, http.StatusBadRequest, "Start date cannot be after end date.")
	case errors.Is(err, service.ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, "No data found for the given parameters.")
	default:
		httpjson.Error(w, http.StatusInternalServerError, "Error retrieving savings data from the database")
	}
}

// dateLayouts are the accepted startDate/endDate formats, tried in order. Dates without a zone are UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

func parseQuery(r *http.Request, idParam string) (uuid.UUID, time.Time, time.Time, error) {
	q := r.URL.Query()
	raw := q.Get(idParam)
	if raw == "" {
		return uuid.Nil, time.Time{}, time.Time{}, fmt.Errorf("%s is required", idParam)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, time.Time{}, time.Time{}, fmt.Errorf("%s must be a valid identifier", idParam)
	}
	start, err := parseDate(q.Get("startDate"))
	if err != nil {
		return uuid.Nil, time.Time{}, time.Time{}, fmt.Errorf("startDate: %w", err)
	}
	end, err := parseDate(q.Get("endDate"))
	if err != nil {
		return uuid.Nil, time.Time{}, time.Time{}, fmt.Errorf("endDate: %w", err)
	}
	return id, start, end, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("is required")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}
