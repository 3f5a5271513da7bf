package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"techtrends/backend/internal/jobtelemetry/codec"
	"techtrends/backend/internal/jobtelemetry/domain"
)

// mockTelemetryRepo implements repository.Repository for tests.
type mockTelemetryRepo struct {
	records map[int64]*domain.JobTelemetry
	nextID  int64
	err     error
	created []*domain.JobTelemetry
}

func newMockRepo() *mockTelemetryRepo {
	return &mockTelemetryRepo{records: make(map[int64]*domain.JobTelemetry), nextID: 1}
}

func (m *mockTelemetryRepo) GetByID(ctx context.Context, id int64) (*domain.JobTelemetry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.records[id], nil
}

func (m *mockTelemetryRepo) List(ctx context.Context) ([]*domain.JobTelemetry, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*domain.JobTelemetry
	for id := int64(1); id < m.nextID; id++ {
		if t, ok := m.records[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockTelemetryRepo) Create(ctx context.Context, t *domain.JobTelemetry) error {
	if m.err != nil {
		return m.err
	}
	t.ID = m.nextID
	m.nextID++
	m.records[t.ID] = t
	m.created = append(m.created, t)
	return nil
}

func (m *mockTelemetryRepo) Update(ctx context.Context, t *domain.JobTelemetry) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.records[t.ID]; !ok {
		return false, nil
	}
	m.records[t.ID] = t
	return true, nil
}

func (m *mockTelemetryRepo) Delete(ctx context.Context, id int64) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.records[id]; !ok {
		return false, nil
	}
	delete(m.records, id)
	return true, nil
}

func newMux(repo *mockTelemetryRepo) *http.ServeMux {
	srv := NewServer(repo)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/JobTelemetries", srv.List)
	mux.HandleFunc("POST /api/JobTelemetries", srv.Create)
	mux.HandleFunc("GET /api/JobTelemetries/{id}", srv.Get)
	mux.HandleFunc("PUT /api/JobTelemetries/{id}", srv.Update)
	mux.HandleFunc("DELETE /api/JobTelemetries/{id}", srv.Delete)
	return mux
}

func do(mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func seed(repo *mockTelemetryRepo) *domain.JobTelemetry {
	pid := int64(7)
	ht := 15
	t := &domain.JobTelemetry{
		ProcessID: &pid,
		JobID:     "job-1",
		HumanTime: &ht,
		EntryDate: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	}
	_ = repo.Create(context.Background(), t)
	return t
}

func TestCreate_Success(t *testing.T) {
	repo := newMockRepo()
	rec := do(newMux(repo), http.MethodPost, "/api/JobTelemetries",
		`{"proccesId":"42","jobId":"j","humanTime":10,"entryDate":"2024-01-05T10:00:00Z"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/api/JobTelemetries/1" {
		t.Errorf("Location = %q", loc)
	}
	if len(repo.created) != 1 {
		t.Fatalf("created = %d, want 1", len(repo.created))
	}
	got := repo.created[0]
	if got.ProcessID == nil || *got.ProcessID != 42 {
		t.Errorf("ProcessID = %v, want 42", got.ProcessID)
	}
	var body codec.Payload
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.ID != 1 || body.ProccesID != "42" {
		t.Errorf("body = %+v", body)
	}
}

func TestCreate_NonCanonicalProcessRefStoredAsNull(t *testing.T) {
	for _, ref := range []string{"abc", "007", " 42 "} {
		t.Run(ref, func(t *testing.T) {
			repo := newMockRepo()
			rec := do(newMux(repo), http.MethodPost, "/api/JobTelemetries",
				`{"proccesId":"`+ref+`","entryDate":"2024-01-05T10:00:00Z"}`)
			if rec.Code != http.StatusCreated {
				t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body.String())
			}
			if got := repo.created[0].ProcessID; got != nil {
				t.Errorf("ProcessID = %d, want nil", *got)
			}
			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if v, ok := body["proccesId"]; ok {
				t.Errorf("proccesId = %v, want omitted", v)
			}
		})
	}
}

func TestCreate_IgnoresClientID(t *testing.T) {
	repo := newMockRepo()
	rec := do(newMux(repo), http.MethodPost, "/api/JobTelemetries",
		`{"id":99,"entryDate":"2024-01-05T10:00:00Z"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if repo.created[0].ID != 1 {
		t.Errorf("ID = %d, want store-assigned 1", repo.created[0].ID)
	}
}

func TestCreate_BadRequest(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"malformed json", `{"jobId":`},
		{"missing entry date", `{"jobId":"j"}`},
		{"negative human time", `{"humanTime":-1,"entryDate":"2024-01-05T10:00:00Z"}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newMockRepo()
			rec := do(newMux(repo), http.MethodPost, "/api/JobTelemetries", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if len(repo.created) != 0 {
				t.Error("repository should not be called")
			}
		})
	}
}

func TestGet(t *testing.T) {
	repo := newMockRepo()
	seed(repo)
	mux := newMux(repo)

	rec := do(mux, http.MethodGet, "/api/JobTelemetries/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body codec.Payload
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.JobID != "job-1" || body.HumanTime == nil || *body.HumanTime != 15 {
		t.Errorf("body = %+v", body)
	}

	if rec := do(mux, http.MethodGet, "/api/JobTelemetries/2", ""); rec.Code != http.StatusNotFound {
		t.Errorf("missing: status = %d, want 404", rec.Code)
	}
	if rec := do(mux, http.MethodGet, "/api/JobTelemetries/abc", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad id: status = %d, want 400", rec.Code)
	}
}

func TestList(t *testing.T) {
	repo := newMockRepo()
	mux := newMux(repo)

	rec := do(mux, http.MethodGet, "/api/JobTelemetries", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("empty list body = %q, want []", rec.Body.String())
	}

	seed(repo)
	seed(repo)
	rec = do(mux, http.MethodGet, "/api/JobTelemetries", "")
	var body []codec.Payload
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body) != 2 {
		t.Errorf("len = %d, want 2", len(body))
	}
}

func TestUpdate(t *testing.T) {
	testCases := []struct {
		name string
		path string
		body string
		code int
	}{
		{"success", "/api/JobTelemetries/1", `{"id":1,"jobId":"changed","entryDate":"2024-02-01T00:00:00Z"}`, http.StatusNoContent},
		{"id mismatch", "/api/JobTelemetries/1", `{"id":2,"entryDate":"2024-02-01T00:00:00Z"}`, http.StatusBadRequest},
		{"not found", "/api/JobTelemetries/5", `{"id":5,"entryDate":"2024-02-01T00:00:00Z"}`, http.StatusNotFound},
		{"missing entry date", "/api/JobTelemetries/1", `{"id":1}`, http.StatusBadRequest},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newMockRepo()
			seed(repo)
			rec := do(newMux(repo), http.MethodPut, tc.path, tc.body)
			if rec.Code != tc.code {
				t.Errorf("status = %d, want %d; body %s", rec.Code, tc.code, rec.Body.String())
			}
		})
	}

	repo := newMockRepo()
	seed(repo)
	do(newMux(repo), http.MethodPut, "/api/JobTelemetries/1", `{"id":1,"jobId":"changed","entryDate":"2024-02-01T00:00:00Z"}`)
	if repo.records[1].JobID != "changed" {
		t.Errorf("JobID = %q, want changed", repo.records[1].JobID)
	}
}

func TestDelete(t *testing.T) {
	repo := newMockRepo()
	seed(repo)
	mux := newMux(repo)

	if rec := do(mux, http.MethodDelete, "/api/JobTelemetries/1", ""); rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if _, ok := repo.records[1]; ok {
		t.Error("record should be deleted")
	}
	if rec := do(mux, http.MethodDelete, "/api/JobTelemetries/1", ""); rec.Code != http.StatusNotFound {
		t.Errorf("second delete: status = %d, want 404", rec.Code)
	}
}

func TestRepositoryError(t *testing.T) {
	repo := newMockRepo()
	repo.err = errors.New("connection refused")
	mux := newMux(repo)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec := do(mux, method, "/api/JobTelemetries/1", "")
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("%s: status = %d, want 500", method, rec.Code)
		}
		if strings.Contains(rec.Body.String(), "connection refused") {
			t.Errorf("%s: response leaks store error", method)
		}
	}
}
