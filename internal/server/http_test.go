package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"techtrends/backend/internal/audit"
	auditdomain "techtrends/backend/internal/audit/domain"
	audithandler "techtrends/backend/internal/audit/handler"
	identityhandler "techtrends/backend/internal/identity/handler"
	"techtrends/backend/internal/identity/service"
	jtdomain "techtrends/backend/internal/jobtelemetry/domain"
	jobtelemetryhandler "techtrends/backend/internal/jobtelemetry/handler"
	"techtrends/backend/internal/policy/engine"
	savingsdomain "techtrends/backend/internal/savings/domain"
	savingshandler "techtrends/backend/internal/savings/handler"
	savingsrepo "techtrends/backend/internal/savings/repository"
	savingsservice "techtrends/backend/internal/savings/service"
	"techtrends/backend/internal/security"
)

// memTelemetryRepo is a minimal in-memory jobtelemetry repository for router tests.
type memTelemetryRepo struct {
	mu      sync.Mutex
	records map[int64]*jtdomain.JobTelemetry
	nextID  int64
}

func newMemTelemetryRepo() *memTelemetryRepo {
	return &memTelemetryRepo{records: make(map[int64]*jtdomain.JobTelemetry)}
}

func (m *memTelemetryRepo) GetByID(ctx context.Context, id int64) (*jtdomain.JobTelemetry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[id], nil
}

func (m *memTelemetryRepo) List(ctx context.Context) ([]*jtdomain.JobTelemetry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*jtdomain.JobTelemetry, 0, len(m.records))
	for _, t := range m.records {
		out = append(out, t)
	}
	return out, nil
}

func (m *memTelemetryRepo) Create(ctx context.Context, t *jtdomain.JobTelemetry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	t.ID = m.nextID
	m.records[t.ID] = t
	return nil
}

func (m *memTelemetryRepo) Update(ctx context.Context, t *jtdomain.JobTelemetry) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[t.ID]; !ok {
		return false, nil
	}
	m.records[t.ID] = t
	return true, nil
}

func (m *memTelemetryRepo) Delete(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return false, nil
	}
	delete(m.records, id)
	return true, nil
}

// stubAuth implements identityhandler.Authenticator.
type stubAuth struct{}

func (stubAuth) Login(ctx context.Context, username, password string) (*service.LoginResult, error) {
	if username == "alice" && password == "Secret-password1" {
		return &service.LoginResult{Token: "issued", ExpiresAt: time.Now().Add(time.Hour)}, nil
	}
	return nil, service.ErrInvalidCredentials
}

// memAuditRepo implements the audit repository and logger for router tests.
type memAuditRepo struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (m *memAuditRepo) LogEvent(ctx context.Context, e audit.Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
}

func (m *memAuditRepo) Create(ctx context.Context, a *auditdomain.AuditLog) error { return nil }

func (m *memAuditRepo) List(ctx context.Context, limit, offset int) ([]*auditdomain.AuditLog, error) {
	return nil, nil
}

type fixture struct {
	audits    *memAuditRepo
	handler   http.Handler
	tokens    *security.TokenProvider
	projectID uuid.UUID
	clientID  uuid.UUID
}

func newFixture(t *testing.T, authDisabled bool) *fixture {
	t.Helper()
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	authz, err := engine.NewOPAEvaluator(context.Background(), "")
	if err != nil {
		t.Fatalf("NewOPAEvaluator: %v", err)
	}

	store := savingsrepo.NewMemoryStore()
	clientID, projectID := uuid.New(), uuid.New()
	store.AddProject(projectID, clientID)
	store.AddProcess(1, projectID)
	pid, ht := int64(1), 25
	store.AddTelemetry(savingsdomain.TelemetryRow{
		ProcessID: &pid,
		HumanTime: &ht,
		EntryDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	})

	audits := &memAuditRepo{}
	h := NewHTTPHandler(Deps{
		Savings:      savingshandler.NewServer(savingsservice.NewAggregator(store)),
		JobTelemetry: jobtelemetryhandler.NewServer(newMemTelemetryRepo()),
		Identity:     identityhandler.NewServer(stubAuth{}),
		AuditLogs:    audithandler.NewServer(audits),
		Tokens:       tokens,
		Authz:        authz,
		Audit:        audits,
		AuthDisabled: authDisabled,
	})
	return &fixture{audits: audits, handler: h, tokens: tokens, projectID: projectID, clientID: clientID}
}

func (f *fixture) do(t *testing.T, method, path, role, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	if role != "" {
		token, _, err := f.tokens.IssueAccess("user-"+role, role, role)
		if err != nil {
			t.Fatalf("IssueAccess: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestHTTPHandler_Healthz(t *testing.T) {
	f := newFixture(t, false)
	rec := f.do(t, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestHTTPHandler_Savings(t *testing.T) {
	f := newFixture(t, false)
	window := "&startDate=2024-01-01&endDate=2024-01-31"

	testCases := []struct {
		name string
		path string
		role string
		code int
	}{
		{"project without token", "/savings/by-project?projectId=" + f.projectID.String() + window, "", http.StatusUnauthorized},
		{"project as reader", "/savings/by-project?projectId=" + f.projectID.String() + window, "reader", http.StatusOK},
		{"client as reader", "/savings/by-client?clientId=" + f.clientID.String() + window, "reader", http.StatusOK},
		{"client alias", "/api/JobTelemetries/savingsByClient?clientId=" + f.clientID.String() + window, "reader", http.StatusOK},
		{"project alias", "/api/JobTelemetries/savingsByProject?projectId=" + f.projectID.String() + window, "reader", http.StatusOK},
		{"unknown project", "/savings/by-project?projectId=" + uuid.NewString() + window, "reader", http.StatusNotFound},
		{"unknown role", "/savings/by-project?projectId=" + f.projectID.String() + window, "guest", http.StatusForbidden},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(t, http.MethodGet, tc.path, tc.role, "")
			if rec.Code != tc.code {
				t.Fatalf("status = %d, want %d; body %s", rec.Code, tc.code, rec.Body.String())
			}
			if tc.code != http.StatusOK {
				return
			}
			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if body["TotalTimeSaved"] != float64(25) {
				t.Errorf("TotalTimeSaved = %v, want 25", body["TotalTimeSaved"])
			}
		})
	}
}

func TestHTTPHandler_JobTelemetryWriteAccess(t *testing.T) {
	f := newFixture(t, false)
	body := `{"jobId":"j","humanTime":5,"entryDate":"2024-01-05T10:00:00Z"}`

	if rec := f.do(t, http.MethodPost, "/api/JobTelemetries", "reader", body); rec.Code != http.StatusForbidden {
		t.Errorf("reader create: status = %d, want 403", rec.Code)
	}
	rec := f.do(t, http.MethodPost, "/api/JobTelemetries", "writer", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("writer create: status = %d, want 201; body %s", rec.Code, rec.Body.String())
	}
	if rec := f.do(t, http.MethodGet, "/api/JobTelemetries/1", "reader", ""); rec.Code != http.StatusOK {
		t.Errorf("reader get: status = %d, want 200", rec.Code)
	}
	if rec := f.do(t, http.MethodDelete, "/api/JobTelemetries/1", "admin", ""); rec.Code != http.StatusNoContent {
		t.Errorf("admin delete: status = %d, want 204", rec.Code)
	}
}

func TestHTTPHandler_AuthDisabled(t *testing.T) {
	f := newFixture(t, true)
	body := `{"jobId":"j","entryDate":"2024-01-05T10:00:00Z"}`
	if rec := f.do(t, http.MethodPost, "/api/JobTelemetries", "", body); rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
}

func TestHTTPHandler_LoginIsPublic(t *testing.T) {
	f := newFixture(t, false)
	rec := f.do(t, http.MethodPost, "/api/Authenticate/login", "", `{"username":"alice","password":"Secret-password1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body identityhandler.LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Token != "issued" {
		t.Errorf("token = %q", body.Token)
	}
	if rec := f.do(t, http.MethodPost, "/api/Authenticate/login", "", `{"username":"alice","password":"wrong"}`); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad password: status = %d, want 401", rec.Code)
	}
}

func TestHTTPHandler_AuditTrail(t *testing.T) {
	f := newFixture(t, false)
	f.do(t, http.MethodPost, "/api/JobTelemetries", "writer", `{"jobId":"j","entryDate":"2024-01-05T10:00:00Z"}`)
	f.do(t, http.MethodPost, "/api/JobTelemetries", "reader", `{"jobId":"j","entryDate":"2024-01-05T10:00:00Z"}`)
	f.do(t, http.MethodGet, "/api/JobTelemetries/1", "reader", "")
	f.do(t, http.MethodPost, "/api/Authenticate/login", "", `{"username":"alice","password":"wrong"}`)

	if len(f.audits.entries) != 2 {
		t.Fatalf("entries = %+v, want the allowed write and the failed login", f.audits.entries)
	}
	if e := f.audits.entries[0]; e.Action != "create" || e.UserID != "user-writer" || e.StatusCode != http.StatusCreated {
		t.Errorf("write entry = %+v", e)
	}
	if e := f.audits.entries[1]; e.Action != "login_failure" || e.UserID != "" || e.Metadata != `{"username":"alice"}` {
		t.Errorf("login entry = %+v", e)
	}

	if rec := f.do(t, http.MethodGet, "/api/AuditLogs", "writer", ""); rec.Code != http.StatusForbidden {
		t.Errorf("writer list audit: status = %d, want 403", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/api/AuditLogs", "admin", ""); rec.Code != http.StatusOK {
		t.Errorf("admin list audit: status = %d, want 200", rec.Code)
	}
}
