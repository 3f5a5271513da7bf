package service

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"techtrends/backend/internal/identity/domain"
	"techtrends/backend/internal/identity/repository"
	"techtrends/backend/internal/security"
)

// mockUserRepo implements UserRepo for tests.
type mockUserRepo struct {
	users  map[string]*domain.User
	getErr error
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.users[username], nil
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	if _, ok := m.users[u.Username]; ok {
		return repository.ErrUsernameTaken
	}
	m.users[u.Username] = u
	return nil
}

const testPassword = "CorrectHorse42battery"

func newTestService(t *testing.T) (*AuthService, *mockUserRepo, *security.TokenProvider) {
	t.Helper()
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	repo := &mockUserRepo{users: make(map[string]*domain.User)}
	svc, err := NewAuthService(repo, security.NewHasher(bcrypt.MinCost), tokens)
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	return svc, repo, tokens
}

func TestLogin_Success(t *testing.T) {
	svc, _, tokens := newTestService(t)
	ctx := context.Background()
	u, err := svc.CreateUser(ctx, "alice", testPassword, domain.RoleWriter)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	res, err := svc.Login(ctx, " alice ", testPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token == "" || res.ExpiresAt.IsZero() {
		t.Fatalf("result = %+v", res)
	}
	uid, role, err := tokens.ValidateAccess(res.Token)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if uid != u.ID || role != string(domain.RoleWriter) {
		t.Errorf("claims userID=%q role=%q", uid, role)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.CreateUser(ctx, "alice", testPassword, domain.RoleReader); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	testCases := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "alice", "WrongPassword99"},
		{"unknown user", "bob", testPassword},
		{"empty username", "", testPassword},
		{"empty password", "alice", ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Login(ctx, tc.username, tc.password); !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("Login err = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestLogin_RepoError(t *testing.T) {
	svc, repo, _ := newTestService(t)
	repo.getErr = errors.New("db down")
	_, err := svc.Login(context.Background(), "alice", testPassword)
	if err == nil || errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login err = %v, want repository error", err)
	}
}

func TestCreateUser(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, "writer", testPassword, "")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.Role != domain.RoleReader {
		t.Errorf("Role = %q, want reader default", u.Role)
	}
	if u.PasswordHash == testPassword {
		t.Error("password stored in plaintext")
	}
	if _, ok := repo.users["writer"]; !ok {
		t.Error("user not persisted")
	}
	if _, err := svc.CreateUser(ctx, "writer", testPassword, domain.RoleReader); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("duplicate err = %v, want ErrUsernameTaken", err)
	}
}

func TestValidatePassword(t *testing.T) {
	testCases := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", testPassword, false},
		{"too short", "Short1", true},
		{"no upper", "lowercase12345", true},
		{"no lower", "UPPERCASE12345", true},
		{"no number", "NoNumbersHereAtAll", true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := validatePassword(tc.password); (err != nil) != tc.wantErr {
				t.Errorf("validatePassword(%q) err = %v, wantErr %v", tc.password, err, tc.wantErr)
			}
		})
	}
}
