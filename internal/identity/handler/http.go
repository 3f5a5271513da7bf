// Package handler implements the login endpoint.
package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"techtrends/backend/internal/audit"
	"techtrends/backend/internal/identity/service"
	"techtrends/backend/internal/platform/httpjson"
)

// Authenticator is the login operation the handler delegates to.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*service.LoginResult, error)
}

// LoginRequest is the body of POST /api/Authenticate/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token and its expiry.
type LoginResponse struct {
	Token      string    `json:"token"`
	Expiration time.Time `json:"expiration"`
}

// Server serves the authentication endpoint.
type Server struct {
	auth Authenticator
}

// NewServer returns an authentication HTTP server.
func NewServer(auth Authenticator) *Server {
	return &Server{auth: auth}
}

// Login handles POST /api/Authenticate/login.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		httpjson.Error(w, http.StatusBadRequest, "username and password are required")
		return
	}
	res, err := s.auth.Login(r.Context(), req.Username, req.Password)
	userID := ""
	if err == nil {
		userID = res.UserID
	}
	audit.Annotate(r.Context(), userID, map[string]string{"username": req.Username})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpjson.Error(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		log.Printf("identity: login: %v", err)
		httpjson.Error(w, http.StatusInternalServerError, "login failed")
		return
	}
	httpjson.Write(w, http.StatusOK, LoginResponse{Token: res.Token, Expiration: res.ExpiresAt.UTC()})
}
