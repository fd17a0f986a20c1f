// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"errors"
	"net/http"
	"time"

	"portal/internal/app"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req credentialsRequest
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Email == "" || len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, errors.New("email and a password of at least 8 characters are required"))
		return
	}

	user, token, err := s.auth.Signup(r.Context(), req.Email, req.Password)
	if errors.Is(err, app.ErrUserExists) {
		writeError(w, http.StatusConflict, err)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.cookie.set(w, token)
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "userId": user.ID})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req credentialsRequest
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	user, token, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, app.ErrInvalidCredentials) {
		s.metrics.logins.WithLabelValues("invalid_credentials").Inc()
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if err != nil {
		s.metrics.logins.WithLabelValues("error").Inc()
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.metrics.logins.WithLabelValues("ok").Inc()
	s.cookie.set(w, token)
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "userId": user.ID})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	s.cookie.clear(w)
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// handleSession returns the identity behind the current session. Runs behind
// authMiddleware, so the claims are already verified and memoized. Only the
// user id is part of the stable contract; no other claims are exposed.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	claims := sessionFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"userId": claims.UserID})
}

// handleRefresh is the bearer-token variant for non-cookie clients. Unlike
// cookie sessions, which silently degrade to anonymous, an invalid or
// missing token here is an explicit rejection.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	token := bearerToken(r)
	if token == "" {
		s.metrics.refreshes.WithLabelValues("missing").Inc()
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	newToken, expiresAt, err := s.sessions.Refresh(token)
	if err != nil {
		s.metrics.refreshes.WithLabelValues("rejected").Inc()
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	s.metrics.refreshes.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, map[string]any{
		"token":     newToken,
		"expiresAt": expiresAt.UTC().Format(time.RFC3339),
	})
}
