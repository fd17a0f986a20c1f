package adapthttp

import (
	"log/slog"
	"net/http"
	"time"

	"portal/internal/app"
)

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	auth     *app.AuthService
	sessions *app.SessionService
	issues   *app.IssueService
	cookie   sessionCookie
	sso      *SSO
	log      *slog.Logger
	metrics  *metrics
}

// New creates a Server wired to the given application services. sso may be
// nil when no OIDC provider is configured. secure controls the Secure flag
// on the session cookie and should be true outside local/dev environments.
func New(auth *app.AuthService, sessions *app.SessionService, issues *app.IssueService, sso *SSO, secure bool, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		auth:     auth,
		sessions: sessions,
		issues:   issues,
		cookie:   sessionCookie{secure: secure, maxAge: int(sessions.TokenTTL() / time.Second)},
		sso:      sso,
		log:      log,
		metrics:  newMetrics(),
	}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	api.HandleFunc("/auth/signup", s.handleSignup)
	api.HandleFunc("/auth/login", s.handleLogin)
	api.HandleFunc("/auth/logout", s.handleLogout)
	api.HandleFunc("/auth/refresh", s.handleRefresh)
	api.Handle("/auth/session", s.authMiddleware(http.HandlerFunc(s.handleSession)))

	api.HandleFunc("/auth/sso/login", s.handleSSOLogin)
	api.HandleFunc("/auth/sso/callback", s.handleSSOCallback)

	api.Handle("/issues", s.authMiddleware(http.HandlerFunc(s.handleIssues)))
	api.Handle("/issues/close", s.authMiddleware(http.HandlerFunc(s.handleIssueClose)))
	api.Handle("/issues/reopen", s.authMiddleware(http.HandlerFunc(s.handleIssueReopen)))
	api.Handle("/issues/summary", s.authMiddleware(http.HandlerFunc(s.handleIssueSummary)))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", withNoCache(api)))
	root.Handle("/metrics", s.metrics.handler())

	return s.loggingMiddleware(root)
}
