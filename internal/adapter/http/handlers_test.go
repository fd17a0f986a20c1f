package adapthttp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	adapthttp "portal/internal/adapter/http"
	"portal/internal/adapter/memory"
	"portal/internal/app"
)

// ---------------------------------------------------------------------------
// Test-server helpers
// ---------------------------------------------------------------------------

type testEnv struct {
	srv      *httptest.Server
	db       *memory.DB
	sessions *app.SessionService
}

func newTestEnv(t *testing.T, tokenTTL time.Duration) *testEnv {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := memory.New()
	sessions := app.NewSessionService([]byte("0123456789abcdef0123456789abcdef"), tokenTTL, 0, log)
	auth := app.NewAuthService(db, sessions, log)
	issues := app.NewIssueService(db)

	srv := httptest.NewServer(adapthttp.New(auth, sessions, issues, nil, false, log).Handler())
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, db: db, sessions: sessions}
}

func (e *testEnv) request(t *testing.T, method, path string, body any, hdr map[string]string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, e.srv.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return m
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == "auth_token" {
			return c
		}
	}
	t.Fatal("response has no auth_token cookie")
	return nil
}

func cookieHeader(c *http.Cookie) map[string]string {
	return map[string]string{"Cookie": c.Name + "=" + c.Value}
}

// signup registers a user and returns the session cookie.
func (e *testEnv) signup(t *testing.T, email string) *http.Cookie {
	t.Helper()
	resp := e.request(t, http.MethodPost, "/api/auth/signup", map[string]any{
		"email": email, "password": "testpass123",
	}, nil)
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("signup failed with status %d", resp.StatusCode)
	}
	return sessionCookie(t, resp)
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestHealthEndpoint(t *testing.T) {
	e := newTestEnv(t, 0)

	resp := e.request(t, http.MethodGet, "/api/health", nil, nil)
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["ok"] != true {
		t.Fatalf("expected ok=true, got %v", body["ok"])
	}
}

func TestSignupSetsSessionCookie(t *testing.T) {
	e := newTestEnv(t, 0)

	resp := e.request(t, http.MethodPost, "/api/auth/signup", map[string]any{
		"email": "pat@example.com", "password": "testpass123",
	}, nil)
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	c := sessionCookie(t, resp)
	if !c.HttpOnly {
		t.Error("cookie must be HttpOnly")
	}
	if c.MaxAge != 604800 {
		t.Errorf("expected MaxAge 604800, got %d", c.MaxAge)
	}
	if c.Path != "/" {
		t.Errorf("expected Path /, got %q", c.Path)
	}
	if c.SameSite != http.SameSiteLaxMode {
		t.Errorf("expected SameSite=Lax, got %v", c.SameSite)
	}

	body := decodeBody(t, resp)
	if body["userId"] == nil {
		t.Fatal("response missing userId")
	}
}

func TestSessionCookieTracksTokenTTL(t *testing.T) {
	e := newTestEnv(t, 48*time.Hour)

	c := e.signup(t, "pat@example.com")
	if want := int((48 * time.Hour).Seconds()); c.MaxAge != want {
		t.Fatalf("expected cookie MaxAge %d to match the token TTL, got %d", want, c.MaxAge)
	}
}

func TestSignupValidation(t *testing.T) {
	e := newTestEnv(t, 0)

	resp := e.request(t, http.MethodPost, "/api/auth/signup", map[string]any{
		"email": "pat@example.com", "password": "short",
	}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for short password, got %d", resp.StatusCode)
	}

	e.signup(t, "taken@example.com")
	resp = e.request(t, http.MethodPost, "/api/auth/signup", map[string]any{
		"email": "taken@example.com", "password": "testpass123",
	}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate signup, got %d", resp.StatusCode)
	}
}

func TestLoginFlow(t *testing.T) {
	e := newTestEnv(t, 0)
	e.signup(t, "pat@example.com")

	resp := e.request(t, http.MethodPost, "/api/auth/login", map[string]any{
		"email": "pat@example.com", "password": "wrong-password",
	}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", resp.StatusCode)
	}

	resp = e.request(t, http.MethodPost, "/api/auth/login", map[string]any{
		"email": "pat@example.com", "password": "testpass123",
	}, nil)
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	c := sessionCookie(t, resp)

	sessResp := e.request(t, http.MethodGet, "/api/auth/session", nil, cookieHeader(c))
	defer sessResp.Body.Close() //nolint:errcheck
	if sessResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from session endpoint, got %d", sessResp.StatusCode)
	}
	body := decodeBody(t, sessResp)
	if body["userId"] == nil {
		t.Fatal("session response missing userId")
	}
}

func TestSessionUnauthorized(t *testing.T) {
	e := newTestEnv(t, 0)

	resp := e.request(t, http.MethodGet, "/api/auth/session", nil, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without cookie, got %d", resp.StatusCode)
	}

	resp = e.request(t, http.MethodGet, "/api/auth/session", nil, map[string]string{
		"Cookie": "auth_token=not-a-valid-token",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", resp.StatusCode)
	}
}

func TestSessionWithBearerToken(t *testing.T) {
	e := newTestEnv(t, 0)
	ctx := context.Background()

	user, err := e.db.Create(ctx, "api@example.com", "")
	if err != nil {
		t.Fatal(err)
	}
	token, err := e.sessions.GenerateToken(user.ID)
	if err != nil {
		t.Fatal(err)
	}

	resp := e.request(t, http.MethodGet, "/api/auth/session", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with bearer token, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if int64(body["userId"].(float64)) != user.ID {
		t.Fatalf("expected userId %d, got %v", user.ID, body["userId"])
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	e := newTestEnv(t, 0)
	c := e.signup(t, "pat@example.com")

	resp := e.request(t, http.MethodPost, "/api/auth/logout", nil, cookieHeader(c))
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	cleared := sessionCookie(t, resp)
	if cleared.Value != "" {
		t.Errorf("expected empty cookie value, got %q", cleared.Value)
	}
	if cleared.MaxAge >= 0 {
		t.Errorf("expected negative MaxAge, got %d", cleared.MaxAge)
	}

	// The client no longer has a cookie: anonymous again.
	resp = e.request(t, http.MethodGet, "/api/auth/session", nil, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.StatusCode)
	}
}

func TestRefreshSuggestedHeader(t *testing.T) {
	// Tokens issued with 23h of lifetime are already below the 24h refresh
	// threshold; 48h tokens are not.
	nearExpiry := newTestEnv(t, 23*time.Hour)
	c := nearExpiry.signup(t, "pat@example.com")
	resp := nearExpiry.request(t, http.MethodGet, "/api/auth/session", nil, cookieHeader(c))
	resp.Body.Close()
	if got := resp.Header.Get("X-Refresh-Token"); got != "true" {
		t.Fatalf("expected X-Refresh-Token=true for near-expiry token, got %q", got)
	}

	fresh := newTestEnv(t, 48*time.Hour)
	c = fresh.signup(t, "pat@example.com")
	resp = fresh.request(t, http.MethodGet, "/api/auth/session", nil, cookieHeader(c))
	resp.Body.Close()
	if got := resp.Header.Get("X-Refresh-Token"); got != "" {
		t.Fatalf("expected no refresh signal for fresh token, got %q", got)
	}
}

func TestRefreshEndpoint(t *testing.T) {
	e := newTestEnv(t, 23*time.Hour)
	ctx := context.Background()

	user, err := e.db.Create(ctx, "api@example.com", "")
	if err != nil {
		t.Fatal(err)
	}
	token, err := e.sessions.GenerateToken(user.ID)
	if err != nil {
		t.Fatal(err)
	}
	original := e.sessions.VerifyToken(token)
	if original == nil {
		t.Fatal("original token should verify")
	}

	resp := e.request(t, http.MethodPost, "/api/auth/refresh", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	newToken, _ := body["token"].(string)
	if newToken == "" || newToken == token {
		t.Fatalf("expected a fresh token, got %q", newToken)
	}

	claims := e.sessions.VerifyToken(newToken)
	if claims == nil || claims.UserID != user.ID {
		t.Fatalf("refreshed token should verify to user %d, got %+v", user.ID, claims)
	}
	if !claims.ExpiresAt.Time.After(original.ExpiresAt.Time) {
		t.Fatalf("refreshed expiry %v not after original %v", claims.ExpiresAt.Time, original.ExpiresAt.Time)
	}
}

func TestRefreshEndpointRejections(t *testing.T) {
	e := newTestEnv(t, 0)

	resp := e.request(t, http.MethodPost, "/api/auth/refresh", nil, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	resp = e.request(t, http.MethodPost, "/api/auth/refresh", nil, map[string]string{
		"Authorization": "Bearer garbage",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for invalid token, got %d", resp.StatusCode)
	}
}

func TestIssuesFlow(t *testing.T) {
	e := newTestEnv(t, 0)
	c := e.signup(t, "pat@example.com")
	hdr := cookieHeader(c)

	// Unauthorized without a session.
	resp := e.request(t, http.MethodGet, "/api/issues", nil, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", resp.StatusCode)
	}

	// Create.
	resp = e.request(t, http.MethodPost, "/api/issues", map[string]any{
		"title": "refill prescription", "notes": "pharmacy on 5th",
	}, hdr)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create: expected 200, got %d", resp.StatusCode)
	}
	created := decodeBody(t, resp)
	resp.Body.Close()
	issue, _ := created["issue"].(map[string]any)
	if issue == nil || issue["status"] != "open" {
		t.Fatalf("unexpected create response: %v", created)
	}
	issueID := int64(issue["id"].(float64))

	// Blank title rejected.
	resp = e.request(t, http.MethodPost, "/api/issues", map[string]any{"title": "   "}, hdr)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank title, got %d", resp.StatusCode)
	}

	// List.
	resp = e.request(t, http.MethodGet, "/api/issues", nil, hdr)
	body := decodeBody(t, resp)
	resp.Body.Close()
	items, _ := body["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(items))
	}

	// Close.
	resp = e.request(t, http.MethodPost, "/api/issues/close", map[string]any{"id": issueID}, hdr)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("close: expected 200, got %d", resp.StatusCode)
	}

	// Closing a nonexistent issue is a 404.
	resp = e.request(t, http.MethodPost, "/api/issues/close", map[string]any{"id": int64(9999)}, hdr)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown issue, got %d", resp.StatusCode)
	}

	// Summary.
	resp = e.request(t, http.MethodGet, "/api/issues/summary", nil, hdr)
	summary := decodeBody(t, resp)
	resp.Body.Close()
	if summary["open"] != float64(0) || summary["closed"] != float64(1) {
		t.Fatalf("unexpected summary: %v", summary)
	}

	// Reopen.
	resp = e.request(t, http.MethodPost, "/api/issues/reopen", map[string]any{"id": issueID}, hdr)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reopen: expected 200, got %d", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	e := newTestEnv(t, 0)

	resp := e.request(t, http.MethodGet, "/metrics", nil, nil)
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", resp.StatusCode)
	}
}
