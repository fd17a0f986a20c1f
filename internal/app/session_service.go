// Package app holds the application services and business logic.
package app

import (
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken indicates that a session token failed verification for any
// reason (malformed, bad signature, wrong algorithm, expired). The concrete
// reason is logged server-side and never returned to callers.
var ErrInvalidToken = errors.New("invalid session token")

const (
	// DefaultTokenTTL is the lifetime of a newly issued session token.
	DefaultTokenTTL = 7 * 24 * time.Hour
	// DefaultRefreshThreshold is the remaining-lifetime cutoff below which a
	// token becomes eligible for silent replacement.
	DefaultRefreshThreshold = 24 * time.Hour

	// refreshLeeway is the clock-skew tolerance applied only to
	// refresh-eligibility checks, never to primary authorization.
	refreshLeeway = 15 * time.Second
)

// SessionClaims is the payload carried inside a signed session token.
// Only UserID is a stable part of the contract with callers.
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"uid"`
}

// SessionService issues and verifies stateless session tokens. Tokens are
// HS256-signed JWTs; nothing is persisted server-side, so a token is
// invalidated only by expiry, cookie deletion, or secret rotation.
//
// The service is safe for concurrent use: all fields are read-only after
// construction.
type SessionService struct {
	secret           []byte
	tokenTTL         time.Duration
	refreshThreshold time.Duration
	now              func() time.Time
	log              *slog.Logger
}

// NewSessionService creates a SessionService signing with the given secret.
// Zero durations fall back to the defaults (7 days TTL, 24 hour refresh
// threshold). The secret must be validated by the caller at startup; an
// empty secret here is a programming error upstream, not a per-call concern.
func NewSessionService(secret []byte, tokenTTL, refreshThreshold time.Duration, log *slog.Logger) *SessionService {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	if refreshThreshold <= 0 {
		refreshThreshold = DefaultRefreshThreshold
	}
	if log == nil {
		log = slog.Default()
	}
	return &SessionService{
		secret:           secret,
		tokenTTL:         tokenTTL,
		refreshThreshold: refreshThreshold,
		now:              time.Now,
		log:              log,
	}
}

// WithClock returns a copy of the service using the given wall-clock source.
// Intended for tests that need to mint near-expiry tokens; the receiver is
// left untouched.
func (s *SessionService) WithClock(now func() time.Time) *SessionService {
	cp := *s
	cp.now = now
	return &cp
}

// TokenTTL returns the configured token lifetime.
func (s *SessionService) TokenTTL() time.Duration {
	return s.tokenTTL
}

// GenerateToken issues a signed token for the given user id, valid from now
// until now + TTL.
func (s *SessionService) GenerateToken(userID int64) (string, error) {
	token, _, err := s.issueToken(userID)
	return token, err
}

func (s *SessionService) issueToken(userID int64) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.tokenTTL)
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		s.log.Error("session token signing failed", "err", err)
		return "", time.Time{}, ErrInvalidToken
	}
	return signed, expiresAt, nil
}

func (s *SessionService) parse(token string, leeway time.Duration) (*SessionClaims, error) {
	claims := &SessionClaims{}
	opts := []jwt.ParserOption{
		// Single fixed algorithm; anything else is rejected outright to rule
		// out downgrade tricks.
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if leeway > 0 {
		opts = append(opts, jwt.WithLeeway(leeway))
	}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyToken decodes and strictly verifies a session token. It returns nil
// on any failure; the reason is logged for operators but never exposed to
// callers, who treat nil uniformly as "no valid session".
func (s *SessionService) VerifyToken(token string) *SessionClaims {
	claims, err := s.parse(token, 0)
	if err != nil {
		s.log.Debug("session token rejected", "reason", err.Error())
		return nil
	}
	return claims
}

// VerifyTokenLenient verifies with a small clock-skew tolerance. Only the
// refresh path may use it; primary authorization stays strict.
func (s *SessionService) VerifyTokenLenient(token string) *SessionClaims {
	claims, err := s.parse(token, refreshLeeway)
	if err != nil {
		s.log.Debug("session token rejected (lenient)", "reason", err.Error())
		return nil
	}
	return claims
}

// ShouldRefresh reports whether the token's remaining lifetime has dropped
// below the refresh threshold. Malformed or expired tokens yield false, not
// an error: "no refresh needed" is for the caller to combine with a separate
// strict VerifyToken before deciding the session is invalid.
func (s *SessionService) ShouldRefresh(token string) bool {
	claims, err := s.parse(token, refreshLeeway)
	if err != nil {
		return false
	}
	return claims.ExpiresAt.Time.Sub(s.now()) < s.refreshThreshold
}

// Refresh verifies a token leniently and, if valid, issues a replacement
// with a fresh issued-at and expiry. Unlike the nil-returning verifiers this
// fails loudly: the bearer refresh endpoint has no silent fallback.
func (s *SessionService) Refresh(token string) (string, time.Time, error) {
	claims, err := s.parse(token, refreshLeeway)
	if err != nil {
		s.log.Info("token refresh rejected", "reason", err.Error())
		return "", time.Time{}, ErrInvalidToken
	}

	return s.issueToken(claims.UserID)
}
