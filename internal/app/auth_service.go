package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"portal/internal/domain"
)

var (
	// ErrInvalidCredentials indicates that the provided email or password was incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserExists indicates that an account with the given email already exists.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound indicates that the user does not exist.
	ErrUserNotFound = errors.New("user not found")
)

// AuthService handles registration and credential verification. Successful
// logins and signups are turned into session tokens by the SessionService.
type AuthService struct {
	users    domain.UserRepository
	sessions *SessionService
	log      *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(users domain.UserRepository, sessions *SessionService, log *slog.Logger) *AuthService {
	if log == nil {
		log = slog.Default()
	}
	return &AuthService{users: users, sessions: sessions, log: log}
}

// Login authenticates a user by email and password and returns the user with
// a freshly issued session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil || user == nil {
		// Both the unknown-user and bad-password paths collapse into the
		// same error so responses don't leak which one happened.
		return nil, "", ErrInvalidCredentials
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.sessions.GenerateToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Signup registers a new account and logs it in.
func (s *AuthService) Signup(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = normalizeEmail(email)

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", ErrUserExists
	}

	hash, err := HashPassword(password)
	if err != nil {
		s.log.Error("password hashing failed", "err", err)
		return nil, "", err
	}

	user, err := s.users.Create(ctx, email, hash)
	if err != nil {
		return nil, "", err
	}

	token, err := s.sessions.GenerateToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// LoginWithEmail creates a session for an already authenticated identity
// (e.g. arriving via SSO), auto-provisioning the account on first sight.
// Provisioned accounts get an empty password hash and can only log in
// through SSO.
func (s *AuthService) LoginWithEmail(ctx context.Context, email string) (*domain.User, string, error) {
	email = normalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		user, err = s.users.Create(ctx, email, "")
		if err != nil {
			// Creation can lose a race on the unique email constraint; the
			// winner's row satisfies us. Anything else stays an error - the
			// original create failure must not be masked by an empty retry.
			createErr := err
			user, err = s.users.GetByEmail(ctx, email)
			if err != nil {
				return nil, "", err
			}
			if user == nil {
				return nil, "", createErr
			}
		}
	}

	token, err := s.sessions.GenerateToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// CreateInitialUser creates the first account so a fresh deployment has a
// login without SSO. It is a no-op once any user exists.
func (s *AuthService) CreateInitialUser(ctx context.Context, email, password string) error {
	count, err := s.users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	user, err := s.users.Create(ctx, normalizeEmail(email), hash)
	if err != nil {
		return err
	}
	s.log.Info("initial user created", "email", user.Email)
	return nil
}

// GetUser returns the user for an id, or ErrUserNotFound.
func (s *AuthService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
