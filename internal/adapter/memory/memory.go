// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"portal/internal/domain"
)

// DB implements an in-memory database storage.
type DB struct {
	mu     sync.Mutex
	users  []*domain.User
	issues []domain.Issue

	userIDCounter  int64
	issueIDCounter int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{}
}

// Ensure interfaces are met.
var _ domain.UserRepository = (*DB)(nil)
var _ domain.IssueRepository = (*DB)(nil)

// --- UserRepository ---

// GetByEmail retrieves a user by email.
func (db *DB) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Email == email {
			ret := *u
			return &ret, nil
		}
	}
	return nil, nil
}

// GetByID retrieves a user by ID.
func (db *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			ret := *u
			return &ret, nil
		}
	}
	return nil, nil
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, email, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.userIDCounter++
	u := &domain.User{
		ID:           db.userIDCounter,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	db.users = append(db.users, u)

	ret := *u
	return &ret, nil
}

// Count returns the total number of users.
func (db *DB) Count(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users), nil
}

// --- IssueRepository ---

// CreateIssue adds a new open issue for the user.
func (db *DB) CreateIssue(ctx context.Context, userID int64, title, notes string, createdAt time.Time) (*domain.Issue, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.issueIDCounter++
	issue := domain.Issue{
		ID:        db.issueIDCounter,
		UserID:    userID,
		Title:     title,
		Notes:     notes,
		Status:    domain.IssueStatusOpen,
		CreatedAt: createdAt.UTC(),
		UpdatedAt: createdAt.UTC(),
	}
	db.issues = append(db.issues, issue)

	ret := issue
	return &ret, nil
}

// ListIssues lists the user's most recent issues.
func (db *DB) ListIssues(ctx context.Context, userID int64, limit int) ([]domain.Issue, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var items []domain.Issue
	for _, i := range db.issues {
		if i.UserID == userID {
			items = append(items, i)
		}
	}

	sort.Slice(items, func(a, b int) bool {
		return items[a].CreatedAt.After(items[b].CreatedAt)
	})

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// SetIssueStatus updates the status of the user's issue.
func (db *DB) SetIssueStatus(ctx context.Context, userID, id int64, status string, updatedAt time.Time) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for idx := range db.issues {
		i := &db.issues[idx]
		if i.ID == id && i.UserID == userID {
			i.Status = status
			i.UpdatedAt = updatedAt.UTC()
			return true, nil
		}
	}
	return false, nil
}

// CountIssuesByStatus returns open and closed counts for the user.
func (db *DB) CountIssuesByStatus(ctx context.Context, userID int64) (int, int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var open, closed int
	for _, i := range db.issues {
		if i.UserID != userID {
			continue
		}
		switch i.Status {
		case domain.IssueStatusOpen:
			open++
		case domain.IssueStatusClosed:
			closed++
		}
	}
	return open, closed, nil
}
