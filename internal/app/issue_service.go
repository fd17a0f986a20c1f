package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"portal/internal/domain"
)

// IssueService encapsulates the issue-tracking use cases. Issues are thin
// records owned by a single patient; all operations are scoped by user id.
type IssueService struct {
	repo domain.IssueRepository
}

// NewIssueService creates an IssueService backed by the given repository.
func NewIssueService(repo domain.IssueRepository) *IssueService {
	return &IssueService{repo: repo}
}

// Create validates and stores a new issue.
func (s *IssueService) Create(ctx context.Context, userID int64, title, notes string) (*domain.Issue, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("title must not be empty")
	}
	return s.repo.CreateIssue(ctx, userID, title, strings.TrimSpace(notes), time.Now())
}

// ListRecent returns the user's most recent issues up to limit.
func (s *IssueService) ListRecent(ctx context.Context, userID int64, limit int) ([]domain.Issue, error) {
	return s.repo.ListIssues(ctx, userID, limit)
}

// Close marks an issue closed. Returns false if the issue does not exist or
// belongs to another user.
func (s *IssueService) Close(ctx context.Context, userID, id int64) (bool, error) {
	return s.repo.SetIssueStatus(ctx, userID, id, domain.IssueStatusClosed, time.Now())
}

// Reopen marks an issue open again.
func (s *IssueService) Reopen(ctx context.Context, userID, id int64) (bool, error) {
	return s.repo.SetIssueStatus(ctx, userID, id, domain.IssueStatusOpen, time.Now())
}

// IssueSummary aggregates a user's issues by status.
type IssueSummary struct {
	Open   int `json:"open"`
	Closed int `json:"closed"`
}

// Summary returns open/closed counts for the user.
func (s *IssueService) Summary(ctx context.Context, userID int64) (*IssueSummary, error) {
	open, closed, err := s.repo.CountIssuesByStatus(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &IssueSummary{Open: open, Closed: closed}, nil
}
