package domain

import (
	"context"
	"time"
)

// Issue statuses. Status transitions are open <-> closed only.
const (
	IssueStatusOpen   = "open"
	IssueStatusClosed = "closed"
)

// Issue represents a health-related task tracked by a patient.
type Issue struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Title     string    `json:"title"`
	Notes     string    `json:"notes"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IssueRepository is the port for issue persistence.
type IssueRepository interface {
	CreateIssue(ctx context.Context, userID int64, title, notes string, createdAt time.Time) (*Issue, error)
	ListIssues(ctx context.Context, userID int64, limit int) ([]Issue, error)
	SetIssueStatus(ctx context.Context, userID, id int64, status string, updatedAt time.Time) (bool, error)
	CountIssuesByStatus(ctx context.Context, userID int64) (open, closed int, err error)
}
