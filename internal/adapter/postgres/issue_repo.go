package postgres

import (
	"context"
	"time"

	"portal/internal/domain"
)

// CreateIssue inserts a new open issue for the user.
func (d *DB) CreateIssue(ctx context.Context, userID int64, title, notes string, createdAt time.Time) (*domain.Issue, error) {
	var i domain.Issue
	err := d.sql.QueryRowContext(ctx,
		`INSERT INTO issues (user_id, title, notes, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5)
		 RETURNING id, user_id, title, notes, status, created_at, updated_at`,
		userID, title, notes, domain.IssueStatusOpen, createdAt.UTC(),
	).Scan(&i.ID, &i.UserID, &i.Title, &i.Notes, &i.Status, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// ListIssues returns the user's most recent issues up to limit.
func (d *DB) ListIssues(ctx context.Context, userID int64, limit int) ([]domain.Issue, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT id, user_id, title, notes, status, created_at, updated_at
		 FROM issues WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Issue
	for rows.Next() {
		var i domain.Issue
		if err := rows.Scan(&i.ID, &i.UserID, &i.Title, &i.Notes, &i.Status, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

// SetIssueStatus updates the status of an issue owned by the user. Returns
// false when no matching row exists.
func (d *DB) SetIssueStatus(ctx context.Context, userID, id int64, status string, updatedAt time.Time) (bool, error) {
	res, err := d.sql.ExecContext(ctx,
		"UPDATE issues SET status = $1, updated_at = $2 WHERE id = $3 AND user_id = $4",
		status, updatedAt.UTC(), id, userID,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountIssuesByStatus returns the user's open and closed issue counts.
func (d *DB) CountIssuesByStatus(ctx context.Context, userID int64) (int, int, error) {
	var open, closed int
	err := d.sql.QueryRowContext(ctx,
		`SELECT COUNT(*) FILTER (WHERE status = 'open'),
		        COUNT(*) FILTER (WHERE status = 'closed')
		 FROM issues WHERE user_id = $1`,
		userID,
	).Scan(&open, &closed)
	return open, closed, err
}
