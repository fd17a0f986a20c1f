// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"time"
)

// User represents a registered portal account.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// UserRepository defines the port for user persistence operations.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, email, passwordHash string) (*User, error)
	Count(ctx context.Context) (int, error)
}
