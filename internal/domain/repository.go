package domain

import (
	"context"

	"github.com/google/uuid"
)

type UserRepository interface {
	// Create returns ErrEmailTaken when the email is already registered.
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// UpdateLoginState persists FailedLoginCount, LockedUntil and LastLoginAt.
	UpdateLoginState(ctx context.Context, u *User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
}

type AuditRepository interface {
	Create(ctx context.Context, entry *AuditLog) error
}
