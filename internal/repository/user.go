package repository

import (
	"context"
	"time"

	"messagely/internal/domain"
)

// UserRepository defines persistence operations for User entities.
// Create must report domain.ErrConflict for an existing username and never overwrite.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateLastLogin(ctx context.Context, username string, at time.Time) error
	List(ctx context.Context) ([]domain.User, error)
}
