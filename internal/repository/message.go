package repository

import (
	"context"
	"time"

	"messagely/internal/domain"
)

// MessageRepository exposes persistence operations for messages.
type MessageRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, msg *domain.Message) error
	Get(ctx context.Context, id string) (*domain.Message, error)
	ListBySender(ctx context.Context, username string) ([]domain.Message, error)
	ListByRecipient(ctx context.Context, username string) ([]domain.Message, error)
	// MarkRead sets read_at only if it is still unset and returns the stored value.
	MarkRead(ctx context.Context, id string, at time.Time) (time.Time, error)
}
