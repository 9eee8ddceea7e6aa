package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"messagely/internal/domain"
	"messagely/internal/repository"
)

// OwnershipChecker gates access to a resource by its owners. auth.Guard implements it.
type OwnershipChecker interface {
	RequireOwnership(identity string, owners ...string) error
}

// MessageService creates messages and enforces participant-only access.
type MessageService interface {
	Create(ctx context.Context, fromUsername, toUsername, body string) (*domain.Message, error)
	Get(ctx context.Context, id, requester string) (*domain.MessageDetail, error)
	MarkRead(ctx context.Context, id, requester string) (*domain.ReadReceipt, error)
}

type messageService struct {
	messages repository.MessageRepository
	users    repository.UserRepository
	guard    OwnershipChecker
	now      func() time.Time
	newID    func() string
}

func NewMessageService(messages repository.MessageRepository, users repository.UserRepository, guard OwnershipChecker) MessageService {
	return &messageService{
		messages: messages,
		users:    users,
		guard:    guard,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

func (s *messageService) Create(ctx context.Context, fromUsername, toUsername, body string) (*domain.Message, error) {
	toUsername = strings.TrimSpace(toUsername)
	if err := requireFields(
		field{"from_username", fromUsername},
		field{"to_username", toUsername},
		field{"body", strings.TrimSpace(body)},
	); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByUsername(ctx, fromUsername); err != nil {
		return nil, fmt.Errorf("sender %q: %w", fromUsername, err)
	}
	if _, err := s.users.GetByUsername(ctx, toUsername); err != nil {
		return nil, fmt.Errorf("recipient %q: %w", toUsername, err)
	}

	msg := &domain.Message{
		ID:           s.newID(),
		FromUsername: fromUsername,
		ToUsername:   toUsername,
		Body:         body,
		SentAt:       s.now().UTC(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *messageService) Get(ctx context.Context, id, requester string) (*domain.MessageDetail, error) {
	msg, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.RequireOwnership(requester, msg.FromUsername, msg.ToUsername); err != nil {
		return nil, err
	}

	from, err := s.users.GetByUsername(ctx, msg.FromUsername)
	if err != nil {
		return nil, fmt.Errorf("sender %q: %w", msg.FromUsername, err)
	}
	to, err := s.users.GetByUsername(ctx, msg.ToUsername)
	if err != nil {
		return nil, fmt.Errorf("recipient %q: %w", msg.ToUsername, err)
	}

	return &domain.MessageDetail{
		Message: *msg,
		From:    from.Public(),
		To:      to.Public(),
	}, nil
}

// MarkRead is idempotent: a repeat call by the recipient returns the original read time.
func (s *messageService) MarkRead(ctx context.Context, id, requester string) (*domain.ReadReceipt, error) {
	msg, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.RequireOwnership(requester, msg.ToUsername); err != nil {
		return nil, err
	}
	if msg.IsRead() {
		return &domain.ReadReceipt{ID: msg.ID, ReadAt: *msg.ReadAt}, nil
	}

	readAt, err := s.messages.MarkRead(ctx, msg.ID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	return &domain.ReadReceipt{ID: msg.ID, ReadAt: readAt}, nil
}

func (s *messageService) lookup(ctx context.Context, id string) (*domain.Message, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: message id required", domain.ErrInvalidInput)
	}
	return s.messages.Get(ctx, id)
}
