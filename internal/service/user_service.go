package service

import (
	"context"
	"fmt"

	"messagely/internal/domain"
	"messagely/internal/repository"
)

// UserService is the read side of the user directory and per-user mailboxes.
type UserService interface {
	List(ctx context.Context) ([]domain.PublicUser, error)
	Get(ctx context.Context, username string) (*domain.UserDetail, error)
	MessagesFrom(ctx context.Context, username, requester string) ([]domain.MessageSummary, error)
	MessagesTo(ctx context.Context, username, requester string) ([]domain.MessageSummary, error)
}

type userService struct {
	users    repository.UserRepository
	messages repository.MessageRepository
	guard    OwnershipChecker
}

func NewUserService(users repository.UserRepository, messages repository.MessageRepository, guard OwnershipChecker) UserService {
	return &userService{
		users:    users,
		messages: messages,
		guard:    guard,
	}
}

func (s *userService) List(ctx context.Context) ([]domain.PublicUser, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.PublicUser, len(users))
	for i := range users {
		out[i] = users[i].Public()
	}
	return out, nil
}

func (s *userService) Get(ctx context.Context, username string) (*domain.UserDetail, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	detail := user.Detail()
	return &detail, nil
}

// MessagesFrom lists what username sent. Only username may read it.
func (s *userService) MessagesFrom(ctx context.Context, username, requester string) ([]domain.MessageSummary, error) {
	if err := s.guard.RequireOwnership(requester, username); err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListBySender(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, msgs, func(m *domain.Message) string { return m.ToUsername })
}

// MessagesTo lists what username received. Only username may read it.
func (s *userService) MessagesTo(ctx context.Context, username, requester string) ([]domain.MessageSummary, error) {
	if err := s.guard.RequireOwnership(requester, username); err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListByRecipient(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, msgs, func(m *domain.Message) string { return m.FromUsername })
}

func (s *userService) summarize(ctx context.Context, msgs []domain.Message, peerOf func(*domain.Message) string) ([]domain.MessageSummary, error) {
	peers := make(map[string]domain.PublicUser)
	out := make([]domain.MessageSummary, 0, len(msgs))
	for i := range msgs {
		name := peerOf(&msgs[i])
		peer, ok := peers[name]
		if !ok {
			user, err := s.users.GetByUsername(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("peer %q: %w", name, err)
			}
			peer = user.Public()
			peers[name] = peer
		}
		out = append(out, domain.MessageSummary{
			ID:     msgs[i].ID,
			Peer:   peer,
			Body:   msgs[i].Body,
			SentAt: msgs[i].SentAt,
			ReadAt: msgs[i].ReadAt,
		})
	}
	return out, nil
}
