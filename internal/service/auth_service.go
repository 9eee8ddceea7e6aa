package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"messagely/internal/auth"
	"messagely/internal/domain"
	"messagely/internal/repository"
)

// AuthService describes registration and credential checks.
type AuthService interface {
	Register(ctx context.Context, username, password, firstName, lastName, phone string) (*domain.PublicUser, error)
	Authenticate(ctx context.Context, username, password string) (bool, error)
	IssueToken(username string) (string, error)
	RecordLogin(ctx context.Context, username string) error
	// Login authenticates and, only on success, issues a token and records the login.
	Login(ctx context.Context, username, password string) (string, error)
}

type authService struct {
	users  repository.UserRepository
	hasher auth.Hasher
	tokens auth.TokenManager
	now    func() time.Time
}

func NewAuthService(users repository.UserRepository, hasher auth.Hasher, tokens auth.TokenManager) AuthService {
	return &authService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		now:    time.Now,
	}
}

func (s *authService) Register(ctx context.Context, username, password, firstName, lastName, phone string) (*domain.PublicUser, error) {
	username = strings.TrimSpace(username)
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	phone = strings.TrimSpace(phone)

	if err := requireFields(
		field{"username", username},
		field{"password", password},
		field{"first_name", firstName},
		field{"last_name", lastName},
		field{"phone", phone},
	); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		Phone:        phone,
		JoinedAt:     s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	public := user.Public()
	return &public, nil
}

func (s *authService) Authenticate(ctx context.Context, username, password string) (bool, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return false, err
	}
	return s.hasher.Compare(user.PasswordHash, password)
}

func (s *authService) IssueToken(username string) (string, error) {
	return s.tokens.Generate(username)
}

func (s *authService) RecordLogin(ctx context.Context, username string) error {
	err := s.users.UpdateLastLogin(ctx, username, s.now().UTC())
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}

func (s *authService) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", fmt.Errorf("%w: username and password required", domain.ErrInvalidInput)
	}

	ok, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}

	token, err := s.IssueToken(username)
	if err != nil {
		return "", err
	}
	if err := s.RecordLogin(ctx, username); err != nil {
		return "", err
	}
	return token, nil
}

type field struct {
	name  string
	value string
}

// requireFields reports every empty field at once.
func requireFields(fields ...field) error {
	var missing []string
	for _, f := range fields {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", domain.ErrInvalidInput, strings.Join(missing, ", "))
	}
	return nil
}
