package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"messagely/internal/domain"
)

// MaxPasswordLength is the longest password bcrypt accepts, in bytes.
const MaxPasswordLength = 72

// Hasher hashes passwords and compares them against stored hashes.
type Hasher interface {
	Hash(password string) (string, error)
	// Compare reports whether password matches hash. A mismatch is not an error.
	Compare(hash, password string) (bool, error)
}

// BcryptHasher is a Hasher with a tunable work factor.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &BcryptHasher{cost: cost}, nil
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: password longer than %d bytes", domain.ErrInvalidInput, MaxPasswordLength)
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (h *BcryptHasher) Compare(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword), errors.Is(err, bcrypt.ErrPasswordTooLong):
		return false, nil
	default:
		return false, fmt.Errorf("compare password: %w", err)
	}
}

var _ Hasher = (*BcryptHasher)(nil)
