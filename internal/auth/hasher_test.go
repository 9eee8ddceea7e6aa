package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"messagely/internal/domain"
)

func TestBcryptHasher(t *testing.T) {
	h, err := NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)

	hash, err := h.Hash("pw123")
	require.NoError(t, err)
	assert.NotEqual(t, "pw123", hash)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	ok, err := h.Compare(hash, "pw123")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Compare(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBcryptHasher_CorruptHash(t *testing.T) {
	h, err := NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)

	ok, err := h.Compare("not-a-bcrypt-hash", "pw123")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestNewBcryptHasher_CostRange(t *testing.T) {
	_, err := NewBcryptHasher(bcrypt.MinCost - 1)
	assert.Error(t, err)
	_, err = NewBcryptHasher(bcrypt.MaxCost + 1)
	assert.Error(t, err)
}

func TestBcryptHasher_PasswordTooLong(t *testing.T) {
	h, err := NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)

	_, err = h.Hash(strings.Repeat("a", MaxPasswordLength+1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	hash, err := h.Hash(strings.Repeat("a", MaxPasswordLength))
	require.NoError(t, err)
	ok, err := h.Compare(hash, strings.Repeat("a", MaxPasswordLength))
	require.NoError(t, err)
	assert.True(t, ok)
}
