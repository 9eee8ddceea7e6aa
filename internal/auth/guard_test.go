package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messagely/internal/domain"
)

func TestGuard_ResolveIdentity(t *testing.T) {
	m := newTestManager(t, time.Hour)
	g := NewGuard(m)

	token, err := m.Generate("alice")
	require.NoError(t, err)

	username, err := g.ResolveIdentity(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	_, err = g.ResolveIdentity("")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = g.ResolveIdentity(token + "x")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestGuard_RequireOwnership(t *testing.T) {
	g := NewGuard(newTestManager(t, time.Hour))

	assert.NoError(t, g.RequireOwnership("bob", "bob", "carol"))
	assert.NoError(t, g.RequireOwnership("carol", "bob", "carol"))
	assert.ErrorIs(t, g.RequireOwnership("dave", "bob", "carol"), domain.ErrForbidden)
	assert.ErrorIs(t, g.RequireOwnership("", "bob", "carol"), domain.ErrForbidden)
	assert.ErrorIs(t, g.RequireOwnership("bob"), domain.ErrForbidden)
}
