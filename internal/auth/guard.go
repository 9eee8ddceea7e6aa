package auth

import (
	"fmt"
	"slices"

	"messagely/internal/domain"
)

// Guard turns tokens into identities and checks resource ownership.
type Guard struct {
	tokens TokenManager
}

func NewGuard(tokens TokenManager) *Guard {
	return &Guard{tokens: tokens}
}

// ResolveIdentity returns the username a token was issued for.
// Every failure is reported as domain.ErrUnauthorized.
func (g *Guard) ResolveIdentity(token string) (string, error) {
	username, err := g.tokens.Verify(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	return username, nil
}

// RequireOwnership fails with domain.ErrForbidden unless identity is one of owners.
func (g *Guard) RequireOwnership(identity string, owners ...string) error {
	if identity == "" || !slices.Contains(owners, identity) {
		return fmt.Errorf("%w: %q may not access this resource", domain.ErrForbidden, identity)
	}
	return nil
}
